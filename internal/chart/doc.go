// Package chart renders the per-course registration bar chart as PNG.
//
// Rendering uses gonum.org/v1/plot on a fixed-size raster canvas, so the
// same aggregate and options always produce the same bytes.
package chart
