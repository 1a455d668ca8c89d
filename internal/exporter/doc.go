// Package exporter writes registration reports to files a person can open.
//
// ReportComposer lays out a domain.Report as a Word (.docx) document: a
// title block, the general summary, the embedded course chart and one
// roster table per course, built with godocx. ReadDocument reads the text
// back out of a generated package.
//
// CSVWriter exports course counts and rosters with a UTF-8 BOM so that
// spreadsheet programs detect the encoding.
package exporter
