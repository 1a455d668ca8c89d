// Package files provides the file operations used by the command line tool:
// resolving paths under an output directory, listing input spreadsheets and
// writing generated reports atomically through a scratch file.
package files
