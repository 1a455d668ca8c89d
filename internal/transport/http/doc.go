// Package http implements the HTTP handlers of the registration report
// service. Handlers stay thin: they read the upload, call the report
// pipeline and format the response.
//
// # Endpoints
//
//	GET  /                                   upload form
//	POST /                                   action=preview renders the summary, action=report downloads the .docx
//	POST /api/registrations/summary          metrics, aggregates and preview as JSON
//	POST /api/registrations/chart            course chart as PNG
//	POST /api/registrations/report           .docx report
//	POST /api/registrations/course-counts.csv course counts as CSV
//	GET  /api/health, /api/health/live, /api/health/ready, /api/version
//
// Every upload endpoint takes the spreadsheet in the multipart field "file".
// Temporary files created while parsing the form are removed before the
// handler returns.
//
// # Error Handling
//
// API errors follow RFC 7807 Problem Details:
//
//	{
//	    "type": "/errors/spreadsheet/invalid",
//	    "title": "Unprocessable Entity",
//	    "status": 422,
//	    "detail": "Faltan las siguientes columnas en el archivo: Correo de contacto",
//	    "error_code": "MISSING_COLUMNS",
//	    "missing_columns": ["Correo de contacto"],
//	    "hint": "Asegúrate de que tu archivo Excel contenga todas las columnas requeridas."
//	}
//
// The upload page shows the same message and hint inline and answers with
// the same status code.
package http
