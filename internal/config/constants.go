package config

// Application constants
const (
	AppName = "Generador de Reportes de Inscripciones"

	// EnvPrefix namespaces every environment variable, e.g. REGREPORT_SERVER_PORT.
	EnvPrefix = "REGREPORT"

	DefaultReportTitle = "REPORTE DE INSCRIPCIONES A CURSOS"
	DefaultPreparedBy  = "Sistema Automatizado de Reportes"

	DefaultPreviewRows = 10
	DefaultMaxUploadMB = 20
)
