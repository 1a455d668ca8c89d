package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, DefaultMaxUploadMB, cfg.Server.MaxUploadMB)
	assert.Equal(t, DefaultReportTitle, cfg.Report.Title)
	assert.Equal(t, DefaultPreparedBy, cfg.Report.PreparedBy)
	assert.Equal(t, 6.0, cfg.Report.ImageWidthInches)
	assert.Equal(t, DefaultPreviewRows, cfg.Display.PreviewRows)
	assert.Equal(t, 0, cfg.Display.MaxColumns)
	require.NoError(t, cfg.validate())
}

func TestLoadFrom(t *testing.T) {
	tests := []struct {
		name        string
		env         map[string]string
		file        string
		wantErr     string
		validateCfg func(*testing.T, *Config)
	}{
		{
			name: "defaults with no env vars or file",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 8080, cfg.Server.Port)
				assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
				assert.Equal(t, "json", cfg.Logging.Format)
				assert.Equal(t, "UTC", cfg.Report.TimeZone)
			},
		},
		{
			name: "environment overrides defaults",
			env: map[string]string{
				"REGREPORT_SERVER_PORT":                 "9090",
				"REGREPORT_SERVER_READ_TIMEOUT":         "5s",
				"REGREPORT_LOGGING_LEVEL":               "debug",
				"REGREPORT_DISPLAY_PREVIEW_ROWS":        "25",
				"REGREPORT_SECURITY_RATE_LIMIT_ENABLED": "false",
				"REGREPORT_SECURITY_ALLOWED_ORIGINS":    "http://a.example,http://b.example",
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 9090, cfg.Server.Port)
				assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
				assert.Equal(t, "debug", cfg.Logging.Level)
				assert.Equal(t, 25, cfg.Display.PreviewRows)
				assert.False(t, cfg.Security.RateLimit.Enabled)
				assert.Equal(t, []string{"http://a.example", "http://b.example"}, cfg.Security.AllowedOrigins)
			},
		},
		{
			name: "file overrides defaults and keeps unspecified keys",
			file: `
server:
  port: 7070
  request_timeout: 10s
report:
  prepared_by: "Oficina de Formación"
  time_zone: "America/Bogota"
`,
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 7070, cfg.Server.Port)
				assert.Equal(t, 10*time.Second, cfg.Server.RequestTimeout)
				assert.Equal(t, "Oficina de Formación", cfg.Report.PreparedBy)
				assert.Equal(t, DefaultReportTitle, cfg.Report.Title)
				assert.Equal(t, "America/Bogota", cfg.Location().String())
			},
		},
		{
			name: "environment wins over file",
			env:  map[string]string{"REGREPORT_SERVER_PORT": "6060"},
			file: "server:\n  port: 7070\n",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 6060, cfg.Server.Port)
			},
		},
		{
			name:    "invalid port rejected",
			env:     map[string]string{"REGREPORT_SERVER_PORT": "70000"},
			wantErr: "Port",
		},
		{
			name:    "invalid log format rejected",
			env:     map[string]string{"REGREPORT_LOGGING_FORMAT": "xml"},
			wantErr: "Format",
		},
		{
			name:    "unknown time zone rejected",
			env:     map[string]string{"REGREPORT_REPORT_TIME_ZONE": "Mars/Olympus"},
			wantErr: "TimeZone",
		},
		{
			name:    "malformed yaml rejected",
			file:    "server: [unclosed",
			wantErr: "failed to load config from file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			path := ""
			if tt.file != "" {
				path = filepath.Join(t.TempDir(), "config.yaml")
				require.NoError(t, os.WriteFile(path, []byte(tt.file), 0o644))
			}

			cfg, err := LoadFrom(path)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			tt.validateCfg(t, cfg)
		})
	}
}

func TestConfig_MaxUploadBytes(t *testing.T) {
	cfg := Default()
	cfg.Server.MaxUploadMB = 3
	assert.Equal(t, int64(3<<20), cfg.MaxUploadBytes())
}

func TestConfig_LocationFallsBackToUTC(t *testing.T) {
	cfg := Default()
	cfg.Report.TimeZone = "Nowhere/Invalid"
	assert.Equal(t, time.UTC, cfg.Location())
}

func TestValidate_CORSRequiresOrigins(t *testing.T) {
	cfg := Default()
	cfg.Security.AllowedOrigins = nil
	err := cfg.validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "allowed origin")

	cfg.Security.EnableCORS = false
	assert.NoError(t, cfg.validate())
}
