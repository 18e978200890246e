package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/riskregister/pkg/cli/config"
	"github.com/secmon-lab/riskregister/pkg/domain/types"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	gt.NoError(t, os.WriteFile(path, []byte(content), 0600)).Required()
	return path
}

func TestLoadAppConfiguration(t *testing.T) {
	t.Run("valid configuration", func(t *testing.T) {
		path := writeConfig(t, `
[[category]]
id = "security"
name = "Security"
description = "Information security risks"

[[category]]
id = "operations"
name = "Operations"

[[framework]]
name = "ISO 27001"
description = "Information security management"

[[user]]
email = "admin@example.com"
name = "Admin"
password = "change-me-please"
role = "admin"

[[user]]
email = "dev@example.com"
name = "Dev"
password = "change-me-too"
`)
		cfg, err := config.LoadAppConfiguration(path)
		gt.NoError(t, err).Required()
		gt.Array(t, cfg.Categories).Length(2)
		gt.Value(t, cfg.Categories[0].ID).Equal("security")
		gt.Array(t, cfg.Frameworks).Length(1)
		gt.Array(t, cfg.Users).Length(2).Required()
		gt.Value(t, cfg.Users[0].UserRole()).Equal(types.UserRoleAdmin)
		gt.Value(t, cfg.Users[1].UserRole()).Equal(types.UserRoleMember)
	})

	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{
			name: "duplicate category",
			content: `
[[category]]
id = "security"
name = "Security"

[[category]]
id = "security"
name = "Security again"
`,
			wantErr: config.ErrDuplicateID,
		},
		{
			name: "invalid category ID",
			content: `
[[category]]
id = "Not Valid"
name = "Security"
`,
			wantErr: config.ErrInvalidConfig,
		},
		{
			name: "category without name",
			content: `
[[category]]
id = "security"
`,
			wantErr: config.ErrMissingName,
		},
		{
			name: "framework without name",
			content: `
[[framework]]
description = "nameless"
`,
			wantErr: config.ErrMissingName,
		},
		{
			name: "unknown user role",
			content: `
[[user]]
email = "a@example.com"
name = "A"
role = "root"
`,
			wantErr: config.ErrInvalidConfig,
		},
		{
			name:    "broken TOML",
			content: `[[category]`,
			wantErr: config.ErrInvalidConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.LoadAppConfiguration(writeConfig(t, tt.content))
			gt.Error(t, err).Is(tt.wantErr)
		})
	}

	t.Run("missing file", func(t *testing.T) {
		_, err := config.LoadAppConfiguration(filepath.Join(t.TempDir(), "nope.toml"))
		gt.Error(t, err).Is(config.ErrConfigNotFound)
	})
}
