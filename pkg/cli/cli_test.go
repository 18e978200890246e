package cli_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/riskregister/pkg/cli"
	"github.com/secmon-lab/riskregister/pkg/domain/model"
	"github.com/secmon-lab/riskregister/pkg/domain/types"
	"github.com/secmon-lab/riskregister/pkg/usecase"
)

const seedFile = `
[[category]]
id = "security"
name = "Security"

[[framework]]
name = "ISO 27001"

[[user]]
email = "admin@example.com"
name = "Admin"
password = "change-me-please"
role = "admin"
`

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "seed.toml")
	gt.NoError(t, os.WriteFile(path, []byte(content), 0o600)).Required()
	return path
}

func TestRun_ValidateCommand(t *testing.T) {
	t.Run("valid config", func(t *testing.T) {
		err := cli.Run(context.Background(), []string{"riskregister", "--log-output", "stderr", "validate", "--config", writeFile(t, seedFile)}, "test")
		gt.NoError(t, err)
	})

	t.Run("invalid config", func(t *testing.T) {
		content := `
[[category]]
id = "INVALID ID"
name = "Bad"
`
		err := cli.Run(context.Background(), []string{"riskregister", "--log-output", "stderr", "validate", "--config", writeFile(t, content)}, "test")
		gt.Value(t, err).NotNil()
	})

	t.Run("missing file", func(t *testing.T) {
		err := cli.Run(context.Background(), []string{"riskregister", "--log-output", "stderr", "validate", "--config", "/nonexistent/seed.toml"}, "test")
		gt.Value(t, err).NotNil()
	})
}

func TestRun_SeedCommand(t *testing.T) {
	// memory backend; verifies the whole seed path runs without error
	err := cli.Run(context.Background(), []string{
		"riskregister", "--log-output", "stderr",
		"seed", "--config", writeFile(t, seedFile), "--repository-backend", "memory",
	}, "test")
	gt.NoError(t, err)
}

func TestRun_InvalidLogLevel(t *testing.T) {
	err := cli.Run(context.Background(), []string{"riskregister", "--log-level", "loud", "validate", "--config", writeFile(t, seedFile)}, "test")
	gt.Value(t, err).NotNil()
}

func TestRenderBoard(t *testing.T) {
	color.NoColor = true

	view := &usecase.BoardView{
		Columns: []*usecase.BoardColumn{
			{
				Status: types.RiskStatusOpen,
				Label:  "Open",
				Count:  1,
				Risks: []*model.Risk{
					{ID: "r-1", Title: "Unpatched VPN", Severity: types.SeverityCritical, OwnerID: "u-1", Owner: &model.User{Name: "Alice"}},
				},
			},
			{Status: types.RiskStatusMitigating, Label: "Mitigating"},
		},
	}

	var buf bytes.Buffer
	gt.NoError(t, cli.RenderBoard(&buf, view)).Required()

	out := buf.String()
	gt.String(t, out).Contains("Open (1)")
	gt.String(t, out).Contains("[critical]")
	gt.String(t, out).Contains("Unpatched VPN")
	gt.String(t, out).Contains("(r-1, Alice)")
	gt.String(t, out).Contains("Mitigating (0)")
	gt.Bool(t, strings.Contains(out, "Open (1)\n  (empty)")).False()
}

func TestGetIndexConfig(t *testing.T) {
	cfg := cli.GetIndexConfig("test")
	gt.Array(t, cfg.Collections).Length(3).Required()

	names := make([]string, 0, len(cfg.Collections))
	for _, c := range cfg.Collections {
		names = append(names, c.Name)
		gt.Array(t, c.Indexes).Length(1)
	}
	gt.Array(t, names).Has("test_mitigations")
	gt.Array(t, names).Has("test_controls")
	gt.Array(t, names).Has("test_audit_logs")
}
