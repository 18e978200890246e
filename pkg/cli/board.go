package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskregister/pkg/cli/config"
	"github.com/secmon-lab/riskregister/pkg/domain/model/auth"
	"github.com/secmon-lab/riskregister/pkg/domain/types"
	"github.com/secmon-lab/riskregister/pkg/usecase"
	"github.com/secmon-lab/riskregister/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdBoard() *cli.Command {
	var noColor bool
	var repoCfg config.Repository

	flags := []cli.Flag{
		&cli.BoolFlag{
			Name:        "no-color",
			Usage:       "Disable colored output",
			Sources:     cli.EnvVars("NO_COLOR"),
			Destination: &noColor,
		},
	}
	flags = append(flags, repoCfg.Flags()...)

	return &cli.Command{
		Name:    "board",
		Aliases: []string{"b"},
		Usage:   "Print the risk status board",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			if noColor {
				color.NoColor = true
			}

			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer func() {
				if err := repo.Close(ctx); err != nil {
					logging.Default().Error("failed to close repository", "error", err.Error())
				}
			}()

			ctx = auth.ContextWithToken(ctx, auth.NewAnonymousUser())
			view, err := usecase.New(repo).Board.View(ctx)
			if err != nil {
				return err
			}
			return renderBoard(os.Stdout, view)
		},
	}
}

var severityColors = map[types.Severity]*color.Color{
	types.SeverityCritical: color.New(color.FgRed, color.Bold),
	types.SeverityHigh:     color.New(color.FgRed),
	types.SeverityMedium:   color.New(color.FgYellow),
	types.SeverityLow:      color.New(color.FgGreen),
}

// renderBoard prints one block per column in display order
func renderBoard(w io.Writer, view *usecase.BoardView) error {
	header := color.New(color.FgCyan, color.Bold)
	dim := color.New(color.Faint)

	for _, col := range view.Columns {
		if _, err := header.Fprintf(w, "%s (%d)\n", col.Label, col.Count); err != nil {
			return goerr.Wrap(err, "failed to write board")
		}
		if len(col.Risks) == 0 {
			if _, err := dim.Fprintln(w, "  (empty)"); err != nil {
				return goerr.Wrap(err, "failed to write board")
			}
			continue
		}

		for _, risk := range col.Risks {
			sev := severityColors[risk.Severity]
			if sev == nil {
				sev = dim
			}
			owner := risk.OwnerID.String()
			if risk.Owner != nil && risk.Owner.Name != "" {
				owner = risk.Owner.Name
			}
			if _, err := fmt.Fprintf(w, "  %s %s %s\n",
				sev.Sprintf("[%-8s]", risk.Severity),
				risk.Title,
				dim.Sprintf("(%s, %s)", risk.ID, owner),
			); err != nil {
				return goerr.Wrap(err, "failed to write board")
			}
		}
	}
	return nil
}
