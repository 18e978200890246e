package cli

import (
	"context"
	"database/sql"

	"github.com/m-mizutani/fireconf"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskregister/pkg/repository/firestore"
	"github.com/secmon-lab/riskregister/pkg/repository/postgres"
	"github.com/secmon-lab/riskregister/pkg/utils/logging"
	"github.com/secmon-lab/riskregister/pkg/utils/safe"
	"github.com/urfave/cli/v3"
)

func cmdMigrate() *cli.Command {
	return &cli.Command{
		Name:    "migrate",
		Aliases: []string{"m"},
		Usage:   "Migrate database schema and indexes",
		Commands: []*cli.Command{
			cmdMigrateFirestore(),
			cmdMigratePostgres(),
		},
	}
}

func cmdMigrateFirestore() *cli.Command {
	var projectID string
	var databaseID string
	var collectionPrefix string
	var dryRun bool

	return &cli.Command{
		Name:  "firestore",
		Usage: "Create the composite indexes used by the firestore backend",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "firestore-project-id",
				Usage:       "Firestore Project ID (required)",
				Required:    true,
				Sources:     cli.EnvVars("RISKREGISTER_FIRESTORE_PROJECT_ID"),
				Destination: &projectID,
			},
			&cli.StringFlag{
				Name:        "firestore-database-id",
				Usage:       "Firestore Database ID",
				Sources:     cli.EnvVars("RISKREGISTER_FIRESTORE_DATABASE_ID"),
				Destination: &databaseID,
			},
			&cli.StringFlag{
				Name:        "firestore-collection-prefix",
				Usage:       "Prefix for Firestore collection names",
				Sources:     cli.EnvVars("RISKREGISTER_FIRESTORE_COLLECTION_PREFIX"),
				Destination: &collectionPrefix,
			},
			&cli.BoolFlag{
				Name:        "dry-run",
				Usage:       "Preview changes without applying",
				Destination: &dryRun,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.Default()

			logger.Info("Migrate configuration",
				"projectID", projectID,
				"databaseID", databaseID,
				"dryRun", dryRun)

			indexConfig := getIndexConfig(collectionPrefix)

			client, err := fireconf.NewClient(ctx, projectID, databaseID)
			if err != nil {
				return goerr.Wrap(err, "failed to create fireconf client")
			}
			defer func() {
				if err := client.Close(); err != nil {
					logger.Error("failed to close fireconf client", "error", err.Error())
				}
			}()

			if dryRun {
				logger.Info("Dry run mode - previewing changes")
				plan, err := client.GetMigrationPlan(ctx, indexConfig)
				if err != nil {
					return goerr.Wrap(err, "failed to create migration plan")
				}

				if len(plan.Steps) == 0 {
					logger.Info("No changes required")
					return nil
				}

				for _, step := range plan.Steps {
					logger.Info("Migration step",
						"collection", step.Collection,
						"operation", step.Operation,
						"description", step.Description,
						"destructive", step.Destructive)
				}
				return nil
			}

			logger.Info("Applying migrations")
			if err := client.Migrate(ctx, indexConfig); err != nil {
				return goerr.Wrap(err, "failed to apply migrations")
			}
			logger.Info("Migrations applied successfully")
			return nil
		},
	}
}

func cmdMigratePostgres() *cli.Command {
	var dsn string

	return &cli.Command{
		Name:  "postgres",
		Usage: "Apply pending SQL migrations",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "postgres-dsn",
				Usage:       "PostgreSQL connection string (required)",
				Required:    true,
				Sources:     cli.EnvVars("RISKREGISTER_POSTGRES_DSN"),
				Destination: &dsn,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			db, err := sql.Open("postgres", dsn)
			if err != nil {
				return goerr.Wrap(err, "failed to open database")
			}
			defer safe.Close(ctx, db)

			if err := db.PingContext(ctx); err != nil {
				return goerr.Wrap(err, "failed to ping database")
			}

			if err := postgres.Migrate(db); err != nil {
				return err
			}
			logging.Default().Info("Migrations applied successfully")
			return nil
		},
	}
}

func prefixed(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "_" + name
}

// getIndexConfig returns the composite indexes for the queries of the
// firestore repository
func getIndexConfig(prefix string) *fireconf.Config {
	byRiskCreatedAt := fireconf.Index{
		Fields: []fireconf.IndexField{
			{Path: "risk_id", Order: fireconf.OrderAscending},
			{Path: "created_at", Order: fireconf.OrderAscending},
		},
	}

	return &fireconf.Config{
		Collections: []fireconf.Collection{
			{
				Name:    prefixed(prefix, firestore.CollectionMitigations),
				Indexes: []fireconf.Index{byRiskCreatedAt},
			},
			{
				Name:    prefixed(prefix, firestore.CollectionControls),
				Indexes: []fireconf.Index{byRiskCreatedAt},
			},
			{
				Name: prefixed(prefix, firestore.CollectionAuditLogs),
				Indexes: []fireconf.Index{
					// List: entity_type ASC, entity_id ASC, created_at DESC
					{
						Fields: []fireconf.IndexField{
							{Path: "entity_type", Order: fireconf.OrderAscending},
							{Path: "entity_id", Order: fireconf.OrderAscending},
							{Path: "created_at", Order: fireconf.OrderDescending},
						},
					},
				},
			},
		},
	}
}
