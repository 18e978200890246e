package repository_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/riskregister/pkg/domain/interfaces"
	"github.com/secmon-lab/riskregister/pkg/domain/model"
	"github.com/secmon-lab/riskregister/pkg/domain/types"
	"github.com/secmon-lab/riskregister/pkg/repository/firestore"
	"github.com/secmon-lab/riskregister/pkg/repository/memory"
	"github.com/secmon-lab/riskregister/pkg/repository/postgres"
)

type repoFactory func(t *testing.T) interfaces.Repository

func newMemoryRepository(t *testing.T) interfaces.Repository {
	return memory.New()
}

func newFirestoreRepository(t *testing.T) interfaces.Repository {
	t.Helper()

	projectID := os.Getenv("TEST_FIRESTORE_PROJECT_ID")
	if projectID == "" {
		t.Skip("TEST_FIRESTORE_PROJECT_ID not set")
	}

	databaseID := os.Getenv("TEST_FIRESTORE_DATABASE_ID")
	if databaseID == "" {
		t.Skip("TEST_FIRESTORE_DATABASE_ID not set")
	}

	ctx := context.Background()
	prefix := fmt.Sprintf("test_%d", time.Now().UnixNano())
	repo, err := firestore.New(ctx, projectID, databaseID, firestore.WithCollectionPrefix(prefix))
	gt.NoError(t, err).Required()
	t.Cleanup(func() {
		gt.NoError(t, repo.Close(ctx))
	})
	return repo
}

// newPostgresRepository needs an empty database per run; the schema is
// migrated on open.
func newPostgresRepository(t *testing.T) interfaces.Repository {
	t.Helper()

	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN not set")
	}

	ctx := context.Background()
	repo, err := postgres.New(ctx, dsn)
	gt.NoError(t, err).Required()
	t.Cleanup(func() {
		gt.NoError(t, repo.Close(ctx))
	})
	return repo
}

var backends = map[string]repoFactory{
	"memory":    newMemoryRepository,
	"firestore": newFirestoreRepository,
	"postgres":  newPostgresRepository,
}

func runAll(t *testing.T, run func(t *testing.T, newRepo repoFactory)) {
	for name, factory := range backends {
		t.Run(name, func(t *testing.T) {
			run(t, factory)
		})
	}
}

// newTestRisk returns a risk with unique IDs so tests against shared
// databases do not collide.
func newTestRisk(title string) *model.Risk {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &model.Risk{
		ID:        types.NewRiskID(),
		Title:     title,
		OwnerID:   types.UserID("owner-" + title),
		Status:    types.RiskStatusOpen,
		Severity:  types.SeverityMedium,
		CreatedAt: now,
		UpdatedAt: now,
		CreatedBy: "tester",
		UpdatedBy: "tester",
	}
}
