package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskregister/pkg/domain/interfaces"
)

// Collection names before the optional prefix is applied
const (
	CollectionRisks       = "risks"
	CollectionMitigations = "mitigations"
	CollectionCategories  = "categories"
	CollectionFrameworks  = "frameworks"
	CollectionControls    = "controls"
	CollectionAuditLogs   = "audit_logs"
	CollectionUsers       = "users"
)

// base is shared by every collection repository so a prefix set by
// WithCollectionPrefix applies to all of them.
type base struct {
	client           *firestore.Client
	collectionPrefix string
}

func (b *base) collection(name string) *firestore.CollectionRef {
	if b.collectionPrefix != "" {
		return b.client.Collection(b.collectionPrefix + "_" + name)
	}
	return b.client.Collection(name)
}

type Firestore struct {
	base       *base
	risk       *riskRepository
	mitigation *mitigationRepository
	category   *categoryRepository
	framework  *frameworkRepository
	control    *controlRepository
	audit      *auditRepository
	user       *userRepository
}

var _ interfaces.Repository = &Firestore{}

type Option func(*Firestore)

func WithCollectionPrefix(prefix string) Option {
	return func(f *Firestore) {
		f.base.collectionPrefix = prefix
	}
}

func New(ctx context.Context, projectID, databaseID string, opts ...Option) (*Firestore, error) {
	if databaseID == "" {
		databaseID = firestore.DefaultDatabaseID
	}
	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("projectID", projectID),
			goerr.V("databaseID", databaseID))
	}

	b := &base{client: client}
	f := &Firestore{
		base:       b,
		risk:       &riskRepository{base: b},
		mitigation: &mitigationRepository{base: b},
		category:   &categoryRepository{base: b},
		framework:  &frameworkRepository{base: b},
		control:    &controlRepository{base: b},
		audit:      &auditRepository{base: b},
		user:       &userRepository{base: b},
	}

	for _, opt := range opts {
		opt(f)
	}

	return f, nil
}

func (f *Firestore) Risk() interfaces.RiskRepository {
	return f.risk
}

func (f *Firestore) Mitigation() interfaces.MitigationRepository {
	return f.mitigation
}

func (f *Firestore) Category() interfaces.CategoryRepository {
	return f.category
}

func (f *Firestore) Framework() interfaces.FrameworkRepository {
	return f.framework
}

func (f *Firestore) Control() interfaces.ControlRepository {
	return f.control
}

func (f *Firestore) Audit() interfaces.AuditRepository {
	return f.audit
}

func (f *Firestore) User() interfaces.UserRepository {
	return f.user
}

func (f *Firestore) Close(ctx context.Context) error {
	if f.base.client != nil {
		return f.base.client.Close()
	}
	return nil
}
