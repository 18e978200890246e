package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskregister/pkg/domain/interfaces"
	"github.com/secmon-lab/riskregister/pkg/domain/model"
	"github.com/secmon-lab/riskregister/pkg/domain/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type mitigationDocument struct {
	ID          string     `firestore:"id"`
	RiskID      string     `firestore:"risk_id"`
	Description string     `firestore:"description"`
	Owner       string     `firestore:"owner"`
	Status      string     `firestore:"status"`
	DueDate     *time.Time `firestore:"due_date"`
	CreatedAt   time.Time  `firestore:"created_at"`
	UpdatedAt   time.Time  `firestore:"updated_at"`
	CreatedBy   string     `firestore:"created_by"`
	UpdatedBy   string     `firestore:"updated_by"`
}

func toMitigationDocument(m *model.Mitigation) *mitigationDocument {
	return &mitigationDocument{
		ID:          string(m.ID),
		RiskID:      m.RiskID.String(),
		Description: m.Description,
		Owner:       m.Owner,
		Status:      string(m.Status),
		DueDate:     m.DueDate,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
		CreatedBy:   m.CreatedBy.String(),
		UpdatedBy:   m.UpdatedBy.String(),
	}
}

func (d *mitigationDocument) toModel() *model.Mitigation {
	return &model.Mitigation{
		ID:          types.MitigationID(d.ID),
		RiskID:      types.RiskID(d.RiskID),
		Description: d.Description,
		Owner:       d.Owner,
		Status:      types.MitigationStatus(d.Status),
		DueDate:     d.DueDate,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
		CreatedBy:   types.UserID(d.CreatedBy),
		UpdatedBy:   types.UserID(d.UpdatedBy),
	}
}

type mitigationRepository struct {
	*base
}

func (r *mitigationRepository) Create(ctx context.Context, m *model.Mitigation) (*model.Mitigation, error) {
	if _, err := r.collection(CollectionMitigations).Doc(string(m.ID)).Create(ctx, toMitigationDocument(m)); err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return nil, goerr.Wrap(interfaces.ErrConflict, "mitigation already exists", goerr.V("id", m.ID))
		}
		return nil, goerr.Wrap(err, "failed to create mitigation", goerr.V("id", m.ID))
	}
	return m.Copy(), nil
}

func (r *mitigationRepository) get(ctx context.Context, id types.MitigationID) (*mitigationDocument, error) {
	doc, err := r.collection(CollectionMitigations).Doc(string(id)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(interfaces.ErrNotFound, "mitigation not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get mitigation", goerr.V("id", id))
	}

	var d mitigationDocument
	if err := doc.DataTo(&d); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal mitigation", goerr.V("id", id))
	}
	return &d, nil
}

func (r *mitigationRepository) Get(ctx context.Context, id types.MitigationID) (*model.Mitigation, error) {
	d, err := r.get(ctx, id)
	if err != nil {
		return nil, err
	}
	return d.toModel(), nil
}

func (r *mitigationRepository) ListByRisk(ctx context.Context, riskID types.RiskID) ([]*model.Mitigation, error) {
	iter := r.collection(CollectionMitigations).
		Where("risk_id", "==", riskID.String()).
		OrderBy("created_at", firestore.Asc).
		Documents(ctx)
	defer iter.Stop()

	result := []*model.Mitigation{}
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate mitigations", goerr.V("risk_id", riskID))
		}

		var d mitigationDocument
		if err := doc.DataTo(&d); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal mitigation", goerr.V("doc", doc.Ref.ID))
		}
		result = append(result, d.toModel())
	}
	return result, nil
}

func (r *mitigationRepository) Update(ctx context.Context, m *model.Mitigation) (*model.Mitigation, error) {
	existing, err := r.get(ctx, m.ID)
	if err != nil {
		return nil, err
	}

	d := toMitigationDocument(m)
	d.RiskID = existing.RiskID
	d.CreatedAt = existing.CreatedAt
	d.CreatedBy = existing.CreatedBy

	if _, err := r.collection(CollectionMitigations).Doc(string(m.ID)).Set(ctx, d); err != nil {
		return nil, goerr.Wrap(err, "failed to update mitigation", goerr.V("id", m.ID))
	}
	return d.toModel(), nil
}

func (r *mitigationRepository) Delete(ctx context.Context, id types.MitigationID) error {
	if _, err := r.get(ctx, id); err != nil {
		return err
	}
	if _, err := r.collection(CollectionMitigations).Doc(string(id)).Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to delete mitigation", goerr.V("id", id))
	}
	return nil
}
