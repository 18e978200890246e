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

type riskDocument struct {
	ID          string     `firestore:"id"`
	Title       string     `firestore:"title"`
	Description string     `firestore:"description"`
	OwnerID     string     `firestore:"owner_id"`
	Status      string     `firestore:"status"`
	Severity    string     `firestore:"severity"`
	CategoryID  *string    `firestore:"category_id"`
	ReviewDate  *time.Time `firestore:"review_date"`
	CreatedAt   time.Time  `firestore:"created_at"`
	UpdatedAt   time.Time  `firestore:"updated_at"`
	CreatedBy   string     `firestore:"created_by"`
	UpdatedBy   string     `firestore:"updated_by"`
}

func toRiskDocument(r *model.Risk) *riskDocument {
	doc := &riskDocument{
		ID:          r.ID.String(),
		Title:       r.Title,
		Description: r.Description,
		OwnerID:     r.OwnerID.String(),
		Status:      r.Status.String(),
		Severity:    r.Severity.String(),
		ReviewDate:  r.ReviewDate,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
		CreatedBy:   r.CreatedBy.String(),
		UpdatedBy:   r.UpdatedBy.String(),
	}
	if r.CategoryID != nil {
		id := r.CategoryID.String()
		doc.CategoryID = &id
	}
	return doc
}

func (d *riskDocument) toModel() *model.Risk {
	r := &model.Risk{
		ID:          types.RiskID(d.ID),
		Title:       d.Title,
		Description: d.Description,
		OwnerID:     types.UserID(d.OwnerID),
		Status:      types.RiskStatus(d.Status),
		Severity:    types.Severity(d.Severity),
		ReviewDate:  d.ReviewDate,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
		CreatedBy:   types.UserID(d.CreatedBy),
		UpdatedBy:   types.UserID(d.UpdatedBy),
	}
	if d.CategoryID != nil {
		id := types.CategoryID(*d.CategoryID)
		r.CategoryID = &id
	}
	return r
}

type riskRepository struct {
	*base
}

func (r *riskRepository) Create(ctx context.Context, risk *model.Risk) (*model.Risk, error) {
	docRef := r.collection(CollectionRisks).Doc(risk.ID.String())
	if _, err := docRef.Create(ctx, toRiskDocument(risk)); err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return nil, goerr.Wrap(interfaces.ErrConflict, "risk already exists", goerr.V("id", risk.ID))
		}
		return nil, goerr.Wrap(err, "failed to create risk", goerr.V("id", risk.ID))
	}
	return risk.Copy(), nil
}

func (r *riskRepository) get(ctx context.Context, id types.RiskID) (*riskDocument, error) {
	doc, err := r.collection(CollectionRisks).Doc(id.String()).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(interfaces.ErrNotFound, "risk not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get risk", goerr.V("id", id))
	}

	var riskDoc riskDocument
	if err := doc.DataTo(&riskDoc); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal risk", goerr.V("id", id))
	}
	return &riskDoc, nil
}

func (r *riskRepository) Get(ctx context.Context, id types.RiskID) (*model.Risk, error) {
	doc, err := r.get(ctx, id)
	if err != nil {
		return nil, err
	}
	return doc.toModel(), nil
}

func (r *riskRepository) collect(iter *firestore.DocumentIterator) ([]*model.Risk, error) {
	defer iter.Stop()

	risks := []*model.Risk{}
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate risks")
		}

		var riskDoc riskDocument
		if err := doc.DataTo(&riskDoc); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal risk", goerr.V("doc", doc.Ref.ID))
		}
		risks = append(risks, riskDoc.toModel())
	}
	return risks, nil
}

// List pushes equality filters down to Firestore and applies search,
// ordering and paging on the narrowed result.
func (r *riskRepository) List(ctx context.Context, query *model.RiskQuery) (*model.RiskPage, error) {
	q := query.Normalize()
	fsQuery := r.collection(CollectionRisks).Query
	if q.Status != nil {
		fsQuery = fsQuery.Where("status", "==", q.Status.String())
	}
	if q.Severity != nil {
		fsQuery = fsQuery.Where("severity", "==", q.Severity.String())
	}
	if q.CategoryID != nil {
		fsQuery = fsQuery.Where("category_id", "==", q.CategoryID.String())
	}
	if q.OwnerID != nil {
		fsQuery = fsQuery.Where("owner_id", "==", q.OwnerID.String())
	}

	risks, err := r.collect(fsQuery.Documents(ctx))
	if err != nil {
		return nil, err
	}
	return model.ApplyRiskQuery(risks, q), nil
}

func (r *riskRepository) ListAll(ctx context.Context) ([]*model.Risk, error) {
	return r.collect(r.collection(CollectionRisks).OrderBy("created_at", firestore.Asc).Documents(ctx))
}

func (r *riskRepository) Update(ctx context.Context, risk *model.Risk) (*model.Risk, error) {
	existing, err := r.get(ctx, risk.ID)
	if err != nil {
		return nil, err
	}

	doc := toRiskDocument(risk)
	doc.CreatedAt = existing.CreatedAt
	doc.CreatedBy = existing.CreatedBy

	if _, err := r.collection(CollectionRisks).Doc(risk.ID.String()).Set(ctx, doc); err != nil {
		return nil, goerr.Wrap(err, "failed to update risk", goerr.V("id", risk.ID))
	}
	return doc.toModel(), nil
}

// Delete removes the risk together with its mitigations and control mappings
func (r *riskRepository) Delete(ctx context.Context, id types.RiskID) error {
	if _, err := r.get(ctx, id); err != nil {
		return err
	}

	refs := []*firestore.DocumentRef{r.collection(CollectionRisks).Doc(id.String())}
	for _, name := range []string{CollectionMitigations, CollectionControls} {
		iter := r.collection(name).Where("risk_id", "==", id.String()).Documents(ctx)
		deps, err := collectRefs(iter)
		if err != nil {
			return goerr.Wrap(err, "failed to list dependents", goerr.V("id", id), goerr.V("collection", name))
		}
		refs = append(refs, deps...)
	}

	bw := r.client.BulkWriter(ctx)
	jobs := make([]*firestore.BulkWriterJob, 0, len(refs))
	for _, ref := range refs {
		job, err := bw.Delete(ref)
		if err != nil {
			bw.End()
			return goerr.Wrap(err, "failed to enqueue delete", goerr.V("ref", ref.Path))
		}
		jobs = append(jobs, job)
	}
	bw.End()

	for _, job := range jobs {
		if _, err := job.Results(); err != nil {
			return goerr.Wrap(err, "failed to delete risk", goerr.V("id", id))
		}
	}
	return nil
}

func collectRefs(iter *firestore.DocumentIterator) ([]*firestore.DocumentRef, error) {
	defer iter.Stop()

	var refs []*firestore.DocumentRef
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		refs = append(refs, doc.Ref)
	}
	return refs, nil
}
