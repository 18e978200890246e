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

type frameworkDocument struct {
	ID          string    `firestore:"id"`
	Name        string    `firestore:"name"`
	Description string    `firestore:"description"`
	CreatedAt   time.Time `firestore:"created_at"`
}

func (d *frameworkDocument) toModel() *model.Framework {
	return &model.Framework{
		ID:          types.FrameworkID(d.ID),
		Name:        d.Name,
		Description: d.Description,
		CreatedAt:   d.CreatedAt,
	}
}

type frameworkRepository struct {
	*base
}

func (r *frameworkRepository) Create(ctx context.Context, f *model.Framework) (*model.Framework, error) {
	d := &frameworkDocument{
		ID:          f.ID.String(),
		Name:        f.Name,
		Description: f.Description,
		CreatedAt:   f.CreatedAt,
	}
	if _, err := r.collection(CollectionFrameworks).Doc(d.ID).Create(ctx, d); err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return nil, goerr.Wrap(interfaces.ErrConflict, "framework already exists", goerr.V("id", f.ID))
		}
		return nil, goerr.Wrap(err, "failed to create framework", goerr.V("id", f.ID))
	}
	return d.toModel(), nil
}

func (r *frameworkRepository) Get(ctx context.Context, id types.FrameworkID) (*model.Framework, error) {
	doc, err := r.collection(CollectionFrameworks).Doc(id.String()).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(interfaces.ErrNotFound, "framework not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get framework", goerr.V("id", id))
	}

	var d frameworkDocument
	if err := doc.DataTo(&d); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal framework", goerr.V("id", id))
	}
	return d.toModel(), nil
}

func (r *frameworkRepository) List(ctx context.Context) ([]*model.Framework, error) {
	iter := r.collection(CollectionFrameworks).OrderBy("name", firestore.Asc).Documents(ctx)
	defer iter.Stop()

	result := []*model.Framework{}
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate frameworks")
		}

		var d frameworkDocument
		if err := doc.DataTo(&d); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal framework", goerr.V("doc", doc.Ref.ID))
		}
		result = append(result, d.toModel())
	}
	return result, nil
}

type controlDocument struct {
	ID          string    `firestore:"id"`
	RiskID      string    `firestore:"risk_id"`
	FrameworkID string    `firestore:"framework_id"`
	ControlRef  string    `firestore:"control_ref"`
	Notes       string    `firestore:"notes"`
	CreatedAt   time.Time `firestore:"created_at"`
	CreatedBy   string    `firestore:"created_by"`
}

func (d *controlDocument) toModel() *model.ControlMapping {
	return &model.ControlMapping{
		ID:          types.ControlMappingID(d.ID),
		RiskID:      types.RiskID(d.RiskID),
		FrameworkID: types.FrameworkID(d.FrameworkID),
		ControlRef:  d.ControlRef,
		Notes:       d.Notes,
		CreatedAt:   d.CreatedAt,
		CreatedBy:   types.UserID(d.CreatedBy),
	}
}

type controlRepository struct {
	*base
}

func (r *controlRepository) frameworkNames(ctx context.Context) (map[types.FrameworkID]string, error) {
	frameworks, err := (&frameworkRepository{base: r.base}).List(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[types.FrameworkID]string, len(frameworks))
	for _, f := range frameworks {
		names[f.ID] = f.Name
	}
	return names, nil
}

func (r *controlRepository) Create(ctx context.Context, c *model.ControlMapping) (*model.ControlMapping, error) {
	framework, err := (&frameworkRepository{base: r.base}).Get(ctx, c.FrameworkID)
	if err != nil {
		return nil, err
	}

	d := &controlDocument{
		ID:          string(c.ID),
		RiskID:      c.RiskID.String(),
		FrameworkID: c.FrameworkID.String(),
		ControlRef:  c.ControlRef,
		Notes:       c.Notes,
		CreatedAt:   c.CreatedAt,
		CreatedBy:   c.CreatedBy.String(),
	}
	if _, err := r.collection(CollectionControls).Doc(d.ID).Create(ctx, d); err != nil {
		return nil, goerr.Wrap(err, "failed to create control mapping", goerr.V("id", c.ID))
	}

	result := d.toModel()
	result.FrameworkName = framework.Name
	return result, nil
}

func (r *controlRepository) ListByRisk(ctx context.Context, riskID types.RiskID) ([]*model.ControlMapping, error) {
	names, err := r.frameworkNames(ctx)
	if err != nil {
		return nil, err
	}

	iter := r.collection(CollectionControls).
		Where("risk_id", "==", riskID.String()).
		OrderBy("created_at", firestore.Asc).
		Documents(ctx)
	defer iter.Stop()

	result := []*model.ControlMapping{}
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate control mappings", goerr.V("risk_id", riskID))
		}

		var d controlDocument
		if err := doc.DataTo(&d); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal control mapping", goerr.V("doc", doc.Ref.ID))
		}
		m := d.toModel()
		m.FrameworkName = names[m.FrameworkID]
		result = append(result, m)
	}
	return result, nil
}

func (r *controlRepository) Delete(ctx context.Context, id types.ControlMappingID) error {
	docRef := r.collection(CollectionControls).Doc(string(id))
	if _, err := docRef.Get(ctx); err != nil {
		if status.Code(err) == codes.NotFound {
			return goerr.Wrap(interfaces.ErrNotFound, "control mapping not found", goerr.V("id", id))
		}
		return goerr.Wrap(err, "failed to get control mapping", goerr.V("id", id))
	}
	if _, err := docRef.Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to delete control mapping", goerr.V("id", id))
	}
	return nil
}
