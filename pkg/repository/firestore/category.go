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

type categoryDocument struct {
	ID          string    `firestore:"id"`
	Name        string    `firestore:"name"`
	Description string    `firestore:"description"`
	CreatedAt   time.Time `firestore:"created_at"`
	UpdatedAt   time.Time `firestore:"updated_at"`
}

func (d *categoryDocument) toModel() *model.Category {
	return &model.Category{
		ID:          types.CategoryID(d.ID),
		Name:        d.Name,
		Description: d.Description,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

type categoryRepository struct {
	*base
}

func (r *categoryRepository) Put(ctx context.Context, c *model.Category) (*model.Category, error) {
	docRef := r.collection(CollectionCategories).Doc(c.ID.String())
	d := &categoryDocument{
		ID:          c.ID.String(),
		Name:        c.Name,
		Description: c.Description,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(docRef)
		if err != nil && status.Code(err) != codes.NotFound {
			return goerr.Wrap(err, "failed to get category")
		}
		if err == nil {
			var existing categoryDocument
			if err := snap.DataTo(&existing); err != nil {
				return goerr.Wrap(err, "failed to unmarshal category")
			}
			d.CreatedAt = existing.CreatedAt
		}
		return tx.Set(docRef, d)
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to put category", goerr.V("id", c.ID))
	}
	return d.toModel(), nil
}

func (r *categoryRepository) Get(ctx context.Context, id types.CategoryID) (*model.Category, error) {
	doc, err := r.collection(CollectionCategories).Doc(id.String()).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(interfaces.ErrNotFound, "category not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get category", goerr.V("id", id))
	}

	var d categoryDocument
	if err := doc.DataTo(&d); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal category", goerr.V("id", id))
	}
	return d.toModel(), nil
}

func (r *categoryRepository) List(ctx context.Context) ([]*model.Category, error) {
	iter := r.collection(CollectionCategories).OrderBy("name", firestore.Asc).Documents(ctx)
	defer iter.Stop()

	result := []*model.Category{}
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate categories")
		}

		var d categoryDocument
		if err := doc.DataTo(&d); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal category", goerr.V("doc", doc.Ref.ID))
		}
		result = append(result, d.toModel())
	}
	return result, nil
}

// Delete removes the category and clears category_id on the risks that
// referenced it
func (r *categoryRepository) Delete(ctx context.Context, id types.CategoryID) error {
	if _, err := r.Get(ctx, id); err != nil {
		return err
	}

	iter := r.collection(CollectionRisks).Where("category_id", "==", id.String()).Documents(ctx)
	riskRefs, err := collectRefs(iter)
	if err != nil {
		return goerr.Wrap(err, "failed to list risks of category", goerr.V("id", id))
	}

	bw := r.client.BulkWriter(ctx)
	jobs := make([]*firestore.BulkWriterJob, 0, len(riskRefs)+1)
	for _, ref := range riskRefs {
		job, err := bw.Update(ref, []firestore.Update{{Path: "category_id", Value: nil}})
		if err != nil {
			bw.End()
			return goerr.Wrap(err, "failed to enqueue risk update", goerr.V("ref", ref.Path))
		}
		jobs = append(jobs, job)
	}
	job, err := bw.Delete(r.collection(CollectionCategories).Doc(id.String()))
	if err != nil {
		bw.End()
		return goerr.Wrap(err, "failed to enqueue category delete", goerr.V("id", id))
	}
	jobs = append(jobs, job)
	bw.End()

	for _, job := range jobs {
		if _, err := job.Results(); err != nil {
			return goerr.Wrap(err, "failed to delete category", goerr.V("id", id))
		}
	}
	return nil
}
