package interfaces

import (
	"context"

	"github.com/secmon-lab/riskregister/pkg/domain/model"
	"github.com/secmon-lab/riskregister/pkg/domain/types"
)

type UserRepository interface {
	// Create stores a new user. It fails when the email is already taken.
	Create(ctx context.Context, u *model.User) (*model.User, error)
	Get(ctx context.Context, id types.UserID) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)

	// List returns every user ordered by name
	List(ctx context.Context) ([]*model.User, error)
}
