package contracts

import (
	"context"

	"carealert-service/internal/app/models"
)

// IdentityProvider authenticates credentials and reports session changes. A
// nil principal on the change stream means signed out.
type IdentityProvider interface {
	SignIn(ctx context.Context, email, password string) (*models.Principal, error)
	SignOut(ctx context.Context) error
	SessionChanges() <-chan *models.Principal
}
