// Package auth defines the external authorization collaborator. Permission
// resolution lives in a separate service; this package only carries the
// interface the handlers consult before any store access.
package auth

import "context"

// Resources and actions known to the production service
const (
	ResourceProduction   = "production"
	ResourceProductivity = "productivity"

	ActionImport = "import"
	ActionDelete = "delete"
	ActionRecord = "record"
)

// Authorizer resolves whether a user may perform an action on a resource
type Authorizer interface {
	IsAuthorized(ctx context.Context, userID, resource, action string) (bool, error)
}

// AllowAll is an Authorizer that grants everything. Used in development and tests.
type AllowAll struct{}

func (AllowAll) IsAuthorized(ctx context.Context, userID, resource, action string) (bool, error) {
	return true, nil
}
