// Package source defines the boundary to the remote backend that owns tasks
// and companies. The reminder pipeline consumes task snapshots through this
// interface and pushes back exactly one mutation: updating a task (used to
// clear its reminder).
package source

import (
	"context"
	"errors"
	"fmt"

	"taskflow/internal/model"
)

// AuthError indicates that authentication has failed or expired for the
// backend. It is returned by clients when a 401 response is received.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("auth error: %s", e.Message)
}

// IsAuthError reports whether err (or any error in its chain) is an AuthError.
func IsAuthError(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}

// Source is the contract the dashboard backend must implement.
type Source interface {
	// ValidateConnection verifies credentials and connectivity.
	// Returns a human-readable status message on success.
	ValidateConnection(ctx context.Context) (string, error)

	// FetchTasks retrieves the full current task list. The scheduler treats
	// the result as a snapshot to rebuild from, not a delta stream.
	FetchTasks(ctx context.Context) ([]model.Task, error)

	// FetchCompanies retrieves all client companies.
	FetchCompanies(ctx context.Context) ([]model.Company, error)

	// UpdateTask writes a modified task back to the backend.
	UpdateTask(ctx context.Context, task model.Task) error
}
