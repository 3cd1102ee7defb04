package service

import (
	"context"
	"database/sql"
	"errors"

	appErrors "github.com/classtrack/classtrack-api/pkg/errors"
)

// storeError maps persistence failures onto the API error kinds. Deadline
// expiry surfaces as a timeout rather than a generic internal error so
// clients can distinguish a slow backend from a broken one.
func storeError(err error, notFoundMsg, failMsg string) error {
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return appErrors.Clone(appErrors.ErrNotFound, notFoundMsg)
	case errors.Is(err, context.DeadlineExceeded):
		return appErrors.Clone(appErrors.ErrTimeout, failMsg)
	default:
		return appErrors.Wrap(err, appErrors.ErrGateway.Code, appErrors.ErrGateway.Status, failMsg)
	}
}
