package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"gorm.io/gorm"

	applog "convivio/internal/log"
)

// validationError rejects malformed input. It renders as a 400 with the
// message keyed by the offending field.
type validationError struct {
	Field   string
	Message string
}

func (e *validationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// permissionError rejects a mutation attempted by someone other than the
// resource owner. Renders as 403.
type permissionError struct {
	Message string
}

func (e *permissionError) Error() string { return e.Message }

// notFoundError reports a missing referenced entity. Renders as 404.
type notFoundError struct {
	Message string
}

func (e *notFoundError) Error() string { return e.Message }

// duplicateRelationError rejects adding a relation that already exists.
type duplicateRelationError struct {
	Message string
}

func (e *duplicateRelationError) Error() string { return e.Message }

// relationNotFoundError rejects removing a relation that is absent.
type relationNotFoundError struct {
	Message string
}

func (e *relationNotFoundError) Error() string { return e.Message }

// selfSubscriptionError rejects a user following themselves. Checked
// before the duplicate check so it never masquerades as one.
type selfSubscriptionError struct{}

func (e *selfSubscriptionError) Error() string { return "cannot subscribe to yourself" }

// emptyCartError rejects building a shopping list from an empty cart.
type emptyCartError struct{}

func (e *emptyCartError) Error() string { return "cart is empty" }

// writeError maps a domain error onto its HTTP rendering. Every error in
// the taxonomy is a deterministic rejection of the request input; nothing
// here is retryable.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		validation *validationError
		permission *permissionError
		notFound   *notFoundError
		duplicate  *duplicateRelationError
		missing    *relationNotFoundError
		selfSub    *selfSubscriptionError
		emptyCart  *emptyCartError
	)

	switch {
	case errors.As(err, &validation):
		writeJSON(w, http.StatusBadRequest, map[string][]string{
			validation.Field: {validation.Message},
		})
	case errors.As(err, &permission):
		writeErrors(w, http.StatusForbidden, permission.Message)
	case errors.As(err, &notFound):
		writeErrors(w, http.StatusNotFound, notFound.Message)
	case errors.As(err, &duplicate):
		writeErrors(w, http.StatusBadRequest, duplicate.Message)
	case errors.As(err, &missing):
		writeErrors(w, http.StatusBadRequest, missing.Message)
	case errors.As(err, &selfSub):
		writeErrors(w, http.StatusBadRequest, selfSub.Error())
	case errors.As(err, &emptyCart):
		writeErrors(w, http.StatusBadRequest, emptyCart.Error())
	default:
		applog.Error(r.Context(), "request failed", "error", err, "path", r.URL.Path)
		writeErrors(w, http.StatusInternalServerError, "internal server error")
	}
}

// isUniqueViolation reports whether err is a uniqueness-constraint
// violation from the underlying store. A racing insert that loses to the
// constraint is translated into the same duplicate error the pre-check
// would have produced, keeping the toggle contract race-free.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "23505")
}

func logQueryError(ctx context.Context, msg string, err error, args ...any) {
	kv := append([]any{"error", err}, args...)
	applog.Error(ctx, msg, kv...)
}
