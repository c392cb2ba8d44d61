package http

import (
	"errors"
	"net/http"

	"schoolsite/internal/core"
	applog "schoolsite/internal/log"
)

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrInvalidRecord):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrEmptyClassName),
		errors.Is(err, core.ErrClassNameTooLong),
		errors.Is(err, core.ErrDescriptionTooLong),
		errors.Is(err, core.ErrAmountTooLarge),
		errors.Is(err, core.ErrEmptyName),
		errors.Is(err, core.ErrInvalidBatchYear),
		errors.Is(err, core.ErrEmptyTitle),
		errors.Is(err, core.ErrEmptyImageURL):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders err. Validator failures list their fields; server
// errors are logged and hidden from the client.
func writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	if fields := validationFields(err); fields != nil {
		ValidationError(fields).Write(w)
		return
	}
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Request failed",
			applog.NewFields().Operation(op).Err(err).Args()...)
		InternalServerError("internal error").Write(w)
		return
	}
	ErrorResponse(status, err.Error()).Write(w)
}
