package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/hrm-core/internal/pkg/apperror"
	"github.com/cmlabs-hris/hrm-core/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses by their kind.
func HandleError(w http.ResponseWriter, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	var appErr *apperror.Error
	message := "An unexpected error occurred"
	if errors.As(err, &appErr) {
		message = appErr.Message
	}

	switch apperror.KindOf(err) {
	case apperror.KindValidation:
		ValidationError(w, map[string]string{"error": message})
	case apperror.KindAuthorization:
		Forbidden(w, message)
	case apperror.KindStage:
		Conflict(w, CodeWrongStage, message)
	case apperror.KindConflict:
		Conflict(w, CodeConflict, message)
	case apperror.KindNotFound:
		NotFound(w, message)
	default:
		slog.Error("unhandled error", "error", err)
		InternalServerError(w, message)
	}
}
