package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cmlabs-hris/hrm-core/internal/pkg/apperror"
	"github.com/cmlabs-hris/hrm-core/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"validation errors", validator.ValidationErrors{{Field: "start_date", Message: "required"}}, http.StatusUnprocessableEntity, "VALIDATION_ERROR"},
		{"validation kind", apperror.New(apperror.KindValidation, "leave type is inactive"), http.StatusUnprocessableEntity, "VALIDATION_ERROR"},
		{"authorization", apperror.New(apperror.KindAuthorization, "not an approver"), http.StatusForbidden, "FORBIDDEN"},
		{"stage", fmt.Errorf("act: %w", apperror.New(apperror.KindStage, "wrong stage")), http.StatusConflict, CodeWrongStage},
		{"conflict", apperror.New(apperror.KindConflict, "already clocked in"), http.StatusConflict, CodeConflict},
		{"not found", apperror.New(apperror.KindNotFound, "leave request not found"), http.StatusNotFound, "NOT_FOUND"},
		{"unknown", errors.New("connection reset"), http.StatusInternalServerError, "INTERNAL_SERVER_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			HandleError(rec, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			var body Response
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.False(t, body.Success)
			require.NotNil(t, body.Error)
			assert.Equal(t, tt.wantCode, body.Error.Code)
		})
	}
}

func TestHandleError_HidesInternalMessage(t *testing.T) {
	rec := httptest.NewRecorder()
	HandleError(rec, errors.New("pq: password authentication failed"))

	assert.NotContains(t, rec.Body.String(), "password")
}
