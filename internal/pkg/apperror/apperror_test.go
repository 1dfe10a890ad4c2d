package apperror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	errStage := New(KindStage, "wrong stage")

	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, KindUnknown},
		{"plain", errors.New("boom"), KindUnknown},
		{"direct", errStage, KindStage},
		{"wrapped", fmt.Errorf("act: %w", errStage), KindStage},
		{"double wrapped", fmt.Errorf("outer: %w", fmt.Errorf("inner: %w", New(KindConflict, "x"))), KindConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestIs_KeepsSentinelIdentity(t *testing.T) {
	errNotFound := New(KindNotFound, "missing")
	wrapped := fmt.Errorf("get: %w", errNotFound)

	assert.True(t, errors.Is(wrapped, errNotFound))
	assert.True(t, Is(wrapped, KindNotFound))
	assert.False(t, Is(wrapped, KindConflict))
}
