package chain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

type permanentMarker struct{}

func (permanentMarker) Error() string   { return "bad checkpoint" }
func (permanentMarker) Permanent() bool { return true }

func TestErrorClassification(t *testing.T) {
	base := errors.New("boom")

	transient := NewTransientError("count", base)
	permanent := NewPermanentError("process", base)

	assert.True(t, IsTransient(transient))
	assert.False(t, IsPermanent(transient))
	assert.True(t, IsPermanent(permanent))
	assert.False(t, IsTransient(permanent))

	wrapped := fmt.Errorf("deliver message: %w", permanent)
	assert.True(t, IsPermanent(wrapped))
	assert.ErrorIs(t, wrapped, base)

	assert.True(t, IsTransient(base), "unclassified errors are retryable")
	assert.True(t, IsPermanent(fmt.Errorf("verify: %w", permanentMarker{})))

	assert.False(t, IsTransient(nil))
	assert.False(t, IsPermanent(nil))
}
