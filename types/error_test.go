package types

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_Error(t *testing.T) {
	err := NewError(ErrConversationNotFound, "no such conversation")
	assert.Equal(t, "[CONVERSATION_NOT_FOUND] no such conversation", err.Error())

	withCause := NewError(ErrGenerationFailed, "provider call failed").WithCause(fmt.Errorf("timeout"))
	assert.Contains(t, withCause.Error(), "GENERATION_FAILED")
	assert.Contains(t, withCause.Error(), "timeout")
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("upstream 502")
	err := NewError(ErrGenerationFailed, "generation failed").WithCause(cause)
	assert.True(t, errors.Is(err, cause))
}

func TestError_Builders(t *testing.T) {
	err := NewFieldError(ErrValidation, "personality.openness", "out of range").
		WithHTTPStatus(400).
		WithRetryable(false)

	assert.Equal(t, ErrValidation, err.Code)
	assert.Equal(t, "personality.openness", err.Field)
	assert.Equal(t, 400, err.HTTPStatus)
	assert.False(t, err.Retryable)
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(NewError(ErrGenerationFailed, "x").WithRetryable(true)))
	assert.False(t, IsRetryable(NewError(ErrGenerationFailed, "x")))
	assert.False(t, IsRetryable(errors.New("plain error")))
}

func TestGetErrorCode(t *testing.T) {
	assert.Equal(t, ErrConversationNotActive, GetErrorCode(NewError(ErrConversationNotActive, "done")))
	assert.Equal(t, ErrorCode(""), GetErrorCode(errors.New("plain")))
}
