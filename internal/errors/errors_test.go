package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name         string
		code         string
		wantCategory Category
		wantSeverity Severity
		wantRetry    bool
	}{
		{name: "not found", code: ErrCodeNotFound, wantCategory: CategoryIO, wantSeverity: SeverityError},
		{name: "invalid glob", code: ErrCodeInvalidGlob, wantCategory: CategoryValidation, wantSeverity: SeverityError},
		{name: "invalid encoding", code: ErrCodeInvalidEncoding, wantCategory: CategoryValidation, wantSeverity: SeverityError},
		{name: "decode failed", code: ErrCodeDecodeFailed, wantCategory: CategoryIO, wantSeverity: SeverityError},
		{name: "timeout is retryable", code: ErrCodeTimeout, wantCategory: CategoryNetwork, wantSeverity: SeverityWarning, wantRetry: true},
		{name: "fetch is retryable", code: ErrCodeFetchFailed, wantCategory: CategoryNetwork, wantSeverity: SeverityWarning, wantRetry: true},
		{name: "duplicate id", code: ErrCodeDuplicateID, wantCategory: CategoryConflict, wantSeverity: SeverityError},
		{name: "disk full is fatal", code: ErrCodeDiskFull, wantCategory: CategoryIO, wantSeverity: SeverityFatal},
		{name: "internal", code: ErrCodeInternal, wantCategory: CategoryInternal, wantSeverity: SeverityError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code, "boom", nil)
			assert.Equal(t, tt.wantCategory, err.Category)
			assert.Equal(t, tt.wantSeverity, err.Severity)
			assert.Equal(t, tt.wantRetry, err.Retryable)
		})
	}
}

func TestErrorString(t *testing.T) {
	err := NotFound("collection missing", nil)
	assert.Equal(t, "[ERR_201_NOT_FOUND] collection missing", err.Error())
}

func TestUnwrap(t *testing.T) {
	cause := stderrors.New("underlying")
	err := Wrap(ErrCodeIOFailure, cause)
	require.NotNil(t, err)
	assert.Equal(t, cause, stderrors.Unwrap(err))
	assert.True(t, stderrors.Is(err, cause))
}

func TestWrapNil(t *testing.T) {
	assert.Nil(t, Wrap(ErrCodeIOFailure, nil))
}

func TestPredicates(t *testing.T) {
	assert.True(t, IsNotFound(NotFound("x", nil)))
	assert.True(t, IsDecodeError(DecodeError("x", nil)))
	assert.True(t, IsConflict(Conflict("x", nil)))
	assert.True(t, IsTimeout(Timeout("x", nil)))
	assert.True(t, IsValidation(Validation("x", nil)))
	assert.True(t, IsValidation(New(ErrCodeInvalidRange, "x", nil)))

	assert.False(t, IsNotFound(DecodeError("x", nil)))
	assert.False(t, IsValidation(stderrors.New("plain")))
	assert.False(t, IsNotFound(nil))
}

func TestPredicatesSeeThroughWrapping(t *testing.T) {
	inner := NotFound("gone", nil)
	outer := fmt.Errorf("resolving collection: %w", inner)
	assert.True(t, IsNotFound(outer))
	assert.Equal(t, ErrCodeNotFound, GetCode(outer))
	assert.Equal(t, CategoryIO, GetCategory(outer))
}

func TestWithDetailAndSuggestion(t *testing.T) {
	err := Validation("bad pattern", nil).
		WithDetail("pattern", "[").
		WithSuggestion("check glob syntax")
	assert.Equal(t, "[", err.Details["pattern"])
	assert.Equal(t, "check glob syntax", err.Suggestion)
}

func TestIsMatchesByCode(t *testing.T) {
	a := NotFound("a", nil)
	b := NotFound("b", nil)
	assert.True(t, stderrors.Is(a, b))
	assert.False(t, stderrors.Is(a, Conflict("c", nil)))
}
