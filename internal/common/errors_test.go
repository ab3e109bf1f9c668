package common

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestWrapError(t *testing.T) {
	assert.NoError(t, WrapError(nil, "open document"))

	err := WrapError(ErrNotFound, "open document")
	assert.EqualError(t, err, "open document: resource not found")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestValidateAndReturnError(t *testing.T) {
	ok := NewValidator().Field("source", "bol.pdf", Required, MaxLength(16))
	assert.NoError(t, ValidateAndReturnError(ok))

	bad := NewValidator().
		Field("source", "", Required).
		Field("order_number", "1234567890", MaxLength(4))
	err := ValidateAndReturnError(bad)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
	assert.Equal(t, "source is required; order_number must be at most 4 characters", status.Convert(err).Message())
}

func TestContextIDs(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, RunIDFromContext(ctx))
	assert.Empty(t, RequestIDFromContext(ctx))

	ctx = WithRunID(WithRequestID(ctx, "req-1"), "run-1")
	assert.Equal(t, "run-1", RunIDFromContext(ctx))
	assert.Equal(t, "req-1", RequestIDFromContext(ctx))
}
