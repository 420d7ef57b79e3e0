package common

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestToStatus(t *testing.T) {
	assert.NoError(t, ToStatus(nil))

	tests := []struct {
		name string
		err  error
		code codes.Code
	}{
		{"invalid input", NewAppError("BAD", "qty", ErrInvalidInput), codes.InvalidArgument},
		{"not found", WrapError(ErrNotFound, "invoice"), codes.NotFound},
		{"database", NewAppError("DB", "upsert", ErrDatabase), codes.Internal},
		{"plain", errors.New("boom"), codes.Internal},
		{"formatted internal", InternalErrorf("encode %s", "row"), codes.Internal},
		{"already a status", status.Error(codes.ResourceExhausted, "slow down"), codes.ResourceExhausted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, status.Code(ToStatus(tt.err)))
		})
	}
}

func TestValidator(t *testing.T) {
	v := NewValidator().
		Field("filename", "  ", Required).
		Field("page", -1, Positive).
		Field("format", "csv", OneOf("text", "json")).
		Field("ok", "json", Required, OneOf("text", "json"))

	assert.True(t, v.HasErrors())
	assert.Len(t, v.Errors(), 3)
	assert.Error(t, v.Error())
	assert.Equal(t, codes.InvalidArgument, status.Code(ValidateAndReturnError(v)))

	neg := NewValidator().Field("limit", 0, NonNegative).Field("offset", -1, NonNegative)
	assert.Len(t, neg.Errors(), 1)
	assert.Equal(t, "offset", neg.Errors()[0].Field)

	assert.NoError(t, NewValidator().Error())
	assert.NoError(t, ValidateAndReturnError(NewValidator()))
}

func TestContextIDs(t *testing.T) {
	ctx := WithBatchID(WithRequestID(context.Background(), "req-1"), "batch-1")
	assert.Equal(t, "req-1", RequestIDFromContext(ctx))
	assert.Equal(t, "batch-1", BatchIDFromContext(ctx))
	assert.Empty(t, BatchIDFromContext(context.Background()))
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, LogConfig{Level: "warn", Format: "json"})
	logger.Info("hidden")
	logger.Warn("shown", "file", "a.pdf")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"file":"a.pdf"`)

	buf.Reset()
	plain := NewLogger(&buf, LogConfig{Level: "debug", Plain: true})
	plain.Debug("processing file", "file", "b.pdf")
	assert.Equal(t, "msg=\"processing file\" file=b.pdf\n", buf.String())

	assert.Equal(t, slog.LevelInfo, ParseLevel("bogus"))
}
