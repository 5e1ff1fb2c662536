package errors

import (
	stderrors "errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		expected string
	}{
		{
			name:     "not found",
			err:      NewNotFoundError("/objects/1"),
			expected: "[not_found] fetch: resource /objects/1 not found",
		},
		{
			name:     "with cause",
			err:      NewFileSystemError("/tmp/x.csv", io.ErrShortWrite),
			expected: "[file_system] export: cannot write /tmp/x.csv: short write",
		},
		{
			name:     "empty input",
			err:      NewEmptyInputError(),
			expected: "[empty_input] tabulate: no records to tabulate",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}

	var nilErr *Error
	assert.Equal(t, "unknown pipeline error", nilErr.Error())
}

func TestError_IsMatchesKind(t *testing.T) {
	err := fmt.Errorf("object 42: %w", NewNotFoundError("/objects/42"))

	assert.True(t, stderrors.Is(err, ErrNotFound))
	assert.False(t, stderrors.Is(err, ErrTimeout))
	assert.Equal(t, KindNotFound, KindOf(err))
	assert.Equal(t, Kind(""), KindOf(io.EOF))
}

func TestError_UnwrapsCause(t *testing.T) {
	err := NewConnectionError("http://x", io.ErrUnexpectedEOF)
	assert.True(t, stderrors.Is(err, io.ErrUnexpectedEOF))
	assert.Equal(t, "http://x", err.Context["url"])
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"connection", NewConnectionError("u", io.EOF), true},
		{"timeout", NewTimeoutError("u", nil), true},
		{"not found", NewNotFoundError("u"), false},
		{"server error", NewHTTPStatusError("u", 503), true},
		{"rate limited", NewHTTPStatusError("u", 429), true},
		{"bad request", NewHTTPStatusError("u", 400), false},
		{"wrapped", fmt.Errorf("fetch: %w", NewTimeoutError("u", nil)), true},
		{"plain", io.EOF, false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRetryable(tt.err))
		})
	}
}

func TestKind_Stage(t *testing.T) {
	assert.Equal(t, StageFetch, KindTimeout.Stage())
	assert.Equal(t, StageFlatten, KindTypeMismatch.Stage())
	assert.Equal(t, StageTabulate, KindInvalidRecord.Stage())
	assert.Equal(t, StageExport, KindInvalidArgument.Stage())
	assert.Equal(t, StageExport, KindRender.Stage())
	assert.Equal(t, StageNotify, KindNotification.Stage())
}

func TestErrorList(t *testing.T) {
	var list ErrorList
	assert.NoError(t, list.ErrorOrNil())

	list.Add(nil)
	list.Add(NewFileSystemError("a.pdf", io.EOF))
	assert.Equal(t, "[file_system] export: cannot write a.pdf: EOF", list.Error())

	list.Add(NewInvalidArgumentError("path", "is empty"))
	err := list.ErrorOrNil()
	assert.Error(t, err)
	assert.True(t, stderrors.Is(err, ErrInvalidArgument))
	assert.True(t, stderrors.Is(err, ErrFileSystem))
	assert.Contains(t, err.Error(), "2 errors occurred")
}
