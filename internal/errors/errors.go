package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// Kind classifies a pipeline error
type Kind string

const (
	// Fetch errors
	KindConnection Kind = "connection"
	KindTimeout    Kind = "timeout"
	KindNotFound   Kind = "not_found"
	KindHTTPStatus Kind = "http_status"
	KindResponse   Kind = "invalid_response"

	// Flatten errors
	KindMissingField Kind = "missing_field"
	KindTypeMismatch Kind = "type_mismatch"

	// Tabulate errors
	KindEmptyInput    Kind = "empty_input"
	KindInvalidRecord Kind = "invalid_record"

	// Export errors
	KindInvalidArgument Kind = "invalid_argument"
	KindFileSystem      Kind = "file_system"
	KindRender          Kind = "render"

	// Notification errors
	KindNotification Kind = "notification"
)

// Stage names the pipeline stage an error belongs to
type Stage string

const (
	StageFetch    Stage = "fetch"
	StageFlatten  Stage = "flatten"
	StageTabulate Stage = "tabulate"
	StageExport   Stage = "export"
	StageNotify   Stage = "notify"
)

// Stage returns the stage the kind is raised in
func (k Kind) Stage() Stage {
	switch k {
	case KindConnection, KindTimeout, KindNotFound, KindHTTPStatus, KindResponse:
		return StageFetch
	case KindMissingField, KindTypeMismatch:
		return StageFlatten
	case KindEmptyInput, KindInvalidRecord:
		return StageTabulate
	case KindInvalidArgument, KindFileSystem, KindRender:
		return StageExport
	default:
		return StageNotify
	}
}

// Error is the error type returned by every pipeline component
type Error struct {
	Kind      Kind                   `json:"kind"`
	Stage     Stage                  `json:"stage"`
	Message   string                 `json:"message"`
	Cause     error                  `json:"-"`
	Context   map[string]interface{} `json:"context,omitempty"`
	Retryable bool                   `json:"retryable"`
}

// Error implements the error interface
func (e *Error) Error() string {
	if e == nil {
		return "unknown pipeline error"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", e.Kind, e.Stage)
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// Is matches errors of the same kind, so errors.Is(err, ErrNotFound) works
// for any not-found error regardless of its message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || e == nil || t == nil {
		return false
	}
	return e.Kind == t.Kind
}

// With adds a context entry to the error and returns it
func (e *Error) With(key string, value interface{}) *Error {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// Sentinels for errors.Is
var (
	ErrConnection      = &Error{Kind: KindConnection, Stage: StageFetch}
	ErrTimeout         = &Error{Kind: KindTimeout, Stage: StageFetch}
	ErrNotFound        = &Error{Kind: KindNotFound, Stage: StageFetch}
	ErrHTTPStatus      = &Error{Kind: KindHTTPStatus, Stage: StageFetch}
	ErrResponse        = &Error{Kind: KindResponse, Stage: StageFetch}
	ErrMissingField    = &Error{Kind: KindMissingField, Stage: StageFlatten}
	ErrTypeMismatch    = &Error{Kind: KindTypeMismatch, Stage: StageFlatten}
	ErrEmptyInput      = &Error{Kind: KindEmptyInput, Stage: StageTabulate}
	ErrInvalidRecord   = &Error{Kind: KindInvalidRecord, Stage: StageTabulate}
	ErrInvalidArgument = &Error{Kind: KindInvalidArgument, Stage: StageExport}
	ErrFileSystem      = &Error{Kind: KindFileSystem, Stage: StageExport}
	ErrRender          = &Error{Kind: KindRender, Stage: StageExport}
	ErrNotification    = &Error{Kind: KindNotification, Stage: StageNotify}
)

func newError(kind Kind, message string, cause error, retryable bool) *Error {
	return &Error{
		Kind:      kind,
		Stage:     kind.Stage(),
		Message:   message,
		Cause:     cause,
		Retryable: retryable,
	}
}

// NewConnectionError reports a failed connection to the record source
func NewConnectionError(url string, cause error) *Error {
	return newError(KindConnection, "request to "+url+" failed", cause, true).With("url", url)
}

// NewTimeoutError reports a request that did not finish in time
func NewTimeoutError(url string, cause error) *Error {
	return newError(KindTimeout, "request to "+url+" timed out", cause, true).With("url", url)
}

// NewNotFoundError reports a resource the record source does not have
func NewNotFoundError(url string) *Error {
	return newError(KindNotFound, "resource "+url+" not found", nil, false).With("url", url)
}

// NewHTTPStatusError reports an unexpected HTTP status. Server errors and
// 429 are retryable, everything else is not.
func NewHTTPStatusError(url string, status int) *Error {
	retryable := status >= 500 || status == 429
	return newError(KindHTTPStatus, fmt.Sprintf("unexpected status %d from %s", status, url), nil, retryable).
		With("url", url).
		With("status", status)
}

// NewResponseError reports a response body that is not the expected JSON
func NewResponseError(url string, cause error) *Error {
	return newError(KindResponse, "invalid response from "+url, cause, false).With("url", url)
}

// NewMissingFieldError reports a required repeated-group field that is absent
func NewMissingFieldError(field string) *Error {
	return newError(KindMissingField, "field "+field+" is missing", nil, false).With("field", field)
}

// NewTypeMismatchError reports a field whose value has an unexpected shape
func NewTypeMismatchError(field, want, got string) *Error {
	return newError(KindTypeMismatch, fmt.Sprintf("field %s: want %s, got %s", field, want, got), nil, false).
		With("field", field)
}

// NewEmptyInputError reports an empty record list
func NewEmptyInputError() *Error {
	return newError(KindEmptyInput, "no records to tabulate", nil, false)
}

// NewInvalidRecordError reports a list element that is not a record
func NewInvalidRecordError(index int, reason string) *Error {
	return newError(KindInvalidRecord, fmt.Sprintf("record %d: %s", index, reason), nil, false).
		With("index", index)
}

// NewInvalidArgumentError reports a bad exporter argument
func NewInvalidArgumentError(argument, reason string) *Error {
	return newError(KindInvalidArgument, argument+" "+reason, nil, false).With("argument", argument)
}

// NewFileSystemError reports a report file that could not be written
func NewFileSystemError(path string, cause error) *Error {
	return newError(KindFileSystem, "cannot write "+path, cause, false).With("path", path)
}

// NewRenderError reports a report whose content could not be produced
func NewRenderError(format, path, step string, cause error) *Error {
	return newError(KindRender, fmt.Sprintf("cannot render %s report: %s", format, step), cause, false).
		With("format", format).
		With("path", path)
}

// NewNotificationError reports a failed report notification
func NewNotificationError(message string, cause error) *Error {
	return newError(KindNotification, message, cause, false)
}

// KindOf returns the kind of err, or "" when err is not a pipeline error
func KindOf(err error) Kind {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsRetryable checks if an error is retryable
func IsRetryable(err error) bool {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Retryable
	}
	return false
}

// ErrorList collects errors from steps that keep going after a failure
type ErrorList struct {
	Errors []error `json:"errors"`
}

// Error implements the error interface
func (e *ErrorList) Error() string {
	switch len(e.Errors) {
	case 0:
		return "no errors"
	case 1:
		return e.Errors[0].Error()
	}
	parts := make([]string, len(e.Errors))
	for i, err := range e.Errors {
		parts[i] = err.Error()
	}
	return fmt.Sprintf("%d errors occurred: %s", len(e.Errors), strings.Join(parts, "; "))
}

// Unwrap exposes the collected errors to errors.Is and errors.As
func (e *ErrorList) Unwrap() []error {
	return e.Errors
}

// Add adds an error to the list
func (e *ErrorList) Add(err error) {
	if err != nil {
		e.Errors = append(e.Errors, err)
	}
}

// HasErrors returns true if there are any errors
func (e *ErrorList) HasErrors() bool {
	return len(e.Errors) > 0
}

// ErrorOrNil returns the list when it holds errors and nil otherwise
func (e *ErrorList) ErrorOrNil() error {
	if e == nil || !e.HasErrors() {
		return nil
	}
	return e
}
