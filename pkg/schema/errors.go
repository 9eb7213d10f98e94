package schema

import "fmt"

// Error codes for structured error reporting.
const (
	ErrCodeValidation        = "VALIDATION_ERROR"
	ErrCodeDanglingReference = "DANGLING_REFERENCE"
	ErrCodeDuplicateCell     = "DUPLICATE_CELL"
	ErrCodeInvalidViewport   = "INVALID_VIEWPORT"
	ErrCodeRender            = "RENDER_ERROR"
	ErrCodeExpression        = "EXPRESSION_ERROR"
	ErrCodeNotFound          = "NOT_FOUND"
)

// FlowError is the structured error type for all flowpaper operations.
type FlowError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
	CellID  string         `json:"cell_id,omitempty"`
	Cause   error          `json:"-"`
}

func (e *FlowError) Error() string {
	if e.CellID != "" {
		return fmt.Sprintf("[%s] cell %s: %s", e.Code, e.CellID, e.Message)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *FlowError) Unwrap() error {
	return e.Cause
}

// NewError creates a new FlowError.
func NewError(code, message string) *FlowError {
	return &FlowError{Code: code, Message: message}
}

// NewErrorf creates a new FlowError with a formatted message.
func NewErrorf(code, format string, args ...any) *FlowError {
	return &FlowError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// WithCell attaches a cell ID to the error.
func (e *FlowError) WithCell(cellID string) *FlowError {
	e.CellID = cellID
	return e
}

// WithCause attaches an underlying cause.
func (e *FlowError) WithCause(err error) *FlowError {
	e.Cause = err
	return e
}

// WithDetails attaches key-value details.
func (e *FlowError) WithDetails(details map[string]any) *FlowError {
	e.Details = details
	return e
}

// HasCode reports whether err is a FlowError carrying the given code.
func HasCode(err error, code string) bool {
	for err != nil {
		if fe, ok := err.(*FlowError); ok {
			return fe.Code == code
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
