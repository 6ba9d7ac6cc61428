package extract

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes fatal extraction errors. Per-line and per-cell
// problems are diagnostics, not errors; only a document that produces no
// usable data at all aborts.
type ErrorCode string

const (
	// ErrCodeEmptyDocument indicates the document content was empty.
	ErrCodeEmptyDocument ErrorCode = "EMPTY_DOCUMENT"

	// ErrCodeNoData indicates no line in the document yielded a usable dose
	// observation.
	ErrCodeNoData ErrorCode = "NO_USABLE_DATA"
)

// Error is a fatal extraction error for one document.
type Error struct {
	Code    ErrorCode
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsNoData reports whether err is a no-usable-data extraction error.
// Uses errors.As to handle wrapped errors.
func IsNoData(err error) bool {
	var ee *Error
	if errors.As(err, &ee) {
		return ee.Code == ErrCodeNoData || ee.Code == ErrCodeEmptyDocument
	}
	return false
}
