package risk

import (
	"errors"
	"fmt"

	"github.com/radsafe/doserisk/internal/dose"
)

// ErrorCode categorizes fatal computation errors.
type ErrorCode string

const (
	// ErrCodeParameterMissing indicates the coefficient table has no entry
	// for the requested organ. Fatal for that organ's computation only.
	ErrCodeParameterMissing ErrorCode = "PARAMETER_MISSING"

	// ErrCodeInputInvalid indicates ages or dose violate the input contract.
	ErrCodeInputInvalid ErrorCode = "INPUT_INVALID"
)

// Error is a fatal risk-computation error.
type Error struct {
	Code    ErrorCode
	Organ   dose.Organ
	Sex     dose.Sex
	Message string
}

func (e *Error) Error() string {
	if e.Organ != "" {
		return fmt.Sprintf("%s: organ %s: %s", e.Code, e.Organ, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsParameterMissing reports whether err is a missing-coefficient error.
// Uses errors.As to handle wrapped errors.
func IsParameterMissing(err error) bool {
	var re *Error
	if errors.As(err, &re) {
		return re.Code == ErrCodeParameterMissing
	}
	return false
}

// IsInputInvalid reports whether err is an invalid-input error.
func IsInputInvalid(err error) bool {
	var re *Error
	if errors.As(err, &re) {
		return re.Code == ErrCodeInputInvalid
	}
	return false
}
