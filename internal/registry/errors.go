package registry

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode categorizes registry errors.
type ErrorCode string

const (
	// ErrCodeInvalidListName indicates an operation named a list that does not exist.
	ErrCodeInvalidListName ErrorCode = "INVALID_LIST_NAME"

	// ErrCodeInvalidMember indicates a member outside the universe.
	ErrCodeInvalidMember ErrorCode = "INVALID_MEMBER"

	// ErrCodeNonMonotonicStep indicates Advance was asked to move backwards.
	ErrCodeNonMonotonicStep ErrorCode = "NON_MONOTONIC_STEP"

	// ErrCodeInvalidOffset indicates a positive pos, i.e. a future step.
	ErrCodeInvalidOffset ErrorCode = "INVALID_OFFSET"

	// ErrCodeInvalidConfig indicates the registry could not be constructed.
	ErrCodeInvalidConfig ErrorCode = "INVALID_CONFIG"
)

// Error is returned by every failing registry operation.
type Error struct {
	Code    ErrorCode
	Message string

	// List is the list the call addressed, if any.
	List string

	// Members holds the offending members for INVALID_MEMBER.
	Members []string

	Details map[string]string
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s", e.Code, e.Message)
	if e.List != "" {
		fmt.Fprintf(&b, " (list=%s)", e.List)
	}
	if len(e.Members) > 0 {
		fmt.Fprintf(&b, " %v", e.Members)
	}
	return b.String()
}

func hasCode(err error, code ErrorCode) bool {
	var re *Error
	if errors.As(err, &re) {
		return re.Code == code
	}
	return false
}

// IsInvalidListName reports whether err is an unknown-list error.
func IsInvalidListName(err error) bool { return hasCode(err, ErrCodeInvalidListName) }

// IsInvalidMember reports whether err rejected members outside the universe.
func IsInvalidMember(err error) bool { return hasCode(err, ErrCodeInvalidMember) }

// IsNonMonotonicStep reports whether err is a backwards Advance.
func IsNonMonotonicStep(err error) bool { return hasCode(err, ErrCodeNonMonotonicStep) }

// IsInvalidOffset reports whether err rejected a positive pos.
func IsInvalidOffset(err error) bool { return hasCode(err, ErrCodeInvalidOffset) }

// IsInvalidConfig reports whether err came from New rejecting its Config.
func IsInvalidConfig(err error) bool { return hasCode(err, ErrCodeInvalidConfig) }

// CodeOf extracts the error code, or "" if err is not a registry error.
func CodeOf(err error) ErrorCode {
	var re *Error
	if errors.As(err, &re) {
		return re.Code
	}
	return ""
}

func newListError(name string) *Error {
	return &Error{
		Code:    ErrCodeInvalidListName,
		Message: "list has not been created",
		List:    name,
	}
}

func newStepError(sn, current int64) *Error {
	return &Error{
		Code:    ErrCodeNonMonotonicStep,
		Message: fmt.Sprintf("sn %d must be >= current sn %d", sn, current),
		Details: map[string]string{
			"sn":      fmt.Sprintf("%d", sn),
			"current": fmt.Sprintf("%d", current),
		},
	}
}

func newOffsetError(name string, pos int64) *Error {
	return &Error{
		Code:    ErrCodeInvalidOffset,
		Message: fmt.Sprintf("pos %d must be <= 0", pos),
		List:    name,
	}
}

func newConfigError(format string, args ...any) *Error {
	return &Error{
		Code:    ErrCodeInvalidConfig,
		Message: fmt.Sprintf(format, args...),
	}
}
