package config

import (
	"fmt"

	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

// Error codes for config loading.
const (
	ErrCodeGeneric     = "E001"
	ErrCodeNoFiles     = "E003"
	ErrCodeLoadFailed  = "E004"
	ErrCodeNotFound    = "E005"
	ErrCodeBuildFailed = "E006"

	ErrCodeMissingRegistry = "E201"
	ErrCodeSchema          = "E202"
	ErrCodeDuplicateList   = "E203"
	ErrCodeDuplicateMember = "E204"
	ErrCodeUnknownWindow   = "E205"
	ErrCodeInvalidMember   = "E206"
)

// Error is a config problem, with the CUE position when one is known.
type Error struct {
	Code    string
	Field   string
	Message string
	Pos     token.Pos
}

func (e *Error) Error() string {
	prefix := e.Code
	if e.Field != "" {
		prefix = fmt.Sprintf("%s %s", e.Code, e.Field)
	}
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			prefix, e.Message)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Message)
}

// fromCUE converts the first CUE error to an *Error carrying its position.
func fromCUE(code string, err error) error {
	if err == nil {
		return nil
	}
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return &Error{Code: code, Message: err.Error()}
	}
	first := errs[0]
	e := &Error{Code: code, Message: first.Error()}
	if positions := errors.Positions(first); len(positions) > 0 {
		e.Pos = positions[0]
	}
	return e
}
