package engine

import (
	"errors"
	"fmt"

	"github.com/roach88/watchset/internal/registry"
)

// ErrorCode categorizes engine errors. Registry rejections keep their own
// registry.ErrorCode; CodeOf reports either.
type ErrorCode string

const (
	// ErrCodeInvalidOp indicates an op that is malformed before it reaches
	// the registry (unknown kind, missing list, positive pos).
	ErrCodeInvalidOp ErrorCode = "INVALID_OP"

	// ErrCodeJournal indicates the op was applied but could not be journaled.
	ErrCodeJournal ErrorCode = "JOURNAL_FAILED"

	// ErrCodeReplayDiverged indicates a replayed op landed on a different sn
	// than the one recorded.
	ErrCodeReplayDiverged ErrorCode = "REPLAY_DIVERGED"
)

type Error struct {
	Code    ErrorCode
	Message string
	Kind    string
	Seq     int64
	Err     error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Seq > 0 {
		msg = fmt.Sprintf("%s (seq=%d)", msg, e.Seq)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

func IsInvalidOp(err error) bool { return hasCode(err, ErrCodeInvalidOp) }

func IsJournalError(err error) bool { return hasCode(err, ErrCodeJournal) }

func IsReplayDiverged(err error) bool { return hasCode(err, ErrCodeReplayDiverged) }

func hasCode(err error, code ErrorCode) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// CodeOf returns the code of the first coded error in err's chain, looking
// at registry errors before engine errors. Returns "" for uncoded errors.
func CodeOf(err error) string {
	if code := registry.CodeOf(err); code != "" {
		return string(code)
	}
	var e *Error
	if errors.As(err, &e) {
		return string(e.Code)
	}
	return ""
}
