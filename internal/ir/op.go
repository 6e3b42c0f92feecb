package ir

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// OpKind names a registry operation.
type OpKind string

const (
	OpAdvance     OpKind = "advance"
	OpAdd         OpKind = "add"
	OpSet         OpKind = "set"
	OpRemove      OpKind = "remove"
	OpRemoveUntil OpKind = "remove_until"
	OpMove        OpKind = "move"
	OpReset       OpKind = "reset"
	OpResetAll    OpKind = "reset_all"
	OpGet         OpKind = "get"
	OpGetUntil    OpKind = "get_until"
)

// Kinds lists every operation kind in a stable order.
var Kinds = []OpKind{
	OpAdvance, OpAdd, OpSet, OpRemove, OpRemoveUntil,
	OpMove, OpReset, OpResetAll, OpGet, OpGetUntil,
}

// Op is one request against a registry.
//
// Field use depends on Kind:
//   - advance: SN
//   - add, set, remove: List, Members
//   - remove_until: List, Members, Pos
//   - move: List (source), To, Members
//   - reset: List, optional Members (seeds the list at the current sn)
//   - reset_all: nothing
//   - get, get_until: List, Pos
type Op struct {
	Kind    OpKind   `json:"kind" yaml:"op"`
	List    string   `json:"list,omitempty" yaml:"list,omitempty"`
	To      string   `json:"to,omitempty" yaml:"to,omitempty"`
	Members []string `json:"members,omitempty" yaml:"members,omitempty"`
	SN      int64    `json:"sn,omitempty" yaml:"sn,omitempty"`
	Pos     int64    `json:"pos,omitempty" yaml:"pos,omitempty"`
}

// IsQuery reports whether the op only reads state.
func (op Op) IsQuery() bool {
	return op.Kind == OpGet || op.Kind == OpGetUntil
}

// Validate checks that the fields required by Kind are present. It does not
// look at the registry: unknown lists and members are the registry's call.
func (op Op) Validate() error {
	switch op.Kind {
	case OpAdvance, OpResetAll:
		return nil
	case OpAdd, OpSet, OpRemove, OpReset:
		return op.requireList()
	case OpRemoveUntil, OpGet, OpGetUntil:
		if err := op.requireList(); err != nil {
			return err
		}
		if op.Pos > 0 {
			return fmt.Errorf("%s: pos %d must be <= 0", op.Kind, op.Pos)
		}
		return nil
	case OpMove:
		if err := op.requireList(); err != nil {
			return err
		}
		if op.To == "" {
			return fmt.Errorf("move: to is required")
		}
		if len(op.Members) == 0 {
			return fmt.Errorf("move: members are required")
		}
		return nil
	case "":
		return fmt.Errorf("op kind is required")
	default:
		return fmt.Errorf("unknown op kind %q", op.Kind)
	}
}

func (op Op) requireList() error {
	if op.List == "" {
		return fmt.Errorf("%s: list is required", op.Kind)
	}
	return nil
}

// Normalized returns a copy with list names and member symbols in canonical
// form.
func (op Op) Normalized() Op {
	out := op
	out.List = NormalizeName(op.List)
	out.To = NormalizeName(op.To)
	if op.Members != nil {
		out.Members = NormalizeMembers(op.Members)
	}
	return out
}

// NormalizeMember trims surrounding whitespace and applies Unicode NFC so
// that visually identical symbols compare equal.
func NormalizeMember(m string) string {
	return norm.NFC.String(strings.TrimSpace(m))
}

// NormalizeName applies Unicode NFC to a list name. Names are not trimmed:
// canonical JSON keeps their whitespace, only the normal form changes.
func NormalizeName(name string) string {
	return norm.NFC.String(name)
}

// NormalizeMembers normalizes every member, preserving order.
func NormalizeMembers(ms []string) []string {
	out := make([]string, len(ms))
	for i, m := range ms {
		out[i] = NormalizeMember(m)
	}
	return out
}

// canonicalObject is the hashing and storage form of an Op.
func (op Op) canonicalObject() map[string]any {
	members := make([]any, len(op.Members))
	for i, m := range op.Members {
		members[i] = m
	}
	return map[string]any{
		"kind":    string(op.Kind),
		"list":    op.List,
		"to":      op.To,
		"members": members,
		"sn":      op.SN,
		"pos":     op.Pos,
	}
}
