package store

import (
	"context"
	"fmt"

	"github.com/roach88/watchset/internal/ir"
	"github.com/roach88/watchset/internal/registry"
)

// Session is the journal header for one engine instance.
type Session struct {
	ID            string
	Config        registry.Config[string]
	ConfigHash    string
	EngineVersion string
	OpVersion     string
}

// NewSession builds a session record, fingerprinting the config.
func NewSession(id string, cfg registry.Config[string]) (Session, error) {
	data, err := MarshalConfig(cfg)
	if err != nil {
		return Session{}, err
	}
	return Session{
		ID:            id,
		Config:        cfg.Clone(),
		ConfigHash:    ir.ConfigHash(data),
		EngineVersion: ir.EngineVersion,
		OpVersion:     ir.OpVersion,
	}, nil
}

// WriteSession inserts a session record.
// Uses ON CONFLICT(id) DO NOTHING for idempotency.
func (s *Store) WriteSession(ctx context.Context, sess Session) error {
	cfgJSON, err := MarshalConfig(sess.Config)
	if err != nil {
		return fmt.Errorf("write session: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, config, config_hash, engine_version, op_version)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		sess.ID,
		string(cfgJSON),
		sess.ConfigHash,
		sess.EngineVersion,
		sess.OpVersion,
	)
	if err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

// AppendOp inserts a journal record.
// Uses ON CONFLICT(id) DO NOTHING: the ID is content-addressed, so writing
// the same record twice is harmless. A different record at an already used
// (session, seq) is a constraint error.
//
// Note: The session referenced by SessionID must exist (foreign key constraint).
func (s *Store) AppendOp(ctx context.Context, rec ir.Record) error {
	membersJSON, err := marshalMembers(rec.Op.Members)
	if err != nil {
		return fmt.Errorf("append op: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO ops
		(id, session_id, seq, kind, list, to_list, members, sn, pos, current_sn)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		rec.ID,
		rec.SessionID,
		rec.Seq,
		string(rec.Op.Kind),
		rec.Op.List,
		rec.Op.To,
		membersJSON,
		rec.Op.SN,
		rec.Op.Pos,
		rec.CurrentSN,
	)
	if err != nil {
		return fmt.Errorf("append op: %w", err)
	}
	return nil
}
