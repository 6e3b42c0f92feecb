package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/watchset/internal/ir"
)

// ReadSession retrieves a session by ID.
// Returns sql.ErrNoRows (wrapped) if not found.
func (s *Store) ReadSession(ctx context.Context, id string) (Session, error) {
	var sess Session
	var cfgJSON string

	err := s.db.QueryRowContext(ctx, `
		SELECT id, config, config_hash, engine_version, op_version
		FROM sessions
		WHERE id = ?
	`, id).Scan(&sess.ID, &cfgJSON, &sess.ConfigHash, &sess.EngineVersion, &sess.OpVersion)
	if err != nil {
		return Session{}, fmt.Errorf("read session %s: %w", id, err)
	}

	sess.Config, err = unmarshalConfig(cfgJSON)
	if err != nil {
		return Session{}, fmt.Errorf("read session %s: %w", id, err)
	}
	return sess, nil
}

// ListSessions returns all session IDs in ascending order. UUIDv7 IDs sort
// by creation time.
func (s *Store) ListSessions(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id FROM sessions ORDER BY id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return ids, nil
}

// ReadOps returns every journaled op of a session in apply order.
// Returns an empty slice (not nil) if the session has no ops.
func (s *Store) ReadOps(ctx context.Context, sessionID string) ([]ir.Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, session_id, seq, kind, list, to_list, members, sn, pos, current_sn
		FROM ops
		WHERE session_id = ?
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query ops: %w", err)
	}
	defer rows.Close()

	records := []ir.Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ops: %w", err)
	}
	return records, nil
}

// LastSeq returns the highest journal seq of a session, or 0 if it has none.
func (s *Store) LastSeq(ctx context.Context, sessionID string) (int64, error) {
	var seq int64
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(seq), 0) FROM ops WHERE session_id = ?
	`, sessionID).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("last seq: %w", err)
	}
	return seq, nil
}

// CountOpsByKind returns the number of journaled ops per kind for a session.
func (s *Store) CountOpsByKind(ctx context.Context, sessionID string) (map[ir.OpKind]int, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT kind, COUNT(*) FROM ops
		WHERE session_id = ?
		GROUP BY kind
		ORDER BY kind COLLATE BINARY ASC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("count ops: %w", err)
	}
	defer rows.Close()

	counts := make(map[ir.OpKind]int)
	for rows.Next() {
		var kind string
		var n int
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, fmt.Errorf("scan op count: %w", err)
		}
		counts[ir.OpKind(kind)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate op counts: %w", err)
	}
	return counts, nil
}

func scanRecord(rows *sql.Rows) (ir.Record, error) {
	var rec ir.Record
	var kind, membersJSON string

	if err := rows.Scan(
		&rec.ID, &rec.SessionID, &rec.Seq, &kind, &rec.Op.List, &rec.Op.To,
		&membersJSON, &rec.Op.SN, &rec.Op.Pos, &rec.CurrentSN,
	); err != nil {
		return ir.Record{}, fmt.Errorf("scan op: %w", err)
	}

	members, err := unmarshalMembers(membersJSON)
	if err != nil {
		return ir.Record{}, fmt.Errorf("scan op %s: %w", rec.ID, err)
	}
	rec.Op.Kind = ir.OpKind(kind)
	rec.Op.Members = members
	return rec, nil
}
