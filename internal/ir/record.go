package ir

// Record is one journaled operation.
//
// Seq is the journal's own logical clock and orders records within a session.
// CurrentSN is the registry sn after the op was applied; it lets readers see
// the step of every mutation without replaying.
type Record struct {
	ID        string `json:"id"`
	SessionID string `json:"session_id"`
	Seq       int64  `json:"seq"`
	Op        Op     `json:"op"`
	CurrentSN int64  `json:"current_sn"`
}

// NewRecord builds a record with its content-addressed ID.
func NewRecord(sessionID string, seq int64, op Op, currentSN int64) (Record, error) {
	id, err := OpID(sessionID, seq, op)
	if err != nil {
		return Record{}, err
	}
	return Record{
		ID:        id,
		SessionID: sessionID,
		Seq:       seq,
		Op:        op,
		CurrentSN: currentSN,
	}, nil
}
