package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// VerdictRecord is one row of the audit log. Document text never lands here,
// only the request hash and the returned verdict.
type VerdictRecord struct {
	RequestHash  string
	Requirements string
	Threshold    float64
	Valid        bool
	Reasons      []string
	Model        string
	DurationMS   int64
}

// InsertVerdict stores the outcome of one validation request.
func (s *Store) InsertVerdict(ctx context.Context, rec *VerdictRecord) error {
	if s == nil || s.db == nil || rec == nil {
		return fmt.Errorf("sqlite store not initialized or record nil")
	}

	reasonsJSON, err := json.Marshal(rec.Reasons)
	if err != nil {
		return fmt.Errorf("marshal reasons: %w", err)
	}

	query := `
INSERT INTO verdicts (
	request_hash, requirements, threshold, valid,
	reasons_json, model, duration_ms, created_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
`

	valid := 0
	if rec.Valid {
		valid = 1
	}
	_, err = s.db.ExecContext(
		ctx,
		query,
		rec.RequestHash,
		rec.Requirements,
		rec.Threshold,
		valid,
		string(reasonsJSON),
		rec.Model,
		rec.DurationMS,
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	return err
}

// CountVerdicts returns the number of audited requests.
func (s *Store) CountVerdicts(ctx context.Context) (int64, error) {
	if s == nil || s.db == nil {
		return 0, fmt.Errorf("sqlite store not initialized")
	}
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM verdicts;`).Scan(&count)
	return count, err
}
