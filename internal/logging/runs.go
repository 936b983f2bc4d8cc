package logging

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// #region log-run
// LogRun writes a run entry to the cluster_runs table.
func LogRun(db *sql.DB, entry RunEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	_, err := db.Exec(
		`INSERT INTO cluster_runs (session_id, generation, mode, attempts, max_groups, candidates, groups_count, outcome, reason, metrics_json, remote_error, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.SessionID,
		int64(entry.Generation),
		nullIfEmpty(entry.Mode),
		entry.Attempts,
		entry.MaxGroups,
		entry.Candidates,
		entry.Groups,
		entry.Outcome,
		nullIfEmpty(entry.Reason),
		nullIfEmpty(entry.MetricsJSON),
		nullIfEmpty(entry.RemoteError),
		entry.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("log run: %w", err)
	}
	return nil
}

// #endregion log-run

// #region encode-record
// EncodeRecord serializes a run record for RunEntry.MetricsJSON.
func EncodeRecord(rec RunRecord) (string, error) {
	b, err := json.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("encode run record: %w", err)
	}
	return string(b), nil
}

// #endregion encode-record

// #region helpers
func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// #endregion helpers
