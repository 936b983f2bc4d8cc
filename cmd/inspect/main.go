package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/danielpatrickdp/viewspace/internal/logging"
	"github.com/danielpatrickdp/viewspace/internal/store"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to viewspace.db")
	last := flag.Int("last", 20, "show N most recent sessions or runs")
	session := flag.String("session", "", "show likes and clustering runs of one session")
	runs := flag.Bool("runs", false, "list clustering runs across all sessions")
	jsonOut := flag.Bool("json", false, "output as JSON instead of table")
	flag.Parse()

	if *dbPath == "" {
		fmt.Fprintln(os.Stderr, "usage: inspect --db path/to/viewspace.db [--last N] [--session id | --runs] [--json]")
		os.Exit(2)
	}

	db, err := store.NewStore(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	switch {
	case *session != "":
		err = runDetailMode(db, *session, *last, *jsonOut)
	case *runs:
		err = runRunsMode(db, *last, *jsonOut)
	default:
		err = runListMode(db, *last, *jsonOut)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region list-mode

func runListMode(db *store.Store, last int, jsonOut bool) error {
	sessions, err := db.ListSessions(last)
	if err != nil {
		return err
	}
	if len(sessions) == 0 {
		fmt.Fprintln(os.Stderr, "no sessions found")
		return nil
	}
	if jsonOut {
		return printJSON(sessions)
	}

	fmt.Printf("%-12s  %-20s  %10s  %s\n", "Session", "Source", "Candidates", "Time")
	fmt.Printf("%-12s+-%-20s+-%10s+-%s\n", "------------", "--------------------", "----------", "--------------------")
	for _, s := range sessions {
		fmt.Printf("%-12s  %-20s  %10d  %s\n",
			shortID(s.ID), truncate(s.Label, 20), s.Candidates, s.CreatedAt.Format("2006-01-02T15:04:05Z"))
	}
	return nil
}

// #endregion list-mode

// #region runs-mode

type runRow struct {
	SessionID  string             `json:"session_id"`
	Generation uint64             `json:"generation"`
	Mode       string             `json:"mode"`
	Attempts   int                `json:"attempts"`
	Candidates int                `json:"candidates"`
	Groups     int                `json:"groups"`
	Outcome    string             `json:"outcome"`
	Reason     string             `json:"reason,omitempty"`
	Remote     string             `json:"remote_error,omitempty"`
	CreatedAt  string             `json:"created_at"`
	Record     *logging.RunRecord `json:"record,omitempty"`
}

func toRunRows(entries []logging.RunEntry) []runRow {
	rows := make([]runRow, len(entries))
	for i, e := range entries {
		rows[i] = runRow{
			SessionID:  e.SessionID,
			Generation: e.Generation,
			Mode:       e.Mode,
			Attempts:   e.Attempts,
			Candidates: e.Candidates,
			Groups:     e.Groups,
			Outcome:    e.Outcome,
			Reason:     e.Reason,
			Remote:     e.RemoteError,
			CreatedAt:  e.CreatedAt.Format("2006-01-02T15:04:05Z"),
			Record:     parseRunRecord(e.MetricsJSON),
		}
	}
	return rows
}

func runRunsMode(db *store.Store, last int, jsonOut bool) error {
	entries, err := db.ListRuns("", last)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(os.Stderr, "no clustering runs found")
		return nil
	}
	rows := toRunRows(entries)
	if jsonOut {
		return printJSON(rows)
	}
	printRunTable(rows)
	return nil
}

func printRunTable(rows []runRow) {
	fmt.Printf("%-12s  %4s  %-8s  %8s  %6s  %-8s  %8s  %s\n",
		"Session", "Gen", "Mode", "Attempts", "Groups", "Outcome", "Cohesion", "Time")
	fmt.Printf("%-12s+-%4s+-%-8s+-%8s+-%6s+-%-8s+-%8s+-%s\n",
		"------------", "----", "--------", "--------", "------", "--------", "--------", "--------------------")
	for _, r := range rows {
		cohesion := "—"
		if r.Record != nil {
			if v, ok := r.Record.Metrics["mean_cohesion"]; ok {
				cohesion = fmt.Sprintf("%.4f", v)
			}
		}
		fmt.Printf("%-12s  %4d  %-8s  %8d  %6d  %-8s  %8s  %s\n",
			shortID(r.SessionID), r.Generation, r.Mode, r.Attempts, r.Groups, r.Outcome, cohesion, r.CreatedAt)
	}
}

// #endregion runs-mode

// #region detail-mode

type detailOutput struct {
	Session store.Session `json:"session"`
	Likes   []likeRow     `json:"likes"`
	Runs    []runRow      `json:"runs"`
}

type likeRow struct {
	Page    int    `json:"page"`
	Mark    string `json:"mark,omitempty"`
	LikedAt string `json:"liked_at"`
}

func runDetailMode(db *store.Store, sessionID string, last int, jsonOut bool) error {
	sess, err := db.GetSession(sessionID)
	if err != nil {
		return err
	}
	entries, err := db.LoadLikes(sessionID)
	if err != nil {
		return err
	}
	runs, err := db.ListRuns(sessionID, last)
	if err != nil {
		return err
	}

	out := detailOutput{Session: sess, Runs: toRunRows(runs)}
	for _, e := range entries {
		mark, _ := e.Schema["mark"].(string)
		out.Likes = append(out.Likes, likeRow{
			Page:    e.PageIndex,
			Mark:    mark,
			LikedAt: e.LikedAt.Format("2006-01-02T15:04:05Z"),
		})
	}

	if jsonOut {
		return printJSON(out)
	}

	fmt.Printf("Session:    %s\n", sess.ID)
	fmt.Printf("Source:     %s\n", sess.Label)
	fmt.Printf("Candidates: %d\n", sess.Candidates)
	fmt.Printf("Created:    %s\n", sess.CreatedAt.Format("2006-01-02T15:04:05Z"))

	fmt.Printf("\nLikes (%d):\n", len(out.Likes))
	for _, l := range out.Likes {
		fmt.Printf("  page %-4d %-8s %s\n", l.Page+1, l.Mark, l.LikedAt)
	}

	if len(out.Runs) > 0 {
		fmt.Printf("\nClustering runs:\n")
		printRunTable(out.Runs)
	}
	return nil
}

// #endregion detail-mode

// #region output

func parseRunRecord(metricsJSON string) *logging.RunRecord {
	if metricsJSON == "" {
		return nil
	}
	var rec logging.RunRecord
	if err := json.Unmarshal([]byte(metricsJSON), &rec); err != nil {
		return nil
	}
	return &rec
}

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n-1] + "…"
	}
	return s
}

// #endregion output
