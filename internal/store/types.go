package store

import "time"

// #region session
// Session is one exploration of a data source: everything between two Init
// calls of the exploration store.
type Session struct {
	ID         string    `json:"id"`
	Label      string    `json:"label"`
	Candidates int       `json:"candidates"`
	CreatedAt  time.Time `json:"created_at"`
}

// #endregion session
