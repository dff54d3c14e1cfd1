package domain

import "time"

// ImportRowError is a CSV import failure scoped to one input row. Row is the
// file line number: the header is line 1, so the first data row reports 2.
type ImportRowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// ImportReport summarizes one CSV import run: how many rows were committed
// and which rows were rejected. Reports are kept for a retention window so
// operators can review past imports.
type ImportReport struct {
	ID            string           `json:"id"`
	UserID        string           `json:"user_id"`
	FileName      string           `json:"file_name"`
	TotalRows     int              `json:"total_rows"`
	InsertedCount int              `json:"inserted_count"`
	Errors        []ImportRowError `json:"errors"`
	CreatedAt     time.Time        `json:"created_at"`
}
