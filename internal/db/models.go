package db

import "database/sql"

// Entry describes one stored key without its value
type Entry struct {
	Key       string
	Size      int
	UpdatedAt sql.NullTime
}
