package model

import (
	"github.com/google/uuid"
)

// newID fills a zero uuid primary key. Schema defaults are not relied upon so
// the same models work against Postgres and SQLite.
func newID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}
