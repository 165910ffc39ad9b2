package model

import (
	"time"

	"github.com/google/uuid"
)

// Snapshot is one persisted export of a fusion run
type Snapshot struct {
	ID        int       `json:"id"`
	RID       uuid.UUID `json:"rid"`
	CaseID    string    `json:"case_id"`
	Export    *Export   `json:"export"`
	CreatedAt time.Time `json:"created_at"`
}
