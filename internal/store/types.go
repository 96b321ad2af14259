package store

import (
	"time"

	"scorecli/pkg/contracts/domain"
)

// Run is one persisted semester averages table.
type Run struct {
	ID            string                   `json:"id"`
	CreatedAt     time.Time                `json:"created_at"`
	Source        string                   `json:"source,omitempty"`
	Subjects      []string                 `json:"subjects"`
	SemesterCount int                      `json:"semester_count"`
	Averages      []domain.SemesterAverage `json:"averages,omitempty"`
}
