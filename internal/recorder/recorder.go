package recorder

import (
	"time"

	"Instagraph/internal/model"
)

// SessionRecord is one finished scraping session, complete or partial.
type SessionRecord struct {
	ID        string
	Symbol    string
	Exchange  string
	StartedAt time.Time
	Complete  bool
	Error     string
	Dataset   *model.Dataset
	Stats     *model.DerivedStats // nil when the dataset is empty
}

// Recorder persists the assembled output table.
type Recorder interface {
	RecordSession(rec *SessionRecord) error
	Close() error
}
