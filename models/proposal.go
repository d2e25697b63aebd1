package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ProposalStatus represents the engagement status of a proposal
type ProposalStatus string

const (
	StatusGenerated ProposalStatus = "generated"
	StatusSent      ProposalStatus = "sent"
	StatusViewed    ProposalStatus = "viewed"
	StatusReplied   ProposalStatus = "replied"
)

// ValidProposalStatus reports whether s is one of the known statuses.
// Transitions between statuses are freely settable by the client.
func ValidProposalStatus(s ProposalStatus) bool {
	switch s {
	case StatusGenerated, StatusSent, StatusViewed, StatusReplied:
		return true
	}
	return false
}

// Signal represents a detected attribute of a job description,
// shown as a badge in the UI
type Signal struct {
	Label string `json:"label"`
	Code  string `json:"code"`
	Color string `json:"color"`
}

// SignalList represents the signals detected for a proposal
type SignalList []Signal

// Value implements driver.Valuer for JSONB
func (s SignalList) Value() (driver.Value, error) {
	return json.Marshal(s)
}

// Scan implements sql.Scanner for JSONB
func (s *SignalList) Scan(value interface{}) error {
	if value == nil {
		*s = make(SignalList, 0)
		return nil
	}

	// Handle different types that pgx might return for JSONB
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		*s = make(SignalList, 0)
		return nil
	}

	if len(bytes) == 0 {
		*s = make(SignalList, 0)
		return nil
	}

	return json.Unmarshal(bytes, s)
}

// ReplyScore represents the heuristic strength estimate for a generated reply
type ReplyScore struct {
	Score     int      `json:"score"` // 0-100
	Breakdown []string `json:"breakdown"`
	Label     string   `json:"label"` // Strong, Average, Weak
}

// Proposal represents a generated proposal entity
type Proposal struct {
	ID                 uuid.UUID      `json:"id"`
	UserID             uuid.UUID      `json:"user_id"`
	JobDescription     string         `json:"job_description"` // truncated for listings
	FullJobDescription string         `json:"full_job_description"`
	ProposalText       string         `json:"proposal_text"`
	Platform           string         `json:"platform"`
	Framework          string         `json:"framework"`
	Score              int            `json:"score"`
	ScoreBreakdown     []string       `json:"score_breakdown"`
	Signals            SignalList     `json:"signals"`
	Status             ProposalStatus `json:"status"`
	CreatedAt          time.Time      `json:"created_at"`
}

// DailyCount represents the number of proposals generated on a single day
type DailyCount struct {
	Day   string `json:"day"` // YYYY-MM-DD
	Count int    `json:"count"`
}
