package convo

import (
	"fmt"
	"time"
)

// TimeLayout is the wall-clock format used in persisted records.
// It matches the format the classroom app has always written, so older
// conversation files stay readable.
const TimeLayout = "2006-01-02 15:04:05"

// Role identifies who produced a turn. The system prompt is never persisted.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one message in a conversation.
type Turn struct {
	Role      Role   `json:"role"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
}

// Time parses the turn's timestamp.
func (t Turn) Time() (time.Time, error) {
	ts, err := time.ParseInLocation(TimeLayout, t.Timestamp, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse turn timestamp %q: %w", t.Timestamp, err)
	}
	return ts, nil
}

// FeedbackEntry is one generated storyboard feedback, recorded alongside
// the conversation it was produced from.
type FeedbackEntry struct {
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
}

// Record is the full per-student conversation log. Messages and feedback
// are append-only: once written, an entry is never edited or removed.
type Record struct {
	SessionID   string          `json:"session_id"`
	StudentName string          `json:"student_name"`
	StudentID   string          `json:"student_id"`
	Messages    []Turn          `json:"messages"`
	Feedback    []FeedbackEntry `json:"feedback,omitempty"`
}

// HasFeedback reports whether at least one feedback entry was recorded.
func (r *Record) HasFeedback() bool {
	return len(r.Feedback) > 0
}

// Duration returns the wall-clock span between the first and last turn.
// Zero when the record has fewer than two parseable timestamps.
func (r *Record) Duration() time.Duration {
	if len(r.Messages) == 0 {
		return 0
	}
	first, err := r.Messages[0].Time()
	if err != nil {
		return 0
	}
	last, err := r.Messages[len(r.Messages)-1].Time()
	if err != nil {
		return 0
	}
	if last.Before(first) {
		return 0
	}
	return last.Sub(first)
}

// StudentInfo is one entry in the flat student registry.
type StudentInfo struct {
	SessionID   string `json:"session_id"`
	StudentName string `json:"student_name"`
	StudentID   string `json:"student_id"`
	Timestamp   string `json:"timestamp"`
	Type        string `json:"type"`
}

// TypeStudentInfo is the registry entry type tag.
const TypeStudentInfo = "student_info"
