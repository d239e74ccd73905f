// Package chat runs one student's storyboard-drafting session: it registers
// the student, persists every turn to the conversation store, and generates
// replies and rubric feedback through the completion gateway.
package chat

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/climatestory/storyboard/internal/convo"
	"github.com/climatestory/storyboard/internal/llm"
)

// Config holds session tunables.
type Config struct {
	MaxCallsPerStudent int
	MaxTokens          int
	Temperature        float64
}

// DefaultConfig returns production defaults. Temperature matches what the
// classroom deployment has always used for replies.
func DefaultConfig() Config {
	return Config{
		MaxCallsPerStudent: DefaultMaxCallsPerStudent,
		MaxTokens:          1024,
		Temperature:        0.7,
	}
}

// Session is one student's live conversation. Not safe for concurrent use;
// a student talks through one session at a time.
type Session struct {
	id          string
	studentID   string
	studentName string

	store    *convo.FileStore
	chat     llm.Provider
	feedback llm.Provider
	quota    *QuotaTracker
	cache    *responseCache
	cfg      Config

	history []llm.Message
	now     func() time.Time
}

// NewSession registers the student, seeds the welcome message into the
// conversation log, and returns the live session.
//
// chat generates ordinary replies; feedback should be a stronger model for
// rubric feedback. Passing the same provider for both is fine.
func NewSession(store *convo.FileStore, chat, feedback llm.Provider, quota *QuotaTracker, cfg Config, studentID, studentName string) (*Session, error) {
	s := &Session{
		id:          uuid.NewString(),
		studentID:   studentID,
		studentName: studentName,
		store:       store,
		chat:        chat,
		feedback:    feedback,
		quota:       quota,
		cache:       newResponseCache(),
		cfg:         cfg,
		now:         time.Now,
	}

	if err := store.RegisterStudent(convo.StudentInfo{
		SessionID:   s.id,
		StudentName: studentName,
		StudentID:   studentID,
		Timestamp:   s.stamp(),
	}); err != nil {
		return nil, fmt.Errorf("register student: %w", err)
	}

	welcome := welcomeMessage(studentName)
	if err := s.persistTurn(convo.RoleAssistant, welcome); err != nil {
		return nil, err
	}
	s.history = append(s.history, llm.Message{Role: llm.RoleAssistant, Content: welcome})

	return s, nil
}

// ID returns the session token assigned at creation.
func (s *Session) ID() string { return s.id }

// Welcome returns the greeting recorded when the session started.
func (s *Session) Welcome() string {
	return welcomeMessage(s.studentName)
}

// Send records the student's input, generates a reply, records it, and
// returns it. Gateway failures degrade to the apology message and quota
// exhaustion to the advisory message; both are still recorded as assistant
// turns so the log matches what the student saw. Only storage failures
// surface as errors.
func (s *Session) Send(ctx context.Context, input string) (string, error) {
	if err := s.persistTurn(convo.RoleUser, input); err != nil {
		return "", err
	}
	s.history = append(s.history, llm.Message{Role: llm.RoleUser, Content: input})

	reply := s.generateReply(ctx)

	if err := s.persistTurn(convo.RoleAssistant, reply); err != nil {
		return "", err
	}
	s.history = append(s.history, llm.Message{Role: llm.RoleAssistant, Content: reply})

	return reply, nil
}

func (s *Session) generateReply(ctx context.Context) string {
	key := cacheKey(s.history, s.chat.ModelID())
	if cached, ok := s.cache.get(key); ok {
		return cached
	}

	if !s.quota.TryAcquire(s.studentID) {
		return quotaMessage
	}

	ctx = llm.WithPurpose(ctx, "chat")
	resp, err := s.chat.Generate(ctx, llm.Request{
		System:      systemPrompt,
		Messages:    s.history,
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: s.cfg.Temperature,
	})
	if err != nil {
		return apologyMessage
	}

	reply := string(resp.Content)
	s.cache.put(key, reply)
	return reply
}

// Feedback generates rubric feedback over the whole session and appends it
// to the feedback log. Returns the advisory message at quota and an error
// when generation or persistence fails.
func (s *Session) Feedback(ctx context.Context) (string, error) {
	if !s.quota.TryAcquire(s.studentID) {
		return quotaMessage, nil
	}

	messages := append(append([]llm.Message{}, s.history...),
		llm.Message{Role: llm.RoleUser, Content: feedbackPrompt})

	key := cacheKey(messages, s.feedback.ModelID())
	text, ok := s.cache.get(key)
	if !ok {
		ctx = llm.WithPurpose(ctx, "feedback")
		resp, err := s.feedback.Generate(ctx, llm.Request{
			System:      systemPrompt,
			Messages:    messages,
			MaxTokens:   s.cfg.MaxTokens,
			Temperature: s.cfg.Temperature,
		})
		if err != nil {
			return "", fmt.Errorf("generate feedback: %w", err)
		}
		text = string(resp.Content)
		s.cache.put(key, text)
	}

	if err := s.store.AppendFeedback(s.studentID, s.studentName, convo.FeedbackEntry{
		Content:   text,
		Timestamp: s.stamp(),
	}); err != nil {
		return "", fmt.Errorf("record feedback: %w", err)
	}
	return text, nil
}

func (s *Session) persistTurn(role convo.Role, content string) error {
	err := s.store.AppendTurn(s.id, s.studentID, s.studentName, convo.Turn{
		Role:      role,
		Content:   content,
		Timestamp: s.stamp(),
	})
	if err != nil {
		return fmt.Errorf("record %s turn: %w", role, err)
	}
	return nil
}

func (s *Session) stamp() string {
	return s.now().Format(convo.TimeLayout)
}

// responseCache memoizes replies by conversation content, mirroring the
// response cache the classroom app kept per session. A repeated question
// gets the same answer without a second gateway call or quota charge.
type responseCache struct {
	mu sync.RWMutex
	m  map[string]string
}

func newResponseCache() *responseCache {
	return &responseCache{m: make(map[string]string)}
}

func (c *responseCache) get(key string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.m[key]
	return v, ok
}

func (c *responseCache) put(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[key] = value
}

// cacheKey derives a cache key from the user turns and the model, so
// assistant phrasing differences don't fragment the cache.
func cacheKey(messages []llm.Message, model string) string {
	var b strings.Builder
	for _, m := range messages {
		if m.Role != llm.RoleUser {
			continue
		}
		b.WriteString(m.Content)
		b.WriteByte('\n')
	}
	b.WriteString(model)
	return b.String()
}
