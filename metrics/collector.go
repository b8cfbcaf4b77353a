package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

// CallMetric is the audit record of one provider call attempt.
type CallMetric struct {
	SessionID        string
	ModelID          string
	Attempt          int
	Status           string
	ParseMethod      string
	PromptTokens     int
	CompletionTokens int
	Latency          time.Duration
	Score            int
	Reason           string
}

// SessionMetric summarizes one arbitration session.
type SessionMetric struct {
	SessionID  string
	StartTime  time.Time
	Duration   time.Duration
	Calls      int
	Winner     string
	WinnerKind string
}

// Collector accumulates the audit trail across arbitration sessions. Start
// opens a new session; Calls and Sessions return the full history so a game's
// trail can be exported at the end.
type Collector interface {
	Start(sessionID string)
	AddCall(m CallMetric)
	Complete(winner, kind string) SessionMetric
	Calls() []CallMetric
	Sessions() []SessionMetric
}

type collector struct {
	mu        sync.Mutex
	sessionID string
	startTime time.Time
	calls     []CallMetric
	sessions  []SessionMetric
	total     atomic.Int32
}

func NewCollector() Collector {
	return &collector{}
}

// Start opens a new session. Earlier sessions' records are kept.
func (c *collector) Start(sessionID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sessionID = sessionID
	c.startTime = time.Now()
	c.total.Store(0)
}

func (c *collector) AddCall(m CallMetric) {
	c.mu.Lock()
	defer c.mu.Unlock()
	m.SessionID = c.sessionID
	c.calls = append(c.calls, m)
	c.total.Add(1)
}

func (c *collector) Complete(winner, kind string) SessionMetric {
	c.mu.Lock()
	defer c.mu.Unlock()
	m := SessionMetric{
		SessionID:  c.sessionID,
		StartTime:  c.startTime,
		Duration:   time.Since(c.startTime),
		Calls:      int(c.total.Load()),
		Winner:     winner,
		WinnerKind: kind,
	}
	c.sessions = append(c.sessions, m)
	return m
}

func (c *collector) Calls() []CallMetric {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]CallMetric, len(c.calls))
	copy(out, c.calls)
	return out
}

func (c *collector) Sessions() []SessionMetric {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]SessionMetric, len(c.sessions))
	copy(out, c.sessions)
	return out
}

type dummyCollector struct{}

func NewDummyCollector() Collector {
	return &dummyCollector{}
}

func (dummyCollector) Start(sessionID string)                     {}
func (dummyCollector) AddCall(m CallMetric)                       {}
func (dummyCollector) Complete(winner, kind string) SessionMetric { return SessionMetric{} }
func (dummyCollector) Calls() []CallMetric                        { return nil }
func (dummyCollector) Sessions() []SessionMetric                  { return nil }
