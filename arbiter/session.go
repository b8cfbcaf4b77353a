package arbiter

import (
	"sync"

	"github.com/google/uuid"
)

// ProgressEvent is a live status update emitted while a session runs.
type ProgressEvent struct {
	SessionID string
	ModelID   string
	Stage     string
	Detail    string
}

// ProgressSink receives progress events. Implementations must tolerate
// concurrent calls; the session serializes emission for them.
type ProgressSink func(ProgressEvent)

// session tracks one arbitration round: its id, progress fan-out, and the
// completion sequence counter used for deterministic tie-breaking.
type session struct {
	id   string
	sink ProgressSink

	mu  sync.Mutex
	seq int
}

func newSession(sink ProgressSink) *session {
	return &session{
		id:   uuid.NewString(),
		sink: sink,
	}
}

func (s *session) emit(modelID, stage, detail string) {
	if s.sink == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sink(ProgressEvent{
		SessionID: s.id,
		ModelID:   modelID,
		Stage:     stage,
		Detail:    detail,
	})
}

// nextSeq hands out completion order numbers. Lower wins ties.
func (s *session) nextSeq() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	return s.seq
}
