package dispatch

import (
	"sync"

	"github.com/Ariyan3323/my-ai-bot/llm"
)

// Mode is the conversational state a user is parked in between turns.
type Mode string

const (
	ModeNone         Mode = ""
	ModeTutorTopic   Mode = "tutor_topic"
	ModeWriterBrief  Mode = "writer_brief"
	ModeLegalCase    Mode = "legal_case"
	ModeTraderSymbol Mode = "trader_symbol"
	ModeChatSession  Mode = "chat_session"
)

// pendingTurnTTL bounds how many turns a one-shot pending mode survives
// without being consumed. Rejected or gated messages age the mode but do
// not consume it.
const pendingTurnTTL = 3

// Session holds the transient per-user dialog state. It is deliberately
// not persisted: a restart drops everyone back to the idle state.
type Session struct {
	Mode Mode
	Age  int
	Chat []llm.Message
}

// Sessions is an in-memory session store keyed by user ID. All methods
// are safe for concurrent use.
type Sessions struct {
	mu sync.Mutex
	m  map[int64]*Session
}

func NewSessions() *Sessions {
	return &Sessions{m: make(map[int64]*Session)}
}

// Get returns a copy of the user's session, a zero Session if none.
func (s *Sessions) Get(userID int64) Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.m[userID]
	if !ok {
		return Session{}
	}
	out := *cur
	out.Chat = append([]llm.Message(nil), cur.Chat...)
	return out
}

func (s *Sessions) Set(userID int64, sess Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := sess
	cp.Chat = append([]llm.Message(nil), sess.Chat...)
	s.m[userID] = &cp
}

func (s *Sessions) Clear(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, userID)
}

// turnLocks serializes whole turns per user so pending-mode reads and
// writes cannot interleave across concurrent messages from one user.
type turnLocks struct {
	mu sync.Mutex
	m  map[int64]*sync.Mutex
}

func newTurnLocks() *turnLocks {
	return &turnLocks{m: make(map[int64]*sync.Mutex)}
}

func (t *turnLocks) lock(userID int64) func() {
	t.mu.Lock()
	l, ok := t.m[userID]
	if !ok {
		l = &sync.Mutex{}
		t.m[userID] = l
	}
	t.mu.Unlock()
	l.Lock()
	return l.Unlock
}
