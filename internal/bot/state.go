package bot

import "sync"

type StateKind string

const (
	StateIdle           StateKind = "idle"
	StateAwaitingAmount StateKind = "awaiting_amount"
	StateAwaitingNote   StateKind = "awaiting_note"
)

// EditState marks a user who tapped an edit button; their next text
// message is the new field value rather than a transaction line.
type EditState struct {
	Kind  StateKind
	TxnID string
}

type StateStore struct {
	mu     sync.Mutex
	states map[string]EditState
}

func NewStateStore() *StateStore {
	return &StateStore{states: map[string]EditState{}}
}

func (s *StateStore) Get(userID string) EditState {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.states[userID]
	if !ok {
		return EditState{Kind: StateIdle}
	}
	return state
}

func (s *StateStore) Set(userID string, state EditState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[userID] = state
}

func (s *StateStore) Clear(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, userID)
}
