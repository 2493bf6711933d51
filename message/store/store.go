package store

import (
	"github.com/sig-0/go-abse/message"
)

// Store is a thread-safe storage for candidate messages with a built-in subscription mechanism.
// Only the first candidate of a sender is kept for any given view.
type Store struct {
	candidates *syncCollection
}

func New() *Store {
	return &Store{candidates: newSyncCollection()}
}

// Add stores msg if it is valid. The returned flag is false if the sender
// already has a candidate in the same view
func (s *Store) Add(msg *message.MsgCandidate) (bool, error) {
	if err := msg.Validate(); err != nil {
		return false, err
	}

	return s.candidates.addMessage(msg), nil
}

// Get returns all candidates for given view, ordered by sender
func (s *Store) Get(sequence, round uint64) []*message.MsgCandidate {
	return s.candidates.getMessages(sequence, round)
}

func (s *Store) Remove(sequence, round uint64) {
	s.candidates.remove(sequence, round)
}

func (s *Store) Clear() {
	s.candidates.clear()
}

// Len returns the number of candidates across all views
func (s *Store) Len() int {
	return s.candidates.len()
}

// Subscribe returns a channel of callbacks yielding the candidates of given view. If higherRounds is set,
// the callback yields candidates of the highest known round not lower than round instead.
// The returned func cancels the subscription and closes the channel.
func (s *Store) Subscribe(
	sequence, round uint64,
	higherRounds bool,
) (<-chan func() []*message.MsgCandidate, func()) {
	sub, cancelSub := s.candidates.subscribe(sequence, round, higherRounds)

	return sub.sub, cancelSub
}
