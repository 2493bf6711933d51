package test

import (
	"bytes"
	"sort"

	"github.com/sig-0/go-abse"
	"github.com/sig-0/go-abse/engine"
	"github.com/sig-0/go-abse/log"
	"github.com/sig-0/go-abse/message"
)

// MessageOption returns false if a candidate should not be delivered
type MessageOption func(m *message.MsgCandidate) bool

func ExcludeMsgIf(opts ...MessageOption) MessageOption {
	return func(m *message.MsgCandidate) bool {
		for _, opt := range opts {
			if !opt(m) {
				return true
			}
		}

		return false
	}
}

func HasRound(r uint64) MessageOption {
	return func(m *message.MsgCandidate) bool {
		return m.Round == r
	}
}

func IsFrom(sender []byte) MessageOption {
	return func(m *message.MsgCandidate) bool {
		return bytes.Equal(m.Sender, sender)
	}
}

// Participant is a single engine with its signing key
type Participant struct {
	*engine.Engine

	Key ECDSAKey
}

// Network connects participants through an in-memory broadcast: every candidate
// multicast by one participant is delivered to all of them, including the sender
type Network struct {
	Participants []Participant

	opts []MessageOption
}

func NewNetwork(size, participants int, opts ...MessageOption) *Network {
	n := &Network{opts: opts}

	keys := make([]ECDSAKey, 0, participants)
	for i := 0; i < participants; i++ {
		keys = append(keys, NewECDSAKey())
	}

	sort.Slice(keys, func(i, j int) bool {
		return bytes.Compare(keys[i].Address(), keys[j].Address()) < 0
	})

	for _, key := range keys {
		e, err := engine.NewEngine(engine.Config{
			Size:      size,
			Transport: abse.TransportFn(n.deliver),
			Signer:    key,
			Verifier:  ECRecover,
			Keccak:    DefaultKeccak,
			Logger:    log.TestingLogger(),
		})
		if err != nil {
			panic(err)
		}

		n.Participants = append(n.Participants, Participant{Engine: e, Key: key})
	}

	return n
}

func (n *Network) deliver(data []byte) {
	msg, err := message.Unmarshal(data)
	if err != nil {
		panic(err)
	}

	for _, opt := range n.opts {
		if !opt(msg) {
			return
		}
	}

	for _, p := range n.Participants {
		// receivers reject invalid candidates on their own
		_ = p.AddCandidateBytes(data)
	}
}

// RunRound feeds every participant the same scores and votes, then lets each one propose
func (n *Network) RunRound(sequence uint64, scores, votes abse.ScoreVector, f uint64) error {
	for _, p := range n.Participants {
		p.Update(scores, f)
		p.AccumulateVotes(votes)
	}

	for _, p := range n.Participants {
		if _, err := p.Propose(sequence); err != nil {
			return err
		}
	}

	return nil
}

// AdvanceRound moves every participant to the next round
func (n *Network) AdvanceRound() {
	for _, p := range n.Participants {
		p.AdvanceRound()
		p.ResetVoteInfo()
	}
}
