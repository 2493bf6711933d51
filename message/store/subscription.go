package store

import (
	"github.com/rs/xid"

	"github.com/sig-0/go-abse/message"
)

type subscription struct {
	sub          chan func() []*message.MsgCandidate
	sequence     uint64
	round        uint64
	higherRounds bool
}

func newSubscription(sequence, round uint64, higherRounds bool) subscription {
	return subscription{
		sequence:     sequence,
		round:        round,
		higherRounds: higherRounds,
		sub:          make(chan func() []*message.MsgCandidate, 1),
	}
}

func (s *subscription) notify(receiver func() []*message.MsgCandidate) {
	select {
	case s.sub <- receiver:
	default: // subscriber hasn't consumed the callback
	}
}

type subscriptions map[string]subscription

func newSubscriptions() subscriptions {
	return make(subscriptions)
}

func (s *subscriptions) add(sub subscription) string {
	id := xid.New().String()
	(*s)[id] = sub

	return id
}

func (s *subscriptions) remove(id string) {
	sub, ok := (*s)[id]
	if !ok {
		return
	}

	close(sub.sub)
	delete(*s, id)
}

func (s *subscriptions) notifyAll(notifyFn func(subscription)) {
	for _, sub := range *s {
		notifyFn(sub)
	}
}
