package store

import (
	"sort"
	"sync"

	"github.com/sig-0/go-abse/message"
)

type syncCollection struct {
	collection
	subscriptions

	collectionMux,
	subscriptionMux sync.RWMutex
}

func newSyncCollection() *syncCollection {
	return &syncCollection{
		collection:    newCollection(),
		subscriptions: newSubscriptions(),
	}
}

func (c *syncCollection) subscribe(sequence, round uint64, higherRounds bool) (subscription, func()) {
	sub := newSubscription(sequence, round, higherRounds)
	unregister := c.registerSub(sub)

	sub.notify(c.unwrapMessagesFn(sequence, round, higherRounds))

	return sub, unregister
}

func (c *syncCollection) registerSub(sub subscription) func() {
	c.subscriptionMux.Lock()
	defer c.subscriptionMux.Unlock()

	id := c.subscriptions.add(sub)

	return func() {
		c.subscriptionMux.Lock()
		defer c.subscriptionMux.Unlock()

		c.subscriptions.remove(id)
	}
}

func (c *syncCollection) addMessage(msg *message.MsgCandidate) bool {
	c.collectionMux.Lock()
	added := c.collection.addMessage(msg)
	c.collectionMux.Unlock()

	if !added {
		return false
	}

	c.subscriptionMux.RLock()
	c.subscriptions.notifyAll(func(sub subscription) {
		if msg.Sequence != sub.sequence {
			return
		}

		if msg.Round < sub.round {
			return
		}

		if msg.Round > sub.round && !sub.higherRounds {
			return
		}

		sub.notify(c.unwrapMessagesFn(sub.sequence, sub.round, sub.higherRounds))
	})
	c.subscriptionMux.RUnlock()

	return true
}

func (c *syncCollection) getMessages(sequence, round uint64) []*message.MsgCandidate {
	c.collectionMux.RLock()
	defer c.collectionMux.RUnlock()

	return c.collection.getMessages(sequence, round)
}

func (c *syncCollection) unwrapMessagesFn(sequence, round uint64, higherRounds bool) func() []*message.MsgCandidate {
	return func() []*message.MsgCandidate {
		c.collectionMux.RLock()
		defer c.collectionMux.RUnlock()

		if !higherRounds {
			return c.collection.getMessages(sequence, round)
		}

		return c.collection.getHighestRoundMessages(sequence, round)
	}
}

func (c *syncCollection) remove(sequence, round uint64) {
	c.collectionMux.Lock()
	defer c.collectionMux.Unlock()

	c.collection.remove(sequence, round)
}

func (c *syncCollection) clear() {
	c.collectionMux.Lock()
	defer c.collectionMux.Unlock()

	c.collection = newCollection()
}

func (c *syncCollection) len() int {
	c.collectionMux.RLock()
	defer c.collectionMux.RUnlock()

	n := 0
	for _, rounds := range c.collection {
		for _, set := range rounds {
			n += len(set)
		}
	}

	return n
}

func newCollection() collection {
	return map[uint64]map[uint64]msgSet{}
}

// collection indexes candidates by sequence, round and sender
type collection map[uint64]map[uint64]msgSet

func (c *collection) addMessage(msg *message.MsgCandidate) bool {
	set := c.set(msg.Sequence, msg.Round)
	if _, ok := set[string(msg.Sender)]; ok {
		return false
	}

	set[string(msg.Sender)] = msg

	return true
}

func (c *collection) getMessages(sequence, round uint64) []*message.MsgCandidate {
	return c.get(sequence, round).messages()
}

func (c *collection) set(sequence, round uint64) msgSet {
	sameSequenceMessages, ok := (*c)[sequence]
	if !ok {
		(*c)[sequence] = map[uint64]msgSet{}
		sameSequenceMessages = (*c)[sequence]
	}

	set, ok := sameSequenceMessages[round]
	if !ok {
		(*c)[sequence][round] = msgSet{}
		set = (*c)[sequence][round]
	}

	return set
}

func (c *collection) get(sequence, round uint64) msgSet {
	sameSequenceMessages, ok := (*c)[sequence]
	if !ok {
		return nil
	}

	return sameSequenceMessages[round]
}

func (c *collection) getHighestRoundMessages(sequence, round uint64) []*message.MsgCandidate {
	maxRound := round
	for r := range (*c)[sequence] {
		if maxRound >= r {
			continue
		}

		maxRound = r
	}

	return c.getMessages(sequence, maxRound)
}

func (c *collection) remove(sequence, round uint64) {
	if _, ok := (*c)[sequence]; !ok {
		return
	}

	delete((*c)[sequence], round)

	if len((*c)[sequence]) == 0 {
		delete(*c, sequence)
	}
}

type msgSet map[string]*message.MsgCandidate

// messages returns the set ordered by sender
func (s msgSet) messages() []*message.MsgCandidate {
	messages := make([]*message.MsgCandidate, 0, len(s))
	for _, msg := range s {
		messages = append(messages, msg)
	}

	sort.Slice(messages, func(i, j int) bool {
		return string(messages[i].Sender) < string(messages[j].Sender)
	})

	return messages
}
