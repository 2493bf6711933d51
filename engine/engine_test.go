package engine_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sig-0/go-abse"
	"github.com/sig-0/go-abse/engine"
	"github.com/sig-0/go-abse/evaluator"
	"github.com/sig-0/go-abse/log"
	"github.com/sig-0/go-abse/message"
	"github.com/sig-0/go-abse/test"
)

var noopTransport = abse.TransportFn(func([]byte) {})

func newTestEngine(t *testing.T, size int, transport abse.Transport) (*engine.Engine, test.ECDSAKey) {
	t.Helper()

	key := test.NewECDSAKey()

	e, err := engine.NewEngine(engine.Config{
		Size:      size,
		Transport: transport,
		Signer:    key,
		Verifier:  test.ECRecover,
		Keccak:    test.DefaultKeccak,
		Logger:    log.TestingLogger(),
	})
	require.NoError(t, err)

	return e, key
}

func Test_EngineConfig(t *testing.T) {
	t.Parallel()

	key := test.NewECDSAKey()

	table := []struct {
		expected error
		name     string
		cfg      engine.Config
	}{
		{
			name:     "invalid size",
			expected: engine.ErrInvalidConfig,
			cfg:      engine.Config{Size: 0},
		},

		{
			name:     "missing transport",
			expected: engine.ErrInvalidConfig,
			cfg: engine.Config{
				Size: 2,
			},
		},

		{
			name:     "missing signer",
			expected: engine.ErrInvalidConfig,
			cfg: engine.Config{
				Size:      2,
				Transport: noopTransport,
			},
		},

		{
			name:     "missing verifier",
			expected: engine.ErrInvalidConfig,
			cfg: engine.Config{
				Size:      2,
				Transport: noopTransport,
				Signer:    key,
			},
		},

		{
			name:     "missing keccak",
			expected: engine.ErrInvalidConfig,
			cfg: engine.Config{
				Size:      2,
				Transport: noopTransport,
				Signer:    key,
				Verifier:  test.ECRecover,
			},
		},

		{
			name:     "ok",
			expected: nil,
			cfg: engine.Config{
				Size:      2,
				Transport: noopTransport,
				Signer:    key,
				Verifier:  test.ECRecover,
				Keccak:    test.DefaultKeccak,
			},
		},
	}

	for _, tt := range table {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.ErrorIs(t, tt.cfg.IsValid(), tt.expected)

			_, err := engine.NewEngine(tt.cfg)
			assert.ErrorIs(t, err, tt.expected)
		})
	}
}

func Test_Engine_Propose(t *testing.T) {
	t.Parallel()

	t.Run("empty window", func(t *testing.T) {
		t.Parallel()

		e, _ := newTestEngine(t, 2, noopTransport)

		_, err := e.Propose(101)
		assert.ErrorIs(t, err, evaluator.ErrEmptyWindow)
	})

	t.Run("vote info too long", func(t *testing.T) {
		t.Parallel()

		e, _ := newTestEngine(t, 2, noopTransport)
		e.Update(abse.ScoreVector{1}, 0)
		e.SetVoteInfo(abse.ScoreVector{1, 2})

		_, err := e.Propose(101)
		assert.ErrorIs(t, err, evaluator.ErrLengthMismatch)
	})

	t.Run("signed candidate multicast", func(t *testing.T) {
		t.Parallel()

		var sent [][]byte

		e, key := newTestEngine(t, 2, abse.TransportFn(func(data []byte) {
			sent = append(sent, data)
		}))

		e.AdvanceRound()
		e.Update(abse.ScoreVector{1, 2, 3}, 1)
		e.AccumulateVotes(abse.ScoreVector{1, 2})

		msg, err := e.Propose(101)
		require.NoError(t, err)

		assert.Equal(t, abse.ScoreVector{2, 4, 3}, msg.Scores)
		assert.Equal(t, uint64(101), msg.Sequence)
		assert.Equal(t, uint64(1), msg.Round)
		assert.Equal(t, key.Address(), msg.Sender)

		require.Len(t, sent, 1)

		decoded, err := message.Unmarshal(sent[0])
		require.NoError(t, err)
		assert.NoError(t, message.VerifyMsg(decoded, test.DefaultKeccak, test.ECRecover))
		assert.Equal(t, msg.Scores, decoded.Scores)
	})
}

func Test_Engine_AddCandidate(t *testing.T) {
	t.Parallel()

	sign := func(key test.ECDSAKey, round uint64, scores ...float64) *message.MsgCandidate {
		return message.SignMsg(&message.MsgCandidate{
			Scores:   scores,
			Sequence: 101,
			Round:    round,
		}, test.DefaultKeccak, key)
	}

	t.Run("valid candidate stored", func(t *testing.T) {
		t.Parallel()

		e, _ := newTestEngine(t, 2, noopTransport)

		require.NoError(t, e.AddCandidate(sign(test.NewECDSAKey(), 0, 1, 2)))
		assert.Len(t, e.Candidates(101, 0), 1)
	})

	t.Run("invalid candidate rejected", func(t *testing.T) {
		t.Parallel()

		e, _ := newTestEngine(t, 2, noopTransport)

		assert.ErrorIs(t, e.AddCandidate(&message.MsgCandidate{Scores: []float64{1}}), message.ErrInvalidMsg)
		assert.Len(t, e.Candidates(101, 0), 0)
	})

	t.Run("forged candidate rejected", func(t *testing.T) {
		t.Parallel()

		e, _ := newTestEngine(t, 2, noopTransport)

		msg := sign(test.NewECDSAKey(), 0, 1, 2)
		msg.Scores[0] = 100

		assert.ErrorIs(t, e.AddCandidate(msg), message.ErrInvalidSignature)
		assert.Len(t, e.Candidates(101, 0), 0)
	})

	t.Run("malformed bytes rejected", func(t *testing.T) {
		t.Parallel()

		e, _ := newTestEngine(t, 2, noopTransport)

		assert.ErrorIs(t, e.AddCandidateBytes([]byte{0xff}), message.ErrMalformedMsg)
	})

	t.Run("subscription notified", func(t *testing.T) {
		t.Parallel()

		e, _ := newTestEngine(t, 2, noopTransport)

		sub, cancelSub := e.SubscribeCandidates(101, 0, false)
		defer cancelSub()

		<-sub

		msg := sign(test.NewECDSAKey(), 0, 1)
		require.NoError(t, e.AddCandidateBytes(msg.Bytes()))

		candidates := (<-sub)()
		require.Len(t, candidates, 1)
		assert.Equal(t, msg.Scores, candidates[0].Scores)
	})

	t.Run("aggregate", func(t *testing.T) {
		t.Parallel()

		e, _ := newTestEngine(t, 2, noopTransport)

		_, err := e.Aggregate(101, 0)
		require.ErrorIs(t, err, engine.ErrNoCandidates)

		require.NoError(t, e.AddCandidate(sign(test.NewECDSAKey(), 0, 1, 2, 3)))
		require.NoError(t, e.AddCandidate(sign(test.NewECDSAKey(), 0, 3, 4)))

		mean, err := e.Aggregate(101, 0)
		require.NoError(t, err)
		assert.Equal(t, abse.ScoreVector{2, 3, 1.5}, mean)

		e.PruneCandidates(101, 0)

		_, err = e.Aggregate(101, 0)
		assert.ErrorIs(t, err, engine.ErrNoCandidates)
	})
}

func Test_Engine_Concurrent(t *testing.T) {
	t.Parallel()

	const workers = 8

	e, _ := newTestEngine(t, 3, noopTransport)

	var wg sync.WaitGroup

	wg.Add(workers)

	for i := 0; i < workers; i++ {
		go func(i int) {
			defer wg.Done()

			for j := 0; j < 50; j++ {
				e.Update(abse.ScoreVector{float64(i), float64(j)}, uint64(i))
				e.AccumulateVotes(abse.ScoreVector{1})

				_, _ = e.Judge(1)
				_, _ = e.Propose(uint64(i))

				if j%10 == 0 {
					e.AdvanceRound()
				}
			}
		}(i)
	}

	wg.Wait()

	assert.Equal(t, uint64(workers*5), e.Round())

	trusted, err := e.TrustedIndices(2)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(trusted), 2)
}
