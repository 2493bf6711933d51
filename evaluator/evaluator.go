package evaluator

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/sig-0/go-abse"
	"github.com/sig-0/go-abse/log"
)

var (
	ErrInvalidSize     = errors.New("window size must be positive")
	ErrEmptyWindow     = errors.New("empty window")
	ErrLengthMismatch  = errors.New("vote info longer than latest scores")
	ErrIndexOutOfRange = errors.New("index out of range")
)

// Evaluator tracks a bounded history of per-round score vectors and decides whether
// a participant's evicted (reference) score still clears the current baseline.
//
// Evaluator is not safe for concurrent use. Callers sharing one instance
// must serialize access (see engine.Engine).
type Evaluator struct {
	cfg Config
	log log.Logger

	window    []abse.ScoreVector // front is the oldest entry
	reference abse.ScoreVector
	voteInfo  abse.ScoreVector
	baseline  float64
	round     uint64
	size      int
}

// New returns an Evaluator whose window holds at most size score vectors
func New(size int, opts ...Option) (*Evaluator, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSize, size)
	}

	cfg := NewConfig(opts...)

	return &Evaluator{
		cfg:    cfg,
		log:    cfg.Logger.With("module", "evaluator"),
		window: make([]abse.ScoreVector, 0, size),
		size:   size,
	}, nil
}

// Generate returns the elementwise sum of the vote information and the most recent
// score vector. Vote information shorter than that vector is zero-padded in place.
func (e *Evaluator) Generate() (abse.ScoreVector, error) {
	if len(e.window) == 0 {
		return nil, ErrEmptyWindow
	}

	rear := e.window[len(e.window)-1]

	if len(e.voteInfo) > len(rear) {
		return nil, fmt.Errorf("%w: %d > %d", ErrLengthMismatch, len(e.voteInfo), len(rear))
	}

	if len(e.voteInfo) < len(rear) {
		e.voteInfo = pad(e.voteInfo, len(rear))
	}

	candidate := make(abse.ScoreVector, len(rear))
	for i := range rear {
		candidate[i] = e.voteInfo[i] + rear[i]
	}

	return candidate, nil
}

// Update records scores as the latest entry of the window, evicting the oldest entry
// into the reference vector if the window is full, and recomputes the baseline
// for the current round under fault tolerance bound f.
func (e *Evaluator) Update(scores abse.ScoreVector, f uint64) {
	if n := len(e.window); n > 0 && len(e.window[n-1]) != len(scores) {
		e.log.Debug("score vector length changed", "round", e.round, "from", len(e.window[n-1]), "to", len(scores))
	}

	if len(e.window) == e.size {
		e.reference = e.window[0]
		e.window[0] = nil
		e.window = append(e.window[:0], e.window[1:]...)

		e.cfg.Metrics.Evictions.Add(1)
		e.log.Debug("window evicted", "round", e.round, "reference", e.reference)
	}

	e.window = append(e.window, clone(scores))
	e.baseline = e.cfg.BaselineFn(e.round, f)

	e.cfg.Metrics.WindowSize.Set(float64(len(e.window)))
	e.cfg.Metrics.Baseline.Set(e.baseline)
	e.log.Debug("window updated", "round", e.round, "f", f, "baseline", e.baseline, "len", len(e.window))
}

// Judge reports whether participant index is trusted. Until the first eviction
// every participant is trusted. Afterwards the reference score must be strictly
// greater than the baseline.
func (e *Evaluator) Judge(index int) (bool, error) {
	if len(e.reference) == 0 {
		e.cfg.Metrics.Verdicts.With("trusted", "true").Add(1)

		return true, nil
	}

	if index < 0 || index >= len(e.reference) {
		return false, fmt.Errorf("%w: %d not in [0, %d)", ErrIndexOutOfRange, index, len(e.reference))
	}

	trusted := e.reference[index] > e.baseline
	e.cfg.Metrics.Verdicts.With("trusted", strconv.FormatBool(trusted)).Add(1)

	return trusted, nil
}

// TrustedIndices returns all trusted participants among indices [0, n)
func (e *Evaluator) TrustedIndices(n int) ([]int, error) {
	trusted := make([]int, 0, n)

	for i := 0; i < n; i++ {
		ok, err := e.Judge(i)
		if err != nil {
			return nil, err
		}

		if ok {
			trusted = append(trusted, i)
		}
	}

	return trusted, nil
}

// AdvanceRound moves the round counter forward and returns its new value.
// The baseline picks up the new round on the next Update.
func (e *Evaluator) AdvanceRound() uint64 {
	e.round++
	e.cfg.Metrics.Round.Set(float64(e.round))

	return e.round
}

func (e *Evaluator) Round() uint64 {
	return e.round
}

func (e *Evaluator) Baseline() float64 {
	return e.baseline
}

// Size returns the window capacity
func (e *Evaluator) Size() int {
	return e.size
}

// Len returns the number of score vectors currently held in the window
func (e *Evaluator) Len() int {
	return len(e.window)
}

// Window returns a copy of the window, oldest entry first
func (e *Evaluator) Window() []abse.ScoreVector {
	window := make([]abse.ScoreVector, 0, len(e.window))
	for _, scores := range e.window {
		window = append(window, clone(scores))
	}

	return window
}

// Reference returns a copy of the most recently evicted score vector
func (e *Evaluator) Reference() abse.ScoreVector {
	return clone(e.reference)
}

func (e *Evaluator) VoteInfo() abse.ScoreVector {
	return clone(e.voteInfo)
}

// SetVoteInfo replaces the vote information
func (e *Evaluator) SetVoteInfo(votes abse.ScoreVector) {
	e.voteInfo = clone(votes)
}

// AccumulateVotes adds votes to the vote information elementwise,
// extending it with zeros if votes is longer
func (e *Evaluator) AccumulateVotes(votes abse.ScoreVector) {
	if len(votes) > len(e.voteInfo) {
		e.voteInfo = pad(e.voteInfo, len(votes))
	}

	for i, v := range votes {
		e.voteInfo[i] += v
	}
}

// ResetVoteInfo discards all accumulated vote information
func (e *Evaluator) ResetVoteInfo() {
	e.voteInfo = nil
}

func pad(v abse.ScoreVector, n int) abse.ScoreVector {
	padded := make(abse.ScoreVector, n)
	copy(padded, v)

	return padded
}

func clone(v abse.ScoreVector) abse.ScoreVector {
	if v == nil {
		return nil
	}

	return append(make(abse.ScoreVector, 0, len(v)), v...)
}
