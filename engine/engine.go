package engine

import (
	"errors"
	"fmt"
	"sync"

	"github.com/sig-0/go-abse"
	"github.com/sig-0/go-abse/evaluator"
	"github.com/sig-0/go-abse/log"
	"github.com/sig-0/go-abse/message"
	"github.com/sig-0/go-abse/message/store"
)

var (
	ErrInvalidConfig = errors.New("invalid engine config")
	ErrNoCandidates  = errors.New("no candidates")
)

type Config struct {
	Transport  abse.Transport
	Signer     abse.Signer
	Verifier   abse.SignatureVerifier
	Keccak     abse.Keccak
	BaselineFn evaluator.BaselineFn
	Logger     log.Logger
	Metrics    *evaluator.Metrics
	Size       int
}

func (cfg Config) IsValid() error {
	if cfg.Size <= 0 {
		return fmt.Errorf("%w: non-positive window size", ErrInvalidConfig)
	}

	if cfg.Transport == nil {
		return fmt.Errorf("%w: nil Transport", ErrInvalidConfig)
	}

	if cfg.Signer == nil {
		return fmt.Errorf("%w: nil Signer", ErrInvalidConfig)
	}

	if cfg.Verifier == nil {
		return fmt.Errorf("%w: nil Verifier", ErrInvalidConfig)
	}

	if cfg.Keccak == nil {
		return fmt.Errorf("%w: nil Keccak", ErrInvalidConfig)
	}

	return nil
}

// Engine binds an Evaluator to the candidate exchange of a single protocol instance.
// All methods are safe for concurrent use.
type Engine struct {
	mux       sync.Mutex
	evaluator *evaluator.Evaluator

	candidates *store.Store
	log        log.Logger
	cfg        Config
}

func NewEngine(cfg Config) (*Engine, error) {
	if err := cfg.IsValid(); err != nil {
		return nil, err
	}

	if cfg.Logger == nil {
		cfg.Logger = log.NewNopLogger()
	}

	e, err := evaluator.New(cfg.Size,
		evaluator.WithBaselineFn(cfg.BaselineFn),
		evaluator.WithLogger(cfg.Logger),
		evaluator.WithMetrics(cfg.Metrics),
	)
	if err != nil {
		return nil, err
	}

	return &Engine{
		evaluator:  e,
		candidates: store.New(),
		log:        cfg.Logger.With("module", "engine"),
		cfg:        cfg,
	}, nil
}

func (e *Engine) Update(scores abse.ScoreVector, f uint64) {
	e.mux.Lock()
	defer e.mux.Unlock()

	e.evaluator.Update(scores, f)
}

func (e *Engine) AdvanceRound() uint64 {
	e.mux.Lock()
	defer e.mux.Unlock()

	return e.evaluator.AdvanceRound()
}

func (e *Engine) Round() uint64 {
	e.mux.Lock()
	defer e.mux.Unlock()

	return e.evaluator.Round()
}

func (e *Engine) Baseline() float64 {
	e.mux.Lock()
	defer e.mux.Unlock()

	return e.evaluator.Baseline()
}

func (e *Engine) Judge(index int) (bool, error) {
	e.mux.Lock()
	defer e.mux.Unlock()

	return e.evaluator.Judge(index)
}

func (e *Engine) TrustedIndices(n int) ([]int, error) {
	e.mux.Lock()
	defer e.mux.Unlock()

	return e.evaluator.TrustedIndices(n)
}

func (e *Engine) SetVoteInfo(votes abse.ScoreVector) {
	e.mux.Lock()
	defer e.mux.Unlock()

	e.evaluator.SetVoteInfo(votes)
}

func (e *Engine) AccumulateVotes(votes abse.ScoreVector) {
	e.mux.Lock()
	defer e.mux.Unlock()

	e.evaluator.AccumulateVotes(votes)
}

func (e *Engine) ResetVoteInfo() {
	e.mux.Lock()
	defer e.mux.Unlock()

	e.evaluator.ResetVoteInfo()
}

// Propose generates a candidate score vector for the current round of sequence,
// signs it and multicasts it to the network
func (e *Engine) Propose(sequence uint64) (*message.MsgCandidate, error) {
	e.mux.Lock()
	defer e.mux.Unlock()

	scores, err := e.evaluator.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate candidate: %w", err)
	}

	msg := message.SignMsg(&message.MsgCandidate{
		Scores:   scores,
		Sequence: sequence,
		Round:    e.evaluator.Round(),
	}, e.cfg.Keccak, e.cfg.Signer)

	e.cfg.Transport.Multicast(msg.Bytes())
	e.log.Debug("candidate multicast", "sequence", sequence, "round", msg.Round, "scores", len(scores))

	return msg, nil
}

// AddCandidate stores a candidate received from the network. Candidates that
// fail validation or signature verification are rejected.
func (e *Engine) AddCandidate(msg *message.MsgCandidate) error {
	if err := msg.Validate(); err != nil {
		e.log.Debug("candidate rejected", "err", err)

		return err
	}

	if err := message.VerifyMsg(msg, e.cfg.Keccak, e.cfg.Verifier); err != nil {
		e.log.Info("candidate rejected", "sequence", msg.Sequence, "round", msg.Round, "err", err)

		return err
	}

	if _, err := e.candidates.Add(msg); err != nil {
		return err
	}

	return nil
}

// AddCandidateBytes decodes data and stores the candidate
func (e *Engine) AddCandidateBytes(data []byte) error {
	msg, err := message.Unmarshal(data)
	if err != nil {
		e.log.Debug("candidate rejected", "err", err)

		return err
	}

	return e.AddCandidate(msg)
}

func (e *Engine) Candidates(sequence, round uint64) []*message.MsgCandidate {
	return e.candidates.Get(sequence, round)
}

func (e *Engine) SubscribeCandidates(
	sequence, round uint64,
	higherRounds bool,
) (<-chan func() []*message.MsgCandidate, func()) {
	return e.candidates.Subscribe(sequence, round, higherRounds)
}

// PruneCandidates drops all candidates stored for given view
func (e *Engine) PruneCandidates(sequence, round uint64) {
	e.candidates.Remove(sequence, round)
}

// Aggregate returns the elementwise mean of all candidates stored for given view.
// Shorter candidates are zero-padded to the longest one.
func (e *Engine) Aggregate(sequence, round uint64) (abse.ScoreVector, error) {
	candidates := e.candidates.Get(sequence, round)
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: sequence %d round %d", ErrNoCandidates, sequence, round)
	}

	width := 0
	for _, c := range candidates {
		if len(c.Scores) > width {
			width = len(c.Scores)
		}
	}

	mean := make(abse.ScoreVector, width)
	for _, c := range candidates {
		for i, s := range c.Scores {
			mean[i] += s
		}
	}

	for i := range mean {
		mean[i] /= float64(len(candidates))
	}

	return mean, nil
}
