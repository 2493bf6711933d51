package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/sig-0/go-abse"
)

var ErrInvalidScenario = errors.New("invalid scenario")

// Scenario is a sequence of rounds replayed through a single evaluator
type Scenario struct {
	Rounds       []Round `yaml:"rounds"`
	Size         int     `yaml:"size"`
	Participants int     `yaml:"participants"`
}

type Round struct {
	// Advance moves the round counter forward after the round; defaults to true.
	Advance *bool            `yaml:"advance"`
	Scores  abse.ScoreVector `yaml:"scores"`
	// Votes are accumulated into the vote information before the update.
	Votes abse.ScoreVector `yaml:"votes"`
	// ResetVotes clears the vote information before Votes are accumulated.
	ResetVotes bool   `yaml:"reset_votes"`
	F          uint64 `yaml:"f"`
}

func (r Round) advance() bool {
	return r.Advance == nil || *r.Advance
}

func LoadScenario(path string) (*Scenario, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open scenario: %w", err)
	}
	defer f.Close()

	return DecodeScenario(f)
}

func DecodeScenario(r io.Reader) (*Scenario, error) {
	var s Scenario

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("decode scenario: %w", err)
	}

	return &s, nil
}

func (s *Scenario) Validate() error {
	if s.Size <= 0 {
		return fmt.Errorf("%w: size must be positive", ErrInvalidScenario)
	}

	if s.Participants <= 0 {
		return fmt.Errorf("%w: participants must be positive", ErrInvalidScenario)
	}

	if len(s.Rounds) == 0 {
		return fmt.Errorf("%w: no rounds", ErrInvalidScenario)
	}

	return nil
}
