package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sig-0/go-abse/evaluator"
	"github.com/sig-0/go-abse/log"
)

func newRunCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Replay a YAML scenario and print one verdict line per round",
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger, err := log.NewLogger(cmd.ErrOrStderr(), v.GetString(flagLogFormat), v.GetString(flagLogLevel))
			if err != nil {
				return err
			}

			scenario, err := LoadScenario(v.GetString(flagScenario))
			if err != nil {
				return err
			}

			if size := v.GetInt(flagSize); size > 0 {
				scenario.Size = size
			}

			return Replay(cmd.OutOrStdout(), scenario, logger)
		},
	}

	cmd.Flags().String(flagScenario, "", "path to the scenario file")
	cmd.Flags().Int(flagSize, 0, "window size (overrides the scenario)")

	if err := v.BindPFlags(cmd.Flags()); err != nil {
		panic(err)
	}

	return cmd
}

// Replay runs every round of the scenario through a fresh evaluator
func Replay(w io.Writer, s *Scenario, logger log.Logger) error {
	if err := s.Validate(); err != nil {
		return err
	}

	e, err := evaluator.New(s.Size, evaluator.WithLogger(logger))
	if err != nil {
		return err
	}

	for i, r := range s.Rounds {
		if r.ResetVotes {
			e.ResetVoteInfo()
		}

		e.AccumulateVotes(r.Votes)
		e.Update(r.Scores, r.F)

		candidate, genErr := e.Generate()

		trusted, err := e.TrustedIndices(s.Participants)
		if err != nil {
			return fmt.Errorf("round #%d: %w", i, err)
		}

		line := fmt.Sprintf("round=%d baseline=%.6f trusted=%v", e.Round(), e.Baseline(), trusted)
		if genErr != nil {
			line += fmt.Sprintf(" candidate_err=%q", genErr.Error())
		} else {
			line += fmt.Sprintf(" candidate=%v", candidate)
		}

		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}

		if r.advance() {
			e.AdvanceRound()
		}
	}

	return nil
}
