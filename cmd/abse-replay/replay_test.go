package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sig-0/go-abse/evaluator"
	"github.com/sig-0/go-abse/log"
)

const testScenario = `
size: 2
participants: 3
rounds:
  - f: 1
    scores: [1, 2, 3]
    votes: [1, 2]
  - f: 1
    scores: [4, 5, 6]
  - f: 2
    scores: [7, 8, 9]
    reset_votes: true
  - f: 2
    scores: [1, 1, 1]
    votes: [1, 1, 1, 1]
    advance: false
`

func Test_DecodeScenario(t *testing.T) {
	t.Parallel()

	t.Run("ok", func(t *testing.T) {
		t.Parallel()

		s, err := DecodeScenario(strings.NewReader(testScenario))
		require.NoError(t, err)
		require.NoError(t, s.Validate())

		assert.Equal(t, 2, s.Size)
		assert.Equal(t, 3, s.Participants)
		require.Len(t, s.Rounds, 4)
		assert.True(t, s.Rounds[0].advance())
		assert.False(t, s.Rounds[3].advance())
		assert.True(t, s.Rounds[2].ResetVotes)
	})

	t.Run("unknown field", func(t *testing.T) {
		t.Parallel()

		_, err := DecodeScenario(strings.NewReader("size: 2\nwindow: 3\n"))
		assert.Error(t, err)
	})

	table := []struct {
		name string
		yaml string
	}{
		{name: "zero size", yaml: "size: 0\nparticipants: 1\nrounds: [{scores: [1]}]\n"},
		{name: "no participants", yaml: "size: 1\nrounds: [{scores: [1]}]\n"},
		{name: "no rounds", yaml: "size: 1\nparticipants: 1\n"},
	}

	for _, tt := range table {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s, err := DecodeScenario(strings.NewReader(tt.yaml))
			require.NoError(t, err)
			assert.ErrorIs(t, s.Validate(), ErrInvalidScenario)
		})
	}
}

func Test_Replay(t *testing.T) {
	t.Parallel()

	s, err := DecodeScenario(strings.NewReader(testScenario))
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, Replay(&out, s, log.TestingLogger()))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 4)

	assert.Equal(t, "round=0 baseline=0.000000 trusted=[0 1 2] candidate=[2 4 3]", lines[0])
	assert.Equal(t, "round=1 baseline=0.750000 trusted=[0 1 2] candidate=[5 7 6]", lines[1])
	// reference [1 2 3], baseline 2 * 5/7
	assert.Equal(t, "round=2 baseline=1.428571 trusted=[1 2] candidate=[7 8 9]", lines[2])
	// reference [4 5 6], vote info longer than the latest scores
	assert.Equal(t,
		`round=3 baseline=2.142857 trusted=[0 1 2] candidate_err="`+
			evaluator.ErrLengthMismatch.Error()+`: 4 > 3"`,
		lines[3],
	)
}

func Test_Replay_IndexOutOfRange(t *testing.T) {
	t.Parallel()

	s := &Scenario{
		Size:         1,
		Participants: 3,
		Rounds: []Round{
			{Scores: []float64{1, 2}},
			{Scores: []float64{1, 2}},
		},
	}

	err := Replay(&bytes.Buffer{}, s, log.NewNopLogger())
	assert.ErrorIs(t, err, evaluator.ErrIndexOutOfRange)
}

func Test_RunCmd(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testScenario), 0o600))

	var out bytes.Buffer

	root := NewRootCmd()
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"run", "--scenario", path, "--size", "3", "--log-level", "error"})

	require.NoError(t, root.Execute())

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 4)

	// a window of 3 first evicts in the fourth round
	assert.True(t, strings.HasPrefix(lines[2], "round=2 baseline=1.428571 trusted=[0 1 2]"))
	assert.True(t, strings.HasPrefix(lines[3], "round=3 baseline=2.142857 trusted=[2]"))
}

func Test_ExampleScenario(t *testing.T) {
	t.Parallel()

	s, err := LoadScenario(filepath.Join("testdata", "example.yaml"))
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, Replay(&out, s, log.NewNopLogger()))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 6)

	// reference [4 4 4 0], baseline 3 * 3/4
	assert.True(t, strings.HasPrefix(lines[3], "round=3 baseline=2.250000 trusted=[0 1 2]"))
	// reference [4 4 0 4]
	assert.True(t, strings.HasPrefix(lines[4], "round=4 baseline=3.000000 trusted=[0 1 3]"))
	// reference [4 0 4 4]
	assert.True(t, strings.HasPrefix(lines[5], "round=5 baseline=3.750000 trusted=[0 2 3]"))
}
