package protocol_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/escrow-network/escrowd/internal/core/protocol"
)

type stubTask struct {
	name string
	run  func(m *protocol.Context) error
}

func (t *stubTask) Name() string { return t.name }

func (t *stubTask) Run(_ context.Context, m *protocol.Context) error {
	if t.run == nil {
		return nil
	}
	return t.run(m)
}

func recordingTask(name string, trace *[]string) protocol.Task {
	return &stubTask{name: name, run: func(*protocol.Context) error {
		*trace = append(*trace, name)
		return nil
	}}
}

func TestRunnerRunsTasksInOrder(t *testing.T) {
	trace := []string{}
	results, faults := 0, 0

	runner := protocol.NewRunner(
		&protocol.Context{},
		func() { results++ },
		func(string, error) { faults++ },
	)
	runner.AddTasks(
		recordingTask("first", &trace),
		recordingTask("second", &trace),
		recordingTask("third", &trace),
	)
	runner.Run(context.Background())

	require.Equal(t, []string{"first", "second", "third"}, trace)
	require.Equal(t, 1, results)
	require.Zero(t, faults)
}

func TestRunnerAbortsOnFirstFailure(t *testing.T) {
	trace := []string{}
	boom := errors.New("boom")
	var faultMessage string
	var faultErr error
	results, faults := 0, 0

	runner := protocol.NewRunner(
		&protocol.Context{},
		func() { results++ },
		func(message string, err error) {
			faults++
			faultMessage = message
			faultErr = err
		},
	)
	runner.AddTasks(
		recordingTask("first", &trace),
		&stubTask{name: "failing", run: func(*protocol.Context) error { return boom }},
		recordingTask("never", &trace),
	)
	runner.Run(context.Background())

	require.Equal(t, []string{"first"}, trace)
	require.Zero(t, results)
	require.Equal(t, 1, faults)
	require.Contains(t, faultMessage, "failing")
	require.ErrorIs(t, faultErr, boom)
}

func TestRunnerRecoversTaskPanic(t *testing.T) {
	results, faults := 0, 0
	var faultErr error

	runner := protocol.NewRunner(
		&protocol.Context{},
		func() { results++ },
		func(_ string, err error) {
			faults++
			faultErr = err
		},
	)
	runner.AddTasks(&stubTask{name: "panicking", run: func(*protocol.Context) error {
		panic("unexpected nil")
	}})
	runner.Run(context.Background())

	require.Zero(t, results)
	require.Equal(t, 1, faults)
	require.Contains(t, faultErr.Error(), "panicking")
	require.Contains(t, faultErr.Error(), "unexpected nil")
}

func TestRunnerIsSingleUse(t *testing.T) {
	trace := []string{}
	results := 0

	runner := protocol.NewRunner(
		&protocol.Context{},
		func() { results++ },
		func(string, error) {},
	)
	runner.AddTasks(recordingTask("once", &trace))
	runner.Run(context.Background())
	runner.Run(context.Background())

	require.Equal(t, []string{"once"}, trace)
	require.Equal(t, 1, results)
}
