package protocol

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
)

// Task is one atomic step of a protocol sequence. It performs a single
// unit of work against the shared trade context and reports the outcome
// through its return value: nil completes the task, an error fails it
// and aborts the rest of the sequence.
type Task interface {
	Name() string
	Run(ctx context.Context, model *Context) error
}

// ResultHandler is invoked exactly once when a sequence runs to
// completion.
type ResultHandler func()

// FaultHandler is invoked exactly once on the first task failure of a
// sequence, with a human-readable message and the causing error.
type FaultHandler func(message string, err error)

// Runner executes an ordered sequence of tasks against one shared trade
// context, strictly one at a time, aborting the remaining queue on the
// first failure. A runner is single-use: re-running it after completion
// or failure is not supported.
type Runner struct {
	model    *Context
	tasks    []Task
	onResult ResultHandler
	onFault  FaultHandler

	done bool
}

// NewRunner returns a runner over the given shared context with a fresh
// result/fault handler pair.
func NewRunner(model *Context, onResult ResultHandler, onFault FaultHandler) *Runner {
	return &Runner{
		model:    model,
		onResult: onResult,
		onFault:  onFault,
	}
}

// AddTasks appends tasks to the sequence in execution order.
func (r *Runner) AddTasks(tasks ...Task) {
	r.tasks = append(r.tasks, tasks...)
}

// Run executes the sequence. The outcome is delivered exactly once via
// the result handler or the fault handler, never both.
func (r *Runner) Run(ctx context.Context) {
	if r.done {
		log.Warn("task runner already ran, ignoring")
		return
	}
	r.done = true

	for _, task := range r.tasks {
		log.Tracef("running task %s", task.Name())
		if err := r.runTask(ctx, task); err != nil {
			log.WithError(err).Debugf("task %s failed", task.Name())
			r.onFault(fmt.Sprintf("task %s failed", task.Name()), err)
			return
		}
	}
	r.onResult()
}

// runTask executes one task, converting a panic into an ordinary task
// failure so that faults never cross the task boundary unhandled.
func (r *Runner) runTask(ctx context.Context, task Task) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic in task %s: %v", task.Name(), rec)
		}
	}()
	return task.Run(ctx, r.model)
}
