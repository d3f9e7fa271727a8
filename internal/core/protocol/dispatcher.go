package protocol

import "errors"

const dispatchQueueSize = 16

// ErrDispatchQueueFull is returned by Enqueue when the trade's dispatch
// queue cannot take another job.
var ErrDispatchQueueFull = errors.New("trade dispatch queue is full")

// Dispatcher serializes sequence runs for one trade. All jobs are
// drained by a single goroutine, so a message arriving while a sequence
// is running queues behind the active run instead of overlapping it.
type Dispatcher struct {
	jobs chan func()
	quit chan struct{}
}

// NewDispatcher returns a stopped dispatcher; call Start before
// enqueuing.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		jobs: make(chan func(), dispatchQueueSize),
		quit: make(chan struct{}),
	}
}

// Start launches the drain goroutine.
func (d *Dispatcher) Start() {
	go func() {
		for {
			select {
			case job := <-d.jobs:
				job()
			case <-d.quit:
				return
			}
		}
	}()
}

// Stop terminates the drain goroutine. Queued jobs not yet started are
// dropped.
func (d *Dispatcher) Stop() {
	close(d.quit)
}

// Enqueue schedules a job behind any active or queued run. It never
// blocks the caller: a full queue returns ErrDispatchQueueFull so the
// protocol can surface the rejection as a sequence fault.
func (d *Dispatcher) Enqueue(job func()) error {
	select {
	case d.jobs <- job:
		return nil
	default:
		return ErrDispatchQueueFull
	}
}
