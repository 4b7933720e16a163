// Package sender runs outbound Telegram calls off the update path so a slow
// API never holds a customer's session lane.
package sender

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/m3rciful/tripbot/core/logger"
)

const (
	defaultQueueSize = 256
	defaultWorkers   = 4
	defaultTimeout   = 12 * time.Second

	component = "tg.sender"
)

var (
	// ErrQueueClosed is returned when enqueue is attempted after dispatcher stop.
	ErrQueueClosed = errors.New("telegram sender: queue closed")
	// ErrQueueFull indicates the queue is saturated and the job was not accepted.
	ErrQueueFull = errors.New("telegram sender: queue full")
)

// Options controls the behaviour of the outbound dispatcher. Zero fields
// take defaults.
type Options struct {
	QueueSize int
	Workers   int
	// Timeout bounds a single job.
	Timeout time.Duration
}

func (o Options) withDefaults() Options {
	if o.QueueSize <= 0 {
		o.QueueSize = defaultQueueSize
	}
	if o.Workers <= 0 {
		o.Workers = defaultWorkers
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	return o
}

type job struct {
	ctx      context.Context
	action   string
	endpoint string
	run      func(ctx context.Context) error
}

// Dispatcher executes outbound Telegram calls on a small worker pool. A job
// runs once; failures are logged and counted, never retried.
type Dispatcher struct {
	timeout time.Duration
	jobs    chan job
	wg      sync.WaitGroup

	// mu guards closed so Enqueue never sends on the closed jobs channel.
	mu     sync.RWMutex
	closed bool

	sent   atomic.Uint64
	failed atomic.Uint64
}

// NewDispatcher starts the worker pool.
func NewDispatcher(opts Options) *Dispatcher {
	opts = opts.withDefaults()
	d := &Dispatcher{
		timeout: opts.Timeout,
		jobs:    make(chan job, opts.QueueSize),
	}
	d.wg.Add(opts.Workers)
	for i := 0; i < opts.Workers; i++ {
		go func() {
			defer d.wg.Done()
			for j := range d.jobs {
				d.process(j)
			}
		}()
	}
	return d
}

// Enqueue schedules run without blocking. The job keeps ctx's values but
// not its cancellation, so it survives the update that queued it.
func (d *Dispatcher) Enqueue(ctx context.Context, action, endpoint string, run func(ctx context.Context) error) error {
	if run == nil {
		return errors.New("telegram sender: nil run function")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ErrQueueClosed
	}
	select {
	case d.jobs <- job{ctx: context.WithoutCancel(ctx), action: action, endpoint: endpoint, run: run}:
		return nil
	default:
		return ErrQueueFull
	}
}

// SentCount returns the number of jobs that succeeded.
func (d *Dispatcher) SentCount() uint64 { return d.sent.Load() }

// ErrorCount returns the number of failed jobs.
func (d *Dispatcher) ErrorCount() uint64 { return d.failed.Load() }

// Close stops accepting jobs and waits for the queued ones. Safe to call
// more than once.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.jobs)
	}
	d.mu.Unlock()
	d.wg.Wait()
}

func (d *Dispatcher) process(j job) {
	ctx, cancel := context.WithTimeout(j.ctx, d.timeout)
	defer cancel()

	attrs := []slog.Attr{slog.String("action", j.action)}
	if j.endpoint != "" {
		attrs = append(attrs, slog.String("endpoint", j.endpoint))
	}
	start := time.Now()
	logger.Debug(ctx, component, "send.start", attrs...)

	err := safeRun(ctx, j.run)
	attrs = append(attrs, slog.Duration("elapsed", logger.Took(start)))
	if err != nil {
		d.failed.Add(1)
		logger.Error(ctx, component, "send.fail", append(attrs,
			slog.String("err", SanitizeError(err)),
			slog.String("err_kind", classifyError(err)),
		)...)
		return
	}
	d.sent.Add(1)
	logger.Debug(ctx, component, "send.success", attrs...)
}

func safeRun(ctx context.Context, run func(context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("telegram sender: panic: %v", r)
		}
	}()
	return run(ctx)
}
