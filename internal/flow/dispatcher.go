package flow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/m3rciful/tripbot/core/logger"
	"github.com/m3rciful/tripbot/internal/session"
	"github.com/m3rciful/tripbot/internal/storage"
)

// ErrClosed is returned by Submit after Close.
var ErrClosed = errors.New("flow: dispatcher closed")

type queued struct {
	ctx context.Context
	ev  Event
}

type lane struct {
	pending []queued
}

// Dispatcher owns the sessions. Events of one user are applied strictly in
// the order they were submitted; different users proceed in parallel.
type Dispatcher struct {
	machine  *Machine
	sessions session.Store[Session]
	store    storage.Store
	out      Messenger
	locks    session.KeyedMutex

	mu     sync.Mutex
	lanes  map[int64]*lane
	closed bool
	wg     sync.WaitGroup
}

// NewDispatcher wires a machine to its session store. A nil sessions store
// keeps snapshots in memory.
func NewDispatcher(m *Machine, sessions session.Store[Session]) *Dispatcher {
	if sessions == nil {
		sessions = session.NewMemoryStore[Session]()
	}
	return &Dispatcher{
		machine:  m,
		sessions: sessions,
		store:    m.store,
		out:      m.out,
		lanes:    make(map[int64]*lane),
	}
}

// Submit queues ev on its user's lane and returns immediately.
func (d *Dispatcher) Submit(ctx context.Context, ev Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrClosed
	}
	l, ok := d.lanes[ev.UserID]
	if !ok {
		l = &lane{}
		d.lanes[ev.UserID] = l
		d.wg.Add(1)
		go d.drain(ev.UserID, l)
	}
	l.pending = append(l.pending, queued{ctx: ctx, ev: ev})
	return nil
}

// Lanes reports how many users currently have queued or running events.
func (d *Dispatcher) Lanes() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.lanes)
}

// Close rejects new events and waits until every lane is drained.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()
	d.wg.Wait()
}

func (d *Dispatcher) drain(userID int64, l *lane) {
	defer d.wg.Done()
	for {
		d.mu.Lock()
		if len(l.pending) == 0 {
			delete(d.lanes, userID)
			d.mu.Unlock()
			return
		}
		q := l.pending[0]
		l.pending[0] = queued{}
		l.pending = l.pending[1:]
		d.mu.Unlock()

		d.process(q.ctx, q.ev)
	}
}

func (d *Dispatcher) process(ctx context.Context, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			logger.LogEvent(ctx, logger.Session, slog.LevelError, "lane.panic",
				slog.Int64("user_id", ev.UserID),
				slog.String("err", fmt.Sprint(r)),
			)
		}
	}()
	_ = d.Handle(ctx, ev)
}

// Handle applies ev synchronously. The new session is stored only when the
// machine succeeded; on failure the previous snapshot stays in place.
func (d *Dispatcher) Handle(ctx context.Context, ev Event) error {
	if ctx == nil {
		ctx = context.Background()
	}
	unlock := d.locks.Lock(ev.UserID)
	defer unlock()

	start := time.Now()
	prev, ok, err := d.sessions.Get(ctx, ev.UserID)
	if err != nil {
		return d.fail(ctx, ev, prev.State, fmt.Errorf("load session: %w", err))
	}
	if !ok {
		if err := d.store.UpsertUser(ctx, ev.UserID, ev.DisplayName); err != nil {
			return d.fail(ctx, ev, StateIdle, err)
		}
		prev = IdleSession(ev.UserID)
	}
	ctx = logger.WithSession(ctx, string(prev.State), string(prev.Mode))

	next := prev
	if err := d.machine.Handle(ctx, &next, ev); err != nil {
		return d.fail(ctx, ev, prev.State, err)
	}

	if next.idle() {
		err = d.sessions.Delete(ctx, ev.UserID)
	} else {
		err = d.sessions.Put(ctx, ev.UserID, next)
	}
	if err != nil {
		return d.fail(ctx, ev, prev.State, fmt.Errorf("save session: %w", err))
	}

	logger.LogEvent(ctx, logger.Session, slog.LevelDebug, "session.handled",
		slog.Int64("user_id", ev.UserID),
		slog.String("op", string(ev.Kind)),
		slog.String("state", string(prev.State)),
		slog.String("next_state", string(next.State)),
		slog.String("status", "ok"),
		slog.Duration("duration", logger.Took(start)),
	)
	return nil
}

// fail logs err and, unless the transport itself failed, tells the user to
// try again.
func (d *Dispatcher) fail(ctx context.Context, ev Event, st State, err error) error {
	attrs := []slog.Attr{
		slog.Int64("user_id", ev.UserID),
		slog.String("op", string(ev.Kind)),
		slog.String("state", string(st)),
		slog.String("status", "fail"),
		slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
	}
	if errors.Is(err, ErrDelivery) {
		logger.LogEvent(ctx, logger.Session, slog.LevelError, "delivery.failed", attrs...)
		return err
	}

	level := slog.LevelError
	if errors.Is(err, storage.ErrUnavailable) {
		level = slog.LevelWarn
	}
	logger.LogEvent(ctx, logger.Session, level, "session.failed", attrs...)
	if sendErr := d.out.SendText(ctx, ev.UserID, MsgTryAgain); sendErr != nil {
		logger.LogEvent(ctx, logger.Session, slog.LevelError, "delivery.failed",
			slog.Int64("user_id", ev.UserID),
			slog.String("status", "fail"),
			slog.String("err", sendErr.Error()),
		)
	}
	return err
}
