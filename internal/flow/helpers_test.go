package flow

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/m3rciful/tripbot/internal/session"
	"github.com/m3rciful/tripbot/internal/storage"
)

const (
	operatorID = int64(412216093)
	customerID = int64(1001)
)

var fixedNow = time.Date(2025, 6, 14, 8, 30, 0, 0, time.UTC)

type sent struct {
	UserID  int64
	Kind    string
	Text    string
	Options []Option
}

type fakeMessenger struct {
	mu       sync.Mutex
	sent     []sent
	failNext error
	panicFor int64
}

func (f *fakeMessenger) record(userID int64, kind, text string, opts []Option) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.panicFor != 0 && userID == f.panicFor {
		panic("messenger exploded")
	}
	if f.failNext != nil {
		err := f.failNext
		f.failNext = nil
		return err
	}
	f.sent = append(f.sent, sent{UserID: userID, Kind: kind, Text: text, Options: opts})
	return nil
}

func (f *fakeMessenger) SendText(_ context.Context, userID int64, text string) error {
	return f.record(userID, "text", text, nil)
}

func (f *fakeMessenger) SendOptions(_ context.Context, userID int64, text string, opts []Option) error {
	return f.record(userID, "options", text, opts)
}

func (f *fakeMessenger) EditLastMessage(_ context.Context, userID int64, text string) error {
	return f.record(userID, "edit", text, nil)
}

func (f *fakeMessenger) fail(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failNext = err
}

func (f *fakeMessenger) last(userID int64) sent {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.sent) - 1; i >= 0; i-- {
		if f.sent[i].UserID == userID {
			return f.sent[i]
		}
	}
	return sent{}
}

type fakeNotifier struct {
	mu    sync.Mutex
	texts []string
	err   error
}

func (f *fakeNotifier) NotifyOperator(_ context.Context, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.texts = append(f.texts, text)
	return nil
}

func (f *fakeNotifier) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.texts)
}

// flakyStore fails selected calls the way SQLStore reports an outage.
type flakyStore struct {
	*storage.MemoryStore
	mu         sync.Mutex
	failAppend bool
}

func (s *flakyStore) setFailAppend(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failAppend = v
}

func (s *flakyStore) AppendOrder(ctx context.Context, o storage.Order) (int64, error) {
	s.mu.Lock()
	fail := s.failAppend
	s.mu.Unlock()
	if fail {
		return 0, fmt.Errorf("append order: %w: connection refused", storage.ErrUnavailable)
	}
	return s.MemoryStore.AppendOrder(ctx, o)
}

type harness struct {
	store    *flakyStore
	out      *fakeMessenger
	notifier *fakeNotifier
	sessions session.Store[Session]
	machine  *Machine
	d        *Dispatcher
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		store:    &flakyStore{MemoryStore: storage.NewMemoryStore()},
		out:      &fakeMessenger{},
		notifier: &fakeNotifier{},
		sessions: session.NewMemoryStore[Session](),
	}
	refs := 0
	h.machine = NewMachine(Options{
		Store:      h.store,
		Messenger:  h.out,
		Notifier:   h.notifier,
		OperatorID: operatorID,
		Now:        func() time.Time { return fixedNow },
		NewRef: func() string {
			refs++
			return fmt.Sprintf("ref-%d", refs)
		},
	})
	h.d = NewDispatcher(h.machine, h.sessions)
	return h
}

func (h *harness) handle(t *testing.T, ev Event) {
	t.Helper()
	require.NoError(t, h.d.Handle(context.Background(), ev))
}

func (h *harness) session(t *testing.T, userID int64) Session {
	t.Helper()
	s, ok, err := h.sessions.Get(context.Background(), userID)
	require.NoError(t, err)
	if !ok {
		return IdleSession(userID)
	}
	return s
}

func (h *harness) state(t *testing.T, userID int64) State {
	t.Helper()
	return h.session(t, userID).State
}

func text(userID int64, payload string) Event {
	return Event{UserID: userID, DisplayName: "Ali Valiyev", Kind: EventText, Payload: payload}
}

func option(userID int64, payload string) Event {
	return Event{UserID: userID, DisplayName: "Ali Valiyev", Kind: EventOption, Payload: payload}
}

func command(userID int64, name string) Event {
	return Event{UserID: userID, DisplayName: "Ali Valiyev", Kind: EventCommand, Payload: name}
}

// happyPath is a fully valid conversation; element i moves the session from
// OrderPath[i-1] (or idle) to OrderPath[i].
func happyPath(userID int64) []Event {
	return []Event{
		command(userID, CommandStart),
		option(userID, "Xorazmdan Buxoroga"),
		text(userID, "2025-06-15"),
		text(userID, "998901234567"),
		option(userID, TripPerson),
		option(userID, "Kaptiva"),
		text(userID, "Tashkent St 5"),
		text(userID, "-"),
		option(userID, OptionConfirm),
	}
}
