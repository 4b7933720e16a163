package flow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/m3rciful/tripbot/core/logger"
	"github.com/m3rciful/tripbot/internal/storage"
)

// ErrDelivery marks a failed outbound call. The session keeps its previous
// state so the user can resend.
var ErrDelivery = errors.New("delivery failed")

// Messenger is the outbound side of the chat transport.
type Messenger interface {
	SendText(ctx context.Context, userID int64, text string) error
	SendOptions(ctx context.Context, userID int64, text string, opts []Option) error
	// EditLastMessage replaces the text of the last message that carried
	// options. Implementations fall back to SendText.
	EditLastMessage(ctx context.Context, userID int64, text string) error
}

// Notifier delivers order notifications to the operator.
type Notifier interface {
	NotifyOperator(ctx context.Context, text string) error
}

// Options configures a Machine.
type Options struct {
	Store      storage.Store
	Messenger  Messenger
	Notifier   Notifier
	OperatorID int64
	// Catalog defaults to NewCatalog(Store, nil, nil).
	Catalog *Catalog
	Now     func() time.Time
	NewRef  func() string
}

type handlerFunc func(ctx context.Context, s *Session, ev Event) error

// Transition identifies a table entry: the event kind a state accepts.
type Transition struct {
	State State
	Kind  EventKind
}

// rule lists the states a handler may leave the session in besides the one
// it started from.
type rule struct {
	next   []State
	handle handlerFunc
}

// Machine applies events to sessions. It holds no per-user state; the
// dispatcher owns the sessions.
type Machine struct {
	store      storage.Store
	out        Messenger
	notify     Notifier
	catalog    *Catalog
	operatorID int64
	now        func() time.Time
	newRef     func() string
	tables     map[Mode]map[Transition]rule
}

// NewMachine builds the transition tables.
func NewMachine(opts Options) *Machine {
	m := &Machine{
		store:      opts.Store,
		out:        opts.Messenger,
		notify:     opts.Notifier,
		catalog:    opts.Catalog,
		operatorID: opts.OperatorID,
		now:        opts.Now,
		newRef:     opts.NewRef,
	}
	if m.catalog == nil {
		m.catalog = NewCatalog(opts.Store, nil, nil)
	}
	if m.now == nil {
		m.now = time.Now
	}
	if m.newRef == nil {
		m.newRef = uuid.NewString
	}
	m.tables = map[Mode]map[Transition]rule{
		ModeOrder: m.orderTable(),
		ModeAdmin: m.adminTable(),
	}
	return m
}

func (m *Machine) orderTable() map[Transition]rule {
	return map[Transition]rule{
		{StateAwaitingDirection, EventOption}: {next: []State{StateAwaitingDate}, handle: m.onDirection},
		{StateAwaitingDate, EventText}:        {next: []State{StateAwaitingPhone}, handle: m.onDate},
		{StateAwaitingPhone, EventText}:       {next: []State{StateAwaitingTripType}, handle: m.onPhone},
		{StateAwaitingTripType, EventOption}:  {next: []State{StateAwaitingCar}, handle: m.onTripType},
		{StateAwaitingCar, EventOption}:       {next: []State{StateAwaitingAddress}, handle: m.onCar},
		{StateAwaitingAddress, EventText}:     {next: []State{StateAwaitingComment}, handle: m.onAddress},
		{StateAwaitingComment, EventText}:     {next: []State{StateAwaitingConfirm}, handle: m.onComment},
		{StateAwaitingConfirm, EventOption}:   {next: []State{StateIdle}, handle: m.onConfirm},
	}
}

// Transitions exposes the tables as (state, kind) -> possible next states.
func (m *Machine) Transitions() map[Transition][]State {
	out := make(map[Transition][]State)
	for _, table := range m.tables {
		for k, r := range table {
			out[k] = slices.Clone(r.next)
		}
	}
	return out
}

// Handle applies ev to s. On error s must be discarded by the caller.
func (m *Machine) Handle(ctx context.Context, s *Session, ev Event) error {
	if s.State == "" {
		s.State = StateIdle
	}
	if s.Mode == "" {
		s.Mode = ModeOrder
	}
	from := s.State

	var err error
	switch {
	case ev.Kind == EventCommand:
		err = m.onCommand(ctx, s, ev)
	case ev.Kind == EventOption && isAdminAction(ev.Payload):
		err = m.onAdminAction(ctx, s, ev)
	case s.Mode == ModeAdmin && !m.isOperator(ev.UserID):
		*s = IdleSession(ev.UserID)
		err = m.say(ctx, ev.UserID, MsgAdminOnlySection)
	default:
		err = m.step(ctx, s, ev)
	}
	if err != nil {
		return err
	}

	if s.State != from {
		logger.LogEvent(ctx, m.log(s.Mode), slog.LevelDebug, "state.advanced",
			slog.Int64("user_id", ev.UserID),
			slog.String("state", string(from)),
			slog.String("next_state", string(s.State)),
		)
	}
	return nil
}

func (m *Machine) step(ctx context.Context, s *Session, ev Event) error {
	table := m.tables[s.Mode]
	r, ok := table[Transition{s.State, ev.Kind}]
	if !ok {
		return m.mismatch(ctx, s, ev)
	}
	from := s.State
	if err := r.handle(ctx, s, ev); err != nil {
		return err
	}
	if s.State != from && !slices.Contains(r.next, s.State) {
		return fmt.Errorf("flow: %s -> %s is not a declared transition", from, s.State)
	}
	return nil
}

// mismatch answers input of the wrong kind without moving the session.
func (m *Machine) mismatch(ctx context.Context, s *Session, ev Event) error {
	table := m.tables[s.Mode]
	if _, wantsOption := table[Transition{s.State, EventOption}]; wantsOption && ev.Kind == EventText {
		return m.say(ctx, ev.UserID, MsgUseButtons)
	}
	if _, wantsText := table[Transition{s.State, EventText}]; wantsText && ev.Kind == EventOption {
		return m.say(ctx, ev.UserID, MsgTypeText)
	}
	return m.say(ctx, ev.UserID, MsgStartHint)
}

func (m *Machine) isOperator(userID int64) bool {
	return m.operatorID != 0 && userID == m.operatorID
}

func (m *Machine) log(mode Mode) *slog.Logger {
	if mode == ModeAdmin {
		return logger.Admin
	}
	return logger.Flow
}

func (m *Machine) say(ctx context.Context, userID int64, text string) error {
	if err := m.out.SendText(ctx, userID, text); err != nil {
		return fmt.Errorf("%w: send text: %w", ErrDelivery, err)
	}
	return nil
}

func (m *Machine) ask(ctx context.Context, userID int64, text string, opts []Option) error {
	if err := m.out.SendOptions(ctx, userID, text, opts); err != nil {
		return fmt.Errorf("%w: send options: %w", ErrDelivery, err)
	}
	return nil
}

func (m *Machine) echo(ctx context.Context, userID int64, text string) error {
	if err := m.out.EditLastMessage(ctx, userID, text); err != nil {
		return fmt.Errorf("%w: edit message: %w", ErrDelivery, err)
	}
	return nil
}
