package flow

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/m3rciful/tripbot/core/logger"
	"github.com/m3rciful/tripbot/internal/storage"
)

// Confirm step option values.
const (
	OptionConfirm = "confirm"
	OptionCancel  = "cancel"
)

func tripTypeOptions() []Option {
	return []Option{
		{Label: LabelPerson, Value: TripPerson},
		{Label: LabelCargo, Value: TripCargo},
	}
}

func confirmOptions() []Option {
	return []Option{
		{Label: LabelConfirm, Value: OptionConfirm},
		{Label: LabelCancel, Value: OptionCancel},
	}
}

// start resets the session and asks for the route.
func (m *Machine) start(ctx context.Context, s *Session, ev Event) error {
	if err := m.store.UpsertUser(ctx, ev.UserID, ev.DisplayName); err != nil {
		return err
	}
	routes, err := m.catalog.Routes(ctx)
	if err != nil {
		return err
	}
	if err := m.ask(ctx, ev.UserID, MsgWelcome, nameOptions(routes)); err != nil {
		return err
	}
	*s = Session{UserID: ev.UserID, State: StateAwaitingDirection, Mode: ModeOrder}
	return nil
}

func (m *Machine) onDirection(ctx context.Context, s *Session, ev Event) error {
	routes, err := m.catalog.Routes(ctx)
	if err != nil {
		return err
	}
	if !contains(routes, ev.Payload) {
		return m.ask(ctx, ev.UserID, MsgStale, nameOptions(routes))
	}
	if err := m.echo(ctx, ev.UserID, fmt.Sprintf(MsgChosenDirection, ev.Payload)); err != nil {
		return err
	}
	if err := m.say(ctx, ev.UserID, MsgAskDate); err != nil {
		return err
	}
	s.Draft.Direction = ev.Payload
	s.State = StateAwaitingDate
	return nil
}

func (m *Machine) onDate(ctx context.Context, s *Session, ev Event) error {
	date := strings.TrimSpace(ev.Payload)
	if !ValidateDate(date) {
		return m.say(ctx, ev.UserID, MsgBadDate)
	}
	if err := m.say(ctx, ev.UserID, MsgAskPhone); err != nil {
		return err
	}
	s.Draft.Date = date
	s.State = StateAwaitingPhone
	return nil
}

func (m *Machine) onPhone(ctx context.Context, s *Session, ev Event) error {
	phone := strings.TrimSpace(ev.Payload)
	if !ValidatePhone(phone) {
		return m.say(ctx, ev.UserID, MsgBadPhone)
	}
	if err := m.store.SetUserPhone(ctx, ev.UserID, phone); err != nil {
		return err
	}
	if err := m.ask(ctx, ev.UserID, MsgAskTripType, tripTypeOptions()); err != nil {
		return err
	}
	s.Draft.Phone = phone
	s.State = StateAwaitingTripType
	return nil
}

func (m *Machine) onTripType(ctx context.Context, s *Session, ev Event) error {
	if ev.Payload != TripPerson && ev.Payload != TripCargo {
		return m.ask(ctx, ev.UserID, MsgAskTripType, tripTypeOptions())
	}
	vehicles, err := m.catalog.Vehicles(ctx)
	if err != nil {
		return err
	}
	if err := m.echo(ctx, ev.UserID, fmt.Sprintf(MsgChosenTripType, TripTypeLabel(ev.Payload))); err != nil {
		return err
	}
	if err := m.ask(ctx, ev.UserID, MsgAskCar, nameOptions(vehicles)); err != nil {
		return err
	}
	s.Draft.TripType = ev.Payload
	s.State = StateAwaitingCar
	return nil
}

func (m *Machine) onCar(ctx context.Context, s *Session, ev Event) error {
	vehicles, err := m.catalog.Vehicles(ctx)
	if err != nil {
		return err
	}
	if !contains(vehicles, ev.Payload) {
		return m.ask(ctx, ev.UserID, MsgStale, nameOptions(vehicles))
	}
	if err := m.echo(ctx, ev.UserID, fmt.Sprintf(MsgChosenCar, ev.Payload)); err != nil {
		return err
	}
	if err := m.say(ctx, ev.UserID, MsgAskAddress); err != nil {
		return err
	}
	s.Draft.Car = ev.Payload
	s.State = StateAwaitingAddress
	return nil
}

func (m *Machine) onAddress(ctx context.Context, s *Session, ev Event) error {
	address := strings.TrimSpace(ev.Payload)
	if address == "" {
		return m.say(ctx, ev.UserID, MsgEmptyAddress)
	}
	if err := m.say(ctx, ev.UserID, MsgAskComment); err != nil {
		return err
	}
	s.Draft.Address = address
	s.State = StateAwaitingComment
	return nil
}

// NormalizeComment maps an empty or "-" comment to CommentNone.
func NormalizeComment(text string) string {
	c := strings.TrimSpace(text)
	if c == "" || c == "-" {
		return CommentNone
	}
	return c
}

func (m *Machine) onComment(ctx context.Context, s *Session, ev Event) error {
	draft := s.Draft
	draft.Comment = NormalizeComment(ev.Payload)
	if err := m.ask(ctx, ev.UserID, RenderSummary(draft), confirmOptions()); err != nil {
		return err
	}
	s.Draft = draft
	s.State = StateAwaitingConfirm
	return nil
}

func (m *Machine) onConfirm(ctx context.Context, s *Session, ev Event) error {
	switch ev.Payload {
	case OptionConfirm:
		return m.commit(ctx, s, ev)
	case OptionCancel:
		if err := m.echo(ctx, ev.UserID, MsgOrderCancelled); err != nil {
			return err
		}
		*s = IdleSession(ev.UserID)
		return nil
	}
	return m.ask(ctx, ev.UserID, MsgAskConfirm, confirmOptions())
}

// commit appends the order and notifies the operator. Once the order is
// stored the session always returns to idle; later delivery failures are
// only logged so a resend cannot create a second order.
func (m *Machine) commit(ctx context.Context, s *Session, ev Event) error {
	if !s.Draft.Complete() {
		*s = IdleSession(ev.UserID)
		return m.say(ctx, ev.UserID, MsgStartHint)
	}
	d := s.Draft
	o := storage.Order{
		Ref:       m.newRef(),
		UserID:    ev.UserID,
		Direction: d.Direction,
		Date:      d.Date,
		Phone:     d.Phone,
		TripType:  d.TripType,
		Car:       d.Car,
		Address:   d.Address,
		Comment:   d.Comment,
		CreatedAt: m.now(),
	}
	id, err := m.store.AppendOrder(ctx, o)
	if err != nil {
		return err
	}
	o.ID = id
	*s = IdleSession(ev.UserID)

	attrs := []slog.Attr{
		slog.Int64("user_id", ev.UserID),
		slog.Int64("order_id", id),
		slog.String("order_ref", o.Ref),
		slog.String("direction", o.Direction),
		slog.String("car", o.Car),
	}
	logger.LogEvent(ctx, logger.Flow, slog.LevelInfo, "order.committed", attrs...)

	if err := m.notify.NotifyOperator(ctx, RenderNotification(o, ev.DisplayName)); err != nil {
		logger.LogEvent(ctx, logger.Flow, slog.LevelError, "order.notify",
			append(attrs, slog.String("status", "fail"), slog.String("err", err.Error()))...)
	}
	if err := m.echo(ctx, ev.UserID, MsgThanks); err != nil {
		logger.LogEvent(ctx, logger.Flow, slog.LevelWarn, "order.thanks",
			slog.Int64("user_id", ev.UserID),
			slog.String("status", "fail"),
			slog.String("err", err.Error()),
		)
	}
	return nil
}
