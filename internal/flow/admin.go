package flow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/m3rciful/tripbot/core/logger"
)

// Admin menu option values.
const (
	AdminAddVehicle    = "admin_add_car"
	AdminRemoveVehicle = "admin_del_car"
	AdminListVehicles  = "admin_list_car"
	AdminAddRoute      = "admin_add_route"
	AdminRemoveRoute   = "admin_del_route"
	AdminListRoutes    = "admin_list_route"
)

// AdminMenu is the keyboard of the admin hub.
func AdminMenu() []Option {
	return []Option{
		{Label: LabelAddVehicle, Value: AdminAddVehicle},
		{Label: LabelRemoveVehicle, Value: AdminRemoveVehicle},
		{Label: LabelListVehicles, Value: AdminListVehicles},
		{Label: LabelAddRoute, Value: AdminAddRoute},
		{Label: LabelRemoveRoute, Value: AdminRemoveRoute},
		{Label: LabelListRoutes, Value: AdminListRoutes},
	}
}

func isAdminAction(v string) bool {
	switch v {
	case AdminAddVehicle, AdminRemoveVehicle, AdminListVehicles,
		AdminAddRoute, AdminRemoveRoute, AdminListRoutes:
		return true
	}
	return false
}

// catalogKind bundles the store calls and texts of one catalog.
type catalogKind struct {
	name     string
	list     func(context.Context) ([]string, error)
	add      func(context.Context, string) (bool, error)
	remove   func(context.Context, string) (bool, error)
	empty    string
	listed   string
	askNew   string
	askDrop  string
	noName   string
	added    string
	exists   string
	removed  string
	notFound string
}

func (m *Machine) vehicles() catalogKind {
	return catalogKind{
		name: "vehicles", list: m.store.ListVehicles, add: m.store.AddVehicle, remove: m.store.RemoveVehicle,
		empty: MsgVehiclesEmpty, listed: MsgVehicleList, askNew: MsgAskNewVehicle, askDrop: MsgAskVehicleRemoval,
		noName: MsgVehicleNameEmpty, added: MsgVehicleAdded, exists: MsgVehicleExists,
		removed: MsgVehicleRemoved, notFound: MsgVehicleNotFound,
	}
}

func (m *Machine) routes() catalogKind {
	return catalogKind{
		name: "routes", list: m.store.ListRoutes, add: m.store.AddRoute, remove: m.store.RemoveRoute,
		empty: MsgRoutesEmpty, listed: MsgRouteList, askNew: MsgAskNewRoute, askDrop: MsgAskRouteRemoval,
		noName: MsgRouteNameEmpty, added: MsgRouteAdded, exists: MsgRouteExists,
		removed: MsgRouteRemoved, notFound: MsgRouteNotFound,
	}
}

func (m *Machine) adminTable() map[Transition]rule {
	return map[Transition]rule{
		{StateAdminMenu, EventOption}: {handle: m.onAdminStray},
		{StateAwaitingNewVehicle, EventText}: {
			next:   []State{StateAdminMenu},
			handle: func(ctx context.Context, s *Session, ev Event) error { return m.onAddName(ctx, s, ev, m.vehicles()) },
		},
		{StateAwaitingVehicleRemoval, EventText}: {
			next:   []State{StateAdminMenu},
			handle: func(ctx context.Context, s *Session, ev Event) error { return m.onRemoveName(ctx, s, ev, m.vehicles()) },
		},
		{StateAwaitingNewRoute, EventText}: {
			next:   []State{StateAdminMenu},
			handle: func(ctx context.Context, s *Session, ev Event) error { return m.onAddName(ctx, s, ev, m.routes()) },
		},
		{StateAwaitingRouteRemoval, EventText}: {
			next:   []State{StateAdminMenu},
			handle: func(ctx context.Context, s *Session, ev Event) error { return m.onRemoveName(ctx, s, ev, m.routes()) },
		},
	}
}

func (m *Machine) adminSession(userID int64, st State) Session {
	return Session{UserID: userID, State: st, Mode: ModeAdmin}
}

// openAdmin handles the admin command.
func (m *Machine) openAdmin(ctx context.Context, s *Session, ev Event) error {
	if !m.isOperator(ev.UserID) {
		m.deny(ctx, ev, CommandAdmin)
		return m.say(ctx, ev.UserID, MsgAdminOnlySection)
	}
	if err := m.ask(ctx, ev.UserID, MsgAdminWelcome, AdminMenu()); err != nil {
		return err
	}
	*s = m.adminSession(ev.UserID, StateAdminMenu)
	return nil
}

// onAdminAction handles a press on any admin menu button, whatever the
// session state is.
func (m *Machine) onAdminAction(ctx context.Context, s *Session, ev Event) error {
	if !m.isOperator(ev.UserID) {
		m.deny(ctx, ev, ev.Payload)
		return m.say(ctx, ev.UserID, MsgAdminOnlySection)
	}
	var kind catalogKind
	switch ev.Payload {
	case AdminAddVehicle, AdminRemoveVehicle, AdminListVehicles:
		kind = m.vehicles()
	default:
		kind = m.routes()
	}

	switch ev.Payload {
	case AdminAddVehicle, AdminAddRoute:
		if err := m.say(ctx, ev.UserID, kind.askNew); err != nil {
			return err
		}
		next := StateAwaitingNewRoute
		if ev.Payload == AdminAddVehicle {
			next = StateAwaitingNewVehicle
		}
		*s = m.adminSession(ev.UserID, next)
		return nil

	case AdminRemoveVehicle, AdminRemoveRoute:
		names, err := kind.list(ctx)
		if err != nil {
			return err
		}
		if len(names) == 0 {
			if err := m.say(ctx, ev.UserID, kind.empty); err != nil {
				return err
			}
			*s = m.adminSession(ev.UserID, StateAdminMenu)
			return nil
		}
		if err := m.say(ctx, ev.UserID, fmt.Sprintf(kind.askDrop, strings.Join(names, ", "))); err != nil {
			return err
		}
		next := StateAwaitingRouteRemoval
		if ev.Payload == AdminRemoveVehicle {
			next = StateAwaitingVehicleRemoval
		}
		*s = m.adminSession(ev.UserID, next)
		return nil
	}

	names, err := kind.list(ctx)
	if err != nil {
		return err
	}
	text := kind.empty
	if len(names) > 0 {
		text = fmt.Sprintf(kind.listed, strings.Join(names, ", "))
	}
	if err := m.say(ctx, ev.UserID, text); err != nil {
		return err
	}
	*s = m.adminSession(ev.UserID, StateAdminMenu)
	return nil
}

// onAdminStray answers a non-admin button pressed while in the admin hub.
func (m *Machine) onAdminStray(ctx context.Context, _ *Session, ev Event) error {
	return m.ask(ctx, ev.UserID, MsgUseButtons, AdminMenu())
}

func (m *Machine) adminName(ctx context.Context, ev Event, kind catalogKind) (string, bool, error) {
	name, err := CleanName(ev.Payload)
	switch {
	case errors.Is(err, ErrNameEmpty):
		return "", false, m.say(ctx, ev.UserID, kind.noName)
	case errors.Is(err, ErrNameTooLong):
		return "", false, m.say(ctx, ev.UserID, fmt.Sprintf(MsgNameTooLong, MaxNameBytes))
	}
	return name, true, nil
}

func (m *Machine) onAddName(ctx context.Context, s *Session, ev Event, kind catalogKind) error {
	name, ok, err := m.adminName(ctx, ev, kind)
	if !ok {
		return err
	}
	added, err := kind.add(ctx, name)
	if err != nil {
		return err
	}
	reply := kind.exists
	if added {
		reply = fmt.Sprintf(kind.added, name)
	}
	logger.LogEvent(ctx, logger.Admin, slog.LevelInfo, "catalog.add",
		slog.Int64("user_id", ev.UserID),
		slog.String("op", kind.name),
		slog.Bool("duplicate", !added),
	)
	if err := m.ask(ctx, ev.UserID, reply, AdminMenu()); err != nil {
		return err
	}
	s.State = StateAdminMenu
	return nil
}

func (m *Machine) onRemoveName(ctx context.Context, s *Session, ev Event, kind catalogKind) error {
	name, ok, err := m.adminName(ctx, ev, kind)
	if !ok {
		return err
	}
	removed, err := kind.remove(ctx, name)
	if err != nil {
		return err
	}
	reply := fmt.Sprintf(kind.notFound, name)
	if removed {
		reply = fmt.Sprintf(kind.removed, name)
	}
	logger.LogEvent(ctx, logger.Admin, slog.LevelInfo, "catalog.remove",
		slog.Int64("user_id", ev.UserID),
		slog.String("op", kind.name),
		slog.Bool("found", removed),
	)
	if err := m.ask(ctx, ev.UserID, reply, AdminMenu()); err != nil {
		return err
	}
	s.State = StateAdminMenu
	return nil
}

func (m *Machine) deny(ctx context.Context, ev Event, what string) {
	logger.LogEvent(ctx, logger.Admin, slog.LevelWarn, "access.denied",
		slog.Int64("user_id", ev.UserID),
		slog.String("op", what),
	)
}
