package flow

import (
	"context"
	"fmt"
)

func (m *Machine) onCommand(ctx context.Context, s *Session, ev Event) error {
	switch ev.Payload {
	case CommandStart:
		return m.start(ctx, s, ev)
	case CommandHelp:
		return m.say(ctx, ev.UserID, MsgHelp)
	case CommandCancel:
		return m.cancel(ctx, s, ev)
	case CommandAdmin:
		return m.openAdmin(ctx, s, ev)
	case CommandAdminHelp, CommandStats, CommandUsers:
		return m.operatorCommand(ctx, ev)
	}
	return m.say(ctx, ev.UserID, MsgStartHint)
}

// cancel drops any draft from any state. The reply is the same when the
// user had nothing in progress.
func (m *Machine) cancel(ctx context.Context, s *Session, ev Event) error {
	if err := m.say(ctx, ev.UserID, MsgCancelled); err != nil {
		return err
	}
	*s = IdleSession(ev.UserID)
	return nil
}

func (m *Machine) operatorCommand(ctx context.Context, ev Event) error {
	if !m.isOperator(ev.UserID) {
		m.deny(ctx, ev, ev.Payload)
		return m.say(ctx, ev.UserID, MsgAdminOnlyCommand)
	}
	switch ev.Payload {
	case CommandStats:
		n, err := m.store.CountOrders(ctx)
		if err != nil {
			return err
		}
		return m.say(ctx, ev.UserID, fmt.Sprintf(MsgStats, n))
	case CommandUsers:
		n, err := m.store.CountUsers(ctx)
		if err != nil {
			return err
		}
		return m.say(ctx, ev.UserID, fmt.Sprintf(MsgUsers, n))
	}
	return m.say(ctx, ev.UserID, MsgAdminHelp)
}
