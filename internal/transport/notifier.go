package transport

import (
	"context"

	"github.com/m3rciful/tripbot/internal/flow"

	tele "gopkg.in/telebot.v4"
)

// Queue runs outbound calls in the background. *sender.Dispatcher
// implements it.
type Queue interface {
	Enqueue(ctx context.Context, action, endpoint string, run func(ctx context.Context) error) error
}

// Notifier delivers order notifications to the operator chat.
type Notifier struct {
	api      API
	queue    Queue
	operator int64
}

var _ flow.Notifier = (*Notifier)(nil)

// NewNotifier sends through queue when it is not nil, otherwise inline.
func NewNotifier(api API, queue Queue, operatorID int64) *Notifier {
	return &Notifier{api: api, queue: queue, operator: operatorID}
}

// NotifyOperator hands text over for delivery. With a queue the returned
// error only covers the hand-over; the sender logs delivery failures.
func (n *Notifier) NotifyOperator(ctx context.Context, text string) error {
	send := func(context.Context) error {
		_, err := n.api.Send(tele.ChatID(n.operator), text)
		return err
	}
	if n.queue == nil {
		return send(ctx)
	}
	return n.queue.Enqueue(ctx, "notify.operator", "sendMessage", send)
}
