package flow

import (
	"fmt"
	"strings"

	"github.com/m3rciful/tripbot/internal/storage"
)

// TripTypeLabel returns the button label of a trip type value.
func TripTypeLabel(v string) string {
	switch v {
	case TripPerson:
		return LabelPerson
	case TripCargo:
		return LabelCargo
	}
	return v
}

func writeOrderLines(b *strings.Builder, d Draft) {
	fmt.Fprintf(b, "📍 Yo‘nalish: %s\n", d.Direction)
	fmt.Fprintf(b, "📅 Sana: %s\n", d.Date)
	fmt.Fprintf(b, "📞 Telefon: %s\n", d.Phone)
	fmt.Fprintf(b, "📦 Turi: %s\n", TripTypeLabel(d.TripType))
	fmt.Fprintf(b, "🚗 Mashina: %s\n", d.Car)
	fmt.Fprintf(b, "📍 Manzil: %s\n", d.Address)
	fmt.Fprintf(b, "📝 Izoh: %s", d.Comment)
}

// RenderSummary is the text shown to the user with the confirm buttons.
func RenderSummary(d Draft) string {
	var b strings.Builder
	b.WriteString("🚕 Yangi buyurtma:\n")
	writeOrderLines(&b, d)
	b.WriteString("\n\n")
	b.WriteString(MsgAskConfirm)
	return b.String()
}

// RenderNotification is the text delivered to the operator for a committed order.
func RenderNotification(o storage.Order, displayName string) string {
	var b strings.Builder
	b.WriteString("🚕 Yangi buyurtma:\n")
	writeOrderLines(&b, draftOf(o))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "👤 Mijoz: %s (id %d)\n", displayName, o.UserID)
	fmt.Fprintf(&b, "🆔 #%d · %s\n", o.ID, o.Ref)
	fmt.Fprintf(&b, "🕒 %s", o.CreatedAt.UTC().Format("2006-01-02 15:04 MST"))
	return b.String()
}

// RenderOrderLine is a one-line listing used by the command line tool.
func RenderOrderLine(o storage.Order) string {
	return fmt.Sprintf("#%d %s %s | %s | %s | %s | %s | %s | %s",
		o.ID, o.CreatedAt.UTC().Format("2006-01-02 15:04"), o.Ref,
		o.Direction, o.Date, o.Phone, TripTypeLabel(o.TripType), o.Car, o.Address)
}

func draftOf(o storage.Order) Draft {
	return Draft{
		Direction: o.Direction,
		Date:      o.Date,
		Phone:     o.Phone,
		TripType:  o.TripType,
		Car:       o.Car,
		Address:   o.Address,
		Comment:   o.Comment,
	}
}
