// Package keyboard lays out inline keyboards.
package keyboard

import (
	"unicode/utf8"

	tele "gopkg.in/telebot.v4"
)

// Button is one inline button. Unique routes the press; Data travels with it.
type Button struct {
	Text   string
	Unique string
	Data   string
}

// Grid places buttons perRow to a row. With maxRunes > 0 a button whose
// label is longer than maxRunes gets a row of its own, so long route names
// are never truncated by the client.
func Grid(buttons []Button, perRow, maxRunes int) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	for _, row := range Rows(buttons, perRow, maxRunes) {
		line := make([]tele.InlineButton, 0, len(row))
		for _, b := range row {
			line = append(line, *markup.Data(b.Text, b.Unique, b.Data).Inline())
		}
		markup.InlineKeyboard = append(markup.InlineKeyboard, line)
	}
	return markup
}

// Rows groups buttons the way Grid does without building the markup.
func Rows(buttons []Button, perRow, maxRunes int) [][]Button {
	perRow = max(perRow, 1)
	var rows [][]Button
	open := false
	for _, b := range buttons {
		wide := maxRunes > 0 && utf8.RuneCountInString(b.Text) > maxRunes
		if wide || !open || len(rows[len(rows)-1]) == perRow {
			rows = append(rows, nil)
		}
		rows[len(rows)-1] = append(rows[len(rows)-1], b)
		open = !wide
	}
	return rows
}
