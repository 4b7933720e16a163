package callbacks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	tele "gopkg.in/telebot.v4"
)

func TestParse(t *testing.T) {
	cases := []struct {
		name    string
		cb      *tele.Callback
		unique  string
		payload string
	}{
		{"generic handler", &tele.Callback{Data: "\fopt|Xorazmdan Buxoroga"}, "opt", "Xorazmdan Buxoroga"},
		{"payload with separator", &tele.Callback{Data: "\fopt|a|b"}, "opt", "a|b"},
		{"no payload", &tele.Callback{Data: "\fopt"}, "opt", ""},
		{"matched handler", &tele.Callback{Unique: "opt", Data: "confirm"}, "opt", "confirm"},
		{"nil", nil, "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			unique, payload := Parse(tc.cb)
			assert.Equal(t, tc.unique, unique)
			assert.Equal(t, tc.payload, payload)
		})
	}
}
