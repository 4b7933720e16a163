// Package commands describes slash commands independent of how they are routed.
package commands

import (
	tele "gopkg.in/telebot.v4"
)

// Scope decides which command menu lists a command. Every scope is
// routable; the handler itself decides who may run it.
type Scope int

const (
	// ScopePublic commands appear in every user's menu.
	ScopePublic Scope = iota
	// ScopeOperator commands appear only in the operator's chat menu.
	ScopeOperator
	// ScopeHidden commands appear in no menu.
	ScopeHidden
)

// Command is a slash command with its handler and menu entry.
type Command struct {
	Handler     tele.HandlerFunc
	Description string
	Scope       Scope
	Aliases     []string
}

// InMenu reports whether c is listed in the public menu, or in the
// operator menu when operator is set.
func (c Command) InMenu(operator bool) bool {
	switch c.Scope {
	case ScopePublic:
		return true
	case ScopeOperator:
		return operator
	}
	return false
}
