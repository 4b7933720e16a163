package flow_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/m3rciful/tripbot/internal/flow"
	"github.com/m3rciful/tripbot/internal/storage"
)

func TestTransitionsLookupFromAnotherPackage(t *testing.T) {
	m := flow.NewMachine(flow.Options{Store: storage.NewMemoryStore()})
	tr := m.Transitions()

	assert.Equal(t, []flow.State{flow.StateAwaitingPhone},
		tr[flow.Transition{State: flow.StateAwaitingDate, Kind: flow.EventText}])
	assert.Equal(t, []flow.State{flow.StateIdle},
		tr[flow.Transition{State: flow.StateAwaitingConfirm, Kind: flow.EventOption}])

	_, ok := tr[flow.Transition{State: flow.StateAwaitingDate, Kind: flow.EventOption}]
	assert.False(t, ok)
}
