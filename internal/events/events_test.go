package events

import (
	"testing"

	"losadmin/internal/utils/logger"
)

func init() {
	logger.SetLevel(logger.LevelSilent)
}

func TestEmitRunsHandlersInOrder(t *testing.T) {
	bus := NewEventBus()
	var got []int
	bus.On(ResourceChanged, func(interface{}) { got = append(got, 1) })
	bus.On(ResourceChanged, func(interface{}) { got = append(got, 2) })

	bus.Emit(ResourceChanged, Changed{Resource: "tenants"})

	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Fatalf("handlers ran as %v, want [1 2]", got)
	}
}

func TestEmitSurvivesPanickingHandler(t *testing.T) {
	bus := NewEventBus()
	called := false
	bus.On(SessionLoggedOut, func(interface{}) { panic("boom") })
	bus.On(SessionLoggedOut, func(data interface{}) {
		if lo, ok := data.(LoggedOut); ok && lo.Redirect == "/" {
			called = true
		}
	})

	bus.Emit(SessionLoggedOut, LoggedOut{Reason: "test", Redirect: "/"})

	if !called {
		t.Fatalf("second handler was not called after a panic in the first")
	}
}

func TestEmitOnNilBusIsNoop(t *testing.T) {
	var bus *EventBus
	bus.Emit(SessionLoggedIn, nil)
}
