package events

import (
	"fmt"
	"sync"

	console "losadmin/internal/utils/logger"
)

var log = console.New("EVENTS")

// Event names shared by the session controller, the route guard and the resource clients.
const (
	SessionLoggedIn  = "session.logged_in"
	SessionLoggedOut = "session.logged_out"
	ResourceChanged  = "resource.changed"
)

type EventHandler func(interface{})

// EventBus delivers events to handlers synchronously, in registration order.
type EventBus struct {
	handlers map[string][]EventHandler
	mu       sync.RWMutex
}

func NewEventBus() *EventBus {
	return &EventBus{
		handlers: make(map[string][]EventHandler),
	}
}

// On registers a handler for an event
func (bus *EventBus) On(event string, handler EventHandler) {
	bus.mu.Lock()
	defer bus.mu.Unlock()

	bus.handlers[event] = append(bus.handlers[event], handler)
	log.Debug("Registered handler for event: %s", event)
}

// Emit triggers an event with the given data. A panicking handler is logged
// and does not stop the remaining handlers.
func (bus *EventBus) Emit(event string, data interface{}) {
	if bus == nil {
		return
	}
	bus.mu.RLock()
	handlers := append([]EventHandler(nil), bus.handlers[event]...)
	bus.mu.RUnlock()

	if len(handlers) == 0 {
		return
	}

	log.Debug("Emitting event: %s", event)

	for _, handler := range handlers {
		bus.dispatch(handler, data)
	}
}

func (bus *EventBus) dispatch(h EventHandler, data interface{}) {
	defer func() {
		if r := recover(); r != nil {
			_ = log.Error("Panic in event handler", fmt.Errorf("panic: %v", r))
		}
	}()
	h(data)
}

// LoggedOut is the payload of SessionLoggedOut.
type LoggedOut struct {
	Reason   string
	Redirect string
}

// Changed is the payload of ResourceChanged.
type Changed struct {
	Resource string
	ID       string
	Op       string
}
