package entity

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

const (
	logMsgListenerFailed  = "event listener failed"
	logMsgEventDispatched = "event dispatched"
	logAttrEventName      = "event_name"
	logAttrListenerCount  = "listener_count"
	logAttrError          = "error"
)

// NestedEvent is an event that may carry further events, e.g. a loaded event carrying
// the loaded events of its eagerly hydrated associations.
type NestedEvent interface {
	Name() string
	Context() ShopContext
	Events() NestedEvents
}

// NestedEvents is a list of nested events.
type NestedEvents []NestedEvent

// Flatten returns the events and all their nested events, depth-first, parents before children.
func (e NestedEvents) Flatten() NestedEvents {
	flat := make(NestedEvents, 0, len(e))
	for _, event := range e {
		if event == nil {
			continue
		}

		flat = append(flat, event)
		flat = append(flat, event.Events().Flatten()...)
	}

	return flat
}

// Names returns the event names in order.
func (e NestedEvents) Names() []string {
	names := make([]string, 0, len(e))
	for _, event := range e {
		names = append(names, event.Name())
	}

	return names
}

// Listener reacts to a dispatched event.
type Listener func(ctx context.Context, event NestedEvent) error

// EventDispatcher delivers events to listeners.
type EventDispatcher interface {
	Dispatch(ctx context.Context, event NestedEvent) error
}

// Dispatcher is a synchronous, in-process EventDispatcher. It is safe for concurrent use.
type Dispatcher struct {
	mu        sync.RWMutex
	listeners map[string][]Listener
	wildcard  []Listener
	logger    Logger
}

// DispatcherOption defines a functional option for configuring a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithDispatcherLogger sets the logger which receives listener failures.
func WithDispatcherLogger(logger Logger) DispatcherOption {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

// NewDispatcher creates an empty Dispatcher.
func NewDispatcher(options ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{listeners: make(map[string][]Listener)}
	for _, option := range options {
		option(d)
	}

	return d
}

// Subscribe registers a listener for the given event name.
func (d *Dispatcher) Subscribe(eventName string, listener Listener) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.listeners[eventName] = append(d.listeners[eventName], listener)
}

// SubscribeAll registers a listener for every event.
func (d *Dispatcher) SubscribeAll(listener Listener) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.wildcard = append(d.wildcard, listener)
}

// Dispatch delivers the event and, depth-first, all of its nested events.
// All listeners are called even if some fail; their errors are joined.
func (d *Dispatcher) Dispatch(ctx context.Context, event NestedEvent) error {
	if event == nil {
		return nil
	}

	var errs []error

	for _, e := range (NestedEvents{event}).Flatten() {
		listeners := d.listenersFor(e.Name())

		for _, listener := range listeners {
			if err := listener(ctx, e); err != nil {
				if d.logger != nil {
					d.logger.Error(logMsgListenerFailed, logAttrEventName, e.Name(), logAttrError, err.Error())
				}

				errs = append(errs, fmt.Errorf("%s: %w", e.Name(), err))
			}
		}

		if d.logger != nil {
			d.logger.Debug(logMsgEventDispatched, logAttrEventName, e.Name(), logAttrListenerCount, len(listeners))
		}
	}

	return errors.Join(errs...)
}

func (d *Dispatcher) listenersFor(eventName string) []Listener {
	d.mu.RLock()
	defer d.mu.RUnlock()

	listeners := make([]Listener, 0, len(d.listeners[eventName])+len(d.wildcard))
	listeners = append(listeners, d.listeners[eventName]...)
	listeners = append(listeners, d.wildcard...)

	return listeners
}
