package session

import "reflect"

// EventSessionChanged fires on every provider-session mutation. The
// payload is the new *ProviderSession, or nil when the session was
// cleared.
const EventSessionChanged = "sessionChanged"

// Listener receives event payloads. A panicking listener is recovered
// and logged; it never aborts the emitting call or starves later
// listeners.
type Listener func(payload any)

type listenerEntry struct {
	fn   Listener
	ptr  uintptr
	once bool
}

type listenerRegistry map[string][]listenerEntry

// On registers a listener for event.
func (m *Manager) On(event string, fn Listener) {
	if fn == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.addListener(event, fn, false)
}

// Once registers a listener that is removed after its first delivery.
func (m *Manager) Once(event string, fn Listener) {
	if fn == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.addListener(event, fn, true)
}

// Off removes every registration of fn for event.
func (m *Manager) Off(event string, fn Listener) {
	if fn == nil {
		return
	}
	ptr := reflect.ValueOf(fn).Pointer()

	m.mu.Lock()
	defer m.mu.Unlock()

	entries := m.listeners[event]
	kept := entries[:0]
	for _, entry := range entries {
		if entry.ptr != ptr {
			kept = append(kept, entry)
		}
	}
	if len(kept) == 0 {
		delete(m.listeners, event)
		return
	}
	m.listeners[event] = kept
}

func (m *Manager) addListener(event string, fn Listener, once bool) {
	if m.listeners == nil {
		m.listeners = make(listenerRegistry)
	}
	m.listeners[event] = append(m.listeners[event], listenerEntry{
		fn:   fn,
		ptr:  reflect.ValueOf(fn).Pointer(),
		once: once,
	})
}

// emit delivers payload to every listener for event. Callers must NOT
// hold m.mu.
func (m *Manager) emit(event string, payload any) {
	m.mu.Lock()
	entries := m.listeners[event]
	if len(entries) == 0 {
		m.mu.Unlock()
		return
	}

	fns := make([]Listener, len(entries))
	for i, entry := range entries {
		fns[i] = entry.fn
	}

	kept := entries[:0]
	for _, entry := range entries {
		if !entry.once {
			kept = append(kept, entry)
		}
	}
	if len(kept) == 0 {
		delete(m.listeners, event)
	} else {
		m.listeners[event] = kept
	}
	m.mu.Unlock()

	for _, fn := range fns {
		m.deliver(event, fn, payload)
	}
}

func (m *Manager) deliver(event string, fn Listener, payload any) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Warn().Str("event", event).Any("panic", r).Msg("session listener panicked")
		}
	}()
	fn(payload)
}
