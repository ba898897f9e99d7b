package util

import "sync"

// SignalHandler receives the sender plus any extra parameters the emitter
// attached to the signal.
type SignalHandler func(sender any, params ...any)

type signalHub struct {
	mu       sync.RWMutex
	handlers map[string][]SignalHandler
}

var (
	sigOnce sync.Once
	sigHub  *signalHub
)

// Sig returns the process-wide signal hub.
func Sig() *signalHub {
	sigOnce.Do(func() {
		sigHub = &signalHub{handlers: make(map[string][]SignalHandler)}
	})
	return sigHub
}

func (h *signalHub) Connect(name string, fn SignalHandler) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handlers[name] = append(h.handlers[name], fn)
}

func (h *signalHub) Emit(name string, sender any, params ...any) {
	h.mu.RLock()
	fns := make([]SignalHandler, len(h.handlers[name]))
	copy(fns, h.handlers[name])
	h.mu.RUnlock()
	for _, fn := range fns {
		fn(sender, params...)
	}
}

// Reset drops all registered handlers. Test helper.
func (h *signalHub) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handlers = make(map[string][]SignalHandler)
}
