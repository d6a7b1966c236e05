package layerswitch

import "sync"

// Events is the unbounded queue of layer names shared between the kanata
// reader and the sync loop. Publish never blocks.
type Events struct {
	mu      sync.Mutex
	pending []string
	ready   chan struct{}
}

func NewEvents() *Events {
	return &Events{ready: make(chan struct{}, 1)}
}

func (e *Events) Publish(layer string) {
	e.mu.Lock()
	e.pending = append(e.pending, layer)
	e.mu.Unlock()

	select {
	case e.ready <- struct{}{}:
	default:
	}
}

// Drain empties the queue and returns the most recently published layer.
func (e *Events) Drain() (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(e.pending) == 0 {
		return "", false
	}

	latest := e.pending[len(e.pending)-1]
	e.pending = e.pending[:0]
	return latest, true
}

// Ready is signalled after a Publish. It may fire once more than there are
// queued layers, so receivers must still Drain.
func (e *Events) Ready() <-chan struct{} {
	return e.ready
}
