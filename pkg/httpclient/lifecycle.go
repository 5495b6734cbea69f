package httpclient

import (
	"errors"
	"fmt"
	"sync"
)

// lifecycle tracks process-wide engine setup. Every engine is initialized at
// most once no matter how many clients are built on it concurrently, and
// cleaned up at most once.
type lifecycle struct {
	mu      sync.Mutex
	engines map[Engine]*engineState
	order   []Engine
}

type engineState struct {
	initOnce    sync.Once
	initErr     error
	cleanupOnce sync.Once
}

var errShutDown = errors.New("transport shut down")

var global = &lifecycle{engines: make(map[Engine]*engineState)}

func (l *lifecycle) state(e Engine) *engineState {
	l.mu.Lock()
	defer l.mu.Unlock()

	st, ok := l.engines[e]
	if !ok {
		st = &engineState{}
		l.engines[e] = st
		l.order = append(l.order, e)
	}
	return st
}

// ensure runs e.Init exactly once. Concurrent callers block until the first
// one finishes and all observe the same result.
func (l *lifecycle) ensure(e Engine) error {
	st := l.state(e)
	st.initOnce.Do(func() {
		if err := e.Init(); err != nil {
			st.initErr = fmt.Errorf("engine init: %w", err)
		}
	})
	return st.initErr
}

// shutdown cleans up every engine whose Init succeeded, in reverse order.
// Engines whose Init failed never acquired anything and are left alone.
func (l *lifecycle) shutdown() {
	l.mu.Lock()
	engines := make([]Engine, len(l.order))
	copy(engines, l.order)
	l.mu.Unlock()

	for i := len(engines) - 1; i >= 0; i-- {
		e := engines[i]
		st := l.state(e)
		// Waits for an Init in flight and shuts out one that never started.
		st.initOnce.Do(func() { st.initErr = errShutDown })
		if st.initErr != nil {
			continue
		}
		st.cleanupOnce.Do(e.Cleanup)
	}
}

// Shutdown tears down process-wide transport state. It is terminal: engines
// already in use are never initialized again, so clients built on them
// afterwards are inert.
// Call it once on the way out of the process; later calls do nothing.
func Shutdown() {
	global.shutdown()
}
