package activity

import (
	"errors"
	"log"
	"sync"
	"time"
)

// ErrObservationUnsupported indicates system-wide input observation is not
// available in this environment.
var ErrObservationUnsupported = errors.New("input observation unsupported")

// Kind classifies a qualifying input signal.
type Kind uint8

const (
	KindPointerMove Kind = iota + 1
	KindPointerButton
	KindKeyboard
	KindScroll
)

// Signal is one observed input event.
type Signal struct {
	Kind Kind
	X    int
	Y    int
	At   time.Time
}

// Source delivers system-wide input signals over a bounded channel. Open
// returns an error when the environment denies observation; the monitor
// then degrades instead of crashing.
type Source interface {
	Open() (<-chan Signal, error)
	Close()
}

// Pointer reports the current cursor position.
type Pointer interface {
	Position() (x, y int)
}

// Monitor tracks whether the real user is active and whether the cursor
// moved since the last probe. Signal handling mutates its state; the
// scheduler loop reads it.
type Monitor struct {
	mu         sync.Mutex
	source     Source
	pointer    Pointer
	pause      time.Duration
	monitoring bool
	degraded   bool
	active     bool
	decay      *time.Timer
	decayGen   uint64
	lastX      int
	lastY      int
	sampled    bool
	done       chan struct{}
}

// NewMonitor creates a Monitor backed by the given signal source and
// pointer probe.
func NewMonitor(source Source, pointer Pointer) *Monitor {
	return &Monitor{source: source, pointer: pointer}
}

// StartMonitoring begins observing input signals, flagging activity for
// pause after each qualifying event. Any prior observation is stopped
// first. On failure the monitor degrades: it reports the error once and
// behaves as permanently inactive.
func (monitor *Monitor) StartMonitoring(pause time.Duration) error {
	monitor.StopMonitoring()

	if pause <= 0 {
		pause = 2 * time.Second
	}

	x, y := monitor.pointer.Position()

	monitor.mu.Lock()
	monitor.pause = pause
	monitor.monitoring = true
	monitor.lastX, monitor.lastY = x, y
	monitor.sampled = true
	done := make(chan struct{})
	monitor.done = done
	monitor.mu.Unlock()

	signals, err := monitor.source.Open()
	if err != nil {
		monitor.mu.Lock()
		monitor.degraded = true
		monitor.mu.Unlock()
		log.Printf("activity monitor: %v; clicking will not pause on external input", err)
		return err
	}

	go monitor.consume(signals, done)
	return nil
}

// StopMonitoring releases the signal source, cancels the pending decay
// timer and resets the activity flag. A no-op when not monitoring.
func (monitor *Monitor) StopMonitoring() {
	monitor.mu.Lock()
	if !monitor.monitoring {
		monitor.mu.Unlock()
		return
	}
	monitor.monitoring = false
	monitor.active = false
	monitor.degraded = false
	monitor.decayGen++
	if monitor.decay != nil {
		monitor.decay.Stop()
		monitor.decay = nil
	}
	done := monitor.done
	monitor.done = nil
	monitor.mu.Unlock()

	if done != nil {
		close(done)
	}
	monitor.source.Close()
}

// IsActive reports whether qualifying input occurred within the pause
// window.
func (monitor *Monitor) IsActive() bool {
	monitor.mu.Lock()
	defer monitor.mu.Unlock()
	return monitor.active
}

// Degraded reports whether the monitor fell back to running without
// system-wide observation.
func (monitor *Monitor) Degraded() bool {
	monitor.mu.Lock()
	defer monitor.mu.Unlock()
	return monitor.degraded
}

// CursorMoved compares the current pointer position against the last
// sample and updates it. True is reported once per genuine change.
func (monitor *Monitor) CursorMoved() bool {
	x, y := monitor.pointer.Position()

	monitor.mu.Lock()
	defer monitor.mu.Unlock()
	if monitor.sampled && x == monitor.lastX && y == monitor.lastY {
		return false
	}
	monitor.lastX, monitor.lastY = x, y
	monitor.sampled = true
	return true
}

func (monitor *Monitor) consume(signals <-chan Signal, done chan struct{}) {
	for {
		select {
		case <-done:
			return
		case signal, ok := <-signals:
			if !ok {
				return
			}
			monitor.handleSignal(signal)
		}
	}
}

func (monitor *Monitor) handleSignal(signal Signal) {
	monitor.mu.Lock()
	defer monitor.mu.Unlock()
	if !monitor.monitoring {
		return
	}

	if signal.Kind == KindPointerMove {
		// Motion is position-filtered: synthetic clicks land on the
		// already-sampled coordinate and must not flag activity.
		if signal.X == monitor.lastX && signal.Y == monitor.lastY {
			return
		}
		monitor.lastX, monitor.lastY = signal.X, signal.Y
	}

	monitor.flagActiveLocked()
}

// flagActiveLocked sets the activity flag and re-arms the single decay
// timer. The generation counter keeps a stale timer from clearing a newer
// window.
func (monitor *Monitor) flagActiveLocked() {
	monitor.active = true
	monitor.decayGen++
	generation := monitor.decayGen

	if monitor.decay != nil {
		monitor.decay.Stop()
	}
	monitor.decay = time.AfterFunc(monitor.pause, func() {
		monitor.mu.Lock()
		if monitor.decayGen == generation {
			monitor.active = false
		}
		monitor.mu.Unlock()
	})
}
