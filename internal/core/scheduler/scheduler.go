package scheduler

import (
	"math/rand"
	"sync"
	"time"

	"clickmate/internal/core/model"
)

// Profile multiplier bounds. The multiplier slowly drifts the interval
// bounds so the click rhythm never settles into a fixed, detectable rate.
const (
	multiplierMin = 0.85
	multiplierMax = 1.25
)

// ConfigSource supplies the current clicker configuration. The owner may
// replace it at any time; the scheduler reads it once per decision cycle.
type ConfigSource interface {
	Current() model.ClickerConfig
}

// ActivityMonitor gates clicking on real user input.
type ActivityMonitor interface {
	StartMonitoring(pause time.Duration) error
	StopMonitoring()
	IsActive() bool
	CursorMoved() bool
}

// Emitter performs the synthetic click. Fire-and-forget: there is no
// feedback channel, so the scheduler never retries.
type Emitter interface {
	Click(x, y int)
}

// Pointer reports the current cursor position.
type Pointer interface {
	Position() (x, y int)
}

// FrontmostProbe reports the identifier of the frontmost application.
// ok is false when no frontmost application is resolvable, which counts
// as "restriction not satisfied", not as an error.
type FrontmostProbe interface {
	CurrentAppID() (id string, ok bool)
}

// Config contains runtime options for the Scheduler.
type Config struct {
	RecheckInterval    time.Duration // backoff while user input is live
	AppMismatchBackoff time.Duration // backoff while the wrong app is frontmost
	ProfileLifetime    time.Duration // wall-clock life of one interval profile
	Now                func() time.Time
	Rand               *rand.Rand
}

type profile struct {
	startedAt  time.Time
	multiplier float64
}

// Scheduler owns the click decision loop. Start and Stop are idempotent
// and safe to call concurrently with the loop's own state reads.
type Scheduler struct {
	// transitions serializes Start and Stop so monitor start/stop calls
	// happen in lifecycle order. Never held by the decision loop.
	transitions sync.Mutex

	mu        sync.Mutex
	options   Config
	emitter   Emitter
	pointer   Pointer
	frontmost FrontmostProbe

	running  bool
	closed   bool
	settings ConfigSource
	monitor  ActivityMonitor
	profile  profile
	stopCh   chan struct{}
	done     chan struct{}
	events   []chan Event
}

// New creates a Scheduler bound to the given emitter, pointer probe and
// frontmost application probe.
func New(emitter Emitter, pointer Pointer, frontmost FrontmostProbe, options Config) *Scheduler {
	if options.RecheckInterval <= 0 {
		options.RecheckInterval = 100 * time.Millisecond
	}
	if options.AppMismatchBackoff <= 0 {
		options.AppMismatchBackoff = 500 * time.Millisecond
	}
	if options.ProfileLifetime <= 0 {
		options.ProfileLifetime = 600 * time.Second
	}
	if options.Now == nil {
		options.Now = time.Now
	}
	if options.Rand == nil {
		options.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	return &Scheduler{
		options:   options,
		emitter:   emitter,
		pointer:   pointer,
		frontmost: frontmost,
	}
}

// Subscribe registers a new observer channel. Subscriber channels survive
// start/stop cycles and are closed only by Close.
func (sched *Scheduler) Subscribe(buffer int) <-chan Event {
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan Event, buffer)
	sched.mu.Lock()
	sched.events = append(sched.events, ch)
	sched.mu.Unlock()
	return ch
}

// Start records a fresh profile, begins input monitoring with the
// configured pause duration and launches the decision loop. A no-op when
// already running.
func (sched *Scheduler) Start(settings ConfigSource, monitor ActivityMonitor) {
	if settings == nil || monitor == nil {
		return
	}

	sched.transitions.Lock()
	defer sched.transitions.Unlock()

	sched.mu.Lock()
	if sched.running || sched.closed {
		sched.mu.Unlock()
		return
	}
	sched.running = true
	sched.settings = settings
	sched.monitor = monitor
	now := sched.options.Now()
	sched.profile = profile{startedAt: now, multiplier: sched.randomMultiplierLocked()}
	sched.stopCh = make(chan struct{})
	sched.done = make(chan struct{})
	stopCh, done := sched.stopCh, sched.done
	sched.mu.Unlock()

	pause := settings.Current().Normalize().PauseAfterInput
	if err := monitor.StartMonitoring(pause); err != nil {
		sched.emit(Event{Type: EventMonitorDegraded, Message: err.Error(), At: sched.options.Now()})
	}
	sched.emit(Event{Type: EventStarted, At: sched.options.Now()})

	go sched.run(stopCh, done)
}

// Stop cancels the decision loop, including any pending suspension, and
// stops input monitoring. A no-op when already stopped.
func (sched *Scheduler) Stop() {
	sched.transitions.Lock()
	defer sched.transitions.Unlock()

	sched.mu.Lock()
	if !sched.running {
		sched.mu.Unlock()
		return
	}
	sched.running = false
	close(sched.stopCh)
	monitor := sched.monitor
	sched.settings = nil
	sched.monitor = nil
	sched.mu.Unlock()

	monitor.StopMonitoring()
	sched.emit(Event{Type: EventStopped, At: sched.options.Now()})
}

// IsRunning reports the lifecycle flag for presentation.
func (sched *Scheduler) IsRunning() bool {
	sched.mu.Lock()
	defer sched.mu.Unlock()
	return sched.running
}

// Close stops the scheduler and closes all observer channels.
func (sched *Scheduler) Close() {
	sched.Stop()

	sched.mu.Lock()
	if sched.closed {
		sched.mu.Unlock()
		return
	}
	sched.closed = true
	events := sched.events
	sched.events = nil
	sched.mu.Unlock()

	for _, ch := range events {
		close(ch)
	}
}

// run is the decision loop: suspend for the drawn inter-click delay, pass
// the gates, click at the current cursor position, repeat. Every
// suspension observes the stop channel, so Stop latency is independent of
// the configured interval.
func (sched *Scheduler) run(stopCh, done chan struct{}) {
	defer close(done)

	for {
		delay, ok := sched.nextDelay()
		if !ok {
			return
		}
		if !sched.suspend(stopCh, delay) {
			return
		}
		if !sched.passGates(stopCh) {
			return
		}

		x, y := sched.pointer.Position()
		sched.emitter.Click(x, y)
		sched.emit(Event{Type: EventClick, X: x, Y: y, At: sched.options.Now()})
	}
}

// nextDelay rotates the profile when its lifetime elapsed and draws the
// next inter-click delay from the adjusted bounds. The rotation check and
// the multiplier read share one critical section.
func (sched *Scheduler) nextDelay() (time.Duration, bool) {
	sched.mu.Lock()
	defer sched.mu.Unlock()
	if !sched.running || sched.settings == nil {
		return 0, false
	}

	config := sched.settings.Current().Normalize()
	now := sched.options.Now()
	if now.Sub(sched.profile.startedAt) >= sched.options.ProfileLifetime {
		sched.profile = profile{startedAt: now, multiplier: sched.randomMultiplierLocked()}
		sched.emitLocked(Event{Type: EventProfileRotated, At: now})
	}

	adjustedMin := float64(config.MinInterval) * sched.profile.multiplier
	adjustedMax := float64(config.MaxInterval) * sched.profile.multiplier
	delay := adjustedMin + sched.options.Rand.Float64()*(adjustedMax-adjustedMin)
	return time.Duration(delay), true
}

// passGates blocks until every gating condition passes, backing off
// between re-checks. It returns false once the loop must exit.
func (sched *Scheduler) passGates(stopCh chan struct{}) bool {
	for {
		sched.mu.Lock()
		if !sched.running || sched.settings == nil || sched.monitor == nil {
			sched.mu.Unlock()
			return false
		}
		config := sched.settings.Current().Normalize()
		monitor := sched.monitor
		sched.mu.Unlock()

		if monitor.IsActive() {
			if !sched.suspend(stopCh, sched.options.RecheckInterval) {
				return false
			}
			continue
		}
		if monitor.CursorMoved() {
			if !sched.suspend(stopCh, sched.options.RecheckInterval) {
				return false
			}
			continue
		}
		if config.RestrictToApp && config.AllowedAppID != "" {
			id, ok := sched.frontmost.CurrentAppID()
			if !ok || id != config.AllowedAppID {
				if !sched.suspend(stopCh, sched.options.AppMismatchBackoff) {
					return false
				}
				continue
			}
		}
		return true
	}
}

// suspend sleeps for the given delay unless the stop channel closes first.
func (sched *Scheduler) suspend(stopCh chan struct{}, delay time.Duration) bool {
	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-stopCh:
		return false
	case <-timer.C:
		return true
	}
}

func (sched *Scheduler) randomMultiplierLocked() float64 {
	return multiplierMin + sched.options.Rand.Float64()*(multiplierMax-multiplierMin)
}

func (sched *Scheduler) emit(event Event) {
	sched.mu.Lock()
	defer sched.mu.Unlock()
	sched.emitLocked(event)
}

func (sched *Scheduler) emitLocked(event Event) {
	for _, ch := range sched.events {
		select {
		case ch <- event:
		default:
		}
	}
}
