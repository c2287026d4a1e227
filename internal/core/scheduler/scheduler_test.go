package scheduler

import (
	"errors"
	"math/rand"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"clickmate/internal/core/model"
)

type stubConfigSource struct {
	mu     sync.Mutex
	config model.ClickerConfig
}

func (source *stubConfigSource) Current() model.ClickerConfig {
	source.mu.Lock()
	defer source.mu.Unlock()
	return source.config
}

type stubMonitor struct {
	mu         sync.Mutex
	active     bool
	moved      bool
	monitoring bool
	starts     int
	stops      int
	pause      time.Duration
	startErr   error
}

func (monitor *stubMonitor) StartMonitoring(pause time.Duration) error {
	monitor.mu.Lock()
	defer monitor.mu.Unlock()
	monitor.starts++
	monitor.pause = pause
	if monitor.startErr != nil {
		return monitor.startErr
	}
	monitor.monitoring = true
	return nil
}

func (monitor *stubMonitor) StopMonitoring() {
	monitor.mu.Lock()
	defer monitor.mu.Unlock()
	monitor.stops++
	monitor.monitoring = false
}

func (monitor *stubMonitor) IsActive() bool {
	monitor.mu.Lock()
	defer monitor.mu.Unlock()
	return monitor.active
}

func (monitor *stubMonitor) CursorMoved() bool {
	monitor.mu.Lock()
	defer monitor.mu.Unlock()
	return monitor.moved
}

func (monitor *stubMonitor) setActive(active bool) {
	monitor.mu.Lock()
	monitor.active = active
	monitor.mu.Unlock()
}

func (monitor *stubMonitor) setMoved(moved bool) {
	monitor.mu.Lock()
	monitor.moved = moved
	monitor.mu.Unlock()
}

// blockingMonitor parks StartMonitoring until released, exposing the
// window between the lifecycle transition and the monitor call.
type blockingMonitor struct {
	stubMonitor
	entered chan struct{}
	release chan struct{}
}

func (monitor *blockingMonitor) StartMonitoring(pause time.Duration) error {
	close(monitor.entered)
	<-monitor.release
	return monitor.stubMonitor.StartMonitoring(pause)
}

type countingEmitter struct {
	clicks atomic.Int64
}

func (emitter *countingEmitter) Click(x, y int) {
	emitter.clicks.Add(1)
}

type stubPointer struct {
	x, y int
}

func (pointer *stubPointer) Position() (int, int) {
	return pointer.x, pointer.y
}

type stubProbe struct {
	mu sync.Mutex
	id string
	ok bool
}

func (probe *stubProbe) CurrentAppID() (string, bool) {
	probe.mu.Lock()
	defer probe.mu.Unlock()
	return probe.id, probe.ok
}

func (probe *stubProbe) set(id string, ok bool) {
	probe.mu.Lock()
	probe.id = id
	probe.ok = ok
	probe.mu.Unlock()
}

func waitFor(t *testing.T, timeout time.Duration, condition func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return true
		}
		time.Sleep(2 * time.Millisecond)
	}
	return condition()
}

func fastOptions() Config {
	return Config{
		RecheckInterval:    2 * time.Millisecond,
		AppMismatchBackoff: 2 * time.Millisecond,
		Rand:               rand.New(rand.NewSource(1)),
	}
}

func fastConfig() model.ClickerConfig {
	return model.ClickerConfig{
		MinInterval:     time.Millisecond,
		MaxInterval:     time.Millisecond,
		PauseAfterInput: time.Second,
	}
}

func TestDelayWithinAdjustedBounds(t *testing.T) {
	fixed := time.Unix(1000, 0)
	sched := New(&countingEmitter{}, &stubPointer{}, &stubProbe{}, Config{
		Now:  func() time.Time { return fixed },
		Rand: rand.New(rand.NewSource(42)),
	})
	source := &stubConfigSource{config: model.ClickerConfig{
		MinInterval:     200 * time.Millisecond,
		MaxInterval:     700 * time.Millisecond,
		PauseAfterInput: time.Second,
	}}

	sched.mu.Lock()
	sched.running = true
	sched.settings = source
	sched.profile = profile{startedAt: fixed, multiplier: 1.1}
	sched.mu.Unlock()

	multiplier := 1.1
	lower := time.Duration(float64(200*time.Millisecond) * multiplier)
	upper := time.Duration(float64(700*time.Millisecond) * multiplier)
	for i := 0; i < 1000; i++ {
		delay, ok := sched.nextDelay()
		require.True(t, ok)
		require.GreaterOrEqual(t, delay, lower)
		require.LessOrEqual(t, delay, upper)
	}
}

func TestDelayClampsInvertedBounds(t *testing.T) {
	fixed := time.Unix(1000, 0)
	sched := New(&countingEmitter{}, &stubPointer{}, &stubProbe{}, Config{
		Now: func() time.Time { return fixed },
	})
	source := &stubConfigSource{config: model.ClickerConfig{
		MinInterval:     500 * time.Millisecond,
		MaxInterval:     100 * time.Millisecond,
		PauseAfterInput: time.Second,
	}}

	sched.mu.Lock()
	sched.running = true
	sched.settings = source
	sched.profile = profile{startedAt: fixed, multiplier: 1.0}
	sched.mu.Unlock()

	for i := 0; i < 100; i++ {
		delay, ok := sched.nextDelay()
		require.True(t, ok)
		require.Equal(t, 500*time.Millisecond, delay)
	}
}

func TestProfileRotatesOncePerLifetime(t *testing.T) {
	current := time.Unix(0, 0)
	sched := New(&countingEmitter{}, &stubPointer{}, &stubProbe{}, Config{
		Now: func() time.Time { return current },
	})
	source := &stubConfigSource{config: fastConfig()}

	sched.mu.Lock()
	sched.running = true
	sched.settings = source
	sched.profile = profile{startedAt: current, multiplier: 1.0}
	sched.mu.Unlock()

	startedAt := func() time.Time {
		sched.mu.Lock()
		defer sched.mu.Unlock()
		return sched.profile.startedAt
	}

	// Rapid draws inside one window never rotate, whether they come
	// every 10ms or every 5 minutes.
	for _, step := range []time.Duration{10 * time.Millisecond, 5 * time.Minute} {
		origin := startedAt()
		for current.Sub(origin)+step < 600*time.Second {
			current = current.Add(step)
			_, ok := sched.nextDelay()
			require.True(t, ok)
			require.Equal(t, origin, startedAt())
		}

		// Crossing the boundary rotates exactly once.
		current = origin.Add(600 * time.Second)
		_, ok := sched.nextDelay()
		require.True(t, ok)
		require.Equal(t, current, startedAt())
	}
}

func TestActivityGateSuppressesClicks(t *testing.T) {
	emitter := &countingEmitter{}
	monitor := &stubMonitor{active: true}
	sched := New(emitter, &stubPointer{x: 10, y: 20}, &stubProbe{}, fastOptions())
	source := &stubConfigSource{config: fastConfig()}

	sched.Start(source, monitor)
	defer sched.Stop()

	time.Sleep(60 * time.Millisecond)
	require.Zero(t, emitter.clicks.Load())

	monitor.setActive(false)
	require.True(t, waitFor(t, time.Second, func() bool {
		return emitter.clicks.Load() > 0
	}))
}

func TestCursorMotionGateSuppressesClicks(t *testing.T) {
	emitter := &countingEmitter{}
	monitor := &stubMonitor{moved: true}
	sched := New(emitter, &stubPointer{}, &stubProbe{}, fastOptions())
	source := &stubConfigSource{config: fastConfig()}

	sched.Start(source, monitor)
	defer sched.Stop()

	time.Sleep(60 * time.Millisecond)
	require.Zero(t, emitter.clicks.Load())

	monitor.setMoved(false)
	require.True(t, waitFor(t, time.Second, func() bool {
		return emitter.clicks.Load() > 0
	}))
}

func TestAppRestrictionGatesClicks(t *testing.T) {
	emitter := &countingEmitter{}
	monitor := &stubMonitor{}
	probe := &stubProbe{}
	sched := New(emitter, &stubPointer{}, probe, fastOptions())

	config := fastConfig()
	config.RestrictToApp = true
	config.AllowedAppID = "com.example.app"
	source := &stubConfigSource{config: config}

	sched.Start(source, monitor)
	defer sched.Stop()

	// No frontmost app resolvable: restriction not satisfied.
	time.Sleep(40 * time.Millisecond)
	require.Zero(t, emitter.clicks.Load())

	probe.set("com.example.other", true)
	time.Sleep(40 * time.Millisecond)
	require.Zero(t, emitter.clicks.Load())

	probe.set("com.example.app", true)
	require.True(t, waitFor(t, time.Second, func() bool {
		return emitter.clicks.Load() > 0
	}))
}

func TestStopImmediatelyAfterStart(t *testing.T) {
	emitter := &countingEmitter{}
	monitor := &stubMonitor{}
	sched := New(emitter, &stubPointer{}, &stubProbe{}, Config{})

	config := fastConfig()
	config.MinInterval = 100000 * time.Millisecond
	config.MaxInterval = 100000 * time.Millisecond
	source := &stubConfigSource{config: config}

	sched.Start(source, monitor)

	sched.mu.Lock()
	done := sched.done
	sched.mu.Unlock()

	sched.Stop()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("loop did not exit after Stop")
	}
	require.Zero(t, emitter.clicks.Load())
	require.False(t, sched.IsRunning())
}

func TestStopDuringMonitorStartupStopsMonitor(t *testing.T) {
	monitor := &blockingMonitor{
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	sched := New(&countingEmitter{}, &stubPointer{}, &stubProbe{}, Config{})

	config := fastConfig()
	config.MinInterval = time.Minute
	config.MaxInterval = time.Minute
	source := &stubConfigSource{config: config}

	events := sched.Subscribe(8)

	started := make(chan struct{})
	go func() {
		sched.Start(source, monitor)
		close(started)
	}()
	<-monitor.entered

	stopped := make(chan struct{})
	go func() {
		sched.Stop()
		close(stopped)
	}()

	close(monitor.release)
	<-started
	<-stopped

	require.False(t, sched.IsRunning())

	monitor.mu.Lock()
	require.False(t, monitor.monitoring)
	require.Equal(t, 1, monitor.starts)
	require.Equal(t, 1, monitor.stops)
	monitor.mu.Unlock()

	// The last lifecycle event observers see is the stop.
	var last EventType
	for drained := false; !drained; {
		select {
		case event := <-events:
			if event.Type == EventStarted || event.Type == EventStopped {
				last = event.Type
			}
		default:
			drained = true
		}
	}
	require.Equal(t, EventStopped, last)
}

func TestStartIsIdempotent(t *testing.T) {
	monitor := &stubMonitor{}
	sched := New(&countingEmitter{}, &stubPointer{}, &stubProbe{}, Config{})

	config := fastConfig()
	config.MinInterval = time.Minute
	config.MaxInterval = time.Minute
	source := &stubConfigSource{config: config}

	sched.Start(source, monitor)
	defer sched.Stop()

	sched.mu.Lock()
	firstProfile := sched.profile
	firstDone := sched.done
	sched.mu.Unlock()

	sched.Start(source, monitor)

	sched.mu.Lock()
	require.Equal(t, firstProfile, sched.profile)
	require.Equal(t, firstDone, sched.done)
	sched.mu.Unlock()

	monitor.mu.Lock()
	require.Equal(t, 1, monitor.starts)
	monitor.mu.Unlock()
}

func TestStopIsIdempotent(t *testing.T) {
	monitor := &stubMonitor{}
	sched := New(&countingEmitter{}, &stubPointer{}, &stubProbe{}, Config{})
	source := &stubConfigSource{config: fastConfig()}

	sched.Stop() // stopped scheduler: no-op

	sched.Start(source, monitor)
	sched.Stop()
	sched.Stop()

	monitor.mu.Lock()
	require.Equal(t, 1, monitor.stops)
	monitor.mu.Unlock()
}

func TestMonitorPauseDurationPassedOnStart(t *testing.T) {
	monitor := &stubMonitor{}
	sched := New(&countingEmitter{}, &stubPointer{}, &stubProbe{}, Config{})

	config := fastConfig()
	config.MinInterval = time.Minute
	config.MaxInterval = time.Minute
	config.PauseAfterInput = 1500 * time.Millisecond
	source := &stubConfigSource{config: config}

	sched.Start(source, monitor)
	defer sched.Stop()

	monitor.mu.Lock()
	require.Equal(t, 1500*time.Millisecond, monitor.pause)
	monitor.mu.Unlock()
}

func TestDegradedMonitorEmitsDiagnostic(t *testing.T) {
	monitor := &stubMonitor{startErr: errors.New("observation denied")}
	sched := New(&countingEmitter{}, &stubPointer{}, &stubProbe{}, fastOptions())
	source := &stubConfigSource{config: fastConfig()}

	events := sched.Subscribe(8)
	sched.Start(source, monitor)
	defer sched.Stop()

	select {
	case event := <-events:
		require.Equal(t, EventMonitorDegraded, event.Type)
		require.Contains(t, event.Message, "observation denied")
	case <-time.After(time.Second):
		t.Fatal("no degraded event received")
	}
}

func TestClickEventCarriesCursorPosition(t *testing.T) {
	emitter := &countingEmitter{}
	monitor := &stubMonitor{}
	sched := New(emitter, &stubPointer{x: 123, y: 456}, &stubProbe{}, fastOptions())
	source := &stubConfigSource{config: fastConfig()}

	events := sched.Subscribe(16)
	sched.Start(source, monitor)
	defer sched.Stop()

	deadline := time.After(time.Second)
	for {
		select {
		case event := <-events:
			if event.Type != EventClick {
				continue
			}
			require.Equal(t, 123, event.X)
			require.Equal(t, 456, event.Y)
			return
		case <-deadline:
			t.Fatal("no click event received")
		}
	}
}
