package platform

import (
	"time"

	"github.com/go-vgo/robotgo"
	hook "github.com/robotn/gohook"

	"clickmate/internal/core/activity"
)

// Clicker emits synthetic left clicks. It never moves the pointer and
// never changes window or application focus.
type Clicker struct{}

// NewClicker returns a robotgo-backed click emitter.
func NewClicker() *Clicker {
	return &Clicker{}
}

// Click presses and releases the left button. The scheduler always passes
// the live cursor coordinates, so the pointer stays where it is.
func (clicker *Clicker) Click(x, y int) {
	robotgo.Click("left", false)
}

// Cursor reports the pointer position.
type Cursor struct{}

// NewCursor returns a robotgo-backed pointer probe.
func NewCursor() *Cursor {
	return &Cursor{}
}

// Position returns the current cursor coordinates.
func (cursor *Cursor) Position() (int, int) {
	return robotgo.Location()
}

// InputSource adapts the system-wide gohook event stream to activity
// signals.
type InputSource struct{}

// NewInputSource returns a gohook-backed input signal source.
func NewInputSource() *InputSource {
	return &InputSource{}
}

// Open starts the global hook and returns the translated signal stream.
func (source *InputSource) Open() (<-chan activity.Signal, error) {
	events := hook.Start()
	if events == nil {
		return nil, activity.ErrObservationUnsupported
	}

	signals := make(chan activity.Signal, 64)
	go func() {
		defer close(signals)
		for event := range events {
			signal, ok := translate(event)
			if !ok {
				continue
			}
			select {
			case signals <- signal:
			default:
				// drop on overflow
			}
		}
	}()
	return signals, nil
}

// Close stops the global hook, which also closes the signal stream.
func (source *InputSource) Close() {
	hook.End()
}

func translate(event hook.Event) (activity.Signal, bool) {
	signal := activity.Signal{X: int(event.X), Y: int(event.Y), At: time.Now()}
	switch event.Kind {
	case hook.MouseMove, hook.MouseDrag:
		signal.Kind = activity.KindPointerMove
	case hook.MouseDown, hook.MouseUp, hook.MouseHold:
		signal.Kind = activity.KindPointerButton
	case hook.KeyDown, hook.KeyUp, hook.KeyHold:
		signal.Kind = activity.KindKeyboard
	case hook.MouseWheel:
		signal.Kind = activity.KindScroll
	default:
		return activity.Signal{}, false
	}
	return signal, true
}
