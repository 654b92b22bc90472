package profiling

import (
	"testing"
	"time"
)

// stepClock advances by the queued steps on every call.
type stepClock struct {
	t     time.Time
	steps []time.Duration
}

func (c *stepClock) now() time.Time {
	if len(c.steps) > 0 {
		c.t = c.t.Add(c.steps[0])
		c.steps = c.steps[1:]
	}
	return c.t
}

func TestTrackAndTop(t *testing.T) {
	clock := &stepClock{t: time.Unix(0, 0)}
	f := NewFrame()
	f.now = clock.now

	f.Begin()
	clock.steps = []time.Duration{0, 4200 * time.Microsecond}
	f.Track("render")()
	clock.steps = []time.Duration{0, 2 * time.Millisecond}
	f.Track("swap")()
	clock.steps = []time.Duration{0, 300 * time.Microsecond}
	f.Track("camera")()
	clock.steps = []time.Duration{0, 500 * time.Microsecond}
	f.Track("camera")()

	if got, want := f.TopN(2), "render:4.2ms, swap:2ms"; got != want {
		t.Errorf("TopN(2) = %q, want %q", got, want)
	}
	top := f.Top(10)
	if len(top) != 3 || top[2].Name != "camera" || top[2].Duration != 800*time.Microsecond {
		t.Errorf("Top(10) = %+v", top)
	}
	if f.Elapsed() != 7*time.Millisecond {
		t.Errorf("Elapsed = %v", f.Elapsed())
	}

	f.Begin()
	if s := f.TopN(3); s != "" {
		t.Errorf("after Begin: %q", s)
	}
}

func TestFormatMs(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "0ms"},
		{1500 * time.Microsecond, "1.5ms"},
		{12 * time.Millisecond, "12ms"},
		{16640 * time.Microsecond, "16.6ms"},
	}
	for _, tt := range tests {
		if got := formatMs(tt.d); got != tt.want {
			t.Errorf("formatMs(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}
