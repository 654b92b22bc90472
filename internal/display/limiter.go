package display

import "time"

// spinWindow is how far ahead of the deadline Wait stops sleeping and spins.
const spinWindow = 200 * time.Microsecond

// Limiter paces a frame loop to a fixed frame rate.
type Limiter struct {
	target time.Duration
	next   time.Time

	now   func() time.Time
	sleep func(time.Duration)
}

// NewLimiter creates a limiter for fps frames per second. Zero or less
// disables pacing.
func NewLimiter(fps int) *Limiter {
	l := &Limiter{now: time.Now, sleep: time.Sleep}
	l.SetLimit(fps)
	return l
}

// SetLimit changes the frame rate and restarts the schedule.
func (l *Limiter) SetLimit(fps int) {
	l.next = time.Time{}
	if fps <= 0 {
		l.target = 0
		return
	}
	l.target = time.Second / time.Duration(fps)
}

// Wait blocks until the next frame is due. It uses a hybrid sleep/spin
// approach for better precision on high caps.
func (l *Limiter) Wait() {
	if l.target == 0 {
		return
	}

	if l.next.IsZero() {
		l.next = l.now().Add(l.target)
	} else {
		l.next = l.next.Add(l.target)
	}

	for {
		remaining := l.next.Sub(l.now())
		if remaining <= 0 {
			break
		}
		if remaining > spinWindow {
			l.sleep(remaining - spinWindow)
		}
	}

	// resync after a hitch instead of racing to catch up
	if now := l.now(); now.Sub(l.next) > l.target {
		l.next = now
	}
}
