package profiling

import (
	"sort"
	"strconv"
	"strings"
	"time"
)

// Frame accumulates CPU time per named section over one frame. It is owned by
// the frame loop and not safe for concurrent use.
type Frame struct {
	start  time.Time
	totals map[string]time.Duration
	now    func() time.Time
}

// Section is a named share of a frame.
type Section struct {
	Name     string
	Duration time.Duration
}

// NewFrame creates an empty frame profile.
func NewFrame() *Frame {
	return &Frame{totals: make(map[string]time.Duration), now: time.Now}
}

// Begin clears the totals and marks the start of a frame.
func (f *Frame) Begin() {
	clear(f.totals)
	f.start = f.now()
}

// Elapsed returns the time since Begin.
func (f *Frame) Elapsed() time.Duration {
	return f.now().Sub(f.start)
}

// Track returns a stop function that adds the elapsed time to name.
// Usage: defer frame.Track("render")()
func (f *Frame) Track(name string) func() {
	start := f.now()
	return func() {
		f.totals[name] += f.now().Sub(start)
	}
}

// Top returns the n longest sections, longest first.
func (f *Frame) Top(n int) []Section {
	list := make([]Section, 0, len(f.totals))
	for k, v := range f.totals {
		list = append(list, Section{Name: k, Duration: v})
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].Duration != list[j].Duration {
			return list[i].Duration > list[j].Duration
		}
		return list[i].Name < list[j].Name
	})
	if n < len(list) {
		list = list[:n]
	}
	return list
}

// TopN formats the n longest sections.
// Example: "render:4.2ms, swap:2.1ms"
func (f *Frame) TopN(n int) string {
	top := f.Top(n)
	parts := make([]string, 0, len(top))
	for _, s := range top {
		parts = append(parts, s.Name+":"+formatMs(s.Duration))
	}
	return strings.Join(parts, ", ")
}

// formatMs keeps one decimal and drops a trailing .0.
func formatMs(d time.Duration) string {
	ms := float64(d.Microseconds()) / 1000.0
	s := strconv.FormatFloat(ms, 'f', 1, 64)
	return strings.TrimSuffix(s, ".0") + "ms"
}
