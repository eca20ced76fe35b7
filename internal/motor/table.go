// Package motor keeps the per-motor state shared by the telemetry ingest
// and the publication loop.
package motor

import (
	"sync"
	"time"

	"codeberg.org/mutker/motortemp/internal/colormap"
	"codeberg.org/mutker/motortemp/internal/errors"
	"codeberg.org/mutker/motortemp/internal/logger"
	"codeberg.org/mutker/motortemp/internal/marker"
)

// Config describes one monitored motor.
type Config struct {
	Name           string
	Link           string
	MinTemperature float64
	MaxTemperature float64
}

// Entry is the state of one motor. Values returned by Table are copies.
type Entry struct {
	Config
	Shape       marker.Marker
	Text        marker.Marker
	Normalized  float64
	Temperature float64
	HasReading  bool
	UpdatedAt   time.Time
}

// Table maps motor names to their state. A single RWMutex guards every
// entry, so a reader always sees both markers of a motor from the same
// update.
type Table struct {
	mu      sync.RWMutex
	order   []string
	entries map[string]*Entry

	ids     *marker.IDAllocator
	scaling colormap.Scaling
	now     func() time.Time
}

type Option func(*Table)

// WithScaling selects how temperatures are normalized. Default colormap.ByMax.
func WithScaling(s colormap.Scaling) Option {
	return func(t *Table) {
		t.scaling = s
	}
}

// WithClock overrides the clock used for UpdatedAt.
func WithClock(now func() time.Time) Option {
	return func(t *Table) {
		t.now = now
	}
}

// NewTable builds the markers of every motor, in order. Motors whose link
// geometry cannot be resolved get a fallback cube.
func NewTable(motors []Config, factory *marker.Factory, opts ...Option) (*Table, error) {
	errFactory := errors.New()

	t := &Table{
		order:   make([]string, 0, len(motors)),
		entries: make(map[string]*Entry, len(motors)),
		ids:     factory.IDs(),
		scaling: colormap.ByMax,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}

	for _, m := range motors {
		if m.Name == "" || m.Link == "" || m.MaxTemperature <= 0 {
			return nil, errFactory.WithData(ErrInvalidMotor, m)
		}
		// An empty range would store NaN or Inf, which the JSON feed cannot carry
		if t.scaling == colormap.ByRange && m.MaxTemperature <= m.MinTemperature {
			return nil, errFactory.WithData(ErrInvalidMotor, m)
		}
		if _, exists := t.entries[m.Name]; exists {
			return nil, errFactory.WithData(ErrDuplicateMotor, m.Name)
		}

		logger.Info().
			Str("motor", m.Name).
			Str("link", m.Link).
			Float64("min_temperature", m.MinTemperature).
			Float64("max_temperature", m.MaxTemperature).
			Msg("Configuring motor")

		shape, err := factory.Shape(m.Name, m.Link)
		if err != nil {
			logger.Warn().
				Str("motor", m.Name).
				Str("link", m.Link).
				Err(err).
				Msg("No usable geometry for link, drawing fallback cube")
			shape = factory.Fallback(m.Name, m.Link)
		}

		t.entries[m.Name] = &Entry{
			Config: m,
			Shape:  shape,
			Text:   factory.Text(m.Name, m.Link),
		}
		t.order = append(t.order, m.Name)
	}

	return t, nil
}

// ApplyReading recolors the markers of motor for temperature and reports
// whether motor is configured. Unknown motors are ignored.
//
// Both markers get fresh ids on every reading. Ids are not stable across a
// motor's lifetime; a new id makes the display redraw the marker.
func (t *Table) ApplyReading(motor string, temperature float64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.entries[motor]
	if !ok {
		return false
	}

	res := t.scaling.Map(temperature, e.MinTemperature, e.MaxTemperature)
	color := marker.Heat(res.R, res.B)

	e.Shape.Color = color
	e.Shape.ID = t.ids.Next()

	e.Text.Text = marker.Label(motor, temperature)
	e.Text.Color = color
	e.Text.ID = t.ids.Next()

	e.Normalized = res.Normalized
	e.Temperature = temperature
	e.HasReading = true
	e.UpdatedAt = t.now()

	return true
}

// Visible returns, in configured order, the shape and text markers of every
// motor whose normalized temperature is at least threshold.
func (t *Table) Visible(threshold float64) []marker.Marker {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]marker.Marker, 0, 2*len(t.order))
	for _, name := range t.order {
		e := t.entries[name]
		if e.Normalized >= threshold {
			out = append(out, e.Shape, e.Text)
		}
	}

	return out
}

// Entry returns a copy of the state of motor.
func (t *Table) Entry(motor string) (Entry, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	e, ok := t.entries[motor]
	if !ok {
		return Entry{}, false
	}
	return *e, true
}

// Snapshot returns copies of all entries in configured order.
func (t *Table) Snapshot() []Entry {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]Entry, 0, len(t.order))
	for _, name := range t.order {
		out = append(out, *t.entries[name])
	}
	return out
}

// Names returns the configured motor names in order.
func (t *Table) Names() []string {
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

func (t *Table) Len() int {
	return len(t.order)
}
