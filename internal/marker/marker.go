// Package marker holds the renderable primitives published to the
// visualization feed and the factory that builds them.
package marker

import (
	"math"
	"strconv"
	"strings"
	"sync/atomic"
	"time"
)

// Kind is the primitive type. Values match the visualization_msgs/Marker
// type constants so batches can be relayed to ROS tooling unchanged.
type Kind int

const (
	KindCube      Kind = 1
	KindSphere    Kind = 2
	KindCylinder  Kind = 3
	KindText      Kind = 9
	KindMeshShape Kind = 10
)

func (k Kind) String() string {
	switch k {
	case KindCube:
		return "cube"
	case KindSphere:
		return "sphere"
	case KindCylinder:
		return "cylinder"
	case KindText:
		return "text"
	case KindMeshShape:
		return "mesh"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

type Vector3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

type Quaternion struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
	W float64 `json:"w"`
}

type Pose struct {
	Position    Vector3    `json:"position"`
	Orientation Quaternion `json:"orientation"`
}

type Color struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
	A float64 `json:"a"`
}

// Blue is the color every marker starts with.
var Blue = Color{R: 0, G: 0, B: 1, A: 1}

// Heat returns the opaque color for the given red and blue channels.
func Heat(r, b float64) Color {
	return Color{R: r, G: 0, B: b, A: 1}
}

// Marker is one renderable primitive anchored to a link frame.
type Marker struct {
	ID           int64   `json:"id"`
	Namespace    string  `json:"ns"`
	Kind         Kind    `json:"type"`
	Frame        string  `json:"frame_id"`
	Pose         Pose    `json:"pose"`
	Scale        Vector3 `json:"scale"`
	Color        Color   `json:"color"`
	Text         string  `json:"text,omitempty"`
	MeshResource string  `json:"mesh_resource,omitempty"`
}

// Array is the batch emitted on one publication tick.
type Array struct {
	Stamp   time.Time `json:"stamp"`
	Seq     uint64    `json:"seq"`
	Markers []Marker  `json:"markers"`
}

// IDAllocator hands out marker ids from a single process-wide sequence.
type IDAllocator struct {
	next atomic.Int64
}

// DefaultFirstID is the first id handed out by NewIDAllocator(DefaultFirstID).
const DefaultFirstID = 1234

func NewIDAllocator(first int64) *IDAllocator {
	a := &IDAllocator{}
	a.next.Store(first)
	return a
}

// Next returns a fresh id, strictly greater than every id returned before.
func (a *IDAllocator) Next() int64 {
	return a.next.Add(1) - 1
}

// Peek returns the id the next call to Next will return.
func (a *IDAllocator) Peek() int64 {
	return a.next.Load()
}

// Label renders the text shown above a motor.
func Label(motor string, temperature float64) string {
	return motor + ": " + FormatTemperature(temperature)
}

// PlaceholderLabel is shown until the first reading arrives.
func PlaceholderLabel(motor string) string {
	return motor + ": XX.XXX"
}

// FormatTemperature prints the shortest decimal form of v, always with a
// fractional part: 45 -> "45.0", 47.25 -> "47.25". Decimal exponents below
// -4 or from 16 up use exponent notation: 1e-05, 1.7e+308.
func FormatTemperature(v float64) string {
	switch {
	case math.IsNaN(v):
		return "nan"
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	}

	s := strconv.FormatFloat(v, 'e', -1, 64)
	exp, _ := strconv.Atoi(s[strings.IndexByte(s, 'e')+1:])
	if exp < -4 || exp >= 16 {
		return s
	}

	s = strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}
