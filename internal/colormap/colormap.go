// Package colormap maps motor temperatures onto the blue to red gradient
// used by the markers.
package colormap

// Scaling selects the divisor used for normalization.
type Scaling int

const (
	// ByMax divides by the configured maximum temperature. This is the
	// historical behavior and the default.
	ByMax Scaling = iota
	// ByRange divides by the configured temperature range, so that min maps
	// to 0 and max maps to 1.
	ByRange
)

// Result is the outcome of mapping one reading.
type Result struct {
	Normalized float64
	R          float64
	B          float64
}

// MapTemperature normalizes temperature as (temperature - minT) / maxT.
// The result is not clamped: readings outside [minT, maxT] yield channels
// outside [0, 1].
func MapTemperature(temperature, minT, maxT float64) Result {
	return fromNormalized((temperature - minT) / maxT)
}

// MapTemperatureRange normalizes temperature as (temperature - minT) / (maxT - minT).
// Unclamped, like MapTemperature.
func MapTemperatureRange(temperature, minT, maxT float64) Result {
	return fromNormalized((temperature - minT) / (maxT - minT))
}

// Map applies the selected scaling.
func (s Scaling) Map(temperature, minT, maxT float64) Result {
	if s == ByRange {
		return MapTemperatureRange(temperature, minT, maxT)
	}
	return MapTemperature(temperature, minT, maxT)
}

func (s Scaling) String() string {
	if s == ByRange {
		return "range"
	}
	return "max"
}

// ParseScaling accepts "max" or "range". Anything else is ByMax.
func ParseScaling(name string) Scaling {
	if name == "range" {
		return ByRange
	}
	return ByMax
}

func fromNormalized(n float64) Result {
	return Result{Normalized: n, R: n, B: 1 - n}
}
