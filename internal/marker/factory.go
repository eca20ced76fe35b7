package marker

import (
	"strconv"
	"strings"

	"codeberg.org/mutker/motortemp/internal/errors"
	"codeberg.org/mutker/motortemp/internal/geometry"
	"codeberg.org/mutker/motortemp/internal/logger"
)

const (
	textHeight   = 0.05
	textOffsetZ  = 0.25
	fallbackSize = 0.1
)

var unitScale = Vector3{X: 1, Y: 1, Z: 1}

// Factory builds the shape and text markers of a motor. Every marker it
// creates consumes one id from the shared allocator.
type Factory struct {
	ids      *IDAllocator
	resolver geometry.Resolver
}

func NewFactory(ids *IDAllocator, resolver geometry.Resolver) *Factory {
	return &Factory{ids: ids, resolver: resolver}
}

// IDs returns the allocator shared with the update path.
func (f *Factory) IDs() *IDAllocator {
	return f.ids
}

// Shape builds the shape marker drawn over link. If the link geometry cannot
// be resolved or has no known type, no id is consumed and an error carrying
// ErrUnknownShape is returned; callers decide what to draw instead.
func (f *Factory) Shape(motor, link string) (Marker, error) {
	errFactory := errors.New()

	d, err := f.resolver.Resolve(link)
	if err != nil {
		return Marker{}, errFactory.Wrap(ErrUnknownShape, err)
	}

	m := Marker{
		Namespace: motor + "_mesh",
		Frame:     link,
		Pose:      identityPose(),
		Color:     Blue,
	}

	switch d.Kind {
	case geometry.KindMesh:
		m.Kind = KindMeshShape
		m.MeshResource = d.Mesh
		m.Scale = scaleOrUnit(motor, link, func() (Vector3, error) {
			return parseTriple(d.Scale)
		})
	case geometry.KindCylinder:
		m.Kind = KindCylinder
		m.Scale = scaleOrUnit(motor, link, func() (Vector3, error) {
			radius, err := parseDimension(d.Radius)
			if err != nil {
				return Vector3{}, err
			}
			length, err := parseDimension(d.Length)
			if err != nil {
				return Vector3{}, err
			}
			return Vector3{X: radius, Y: radius, Z: length}, nil
		})
	case geometry.KindBox:
		m.Kind = KindCube
		m.Scale = scaleOrUnit(motor, link, func() (Vector3, error) {
			return parseTriple(d.Size)
		})
	case geometry.KindSphere:
		m.Kind = KindSphere
		m.Scale = scaleOrUnit(motor, link, func() (Vector3, error) {
			radius, err := parseDimension(d.Radius)
			if err != nil {
				return Vector3{}, err
			}
			return Vector3{X: radius, Y: radius, Z: radius}, nil
		})
	default:
		return Marker{}, errFactory.WithData(ErrUnknownShape, d.Kind.String())
	}

	m.ID = f.ids.Next()

	return m, nil
}

// Fallback builds a small cube over link, used when Shape fails.
func (f *Factory) Fallback(motor, link string) Marker {
	return Marker{
		ID:        f.ids.Next(),
		Namespace: motor + "_mesh",
		Kind:      KindCube,
		Frame:     link,
		Pose:      identityPose(),
		Scale:     Vector3{X: fallbackSize, Y: fallbackSize, Z: fallbackSize},
		Color:     Blue,
	}
}

// Text builds the label floating above link.
func (f *Factory) Text(motor, link string) Marker {
	pose := identityPose()
	pose.Position.Z = textOffsetZ

	return Marker{
		ID:        f.ids.Next(),
		Namespace: motor + "_text",
		Kind:      KindText,
		Frame:     link,
		Pose:      pose,
		Scale:     Vector3{Z: textHeight},
		Color:     Blue,
		Text:      PlaceholderLabel(motor),
	}
}

func identityPose() Pose {
	return Pose{Orientation: Quaternion{W: 1}}
}

func scaleOrUnit(motor, link string, parse func() (Vector3, error)) Vector3 {
	v, err := parse()
	if err != nil {
		logger.Warn().
			Str("motor", motor).
			Str("link", link).
			Err(err).
			Msg("Scale was not correctly found, using 1.0 for all dimensions")
		return unitScale
	}
	return v
}

func parseTriple(s string) (Vector3, error) {
	fields := strings.Fields(s)
	if len(fields) < 3 {
		return Vector3{}, errors.New().WithData(ErrInvalidScale, strconv.Quote(s))
	}

	var out [3]float64
	for i := range out {
		v, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return Vector3{}, errors.New().Wrap(ErrInvalidScale, err)
		}
		out[i] = v
	}

	return Vector3{X: out[0], Y: out[1], Z: out[2]}, nil
}

func parseDimension(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, errors.New().Wrap(ErrInvalidScale, err)
	}
	return v, nil
}
