// Package geometry resolves a link name to the shape used to draw it.
package geometry

import (
	"fmt"

	"codeberg.org/mutker/motortemp/internal/errors"
)

// Kind tags the variant held by a Descriptor.
type Kind int

const (
	KindUnknown Kind = iota
	KindMesh
	KindCylinder
	KindBox
	KindSphere
)

func (k Kind) String() string {
	switch k {
	case KindMesh:
		return "mesh"
	case KindCylinder:
		return "cylinder"
	case KindBox:
		return "box"
	case KindSphere:
		return "sphere"
	default:
		return "unknown"
	}
}

// ParseKind maps a shape name onto a Kind. "cube" is accepted for box.
func ParseKind(name string) Kind {
	switch name {
	case "mesh", "MESH":
		return KindMesh
	case "cylinder", "CYLINDER":
		return KindCylinder
	case "box", "cube", "BOX", "CUBE":
		return KindBox
	case "sphere", "SPHERE":
		return KindSphere
	default:
		return KindUnknown
	}
}

// Descriptor describes the visual geometry of one link. Dimensions are kept
// as the raw strings found in the robot description; the marker factory
// parses them and falls back to unit scale when they are malformed.
type Descriptor struct {
	Kind Kind

	// Mesh is the mesh resource (KindMesh).
	Mesh string
	// Scale is the optional "x y z" mesh scale (KindMesh).
	Scale string
	// Radius applies to KindCylinder and KindSphere.
	Radius string
	// Length applies to KindCylinder.
	Length string
	// Size is the "x y z" edge lengths (KindBox).
	Size string
}

// Resolver looks up the geometry of a link.
type Resolver interface {
	Resolve(link string) (Descriptor, error)
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(link string) (Descriptor, error)

func (f ResolverFunc) Resolve(link string) (Descriptor, error) {
	return f(link)
}

func validate(link string, d Descriptor) (Descriptor, error) {
	if d.Kind == KindUnknown {
		return Descriptor{}, errors.New().WithData(ErrUnknownShape, link)
	}
	return d, nil
}

// Static resolves from an in-memory table.
type Static map[string]Descriptor

func (s Static) Resolve(link string) (Descriptor, error) {
	d, ok := s[link]
	if !ok {
		return Descriptor{}, errors.New().WithData(ErrLinkNotFound, link)
	}
	return validate(link, d)
}

// Chain tries each resolver in turn and returns the first success.
type Chain []Resolver

func (c Chain) Resolve(link string) (Descriptor, error) {
	var firstErr error
	for _, r := range c {
		d, err := r.Resolve(link)
		if err == nil {
			return d, nil
		}
		if firstErr == nil || (errors.HasCode(firstErr, ErrLinkNotFound) && !errors.HasCode(err, ErrLinkNotFound)) {
			firstErr = err
		}
	}

	if firstErr == nil {
		return Descriptor{}, errors.New().WithData(ErrLinkNotFound, link)
	}
	return Descriptor{}, fmt.Errorf("resolve %s: %w", link, firstErr)
}
