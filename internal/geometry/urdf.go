package geometry

import (
	"encoding/xml"
	"io"
	"os"

	"codeberg.org/mutker/motortemp/internal/errors"
	"codeberg.org/mutker/motortemp/internal/logger"
)

type urdfRobot struct {
	Name  string     `xml:"name,attr"`
	Links []urdfLink `xml:"link"`
}

type urdfLink struct {
	Name    string       `xml:"name,attr"`
	Visuals []urdfVisual `xml:"visual"`
}

type urdfVisual struct {
	Geometry urdfGeometry `xml:"geometry"`
}

type urdfGeometry struct {
	Mesh *struct {
		Filename string `xml:"filename,attr"`
		Scale    string `xml:"scale,attr"`
	} `xml:"mesh"`
	Cylinder *struct {
		Radius string `xml:"radius,attr"`
		Length string `xml:"length,attr"`
	} `xml:"cylinder"`
	Box *struct {
		Size string `xml:"size,attr"`
	} `xml:"box"`
	Sphere *struct {
		Radius string `xml:"radius,attr"`
	} `xml:"sphere"`
}

func (g urdfGeometry) descriptor() Descriptor {
	switch {
	case g.Mesh != nil:
		return Descriptor{Kind: KindMesh, Mesh: g.Mesh.Filename, Scale: g.Mesh.Scale}
	case g.Cylinder != nil:
		return Descriptor{Kind: KindCylinder, Radius: g.Cylinder.Radius, Length: g.Cylinder.Length}
	case g.Box != nil:
		return Descriptor{Kind: KindBox, Size: g.Box.Size}
	case g.Sphere != nil:
		return Descriptor{Kind: KindSphere, Radius: g.Sphere.Radius}
	default:
		return Descriptor{}
	}
}

// URDF resolves links from a parsed robot description. The first visual of
// a link is used.
type URDF struct {
	robot string
	links map[string]Descriptor
}

// LoadURDF reads and parses the robot description at path.
func LoadURDF(path string) (*URDF, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.New().Wrap(ErrReadDescription, err)
	}
	defer f.Close()

	return ParseURDF(f)
}

// ParseURDF parses a robot description.
func ParseURDF(r io.Reader) (*URDF, error) {
	var robot urdfRobot
	if err := xml.NewDecoder(r).Decode(&robot); err != nil {
		return nil, errors.New().Wrap(ErrParseDescription, err)
	}

	u := &URDF{
		robot: robot.Name,
		links: make(map[string]Descriptor, len(robot.Links)),
	}
	for _, l := range robot.Links {
		if len(l.Visuals) == 0 {
			u.links[l.Name] = Descriptor{}
			continue
		}
		u.links[l.Name] = l.Visuals[0].Geometry.descriptor()
	}

	logger.Debug().
		Str("robot", u.robot).
		Int("links", len(u.links)).
		Msg("Robot description loaded")

	return u, nil
}

// Robot returns the robot name declared in the description.
func (u *URDF) Robot() string {
	return u.robot
}

func (u *URDF) Resolve(link string) (Descriptor, error) {
	d, ok := u.links[link]
	if !ok {
		return Descriptor{}, errors.New().WithData(ErrLinkNotFound, link)
	}
	return validate(link, d)
}
