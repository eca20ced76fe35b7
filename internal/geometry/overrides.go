package geometry

import (
	"io"
	"os"
	"strconv"

	"codeberg.org/mutker/motortemp/internal/errors"
	"gopkg.in/yaml.v3"
)

type overrideFile struct {
	Links map[string]overrideEntry `yaml:"links"`
}

type overrideEntry struct {
	Type   string   `yaml:"type"`
	Mesh   string   `yaml:"mesh"`
	Scale  string   `yaml:"scale"`
	Radius *float64 `yaml:"radius"`
	Length *float64 `yaml:"length"`
	Size   string   `yaml:"size"`
}

func (e overrideEntry) descriptor() Descriptor {
	return Descriptor{
		Kind:   ParseKind(e.Type),
		Mesh:   e.Mesh,
		Scale:  e.Scale,
		Radius: formatOptional(e.Radius),
		Length: formatOptional(e.Length),
		Size:   e.Size,
	}
}

// LoadOverrides reads a YAML file of per-link shapes:
//
//	links:
//	  gripper_left_base_link:
//	    type: cylinder
//	    radius: 0.04
//	    length: 0.1
func LoadOverrides(path string) (Static, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.New().Wrap(ErrReadDescription, err)
	}
	defer f.Close()

	return ParseOverrides(f)
}

// ParseOverrides decodes override entries from r.
func ParseOverrides(r io.Reader) (Static, error) {
	var file overrideFile
	if err := yaml.NewDecoder(r).Decode(&file); err != nil && err != io.EOF {
		return nil, errors.New().Wrap(ErrParseDescription, err)
	}

	out := make(Static, len(file.Links))
	for link, entry := range file.Links {
		out[link] = entry.descriptor()
	}

	return out, nil
}

func formatOptional(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
