package geometry_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"codeberg.org/mutker/motortemp/internal/errors"
	"codeberg.org/mutker/motortemp/internal/geometry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const robotURDF = `<?xml version="1.0"?>
<robot name="reem">
  <link name="gripper_left_base_link">
    <visual>
      <geometry>
        <mesh filename="package://reem_description/meshes/gripper/gripper_base.stl" scale="0.001 0.001 0.001"/>
      </geometry>
    </visual>
  </link>
  <link name="arm_left_1_link">
    <visual>
      <geometry>
        <cylinder radius="0.05" length="0.2"/>
      </geometry>
    </visual>
  </link>
  <link name="torso_link">
    <visual>
      <geometry>
        <box size="0.3 0.2 0.5"/>
      </geometry>
    </visual>
  </link>
  <link name="head_link">
    <visual>
      <geometry>
        <sphere radius="0.12"/>
      </geometry>
    </visual>
  </link>
  <link name="base_footprint"/>
</robot>`

func TestParseURDF(t *testing.T) {
	u, err := geometry.ParseURDF(strings.NewReader(robotURDF))
	require.NoError(t, err)
	assert.Equal(t, "reem", u.Robot())

	tests := []struct {
		link string
		want geometry.Descriptor
	}{
		{"gripper_left_base_link", geometry.Descriptor{
			Kind:  geometry.KindMesh,
			Mesh:  "package://reem_description/meshes/gripper/gripper_base.stl",
			Scale: "0.001 0.001 0.001",
		}},
		{"arm_left_1_link", geometry.Descriptor{Kind: geometry.KindCylinder, Radius: "0.05", Length: "0.2"}},
		{"torso_link", geometry.Descriptor{Kind: geometry.KindBox, Size: "0.3 0.2 0.5"}},
		{"head_link", geometry.Descriptor{Kind: geometry.KindSphere, Radius: "0.12"}},
	}

	for _, tt := range tests {
		t.Run(tt.link, func(t *testing.T) {
			got, err := u.Resolve(tt.link)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestURDFUnresolvable(t *testing.T) {
	u, err := geometry.ParseURDF(strings.NewReader(robotURDF))
	require.NoError(t, err)

	_, err = u.Resolve("base_footprint")
	assert.True(t, errors.HasCode(err, geometry.ErrUnknownShape), "link without visual has no shape")

	_, err = u.Resolve("missing_link")
	assert.True(t, errors.HasCode(err, geometry.ErrLinkNotFound))
}

func TestParseURDFInvalid(t *testing.T) {
	_, err := geometry.ParseURDF(strings.NewReader("<robot><link"))
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, geometry.ErrParseDescription))

	_, err = geometry.LoadURDF(filepath.Join(t.TempDir(), "nope.urdf"))
	assert.True(t, errors.HasCode(err, geometry.ErrReadDescription))
}

func TestLoadOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "geometry.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
links:
  gripper_left_base_link:
    type: cylinder
    radius: 0.04
    length: 0.1
  wrist_link:
    type: cube
    size: "0.05 0.05 0.02"
  odd_link:
    type: torus
`), 0o600))

	s, err := geometry.LoadOverrides(path)
	require.NoError(t, err)

	d, err := s.Resolve("gripper_left_base_link")
	require.NoError(t, err)
	assert.Equal(t, geometry.Descriptor{Kind: geometry.KindCylinder, Radius: "0.04", Length: "0.1"}, d)

	d, err = s.Resolve("wrist_link")
	require.NoError(t, err)
	assert.Equal(t, geometry.KindBox, d.Kind)
	assert.Equal(t, "0.05 0.05 0.02", d.Size)

	_, err = s.Resolve("odd_link")
	assert.True(t, errors.HasCode(err, geometry.ErrUnknownShape))
}

func TestParseOverridesEmpty(t *testing.T) {
	s, err := geometry.ParseOverrides(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, s)
}

func TestChain(t *testing.T) {
	u, err := geometry.ParseURDF(strings.NewReader(robotURDF))
	require.NoError(t, err)

	overrides := geometry.Static{
		"head_link": {Kind: geometry.KindBox, Size: "0.1 0.1 0.1"},
		"weird":     {Kind: geometry.KindUnknown},
	}
	chain := geometry.Chain{overrides, u}

	d, err := chain.Resolve("head_link")
	require.NoError(t, err)
	assert.Equal(t, geometry.KindBox, d.Kind, "Expected override to take precedence")

	d, err = chain.Resolve("torso_link")
	require.NoError(t, err)
	assert.Equal(t, geometry.KindBox, d.Kind)

	_, err = chain.Resolve("weird")
	assert.True(t, errors.HasCode(err, geometry.ErrUnknownShape), "Expected the specific error to win over not found")

	_, err = chain.Resolve("nowhere")
	assert.True(t, errors.HasCode(err, geometry.ErrLinkNotFound))

	_, err = geometry.Chain{}.Resolve("nowhere")
	assert.True(t, errors.HasCode(err, geometry.ErrLinkNotFound))
}

func TestParseKind(t *testing.T) {
	assert.Equal(t, geometry.KindBox, geometry.ParseKind("cube"))
	assert.Equal(t, geometry.KindBox, geometry.ParseKind("CUBE"))
	assert.Equal(t, geometry.KindMesh, geometry.ParseKind("mesh"))
	assert.Equal(t, geometry.KindUnknown, geometry.ParseKind("torus"))
	assert.Equal(t, "sphere", geometry.KindSphere.String())
}
