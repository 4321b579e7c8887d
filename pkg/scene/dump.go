package scene

import (
	"bufio"
	"fmt"
	"io"
)

// Dump writes a human-readable listing of every record to w.
func (s *Scene) Dump(w io.Writer) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "Textures: %d\n", s.TextureCount())
	for i, t := range s.Textures() {
		fmt.Fprintf(bw, "[%d].file = %s\n", i, t.File)
		fmt.Fprintf(bw, "[%d].name = %s\n", i, t.Name)
	}
	fmt.Fprintln(bw)

	fmt.Fprintf(bw, "Meshes: %d\n", s.MeshCount())
	for i, m := range s.Meshes() {
		fmt.Fprintf(bw, "[%d].file = %s\n", i, m.File)
		fmt.Fprintf(bw, "[%d].name = %s\n", i, m.Name)
	}
	fmt.Fprintln(bw)

	fmt.Fprintf(bw, "Materials: %d\n", s.MaterialCount())
	for i, m := range s.Materials() {
		fmt.Fprintf(bw, "[%d].name = %s\n", i, m.Name)
		fmt.Fprintf(bw, "[%d].color = %s\n", i, m.Color)
		fmt.Fprintf(bw, "[%d].specSize = %g\n", i, m.SpecSize)
		fmt.Fprintf(bw, "[%d].diffuseTex = %d\n", i, m.DiffuseTex.Index())
		fmt.Fprintf(bw, "[%d].normalTex = %d\n", i, m.NormalTex.Index())
	}
	fmt.Fprintln(bw)

	fmt.Fprintf(bw, "Objects: %d\n", s.ObjectCount())
	for i, o := range s.Objects() {
		fmt.Fprintf(bw, "[%d].name = %s\n", i, o.Name)
		fmt.Fprintf(bw, "[%d].position = %s\n", i, o.Position)
		fmt.Fprintf(bw, "[%d].orientation = %s\n", i, o.Orientation)
		fmt.Fprintf(bw, "[%d].scale = %s\n", i, o.Scale)
		fmt.Fprintf(bw, "[%d].mesh = %d\n", i, o.Mesh.Index())
		fmt.Fprintf(bw, "[%d].material = %d\n", i, o.Material.Index())
		fmt.Fprintln(bw)
	}

	fmt.Fprintf(bw, "Lights: %d\n", s.LightCount())
	for i, l := range s.Lights() {
		fmt.Fprintf(bw, "[%d].type = %s\n", i, l.Type)
		fmt.Fprintf(bw, "[%d].diffuseColor = %s\n", i, l.DiffuseColor)
		fmt.Fprintf(bw, "[%d].diffuseIntensity = %g\n", i, l.DiffuseIntensity)
		fmt.Fprintf(bw, "[%d].specularColor = %s\n", i, l.SpecularColor)
		fmt.Fprintf(bw, "[%d].specularIntensity = %g\n", i, l.SpecularIntensity)
		fmt.Fprintf(bw, "[%d].position = %s\n", i, l.Position)
		fmt.Fprintf(bw, "[%d].range = %g\n", i, l.Range)
		fmt.Fprintf(bw, "[%d].direction = %s\n", i, l.Direction)
		fmt.Fprintf(bw, "[%d].shadows = %t\n", i, l.Shadows)
		fmt.Fprintf(bw, "[%d].shadowBias = %g\n", i, l.ShadowBias)
		fmt.Fprintf(bw, "[%d].coneInnerAngle = %g\n", i, l.ConeInnerAngle)
		fmt.Fprintf(bw, "[%d].coneOuterAngle = %g\n", i, l.ConeOuterAngle)
		fmt.Fprintln(bw)
	}

	return bw.Flush()
}

// Snapshot is a serialisable copy of a Scene.
type Snapshot struct {
	Textures  []Texture  `yaml:"textures" json:"textures"`
	Meshes    []Mesh     `yaml:"meshes" json:"meshes"`
	Materials []Material `yaml:"materials" json:"materials"`
	Objects   []Object   `yaml:"objects" json:"objects"`
	Lights    []Light    `yaml:"lights" json:"lights"`
}

// Snapshot copies the scene's collections. Empty collections are non-nil.
func (s *Scene) Snapshot() Snapshot {
	return Snapshot{
		Textures:  append([]Texture{}, s.textures...),
		Meshes:    append([]Mesh{}, s.meshes...),
		Materials: append([]Material{}, s.materials...),
		Objects:   append([]Object{}, s.objects...),
		Lights:    append([]Light{}, s.lights...),
	}
}

// UnsetRefs counts material and object references that point at nothing.
func (s *Scene) UnsetRefs() int {
	n := 0
	for _, m := range s.materials {
		if !m.DiffuseTex.Valid() {
			n++
		}
		if !m.NormalTex.Valid() {
			n++
		}
	}
	for _, o := range s.objects {
		if !o.Mesh.Valid() {
			n++
		}
		if !o.Material.Valid() {
			n++
		}
	}
	return n
}
