// Package scene parses the line-oriented scene description format into a
// cross-referenced model of textures, meshes, materials, objects and lights.
package scene

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/Faultbox/scenefile/pkg/math"
)

// Scene load errors.
var (
	ErrEmptySource = errors.New("empty scene source")
)

// Record defaults.
const (
	DefaultLightIntensity = 1.0
	DefaultLightRange     = 64.0
	DefaultShadowBias     = 0.00001
	DefaultConeInner      = 10.0
	DefaultConeOuter      = 12.0
)

// Ref is an optional index into one of the scene's resource lists.
// The zero value is unset.
type Ref struct {
	index int
	set   bool
}

// NoRef is the unset reference.
var NoRef = Ref{}

// RefTo returns a reference to index i.
func RefTo(i int) Ref {
	return Ref{index: i, set: true}
}

// Get returns the index and whether the reference is set.
func (r Ref) Get() (int, bool) {
	return r.index, r.set
}

// Valid reports whether the reference points at a resource.
func (r Ref) Valid() bool {
	return r.set
}

// Index returns the referenced index, or -1 when unset.
func (r Ref) Index() int {
	if !r.set {
		return -1
	}
	return r.index
}

// Equal reports whether two references are identical.
func (r Ref) Equal(other Ref) bool {
	return r.set == other.set && r.index == other.index
}

// String returns the index, or "unset".
func (r Ref) String() string {
	if !r.set {
		return "unset"
	}
	return strconv.Itoa(r.index)
}

// MarshalYAML encodes an unset reference as null.
func (r Ref) MarshalYAML() (interface{}, error) {
	if !r.set {
		return nil, nil
	}
	return r.index, nil
}

// MarshalJSON encodes an unset reference as null.
func (r Ref) MarshalJSON() ([]byte, error) {
	if !r.set {
		return []byte("null"), nil
	}
	return []byte(strconv.Itoa(r.index)), nil
}

// LightType is the kind of a light source.
type LightType uint8

const (
	LightPoint LightType = iota
	LightSpot
	LightDirectional
)

// String returns the keyword used for the type in scene files.
func (t LightType) String() string {
	switch t {
	case LightPoint:
		return "point"
	case LightSpot:
		return "spot"
	case LightDirectional:
		return "directional"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(t))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (t LightType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// ParseLightType maps a scene-file keyword to a LightType.
// Matching is case-sensitive.
func ParseLightType(s string) (LightType, bool) {
	switch s {
	case "point":
		return LightPoint, true
	case "spot":
		return LightSpot, true
	case "directional":
		return LightDirectional, true
	}
	return LightPoint, false
}

// Texture is an image resource.
type Texture struct {
	File string `yaml:"file" json:"file"`
	Name string `yaml:"name" json:"name"`
}

func (t Texture) resourceName() string { return t.Name }

// Mesh is a geometry resource.
type Mesh struct {
	File string `yaml:"file" json:"file"`
	Name string `yaml:"name" json:"name"`
}

func (m Mesh) resourceName() string { return m.Name }

// Material describes surface shading and references textures by index.
type Material struct {
	Name       string    `yaml:"name" json:"name"`
	Color      math.Vec3 `yaml:"color" json:"color"`
	SpecSize   float32   `yaml:"specSize" json:"specSize"`
	DiffuseTex Ref       `yaml:"diffuseTex" json:"diffuseTex"`
	NormalTex  Ref       `yaml:"normalTex" json:"normalTex"`
}

func (m Material) resourceName() string { return m.Name }

// NewMaterial returns a material with default values.
func NewMaterial() Material {
	return Material{Color: math.Splat(1)}
}

// Object is a placed mesh instance.
type Object struct {
	Name        string    `yaml:"name" json:"name"`
	Position    math.Vec3 `yaml:"position" json:"position"`
	Orientation math.Vec3 `yaml:"orientation" json:"orientation"`
	Scale       math.Vec3 `yaml:"scale" json:"scale"`
	Mesh        Ref       `yaml:"mesh" json:"mesh"`
	Material    Ref       `yaml:"material" json:"material"`
}

// NewObject returns an object with default values.
func NewObject() Object {
	return Object{Scale: math.Splat(1)}
}

// Light is a light source.
type Light struct {
	Type              LightType `yaml:"type" json:"type"`
	DiffuseColor      math.Vec3 `yaml:"diffuseColor" json:"diffuseColor"`
	DiffuseIntensity  float32   `yaml:"diffuseIntensity" json:"diffuseIntensity"`
	SpecularColor     math.Vec3 `yaml:"specularColor" json:"specularColor"`
	SpecularIntensity float32   `yaml:"specularIntensity" json:"specularIntensity"`
	Position          math.Vec3 `yaml:"position" json:"position"`
	Range             float32   `yaml:"range" json:"range"`
	Direction         math.Vec3 `yaml:"direction" json:"direction"`
	Shadows           bool      `yaml:"shadows" json:"shadows"`
	ShadowBias        float32   `yaml:"shadowBias" json:"shadowBias"`
	ConeInnerAngle    float32   `yaml:"coneInnerAngle" json:"coneInnerAngle"`
	ConeOuterAngle    float32   `yaml:"coneOuterAngle" json:"coneOuterAngle"`
}

// NewLight returns a light with default values.
func NewLight() Light {
	return Light{
		Type:              LightPoint,
		DiffuseColor:      math.Splat(1),
		DiffuseIntensity:  DefaultLightIntensity,
		SpecularColor:     math.Splat(1),
		SpecularIntensity: DefaultLightIntensity,
		Range:             DefaultLightRange,
		Shadows:           true,
		ShadowBias:        DefaultShadowBias,
		ConeInnerAngle:    DefaultConeInner,
		ConeOuterAngle:    DefaultConeOuter,
	}
}

// Scene holds the parsed collections in declaration order.
// Slices returned by the accessors are owned by the Scene and must not be modified.
type Scene struct {
	textures  []Texture
	meshes    []Mesh
	materials []Material
	objects   []Object
	lights    []Light
}

// New returns an empty scene.
func New() *Scene {
	return &Scene{}
}

// Load replaces the scene contents with the model parsed from data.
// The scene is cleared first; empty data leaves it empty and returns ErrEmptySource.
func (s *Scene) Load(data []byte, opts ...Option) error {
	s.Reset()
	if len(data) == 0 {
		return ErrEmptySource
	}
	NewParser(opts...).parseInto(s, data)
	return nil
}

// Reset removes every record.
func (s *Scene) Reset() {
	s.textures = nil
	s.meshes = nil
	s.materials = nil
	s.objects = nil
	s.lights = nil
}

// Textures returns all textures.
func (s *Scene) Textures() []Texture { return s.textures }

// Meshes returns all meshes.
func (s *Scene) Meshes() []Mesh { return s.meshes }

// Materials returns all materials.
func (s *Scene) Materials() []Material { return s.materials }

// Objects returns all objects.
func (s *Scene) Objects() []Object { return s.objects }

// Lights returns all lights.
func (s *Scene) Lights() []Light { return s.lights }

// TextureCount returns the number of textures.
func (s *Scene) TextureCount() int { return len(s.textures) }

// MeshCount returns the number of meshes.
func (s *Scene) MeshCount() int { return len(s.meshes) }

// MaterialCount returns the number of materials.
func (s *Scene) MaterialCount() int { return len(s.materials) }

// ObjectCount returns the number of objects.
func (s *Scene) ObjectCount() int { return len(s.objects) }

// LightCount returns the number of lights.
func (s *Scene) LightCount() int { return len(s.lights) }

// IsEmpty reports whether the scene has no records at all.
func (s *Scene) IsEmpty() bool {
	return len(s.textures)+len(s.meshes)+len(s.materials)+len(s.objects)+len(s.lights) == 0
}

// FindTexture returns the first texture named name.
func (s *Scene) FindTexture(name string) Ref {
	return resolve(s.textures, name)
}

// FindMesh returns the first mesh named name.
func (s *Scene) FindMesh(name string) Ref {
	return resolve(s.meshes, name)
}

// FindMaterial returns the first material named name.
func (s *Scene) FindMaterial(name string) Ref {
	return resolve(s.materials, name)
}

type named interface {
	resourceName() string
}

// resolve scans list in order and returns the first exact name match.
func resolve[T named](list []T, name string) Ref {
	for i := range list {
		if list[i].resourceName() == name {
			return RefTo(i)
		}
	}
	return NoRef
}
