// Package math provides the vector type used by scene records.
package math

import "strconv"

// Vec3 is a 3D vector.
type Vec3 struct {
	X float32 `yaml:"x" json:"x"`
	Y float32 `yaml:"y" json:"y"`
	Z float32 `yaml:"z" json:"z"`
}

// Splat returns a vector with all three components set to v.
func Splat(v float32) Vec3 {
	return Vec3{v, v, v}
}

// IsZero reports whether all components are zero.
func (v Vec3) IsZero() bool {
	return v == Vec3{}
}

// String formats the vector as "x, y, z" with the shortest float representation.
func (v Vec3) String() string {
	return formatFloat(v.X) + ", " + formatFloat(v.Y) + ", " + formatFloat(v.Z)
}

func formatFloat(f float32) string {
	return strconv.FormatFloat(float64(f), 'g', -1, 32)
}
