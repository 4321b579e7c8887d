package scene

import (
	"go.uber.org/zap"

	"github.com/Faultbox/scenefile/pkg/math"
)

// state is the section the parser is currently inside.
type state uint8

const (
	stateOutside state = iota
	stateScene
	stateResources
	stateTexture
	stateMesh
	stateMaterial
	stateObjects
	stateObject
	stateLights
	stateLight
)

var stateNames = [...]string{
	stateOutside:   "outside",
	stateScene:     "scene",
	stateResources: "resources",
	stateTexture:   "texture",
	stateMesh:      "mesh",
	stateMaterial:  "material",
	stateObjects:   "objects",
	stateObject:    "obj",
	stateLights:    "lights",
	stateLight:     "light",
}

func (s state) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "invalid"
}

// transition is the effect of a recognised tag line in a given state.
type transition struct {
	next  state
	enter func(*parseContext) // resets the pending record of a leaf
	leave func(*parseContext) // commits the pending record of a leaf
}

// transitions maps each state to the tag lines it reacts to.
// Tags are matched by exact string equality; tags not listed for the
// current state are ignored regardless of what is actually open.
var transitions = [...]map[string]transition{
	stateOutside: {
		"[scene]": {next: stateScene},
	},
	stateScene: {
		"[resources]": {next: stateResources},
		"[objects]":   {next: stateObjects},
		"[lights]":    {next: stateLights},
		"[/scene]":    {next: stateOutside},
	},
	stateResources: {
		"[texture]":    {next: stateTexture, enter: (*parseContext).openTexture},
		"[mesh]":       {next: stateMesh, enter: (*parseContext).openMesh},
		"[material]":   {next: stateMaterial, enter: (*parseContext).openMaterial},
		"[/resources]": {next: stateScene},
	},
	stateTexture: {
		"[/texture]": {next: stateResources, leave: (*parseContext).commitTexture},
	},
	stateMesh: {
		"[/mesh]": {next: stateResources, leave: (*parseContext).commitMesh},
	},
	stateMaterial: {
		"[/material]": {next: stateResources, leave: (*parseContext).commitMaterial},
	},
	stateObjects: {
		"[obj]":      {next: stateObject, enter: (*parseContext).openObject},
		"[/objects]": {next: stateScene},
	},
	stateObject: {
		"[/obj]": {next: stateObjects, leave: (*parseContext).commitObject},
	},
	stateLights: {
		"[light]":   {next: stateLight, enter: (*parseContext).openLight},
		"[/lights]": {next: stateScene},
	},
	stateLight: {
		"[/light]": {next: stateLights, leave: (*parseContext).commitLight},
	},
}

// fieldSetter applies one key=value line to the pending record.
type fieldSetter func(c *parseContext, key, value string)

// fields maps each leaf state to the keys its record understands.
// Non-leaf states have no entry; key=value lines there are ignored.
var fields = [...]map[string]fieldSetter{
	stateTexture: {
		"file": func(c *parseContext, _, v string) { c.texture.File = v },
		"name": func(c *parseContext, _, v string) { c.texture.Name = v },
	},
	stateMesh: {
		"file": func(c *parseContext, _, v string) { c.mesh.File = v },
		"name": func(c *parseContext, _, v string) { c.mesh.Name = v },
	},
	stateMaterial: {
		"name":     func(c *parseContext, _, v string) { c.material.Name = v },
		"color":    func(c *parseContext, k, v string) { c.vector(k, v, &c.material.Color) },
		"specSize": func(c *parseContext, k, v string) { c.float(k, v, &c.material.SpecSize) },
		"diffuseTex": func(c *parseContext, k, v string) {
			c.material.DiffuseTex = c.ref(k, v, c.scene.FindTexture(v))
		},
		"normalTex": func(c *parseContext, k, v string) {
			c.material.NormalTex = c.ref(k, v, c.scene.FindTexture(v))
		},
	},
	stateObject: {
		"name":        func(c *parseContext, _, v string) { c.object.Name = v },
		"position":    func(c *parseContext, k, v string) { c.vector(k, v, &c.object.Position) },
		"orientation": func(c *parseContext, k, v string) { c.vector(k, v, &c.object.Orientation) },
		"scale":       func(c *parseContext, k, v string) { c.vector(k, v, &c.object.Scale) },
		"mesh": func(c *parseContext, k, v string) {
			c.object.Mesh = c.ref(k, v, c.scene.FindMesh(v))
		},
		"material": func(c *parseContext, k, v string) {
			c.object.Material = c.ref(k, v, c.scene.FindMaterial(v))
		},
	},
	stateLight: {
		"type":              (*parseContext).lightType,
		"diffuseColor":      func(c *parseContext, k, v string) { c.vector(k, v, &c.light.DiffuseColor) },
		"diffuseIntensity":  func(c *parseContext, k, v string) { c.float(k, v, &c.light.DiffuseIntensity) },
		"specularColor":     func(c *parseContext, k, v string) { c.vector(k, v, &c.light.SpecularColor) },
		"specularIntensity": func(c *parseContext, k, v string) { c.float(k, v, &c.light.SpecularIntensity) },
		"position":          func(c *parseContext, k, v string) { c.vector(k, v, &c.light.Position) },
		"range":             func(c *parseContext, k, v string) { c.float(k, v, &c.light.Range) },
		"direction":         func(c *parseContext, k, v string) { c.vector(k, v, &c.light.Direction) },
		"shadows":           func(c *parseContext, _, v string) { c.light.Shadows = ParseBool(v) },
		"shadowBias":        func(c *parseContext, k, v string) { c.float(k, v, &c.light.ShadowBias) },
		"coneInnerAngle":    func(c *parseContext, k, v string) { c.float(k, v, &c.light.ConeInnerAngle) },
		"coneOuterAngle":    func(c *parseContext, k, v string) { c.float(k, v, &c.light.ConeOuterAngle) },
	},
}

// Option configures a Parser.
type Option func(*Parser)

// WithLogger sets the logger that receives parse diagnostics.
func WithLogger(log *zap.Logger) Option {
	return func(p *Parser) {
		if log != nil {
			p.log = log
		}
	}
}

// Parser turns scene text into a Scene. It carries no per-parse state,
// so one Parser may be used for any number of parses.
type Parser struct {
	log *zap.Logger
}

// NewParser creates a parser.
func NewParser(opts ...Option) *Parser {
	p := &Parser{log: zap.NewNop()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse parses data into a new Scene. Malformed content is skipped,
// never reported as an error.
func (p *Parser) Parse(data []byte) *Scene {
	s := New()
	p.parseInto(s, data)
	return s
}

func (p *Parser) parseInto(s *Scene, data []byte) {
	c := &parseContext{scene: s, log: p.log}
	for lineNo, line := range numberedLines(data) {
		c.lineNo = lineNo
		c.step(line)
	}
	c.finish()

	p.log.Debug("scene parsed",
		zap.Int("textures", s.TextureCount()),
		zap.Int("meshes", s.MeshCount()),
		zap.Int("materials", s.MaterialCount()),
		zap.Int("objects", s.ObjectCount()),
		zap.Int("lights", s.LightCount()))
}

// parseContext is the mutable state of a single parse: the current section
// and one pending record per resource kind.
type parseContext struct {
	scene  *Scene
	log    *zap.Logger
	state  state
	lineNo int

	texture  Texture
	mesh     Mesh
	material Material
	object   Object
	light    Light
}

// step processes one logical line.
func (c *parseContext) step(line string) {
	if t, ok := transitions[c.state][line]; ok {
		if t.leave != nil {
			t.leave(c)
		}
		if t.enter != nil {
			t.enter(c)
		}
		c.state = t.next
		return
	}

	key, value, ok := splitKeyValue(line)
	if !ok {
		c.log.Debug("ignoring line",
			zap.Int("line", c.lineNo),
			zap.Stringer("state", c.state),
			zap.String("text", line))
		return
	}

	setters := fields[c.state]
	if setters == nil {
		c.log.Debug("ignoring key outside record",
			zap.Int("line", c.lineNo),
			zap.Stringer("state", c.state),
			zap.String("key", key))
		return
	}

	set, ok := setters[key]
	if !ok {
		c.log.Debug("unknown key",
			zap.Int("line", c.lineNo),
			zap.Stringer("state", c.state),
			zap.String("key", key))
		return
	}
	set(c, key, value)
}

// finish reports a record left open at end of input. It is discarded.
func (c *parseContext) finish() {
	if fields[c.state] != nil {
		c.log.Debug("discarding unterminated record",
			zap.Int("line", c.lineNo),
			zap.Stringer("state", c.state))
	} else if c.state != stateOutside {
		c.log.Debug("input ended inside section",
			zap.Stringer("state", c.state))
	}
}

func (c *parseContext) openTexture()  { c.texture = Texture{} }
func (c *parseContext) openMesh()     { c.mesh = Mesh{} }
func (c *parseContext) openMaterial() { c.material = NewMaterial() }
func (c *parseContext) openObject()   { c.object = NewObject() }
func (c *parseContext) openLight()    { c.light = NewLight() }

func (c *parseContext) commitTexture() {
	c.scene.textures = append(c.scene.textures, c.texture)
	c.texture = Texture{}
}

func (c *parseContext) commitMesh() {
	c.scene.meshes = append(c.scene.meshes, c.mesh)
	c.mesh = Mesh{}
}

func (c *parseContext) commitMaterial() {
	c.scene.materials = append(c.scene.materials, c.material)
	c.material = NewMaterial()
}

func (c *parseContext) commitObject() {
	c.scene.objects = append(c.scene.objects, c.object)
	c.object = NewObject()
}

func (c *parseContext) commitLight() {
	c.scene.lights = append(c.scene.lights, c.light)
	c.light = NewLight()
}

func (c *parseContext) vector(key, value string, out *math.Vec3) {
	if !ParseVector(value, out) {
		c.log.Debug("malformed vector",
			zap.Int("line", c.lineNo),
			zap.String("key", key),
			zap.String("value", value))
	}
}

func (c *parseContext) float(key, value string, out *float32) {
	f, ok := parseFloat(value)
	if !ok {
		c.log.Debug("malformed number",
			zap.Int("line", c.lineNo),
			zap.String("key", key),
			zap.String("value", value))
	}
	*out = f
}

// ref passes r through, logging when the name did not resolve.
// Only records committed before this line are visible.
func (c *parseContext) ref(key, name string, r Ref) Ref {
	if !r.Valid() {
		c.log.Debug("unresolved reference",
			zap.Int("line", c.lineNo),
			zap.String("key", key),
			zap.String("name", name))
	}
	return r
}

func (c *parseContext) lightType(key, value string) {
	t, ok := ParseLightType(value)
	if !ok {
		c.log.Debug("unknown light type",
			zap.Int("line", c.lineNo),
			zap.String("key", key),
			zap.String("value", value))
		return
	}
	c.light.Type = t
}
