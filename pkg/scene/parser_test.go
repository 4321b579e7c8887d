package scene

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Faultbox/scenefile/pkg/math"
)

const minimalScene = `[scene]
  [resources]
    [texture]
      file=textures/crate.png
      name=crate
    [/texture]
    [mesh]
      file=meshes/cube.obj
      name=cube
    [/mesh]
    [material]
      name=wood
      color=0.5,0.25,1
      specSize=8
      diffuseTex=crate
      normalTex=crate
    [/material]
  [/resources]
  [objects]
    [obj]
      name=box
      position=1,2,3
      orientation=0,90,0
      scale=2,2,2
      mesh=cube
      material=wood
    [/obj]
  [/objects]
  [lights]
    [light]
      type=spot
      diffuseColor=1,0.5,0.5
      diffuseIntensity=2
      specularColor=0.1,0.2,0.3
      specularIntensity=0.5
      position=0,10,0
      range=32
      direction=0,-1,0
      shadows=no
      shadowBias=0.001
      coneInnerAngle=20
      coneOuterAngle=25
    [/light]
  [/lights]
[/scene]
`

func parse(t *testing.T, text string) *Scene {
	t.Helper()
	return NewParser().Parse([]byte(text))
}

func TestParse_MinimalScene(t *testing.T) {
	s := New()
	if err := s.Load([]byte(minimalScene)); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	want := Snapshot{
		Textures: []Texture{{File: "textures/crate.png", Name: "crate"}},
		Meshes:   []Mesh{{File: "meshes/cube.obj", Name: "cube"}},
		Materials: []Material{{
			Name:       "wood",
			Color:      math.Vec3{X: 0.5, Y: 0.25, Z: 1},
			SpecSize:   8,
			DiffuseTex: RefTo(0),
			NormalTex:  RefTo(0),
		}},
		Objects: []Object{{
			Name:        "box",
			Position:    math.Vec3{X: 1, Y: 2, Z: 3},
			Orientation: math.Vec3{X: 0, Y: 90, Z: 0},
			Scale:       math.Splat(2),
			Mesh:        RefTo(0),
			Material:    RefTo(0),
		}},
		Lights: []Light{{
			Type:              LightSpot,
			DiffuseColor:      math.Vec3{X: 1, Y: 0.5, Z: 0.5},
			DiffuseIntensity:  2,
			SpecularColor:     math.Vec3{X: 0.1, Y: 0.2, Z: 0.3},
			SpecularIntensity: 0.5,
			Position:          math.Vec3{X: 0, Y: 10, Z: 0},
			Range:             32,
			Direction:         math.Vec3{X: 0, Y: -1, Z: 0},
			Shadows:           false,
			ShadowBias:        0.001,
			ConeInnerAngle:    20,
			ConeOuterAngle:    25,
		}},
	}

	if diff := cmp.Diff(want, s.Snapshot()); diff != "" {
		t.Errorf("scene mismatch (-want +got):\n%s", diff)
	}

	counts := []struct {
		name string
		got  int
	}{
		{"textures", s.TextureCount()},
		{"meshes", s.MeshCount()},
		{"materials", s.MaterialCount()},
		{"objects", s.ObjectCount()},
		{"lights", s.LightCount()},
	}
	for _, c := range counts {
		if c.got != 1 {
			t.Errorf("expected 1 %s, got %d", c.name, c.got)
		}
	}
}

func TestParse_Defaults(t *testing.T) {
	s := parse(t, `[scene]
[resources]
[material]
[/material]
[/resources]
[objects]
[obj]
[/obj]
[/objects]
[lights]
[light]
[/light]
[/lights]
[/scene]`)

	if diff := cmp.Diff([]Material{NewMaterial()}, s.Materials()); diff != "" {
		t.Errorf("material defaults mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]Object{NewObject()}, s.Objects()); diff != "" {
		t.Errorf("object defaults mismatch (-want +got):\n%s", diff)
	}

	l := s.Lights()[0]
	if l.Type != LightPoint {
		t.Errorf("expected point light, got %s", l.Type)
	}
	if l.DiffuseColor != math.Splat(1) || l.SpecularColor != math.Splat(1) {
		t.Errorf("expected white colors, got %v / %v", l.DiffuseColor, l.SpecularColor)
	}
	if l.DiffuseIntensity != 1 || l.SpecularIntensity != 1 {
		t.Errorf("expected intensities 1, got %v / %v", l.DiffuseIntensity, l.SpecularIntensity)
	}
	if l.Range != 64 {
		t.Errorf("expected range 64, got %v", l.Range)
	}
	if !l.Shadows {
		t.Error("expected shadows on by default")
	}
	if l.ShadowBias != 0.00001 {
		t.Errorf("expected shadow bias 0.00001, got %v", l.ShadowBias)
	}
	if l.ConeInnerAngle != 10 || l.ConeOuterAngle != 12 {
		t.Errorf("expected cone angles 10/12, got %v/%v", l.ConeInnerAngle, l.ConeOuterAngle)
	}
	if !l.Position.IsZero() || !l.Direction.IsZero() {
		t.Errorf("expected zero position and direction, got %v / %v", l.Position, l.Direction)
	}
}

func TestParse_ForwardReferenceStaysUnset(t *testing.T) {
	s := parse(t, `[scene]
[resources]
[material]
name=early
diffuseTex=late
[/material]
[texture]
name=late
file=late.png
[/texture]
[material]
name=after
diffuseTex=late
[/material]
[/resources]
[/scene]`)

	mats := s.Materials()
	if len(mats) != 2 {
		t.Fatalf("expected 2 materials, got %d", len(mats))
	}
	if mats[0].DiffuseTex.Valid() {
		t.Errorf("forward reference resolved to %s, want unset", mats[0].DiffuseTex)
	}
	if i, ok := mats[1].DiffuseTex.Get(); !ok || i != 0 {
		t.Errorf("backward reference = (%d, %v), want (0, true)", i, ok)
	}
	if ref := s.FindTexture("late"); !ref.Equal(RefTo(0)) {
		t.Errorf("FindTexture after load = %s, want 0", ref)
	}
}

func TestParse_DuplicateNamesResolveToFirst(t *testing.T) {
	s := parse(t, `[scene]
[resources]
[mesh]
name=rock
file=a.obj
[/mesh]
[mesh]
name=rock
file=b.obj
[/mesh]
[/resources]
[objects]
[obj]
mesh=rock
[/obj]
[/objects]
[/scene]`)

	if s.MeshCount() != 2 {
		t.Fatalf("expected both duplicate meshes to be kept, got %d", s.MeshCount())
	}
	if got := s.Objects()[0].Mesh; !got.Equal(RefTo(0)) {
		t.Errorf("expected first match (0), got %s", got)
	}
}

func TestParse_UnknownReference(t *testing.T) {
	s := parse(t, `[scene]
[objects]
[obj]
name=ghost
mesh=missing
material=missing
[/obj]
[/objects]
[/scene]`)

	o := s.Objects()[0]
	if o.Mesh.Valid() || o.Material.Valid() {
		t.Errorf("expected unset references, got mesh=%s material=%s", o.Mesh, o.Material)
	}
	if o.Mesh.Index() != -1 {
		t.Errorf("expected Index() -1 for unset, got %d", o.Mesh.Index())
	}
}

func TestParse_CommentsDoNotChangeModel(t *testing.T) {
	var b strings.Builder
	for _, line := range strings.Split(minimalScene, "\n") {
		b.WriteString("// comment before\n")
		b.WriteString(line)
		b.WriteString("\n   // indented comment\n")
	}

	plain := parse(t, minimalScene)
	commented := parse(t, b.String())

	if diff := cmp.Diff(plain.Snapshot(), commented.Snapshot()); diff != "" {
		t.Errorf("comments changed the model (-plain +commented):\n%s", diff)
	}
}

func TestParse_NulAtLineStartEndsInput(t *testing.T) {
	s := parse(t, "[scene]\n[lights]\n\x00[light]\n[/light]\n[/lights]\n[/scene]\n")
	if s.LightCount() != 0 {
		t.Errorf("LightCount() = %d, want 0", s.LightCount())
	}

	s = parse(t, "[scene]\n[lights]\n[light]\x00[/light]\n[/lights]\n[/scene]\n")
	if s.LightCount() != 1 {
		t.Errorf("LightCount() = %d, want 1 when NUL ends a line mid-way", s.LightCount())
	}
}

func TestParse_VectorArity(t *testing.T) {
	tests := []struct {
		name  string
		color string
		want  math.Vec3
	}{
		{"three components", "color=1,2,3", math.Vec3{X: 1, Y: 2, Z: 3}},
		{"two components keep default", "color=1,2", math.Splat(1)},
		{"four components keep default", "color=1,2,3,4", math.Splat(1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := parse(t, "[scene]\n[resources]\n[material]\n"+tt.color+"\n[/material]\n[/resources]\n[/scene]\n")
			if got := s.Materials()[0].Color; got != tt.want {
				t.Errorf("color = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParse_LightFields(t *testing.T) {
	tests := []struct {
		line  string
		check func(t *testing.T, l Light)
	}{
		{"shadows=yes", func(t *testing.T, l Light) {
			if !l.Shadows {
				t.Error("expected shadows=yes to be true")
			}
		}},
		{"shadows=0", func(t *testing.T, l Light) {
			if l.Shadows {
				t.Error("expected shadows=0 to be false")
			}
		}},
		{"shadows=banana", func(t *testing.T, l Light) {
			if l.Shadows {
				t.Error("expected shadows=banana to be false")
			}
		}},
		{"type=directional", func(t *testing.T, l Light) {
			if l.Type != LightDirectional {
				t.Errorf("expected directional, got %s", l.Type)
			}
		}},
		{"type=Spot", func(t *testing.T, l Light) {
			if l.Type != LightPoint {
				t.Errorf("expected unknown type to keep point, got %s", l.Type)
			}
		}},
		{"range=far", func(t *testing.T, l Light) {
			if l.Range != 0 {
				t.Errorf("expected unparsable range to be 0, got %v", l.Range)
			}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			s := parse(t, "[scene]\n[lights]\n[light]\n"+tt.line+"\n[/light]\n[/lights]\n[/scene]\n")
			if s.LightCount() != 1 {
				t.Fatalf("expected 1 light, got %d", s.LightCount())
			}
			tt.check(t, s.Lights()[0])
		})
	}
}

func TestParse_UnknownTypeKeepsPriorValue(t *testing.T) {
	s := parse(t, "[scene]\n[lights]\n[light]\ntype=spot\ntype=laser\n[/light]\n[/lights]\n[/scene]\n")
	if got := s.Lights()[0].Type; got != LightSpot {
		t.Errorf("expected spot to survive an unknown type, got %s", got)
	}
}

func TestParse_ObjectOrder(t *testing.T) {
	objects := "[objects]\n[obj]\nname=first\nmesh=m\n[/obj]\n[obj]\nname=second\n[/obj]\n[obj]\nname=third\nmaterial=x\n[/obj]\n[/objects]\n"
	resourcesA := "[resources]\n[mesh]\nname=m\n[/mesh]\n[material]\nname=x\n[/material]\n[/resources]\n"
	resourcesB := "[resources]\n[material]\nname=x\n[/material]\n[mesh]\nname=m\n[/mesh]\n[/resources]\n"

	for _, res := range []string{resourcesA, resourcesB} {
		s := parse(t, "[scene]\n"+res+objects+"[/scene]\n")

		var names []string
		for _, o := range s.Objects() {
			names = append(names, o.Name)
		}
		if diff := cmp.Diff([]string{"first", "second", "third"}, names); diff != "" {
			t.Errorf("object order mismatch (-want +got):\n%s", diff)
		}
	}
}

func TestParse_ValueTruncatedAtSecondEquals(t *testing.T) {
	s := parse(t, "[scene]\n[resources]\n[texture]\nfile=a=b.png\nname=t\n[/texture]\n[/resources]\n[/scene]\n")
	if got := s.Textures()[0].File; got != "a" {
		t.Errorf("expected value truncated to %q, got %q", "a", got)
	}
}

func TestParse_MalformedStructure(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		check func(t *testing.T, s *Scene)
	}{
		{
			name: "unterminated record is discarded",
			text: "[scene]\n[resources]\n[texture]\nname=a\n[/texture]\n[texture]\nname=b\n",
			check: func(t *testing.T, s *Scene) {
				if s.TextureCount() != 1 || s.Textures()[0].Name != "a" {
					t.Errorf("expected only texture a, got %+v", s.Textures())
				}
			},
		},
		{
			name: "mismatched close inside leaf is ignored",
			text: "[scene]\n[resources]\n[texture]\nname=a\n[/mesh]\nfile=a.png\n[/texture]\n[/resources]\n[/scene]\n",
			check: func(t *testing.T, s *Scene) {
				want := []Texture{{File: "a.png", Name: "a"}}
				if diff := cmp.Diff(want, s.Textures()); diff != "" {
					t.Errorf("textures mismatch (-want +got):\n%s", diff)
				}
			},
		},
		{
			name: "open tag inside leaf is ignored",
			text: "[scene]\n[resources]\n[texture]\nname=a\n[mesh]\nname=b\n[/texture]\n[/resources]\n[/scene]\n",
			check: func(t *testing.T, s *Scene) {
				if s.MeshCount() != 0 {
					t.Errorf("expected no meshes, got %d", s.MeshCount())
				}
				if s.TextureCount() != 1 || s.Textures()[0].Name != "b" {
					t.Errorf("expected texture renamed to b, got %+v", s.Textures())
				}
			},
		},
		{
			name: "leaf tag outside its parent is ignored",
			text: "[scene]\n[obj]\nname=a\n[/obj]\n[/scene]\n",
			check: func(t *testing.T, s *Scene) {
				if s.ObjectCount() != 0 {
					t.Errorf("expected no objects, got %d", s.ObjectCount())
				}
			},
		},
		{
			name: "records outside scene are ignored",
			text: "[resources]\n[texture]\nname=a\n[/texture]\n[/resources]\n",
			check: func(t *testing.T, s *Scene) {
				if !s.IsEmpty() {
					t.Errorf("expected empty scene, got %+v", s.Snapshot())
				}
			},
		},
		{
			name: "tags with attributes or spacing are not tags",
			text: "[scene]\n[resources]\n[texture name=a]\n[ texture ]\n[/resources]\n[/scene]\n",
			check: func(t *testing.T, s *Scene) {
				if s.TextureCount() != 0 {
					t.Errorf("expected no textures, got %d", s.TextureCount())
				}
			},
		},
		{
			name: "unknown keys and bare words are ignored",
			text: "[scene]\nauthor=me\n[resources]\n[mesh]\nname=m\nflavour=salty\njunk\n[/mesh]\n[/resources]\n[/scene]\n",
			check: func(t *testing.T, s *Scene) {
				want := []Mesh{{Name: "m"}}
				if diff := cmp.Diff(want, s.Meshes()); diff != "" {
					t.Errorf("meshes mismatch (-want +got):\n%s", diff)
				}
			},
		},
		{
			name: "scene may be reopened",
			text: "[scene]\n[lights]\n[light]\n[/light]\n[/lights]\n[/scene]\n[scene]\n[lights]\n[light]\n[/light]\n[/lights]\n[/scene]\n",
			check: func(t *testing.T, s *Scene) {
				if s.LightCount() != 2 {
					t.Errorf("expected 2 lights, got %d", s.LightCount())
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, parse(t, tt.text))
		})
	}
}

func TestLoad_EmptySourceResetsScene(t *testing.T) {
	s := New()
	if err := s.Load([]byte(minimalScene)); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if s.IsEmpty() {
		t.Fatal("expected populated scene")
	}

	err := s.Load(nil)
	if !errors.Is(err, ErrEmptySource) {
		t.Errorf("expected ErrEmptySource, got %v", err)
	}
	if !s.IsEmpty() {
		t.Errorf("expected scene to be cleared after failed load, got %+v", s.Snapshot())
	}
}

func TestLoad_ReplacesPreviousContents(t *testing.T) {
	s := New()
	if err := s.Load([]byte(minimalScene)); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if err := s.Load([]byte("[scene]\n[objects]\n[obj]\nname=only\n[/obj]\n[/objects]\n[/scene]\n")); err != nil {
		t.Fatalf("second Load failed: %v", err)
	}
	if s.TextureCount() != 0 || s.ObjectCount() != 1 {
		t.Errorf("expected only the second file's contents, got %+v", s.Snapshot())
	}
}

func TestParse_Deterministic(t *testing.T) {
	var first, second bytes.Buffer
	if err := parse(t, minimalScene).Dump(&first); err != nil {
		t.Fatalf("Dump failed: %v", err)
	}
	if err := parse(t, minimalScene).Dump(&second); err != nil {
		t.Fatalf("Dump failed: %v", err)
	}
	if !bytes.Equal(first.Bytes(), second.Bytes()) {
		t.Errorf("dumps differ:\n%s\n---\n%s", first.String(), second.String())
	}
}

func TestParser_Reusable(t *testing.T) {
	p := NewParser()
	a := p.Parse([]byte("[scene]\n[resources]\n[texture]\nname=a\n"))
	b := p.Parse([]byte("[resources]\n[/texture]\n"))

	if !a.IsEmpty() {
		t.Errorf("expected unterminated texture to be discarded, got %+v", a.Snapshot())
	}
	if !b.IsEmpty() {
		t.Errorf("expected state not to leak between parses, got %+v", b.Snapshot())
	}
}

func TestParse_LogsDegradations(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	p := NewParser(WithLogger(zap.New(core)))

	p.Parse([]byte(`[scene]
[resources]
[material]
color=1,2
specSize=big
diffuseTex=nowhere
shininess=3
[/material]
[/resources]
[lights]
[light]
type=laser
`))

	for _, msg := range []string{
		"malformed vector",
		"malformed number",
		"unresolved reference",
		"unknown key",
		"unknown light type",
		"discarding unterminated record",
		"scene parsed",
	} {
		if logs.FilterMessage(msg).Len() == 0 {
			t.Errorf("expected %q to be logged", msg)
		}
	}

	entry := logs.FilterMessage("unresolved reference").All()[0]
	fields := entry.ContextMap()
	if fields["name"] != "nowhere" {
		t.Errorf("expected name field 'nowhere', got %v", fields["name"])
	}
	if fields["line"] != int64(6) {
		t.Errorf("expected line 6, got %v", fields["line"])
	}
}

func TestParse_LoggingDoesNotChangeModel(t *testing.T) {
	core, _ := observer.New(zapcore.DebugLevel)
	logged := NewParser(WithLogger(zap.New(core))).Parse([]byte(minimalScene))
	silent := NewParser().Parse([]byte(minimalScene))

	if diff := cmp.Diff(silent.Snapshot(), logged.Snapshot()); diff != "" {
		t.Errorf("logger changed the model (-silent +logged):\n%s", diff)
	}
}
