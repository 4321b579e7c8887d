package main

import (
	"errors"
	"flag"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/ftrvxmtrx/tga"
	"go.uber.org/zap"

	"github.com/Faultbox/scenefile/pkg/scene"
)

// errCheckFailed signals that check found problems; they are already printed.
var errCheckFailed = errors.New("check failed")

func (a *app) cmdCheck(args []string) error {
	fs := flag.NewFlagSet("check", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := sceneArg(fs, "check <file.scene>")
	if err != nil {
		return err
	}

	path, err := a.loader.Resolve(id)
	if err != nil {
		return err
	}
	s, err := a.load(id)
	if err != nil {
		return err
	}

	c := &checker{
		app:      a,
		w:        a.stdout,
		sceneDir: filepath.Dir(path),
		strict:   a.cfg.Check.FailOnUnset,
	}
	c.textures(s.Textures())
	c.meshes(s.Meshes())
	c.materials(s.Materials())
	c.objects(s.Objects())

	if c.problems > 0 {
		fmt.Fprintf(c.w, "\n%d problem(s) found\n", c.problems)
		return errCheckFailed
	}
	fmt.Fprintln(c.w, "\nOK")
	return nil
}

type checker struct {
	*app
	w        io.Writer
	sceneDir string
	strict   bool
	problems int
}

func (c *checker) problem(format string, args ...any) {
	c.problems++
	fmt.Fprintf(c.w, "  ERROR "+format+"\n", args...)
}

func (c *checker) note(format string, args ...any) {
	fmt.Fprintf(c.w, "  note  "+format+"\n", args...)
}

func (c *checker) textures(textures []scene.Texture) {
	fmt.Fprintf(c.w, "Textures: %d\n", len(textures))
	seen := make(map[string]int)
	for i, t := range textures {
		c.duplicate("texture", t.Name, i, seen)
		if t.File == "" {
			c.problem("texture[%d] %q has no file", i, t.Name)
			continue
		}
		path, ok := c.loader.ResolveResource(t.File, c.sceneDir, c.cfg.Check.ImageExtensions)
		if !ok {
			c.problem("texture[%d] %q: missing %s", i, t.Name, t.File)
			continue
		}
		fmt.Fprintf(c.w, "  texture[%d] %q: %s (%s)\n", i, t.Name, path, c.describeImage(path))
	}
}

func (c *checker) meshes(meshes []scene.Mesh) {
	fmt.Fprintf(c.w, "Meshes: %d\n", len(meshes))
	seen := make(map[string]int)
	for i, m := range meshes {
		c.duplicate("mesh", m.Name, i, seen)
		if m.File == "" {
			c.problem("mesh[%d] %q has no file", i, m.Name)
			continue
		}
		path, ok := c.loader.ResolveResource(m.File, c.sceneDir, nil)
		if !ok {
			c.problem("mesh[%d] %q: missing %s", i, m.Name, m.File)
			continue
		}
		fmt.Fprintf(c.w, "  mesh[%d] %q: %s (%s)\n", i, m.Name, path, fileSize(path))
	}
}

func (c *checker) materials(materials []scene.Material) {
	fmt.Fprintf(c.w, "Materials: %d\n", len(materials))
	seen := make(map[string]int)
	for i, m := range materials {
		c.duplicate("material", m.Name, i, seen)
		c.unset(fmt.Sprintf("material[%d] %q", i, m.Name), "diffuseTex", m.DiffuseTex)
		c.unset(fmt.Sprintf("material[%d] %q", i, m.Name), "normalTex", m.NormalTex)
	}
}

func (c *checker) objects(objects []scene.Object) {
	fmt.Fprintf(c.w, "Objects: %d\n", len(objects))
	for i, o := range objects {
		c.unset(fmt.Sprintf("object[%d] %q", i, o.Name), "mesh", o.Mesh)
		c.unset(fmt.Sprintf("object[%d] %q", i, o.Name), "material", o.Material)
	}
}

// duplicate reports a name already used by an earlier record of the same kind.
// References always resolve to the earliest one.
func (c *checker) duplicate(kind, name string, i int, seen map[string]int) {
	if name == "" {
		return
	}
	if first, ok := seen[name]; ok {
		c.note("%s[%d] reuses name %q; references resolve to %s[%d]", kind, i, name, kind, first)
		return
	}
	seen[name] = i
}

func (c *checker) unset(what, field string, r scene.Ref) {
	if r.Valid() {
		return
	}
	if c.strict {
		c.problem("%s: %s is unset", what, field)
		return
	}
	c.note("%s: %s is unset", what, field)
}

// describeImage returns "WxH, size" for readable images and the decode error otherwise.
func (c *checker) describeImage(path string) string {
	size := fileSize(path)
	w, h, err := imageSize(path)
	if err != nil {
		c.log.Debug("cannot read image", zap.String("path", path), zap.Error(err))
		return size + ", unreadable image"
	}
	return fmt.Sprintf("%dx%d, %s", w, h, size)
}

// imageDecoders picks a header decoder by extension. The tga package
// registers itself with an empty magic string, so image.DecodeConfig would
// hand every format to it.
var imageDecoders = map[string]func(io.Reader) (image.Config, error){
	".png":  png.DecodeConfig,
	".jpg":  jpeg.DecodeConfig,
	".jpeg": jpeg.DecodeConfig,
	".tga":  tga.DecodeConfig,
}

func imageSize(path string) (int, int, error) {
	ext := strings.ToLower(filepath.Ext(path))
	decode, ok := imageDecoders[ext]
	if !ok {
		return 0, 0, fmt.Errorf("unsupported image format %q", ext)
	}

	f, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()

	cfg, err := decode(f)
	if err != nil {
		return 0, 0, err
	}
	return cfg.Width, cfg.Height, nil
}

func fileSize(path string) string {
	info, err := os.Stat(path)
	if err != nil {
		return "?"
	}
	return humanize.Bytes(uint64(info.Size()))
}
