// scenetool is a CLI utility for inspecting scene description files.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"github.com/Faultbox/scenefile/internal/config"
	"github.com/Faultbox/scenefile/internal/logger"
	"github.com/Faultbox/scenefile/internal/source"
	"github.com/Faultbox/scenefile/pkg/scene"
)

func main() {
	config.ParseFlags()
	os.Exit(run(config.Args(), os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		printUsage(stderr)
		return 1
	}

	command := args[0]
	args = args[1:]

	if command == "help" || command == "-h" || command == "--help" {
		printUsage(stdout)
		return 0
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	if command == "init-config" {
		return report(stderr, cmdInitConfig(cfg, args, stdout))
	}

	if err := logger.Init(cfg.Logging.Level, logger.FileConfig{
		Path:       cfg.Logging.LogFile,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
		Compress:   cfg.Logging.Compress,
	}); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	defer logger.Sync()

	a, err := newApp(cfg, logger.Named("scenetool"), stdout)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	defer a.close()

	switch command {
	case "dump":
		err = a.cmdDump(args)
	case "stats", "info":
		err = a.cmdStats(args)
	case "export":
		err = a.cmdExport(args)
	case "check":
		err = a.cmdCheck(args)
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n", command)
		printUsage(stderr)
		return 1
	}
	return report(stderr, err)
}

func report(stderr io.Writer, err error) int {
	if err == nil {
		return 0
	}
	if !errors.Is(err, errCheckFailed) {
		fmt.Fprintf(stderr, "Error: %v\n", err)
	}
	return 1
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `scenetool - scene description file utility

Usage:
  scenetool [global options] <command> [options]

Commands:
  dump <file.scene>                      Print every parsed record
  stats <file.scene>                     Show record counts and source size
  export [-format yaml|json] [-o out] <file.scene>
                                         Write the parsed model as YAML or JSON
  check <file.scene>                     Verify referenced files and references
  init-config [path]                     Write the default config file

Global options:
  -config <path>     Config file (default ./scenetool.yaml or user config dir)
  -debug             Log parser diagnostics
  -encoding <name>   Charset of scene files (utf-8, euc-kr, shift-jis, latin1, ...)
  -path <dirs>       Comma-separated search paths
  -log <file>        Also log to a rotating file
  -strict            Treat unset references as check failures

Examples:
  scenetool dump demo.scene
  scenetool -debug stats demo.scene
  scenetool export -format json -o demo.json demo.scene
  scenetool -path assets check demo.scene`)
}

// app holds what every scene command needs.
type app struct {
	cfg    *config.Config
	loader *source.Loader
	log    *zap.Logger
	stdout io.Writer
}

func newApp(cfg *config.Config, log *zap.Logger, stdout io.Writer) (*app, error) {
	loader, err := source.NewLoader(source.Options{
		SearchPaths: cfg.Source.SearchPaths,
		Charset:     cfg.Source.Encoding,
		Cache:       cfg.Source.Cache,
		Logger:      log.Named("source"),
	})
	if err != nil {
		return nil, err
	}
	return &app{cfg: cfg, loader: loader, log: log, stdout: stdout}, nil
}

// load parses the scene identified by id.
func (a *app) load(id string) (*scene.Scene, error) {
	s := scene.New()
	if err := a.loader.LoadScene(id, s, scene.WithLogger(a.log.Named("parser"))); err != nil {
		return nil, err
	}
	if s.IsEmpty() {
		a.log.Warn("scene has no records", zap.String("id", id))
	}
	return s, nil
}

func (a *app) close() {
	hits, misses := a.loader.CacheStats()
	a.log.Debug("source cache", zap.Int("hits", hits), zap.Int("misses", misses))
	a.loader.Close()
}

func sceneArg(fs *flag.FlagSet, usage string) (string, error) {
	if fs.NArg() < 1 {
		return "", fmt.Errorf("usage: scenetool %s", usage)
	}
	return fs.Arg(0), nil
}

func (a *app) cmdDump(args []string) error {
	fs := flag.NewFlagSet("dump", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := sceneArg(fs, "dump <file.scene>")
	if err != nil {
		return err
	}

	s, err := a.load(id)
	if err != nil {
		return err
	}
	return s.Dump(a.stdout)
}

func (a *app) cmdStats(args []string) error {
	fs := flag.NewFlagSet("stats", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := sceneArg(fs, "stats <file.scene>")
	if err != nil {
		return err
	}

	path, err := a.loader.Resolve(id)
	if err != nil {
		return err
	}
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	s, err := a.load(id)
	if err != nil {
		return err
	}

	w := a.stdout
	fmt.Fprintf(w, "Scene:      %s\n", path)
	fmt.Fprintf(w, "Size:       %s\n", humanize.Bytes(uint64(info.Size())))
	fmt.Fprintf(w, "Textures:   %d\n", s.TextureCount())
	fmt.Fprintf(w, "Meshes:     %d\n", s.MeshCount())
	fmt.Fprintf(w, "Materials:  %d\n", s.MaterialCount())
	fmt.Fprintf(w, "Objects:    %d\n", s.ObjectCount())
	fmt.Fprintf(w, "Lights:     %d%s\n", s.LightCount(), lightBreakdown(s.Lights()))
	fmt.Fprintf(w, "Unset refs: %d\n", s.UnsetRefs())
	return nil
}

// lightBreakdown formats light counts per type, e.g. " (point 2, spot 1)".
func lightBreakdown(lights []scene.Light) string {
	if len(lights) == 0 {
		return ""
	}
	counts := make(map[scene.LightType]int)
	for _, l := range lights {
		counts[l.Type]++
	}

	types := make([]scene.LightType, 0, len(counts))
	for t := range counts {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })

	parts := make([]string, 0, len(types))
	for _, t := range types {
		parts = append(parts, fmt.Sprintf("%s %d", t, counts[t]))
	}
	return " (" + strings.Join(parts, ", ") + ")"
}

func cmdInitConfig(cfg *config.Config, args []string, stdout io.Writer) error {
	path := config.DefaultPath()
	if len(args) > 0 {
		path = args[0]
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}
	if err := cfg.SaveTo(path); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Wrote %s\n", path)
	return nil
}
