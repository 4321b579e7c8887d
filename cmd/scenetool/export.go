package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Faultbox/scenefile/pkg/scene"
)

func (a *app) cmdExport(args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	format := fs.String("format", "yaml", "Output format: yaml or json")
	output := fs.String("o", "", "Output file (default stdout)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := sceneArg(fs, "export [-format yaml|json] [-o out] <file.scene>")
	if err != nil {
		return err
	}

	s, err := a.load(id)
	if err != nil {
		return err
	}

	data, err := encodeSnapshot(s.Snapshot(), *format)
	if err != nil {
		return err
	}

	if *output == "" {
		_, err = a.stdout.Write(data)
		return err
	}
	if err := os.WriteFile(*output, data, 0644); err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "Exported: %s (%d bytes)\n", *output, len(data))
	return nil
}

func encodeSnapshot(snap scene.Snapshot, format string) ([]byte, error) {
	switch format {
	case "yaml", "yml":
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(snap); err != nil {
			return nil, err
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case "json":
		data, err := json.MarshalIndent(snap, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	default:
		return nil, fmt.Errorf("unknown export format %q (want yaml or json)", format)
	}
}
