package config

import (
	"flag"
	"strings"
)

var (
	flagConfig   = flag.String("config", "", "Path to config file")
	flagDebug    = flag.Bool("debug", false, "Enable debug logging")
	flagEncoding = flag.String("encoding", "", "Charset of scene files (utf-8, euc-kr, latin1, ...)")
	flagPath     = flag.String("path", "", "Comma-separated search paths for scenes and resources")
	flagLog      = flag.String("log", "", "Write logs to this file")
	flagStrict   = flag.Bool("strict", false, "Report unset references as problems in check")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// Args returns the non-flag arguments.
func Args() []string {
	return flag.Args()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagEncoding != "" {
		cfg.Source.Encoding = *flagEncoding
	}
	if *flagPath != "" {
		for _, p := range strings.Split(*flagPath, ",") {
			if p = strings.TrimSpace(p); p != "" {
				cfg.Source.SearchPaths = append(cfg.Source.SearchPaths, p)
			}
		}
	}
	if *flagLog != "" {
		cfg.Logging.LogFile = *flagLog
	}
	if *flagStrict {
		cfg.Check.FailOnUnset = true
	}
}
