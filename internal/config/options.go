package config

import (
	"fmt"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

// Options is the command-line invocation surface.
type Options struct {
	ConfigPath string `long:"config" env:"NEWSDIGEST_CONFIG" default:"config/config.yaml" description:"Path to YAML configuration file"`
	SecretsDir string `long:"secrets-dir" env:"NEWSDIGEST_SECRETS_DIR" description:"Host secret store directory (one file per secret)"`
	RunNow     bool   `long:"run-now" description:"Execute one pipeline pass and exit"`
	Schedule   bool   `long:"schedule" description:"Register the daily trigger and keep running"`
}

// ParseOptions reads flags and their environment fallbacks. A nil result with
// a nil error means help was requested and printed.
func ParseOptions(args []string) (*Options, error) {
	var opts Options

	parser := flags.NewParser(&opts, flags.Default)

	if _, err := parser.ParseArgs(args); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			return nil, nil
		}
		return nil, fmt.Errorf("parse options: %w", err)
	}

	return &opts, nil
}
