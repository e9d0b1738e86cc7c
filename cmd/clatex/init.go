package main

import (
	"errors"
	"fmt"

	flag "github.com/spf13/pflag"

	clatex "github.com/alnah/go-clatex"
	"github.com/alnah/go-clatex/internal/config"
	"github.com/alnah/go-clatex/internal/fileutil"
	"github.com/alnah/go-clatex/internal/yamlutil"
)

// ErrConfigExists is returned by init when the config file already exists.
var ErrConfigExists = errors.New("config file already exists")

// runInitCmd writes a starter config with the default settings and one
// document built from "index".
func runInitCmd(args []string, env *Environment) error {
	flags, positional, err := parseInitFlags(args, env.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return fmt.Errorf("%w: %v", ErrInvalidArgs, err)
	}

	dest := config.DefaultConfigName + ".yaml"
	switch len(positional) {
	case 0:
	case 1:
		dest = positional[0]
	default:
		return fmt.Errorf("%w: expected at most one path, got %d", ErrInvalidArgs, len(positional))
	}
	if fileutil.FileExists(dest) && !flags.force {
		return fmt.Errorf("%w: %s (use --force to overwrite)", ErrConfigExists, dest)
	}

	data, err := yamlutil.Marshal(starterConfig())
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := fileutil.WriteFileAtomic(dest, data); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteOutput, err)
	}
	fmt.Fprintf(env.Stdout, "Created %s\n", dest)
	return nil
}

// starterConfig returns the defaults with a project name and one document.
func starterConfig() *clatex.Config {
	cfg := clatex.DefaultConfig()
	cfg.Project.Name = "Documentation"
	cfg.Project.Date = "today"
	cfg.Documents = []clatex.DocumentConfig{{
		StartDoc: "index",
		Target:   "documentation",
		Title:    "Documentation",
		DocClass: "manual",
	}}
	return cfg
}
