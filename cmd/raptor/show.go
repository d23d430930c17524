package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/raptorforge/raptor/build"
	"github.com/raptorforge/raptor/cache"
)

// ShowCmd prints each built layer's identity and recorded ENTRYPOINT/CMD.
// With no Dirs given, it scans the default "layers/" cache directory.
type ShowCmd struct {
	Dirs []string `arg:"" optional:"" help:"Layer directories to show (default: every layer under layers/)"`
}

func (c *ShowCmd) Run(g *Globals) error {
	dirs := c.Dirs
	if len(dirs) == 0 {
		var err error
		dirs, err = defaultLayerDirs()
		if err != nil {
			return err
		}
	}

	for _, dir := range dirs {
		info, err := cache.ParseLayerInfo(filepath.Base(dir))
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", dir, err)
			continue
		}

		fmt.Printf("%s\t%s\n", info.Name, info.HashHex())

		meta, err := build.ReadMetadata(dir)
		if err != nil {
			continue
		}
		if len(meta.Entrypoint) > 0 {
			fmt.Printf("  entrypoint: %v\n", meta.Entrypoint)
		}
		if len(meta.Cmd) > 0 {
			fmt.Printf("  cmd: %v\n", meta.Cmd)
		}
		for k, v := range meta.Labels {
			fmt.Printf("  label: %s=%s\n", k, v)
		}
	}

	return nil
}

// defaultLayerDirs lists every completed layer directory under
// "layers/", skipping the "build-"-prefixed work directories of builds
// still in progress.
func defaultLayerDirs() ([]string, error) {
	entries, err := os.ReadDir("layers")
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading layers directory: %w", err)
	}

	var dirs []string
	for _, e := range entries {
		if !e.IsDir() || strings.HasPrefix(e.Name(), "build-") {
			continue
		}
		dirs = append(dirs, filepath.Join("layers", e.Name()))
	}
	return dirs, nil
}
