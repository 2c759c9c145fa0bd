package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"dgen/internal/config"
	"dgen/internal/decoder"
	"dgen/internal/gen"
	"dgen/internal/tables"
)

func addOptionFlags(cmd *cobra.Command) {
	cmd.Flags().String("config", "", "options file (TOML, keys at the top level)")
	cmd.Flags().StringArray("set", nil, "override one option (key=value, repeatable)")
}

// loadOptions starts from base (the defaults when nil), replaces it with
// --config when given and applies every --set on top.
func loadOptions(cmd *cobra.Command, base *config.Config) (*config.Config, error) {
	cfg := config.Default()
	if base != nil {
		cfg = base.Clone()
	}
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("failed to get config flag: %w", err)
	}
	if path != "" {
		cfg, err = config.Load(path)
		if err != nil {
			return nil, err
		}
	}
	pairs, err := cmd.Flags().GetStringArray("set")
	if err != nil {
		return nil, fmt.Errorf("failed to get set flag: %w", err)
	}
	if err := cfg.SetAll(pairs); err != nil {
		return nil, err
	}
	return cfg, nil
}

// findManifest looks for dgen.toml from the working directory upwards.
func findManifest() (*config.Manifest, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	path, ok, err := config.FindManifest(wd)
	if err != nil || !ok {
		return nil, err
	}
	return config.LoadManifest(path)
}

// augmented loads a table file and binds its classes with the options of cmd.
func augmented(cmd *cobra.Command, path string) (*decoder.Decoder, error) {
	dec, err := tables.Load(path)
	if err != nil {
		return nil, err
	}
	cfg, err := loadOptions(cmd, nil)
	if err != nil {
		return nil, err
	}
	g := &gen.Generator{Config: cfg}
	return g.Augment(cmd.Context(), dec)
}
