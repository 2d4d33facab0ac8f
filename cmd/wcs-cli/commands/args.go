package commands

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"wcs-backend/lib/configutil"
	"wcs-backend/lib/source"
	"wcs-backend/lib/textutil"

	"github.com/samber/lo"
)

// sourcesConfig maps a normalized source name to its default arguments, it
// is read from sources.json5 (and sources.local.json5).
type sourcesConfig map[string]map[string]any

func readSourcesConfig(path string) (sourcesConfig, error) {
	cfg, err := configutil.ReadConfig[sourcesConfig](path)
	if errors.Is(err, os.ErrNotExist) {
		return sourcesConfig{}, nil
	}
	if err != nil {
		return nil, err
	}
	return lo.MapKeys(cfg, func(_ map[string]any, name string) string {
		return textutil.NormalizeName(name)
	}), nil
}

// parseArgFlags parses repeated key=value flags.
func parseArgFlags(flags []string) (source.Args, error) {
	args := source.Args{}
	for _, flag := range flags {
		key, value, ok := strings.Cut(flag, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid argument %q, expected key=value", flag)
		}
		args[key] = value
	}
	return args, nil
}

// resolveArgs layers the flag arguments over the configured ones.
func resolveArgs(cfg sourcesConfig, name string, flags []string) (source.Args, error) {
	fromFlags, err := parseArgFlags(flags)
	if err != nil {
		return nil, err
	}
	return lo.Assign(source.Args(cfg[textutil.NormalizeName(name)]), fromFlags), nil
}
