// Package source is the registry of collection schedule sources. Each source
// registers itself with a factory that builds it from loosely typed
// arguments, the way an aggregator's configuration hands them over.
package source

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"

	"wcs-backend/lib/collection"
	"wcs-backend/lib/textutil"

	"github.com/antzucaro/matchr"
	"github.com/morikuni/failure/v2"
	"github.com/samber/lo"
)

type ErrorCode string

const (
	ErrUnknownSource   ErrorCode = "UnknownSource"
	ErrMissingArgument ErrorCode = "MissingArgument"
	ErrInvalidArgument ErrorCode = "InvalidArgument"
)

// Source fetches the upcoming collections of a single property.
type Source interface {
	Fetch(ctx context.Context) ([]collection.Collection, error)
}

// Args are the constructor arguments of a source, keyed by name.
type Args map[string]any

type Info struct {
	Name        string
	Title       string
	Description string
	URL         string
	// TestCases are known good arguments, keyed by a human readable label.
	TestCases map[string]Args
}

type Factory func(args Args) (Source, error)

type entry struct {
	info    Info
	factory Factory
}

var (
	registryLock sync.RWMutex
	registry     = map[string]entry{}
)

// Register makes a source available under info.Name, it panics on duplicate
// names since registration happens at init time.
func Register(info Info, factory Factory) {
	registryLock.Lock()
	defer registryLock.Unlock()

	name := textutil.NormalizeName(info.Name)
	if _, exists := registry[name]; exists {
		panic(fmt.Sprintf("source %q registered twice", info.Name))
	}
	registry[name] = entry{info: info, factory: factory}
}

func lookup(name string) (entry, error) {
	registryLock.RLock()
	defer registryLock.RUnlock()

	e, ok := registry[textutil.NormalizeName(name)]
	if !ok {
		ctx := failure.Context{"source": name}
		if suggestion := suggest(name); suggestion != "" {
			ctx["suggestion"] = suggestion
			return entry{}, failure.New(
				ErrUnknownSource,
				failure.Message(fmt.Sprintf("unknown source %q, did you mean %q?", name, suggestion)),
				ctx,
			)
		}
		return entry{}, failure.New(
			ErrUnknownSource,
			failure.Message(fmt.Sprintf("unknown source %q", name)),
			ctx,
		)
	}
	return e, nil
}

func Lookup(name string) (Info, error) {
	e, err := lookup(name)
	if err != nil {
		return Info{}, err
	}
	return e.info, nil
}

// New builds the named source from args.
func New(name string, args Args) (Source, error) {
	e, err := lookup(name)
	if err != nil {
		return nil, err
	}
	return e.factory(args)
}

// All returns every registered source sorted by name.
func All() []Info {
	registryLock.RLock()
	defer registryLock.RUnlock()

	infos := lo.Map(lo.Values(registry), func(e entry, _ int) Info {
		return e.info
	})
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].Name < infos[j].Name
	})
	return infos
}

// suggestions further than this are not worth showing
const maxSuggestionDistance = 3

// must be called with registryLock held
func suggest(name string) string {
	normalized := textutil.NormalizeName(name)
	best := ""
	bestDistance := maxSuggestionDistance + 1
	for _, candidate := range lo.Keys(registry) {
		distance := matchr.Levenshtein(normalized, candidate)
		if distance < bestDistance || (distance == bestDistance && candidate < best) {
			best = candidate
			bestDistance = distance
		}
	}
	return best
}

// String returns args[key] as a string, numbers are formatted in base 10.
func (a Args) String(key string) (string, error) {
	value, ok := a[key]
	if !ok || value == nil {
		return "", failure.New(
			ErrMissingArgument,
			failure.Message(fmt.Sprintf("missing argument %q", key)),
			failure.Context{"argument": key},
		)
	}

	switch v := value.(type) {
	case string:
		if v == "" {
			return "", failure.New(
				ErrMissingArgument,
				failure.Message(fmt.Sprintf("argument %q is empty", key)),
				failure.Context{"argument": key},
			)
		}
		return v, nil
	case int:
		return strconv.Itoa(v), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case float64:
		// json numbers decode into float64
		if v != float64(int64(v)) {
			break
		}
		return strconv.FormatInt(int64(v), 10), nil
	}

	return "", failure.New(
		ErrInvalidArgument,
		failure.Message(fmt.Sprintf("argument %q has unsupported type %T", key, value)),
		failure.Context{"argument": key},
	)
}
