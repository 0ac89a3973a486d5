package vision

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// Engine sends one annotation request for one image. It is a transport
// boundary: it returns the backend reply without interpreting annotations.
// Ready reports ErrBackendNotConfigured without doing any I/O.
type Engine interface {
	Name() string
	Ready() error
	Annotate(ctx context.Context, img Image, features []FeatureRequest) (*BatchResponse, error)
}

// Engines holds the configured engines and the deployment default.
type Engines struct {
	def string
	m   map[string]Engine
}

func NewEngines(def string, engines ...Engine) *Engines {
	m := make(map[string]Engine, len(engines))
	for _, e := range engines {
		m[strings.ToLower(e.Name())] = e
	}
	return &Engines{def: strings.ToLower(def), m: m}
}

// Get returns the named engine; an empty name means the default.
func (e *Engines) Get(name string) (Engine, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = e.def
	}
	if eng, ok := e.m[name]; ok {
		return eng, nil
	}
	return nil, fmt.Errorf("unknown engine %q (have %s)", name, strings.Join(e.Names(), ", "))
}

func (e *Engines) Default() (Engine, error) { return e.Get("") }

func (e *Engines) Names() []string {
	out := make([]string, 0, len(e.m))
	for n := range e.m {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
