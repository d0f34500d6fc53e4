// Package backend selects a renderer implementation by name.
package backend

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ByLCY/vitae/renderer"
	canvasrenderer "github.com/ByLCY/vitae/renderer/canvas"
	fpdfrenderer "github.com/ByLCY/vitae/renderer/fpdf"
)

// Known backend names.
const (
	FPDF    = "fpdf"
	Canvas  = "canvas"
	Default = FPDF
)

var constructors = map[string]func() renderer.Backend{
	FPDF:   func() renderer.Backend { return fpdfrenderer.NewRenderer() },
	Canvas: func() renderer.Backend { return canvasrenderer.NewRenderer() },
}

// New returns a fresh backend; an empty name selects Default.
func New(name string) (renderer.Backend, error) {
	key, err := lookup(name)
	if err != nil {
		return nil, err
	}
	return constructors[key](), nil
}

// Check reports whether name selects a registered backend without building one.
func Check(name string) error {
	_, err := lookup(name)
	return err
}

func lookup(name string) (string, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		key = Default
	}
	if _, ok := constructors[key]; !ok {
		return "", fmt.Errorf("未知的渲染后端 %q（可选：%s）", name, strings.Join(Names(), ", "))
	}
	return key, nil
}

// Names lists the registered backends in sorted order.
func Names() []string {
	out := make([]string, 0, len(constructors))
	for name := range constructors {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Set caches one backend per name for callers that render repeatedly, such
// as the HTTP server. Backends are safe for concurrent use.
type Set struct {
	backends map[string]renderer.Backend
}

// NewSet builds every registered backend up front.
func NewSet() *Set {
	s := &Set{backends: map[string]renderer.Backend{}}
	for name, ctor := range constructors {
		s.backends[name] = ctor()
	}
	return s
}

// Get returns the cached backend for name; an empty name selects Default.
func (s *Set) Get(name string) (renderer.Backend, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		key = Default
	}
	b, ok := s.backends[key]
	if !ok {
		return nil, fmt.Errorf("未知的渲染后端 %q（可选：%s）", name, strings.Join(Names(), ", "))
	}
	return b, nil
}
