// Package directives implements the block directives that can appear in
// page bodies. The set is closed: handlers are dispatched by name
// through a static registry rather than runtime registration.
package directives

import (
	"fmt"
	"log/slog"
	"strconv"

	"git.home.luguber.info/inful/blogbuilder/internal/thumbnail"
)

// Invocation is one directive occurrence in a page body.
type Invocation struct {
	Name    string
	Arg     string            // positional argument, may be empty
	Options map[string]string // :option: values; flags have empty values
	Content []byte            // dedented body content of the directive
	Line    int               // 1-based source line of the marker
}

// Context carries the per-document collaborators a handler needs. The
// thumbnail generator is passed in explicitly rather than reached
// through globals.
type Context struct {
	DocDir string // absolute directory of the containing document
	Thumbs *thumbnail.Generator
	Log    *slog.Logger

	// DefaultThumbSize, when positive, replaces the built-in default
	// for directives that take a :thumbsize: option.
	DefaultThumbSize int
}

// Handler renders one directive invocation into an HTML fragment.
type Handler interface {
	Name() string
	Render(ctx *Context, inv *Invocation) (string, error)
}

// Registry is the static name-to-handler mapping.
type Registry struct {
	handlers map[string]Handler
}

// NewRegistry returns the registry with the built-in handler set.
func NewRegistry() *Registry {
	r := &Registry{handlers: make(map[string]Handler)}
	for _, h := range []Handler{ThumbImg{}, Gallery{}} {
		r.handlers[h.Name()] = h
	}
	return r
}

// Lookup resolves a directive name.
func (r *Registry) Lookup(name string) (Handler, bool) {
	h, ok := r.handlers[name]
	return h, ok
}

// Names lists the registered directive names.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	return names
}

// intOption parses an integer option, applying def when absent.
func intOption(opts map[string]string, key string, def int) (int, error) {
	raw, ok := opts[key]
	if !ok {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("option :%s: must be a positive integer, got %q", key, raw)
	}
	return n, nil
}

// flagOption reports presence of a valueless option.
func flagOption(opts map[string]string, key string) bool {
	_, ok := opts[key]
	return ok
}
