// Package tools hosts the small calculator-style utilities exposed under
// /v1/tools. Each tool validates its own parameters; the registry only
// dispatches by id.
package tools

import (
	"errors"
	"fmt"
)

var ErrUnknownTool = errors.New("unknown tool")

// ParamError marks a user-correctable parameter problem, as opposed to an
// internal failure.
type ParamError struct {
	msg string
}

func (e *ParamError) Error() string { return e.msg }

func paramErrorf(format string, args ...any) error {
	return &ParamError{msg: fmt.Sprintf(format, args...)}
}

func IsParamError(err error) bool {
	var pe *ParamError
	return errors.As(err, &pe)
}

type Tool interface {
	ID() string
	Title() string
	Description() string
	Run(params map[string]any) (any, error)
}

type Descriptor struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

type Registry struct {
	tools map[string]Tool
	order []string
}

func NewRegistry(ts ...Tool) *Registry {
	r := &Registry{tools: map[string]Tool{}}
	for _, t := range ts {
		r.tools[t.ID()] = t
		r.order = append(r.order, t.ID())
	}
	return r
}

// DefaultRegistry returns the registry with every built-in tool.
func DefaultRegistry() *Registry {
	return NewRegistry(
		CGPACalculator{},
		StudyPlanner{},
		AttendanceTracker{},
	)
}

func (r *Registry) List() []Descriptor {
	out := make([]Descriptor, 0, len(r.order))
	for _, id := range r.order {
		t := r.tools[id]
		out = append(out, Descriptor{ID: t.ID(), Title: t.Title(), Description: t.Description()})
	}
	return out
}

func (r *Registry) Run(id string, params map[string]any) (any, error) {
	t, ok := r.tools[id]
	if !ok {
		return nil, ErrUnknownTool
	}
	return t.Run(params)
}

// JSON numbers decode as float64; these helpers pull typed values out of the
// raw parameter map.

func floatParam(params map[string]any, name string) (float64, error) {
	raw, ok := params[name]
	if !ok {
		return 0, paramErrorf("missing parameter %q", name)
	}
	f, ok := raw.(float64)
	if !ok {
		return 0, paramErrorf("parameter %q must be a number", name)
	}
	return f, nil
}

func listParam(params map[string]any, name string) ([]map[string]any, error) {
	raw, ok := params[name]
	if !ok {
		return nil, paramErrorf("missing parameter %q", name)
	}
	items, ok := raw.([]any)
	if !ok || len(items) == 0 {
		return nil, paramErrorf("parameter %q must be a non-empty list", name)
	}

	out := make([]map[string]any, 0, len(items))
	for i, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, paramErrorf("parameter %q: entry %d must be an object", name, i)
		}
		out = append(out, m)
	}
	return out, nil
}
