package content

import (
	"errors"
	"fmt"
	"slices"
)

// Validate checks the content for problems the page cannot render around.
// All problems are reported together.
func (s *Site) Validate() error {
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	if s.Hero.Title == "" {
		add("hero title is required")
	}

	ids := make(map[string]bool)
	for i, f := range s.Features {
		if f.ID == "" {
			add("feature %d: id is required", i)
		} else if ids[f.ID] {
			add("feature %q: duplicate id", f.ID)
		}
		ids[f.ID] = true
	}

	ids = make(map[string]bool)
	for i, step := range s.QuickStart {
		if step.ID == "" {
			add("quick start step %d: id is required", i)
		} else if ids[step.ID] {
			add("quick start step %q: duplicate id", step.ID)
		}
		ids[step.ID] = true
		if step.Number != i+1 {
			add("quick start step %q: number %d, want %d", step.ID, step.Number, i+1)
		}
	}

	ids = make(map[string]bool)
	for i, ex := range s.CodeExamples {
		if ex.ID == "" {
			add("code example %d: id is required", i)
		} else if ids[ex.ID] {
			add("code example %q: duplicate id", ex.ID)
		}
		ids[ex.ID] = true
		if !slices.Contains(Languages, ex.Language) {
			add("code example %q: unknown language %q", ex.ID, ex.Language)
		}
	}

	nodes := make(map[string]bool)
	for i, n := range s.Architecture.Nodes {
		if n.ID == "" {
			add("architecture node %d: id is required", i)
		} else if nodes[n.ID] {
			add("architecture node %q: duplicate id", n.ID)
		}
		nodes[n.ID] = true
		switch n.Type {
		case NodeClient, NodeCDN, NodeStorage, NodeDeployment:
		default:
			add("architecture node %q: unknown type %q", n.ID, n.Type)
		}
	}
	for _, f := range s.Architecture.Flows {
		if !nodes[f.From] {
			add("flow %s->%s: unknown node %q", f.From, f.To, f.From)
		}
		if !nodes[f.To] {
			add("flow %s->%s: unknown node %q", f.From, f.To, f.To)
		}
	}

	for _, l := range s.Nav {
		if l.Section == "" {
			add("nav link %q: section is required", l.Label)
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
}
