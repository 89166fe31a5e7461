package purge

import (
	"fmt"
	"slices"

	"housekeeper/internal/core/apperror"
)

// Registry is the immutable catalogue of purge targets.
// Safe for concurrent use after construction.
type Registry struct {
	targets []Target
	byID    map[TargetID]int
}

// NewRegistry validates the catalogue and builds a registry.
//
// Rejected catalogues: duplicate ids, implied ids that do not exist,
// cascades between a redact and a delete target, implication cycles,
// more than one scopable target, templates with parameters other than
// :daysOld, and redact targets without a column.
func NewRegistry(targets ...Target) (*Registry, error) {
	r := &Registry{
		targets: make([]Target, 0, len(targets)),
		byID:    make(map[TargetID]int, len(targets)),
	}

	scoped := TargetID("")
	for _, t := range targets {
		if t.ID == "" || t.Table == "" || t.Predicate == "" {
			return nil, fmt.Errorf("target %q: id, table and predicate are required", t.ID)
		}
		if _, dup := r.byID[t.ID]; dup {
			return nil, fmt.Errorf("duplicate target %q", t.ID)
		}
		if t.Kind == KindRedact && t.RedactColumn == "" {
			return nil, fmt.Errorf("redact target %q has no column", t.ID)
		}
		if t.Scopable() {
			if scoped != "" {
				return nil, fmt.Errorf("targets %q and %q are both scopable", scoped, t.ID)
			}
			scoped = t.ID
		}
		for _, name := range templateParams(t.Predicate) {
			if name != ParamDaysOld {
				return nil, fmt.Errorf("target %q: unsupported template parameter :%s", t.ID, name)
			}
		}

		t.Implies = slices.Clone(t.Implies)
		r.byID[t.ID] = len(r.targets)
		r.targets = append(r.targets, t)
	}

	for _, t := range r.targets {
		for _, id := range t.Implies {
			implied, ok := r.lookup(id)
			if !ok {
				return nil, fmt.Errorf("target %q implies unknown target %q", t.ID, id)
			}
			if implied.Kind != t.Kind {
				return nil, fmt.Errorf("target %q (%s) cannot imply %q (%s)", t.ID, t.Kind, id, implied.Kind)
			}
		}
	}

	if err := r.checkCycles(); err != nil {
		return nil, err
	}

	return r, nil
}

// MustDefaultRegistry builds the registry of the built-in catalogue.
func MustDefaultRegistry() *Registry {
	r, err := NewRegistry(DefaultTargets()...)
	if err != nil {
		panic(err)
	}
	return r
}

func (r *Registry) lookup(id TargetID) (Target, bool) {
	i, ok := r.byID[id]
	if !ok {
		return Target{}, false
	}
	return r.targets[i], true
}

// Lookup returns the target with the given id.
func (r *Registry) Lookup(id TargetID) (Target, error) {
	t, ok := r.lookup(id)
	if !ok {
		return Target{}, apperror.NewUnknownTarget(string(id))
	}
	return t, nil
}

// Targets returns all targets in catalogue order.
func (r *Registry) Targets() []Target {
	out := make([]Target, len(r.targets))
	copy(out, r.targets)
	for i := range out {
		out[i].Implies = slices.Clone(out[i].Implies)
	}
	return out
}

// Defaults returns the ids planned when a request enables nothing:
// delete targets that no other target implies, in catalogue order.
func (r *Registry) Defaults() []TargetID {
	implied := make(map[TargetID]bool)
	for _, t := range r.targets {
		for _, id := range t.Implies {
			implied[id] = true
		}
	}

	var ids []TargetID
	for _, t := range r.targets {
		if t.Kind == KindDelete && !implied[t.ID] {
			ids = append(ids, t.ID)
		}
	}
	return ids
}

// Tables returns the distinct prefixed tables touched by the catalogue.
func (r *Registry) Tables(prefix string) []string {
	seen := make(map[string]bool)
	var tables []string
	for _, t := range r.targets {
		name := prefix + t.Table
		if !seen[name] {
			seen[name] = true
			tables = append(tables, name)
		}
	}
	return tables
}

func (r *Registry) checkCycles() error {
	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[TargetID]int, len(r.targets))

	var visit func(id TargetID) error
	visit = func(id TargetID) error {
		switch state[id] {
		case visiting:
			return fmt.Errorf("implication cycle through %q", id)
		case done:
			return nil
		}
		state[id] = visiting
		t, _ := r.lookup(id)
		for _, next := range t.Implies {
			if err := visit(next); err != nil {
				return err
			}
		}
		state[id] = done
		return nil
	}

	for _, t := range r.targets {
		if err := visit(t.ID); err != nil {
			return err
		}
	}
	return nil
}
