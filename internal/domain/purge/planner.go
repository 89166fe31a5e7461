package purge

import (
	"housekeeper/internal/core/apperror"
)

// Operation is one caller request entry.
type Operation struct {
	Target  TargetID
	Enabled bool
}

// OperationSet is the ordered list of requested operations.
type OperationSet []Operation

// Enable builds an OperationSet with every given target enabled.
func Enable(ids ...TargetID) OperationSet {
	ops := make(OperationSet, 0, len(ids))
	for _, id := range ids {
		ops = append(ops, Operation{Target: id, Enabled: true})
	}
	return ops
}

// PlanStep is one target of an execution plan.
type PlanStep struct {
	Target Target
	// ScopeID is set only on the scopable target.
	ScopeID *int64
}

// ExecutionPlan is the ordered, deduplicated list of targets to run.
type ExecutionPlan struct {
	Steps []PlanStep
	// ScopeDropped is true when a scope was requested but no planned
	// target accepts one.
	ScopeDropped bool
}

// TargetIDs lists the planned target ids in order.
func (p ExecutionPlan) TargetIDs() []TargetID {
	ids := make([]TargetID, len(p.Steps))
	for i, s := range p.Steps {
		ids[i] = s.Target.ID
	}
	return ids
}

// Planner expands operation sets against a registry.
type Planner struct {
	registry *Registry
}

// NewPlanner creates a planner over registry.
func NewPlanner(registry *Registry) *Planner {
	return &Planner{registry: registry}
}

// Plan validates ops and expands it into an execution plan.
//
// An empty or all-disabled set selects the registry defaults. Every id in
// ops must exist, enabled or not. Redaction cannot be combined with
// deletion. Implied targets are placed immediately before the target that
// implies them. The first occurrence of an id decides its position.
func (p *Planner) Plan(ops OperationSet, scopeID *int64) (ExecutionPlan, error) {
	var requested []TargetID
	seen := make(map[TargetID]bool, len(ops))
	for _, op := range ops {
		if _, err := p.registry.Lookup(op.Target); err != nil {
			return ExecutionPlan{}, err
		}
		if op.Enabled && !seen[op.Target] {
			seen[op.Target] = true
			requested = append(requested, op.Target)
		}
	}
	if len(requested) == 0 {
		requested = p.registry.Defaults()
	}

	if err := p.checkCombination(requested); err != nil {
		return ExecutionPlan{}, err
	}

	var (
		plan    ExecutionPlan
		planned = make(map[TargetID]bool)
		scoped  bool
	)
	var add func(id TargetID)
	add = func(id TargetID) {
		if planned[id] {
			return
		}
		planned[id] = true
		t, _ := p.registry.lookup(id)
		for _, implied := range t.Implies {
			add(implied)
		}

		step := PlanStep{Target: t}
		if scopeID != nil && t.Scopable() {
			id := *scopeID
			step.ScopeID = &id
			scoped = true
		}
		plan.Steps = append(plan.Steps, step)
	}
	for _, id := range requested {
		add(id)
	}

	plan.ScopeDropped = scopeID != nil && !scoped
	return plan, nil
}

func (p *Planner) checkCombination(ids []TargetID) error {
	var redact, del []string
	for _, id := range ids {
		t, _ := p.registry.lookup(id)
		if t.Kind == KindRedact {
			redact = append(redact, string(id))
		} else {
			del = append(del, string(id))
		}
	}
	if len(redact) > 0 && len(del) > 0 {
		return apperror.NewInvalidCombination(
			"redaction cannot be combined with deletion in one run",
			append(redact, del...)...,
		)
	}
	return nil
}
