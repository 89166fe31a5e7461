// Package purge implements retention housekeeping: a catalogue of purge
// targets, the planner that turns an operator request into an ordered plan,
// and the service that estimates or executes that plan in bounded id windows.
package purge

import "fmt"

// TargetID is the stable identifier of a purge target.
type TargetID string

// Kind selects how a target mutates matching rows.
type Kind int

const (
	// KindDelete removes matching rows.
	KindDelete Kind = iota
	// KindRedact sets one column of matching rows to NULL.
	KindRedact
)

func (k Kind) String() string {
	switch k {
	case KindDelete:
		return "delete"
	case KindRedact:
		return "redact"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Alias is the table alias every predicate template refers to.
const Alias = "operation_table"

// Target describes one retention rule over one table.
type Target struct {
	ID TargetID

	// Table is the unprefixed table name.
	Table string

	Kind Kind

	// Predicate is a SQL boolean expression over Alias. It may contain the
	// {prefix} placeholder for subquery tables and the :daysOld parameter.
	Predicate string

	// RedactColumn is the column set to NULL (KindRedact only).
	RedactColumn string

	// ScopeColumn, when set, lets a request narrow the target to one
	// campaign via "Alias.ScopeColumn = scopeID".
	ScopeColumn string

	// Implies lists targets that must run before this one.
	Implies []TargetID
}

// Scopable reports whether the target accepts a scope id.
func (t Target) Scopable() bool {
	return t.ScopeColumn != ""
}

// Column qualifies column with the target alias.
func Column(column string) string {
	return Alias + "." + column
}
