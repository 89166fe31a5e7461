package purge

import (
	"strconv"
	"strings"
)

// Mode tells whether counts are estimates or applied changes.
type Mode int

const (
	ModeEstimated Mode = iota
	ModeExecuted
)

func (m Mode) String() string {
	if m == ModeExecuted {
		return "executed"
	}
	return "estimated"
}

// NotEnabledMessage is reported when the housekeeping feature is off.
const NotEnabledMessage = "Housekeeping is currently not enabled. To use it, enable the housekeeping feature in the integration settings."

// PurgeResult is the outcome for one target.
type PurgeResult struct {
	Target   TargetID
	Kind     Kind
	Affected int64
	Mode     Mode
}

// Report aggregates the results of one run in plan order.
type Report struct {
	Mode     Mode
	Results  []PurgeResult
	Disabled bool
}

// Total sums affected rows over all results.
func (r *Report) Total() int64 {
	var n int64
	for _, res := range r.Results {
		n += res.Affected
	}
	return n
}

// Message renders the report as one sentence group, e.g.
// "3 lead_event_log and 14 page_hits rows would have been deleted. This is a dry run."
func (r *Report) Message() string {
	if r.Disabled {
		return NotEnabledMessage
	}

	var deleted, redacted []string
	for _, res := range r.Results {
		part := strconv.FormatInt(res.Affected, 10) + " " + string(res.Target)
		if res.Kind == KindRedact {
			redacted = append(redacted, part)
		} else {
			deleted = append(deleted, part)
		}
	}

	var clauses []string
	if len(deleted) > 0 {
		verb := " rows would have been deleted."
		if r.Mode == ModeExecuted {
			verb = " rows have been deleted."
		}
		clauses = append(clauses, joinParts(deleted)+verb)
	}
	if len(redacted) > 0 {
		verb := " will be set to NULL."
		if r.Mode == ModeExecuted {
			verb = " have been set to NULL."
		}
		clauses = append(clauses, joinParts(redacted)+verb)
	}
	if len(clauses) == 0 {
		return ""
	}

	msg := strings.Join(clauses, " ")
	if r.Mode == ModeEstimated {
		msg += " This is a dry run."
	}
	return msg
}

// joinParts renders "a, b and c".
func joinParts(parts []string) string {
	if len(parts) == 1 {
		return parts[0]
	}
	return strings.Join(parts[:len(parts)-1], ", ") + " and " + parts[len(parts)-1]
}
