package purge

import (
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/wasilibs/go-re2"

	"housekeeper/internal/core/apperror"
)

// ParamDaysOld is the only named parameter templates may use.
const ParamDaysOld = "daysOld"

const prefixMarker = "{prefix}"

var (
	// "::" is matched first so casts like x::int are left alone.
	namedParam  = re2.MustCompile(`::|:([A-Za-z][A-Za-z0-9_]*)`)
	validPrefix = re2.MustCompile(`^[A-Za-z0-9_]*$`)
)

// ValidPrefix reports whether prefix is safe to splice into table names.
func ValidPrefix(prefix string) bool {
	return validPrefix.MatchString(prefix)
}

// Params are the runtime values bound into a target's template.
type Params struct {
	DaysOld     int
	ScopeID     *int64
	TablePrefix string
}

// MaterializedQuery is a target bound to runtime parameters.
// It is built per invocation and never mutated.
type MaterializedQuery struct {
	target  Target
	table   string
	where   sq.Sqlizer
	scopeID *int64
}

// Target returns the target the query was built from.
func (q MaterializedQuery) Target() Target { return q.target }

// Table returns the prefixed table name.
func (q MaterializedQuery) Table() string { return q.table }

// From renders "table AS operation_table".
func (q MaterializedQuery) From() string { return q.table + " AS " + Alias }

// Where returns the bound predicate.
func (q MaterializedQuery) Where() sq.Sqlizer { return q.where }

// IDColumn is the column chunk bounds apply to.
func (q MaterializedQuery) IDColumn() string { return Column("id") }

// Scoped reports whether a scope clause was applied.
func (q MaterializedQuery) Scoped() bool { return q.scopeID != nil }

// Materialize binds p into t. The scope is applied only if t is scopable.
func Materialize(t Target, p Params) (MaterializedQuery, error) {
	if p.DaysOld < 0 {
		return MaterializedQuery{}, apperror.NewInvalidParameter("daysOld", p.DaysOld, "must not be negative")
	}
	if !ValidPrefix(p.TablePrefix) {
		return MaterializedQuery{}, apperror.NewInvalidParameter("tablePrefix", p.TablePrefix, "only letters, digits and underscore are allowed")
	}

	sql, args, err := bindNamed(
		strings.ReplaceAll(t.Predicate, prefixMarker, p.TablePrefix),
		map[string]any{ParamDaysOld: p.DaysOld},
	)
	if err != nil {
		return MaterializedQuery{}, err
	}

	where := sq.And{sq.Expr(sql, args...)}

	var scopeID *int64
	if p.ScopeID != nil && t.Scopable() {
		id := *p.ScopeID
		scopeID = &id
		where = append(where, sq.Expr(Column(t.ScopeColumn)+" = ?", id))
	}
	if t.Kind == KindRedact {
		where = append(where, sq.Expr(Column(t.RedactColumn)+" IS NOT NULL"))
	}

	return MaterializedQuery{
		target:  t,
		table:   p.TablePrefix + t.Table,
		where:   where,
		scopeID: scopeID,
	}, nil
}

// bindNamed rewrites :name parameters to positional ? placeholders
// and collects their values in order of appearance.
func bindNamed(template string, values map[string]any) (string, []any, error) {
	var (
		args    []any
		missing string
	)
	sql := namedParam.ReplaceAllStringFunc(template, func(m string) string {
		if m == "::" {
			return m
		}
		name := m[1:]
		v, ok := values[name]
		if !ok {
			if missing == "" {
				missing = name
			}
			return m
		}
		args = append(args, v)
		return "?"
	})
	if missing != "" {
		return "", nil, apperror.NewInvalidParameter(missing, nil, "no value bound for template parameter")
	}
	return sql, args, nil
}

// templateParams lists the named parameters used by template.
func templateParams(template string) []string {
	var names []string
	for _, m := range namedParam.FindAllStringSubmatch(template, -1) {
		if m[1] != "" {
			names = append(names, m[1])
		}
	}
	return names
}
