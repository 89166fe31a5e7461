package purge_repo

import (
	"github.com/Masterminds/squirrel"

	"housekeeper/internal/domain/purge"
)

// Builder returns a new squirrel builder with PostgreSQL placeholder format.
func Builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// countStatement: SELECT COUNT(1) FROM t AS operation_table WHERE pred
func countStatement(q purge.MaterializedQuery) squirrel.SelectBuilder {
	return Builder().
		Select("COUNT(1)").
		From(q.From()).
		Where(q.Where())
}

// boundStatement selects MIN or MAX of the id column, 0 when nothing matches.
func boundStatement(q purge.MaterializedQuery, agg string) squirrel.SelectBuilder {
	return Builder().
		Select("COALESCE(" + agg + "(" + q.IDColumn() + "), 0)").
		From(q.From()).
		Where(q.Where())
}

// windowBounds restricts a statement to ids in [w.Lo, w.Hi].
func windowBounds(q purge.MaterializedQuery, w purge.Window) squirrel.Sqlizer {
	return squirrel.Expr("? <= "+q.IDColumn()+" AND "+q.IDColumn()+" <= ?", w.Lo, w.Hi)
}

func deleteStatement(q purge.MaterializedQuery, w purge.Window) squirrel.DeleteBuilder {
	return Builder().
		Delete(q.From()).
		Where(q.Where()).
		Where(windowBounds(q, w))
}

func redactStatement(q purge.MaterializedQuery, w purge.Window) squirrel.UpdateBuilder {
	return Builder().
		Update(q.From()).
		Set(q.Target().RedactColumn, squirrel.Expr("NULL")).
		Where(q.Where()).
		Where(windowBounds(q, w))
}
