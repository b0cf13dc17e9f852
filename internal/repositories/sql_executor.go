package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/spf13/cast"

	"tenantadmin/internal/domain"
	"tenantadmin/internal/query"
)

const totalColumn = "facet_total"

// SQLExecutor runs query plans against MySQL. Both facets are answered by one statement:
// the count derived table LEFT JOINed to the page derived table, so a page past the end
// still reports the total.
type SQLExecutor struct {
	stbl        sq.StatementBuilderType
	collections map[string]query.Collection
}

func NewSQLExecutor(db *sql.DB, collections ...query.Collection) *SQLExecutor {
	byName := make(map[string]query.Collection, len(collections))
	for _, c := range collections {
		byName[c.Name] = c
	}
	return &SQLExecutor{
		stbl:        sq.StatementBuilder.RunWith(db),
		collections: byName,
	}
}

func (e *SQLExecutor) Execute(ctx context.Context, collection string, plan query.QueryPlan) (query.Result, error) {
	c, ok := e.collections[collection]
	if !ok {
		return query.Result{}, domain.StoreError{Op: collection, Err: fmt.Errorf("unknown collection %q", collection)}
	}

	sb, err := facetSelect(e.stbl, c, plan)
	if err != nil {
		return query.Result{}, domain.StoreError{Op: collection + ": compile", Err: err}
	}

	rows, err := sb.QueryContext(ctx)
	if err != nil {
		return query.Result{}, handleSQLError(collection, c.Name, err)
	}
	defer rows.Close()

	res, err := scanFacet(rows, c)
	if err != nil {
		return query.Result{}, handleSQLError(collection, c.Name, err)
	}
	return res, nil
}

// facetSelect translates plan into a single SELECT returning the total on every row.
func facetSelect(stbl sq.StatementBuilderType, c query.Collection, plan query.QueryPlan) (sq.SelectBuilder, error) {
	where, err := whereOf(plan)
	if err != nil {
		return sq.SelectBuilder{}, err
	}
	if !counts(plan.Total) {
		return sq.SelectBuilder{}, errors.New("plan has no count facet")
	}
	skip, limit := plan.Window()
	if limit <= 0 || skip < 0 {
		return sq.SelectBuilder{}, fmt.Errorf("invalid items window skip=%d limit=%d", skip, limit)
	}

	table := tableOf(c.Name)
	cols := make([]string, 0, len(c.Fields))
	for _, f := range c.Fields {
		cols = append(cols, fmt.Sprintf("`%s` AS `%s`", columnOf(f), f))
	}

	var inner, outer []string
	for _, k := range plan.SortKeys() {
		dir := "ASC"
		if k.Order == query.Descending {
			dir = "DESC"
		}
		inner = append(inner, fmt.Sprintf("`%s` %s", columnOf(k.Field), dir))
		outer = append(outer, fmt.Sprintf("p.`%s` %s", k.Field, dir))
	}

	count := sq.Select("COUNT(*) AS " + totalColumn).From(table)
	page := sq.Select(cols...).From(table)
	if len(where) > 0 {
		count = count.Where(where)
		page = page.Where(where)
	}
	page = page.OrderBy(inner...).Limit(uint64(limit)).Offset(uint64(skip))

	return stbl.
		Select("c."+totalColumn, "p.*").
		FromSelect(count, "c").
		JoinClause(page.Prefix("LEFT JOIN (").Suffix(") p ON 1=1")).
		OrderBy(outer...), nil
}

func whereOf(plan query.QueryPlan) (sq.And, error) {
	where := sq.And{}
	for _, s := range plan.Stages {
		switch s.Kind {
		case query.StageMatchEqual:
			for _, eq := range s.Equal {
				where = append(where, sq.Eq{quote(eq.Field): eq.Value})
			}
		case query.StageMatchRegex:
			for _, re := range s.Regex {
				where = append(where, sq.Expr("REGEXP_LIKE("+quote(re.Field)+", ?, 'i')", re.Pattern))
			}
		case query.StageMatchRange:
			for _, b := range s.Range {
				where = append(where, sq.GtOrEq{quote(b.Field): b.Low}, sq.LtOrEq{quote(b.Field): b.High})
			}
		case query.StageSort:
		default:
			return nil, fmt.Errorf("unsupported stage %s", s.Kind)
		}
	}
	return where, nil
}

func counts(stages []query.Stage) bool {
	for _, s := range stages {
		if s.Kind == query.StageCount {
			return true
		}
	}
	return false
}

func quote(field string) string {
	return "`" + columnOf(field) + "`"
}

func scanFacet(rows *sql.Rows, c query.Collection) (query.Result, error) {
	cols, err := rows.Columns()
	if err != nil {
		return query.Result{}, err
	}

	res := query.Result{Records: []query.Record{}}
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return query.Result{}, err
		}

		rec := query.MapRecord{}
		for i, col := range cols {
			if col == totalColumn {
				if res.Total, err = toInt64(vals[i]); err != nil {
					return query.Result{}, err
				}
				continue
			}
			rec[col] = vals[i]
		}
		// The count side always yields a row; the page side may not.
		if rec[c.Key] == nil {
			continue
		}
		res.Records = append(res.Records, rec)
	}
	if err := rows.Err(); err != nil {
		return query.Result{}, err
	}
	return res, nil
}

func toInt64(v any) (int64, error) {
	if b, ok := v.([]byte); ok {
		v = string(b)
	}
	return cast.ToInt64E(v)
}
