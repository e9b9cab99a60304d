// Package preview executes compiled widget queries against an in-memory
// SQLite database.
//
// The engine's compiled output is backend-agnostic; preview is the reference
// consumer that proves the contract end to end: it loads a small dataset,
// renders the parameter map into a SELECT, and returns rows shaped exactly
// like the production backend's (aggregations under the synthetic "value"
// alias), ready for the chart transformer.
package preview

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/roach88/widgetql/internal/catalog"
	"github.com/roach88/widgetql/internal/chart"
	"github.com/roach88/widgetql/internal/filter"
	"github.com/roach88/widgetql/internal/params"
	"github.com/roach88/widgetql/internal/schema"
)

// Executor owns one in-memory SQLite database.
type Executor struct {
	db     *sql.DB
	quoter filter.Quoter
}

// Open creates a fresh in-memory executor.
func Open() (*Executor, error) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("open preview database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect preview database: %w", err)
	}
	// In-memory databases vanish when their last connection closes, so pin
	// the pool to a single connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	return &Executor{db: db, quoter: filter.AnsiQuoter{}}, nil
}

// Close releases the database.
func (e *Executor) Close() error {
	return e.db.Close()
}

// LoadDataset creates the table described by t and inserts the given rows.
// Row values missing a declared column insert as NULL.
func (e *Executor) LoadDataset(t *schema.Table, rows []map[string]any) error {
	if len(t.Columns) == 0 {
		return fmt.Errorf("table %s has no columns", t.TableName)
	}

	defs := make([]string, len(t.Columns))
	names := make([]string, len(t.Columns))
	holes := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		defs[i] = e.quoter.Ident(col.Name) + " " + sqliteType(col.DataType)
		names[i] = e.quoter.Ident(col.Name)
		holes[i] = "?"
	}

	ddl := fmt.Sprintf("CREATE TABLE %s (%s)", e.quoter.Ident(t.TableName), strings.Join(defs, ", "))
	if _, err := e.db.Exec(ddl); err != nil {
		return fmt.Errorf("create table %s: %w", t.TableName, err)
	}

	stmt, err := e.db.Prepare(fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		e.quoter.Ident(t.TableName), strings.Join(names, ", "), strings.Join(holes, ", ")))
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, row := range rows {
		args := make([]any, len(t.Columns))
		for j, col := range t.Columns {
			args[j] = row[col.Name]
		}
		if _, err := stmt.Exec(args...); err != nil {
			return fmt.Errorf("insert row %d: %w", i, err)
		}
	}
	return nil
}

// Run renders the compiled parameters into a SELECT and executes it. Filter
// fragments combine conjunctively. Output always carries a deterministic
// ORDER BY so repeated previews agree.
func (e *Executor) Run(p params.QueryParams) ([]chart.Row, error) {
	query, err := e.renderSQL(p)
	if err != nil {
		return nil, err
	}

	rows, err := e.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("execute preview query: %w", err)
	}
	defer rows.Close()

	return scanRows(rows)
}

// renderSQL builds the SELECT for one compiled parameter map. The parameter
// key set discriminates the widget family: xAxis means chart,
// aggregationColumn means metric, anything else is a plain table scan.
func (e *Executor) renderSQL(p params.QueryParams) (string, error) {
	tableName, _ := p["tableName"].(string)
	if tableName == "" {
		return "", fmt.Errorf("query params missing tableName")
	}
	table := e.quoter.Ident(tableName)
	where := e.whereClause(p)

	if _, isChart := p["xAxis"]; isChart {
		return e.renderChartSQL(p, table, where)
	}
	if _, isMetric := p["aggregationColumn"]; isMetric {
		col, _ := p["aggregationColumn"].(string)
		agg, _ := p["aggregation"].(string)
		return fmt.Sprintf("SELECT %s AS %s FROM %s%s",
			aggExpr(agg, col, e.quoter), e.quoter.Ident(chart.AggregationField), table, where), nil
	}
	return e.renderTableSQL(p, table, where), nil
}

func (e *Executor) renderChartSQL(p params.QueryParams, table, where string) (string, error) {
	xAxis, _ := p["xAxis"].(string)
	if xAxis == "" {
		return "", fmt.Errorf("chart params missing xAxis")
	}
	yAxis, _ := p["yAxis"].(string)
	agg, _ := p["aggregation"].(string)

	xExpr := e.quoter.Ident(xAxis)
	if bucket, ok := p["timeAggregation"].(string); ok {
		xExpr = bucketExpr(bucket, xExpr)
	}

	selects := []string{
		fmt.Sprintf("%s AS %s", xExpr, e.quoter.Ident(xAxis)),
	}
	groupBys := []string{xExpr}

	if groupCol, ok := p["groupBy"].(string); ok {
		selects = append(selects, e.quoter.Ident(groupCol))
		groupBys = append(groupBys, e.quoter.Ident(groupCol))
	}

	if agg != "" {
		selects = append(selects, fmt.Sprintf("%s AS %s",
			aggExpr(agg, yAxis, e.quoter), e.quoter.Ident(chart.AggregationField)))
	} else if yAxis != "" {
		selects = append(selects, e.quoter.Ident(yAxis))
	}

	var group string
	if agg != "" {
		group = " GROUP BY " + strings.Join(groupBys, ", ")
	}

	return fmt.Sprintf("SELECT %s FROM %s%s%s ORDER BY 1",
		strings.Join(selects, ", "), table, where, group), nil
}

func (e *Executor) renderTableSQL(p params.QueryParams, table, where string) string {
	selectList := "*"
	orderBy := "1"
	if props, ok := p["properties"].(map[string]any); ok {
		if cols, ok := props["columns"].([]string); ok && len(cols) > 0 {
			quoted := make([]string, len(cols))
			for i, c := range cols {
				quoted[i] = e.quoter.Ident(c)
			}
			selectList = strings.Join(quoted, ", ")
		}
	}
	if sortBy, ok := p["sortBy"].(string); ok {
		orderBy = e.quoter.Ident(sortBy)
		if order, ok := p["sortOrder"].(string); ok && order == "desc" {
			orderBy += " DESC"
		}
	}

	page, pageSize := paginationOf(p)
	return fmt.Sprintf("SELECT %s FROM %s%s ORDER BY %s LIMIT %d OFFSET %d",
		selectList, table, where, orderBy, pageSize, (page-1)*pageSize)
}

func (e *Executor) whereClause(p params.QueryParams) string {
	fragments, ok := p["filters"].([]string)
	if !ok || len(fragments) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(fragments, " AND ")
}

func paginationOf(p params.QueryParams) (page, pageSize int) {
	page, pageSize = params.DefaultPage, params.DefaultPageSize
	if v, ok := p["page"].(int); ok && v > 0 {
		page = v
	}
	if v, ok := p["pageSize"].(int); ok && v > 0 {
		pageSize = v
	}
	return page, pageSize
}

// aggExpr renders the aggregation select expression. Count with a wildcard
// or empty metric renders COUNT(*).
func aggExpr(agg, column string, q filter.Quoter) string {
	upper := strings.ToUpper(agg)
	if upper == "" {
		upper = "COUNT"
	}
	if column == "" || column == "*" {
		return upper + "(*)"
	}
	return fmt.Sprintf("%s(%s)", upper, q.Ident(column))
}

// bucketExpr maps a time bucket onto a SQLite strftime expression.
func bucketExpr(bucket, colExpr string) string {
	switch params.TimeBucket(bucket) {
	case params.BucketHour:
		return fmt.Sprintf("strftime('%%Y-%%m-%%dT%%H:00:00', %s)", colExpr)
	case params.BucketDay:
		return fmt.Sprintf("strftime('%%Y-%%m-%%d', %s)", colExpr)
	case params.BucketWeek:
		return fmt.Sprintf("strftime('%%Y-W%%W', %s)", colExpr)
	case params.BucketMonth:
		return fmt.Sprintf("strftime('%%Y-%%m', %s)", colExpr)
	case params.BucketQuarter:
		return fmt.Sprintf("strftime('%%Y', %s) || '-Q' || CAST((CAST(strftime('%%m', %s) AS INTEGER) + 2) / 3 AS TEXT)", colExpr, colExpr)
	case params.BucketYear:
		return fmt.Sprintf("strftime('%%Y', %s)", colExpr)
	default:
		return colExpr
	}
}

// sqliteType maps a catalog data type onto a SQLite storage class.
func sqliteType(dt catalog.DataType) string {
	switch {
	case dt == catalog.TypeInteger || dt == catalog.TypeBigint || dt == catalog.TypeBoolean:
		return "INTEGER"
	case catalog.IsNumeric(dt):
		return "REAL"
	default:
		// Dates, uuids, json, and text all store as TEXT.
		return "TEXT"
	}
}

func scanRows(rows *sql.Rows) ([]chart.Row, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var out []chart.Row
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		row := make(chart.Row, len(cols))
		for i, name := range cols {
			if b, ok := vals[i].([]byte); ok {
				row[name] = string(b)
			} else {
				row[name] = vals[i]
			}
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
