package rdbms

import (
	"context"
	"database/sql"
	"strings"

	"github.com/pkg/errors"
	"github.com/relloyd/snowxfer/logger"
	"github.com/relloyd/snowxfer/rdbms/shared"
)

// SqlQuery runs sqltext and sends the column names followed by every row to handler i.
func SqlQuery(ctx context.Context, log logger.Logger, db shared.Connector, sqltext string, i shared.SqlResultHandler) error {
	return SqlQueryWithArgs(ctx, log, db, sqltext, nil, i)
}

// SqlQueryWithArgs is SqlQuery with bind values.
func SqlQueryWithArgs(ctx context.Context, log logger.Logger, db shared.Connector, sqltext string, args []interface{}, i shared.SqlResultHandler) error {
	rows, err := db.QueryContext(ctx, sqltext, args...)
	if err != nil {
		return errors.Wrapf(err, "error during database query using SQL: '%v'", sqltext)
	}
	defer func() {
		_ = rows.Close()
	}()
	// Set up column types for Scan(...)
	log.Debug("fetching column types...")
	colTypes, err := rows.ColumnTypes()
	if err != nil {
		return errors.Wrap(err, "error fetching column types")
	}
	for _, v := range colTypes {
		log.Debug("column ", v.Name(), " scan type = ", v.ScanType())
	}
	// Build and send the header.
	header := make([]interface{}, len(colTypes))
	for idx := range colTypes {
		header[idx] = colTypes[idx].Name()
	}
	if err = i.HandleHeader(header); err != nil {
		return err
	}
	// Send the rows via callback interface.
	scanPtrs, scanVals := NewScanBuffers(len(colTypes))
	for rows.Next() {
		if err = ctx.Err(); err != nil { // quit if asked to...
			return err
		}
		if err = rows.Scan(scanPtrs...); err != nil {
			return errors.Wrap(err, "error scanning row")
		}
		row := make([]interface{}, len(scanVals))
		copy(row, scanVals)
		if err = i.HandleRow(row); err != nil {
			return err
		}
	}
	return rows.Err()
}

// NewScanBuffers returns n pointers for rows.Scan and the values they point at.
func NewScanBuffers(n int) (ptrs []interface{}, vals []interface{}) {
	ptrs = make([]interface{}, n)
	vals = make([]interface{}, n)
	for idx := range vals {
		ptrs[idx] = &vals[idx]
	}
	return
}

// ResultTable collects query output in memory. It implements shared.SqlResultHandler.
type ResultTable struct {
	Header []string
	Rows   [][]interface{}
}

func (r *ResultTable) HandleHeader(i []interface{}) error {
	r.Header = make([]string, len(i))
	for idx, v := range i {
		r.Header[idx] = v.(string)
	}
	return nil
}

func (r *ResultTable) HandleRow(i []interface{}) error {
	r.Rows = append(r.Rows, i)
	return nil
}

// ColumnIndex returns the position of the named column, ignoring case, or -1.
func (r *ResultTable) ColumnIndex(name string) int {
	for idx, h := range r.Header {
		if strings.EqualFold(h, name) {
			return idx
		}
	}
	return -1
}

// QueryTable runs sqltext and returns all of its output.
func QueryTable(ctx context.Context, log logger.Logger, db shared.Connector, sqltext string, args ...interface{}) (*ResultTable, error) {
	r := &ResultTable{}
	if err := SqlQueryWithArgs(ctx, log, db, sqltext, args, r); err != nil {
		return nil, err
	}
	return r, nil
}

// QueryInt64 runs sqltext and scans the first column of its single row.
func QueryInt64(ctx context.Context, db shared.Connector, sqltext string, args ...interface{}) (int64, error) {
	var n sql.NullInt64
	if err := db.QueryRowContext(ctx, sqltext, args...).Scan(&n); err != nil {
		return 0, errors.Wrapf(err, "error running SQL: '%v'", sqltext)
	}
	return n.Int64, nil
}
