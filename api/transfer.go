package api

import (
	"context"
	"fmt"
	"strings"

	"github.com/relloyd/snowxfer/actions"
	"github.com/relloyd/snowxfer/config"
	"github.com/relloyd/snowxfer/constants"
	"github.com/relloyd/snowxfer/stats"
)

const (
	DefaultSampleRows   = 100
	DefaultSampleSuffix = "_sample"
)

// IsQuery reports whether s is a query of the form "(SELECT ...) AS name" rather than a table name.
func IsQuery(s string) bool {
	return strings.HasPrefix(strings.TrimSpace(s), "(")
}

// DeriveDestination returns the alias of a query, QUERY_RESULT for a query without one,
// or the unqualified upper case name of a table.
func DeriveDestination(queryOrTable string) string {
	if IsQuery(queryOrTable) {
		return actions.DefaultDestination(strings.TrimSpace(queryOrTable), "")
	}
	return actions.DefaultDestination("", strings.TrimSpace(queryOrTable))
}

// ApplyLimitToQuery adds TOP n after the first "SELECT " unless the query has a TOP already.
func ApplyLimitToQuery(query string, n int) string {
	if strings.Contains(strings.ToUpper(query), "TOP ") {
		return query
	}
	return strings.Replace(query, "SELECT ", fmt.Sprintf("SELECT TOP %d ", n), 1)
}

// LimitTable returns a query that reads the first n rows of table, aliased as dest.
func LimitTable(connectionType string, table string, dest string, n int) string {
	switch connectionType {
	case constants.ConnectionTypeSqlServer:
		return fmt.Sprintf("(SELECT TOP %d * FROM %v) AS %v", n, table, dest)
	case constants.ConnectionTypeOracle:
		return fmt.Sprintf("(SELECT * FROM %v WHERE ROWNUM <= %d) %v", table, n, dest)
	default:
		return fmt.Sprintf("(SELECT * FROM %v LIMIT %d) AS %v", table, n, dest)
	}
}

// plan is a resolved transfer: settings with the destination set, the query if any,
// and a row limit still to be applied by the transfer.
type plan struct {
	settings *config.Settings
	query    string
	limit    int
}

// sourceExpr returns the table name or "(query) AS alias" that the plan reads.
func (p *plan) sourceExpr() string {
	src := p.settings.Transfer.SourceTable
	if p.query != "" {
		src = actions.AsSubquery(p.query)
	}
	if p.limit > 0 {
		src = actions.LimitSource(p.settings.DatabaseType.String(), src, p.limit)
	}
	return src
}

func (o *options) progress(format string, a ...interface{}) {
	if o.showProgress {
		printf(o.out, format, a...)
	}
}

// plan loads and validates the settings for queryOrTable.
func (o *options) plan(queryOrTable string) (*plan, error) {
	s, err := o.settings()
	if err != nil {
		return nil, err
	}
	s.Transfer.Mode = o.mode
	if err = s.Validate(); err != nil {
		return nil, err
	}
	o.progress("Source: %v (%v)\n", s.Source.Host, s.DatabaseType.String())
	o.progress("Target: %v.%v\n", s.Snowflake.Account, s.Snowflake.Database)
	return o.planFor(s, queryOrTable, o.destination, o.limit), nil
}

// planFor sets the source and destination of s for queryOrTable. SQL Server limits are
// written into the SQL. Other dialects leave the limit to the transfer.
func (o *options) planFor(s *config.Settings, queryOrTable string, destination string, limit int) *plan {
	connType := s.DatabaseType.String()
	p := &plan{settings: s}
	if IsQuery(queryOrTable) {
		o.progress("Detected custom query\n")
		dest := destination
		if dest == "" {
			dest = DeriveDestination(queryOrTable)
			o.progress("Auto-derived destination: %v\n", dest)
		}
		p.query = strings.TrimSpace(queryOrTable)
		if limit > 0 {
			if connType == constants.ConnectionTypeSqlServer {
				p.query = ApplyLimitToQuery(p.query, limit)
			} else {
				p.limit = limit
			}
			o.progress("Limited to %v rows\n", limit)
		}
		s.Transfer.SourceTable = ""
		s.Transfer.DestinationTable = dest
		return p
	}
	table := strings.TrimSpace(queryOrTable)
	o.progress("Detected table name: %v\n", table)
	dest := destination
	if dest == "" {
		dest = DeriveDestination(table)
	}
	o.progress("Destination: %v\n", dest)
	s.Transfer.SourceTable = table
	s.Transfer.DestinationTable = dest
	if limit > 0 {
		p.query = LimitTable(connType, table, dest, limit)
		o.progress("Using query with limit: %v\n", p.query)
	}
	return p
}

// newDataTransfer returns a transfer that uses the connections supplied via WithConnections, if any.
func (o *options) newDataTransfer(s *config.Settings) *actions.DataTransfer {
	opts := []actions.DataTransferOption{actions.WithOutput(o.out)}
	if o.source != nil && o.target != nil {
		opts = append(opts, actions.WithConnections(o.source, o.target))
	}
	return actions.NewDataTransfer(o.log, s, append(opts, o.transferOptions...)...)
}

// Transfer copies a table, or a query of the form "(SELECT ...) AS name", into Snowflake
// using the configuration from the environment plus the given options.
func Transfer(ctx context.Context, queryOrTable string, opts ...Option) (stats.TransferStats, error) {
	o := newOptions(opts)
	o.progress("Starting transfer: %v\n", queryOrTable)
	p, err := o.plan(queryOrTable)
	if err != nil {
		o.log.Error("Transfer failed: ", err)
		return stats.TransferStats{}, err
	}
	t := o.newDataTransfer(p.settings)
	defer t.Cleanup()
	if err = t.SetupConnections(ctx); err != nil {
		return t.Stats(), err
	}
	if err = t.TransferTable(ctx, p.query, p.limit); err != nil {
		o.progress("Transfer failed: %v\n", err)
		return t.Stats(), err
	}
	if o.showProgress {
		t.PrintSummary()
	}
	return t.Stats(), nil
}

// TransferSample copies the first rows of a table or query into a table named after
// the source plus "_sample". Rows defaults to 100.
func TransferSample(ctx context.Context, queryOrTable string, rows int, opts ...Option) (stats.TransferStats, error) {
	if rows <= 0 {
		rows = DefaultSampleRows
	}
	o := newOptions(opts)
	o.progress("Sampling %v rows for testing\n", rows)
	dest := o.destination
	if dest == "" {
		dest = DeriveDestination(queryOrTable)
	}
	dest = strings.ToUpper(dest + DefaultSampleSuffix)
	return Transfer(ctx, queryOrTable, append(opts, WithLimit(rows), WithDestination(dest))...)
}
