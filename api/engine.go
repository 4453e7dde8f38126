package api

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/relloyd/snowxfer/actions"
	"github.com/relloyd/snowxfer/config"
	"github.com/relloyd/snowxfer/rdbms"
	"github.com/relloyd/snowxfer/rdbms/shared"
	"github.com/relloyd/snowxfer/stats"
)

var errNotEstablished = errors.New("connections are not established, call EstablishRawConnections first")

// RawConnections are the open connections of an Engine.
type RawConnections struct {
	Source shared.Connector
	Target shared.Connector
}

// Engine exposes the primitives used by the other APIs: raw connections, queries, readers and writes.
type Engine struct {
	o        *options
	settings *config.Settings
	transfer *actions.DataTransfer
}

func NewEngine(opts ...Option) *Engine {
	return &Engine{o: newOptions(opts)}
}

func (e *Engine) EstablishRawConnections(ctx context.Context) (RawConnections, error) {
	s, err := e.o.settings()
	if err != nil {
		return RawConnections{}, err
	}
	s.Transfer.Mode = e.o.mode
	if err = s.Validate(); err != nil {
		return RawConnections{}, err
	}
	t := e.o.newDataTransfer(s)
	if err = t.SetupConnections(ctx); err != nil {
		t.Cleanup()
		return RawConnections{}, err
	}
	e.settings = s
	e.transfer = t
	return RawConnections{Source: t.Source(), Target: t.Target()}, nil
}

// ExecuteRawQuery runs sqltext on the source and returns every row.
func (e *Engine) ExecuteRawQuery(ctx context.Context, sqltext string, args ...interface{}) ([][]interface{}, error) {
	if e.transfer == nil {
		return nil, errNotEstablished
	}
	r, err := rdbms.QueryTable(ctx, e.o.log, e.transfer.Source(), sqltext, args...)
	if err != nil {
		return nil, err
	}
	return r.Rows, nil
}

// ReaderSql returns the SELECT used to read queryOrTable: a SELECT as is, a parenthesised
// query with its alias or every column of a table.
func ReaderSql(queryOrTable string) string {
	q := strings.TrimSpace(queryOrTable)
	switch {
	case strings.HasPrefix(strings.ToUpper(q), "SELECT"):
		return q
	case IsQuery(q):
		return "SELECT * FROM " + actions.AsSubquery(q)
	default:
		return fmt.Sprintf("SELECT * FROM %v", q)
	}
}

// OpenReader runs a query or reads a table on the source. The caller closes the rows.
func (e *Engine) OpenReader(ctx context.Context, queryOrTable string) (*sql.Rows, error) {
	if e.transfer == nil {
		return nil, errNotEstablished
	}
	q := ReaderSql(queryOrTable)
	e.o.log.Debug("opening reader: ", q)
	rows, err := e.transfer.Source().QueryContext(ctx, q)
	if err != nil {
		return nil, errors.Wrapf(err, "error running SQL: '%v'", q)
	}
	return rows, nil
}

// WriteRaw loads a table or query into table on Snowflake using mode overwrite, append or error.
func (e *Engine) WriteRaw(ctx context.Context, queryOrTable string, table string, mode string) error {
	if e.transfer == nil {
		return errNotEstablished
	}
	prev := e.settings.Transfer.Mode
	e.settings.Transfer.Mode = mode
	if err := e.settings.Validate(); err != nil {
		e.settings.Transfer.Mode = prev
		return err
	}
	var query string
	if q := strings.TrimSpace(queryOrTable); IsQuery(q) || strings.HasPrefix(strings.ToUpper(q), "SELECT") {
		query = q
		e.settings.Transfer.SourceTable = ""
	} else {
		e.settings.Transfer.SourceTable = q
	}
	e.settings.Transfer.DestinationTable = table
	return e.transfer.TransferTable(ctx, query, 0)
}

// GetRawStatistics returns the statistics of the last write.
func (e *Engine) GetRawStatistics() stats.TransferStats {
	if e.transfer == nil {
		return stats.TransferStats{}
	}
	return e.transfer.Stats()
}

func (e *Engine) CleanupRawConnections() {
	if e.transfer != nil {
		e.transfer.Cleanup()
		e.transfer = nil
	}
}
