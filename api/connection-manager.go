package api

import (
	"context"

	"github.com/pkg/errors"
	"github.com/relloyd/snowxfer/actions"
	"github.com/relloyd/snowxfer/config"
	"github.com/relloyd/snowxfer/constants"
	"github.com/relloyd/snowxfer/rdbms"
	"github.com/relloyd/snowxfer/rdbms/shared"
	"github.com/relloyd/snowxfer/stats"
)

const (
	ConnectionSource    = "source_db"
	ConnectionSnowflake = "snowflake"
)

var errNotConnected = errors.New("not connected, call Connect first")

// ConnectionManager keeps the source and Snowflake connections open across transfers.
type ConnectionManager struct {
	o        *options
	settings *config.Settings
	transfer *actions.DataTransfer
}

func NewConnectionManager(opts ...Option) *ConnectionManager {
	return &ConnectionManager{o: newOptions(opts)}
}

// Connect loads the settings and opens both connections.
func (m *ConnectionManager) Connect(ctx context.Context) error {
	m.o.progress("Establishing database connections\n")
	s, err := m.o.settings()
	if err != nil {
		return err
	}
	s.Transfer.Mode = m.o.mode
	if err = s.Validate(); err != nil {
		return err
	}
	t := m.o.newDataTransfer(s)
	if err = t.SetupConnections(ctx); err != nil {
		t.Cleanup()
		return err
	}
	m.settings = s
	m.transfer = t
	return nil
}

// TestConnections runs a trivial query on each connection, connecting first if required.
// The result is keyed by ConnectionSource and ConnectionSnowflake.
func (m *ConnectionManager) TestConnections(ctx context.Context) (map[string]bool, error) {
	retval := map[string]bool{ConnectionSource: false, ConnectionSnowflake: false}
	if m.transfer == nil {
		if err := m.Connect(ctx); err != nil {
			return retval, err
		}
	}
	check := func(name string, label string, db shared.Connector) {
		if _, err := rdbms.QueryInt64(ctx, db, selectOne(db.GetType())); err != nil {
			m.o.log.Error(label, " connection failed: ", err)
			m.o.progress("%v connection failed: %v\n", label, err)
			return
		}
		retval[name] = true
		m.o.progress("%v connection OK\n", label)
	}
	check(ConnectionSource, "Source database", m.transfer.Source())
	check(ConnectionSnowflake, "Snowflake", m.transfer.Target())
	return retval, nil
}

// ExecuteTransfer transfers a table or query over the open connections.
// A positive limit caps the rows read.
func (m *ConnectionManager) ExecuteTransfer(ctx context.Context, queryOrTable string, limit int) (stats.TransferStats, error) {
	if m.transfer == nil {
		return stats.TransferStats{}, errNotConnected
	}
	p := m.o.planFor(m.settings, queryOrTable, m.o.destination, limit)
	if err := m.transfer.TransferTable(ctx, p.query, p.limit); err != nil {
		return m.transfer.Stats(), err
	}
	if m.o.showProgress {
		m.transfer.PrintSummary()
	}
	return m.transfer.Stats(), nil
}

func (m *ConnectionManager) Close() {
	if m.transfer == nil {
		return
	}
	m.transfer.Cleanup()
	m.transfer = nil
	m.o.progress("Connections closed\n")
}

func selectOne(connectionType string) string {
	if connectionType == constants.ConnectionTypeOracle {
		return "SELECT 1 FROM dual"
	}
	return "SELECT 1"
}
