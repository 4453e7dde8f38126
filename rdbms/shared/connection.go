package shared

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
)

// Connection is a Connector backed by the Go native sql.DB.
type Connection struct {
	DbSql  *sql.DB
	DbType string
}

func NewConnection(db *sql.DB, dbType string) *Connection {
	return &Connection{DbSql: db, DbType: dbType}
}

func (c *Connection) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return c.DbSql.ExecContext(ctx, query, args...)
}

func (c *Connection) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	return c.DbSql.QueryContext(ctx, query, args...)
}

func (c *Connection) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	return c.DbSql.QueryRowContext(ctx, query, args...)
}

func (c *Connection) PingContext(ctx context.Context) error {
	return c.DbSql.PingContext(ctx)
}

func (c *Connection) Close() error {
	if c.DbSql == nil {
		return errors.New("connection was not opened")
	}
	return c.DbSql.Close()
}

func (c *Connection) GetType() string {
	return c.DbType
}
