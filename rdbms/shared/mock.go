package shared

import (
	"github.com/DATA-DOG/go-sqlmock"
)

// NewMockConnection returns a Connector of the given type backed by go-sqlmock.
// Callers must set expectations on the returned Sqlmock.
func NewMockConnection(dbType string) (*Connection, sqlmock.Sqlmock, error) {
	db, mock, err := sqlmock.New()
	if err != nil {
		return nil, nil, err
	}
	return NewConnection(db, dbType), mock, nil
}

// NewMockConnectionExactSql is NewMockConnection with exact SQL matching instead of regular expressions.
func NewMockConnectionExactSql(dbType string) (*Connection, sqlmock.Sqlmock, error) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	if err != nil {
		return nil, nil, err
	}
	return NewConnection(db, dbType), mock, nil
}
