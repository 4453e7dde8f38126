package config

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func validSettings() *Settings {
	return &Settings{
		DatabaseType: SqlServer,
		Source:       Source{Host: "h", Username: "u", Password: "p"},
		Snowflake:    Snowflake{Account: "a", User: "u", Password: "p"},
		Transfer:     Transfer{BatchSize: 1, MaxWorkers: 1, FetchSize: 1, Mode: "overwrite"},
	}
}

func TestValidate(t *testing.T) {
	assert.NoError(t, validSettings().Validate())

	s := validSettings()
	s.Source.Password = ""
	s.Transfer.Mode = "merge"
	err := s.Validate()
	var v ValidationError
	assert.True(t, errors.As(err, &v))
	assert.Len(t, v.Problems, 2)

	s = validSettings()
	s.Snowflake.Password = ""
	assert.Error(t, s.Validate())
	s.Snowflake.PrivateKeyPath = "/keys/rsa.p8"
	assert.NoError(t, s.Validate())

	s = validSettings()
	s.DatabaseType = Databricks
	assert.Error(t, s.Validate())
	s.Source.ServerHostname, s.Source.HttpPath, s.Source.AccessToken = "dbc.cloud", "/sql/1", "tok"
	assert.NoError(t, s.Validate())

	s = validSettings()
	s.DatabaseType = "db2"
	assert.Error(t, s.ValidateSourceOnly())
}

func TestValidatePartitioning(t *testing.T) {
	s := validSettings()
	s.Transfer.PartitionColumn = "ID"
	assert.Error(t, s.Validate())
	s.Transfer.LowerBound, s.Transfer.UpperBound, s.Transfer.NumPartitions = "0", "100", 4
	assert.NoError(t, s.Validate())
	assert.True(t, s.Transfer.IsPartitioned())
}

func TestSourceStringHidesPassword(t *testing.T) {
	s := validSettings()
	s.Source.Port = 1433
	s.Source.Database = "sales"
	assert.Equal(t, "u@h:1433/sales", s.Source.String())
}
