package rdbms

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/relloyd/snowxfer/config"
	"github.com/relloyd/snowxfer/constants"
	"github.com/relloyd/snowxfer/logger"
	"github.com/relloyd/snowxfer/rdbms/shared"
	sf "github.com/snowflakedb/gosnowflake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPem(t *testing.T, pkcs8 bool) string {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	if pkcs8 {
		b, err := x509.MarshalPKCS8PrivateKey(key)
		require.NoError(t, err)
		return string(pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: b}))
	}
	return string(pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)}))
}

func TestSnowflakeConfigAuth(t *testing.T) {
	base := config.Snowflake{Account: "acc", User: "u", Role: "SYSADMIN", Warehouse: "WH", Database: "DB", Schema: "PUBLIC"}
	// Test 1 - password.
	s := base
	s.Password = "pw"
	cfg, err := SnowflakeConfig(s)
	require.NoError(t, err)
	assert.Equal(t, "pw", cfg.Password)
	assert.Equal(t, "true", *cfg.Params["ABORT_DETACHED_QUERY"])
	assert.Equal(t, "true", *cfg.Params["CLIENT_SESSION_KEEP_ALIVE"])
	assert.Equal(t, "WH", cfg.Warehouse)
	// Test 2 - a private key wins over a password.
	s.PrivateKeyPem = newPem(t, true)
	cfg, err = SnowflakeConfig(s)
	require.NoError(t, err)
	assert.Equal(t, sf.AuthTypeJwt, cfg.Authenticator)
	assert.NotNil(t, cfg.PrivateKey)
	assert.Equal(t, "", cfg.Password)
	// Test 3 - an authenticator wins over everything.
	s.Authenticator = "externalbrowser"
	cfg, err = SnowflakeConfig(s)
	require.NoError(t, err)
	assert.Equal(t, sf.AuthTypeExternalBrowser, cfg.Authenticator)
	assert.Nil(t, cfg.PrivateKey)
	// Test 4 - Okta URL.
	s.Authenticator = "https://acme.okta.com"
	cfg, err = SnowflakeConfig(s)
	require.NoError(t, err)
	assert.Equal(t, sf.AuthTypeOkta, cfg.Authenticator)
	assert.Equal(t, "acme.okta.com", cfg.OktaURL.Host)
	// Test 5 - unknown authenticator.
	s.Authenticator = "carrier-pigeon"
	_, err = SnowflakeConfig(s)
	assert.Error(t, err)
	// Test 6 - nothing to authenticate with.
	_, err = SnowflakeConfig(base)
	assert.Error(t, err)
}

func TestParseRSAPrivateKey(t *testing.T) {
	_, err := ParseRSAPrivateKey([]byte(newPem(t, false)))
	assert.NoError(t, err, "PKCS1 keys are accepted")
	_, err = ParseRSAPrivateKey([]byte("not a key"))
	assert.Error(t, err)
}

func TestUseDatabase(t *testing.T) {
	log := logger.NewLogger("snowxfer", "error", false)
	ctx := context.Background()
	// Test 1 - create enabled.
	conn, mock, err := shared.NewMockConnectionExactSql(constants.ConnectionTypeSnowflake)
	require.NoError(t, err)
	mock.ExpectExec("CREATE DATABASE IF NOT EXISTS DB").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("USE DATABASE DB").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE SCHEMA IF NOT EXISTS RAW").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("USE SCHEMA RAW").WillReturnResult(sqlmock.NewResult(0, 0))
	err = UseDatabase(ctx, log, conn, config.Snowflake{Database: "DB", Schema: "RAW", CreateDbIfMissing: true})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
	// Test 2 - create disabled and the database is missing.
	conn, mock, err = shared.NewMockConnectionExactSql(constants.ConnectionTypeSnowflake)
	require.NoError(t, err)
	mock.ExpectExec("USE DATABASE NOPE").WillReturnError(assert.AnError)
	err = UseDatabase(ctx, log, conn, config.Snowflake{Database: "NOPE", Schema: "RAW"})
	assert.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
	// Test 3 - no database means nothing to do.
	assert.NoError(t, UseDatabase(ctx, log, conn, config.Snowflake{}))
}

func TestSnowflakeQualifiedName(t *testing.T) {
	s := config.Snowflake{Database: "DB"}
	assert.Equal(t, "DB.PUBLIC.T", SnowflakeQualifiedName(s, "T"))
	s.Schema = "RAW"
	assert.Equal(t, "DB.RAW.T", SnowflakeQualifiedName(s, "T"))
	assert.Equal(t, "OTHER.T", SnowflakeQualifiedName(s, "OTHER.T"))
	assert.Equal(t, "T", SnowflakeQualifiedName(config.Snowflake{}, "T"))
}
