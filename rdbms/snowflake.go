package rdbms

import (
	"context"
	"crypto/rsa"
	"crypto/x509"
	"database/sql"
	"encoding/pem"
	"fmt"
	"io/ioutil"
	"net/url"
	"strings"

	"github.com/pkg/errors"
	"github.com/relloyd/snowxfer/config"
	"github.com/relloyd/snowxfer/constants"
	"github.com/relloyd/snowxfer/logger"
	"github.com/relloyd/snowxfer/rdbms/shared"
	sf "github.com/snowflakedb/gosnowflake"
)

func strPtr(s string) *string {
	return &s
}

// SnowflakeConfig converts settings into a gosnowflake Config.
// Authentication is chosen in order: authenticator, private key, password.
func SnowflakeConfig(s config.Snowflake) (*sf.Config, error) {
	cfg := &sf.Config{
		Account:   s.Account,
		User:      s.User,
		Role:      s.Role,
		Warehouse: s.Warehouse,
		Database:  s.Database,
		Schema:    s.Schema,
		Params: map[string]*string{
			// Cancel in-flight queries if the client goes away.
			"ABORT_DETACHED_QUERY": strPtr("true"),
			// Stop the session token expiring during long transfers.
			"CLIENT_SESSION_KEEP_ALIVE": strPtr("true"),
		},
	}
	switch {
	case s.Authenticator != "":
		if err := setAuthenticator(cfg, s); err != nil {
			return nil, err
		}
	case s.PrivateKeyPem != "" || s.PrivateKeyPath != "":
		keyBytes := []byte(s.PrivateKeyPem)
		if len(keyBytes) == 0 {
			p, err := config.ExpandPath(s.PrivateKeyPath)
			if err != nil {
				return nil, errors.Wrap(err, "unable to expand private key path")
			}
			if keyBytes, err = ioutil.ReadFile(p); err != nil {
				return nil, errors.Wrapf(err, "failed to read private key file %q", s.PrivateKeyPath)
			}
		}
		key, err := ParseRSAPrivateKey(keyBytes)
		if err != nil {
			return nil, err
		}
		cfg.PrivateKey = key
		cfg.Authenticator = sf.AuthTypeJwt
	case s.Password != "":
		cfg.Password = s.Password
	default:
		return nil, errors.New("no Snowflake authentication method provided; supply an authenticator, private key or password")
	}
	return cfg, nil
}

func setAuthenticator(cfg *sf.Config, s config.Snowflake) error {
	a := strings.ToLower(s.Authenticator)
	switch {
	case a == "externalbrowser":
		cfg.Authenticator = sf.AuthTypeExternalBrowser
	case a == "oauth":
		cfg.Authenticator = sf.AuthTypeOAuth
		cfg.Token = s.Password
	case a == "snowflake":
		cfg.Authenticator = sf.AuthTypeSnowflake
		cfg.Password = s.Password
	case a == "username_password_mfa":
		cfg.Authenticator = sf.AuthTypeUsernamePasswordMFA
		cfg.Password = s.Password
	case strings.HasPrefix(a, "https://"):
		u, err := url.Parse(s.Authenticator)
		if err != nil {
			return errors.Wrapf(err, "bad Okta URL %q", s.Authenticator)
		}
		cfg.Authenticator = sf.AuthTypeOkta
		cfg.OktaURL = u
		cfg.Password = s.Password
	default:
		return fmt.Errorf("unsupported Snowflake authenticator %q", s.Authenticator)
	}
	return nil
}

// ParseRSAPrivateKey decodes an unencrypted PEM private key in PKCS8 or PKCS1 form.
func ParseRSAPrivateKey(keyBytes []byte) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode(keyBytes)
	if block == nil {
		return nil, errors.New("failed to decode PEM block containing private key")
	}
	key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		rsaKey, err1 := x509.ParsePKCS1PrivateKey(block.Bytes)
		if err1 != nil {
			return nil, errors.Wrap(err, "failed to parse private key")
		}
		return rsaKey, nil
	}
	rsaKey, ok := key.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("private key is %T, expected an RSA key", key)
	}
	return rsaKey, nil
}

// SnowflakeDsn renders the settings as a gosnowflake DSN.
func SnowflakeDsn(s config.Snowflake) (string, error) {
	cfg, err := SnowflakeConfig(s)
	if err != nil {
		return "", err
	}
	dsn, err := sf.DSN(cfg)
	if err != nil {
		return "", errors.Wrap(err, "unable to build Snowflake DSN")
	}
	return dsn, nil
}

// OpenSnowflake connects to Snowflake and makes sure the configured database and schema are in use.
func OpenSnowflake(ctx context.Context, log logger.Logger, s config.Snowflake) (shared.Connector, error) {
	dsn, err := SnowflakeDsn(s)
	if err != nil {
		return nil, err
	}
	log.Info("Opening Snowflake connection to account ", s.Account, " as user ", s.User)
	db, err := sql.Open("snowflake", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "error opening Snowflake connection")
	}
	if err = db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "failed to create Snowflake session")
	}
	conn := shared.NewConnection(db, constants.ConnectionTypeSnowflake)
	if err = UseDatabase(ctx, log, conn, s); err != nil {
		_ = conn.Close()
		return nil, err
	}
	log.Info("Successful database connection to Snowflake.")
	return conn, nil
}

// UseDatabase creates the database and schema when allowed and switches the session to them.
// When creation is disabled a failed USE is an error since the objects must already exist.
func UseDatabase(ctx context.Context, log logger.Logger, conn shared.Connector, s config.Snowflake) error {
	if s.Database == "" {
		return nil
	}
	stmts := make([]string, 0, 4)
	if s.CreateDbIfMissing {
		log.Debug("Ensuring database ", s.Database, " exists")
		stmts = append(stmts, fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %v", s.Database))
	}
	stmts = append(stmts, fmt.Sprintf("USE DATABASE %v", s.Database))
	if s.Schema != "" {
		if s.CreateDbIfMissing {
			log.Debug("Ensuring schema ", s.Schema, " exists")
			stmts = append(stmts, fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %v", s.Schema))
		}
		stmts = append(stmts, fmt.Sprintf("USE SCHEMA %v", s.Schema))
	}
	for _, stmt := range stmts {
		if _, err := conn.ExecContext(ctx, stmt); err != nil {
			if s.CreateDbIfMissing {
				log.Warn("Database/schema setup warning: ", err)
				continue
			}
			return errors.Wrapf(err, "database/schema not found and create_db_if_missing is false")
		}
	}
	return nil
}

// SnowflakeQualifiedName prefixes table with the configured database and schema when it is not already qualified.
func SnowflakeQualifiedName(s config.Snowflake, table string) string {
	st := SchemaTable{SchemaTable: table}
	if st.GetSchema() != "" || s.Database == "" {
		return table
	}
	schema := s.Schema
	if schema == "" {
		schema = "PUBLIC"
	}
	return fmt.Sprintf("%v.%v.%v", s.Database, schema, table)
}
