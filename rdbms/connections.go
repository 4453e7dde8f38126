package rdbms

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"

	_ "github.com/IBM/nzgo/v12"
	_ "github.com/alexbrainman/odbc"
	_ "github.com/databricks/databricks-sql-go"
	_ "github.com/denisenkom/go-mssqldb"
	"github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pkg/errors"
	"github.com/relloyd/snowxfer/config"
	"github.com/relloyd/snowxfer/constants"
	"github.com/relloyd/snowxfer/logger"
	"github.com/relloyd/snowxfer/rdbms/shared"
	"github.com/xo/dburl"
)

const databricksDefaultPort = 443

// SourceDsn returns the Go SQL driver name and connect string for the source database in s.
func SourceDsn(s *config.Settings) (driverName string, dsn string, err error) {
	src := s.Source
	hostPort := net.JoinHostPort(src.Host, strconv.Itoa(src.Port))
	switch s.DatabaseType {
	case config.SqlServer:
		q := url.Values{}
		if src.Database != "" {
			q.Add("database", src.Database)
		}
		q.Add("TrustServerCertificate", strconv.FormatBool(src.TrustServerCertificate))
		u := &url.URL{Scheme: "sqlserver", User: url.UserPassword(src.Username, src.Password), Host: hostPort, RawQuery: q.Encode()}
		return dburlDriverDsn(u.String(), "")
	case config.Postgres:
		u := &url.URL{Scheme: "postgres", User: url.UserPassword(src.Username, src.Password), Host: hostPort, Path: "/" + src.Database}
		return dburlDriverDsn(u.String(), "pgx") // dburl would choose lib/pq.
	case config.MySql:
		c := mysql.NewConfig()
		c.User = src.Username
		c.Passwd = src.Password
		c.Net = "tcp"
		c.Addr = hostPort
		c.DBName = src.Database
		c.ParseTime = true
		return "mysql", c.FormatDSN(), nil
	case config.Oracle:
		service := src.ServiceName
		if service == "" {
			service = src.Database
		}
		return "odbc", fmt.Sprintf("DRIVER={Oracle};DBQ=%v/%v;UID=%v;PWD=%v", hostPort, service, odbcQuote(src.Username), odbcQuote(src.Password)), nil
	case config.Databricks:
		host := src.ServerHostname
		if _, _, e := net.SplitHostPort(host); e != nil { // if there is no port...
			host = net.JoinHostPort(host, strconv.Itoa(databricksDefaultPort))
		}
		path := src.HttpPath
		if !strings.HasPrefix(path, "/") {
			path = "/" + path
		}
		u := &url.URL{User: url.UserPassword("token", src.AccessToken), Host: host, Path: path}
		return "databricks", strings.TrimPrefix(u.String(), "//"), nil
	case config.Netezza:
		// nzgo wants space separated key=value pairs.
		return "nzgo", fmt.Sprintf("user=%s password='%s' host=%s port=%d dbname=%s logLevel=Off",
			src.Username, strings.ReplaceAll(src.Password, "'", `\'`), src.Host, src.Port, src.Database), nil
	default:
		return "", "", fmt.Errorf("unsupported database type, %q", s.DatabaseType)
	}
}

// odbcQuote wraps v in braces so that it may contain ';' or '='. A closing brace is escaped by doubling it.
func odbcQuote(v string) string {
	return "{" + strings.ReplaceAll(v, "}", "}}") + "}"
}

func dburlDriverDsn(rawUrl string, overrideDriver string) (string, string, error) {
	u, err := dburl.Parse(rawUrl)
	if err != nil {
		return "", "", errors.Wrap(err, "error parsing DSN")
	}
	if overrideDriver != "" {
		return overrideDriver, u.DSN, nil
	}
	return u.Driver, u.DSN, nil
}

// SourceConnectionDetails describes the source connection in s for logging.
func SourceConnectionDetails(s *config.Settings) (shared.ConnectionDetails, error) {
	_, dsn, err := SourceDsn(s)
	if err != nil {
		return shared.ConnectionDetails{}, err
	}
	return shared.ConnectionDetails{Type: s.DatabaseType.String(), LogicalName: "source", Dsn: dsn}, nil
}

// OpenSource opens and pings the source database described by s.
func OpenSource(ctx context.Context, log logger.Logger, s *config.Settings) (shared.Connector, error) {
	driverName, dsn, err := SourceDsn(s)
	if err != nil {
		return nil, err
	}
	return openWithDsn(ctx, log, s.DatabaseType.String(), driverName, dsn)
}

func openWithDsn(ctx context.Context, log logger.Logger, connectionType string, driverName string, dsn string) (shared.Connector, error) {
	log.Info("Opening database connection: ", shared.RedactDsn(connectionType, dsn))
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, errors.Wrapf(err, "error opening %v connection", connectionType)
	}
	if err = db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errors.Wrapf(err, "error connecting to %v", connectionType)
	}
	log.Info("Successful database connection to ", connectionType)
	return shared.NewConnection(db, connectionType), nil
}

// VersionQuery returns SQL that reports the server version for the given connection type.
func VersionQuery(connectionType string) string {
	switch connectionType {
	case constants.ConnectionTypeSqlServer:
		return "SELECT @@VERSION AS version"
	case constants.ConnectionTypeOracle:
		return "SELECT banner AS version FROM v$version WHERE ROWNUM = 1"
	case constants.ConnectionTypeDatabricks:
		return "SELECT version() AS version"
	case constants.ConnectionTypeSnowflake:
		return "SELECT CURRENT_VERSION() AS version"
	default: // postgres, mysql and netezza.
		return "SELECT version() AS version"
	}
}
