package actions

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/relloyd/snowxfer/config"
	"github.com/relloyd/snowxfer/helper"
	"github.com/relloyd/snowxfer/logger"
	"github.com/relloyd/snowxfer/rdbms"
)

type QueryConfig struct {
	Settings    *config.Settings `errorTxt:"settings" mandatory:"yes"`
	Query       string           `errorTxt:"query" mandatory:"yes"`
	Limit       int              // rows to add as TOP or LIMIT when the query has neither; 0 adds nothing.
	CsvOutput   bool             // stream CSV instead of printing a table.
	PrintHeader bool             // CSV only.
	DryRun      bool
	Output      io.Writer
	OpenSource  SourceOpener
}

// csvHandler streams rows as CSV.
type csvHandler struct {
	printHeader bool
	w           *csv.Writer
}

func (s *csvHandler) HandleHeader(i []interface{}) error {
	if s.printHeader {
		str := helper.InterfaceToString(i)
		if err := s.w.Write(str); err != nil {
			return fmt.Errorf("error outputting SQL header: %v", err)
		}
		s.w.Flush()
	}
	return nil
}

func (s *csvHandler) HandleRow(i []interface{}) error {
	str := helper.InterfaceToString(i)
	if err := s.w.Write(str); err != nil {
		return fmt.Errorf("error outputting SQL row: %v", err)
	}
	s.w.Flush()
	return nil
}

// RunQuery executes a query on the source database and prints the results.
func RunQuery(ctx context.Context, log logger.Logger, cfg *QueryConfig) error {
	if err := helper.ValidateStructIsPopulated(cfg); err != nil {
		return err
	}
	w := outputOrStdout(cfg.Output)
	sqltext := InjectRowLimit(cfg.Settings.DatabaseType.String(), cfg.Query, cfg.Limit)
	if cfg.DryRun {
		printf(w, "%v\n", sqltext)
		return nil
	}
	db, err := cfg.OpenSource.orDefault()(ctx, log, cfg.Settings)
	if err != nil {
		return err
	}
	defer db.Close()
	if cfg.CsvOutput {
		h := &csvHandler{printHeader: cfg.PrintHeader, w: csv.NewWriter(w)}
		return driverError(rdbms.SqlQuery(ctx, log, db, sqltext, h))
	}
	r, err := rdbms.QueryTable(ctx, log, db, sqltext)
	if err != nil {
		return driverError(err)
	}
	if len(r.Rows) == 0 {
		printf(w, "No results returned\n")
		return nil
	}
	renderResultTable(w, fmt.Sprintf("Query Results (%v rows)", len(r.Rows)), r, 100)
	return nil
}

// driverError prefixes "driver " to the unsupported column type errors produced by some ODBC drivers.
func driverError(err error) error {
	errUnwrap := errors.Unwrap(err)
	if errUnwrap != nil && strings.HasPrefix(errUnwrap.Error(), "unsupported column type") {
		return fmt.Errorf("driver %v", err)
	}
	return err
}

type PreviewConfig struct {
	Settings   *config.Settings `errorTxt:"settings" mandatory:"yes"`
	Table      string           `errorTxt:"table" mandatory:"yes"`
	Rows       int
	Output     io.Writer
	OpenSource SourceOpener
}

// RunPreview prints the first rows of a source table.
func RunPreview(ctx context.Context, log logger.Logger, cfg *PreviewConfig) error {
	if err := helper.ValidateStructIsPopulated(cfg); err != nil {
		return err
	}
	w := outputOrStdout(cfg.Output)
	rows := cfg.Rows
	if rows <= 0 {
		rows = 10
	}
	db, err := cfg.OpenSource.orDefault()(ctx, log, cfg.Settings)
	if err != nil {
		return err
	}
	defer db.Close()
	r, err := rdbms.QueryTable(ctx, log, db, PreviewSql(db.GetType(), cfg.Table, rows))
	if err != nil {
		return driverError(err)
	}
	if len(r.Rows) == 0 {
		printf(w, "No data found in table\n")
		return nil
	}
	renderResultTable(w, fmt.Sprintf("Preview of %v (%v rows)", cfg.Table, len(r.Rows)), r, 50)
	return nil
}

type ListTablesConfig struct {
	Settings   *config.Settings `errorTxt:"settings" mandatory:"yes"`
	Schema     string
	Output     io.Writer
	OpenSource SourceOpener
}

// RunListTables prints the base tables of the source database.
func RunListTables(ctx context.Context, log logger.Logger, cfg *ListTablesConfig) error {
	if err := helper.ValidateStructIsPopulated(cfg); err != nil {
		return err
	}
	w := outputOrStdout(cfg.Output)
	db, err := cfg.OpenSource.orDefault()(ctx, log, cfg.Settings)
	if err != nil {
		return err
	}
	defer db.Close()
	r, err := rdbms.QueryTable(ctx, log, db, ListTablesSql(db.GetType(), cfg.Schema))
	if err != nil {
		return err
	}
	if len(r.Rows) == 0 {
		printf(w, "No tables found\n")
		return nil
	}
	r.Header = []string{"Schema", "Table Name", "Type"}
	renderResultTable(w, fmt.Sprintf("Available Tables (%v found)", len(r.Rows)), r, 100)
	return nil
}

type TestConnectionConfig struct {
	Settings   *config.Settings `errorTxt:"settings" mandatory:"yes"`
	Output     io.Writer
	OpenSource SourceOpener
}

// RunTestConnection connects to the source database and prints its version.
func RunTestConnection(ctx context.Context, log logger.Logger, cfg *TestConnectionConfig) error {
	if err := helper.ValidateStructIsPopulated(cfg); err != nil {
		return err
	}
	w := outputOrStdout(cfg.Output)
	printf(w, "Testing source database connection...\n")
	db, err := cfg.OpenSource.orDefault()(ctx, log, cfg.Settings)
	if err != nil {
		return err
	}
	defer db.Close()
	r, err := rdbms.QueryTable(ctx, log, db, rdbms.VersionQuery(db.GetType()))
	if err != nil {
		return err
	}
	version := "N/A"
	if len(r.Rows) > 0 && len(r.Rows[0]) > 0 && r.Rows[0][0] != nil {
		version = helper.InterfaceToString(r.Rows[0][:1])[0]
	}
	printf(w, "Connection successful!\n")
	host := cfg.Settings.Source.Host
	if host == "" {
		host = cfg.Settings.Source.ServerHostname
	}
	renderProperties(w, "Connection Test Results", [][2]string{
		{"Database Type", cfg.Settings.DatabaseType.String()},
		{"Host", host},
		{"Database", cfg.Settings.Source.Database},
		{"Status", "Connected"},
		{"Version", helper.Truncate(version, 100)},
	})
	return nil
}
