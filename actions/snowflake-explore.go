package actions

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/relloyd/snowxfer/config"
	"github.com/relloyd/snowxfer/helper"
	"github.com/relloyd/snowxfer/logger"
	"github.com/relloyd/snowxfer/rdbms"
	"github.com/relloyd/snowxfer/rdbms/shared"
)

// SnowflakeExploreConfig is shared by the Snowflake exploration actions.
type SnowflakeExploreConfig struct {
	Settings      *config.Settings `errorTxt:"settings" mandatory:"yes"`
	Output        io.Writer
	OpenSnowflake SnowflakeOpener
}

func (cfg *SnowflakeExploreConfig) connect(ctx context.Context, log logger.Logger) (shared.Connector, io.Writer, error) {
	if err := helper.ValidateStructIsPopulated(cfg); err != nil {
		return nil, nil, err
	}
	db, err := cfg.OpenSnowflake.orDefault()(ctx, log, cfg.Settings.Snowflake)
	if err != nil {
		return nil, nil, err
	}
	return db, outputOrStdout(cfg.Output), nil
}

// RunSnowflakeTestConnection prints the current database, schema and warehouse of a new session.
func RunSnowflakeTestConnection(ctx context.Context, log logger.Logger, cfg *SnowflakeExploreConfig) error {
	db, w, err := cfg.connect(ctx, log)
	if err != nil {
		return err
	}
	defer db.Close()
	c, err := rdbms.SnowflakeTestConnection(ctx, log, db)
	if err != nil {
		return err
	}
	renderProperties(w, "Snowflake Connection", [][2]string{
		{"Account", cfg.Settings.Snowflake.Account},
		{"User", cfg.Settings.Snowflake.User},
		{"Database", c.Database},
		{"Schema", c.Schema},
		{"Warehouse", c.Warehouse},
	})
	return nil
}

// RunSnowflakeTables lists tables matching pattern, or in schema when there is no pattern.
func RunSnowflakeTables(ctx context.Context, log logger.Logger, cfg *SnowflakeExploreConfig, pattern string, schema string) error {
	db, w, err := cfg.connect(ctx, log)
	if err != nil {
		return err
	}
	defer db.Close()
	r, err := rdbms.SnowflakeListTables(ctx, log, db, pattern, schema)
	if err != nil {
		return err
	}
	if len(r.Rows) == 0 {
		printf(w, "No tables found\n")
		return nil
	}
	renderResultTable(w, fmt.Sprintf("Snowflake Tables (%v found)", len(r.Rows)), pick(r, "database_name", "schema_name", "name", "rows", "created_on"), 50)
	return nil
}

func RunSnowflakeDescribe(ctx context.Context, log logger.Logger, cfg *SnowflakeExploreConfig, table string) error {
	db, w, err := cfg.connect(ctx, log)
	if err != nil {
		return err
	}
	defer db.Close()
	r, err := rdbms.SnowflakeDescribeTable(ctx, log, db, table)
	if err != nil {
		return err
	}
	renderResultTable(w, fmt.Sprintf("Columns of %v", table), pick(r, "name", "type", "null?", "default"), 50)
	return nil
}

func RunSnowflakeSample(ctx context.Context, log logger.Logger, cfg *SnowflakeExploreConfig, table string, rows int) error {
	db, w, err := cfg.connect(ctx, log)
	if err != nil {
		return err
	}
	defer db.Close()
	if rows <= 0 {
		rows = 10
	}
	r, err := rdbms.SnowflakeQuickSample(ctx, log, db, table, rows)
	if err != nil {
		return err
	}
	if len(r.Rows) == 0 {
		printf(w, "No data found in table\n")
		return nil
	}
	renderResultTable(w, fmt.Sprintf("Sample of %v (%v rows)", table, len(r.Rows)), r, 50)
	return nil
}

func RunSnowflakeDDL(ctx context.Context, log logger.Logger, cfg *SnowflakeExploreConfig, objectName string, objectType string) error {
	db, w, err := cfg.connect(ctx, log)
	if err != nil {
		return err
	}
	defer db.Close()
	ddl, err := rdbms.SnowflakeGetDDL(ctx, db, objectName, objectType)
	if err != nil {
		return err
	}
	printf(w, "%v\n", strings.TrimSpace(ddl))
	return nil
}

func RunSnowflakeInfo(ctx context.Context, log logger.Logger, cfg *SnowflakeExploreConfig, table string) error {
	db, w, err := cfg.connect(ctx, log)
	if err != nil {
		return err
	}
	defer db.Close()
	info, err := rdbms.SnowflakeGetTableInfo(ctx, log, db, table)
	if err != nil {
		return err
	}
	renderProperties(w, fmt.Sprintf("Table %v", table), [][2]string{
		{"Row Count", helper.FormatCount(info.RowCount)},
		{"Column Count", fmt.Sprint(info.ColumnCount)},
		{"Columns", strings.Join(info.Columns, ", ")},
	})
	return nil
}

// pick returns the named columns of r that exist, in the order given.
// SHOW and DESCRIBE output is wide so only the useful columns are printed.
func pick(r *rdbms.ResultTable, names ...string) *rdbms.ResultTable {
	idxs := make([]int, 0, len(names))
	out := &rdbms.ResultTable{}
	for _, n := range names {
		if idx := r.ColumnIndex(n); idx >= 0 {
			idxs = append(idxs, idx)
			out.Header = append(out.Header, r.Header[idx])
		}
	}
	if len(idxs) == 0 {
		return r
	}
	for _, row := range r.Rows {
		newRow := make([]interface{}, len(idxs))
		for i, idx := range idxs {
			newRow[i] = row[idx]
		}
		out.Rows = append(out.Rows, newRow)
	}
	return out
}
