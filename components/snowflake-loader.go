package components

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync/atomic"

	"github.com/pkg/errors"
	"github.com/relloyd/snowxfer/aws/s3"
	"github.com/relloyd/snowxfer/helper"
	"github.com/relloyd/snowxfer/logger"
	"github.com/relloyd/snowxfer/rdbms"
	"github.com/relloyd/snowxfer/rdbms/shared"
	"github.com/relloyd/snowxfer/stats"
)

// CsvFileFormat matches the files produced by WriteCsvFiles.
// NULLs are empty unquoted fields and empty strings are "", so no string value is mistaken for NULL.
const CsvFileFormat = `FILE_FORMAT=(TYPE=CSV FIELD_OPTIONALLY_ENCLOSED_BY='"' COMPRESSION=GZIP SKIP_HEADER=1 NULL_IF=() EMPTY_FIELD_AS_NULL=TRUE ESCAPE_UNENCLOSED_FIELD=NONE)`

type SnowflakeLoaderConfig struct {
	Log         logger.Logger
	Name        string
	Db          shared.Connector  // connection to target snowflake database abstracted via interface.
	TargetTable rdbms.SchemaTable // the [[database.]schema.]table to load into.
	StageName   string            // named external stage over S3Client's bucket; empty means the table stage.
	S3Client    s3.BasicClient    // required with StageName; keys are relative to the stage location.
	RunID       string            // sub directory in the stage that holds this run's files.
	StepWatcher *stats.StepWatcher
}

// LoadResult reports what a loader did.
type LoadResult struct {
	FilesStaged int
	RowsLoaded  int64
}

// TableStageName returns the table stage of st, e.g. db.schema.%TABLE.
func TableStageName(st rdbms.SchemaTable) string {
	return st.AppendPrefix("%")
}

func (cfg *SnowflakeLoaderConfig) stageLocation() string {
	stage := cfg.StageName
	if stage == "" {
		stage = TableStageName(cfg.TargetTable)
	}
	return fmt.Sprintf("@%v/%v/", stage, cfg.RunID)
}

// GetSqlSnowflakePut returns a PUT of the local gzip file into the stage location.
func GetSqlSnowflakePut(fileName string, stageLocation string) string {
	return fmt.Sprintf("PUT %v %v AUTO_COMPRESS=FALSE SOURCE_COMPRESSION=GZIP OVERWRITE=TRUE", quoteLiteral("file://"+filepath.ToSlash(fileName)), stageLocation)
}

// GetSqlSnowflakeCopyInto returns the COPY that loads every file in stageLocation into table.
func GetSqlSnowflakeCopyInto(table string, stageLocation string) string {
	return fmt.Sprintf("COPY INTO %v FROM %v %v PURGE=TRUE", table, stageLocation, CsvFileFormat)
}

// LoadFiles stages every CSV file name from inputChan and then runs one COPY INTO for the run.
// Files go to the table stage with PUT, or to S3 when a named stage is configured.
// If the COPY fails the staged files are removed.
func LoadFiles(ctx context.Context, cfg *SnowflakeLoaderConfig, inputChan <-chan string) (LoadResult, error) {
	retval := LoadResult{}
	if cfg.StageName != "" && cfg.S3Client == nil {
		return retval, fmt.Errorf("%v requires an S3 client to use stage %v", cfg.Name, cfg.StageName)
	}
	fileCount := int64(0)
	if cfg.StepWatcher != nil {
		cfg.StepWatcher.StartWatching(&fileCount, nil)
		defer cfg.StepWatcher.StopWatching()
	}
	location := cfg.stageLocation()
	cfg.Log.Info(cfg.Name, " staging files in ", location)
	staged := make([]string, 0)
	for {
		var fileName string
		var ok bool
		select {
		case <-ctx.Done():
			cfg.cleanupStage(staged, location)
			return retval, ctx.Err()
		case fileName, ok = <-inputChan:
		}
		if !ok {
			break
		}
		key, err := cfg.stageFile(ctx, fileName, location)
		if err != nil {
			cfg.cleanupStage(staged, location)
			return retval, err
		}
		staged = append(staged, key)
		atomic.AddInt64(&fileCount, 1)
		retval.FilesStaged++
	}
	if err := ctx.Err(); err != nil {
		cfg.cleanupStage(staged, location)
		return retval, err
	}
	if retval.FilesStaged == 0 {
		cfg.Log.Info(cfg.Name, " found no files to load")
		return retval, nil
	}
	q := GetSqlSnowflakeCopyInto(cfg.TargetTable.String(), location)
	cfg.Log.Debug(cfg.Name, " executing: ", q)
	res, err := rdbms.QueryTable(ctx, cfg.Log, cfg.Db, q)
	if err != nil {
		cfg.cleanupStage(staged, location)
		return retval, errors.Wrapf(err, "%v failed to load %v", cfg.Name, cfg.TargetTable)
	}
	retval.RowsLoaded, err = rowsLoaded(res)
	if err != nil {
		return retval, err
	}
	cfg.Log.Info(cfg.Name, " loaded ", retval.RowsLoaded, " rows from ", retval.FilesStaged, " files into ", cfg.TargetTable)
	return retval, nil
}

// stageFile uploads one local file and returns its S3 key or name in the stage.
func (cfg *SnowflakeLoaderConfig) stageFile(ctx context.Context, fileName string, location string) (string, error) {
	base := filepath.Base(fileName)
	if cfg.StageName != "" {
		key := cfg.RunID + "/" + base
		fh, err := os.Open(fileName)
		if err != nil {
			return "", errors.Wrapf(err, "unable to open %v", fileName)
		}
		defer fh.Close()
		cfg.Log.Debug(cfg.Name, " uploading ", fileName, " to S3 key ", key)
		if err = cfg.S3Client.BufferPut(ctx, key, fh); err != nil {
			return "", err
		}
		return key, nil
	}
	q := GetSqlSnowflakePut(fileName, location)
	cfg.Log.Debug(cfg.Name, " executing: ", q)
	if _, err := cfg.Db.ExecContext(ctx, q); err != nil {
		return "", errors.Wrapf(err, "%v failed to PUT %v", cfg.Name, fileName)
	}
	return base, nil
}

// cleanupStage is best effort so the original error is kept.
func (cfg *SnowflakeLoaderConfig) cleanupStage(staged []string, location string) {
	if len(staged) == 0 {
		return
	}
	ctx := context.Background()
	if cfg.StageName != "" {
		for _, key := range staged {
			if err := cfg.S3Client.Delete(ctx, key); err != nil {
				cfg.Log.Warn(cfg.Name, " failed to delete staged file ", key, ": ", err)
			}
		}
		return
	}
	if _, err := cfg.Db.ExecContext(ctx, fmt.Sprintf("REMOVE %v", location)); err != nil {
		cfg.Log.Warn(cfg.Name, " failed to remove staged files from ", location, ": ", err)
	}
}

// rowsLoaded sums the rows_loaded column of COPY INTO output.
func rowsLoaded(res *rdbms.ResultTable) (int64, error) {
	idx := res.ColumnIndex("rows_loaded")
	if idx < 0 {
		return 0, nil
	}
	var total int64
	for _, r := range res.Rows {
		v, err := helper.GetStringFromInterfacePreserveTimeZone(r[idx])
		if err != nil {
			return 0, err
		}
		if v == "" {
			continue
		}
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, errors.Wrapf(err, "unexpected rows_loaded value %q", v)
		}
		total += n
	}
	return total, nil
}
