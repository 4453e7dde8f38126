package components

import (
	"context"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/relloyd/snowxfer/aws/s3"
	c "github.com/relloyd/snowxfer/constants"
	"github.com/relloyd/snowxfer/logger"
	"github.com/relloyd/snowxfer/rdbms"
	"github.com/relloyd/snowxfer/rdbms/shared"
	"github.com/relloyd/snowxfer/stats"
	"github.com/relloyd/snowxfer/stream"
	"golang.org/x/sync/errgroup"
)

// PipelineConfig wires a partitioned reader, a CSV writer and a Snowflake loader together.
type PipelineConfig struct {
	Log          logger.Logger
	Source       shared.Connector
	Target       shared.Connector
	Queries      []string    // one per partition.
	Columns      []CsvColumn // output columns in query order.
	TargetTable  rdbms.SchemaTable
	StageName    string         // optional named external stage.
	S3Client     s3.BasicClient // required with StageName.
	RunID        string
	FetchSize    int
	BatchSize    int
	MaxWorkers   int
	QueryTimeout time.Duration
	TempDir      string // parent for the run's CSV directory; empty means the OS temp dir.
	StatsManager stats.StatsManager
	Progress     *stats.ProgressTracker
}

type PipelineResult struct {
	RowsRead    int64
	RowsLoaded  int64
	FilesLoaded int
}

// RunPipeline streams the source rows into the target table.
// Memory use is bounded by the channel sizes times FetchSize rows.
// Local CSV files are removed before returning.
func RunPipeline(ctx context.Context, cfg *PipelineConfig) (PipelineResult, error) {
	retval := PipelineResult{}
	dir, err := os.MkdirTemp(cfg.TempDir, c.AppName+"-"+cfg.RunID+"-")
	if err != nil {
		return retval, errors.Wrap(err, "unable to create directory for CSV files")
	}
	defer func() {
		if err := os.RemoveAll(dir); err != nil {
			cfg.Log.Warn("unable to remove CSV directory ", dir, ": ", err)
		}
	}()
	sm := cfg.StatsManager
	if sm == nil {
		sm = stats.NewMockStatsManager()
	}
	header := make([]string, len(cfg.Columns))
	for idx, col := range cfg.Columns {
		header[idx] = col.Name
	}
	batches := make(chan stream.Batch, c.ChanSize)
	files := make(chan string, c.ChanSize)
	readerCfg := &PartitionedReaderConfig{
		Log:          cfg.Log,
		Name:         "Table Input",
		Db:           cfg.Source,
		Queries:      cfg.Queries,
		FetchSize:    cfg.FetchSize,
		MaxWorkers:   cfg.MaxWorkers,
		QueryTimeout: cfg.QueryTimeout,
		StepWatcher:  sm.AddStepWatcher("Table Input"),
		Progress:     cfg.Progress,
	}
	writerCfg := &CsvFileWriterConfig{
		Log:            cfg.Log,
		Name:           "CSV Writer",
		OutputDir:      dir,
		FileNamePrefix: cfg.RunID,
		MaxFileRows:    cfg.BatchSize,
		HeaderFields:   header,
		Columns:        cfg.Columns,
		StepWatcher:    sm.AddStepWatcher("CSV Writer"),
	}
	loaderCfg := &SnowflakeLoaderConfig{
		Log:         cfg.Log,
		Name:        "Snowflake Loader",
		Db:          cfg.Target,
		TargetTable: cfg.TargetTable,
		StageName:   cfg.StageName,
		S3Client:    cfg.S3Client,
		RunID:       cfg.RunID,
		StepWatcher: sm.AddStepWatcher("Snowflake Loader"),
	}
	sm.StartDumping()
	defer sm.StopDumping()
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := ReadPartitions(gctx, readerCfg, batches)
		retval.RowsRead = n
		return err
	})
	g.Go(func() error {
		return WriteCsvFiles(gctx, writerCfg, batches, files)
	})
	g.Go(func() error {
		res, err := LoadFiles(gctx, loaderCfg, files)
		retval.FilesLoaded = res.FilesStaged
		retval.RowsLoaded = res.RowsLoaded
		return err
	})
	if err = g.Wait(); err != nil {
		return retval, err
	}
	return retval, nil
}
