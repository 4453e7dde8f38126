package actions

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/relloyd/snowxfer/aws/s3"
	"github.com/relloyd/snowxfer/components"
	"github.com/relloyd/snowxfer/config"
	"github.com/relloyd/snowxfer/constants"
	"github.com/relloyd/snowxfer/helper"
	"github.com/relloyd/snowxfer/logger"
	"github.com/relloyd/snowxfer/rdbms"
	"github.com/relloyd/snowxfer/rdbms/shared"
	"github.com/relloyd/snowxfer/stats"
	tabledefinition "github.com/relloyd/snowxfer/table-definition"
	"github.com/rs/xid"
)

// DataTransfer copies a source table or query into a Snowflake table.
// Call SetupConnections, then TransferTable as often as needed, then Cleanup.
type DataTransfer struct {
	log          logger.Logger
	settings     *config.Settings
	out          io.Writer
	showProgress bool
	metadataDir  string
	tempDir      string
	statsManager stats.StatsManager
	source       shared.Connector
	target       shared.Connector
	s3Client     s3.BasicClient
	ownSource    bool
	ownTarget    bool
	stats        stats.TransferStats
	status       safeStatus
	lastQuery    string
	typeMap      map[string]string
	now          func() time.Time
	newRunID     func() string
}

type DataTransferOption func(t *DataTransfer)

// WithConnections supplies open connections. They are not closed by Cleanup.
func WithConnections(source shared.Connector, target shared.Connector) DataTransferOption {
	return func(t *DataTransfer) {
		t.source = source
		t.target = target
	}
}

func WithS3Client(c s3.BasicClient) DataTransferOption {
	return func(t *DataTransfer) {
		t.s3Client = c
	}
}

func WithStatsManager(sm stats.StatsManager) DataTransferOption {
	return func(t *DataTransfer) {
		t.statsManager = sm
	}
}

// WithOutput sets where the transfer summary is printed. Default stdout.
func WithOutput(w io.Writer) DataTransferOption {
	return func(t *DataTransfer) {
		t.out = w
	}
}

// WithProgress counts the source rows up front and logs progress while they stream.
func WithProgress(show bool) DataTransferOption {
	return func(t *DataTransfer) {
		t.showProgress = show
	}
}

// WithMetadataDir sets the directory for transfer metadata files. Default is the working directory.
func WithMetadataDir(dir string) DataTransferOption {
	return func(t *DataTransfer) {
		t.metadataDir = dir
	}
}

// WithTempDir sets the parent directory of the CSV files staged during a run.
func WithTempDir(dir string) DataTransferOption {
	return func(t *DataTransfer) {
		t.tempDir = dir
	}
}

// WithTypeOverrides maps source data types, case insensitive, to Snowflake column types.
// Entries win over the built in mapping.
func WithTypeOverrides(m map[string]string) DataTransferOption {
	return func(t *DataTransfer) {
		t.typeMap = make(map[string]string, len(m))
		for k, v := range m {
			t.typeMap[strings.ToLower(k)] = v
		}
	}
}

func NewDataTransfer(log logger.Logger, settings *config.Settings, options ...DataTransferOption) *DataTransfer {
	t := &DataTransfer{
		log:      log,
		settings: settings,
		out:      os.Stdout,
		now:      time.Now,
		newRunID: func() string { return xid.New().String() },
	}
	for _, option := range options {
		option(t)
	}
	return t
}

// SetupConnections opens the source and Snowflake connections, plus the S3 client when an
// external stage is configured. Connections supplied via WithConnections are kept.
func (t *DataTransfer) SetupConnections(ctx context.Context) error {
	t.log.Info("Setting up connections")
	if t.source == nil {
		src, err := rdbms.OpenSource(ctx, t.log, t.settings)
		if err != nil {
			return errors.Wrap(err, "connection setup failed")
		}
		t.source = src
		t.ownSource = true
	}
	if t.target == nil {
		tgt, err := rdbms.OpenSnowflake(ctx, t.log, t.settings.Snowflake)
		if err != nil {
			t.Cleanup()
			return errors.Wrap(err, "connection setup failed")
		}
		t.target = tgt
		t.ownTarget = true
	}
	if sf := t.settings.Snowflake; sf.UsesExternalStage() && t.s3Client == nil {
		loc, err := s3.ParseStageLocation(sf.S3Bucket, sf.S3Prefix, sf.S3Region)
		if err != nil {
			t.Cleanup()
			return err
		}
		t.log.Info("Staging files in ", loc.String(), " for stage ", sf.Stage)
		c, err := s3.NewBasicClient(loc)
		if err != nil {
			t.Cleanup()
			return errors.Wrap(err, "unable to create S3 client for the external stage")
		}
		t.s3Client = c
	}
	t.log.Info("All connections established")
	return nil
}

// Cleanup closes the connections opened by SetupConnections.
func (t *DataTransfer) Cleanup() {
	if t.ownSource && t.source != nil {
		if err := t.source.Close(); err != nil {
			t.log.Warn("Cleanup error: ", err)
		}
		t.source = nil
		t.ownSource = false
	}
	if t.ownTarget && t.target != nil {
		if err := t.target.Close(); err != nil {
			t.log.Warn("Cleanup error: ", err)
		}
		t.target = nil
		t.ownTarget = false
	}
	t.log.Debug("Connections closed")
}

func (t *DataTransfer) Source() shared.Connector {
	return t.source
}

func (t *DataTransfer) Target() shared.Connector {
	return t.target
}

// Stats returns the statistics of the last transfer.
func (t *DataTransfer) Stats() stats.TransferStats {
	return t.stats
}

// Status returns the state of the current or last transfer.
func (t *DataTransfer) Status() TransferStatus {
	return t.status.get()
}

// GetStats satisfies stats.StatsFetcher for the web server.
func (t *DataTransfer) GetStats() []stats.Stats {
	if t.statsManager == nil {
		return nil
	}
	return t.statsManager.GetStats()
}

// TransferTable copies the configured source table, or query when it is not empty, into the
// configured destination. A positive limit caps the number of rows read.
func (t *DataTransfer) TransferTable(ctx context.Context, query string, limit int) (err error) {
	if t.source == nil || t.target == nil {
		return errors.New("connections are not set up")
	}
	start := t.now()
	memStart, merr := stats.MemoryUsageMB()
	if merr != nil {
		t.log.Debug("unable to read memory usage: ", merr)
	}
	t.stats = stats.TransferStats{StartTime: start}
	t.status.set(func(s *TransferStatus) {
		*s = TransferStatus{StartTime: start, Status: StatusRunning}
	})
	defer func() {
		end := t.now()
		if err != nil {
			t.stats.Errors++
			t.stats.Finish(end, memStart)
			t.log.Error("Transfer failed: ", err)
		}
		t.status.set(func(s *TransferStatus) {
			s.EndTime = end
			s.Status = StatusComplete
			if err != nil {
				s.Status = StatusCompleteWithError
				s.Error = err.Error()
			}
			if errors.Cause(err) == context.Canceled {
				s.Status = StatusShutdown
			}
		})
	}()
	tr := t.settings.Transfer
	var source, table string
	if query != "" {
		source = AsSubquery(query)
		t.log.Info("Starting transfer using custom query -> ", t.destination(query))
		t.log.Debug("Query: ", query)
	} else {
		if tr.SourceTable == "" {
			return errors.New("a source table or query is required")
		}
		table = tr.SourceTable
		source = table
		t.log.Info("Starting transfer: ", table, " -> ", t.destination(query))
	}
	t.lastQuery = query
	if limit > 0 {
		t.log.Debug("Limiting to ", limit, " rows")
		source = LimitSource(t.source.GetType(), source, limit)
	}
	dest, err := helper.ValidateTableName(t.destination(query))
	if err != nil {
		return errors.Wrap(err, "invalid destination table")
	}
	target := rdbms.SchemaTable{SchemaTable: dest}
	mapper, err := tabledefinition.GetMapper(t.source.GetType())
	if err != nil {
		return err
	}
	tabCols, err := t.sourceColumns(ctx, source, table, mapper)
	if err != nil {
		return err
	}
	t.overrideTypes(&tabCols)
	if err = t.prepareTarget(ctx, tabCols, target, mapper); err != nil {
		return err
	}
	parts, err := components.PlanPartitions(tr.PartitionColumn, tr.LowerBound, tr.UpperBound, tr.NumPartitions)
	if err != nil {
		return errors.Wrap(err, "unable to plan partitions")
	}
	queries := make([]string, len(parts))
	for idx, p := range parts {
		queries[idx] = components.PartitionQuery(source, p)
	}
	t.log.Debug("reading source with ", len(queries), " partition queries")
	var progress *stats.ProgressTracker
	if t.showProgress {
		total, cerr := rdbms.QueryInt64(ctx, t.source, CountQuery(t.source.GetType(), source))
		if cerr != nil {
			t.log.Warn("unable to count source rows: ", cerr)
		}
		t.log.Info("Transferring ", helper.FormatCount(total), " rows")
		progress = stats.NewProgressTracker(t.log, total, "Transferring "+dest)
	}
	stageName := ""
	if t.settings.Snowflake.UsesExternalStage() {
		stageName = t.settings.Snowflake.Stage
	}
	res, err := components.RunPipeline(ctx, &components.PipelineConfig{
		Log:          t.log,
		Source:       t.source,
		Target:       t.target,
		Queries:      queries,
		Columns:      csvColumns(t.log, tabCols, mapper),
		TargetTable:  target,
		StageName:    stageName,
		S3Client:     t.s3Client,
		RunID:        t.newRunID(),
		FetchSize:    tr.FetchSize,
		BatchSize:    tr.BatchSize,
		MaxWorkers:   tr.MaxWorkers,
		QueryTimeout: time.Duration(tr.QueryTimeout) * time.Second,
		TempDir:      t.tempDir,
		StatsManager: t.statsManager,
		Progress:     progress,
	})
	if err != nil {
		return errors.Wrap(err, "transfer failed")
	}
	if progress != nil {
		progress.Complete()
	}
	t.stats.RowsTransferred = res.RowsLoaded
	t.stats.FilesLoaded = res.FilesLoaded
	if res.RowsLoaded != res.RowsRead {
		t.log.Warn(fmt.Sprintf("%v rows were read but %v rows were loaded", res.RowsRead, res.RowsLoaded))
		t.stats.Warnings++
	}
	t.stats.Finish(t.now(), memStart)
	t.saveMetadata(dest, query)
	t.log.Info(fmt.Sprintf("Transfer completed: %v rows in %.1fs", helper.FormatCount(t.stats.RowsTransferred), t.stats.DurationSeconds))
	return nil
}

// destination returns the configured destination or one derived from the source.
func (t *DataTransfer) destination(query string) string {
	if d := t.settings.Transfer.DestinationTable; d != "" {
		return d
	}
	return DefaultDestination(query, t.settings.Transfer.SourceTable)
}

// sourceName describes the source for logs and metadata.
func (t *DataTransfer) sourceName(query string) string {
	if query == "" || t.settings.Transfer.SourceTable != "" {
		return t.settings.Transfer.SourceTable
	}
	return fmt.Sprintf("<query: %v>", helper.Truncate(query, 53))
}

// sourceColumns reads column metadata from the catalog for a table and falls back to a zero row
// query for everything else, or when the catalog has nothing.
func (t *DataTransfer) sourceColumns(ctx context.Context, source string, table string, mapper tabledefinition.Mapper) (tabledefinition.TableColumns, error) {
	if table != "" {
		tabCols, err := tabledefinition.GetTableDefinition(ctx, t.log, t.source, rdbms.SchemaTable{SchemaTable: table})
		if err == nil {
			return tabCols, nil
		}
		t.log.Debug("catalog lookup failed, using schema detection: ", err)
	}
	q := components.SchemaDetectionQuery(t.source.GetType(), source)
	t.log.Debug("Schema detection query: ", q)
	rows, err := t.source.QueryContext(ctx, q)
	if err != nil {
		return tabledefinition.TableColumns{}, errors.Wrap(err, "schema detection failed")
	}
	defer rows.Close()
	colTypes, err := rows.ColumnTypes()
	if err != nil {
		return tabledefinition.TableColumns{}, errors.Wrap(err, "unable to read source column types")
	}
	tabCols := tabledefinition.ColumnsFromColumnTypes(t.log, colTypes, mapper)
	if len(tabCols.Columns) == 0 {
		return tabCols, errors.New("source returned no columns")
	}
	t.log.Debug("Generated schema with ", len(tabCols.Columns), " columns")
	return tabCols, nil
}

func (t *DataTransfer) overrideTypes(tabCols *tabledefinition.TableColumns) {
	for idx, col := range tabCols.Columns {
		if tgt, ok := t.typeMap[strings.ToLower(col.DataType)]; ok {
			t.log.Debug("column ", col.ColName, " of type ", col.DataType, " mapped to ", tgt)
			tabCols.Columns[idx].TargetType = tgt
		}
	}
}

// prepareTarget creates the destination table as the transfer mode requires.
func (t *DataTransfer) prepareTarget(ctx context.Context, tabCols tabledefinition.TableColumns, target rdbms.SchemaTable, mapper tabledefinition.Mapper) error {
	mode := t.settings.Transfer.Mode
	if mode == "" {
		mode = constants.TransferModeOverwrite
	}
	if mode == constants.TransferModeError {
		exists, err := rdbms.SnowflakeTableExists(ctx, t.target, target.SchemaTable)
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("table %v already exists and mode is %q", target.SchemaTable, mode)
		}
	}
	ddl, err := tabledefinition.ConvertTableDefinitionToSnowflake(t.log, tabCols, target, mapper, mode)
	if err != nil {
		return err
	}
	t.log.Debug("Writing to table: ", target.SchemaTable, " with DDL: ", ddl)
	if _, err = t.target.ExecContext(ctx, ddl); err != nil {
		return errors.Wrapf(err, "unable to create table %v", target.SchemaTable)
	}
	return nil
}

func csvColumns(log logger.Logger, tabCols tabledefinition.TableColumns, mapper tabledefinition.Mapper) []components.CsvColumn {
	retval := make([]components.CsvColumn, len(tabCols.Columns))
	for idx, col := range tabCols.Columns {
		retval[idx] = components.CsvColumn{
			Name:       col.ColName,
			SourceType: strings.ToLower(col.DataType),
			TargetType: tabledefinition.SnowflakeColumnType(log, col, mapper),
		}
	}
	return retval
}

// saveMetadata writes the metadata file when enabled. Failures are logged only.
func (t *DataTransfer) saveMetadata(dest string, query string) {
	if !t.settings.Transfer.SaveMetadata {
		t.log.Debug("Metadata saving disabled, skipping")
		return
	}
	m := stats.Metadata{
		SourceTable:      t.sourceName(query),
		DestinationTable: dest,
		Query:            query,
		TransferStats:    t.stats,
		Config: stats.MetadataConfig{
			DatabaseType: t.settings.DatabaseType.String(),
			Mode:         t.settings.Transfer.Mode,
			FetchSize:    t.settings.Transfer.FetchSize,
			MaxWorkers:   t.settings.Transfer.MaxWorkers,
		},
	}
	fileName, err := stats.SaveMetadata(t.metadataDir, m, t.now())
	if err != nil {
		t.log.Warn("Failed to save transfer metadata: ", err)
		return
	}
	t.log.Info("Transfer metadata saved to: ", fileName)
}

// PrintSummary writes the outcome of the last transfer.
func (t *DataTransfer) PrintSummary() {
	PrintTransferSummary(t.out, t.sourceName(t.lastQuery), t.destination(t.lastQuery), t.stats)
}

// PrintTransferSummary writes a banner with the transfer statistics to w.
func PrintTransferSummary(w io.Writer, source string, destination string, s stats.TransferStats) {
	banner := strings.Repeat("=", 80)
	title := "TRANSFER SUMMARY"
	pad := (len(banner) - len(title)) / 2
	fmt.Fprintln(w)
	fmt.Fprintln(w, banner)
	fmt.Fprintln(w, strings.Repeat(" ", pad)+title)
	fmt.Fprintln(w, banner)
	fmt.Fprintf(w, "Source: %v\n", source)
	fmt.Fprintf(w, "Destination: %v\n", destination)
	fmt.Fprintf(w, "Rows Transferred: %v\n", helper.FormatCount(s.RowsTransferred))
	fmt.Fprintf(w, "Duration: %v\n", helper.FormatDuration(s.DurationSeconds))
	fmt.Fprintf(w, "Transfer Rate: %.1f rows/sec\n", s.RowsPerSecond())
	if s.Errors > 0 {
		fmt.Fprintf(w, "Errors: %v\n", s.Errors)
	}
	fmt.Fprintln(w, banner)
}

// TransferData derives the destination of a query when none is set, then sets up connections,
// transfers and cleans up. The summary is printed after a successful transfer.
func TransferData(ctx context.Context, log logger.Logger, settings *config.Settings, query string, options ...DataTransferOption) (stats.TransferStats, error) {
	if query != "" && settings.Transfer.DestinationTable == "" {
		settings.Transfer.DestinationTable = DefaultDestination(query, "")
	}
	t := NewDataTransfer(log, settings, options...)
	defer t.Cleanup()
	if err := t.SetupConnections(ctx); err != nil {
		return t.Stats(), err
	}
	if err := t.TransferTable(ctx, query, 0); err != nil {
		return t.Stats(), err
	}
	t.PrintSummary()
	return t.Stats(), nil
}
