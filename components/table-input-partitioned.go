package components

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"github.com/relloyd/snowxfer/logger"
	"github.com/relloyd/snowxfer/rdbms"
	"github.com/relloyd/snowxfer/rdbms/shared"
	s "github.com/relloyd/snowxfer/stats"
	"github.com/relloyd/snowxfer/stream"
	"golang.org/x/sync/errgroup"
)

type PartitionedReaderConfig struct {
	Log          logger.Logger
	Name         string
	Db           shared.Connector
	Queries      []string      // one statement per partition.
	FetchSize    int           // rows per batch sent downstream.
	MaxWorkers   int           // concurrent partition queries; 0 means one per partition.
	QueryTimeout time.Duration // per partition query; 0 means no limit.
	StepWatcher  *s.StepWatcher
	Progress     *s.ProgressTracker // optional.
}

// ReadPartitions runs every query in cfg.Queries and sends the rows to outputChan in batches of cfg.FetchSize.
// At most cfg.MaxWorkers queries run at once. The first error cancels the rest.
// outputChan is closed only on success so that consumers never mistake a failed read for the end of input.
// The total number of rows read is returned.
func ReadPartitions(ctx context.Context, cfg *PartitionedReaderConfig, outputChan chan<- stream.Batch) (int64, error) {
	rowCount := int64(0)
	if cfg.StepWatcher != nil {
		cfg.StepWatcher.StartWatching(&rowCount, func() int { return len(outputChan) })
		defer cfg.StepWatcher.StopWatching()
	}
	g, gctx := errgroup.WithContext(ctx)
	if cfg.MaxWorkers > 0 {
		g.SetLimit(cfg.MaxWorkers)
	}
	cfg.Log.Info(cfg.Name, " reading ", len(cfg.Queries), " partition(s) with up to ", cfg.MaxWorkers, " workers")
	for idx, q := range cfg.Queries {
		partition, sqltext := idx, q
		g.Go(func() error {
			return readPartition(gctx, cfg, partition, sqltext, &rowCount, outputChan)
		})
	}
	err := g.Wait()
	n := atomic.LoadInt64(&rowCount)
	if err != nil {
		return n, err
	}
	close(outputChan)
	cfg.Log.Info(cfg.Name, " complete: ", n, " rows")
	return n, nil
}

func readPartition(ctx context.Context, cfg *PartitionedReaderConfig, partition int, sqltext string, rowCount *int64, outputChan chan<- stream.Batch) error {
	if cfg.QueryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.QueryTimeout)
		defer cancel()
	}
	cfg.Log.Debug(cfg.Name, " partition ", partition, " executing SQL: ", sqltext)
	rows, err := cfg.Db.QueryContext(ctx, sqltext)
	if err != nil {
		return errors.Wrapf(err, "%v partition %v received error during database query using SQL: '%v'", cfg.Name, partition, sqltext)
	}
	defer func() {
		_ = rows.Close()
	}()
	cols, err := rows.Columns()
	if err != nil {
		return errors.Wrap(err, "error fetching columns")
	}
	send := func(b stream.Batch) error {
		if b.Len() == 0 {
			return nil
		}
		select {
		case outputChan <- b:
		case <-ctx.Done():
			return ctx.Err()
		}
		atomic.AddInt64(rowCount, int64(b.Len()))
		if cfg.Progress != nil {
			cfg.Progress.Update(int64(b.Len()))
		}
		return nil
	}
	scanPtrs, scanVals := rdbms.NewScanBuffers(len(cols))
	b := stream.NewBatch(partition, cfg.FetchSize)
	for rows.Next() {
		if err = rows.Scan(scanPtrs...); err != nil {
			return errors.Wrapf(err, "%v partition %v unable to scan row", cfg.Name, partition)
		}
		row := make([]interface{}, len(scanVals))
		copy(row, scanVals)
		b.Append(row)
		if b.IsFull(cfg.FetchSize) {
			if err = send(b); err != nil {
				return err
			}
			b = stream.NewBatch(partition, cfg.FetchSize)
		}
	}
	if err = rows.Err(); err != nil {
		return errors.Wrapf(err, "%v partition %v error reading rows", cfg.Name, partition)
	}
	return send(b)
}
