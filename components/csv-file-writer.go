package components

import (
	"context"
	"sync/atomic"

	"github.com/pkg/errors"
	f "github.com/relloyd/snowxfer/file"
	"github.com/relloyd/snowxfer/logger"
	s "github.com/relloyd/snowxfer/stats"
	"github.com/relloyd/snowxfer/stream"
)

type CsvFileWriterConfig struct {
	Log            logger.Logger
	Name           string
	OutputDir      string // set to empty string to use a system generated sub directory in OS temp space.
	FileNamePrefix string
	MaxFileRows    int         // rows per file before a new one is started; the transfer batch_size.
	HeaderFields   []string    // written at the top of each file.
	Columns        []CsvColumn // types used to render values, in row order.
	StepWatcher    *s.StepWatcher
}

// WriteCsvFiles writes every batch from inputChan to gzip CSV files of at most cfg.MaxFileRows rows.
// Each file name is sent to outputChan once the file is closed. outputChan is closed after the last file on success.
// The files are left on disk for the loader; the caller owns cfg.OutputDir.
func WriteCsvFiles(ctx context.Context, cfg *CsvFileWriterConfig, inputChan <-chan stream.Batch, outputChan chan<- string) error {
	cfg.Log.Info(cfg.Name, " is running")
	fi, err := f.NewCSVFileOutput(cfg.Log, cfg.OutputDir, cfg.FileNamePrefix, "csv", cfg.MaxFileRows, true)
	if err != nil {
		return err
	}
	fi.SetHeader(cfg.HeaderFields)
	rowCount := int64(0)
	if cfg.StepWatcher != nil { // if we have been given a StepWatcher struct that can watch our rowCount and output channel length...
		cfg.StepWatcher.StartWatching(&rowCount, func() int { return len(outputChan) })
		defer cfg.StepWatcher.StopWatching()
	}
	send := func(fileName string) error {
		select {
		case outputChan <- fileName:
			cfg.Log.Debug(cfg.Name, " produced file ", fileName)
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	for {
		select {
		case <-ctx.Done():
			_, _ = fi.Close()
			return ctx.Err()
		case b, ok := <-inputChan:
			if !ok { // if the input channel was closed...
				fileName, err := fi.Close()
				if err != nil {
					return err
				}
				if fileName != "" {
					if err = send(fileName); err != nil {
						return err
					}
				}
				close(outputChan)
				cfg.Log.Info(cfg.Name, " complete: ", fi.TotalRowCount(), " rows in ", len(fi.ListOfOutputFiles), " files")
				return nil
			}
			for _, row := range b.Rows {
				rec, nulls, err := FormatCsvRecord(row, cfg.Columns)
				if err != nil {
					return errors.Wrapf(err, "%v unable to format row", cfg.Name)
				}
				fileName, err := fi.WriteToCSV(rec, nulls)
				if err != nil {
					return err
				}
				atomic.AddInt64(&rowCount, 1)
				if fileName != "" { // if a file was rotated...
					if err = send(fileName); err != nil {
						return err
					}
				}
			}
		}
	}
}
