package actions

import (
	"context"
	"fmt"
	"io"

	"github.com/pkg/errors"
	"github.com/relloyd/snowxfer/config"
	"github.com/relloyd/snowxfer/helper"
	"github.com/relloyd/snowxfer/logger"
	"github.com/relloyd/snowxfer/stats"
)

type TransferConfig struct {
	Settings                  *config.Settings `errorTxt:"settings" mandatory:"yes"`
	Query                     string
	Limit                     int
	ShowProgress              bool
	WebService                bool
	WebPort                   int
	StatsDumpFrequencySeconds int
	MetadataDir               string
	Output                    io.Writer
	Options                   []DataTransferOption // applied last.
}

// ResolveDestination picks the destination for a CLI transfer.
// A destination equal to the source table was defaulted from it, so a query uses its alias instead
// and a table uses its unqualified upper case name.
func ResolveDestination(s *config.Settings, query string) string {
	tr := s.Transfer
	if tr.DestinationTable != "" && (tr.DestinationTable != tr.SourceTable || tr.SourceTable == "") {
		return tr.DestinationTable
	}
	return DefaultDestination(query, tr.SourceTable)
}

// RunTransfer validates the settings and runs one transfer with optional progress logging,
// periodic stats and a stats web server. The summary is printed on success.
func RunTransfer(ctx context.Context, log logger.Logger, cfg *TransferConfig) (stats.TransferStats, error) {
	if err := helper.ValidateStructIsPopulated(cfg); err != nil {
		return stats.TransferStats{}, err
	}
	s := cfg.Settings
	if cfg.Query == "" && s.Transfer.SourceTable == "" {
		return stats.TransferStats{}, errors.New("--source-table is required when not using --query")
	}
	if err := s.Validate(); err != nil {
		return stats.TransferStats{}, err
	}
	s.Transfer.DestinationTable = ResolveDestination(s, cfg.Query)
	w := outputOrStdout(cfg.Output)
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	sm := stats.NewPipelineStats(log, stats.SetStatsDumpFrequency(cfg.StatsDumpFrequencySeconds))
	opts := []DataTransferOption{
		WithStatsManager(sm),
		WithProgress(cfg.ShowProgress),
		WithOutput(w),
		WithMetadataDir(cfg.MetadataDir),
	}
	t := NewDataTransfer(log, s, append(opts, cfg.Options...)...)
	defer t.Cleanup()
	printf(w, "Starting transfer...\n")
	if cfg.Query != "" {
		printf(w, "Query: %v\n", helper.Truncate(cfg.Query, 103))
	} else {
		printf(w, "Source: %v\n", s.Transfer.SourceTable)
	}
	printf(w, "Destination: %v\n", fmt.Sprintf("%v.%v.%v", s.Snowflake.Database, s.Snowflake.Schema, s.Transfer.DestinationTable))
	if cfg.WebService {
		srv, err := RunWebServer(log, &WebServerConfig{Port: cfg.WebPort, Stats: t, Status: t, Stop: cancel})
		if err != nil {
			return stats.TransferStats{}, err
		}
		defer func() {
			if err := srv.Shutdown(); err != nil {
				log.Warn("web server shutdown: ", err)
			}
		}()
	}
	if err := t.SetupConnections(ctx); err != nil {
		return t.Stats(), err
	}
	if err := t.TransferTable(ctx, cfg.Query, cfg.Limit); err != nil {
		return t.Stats(), err
	}
	t.PrintSummary()
	printf(w, "Transfer completed successfully!\n")
	return t.Stats(), nil
}
