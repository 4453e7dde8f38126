package stats

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"github.com/relloyd/snowxfer/constants"
)

type MetadataConfig struct {
	DatabaseType string `json:"database_type"`
	Mode         string `json:"mode"`
	FetchSize    int    `json:"fetch_size"`
	MaxWorkers   int    `json:"max_workers"`
}

// Metadata is the record of a transfer written by SaveMetadata.
type Metadata struct {
	SourceTable      string         `json:"source_table"`
	DestinationTable string         `json:"destination_table"`
	Query            string         `json:"query,omitempty"`
	TransferStats    TransferStats  `json:"transfer_stats"`
	Config           MetadataConfig `json:"config"`
	Timestamp        time.Time      `json:"timestamp"`
	Version          string         `json:"version"`
}

// MetadataFileName returns transfer_metadata_YYYYMMDD_HHMMSS.json for t.
func MetadataFileName(t time.Time) string {
	return fmt.Sprintf("transfer_metadata_%v.json", t.Format(constants.TimeFormatMetadataFile))
}

// SaveMetadata writes m as indented JSON into dir, which is created if needed, and returns the file path.
// Timestamp and Version are set here.
func SaveMetadata(dir string, m Metadata, now time.Time) (string, error) {
	m.Timestamp = now
	m.Version = constants.MetadataVersion
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", errors.Wrapf(err, "error creating metadata directory %v", dir)
	}
	b, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return "", errors.Wrap(err, "error marshalling transfer metadata")
	}
	fileName := filepath.Join(dir, MetadataFileName(now))
	if err = os.WriteFile(fileName, b, 0644); err != nil {
		return "", errors.Wrapf(err, "error writing transfer metadata to %v", fileName)
	}
	return fileName, nil
}
