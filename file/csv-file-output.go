package file

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/pkg/errors"
	"github.com/relloyd/snowxfer/logger"
)

var reGzipExtension = regexp.MustCompile(`^(.*?)(\.*)(?i)(gzip|gz){0,}$`) // remove multiple leading '.' and trailing (case insensitive) "gz|gzip"

// CSVFileOutput writes CSV records to OS files, starting a new file every maxFileRows records.
// It is not safe for concurrent use.
type CSVFileOutput struct {
	log               logger.Logger
	directory         string
	prefix            string
	extension         string
	headerRecord      []string
	useGzip           bool
	maxFileRows       int
	currentSuffixID   int
	currentName       string
	currentRowCount   int
	totalRowCount     int64
	file              *os.File
	gzWriter          *gzip.Writer
	fWriter           *bufio.Writer
	ListOfOutputFiles []string
}

// NewCSVFileOutput creates a new CSV file writer. Supply a valid directory or empty string to use a new OS temp directory.
// Set maxFileRows to the number of rows you want in each CSV file (excluding the header) or 0 for a single file.
// Setting useGzip will use gzip compression and make the extension end with '.gz'.
func NewCSVFileOutput(log logger.Logger, outputDirectory string, fileNamePrefix string, fileNameExtension string, maxFileRows int, useGzip bool) (*CSVFileOutput, error) {
	f := &CSVFileOutput{log: log, prefix: fileNamePrefix, extension: fileNameExtension, maxFileRows: maxFileRows, useGzip: useGzip}
	if outputDirectory == "" {
		var err error
		if f.directory, err = os.MkdirTemp("", "csv-output-"); err != nil {
			return nil, errors.Wrap(err, "error creating temp directory for CSV files")
		}
	} else {
		f.directory = outputDirectory
	}
	if useGzip {
		f.extension = reGzipExtension.ReplaceAllString(f.extension, "$1.gz")
	}
	log.Debug("CSVFileOutput directory=", f.directory, "; prefix=", f.prefix, "; extension=", f.extension, "; maxFileRows=", f.maxFileRows, "; useGzip=", f.useGzip)
	return f, nil
}

// Directory returns the directory that files are written to.
func (f *CSVFileOutput) Directory() string {
	return f.directory
}

// TotalRowCount returns the number of records written excluding headers.
func (f *CSVFileOutput) TotalRowCount() int64 {
	return f.totalRowCount
}

// SetHeader will store the supplied record for output at the top of each created CSV file.
func (f *CSVFileOutput) SetHeader(record []string) {
	f.headerRecord = record
}

// WriteToCSV writes record to the current CSV file, opening one if needed.
// Fields flagged in nulls are written as empty unquoted values and other empty fields as "". Supply nil when
// there are no NULLs.
// When the file reaches maxFileRows it is closed and its name is returned, otherwise closedFileName is "".
func (f *CSVFileOutput) WriteToCSV(record []string, nulls []bool) (closedFileName string, err error) {
	if f.file == nil {
		if err = f.createNewCSVWriter(); err != nil {
			return
		}
	}
	if err = writeRecord(f.fWriter, record, nulls); err != nil {
		return "", errors.Wrapf(err, "unable to write to CSV file %v", f.currentName)
	}
	f.currentRowCount++
	f.totalRowCount++
	if f.maxFileRows > 0 && f.currentRowCount >= f.maxFileRows { // if we need to rotate the output file...
		return f.Close()
	}
	return
}

// Close flushes and closes the current file, if any, and returns its name.
func (f *CSVFileOutput) Close() (closedFileName string, err error) {
	if f.file == nil {
		return "", nil
	}
	closedFileName = f.currentName
	if err = f.fWriter.Flush(); err != nil {
		return "", errors.Wrapf(err, "error flushing CSV file %v", f.currentName)
	}
	if f.useGzip {
		if err = f.gzWriter.Close(); err != nil {
			return "", errors.Wrap(err, "error closing gzip writer")
		}
	}
	if err = f.file.Close(); err != nil {
		return "", errors.Wrapf(err, "unable to close OS file %v", f.currentName)
	}
	f.log.Debug("closed CSV file ", closedFileName, " with ", f.currentRowCount, " rows")
	f.file = nil
	f.currentRowCount = 0
	return
}

// RemoveAll deletes the output directory and every file in it.
func (f *CSVFileOutput) RemoveAll() error {
	if _, err := f.Close(); err != nil {
		f.log.Warn(err)
	}
	return os.RemoveAll(f.directory)
}

func (f *CSVFileOutput) createNewCSVWriter() error {
	f.currentSuffixID++
	f.currentName = filepath.Join(f.directory, fmt.Sprintf("%v_%06d.%v", f.prefix, f.currentSuffixID, f.extension))
	f.log.Debug("Creating new CSV file '", f.currentName, "'")
	var err error
	if f.file, err = os.Create(f.currentName); err != nil {
		f.file = nil
		return errors.Wrapf(err, "unable to create OS file with name %v", f.currentName)
	}
	f.ListOfOutputFiles = append(f.ListOfOutputFiles, f.currentName)
	if f.useGzip { // if should use gzip...
		f.gzWriter = gzip.NewWriter(f.file)
		f.fWriter = bufio.NewWriter(f.gzWriter)
	} else {
		f.fWriter = bufio.NewWriter(f.file)
	}
	if f.headerRecord != nil {
		if err = writeRecord(f.fWriter, f.headerRecord, nil); err != nil {
			return errors.Wrap(err, "unable to write header to CSV file")
		}
	}
	return nil
}

// writeRecord writes one comma separated line, quoting fields the way encoding/csv does.
// encoding/csv never quotes an empty field so NULL and "" could not be told apart.
func writeRecord(w *bufio.Writer, fields []string, nulls []bool) error {
	for idx, field := range fields {
		if idx > 0 {
			_ = w.WriteByte(',')
		}
		if idx < len(nulls) && nulls[idx] {
			continue
		}
		if !fieldNeedsQuotes(field) {
			_, _ = w.WriteString(field)
			continue
		}
		_ = w.WriteByte('"')
		_, _ = w.WriteString(strings.ReplaceAll(field, `"`, `""`))
		_ = w.WriteByte('"')
	}
	_, err := w.WriteString("\n") // bufio errors are sticky so the last write reports any failure.
	return err
}

func fieldNeedsQuotes(field string) bool {
	if field == "" || field == `\.` {
		return true
	}
	if strings.ContainsAny(field, ",\"\r\n") {
		return true
	}
	r, _ := utf8.DecodeRuneInString(field)
	return unicode.IsSpace(r)
}
