package file

import (
	"compress/gzip"
	"encoding/csv"
	"io/ioutil"
	"os"
	"regexp"
	"testing"

	"github.com/relloyd/snowxfer/logger"
)

var header = []string{"col1", "col2"}

var data = [][]string{
	{"Line1", "Hello Readers of"},
	{"Line2", "golangcode.com"},
	{"Line3", "reeslloyd.com"},
	{"Line4", "reeslloyd4.com"}}

func writeAll(t *testing.T, f *CSVFileOutput) []string {
	fileNames := make([]string, 0)
	for _, value := range data {
		fileName, err := f.WriteToCSV(value, nil)
		if err != nil {
			t.Fatal(err)
		}
		if fileName != "" {
			fileNames = append(fileNames, fileName)
		}
	}
	last, err := f.Close()
	if err != nil {
		t.Fatal(err)
	}
	if last != "" {
		fileNames = append(fileNames, last)
	}
	return fileNames
}

func TestNewCsvFileGenerator(t *testing.T) {
	log := logger.NewLogger("csv test", "error", true)

	// Test 1 - plain CSV rotated every 3 rows.
	csv1, err := NewCSVFileOutput(log, t.TempDir(), "test", "csv", 3, false)
	if err != nil {
		t.Fatal(err)
	}
	csv1.SetHeader(header)
	fileNames := writeAll(t, csv1)
	if len(fileNames) != 2 {
		t.Fatal("test 1 - expected 2 files; got ", len(fileNames))
	}
	if csv1.TotalRowCount() != 4 {
		t.Fatal("test 1 - expected 4 rows; got ", csv1.TotalRowCount())
	}
	f1, _ := os.Open(fileNames[0])
	defer f1.Close()
	r1, _ := csv.NewReader(f1).ReadAll()
	if len(r1) != 4 {
		t.Fatal("test 1 - expected header and 3 rows in file 1; got ", len(r1))
	}
	if r1[0][0] != header[0] || r1[0][1] != header[1] {
		t.Fatal("test 1 - read bad header ", r1[0])
	}
	for idx := 0; idx < 3; idx++ {
		if r1[idx+1][0] != data[idx][0] || r1[idx+1][1] != data[idx][1] {
			t.Fatal("test 1 - read bad record ", r1[idx+1])
		}
	}
	f2, _ := os.Open(fileNames[1])
	defer f2.Close()
	r2, _ := csv.NewReader(f2).ReadAll()
	if len(r2) != 2 || r2[1][0] != data[3][0] {
		t.Fatal("test 1 - read bad file 2 ", r2)
	}

	// Test 2 - gzip capability.
	csv2, err := NewCSVFileOutput(log, "", "test", "csv.gzip", 4, true)
	if err != nil {
		t.Fatal(err)
	}
	defer csv2.RemoveAll()
	csv2.SetHeader(header)
	fileNames2 := writeAll(t, csv2)
	if len(fileNames2) != 1 {
		t.Fatal("test 2 - expected 1 file; got ", len(fileNames2))
	}
	if ok, _ := regexp.MatchString(`test_000001\.csv\.gz$`, fileNames2[0]); !ok {
		t.Fatal("test 2 - csv file is missing .gz extension: ", fileNames2[0])
	}
	f3, _ := os.Open(fileNames2[0])
	defer f3.Close()
	gz, err := gzip.NewReader(f3)
	if err != nil {
		t.Fatal(err)
	}
	r3, _ := csv.NewReader(gz).ReadAll()
	if len(r3) != 5 || r3[0][0] != header[0] || r3[4][1] != data[3][1] {
		t.Fatal("test 2 - read bad gzipped csv: ", r3)
	}

	// Test 3 - RemoveAll deletes the directory.
	if err = csv2.RemoveAll(); err != nil {
		t.Fatal(err)
	}
	if _, err = os.Stat(csv2.Directory()); !os.IsNotExist(err) {
		t.Fatal("test 3 - expected temp directory to be removed")
	}

	// Test 4 - closing with nothing written returns no file.
	csv4, _ := NewCSVFileOutput(log, t.TempDir(), "empty", "csv", 0, false)
	if name, err := csv4.Close(); name != "" || err != nil {
		t.Fatal("test 4 - expected no file; got ", name, err)
	}
}

func TestWriteNullsAndQuoting(t *testing.T) {
	log := logger.NewLogger("csv test", "error", true)
	f, err := NewCSVFileOutput(log, t.TempDir(), "nulls", "csv", 0, false)
	if err != nil {
		t.Fatal(err)
	}
	f.SetHeader([]string{"a", "b", "c"})
	rows := []struct {
		fields []string
		nulls  []bool
	}{
		{[]string{"1", "", ""}, []bool{false, true, false}},
		{[]string{`\N`, "say \"hi\"", " lead"}, nil},
		{[]string{"x\ny", "a,b", `\.`}, []bool{false, false, false}},
	}
	for _, r := range rows {
		if _, err = f.WriteToCSV(r.fields, r.nulls); err != nil {
			t.Fatal(err)
		}
	}
	name, err := f.Close()
	if err != nil {
		t.Fatal(err)
	}
	b, err := ioutil.ReadFile(name)
	if err != nil {
		t.Fatal(err)
	}
	// Test 1 - NULL is empty and unquoted; empty strings and special values are quoted.
	expected := "a,b,c\n1,,\"\"\n\\N,\"say \"\"hi\"\"\",\" lead\"\n\"x\ny\",\"a,b\",\"\\.\"\n"
	if string(b) != expected {
		t.Fatalf("expected %q; got %q", expected, string(b))
	}
	// Test 2 - the file is still valid CSV.
	fh, _ := os.Open(name)
	defer fh.Close()
	recs, err := csv.NewReader(fh).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 4 || recs[1][1] != "" || recs[2][1] != `say "hi"` || recs[3][0] != "x\ny" {
		t.Fatal("unexpected records ", recs)
	}
}
