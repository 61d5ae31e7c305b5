package importer

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/shunichi-ikebuchi/qif-sync/pkg/mtp"
)

const sampleQIF = "!Type:Bank\nD1/5/2023\nT-3.50\nMCoffee\nLExpenses:Food\n^\n"

// fakeDevice serves canned file listings and contents.
type fakeDevice struct {
	files    []mtp.DeviceFile
	contents map[string]string // filename -> QIF text
	listErr  error
	getErr   error
	gets     []string // filenames actually transferred
}

func (d *fakeDevice) ListFiles() ([]mtp.DeviceFile, error) {
	return d.files, d.listErr
}

func (d *fakeDevice) GetFile(file mtp.DeviceFile, dir string) (string, error) {
	if d.getErr != nil {
		return "", d.getErr
	}
	d.gets = append(d.gets, file.Filename)
	local := filepath.Join(dir, file.Filename)
	if err := os.WriteFile(local, []byte(d.contents[file.Filename]), 0644); err != nil {
		return "", err
	}
	return local, nil
}

func newCache(t *testing.T) *RunCache {
	t.Helper()
	cache, err := LoadRunCache(filepath.Join(t.TempDir(), "imported.json"))
	if err != nil {
		t.Fatal(err)
	}
	return cache
}

func TestReadSourceFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "statement.qif")
	if err := os.WriteFile(path, []byte(sampleQIF), 0644); err != nil {
		t.Fatal(err)
	}
	cache := newCache(t)

	entries, err := ReadSource(path, cache, nil)
	if err != nil {
		t.Fatalf("ReadSource() returned error: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("ReadSource() returned %d entries, expected 1", len(entries))
	}
	if !cache.Contains(path) {
		t.Error("source should be cached after a full parse")
	}
}

func TestReadSourceCachedFileIsNotReopened(t *testing.T) {
	// The path does not exist on disk: a cached source must be skipped
	// before any open attempt.
	path := filepath.Join(t.TempDir(), "gone.qif")
	cache := newCache(t)
	cache.Add(path)

	entries, err := ReadSource(path, cache, nil)
	if err != nil {
		t.Fatalf("ReadSource() returned error: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("cached source contributed %d entries, expected 0", len(entries))
	}
}

func TestReadSourceMissingFileIsFatal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.qif")
	cache := newCache(t)

	if _, err := ReadSource(path, cache, nil); err == nil {
		t.Fatal("ReadSource() should fail on an unreadable file")
	}
	if cache.Contains(path) {
		t.Error("a failed source must not be marked as imported")
	}
}

func TestReadSourceParseErrorDoesNotCache(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.qif")
	if err := os.WriteFile(path, []byte("Dnot-a-date\nT-1.00\n^\n"), 0644); err != nil {
		t.Fatal(err)
	}
	cache := newCache(t)

	if _, err := ReadSource(path, cache, nil); err == nil {
		t.Fatal("ReadSource() should propagate parse errors")
	}
	if cache.Contains(path) {
		t.Error("a source that failed to parse must not be marked as imported")
	}
}

func TestReadSourceDevicePattern(t *testing.T) {
	device := &fakeDevice{
		files: []mtp.DeviceFile{
			{ID: "1", Filename: "export-2023.qif"},
			{ID: "2", Filename: "photo.jpg"},
			{ID: "3", Filename: "export-2024.qif"},
		},
		contents: map[string]string{
			"export-2023.qif": sampleQIF,
			"export-2024.qif": sampleQIF,
		},
	}
	cache := newCache(t)

	entries, err := ReadSource(`mtp:export-.*\.qif`, cache, device)
	if err != nil {
		t.Fatalf("ReadSource() returned error: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("ReadSource() returned %d entries, expected 2", len(entries))
	}
	if len(device.gets) != 2 {
		t.Errorf("transferred %d files, expected 2 (non-matching files are not fetched)", len(device.gets))
	}
	if !cache.Contains("export-2023.qif") || !cache.Contains("export-2024.qif") {
		t.Error("matched device files should be cached by filename")
	}
	if cache.Contains("photo.jpg") {
		t.Error("non-matching device file must not be cached")
	}
}

func TestReadSourceDevicePatternIsAnchored(t *testing.T) {
	// The pattern matches from the start of the filename: "export" must
	// not pick up (and cache) a mid-string match like "my-export.qif".
	device := &fakeDevice{
		files: []mtp.DeviceFile{
			{ID: "1", Filename: "export-2023.qif"},
			{ID: "2", Filename: "my-export.qif"},
		},
		contents: map[string]string{
			"export-2023.qif": sampleQIF,
			"my-export.qif":   sampleQIF,
		},
	}
	cache := newCache(t)

	entries, err := ReadSource("mtp:export", cache, device)
	if err != nil {
		t.Fatalf("ReadSource() returned error: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("ReadSource() returned %d entries, expected 1", len(entries))
	}
	if len(device.gets) != 1 || device.gets[0] != "export-2023.qif" {
		t.Errorf("transferred files = %v, expected only export-2023.qif", device.gets)
	}
	if cache.Contains("my-export.qif") {
		t.Error("a mid-string match must not be imported or cached")
	}
}

func TestReadSourceDevicePartialCache(t *testing.T) {
	device := &fakeDevice{
		files: []mtp.DeviceFile{
			{ID: "1", Filename: "export-2023.qif"},
			{ID: "2", Filename: "export-2024.qif"},
		},
		contents: map[string]string{
			"export-2023.qif": sampleQIF,
			"export-2024.qif": sampleQIF,
		},
	}
	cache := newCache(t)
	cache.Add("export-2023.qif")

	entries, err := ReadSource(`mtp:export-.*\.qif`, cache, device)
	if err != nil {
		t.Fatalf("ReadSource() returned error: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("ReadSource() returned %d entries, expected 1 (one file already cached)", len(entries))
	}
	if len(device.gets) != 1 || device.gets[0] != "export-2024.qif" {
		t.Errorf("transferred files = %v, expected only export-2024.qif", device.gets)
	}
}

func TestReadSourceDeviceFailureIsFatal(t *testing.T) {
	retrievalErr := &mtp.RetrievalError{Op: "list", Err: errors.New("no device attached")}
	device := &fakeDevice{listErr: retrievalErr}
	cache := newCache(t)

	_, err := ReadSource(`mtp:.*\.qif`, cache, device)
	var re *mtp.RetrievalError
	if !errors.As(err, &re) {
		t.Fatalf("ReadSource() error = %v, expected *mtp.RetrievalError", err)
	}
}

func TestReadSourceBadDevicePattern(t *testing.T) {
	cache := newCache(t)
	if _, err := ReadSource("mtp:[", cache, &fakeDevice{}); err == nil {
		t.Fatal("ReadSource() should reject an invalid pattern")
	}
}
