package importer

import (
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strings"

	"github.com/shunichi-ikebuchi/qif-sync/pkg/mtp"
	"github.com/shunichi-ikebuchi/qif-sync/pkg/qif"
)

// Device enumerates and retrieves files from an attached device.
// *mtp.Client satisfies it; tests substitute a fake.
type Device interface {
	ListFiles() ([]mtp.DeviceFile, error)
	GetFile(file mtp.DeviceFile, dir string) (string, error)
}

// ReadSource resolves one input source into its entries.
//
// A plain path names a QIF file; a source starting with "mtp:" is a regexp
// pattern matched against the filenames on the attached device. Sources (or
// device files) already present in the run cache contribute nothing. The
// cache is only updated after a source parsed completely, so a failed source
// is retried on the next run rather than silently lost.
func ReadSource(source string, cache *RunCache, device Device) ([]qif.Entry, error) {
	slog.Debug("Reading source", "source", source)

	if pattern, ok := strings.CutPrefix(source, mtp.Scheme); ok {
		return readDeviceSource(pattern, cache, device)
	}

	if cache.Contains(source) {
		slog.Info("Skipping source (already imported)", "source", source)
		return nil, nil
	}

	f, err := os.Open(source)
	if err != nil {
		return nil, fmt.Errorf("failed to open source %s: %w", source, err)
	}
	defer f.Close()

	entries, err := qif.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", source, err)
	}
	cache.Add(source)

	slog.Debug("Read entries from source", "source", source, "count", len(entries))
	return entries, nil
}

// readDeviceSource imports every device file matching the pattern that is
// not already cached. Matching files are independently cacheable, so a
// device source can contribute a partial result.
func readDeviceSource(pattern string, cache *RunCache, device Device) ([]qif.Entry, error) {
	// The pattern is anchored at the start of the filename.
	regex, err := regexp.Compile("^(?:" + pattern + ")")
	if err != nil {
		return nil, fmt.Errorf("invalid device pattern %q: %w", pattern, err)
	}

	files, err := device.ListFiles()
	if err != nil {
		return nil, err
	}

	var entries []qif.Entry
	for _, file := range files {
		if !regex.MatchString(file.Filename) {
			continue
		}
		slog.Debug("Found matching file on device", "filename", file.Filename, "file_id", file.ID)

		if cache.Contains(file.Filename) {
			slog.Info("Skipping device file (already imported)", "filename", file.Filename)
			continue
		}

		fileEntries, err := readDeviceFile(file, device)
		if err != nil {
			return nil, err
		}
		entries = append(entries, fileEntries...)
		cache.Add(file.Filename)
	}
	return entries, nil
}

func readDeviceFile(file mtp.DeviceFile, device Device) ([]qif.Entry, error) {
	dir, err := os.MkdirTemp("", "qif-sync-mtp-")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp directory: %w", err)
	}
	defer os.RemoveAll(dir)

	local, err := device.GetFile(file, dir)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(local)
	if err != nil {
		return nil, fmt.Errorf("failed to open retrieved file %s: %w", local, err)
	}
	defer f.Close()

	entries, err := qif.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse device file %s: %w", file.Filename, err)
	}

	slog.Debug("Read entries from device file", "filename", file.Filename, "count", len(entries))
	return entries, nil
}
