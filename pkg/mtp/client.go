// Package mtp retrieves files from an attached MTP device through the
// mtp-tools command line utilities.
package mtp

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Scheme is the source prefix marking an input as a device pattern
// instead of a file path.
const Scheme = "mtp:"

// DeviceFile is one file listed on the device.
type DeviceFile struct {
	ID       string
	Filename string
}

// RetrievalError reports a failed device enumeration or file transfer.
// Device failures are fatal for the run: silently dropping a source could
// leave it permanently unimported.
type RetrievalError struct {
	Op       string // "list" or "get"
	Filename string // empty for enumeration failures
	Err      error
}

func (e *RetrievalError) Error() string {
	if e.Filename == "" {
		return fmt.Sprintf("mtp %s failed: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("mtp %s of %q failed: %v", e.Op, e.Filename, e.Err)
}

func (e *RetrievalError) Unwrap() error { return e.Err }

// ClientConfig configures the paths of the mtp-tools binaries.
type ClientConfig struct {
	FilesBin   string // default "mtp-files"
	GetFileBin string // default "mtp-getfile"
}

// Client enumerates and retrieves files from the attached MTP device.
type Client struct {
	filesBin   string
	getFileBin string
}

// NewClient creates a new device client.
func NewClient(config ClientConfig) *Client {
	filesBin := config.FilesBin
	if filesBin == "" {
		filesBin = "mtp-files"
	}
	getFileBin := config.GetFileBin
	if getFileBin == "" {
		getFileBin = "mtp-getfile"
	}
	return &Client{filesBin: filesBin, getFileBin: getFileBin}
}

// ListFiles enumerates all files on the device as (file ID, filename) pairs.
func (c *Client) ListFiles() ([]DeviceFile, error) {
	out, err := exec.Command(c.filesBin).CombinedOutput()
	if err != nil {
		return nil, &RetrievalError{Op: "list", Err: fmt.Errorf("%w: %s", err, strings.TrimSpace(string(out)))}
	}
	return parseFileListing(string(out)), nil
}

// parseFileListing extracts (file ID, filename) pairs from mtp-files output.
// The tool prints one "key: value" attribute per line; a "Filename" line
// closes the record opened by the preceding "File ID" line.
func parseFileListing(out string) []DeviceFile {
	var (
		files      []DeviceFile
		lastFileID string
	)
	for _, line := range strings.Split(out, "\n") {
		key, val, found := strings.Cut(strings.TrimSpace(line), ":")
		if !found {
			continue
		}
		switch strings.ToLower(key) {
		case "file id":
			lastFileID = strings.TrimSpace(val)
		case "filename":
			files = append(files, DeviceFile{ID: lastFileID, Filename: strings.TrimSpace(val)})
		}
	}
	return files
}

// GetFile transfers one device file into dir and returns the local path.
func (c *Client) GetFile(file DeviceFile, dir string) (string, error) {
	local := filepath.Join(dir, filepath.Base(file.Filename))
	out, err := exec.Command(c.getFileBin, file.ID, local).CombinedOutput()
	if err != nil {
		os.Remove(local)
		return "", &RetrievalError{Op: "get", Filename: file.Filename,
			Err: fmt.Errorf("%w: %s", err, strings.TrimSpace(string(out)))}
	}
	return local, nil
}
