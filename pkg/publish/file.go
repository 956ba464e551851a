package publish

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
)

// File writes each report to a JSON file, replacing the previous one.
type File struct {
	path string
}

// NewFile creates a publisher writing to path.
func NewFile(path string) *File {
	return &File{path: path}
}

// Publish writes r atomically: readers never see a partial report.
func (f *File) Publish(ctx context.Context, r *Report) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return publishError(err, "file")
	}

	tmp, err := os.CreateTemp(dir, ".versionsync-*.json")
	if err != nil {
		return publishError(err, "file")
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return publishError(err, "file")
	}
	if err := tmp.Close(); err != nil {
		return publishError(err, "file")
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return publishError(err, "file")
	}
	return nil
}

// Close does nothing for file publishers.
func (f *File) Close() error {
	return nil
}

var _ Publisher = (*File)(nil)
