// Package disk implements snapshot storage as a JSON file on disk.
package disk

import (
	"bytes"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/ardanlabs/anchorchain/foundation/blockchain/storage"
)

// fileName is the name of the snapshot file inside the storage folder.
const fileName = "ledger.json"

// document is what is written to the snapshot file. The ledger document is
// embedded as JSON so the file can be read by people.
type document struct {
	Blocks   int             `json:"blocks"`
	Tip      string          `json:"tip"`
	Taken    time.Time       `json:"taken"`
	Format   string          `json:"format,omitempty"`
	Document json.RawMessage `json:"document"`
}

// Disk represents the storage implementation for reading and writing the
// snapshot in a file on disk. This implements the storage.Storage interface.
type Disk struct {
	dbPath string
}

// New constructs a Disk value for use. The folder is created if needed.
func New(dbPath string) (*Disk, error) {
	if err := os.MkdirAll(dbPath, 0755); err != nil {
		return nil, err
	}

	return &Disk{dbPath: dbPath}, nil
}

// Close in this implementation has nothing to do since the file is
// opened and closed on every call.
func (d *Disk) Close() error {
	return nil
}

// Write stores the snapshot. The file is written to a temporary name first
// and then renamed so a reader never sees half a file.
func (d *Disk) Write(snapshot storage.Snapshot) error {

	// Marshal the snapshot for writing to disk in a more human readable format.
	doc := document{
		Blocks:   snapshot.Blocks,
		Tip:      snapshot.Tip,
		Taken:    snapshot.Taken,
		Format:   snapshot.Format,
		Document: snapshot.Document,
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}

	tmp := d.getPath() + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return err
	}

	return os.Rename(tmp, d.getPath())
}

// Read returns the snapshot stored on disk.
func (d *Disk) Read() (storage.Snapshot, error) {
	f, err := os.Open(d.getPath())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return storage.Snapshot{}, storage.ErrNoSnapshot
		}
		return storage.Snapshot{}, err
	}
	defer f.Close()

	var doc document
	if err := json.NewDecoder(f).Decode(&doc); err != nil {
		return storage.Snapshot{}, err
	}

	// The document was indented with the rest of the file.
	var compact bytes.Buffer
	if err := json.Compact(&compact, doc.Document); err != nil {
		return storage.Snapshot{}, err
	}

	snapshot := storage.Snapshot{
		Blocks:   doc.Blocks,
		Tip:      doc.Tip,
		Taken:    doc.Taken,
		Format:   doc.Format,
		Document: compact.Bytes(),
	}

	return snapshot, nil
}

// Reset removes the snapshot file.
func (d *Disk) Reset() error {
	if err := os.Remove(d.getPath()); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// getPath forms the path to the snapshot file.
func (d *Disk) getPath() string {
	return filepath.Join(d.dbPath, fileName)
}
