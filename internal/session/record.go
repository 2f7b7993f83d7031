package session

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Record is the persisted session hint that survives restarts. It is only a
// hint for silent reconnection; the live provider is always re-queried and
// the record is never treated as proof of an active connection.
type Record struct {
	Connected bool   `json:"connected"`
	Address   string `json:"address"`
}

// RecordStore reads and writes the session record file.
type RecordStore struct {
	path string
}

// DefaultRecordStore places the record in the per-user cache directory:
//
//	macOS:   ~/Library/Caches/walletwidget/session.json
//	Linux:   ~/.cache/walletwidget/session.json
//	Windows: %LocalAppData%\walletwidget\session.json
func DefaultRecordStore() *RecordStore {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return &RecordStore{path: filepath.Join(dir, "walletwidget", "session.json")}
}

// NewRecordStore creates a RecordStore at an explicit path (tests).
func NewRecordStore(path string) *RecordStore {
	return &RecordStore{path: path}
}

// Load reads the record. Returns a zero Record on any error: a missing or
// corrupt file just means no prior session.
func (s *RecordStore) Load() Record {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return Record{}
	}
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return Record{}
	}
	return r
}

// Save writes the record with restrictive permissions. Best-effort: the
// record is advisory, so write errors are swallowed.
func (s *RecordStore) Save(r Record) {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return
	}
	data, err := json.Marshal(r)
	if err != nil {
		return
	}
	_ = os.WriteFile(s.path, data, 0o600)
}

// Clear removes the record file.
func (s *RecordStore) Clear() {
	err := os.Remove(s.path)
	if err != nil && !os.IsNotExist(err) {
		return
	}
}
