package session

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordStoreLoadMissing(t *testing.T) {
	rs := NewRecordStore(filepath.Join(t.TempDir(), "session.json"))
	assert.Equal(t, Record{}, rs.Load())
}

func TestRecordStoreLoadCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	rs := NewRecordStore(path)
	assert.Equal(t, Record{}, rs.Load())
}

func TestRecordStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	rs := NewRecordStore(path)

	want := Record{Connected: true, Address: "0x90f8bf6a479f320ead074411a4b0e7944ea8c9c1"}
	rs.Save(want)
	assert.Equal(t, want, rs.Load())
}

func TestRecordStoreSavePermissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("file modes are not meaningful on windows")
	}
	path := filepath.Join(t.TempDir(), "session.json")
	rs := NewRecordStore(path)
	rs.Save(Record{Connected: true, Address: "0xabc"})

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestRecordStoreClear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	rs := NewRecordStore(path)
	rs.Save(Record{Connected: true, Address: "0xabc"})

	rs.Clear()
	assert.Equal(t, Record{}, rs.Load())

	// Clearing an already-absent record is fine.
	rs.Clear()
}
