package report

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"digital.vasic.equate/pkg/render"
)

// archiveSchemaVersion is bumped whenever ArchiveRecord changes.
const archiveSchemaVersion uint16 = 1

// Archive keeps the latest failure of each call site on disk as
// msgpack. It is safe for concurrent use.
type Archive struct {
	mu  sync.RWMutex
	dir string
}

// ArchiveRecord is one archived failure.
type ArchiveRecord struct {
	Schema     uint16          `msgpack:"schema"`
	Key        string          `msgpack:"key"`
	Time       time.Time       `msgpack:"time"`
	Location   render.Location `msgpack:"location"`
	Expression string          `msgpack:"expression"`
	Message    string          `msgpack:"message"`
	Report     string          `msgpack:"report"`
}

// NewArchiveRecord converts a failure to an archive record.
func NewArchiveRecord(err *AssertionError) *ArchiveRecord {
	return &ArchiveRecord{
		Schema:     archiveSchemaVersion,
		Key:        SiteKey(err.Location, err.Expression),
		Time:       err.Time,
		Location:   err.Location,
		Expression: err.Expression,
		Message:    err.Message,
		Report:     err.Report,
	}
}

// SiteKey identifies an assertion by location and expression.
func SiteKey(loc render.Location, expression string) string {
	sum := sha256.Sum256([]byte(loc.String() + "\x00" + expression))
	return hex.EncodeToString(sum[:16])
}

// OpenArchive opens the archive of app under the user cache
// directory, honouring XDG_CACHE_HOME.
func OpenArchive(app string) (*Archive, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	return NewArchive(filepath.Join(base, app, "failures"))
}

// NewArchive opens an archive rooted at dir, creating it.
func NewArchive(dir string) (*Archive, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Archive{dir: dir}, nil
}

// Dir returns the archive directory.
func (a *Archive) Dir() string {
	return a.dir
}

func (a *Archive) pathFor(key string) string {
	return filepath.Join(a.dir, key+".mp")
}

// Put writes rec, replacing any earlier record with its key.
func (a *Archive) Put(rec *ArchiveRecord) (err error) {
	if a == nil {
		return nil
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := os.MkdirAll(a.dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(a.dir, "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(f.Name())
		}
	}()

	if err = msgpack.NewEncoder(f).Encode(rec); err != nil {
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), a.pathFor(rec.Key))
}

// Get reads the record stored under key. Records of another schema
// version are reported as missing.
func (a *Archive) Get(key string) (*ArchiveRecord, bool, error) {
	if a == nil {
		return nil, false, nil
	}
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.read(a.pathFor(key))
}

func (a *Archive) read(path string) (*ArchiveRecord, bool, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	defer func() { _ = f.Close() }()

	var rec ArchiveRecord
	if err := msgpack.NewDecoder(f).Decode(&rec); err != nil {
		return nil, false, err
	}
	if rec.Schema != archiveSchemaVersion {
		return nil, false, nil
	}
	return &rec, true, nil
}

// List returns every current record, newest first.
func (a *Archive) List() ([]*ArchiveRecord, error) {
	if a == nil {
		return nil, nil
	}
	a.mu.RLock()
	defer a.mu.RUnlock()

	entries, err := os.ReadDir(a.dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var out []*ArchiveRecord
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".mp") {
			continue
		}
		rec, ok, err := a.read(filepath.Join(a.dir, e.Name()))
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Time.After(out[j].Time)
	})
	return out, nil
}

// DropAll removes every record.
func (a *Archive) DropAll() error {
	if a == nil {
		return nil
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	old := a.dir + ".old-" + time.Now().Format("20060102150405.000000000")
	if err := os.Rename(a.dir, old); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	return os.RemoveAll(old)
}
