// Package cache implements the persistent store shared by the resolver,
// the executor, and the interactive shell: resolved source rows with
// timestamps, the bounded invocation history, and the locals namespace.
//
// On disk the store is a single JSON document. Current files hold
// {"_crypt": <blob>} where the blob is the whole document encrypted
// with a machine-bound key; legacy plaintext documents still load and
// are migrated to the encrypted shape on the next save.
package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/natanmedeiros/dynalias/internal/atomicfile"
	"github.com/natanmedeiros/dynalias/internal/cachecrypt"
	"github.com/natanmedeiros/dynalias/internal/machineid"
	"github.com/natanmedeiros/dynalias/internal/model"
)

// Reserved document keys. Source entries never start with an
// underscore, which is what the selective purge relies on.
const (
	keyCrypt   = "_crypt"
	keyHistory = "_history"
	keyLocals  = "_locals"

	entryTimestamp = "timestamp"
	entryData      = "data"
)

// DefaultHistoryLimit bounds _history when no limit is configured.
const DefaultHistoryLimit = 20

// Store is the in-memory cache with explicit load/save persistence.
// It is not safe for concurrent use; the engine is single-threaded and
// the reload-before-save discipline around spawns lives in the
// executor, not here.
type Store struct {
	path    string
	enabled bool
	doc     map[string]any

	key     []byte
	keyErr  error
	keyDone bool
	keyFunc func() ([]byte, error)

	// dirty marks a plaintext document that still needs its encrypting
	// rewrite.
	dirty bool

	now func() time.Time
}

// New returns a store backed by path. A disabled store ignores every
// operation, which keeps call sites free of conditionals.
func New(path string, enabled bool) *Store {
	return &Store{
		path:    path,
		enabled: enabled,
		doc:     make(map[string]any),
		keyFunc: machineKey,
		now:     time.Now,
	}
}

func machineKey() ([]byte, error) {
	id, err := machineid.ID()
	if err != nil {
		return nil, err
	}
	return cachecrypt.DeriveKey(id), nil
}

// SetKeyDerivation overrides how the encryption key is obtained, for
// callers that already hold a derived key and for tests that must not
// depend on the host's machine identity.
func (s *Store) SetKeyDerivation(fn func() ([]byte, error)) {
	s.keyFunc = fn
	s.keyDone = false
}

func (s *Store) encryptionKey() ([]byte, error) {
	if !s.keyDone {
		s.key, s.keyErr = s.keyFunc()
		s.keyDone = true
	}
	return s.key, s.keyErr
}

// Path returns the backing file path.
func (s *Store) Path() string { return s.path }

// Load reads the cache file into memory. A missing file yields an empty
// store. Decrypt or parse failures also yield an empty store and return
// the error so the caller can warn; they never propagate as crashes.
func (s *Store) Load() error {
	if !s.enabled {
		return nil
	}
	s.doc = make(map[string]any)

	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read cache file: %w", err)
	}

	var parsed map[string]any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return fmt.Errorf("parse cache file: %w", err)
	}

	blob, encrypted := parsed[keyCrypt].(string)
	if !encrypted {
		// Legacy plaintext document: load as-is, encrypt on next save.
		s.doc = parsed
		s.dirty = len(parsed) > 0
		return nil
	}

	key, err := s.encryptionKey()
	if err != nil {
		return fmt.Errorf("derive cache key: %w", err)
	}
	doc, err := cachecrypt.Decrypt(key, blob)
	if err != nil {
		return fmt.Errorf("cache may have been created on a different machine: %w", err)
	}
	s.doc = doc
	return nil
}

// Save serializes the full in-memory document, encrypts it, and writes
// {"_crypt": ...} atomically. This also completes any pending
// plaintext-to-encrypted migration.
func (s *Store) Save() error {
	if !s.enabled {
		return nil
	}
	key, err := s.encryptionKey()
	if err != nil {
		return fmt.Errorf("derive cache key: %w", err)
	}
	blob, err := cachecrypt.Encrypt(key, s.doc)
	if err != nil {
		return fmt.Errorf("encrypt cache: %w", err)
	}
	payload, err := json.Marshal(map[string]string{keyCrypt: blob})
	if err != nil {
		return fmt.Errorf("marshal cache envelope: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create cache directory: %w", err)
		}
	}
	if err := atomicfile.WriteFile(s.path, payload, 0o600); err != nil {
		return fmt.Errorf("write cache file: %w", err)
	}
	s.dirty = false
	return nil
}

// Get returns the cached rows for a source name if the entry is younger
// than ttl seconds.
func (s *Store) Get(name string, ttl int) ([]model.Row, bool) {
	if !s.enabled {
		return nil, false
	}
	entry, ok := s.doc[name].(map[string]any)
	if !ok {
		return nil, false
	}
	data, ok := entry[entryData]
	if !ok || data == nil {
		return nil, false
	}
	ts := asInt64(entry[entryTimestamp])
	if s.now().Unix()-ts > int64(ttl) {
		return nil, false
	}
	return toRows(data), true
}

// Set stores rows for a source name stamped with the current time.
// Persistence is the caller's business: the resolver saves right after
// a fetch, management commands save in bulk.
func (s *Store) Set(name string, rows []model.Row) {
	if !s.enabled {
		return
	}
	s.doc[name] = map[string]any{
		entryTimestamp: s.now().Unix(),
		entryData:      rows,
	}
}

// ClearSources removes every non-reserved entry (history and locals
// survive), saves, and returns the number of entries removed.
func (s *Store) ClearSources() int {
	if !s.enabled {
		return 0
	}
	removed := 0
	for name := range s.doc {
		if strings.HasPrefix(name, "_") {
			continue
		}
		delete(s.doc, name)
		removed++
	}
	_ = s.Save()
	return removed
}

// PurgeExpired removes source entries older than their TTL according to
// ttls (seconds per source name; missing names default to 300). Returns
// the number of entries removed and saves only if something went.
func (s *Store) PurgeExpired(ttls map[string]int) int {
	if !s.enabled {
		return 0
	}
	nowUnix := s.now().Unix()
	removed := 0
	for name, v := range s.doc {
		if strings.HasPrefix(name, "_") {
			continue
		}
		entry, ok := v.(map[string]any)
		if !ok {
			continue
		}
		ttl, ok := ttls[name]
		if !ok {
			ttl = 300
		}
		if nowUnix-asInt64(entry[entryTimestamp]) > int64(ttl) {
			delete(s.doc, name)
			removed++
		}
	}
	if removed > 0 {
		_ = s.Save()
	}
	return removed
}

// DeleteAll removes the cache file and resets the in-memory document.
// Reports whether a file existed.
func (s *Store) DeleteAll() bool {
	s.doc = make(map[string]any)
	if err := os.Remove(s.path); err != nil {
		return false
	}
	return true
}

func asInt64(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	default:
		return 0
	}
}

// toRows normalizes a data value that is either freshly set in this
// process ([]model.Row) or decoded from disk ([]any of objects).
func toRows(v any) []model.Row {
	switch data := v.(type) {
	case []model.Row:
		return data
	case []any:
		rows := make([]model.Row, 0, len(data))
		for _, item := range data {
			if m, ok := item.(map[string]any); ok {
				rows = append(rows, model.Row(m))
			}
		}
		return rows
	default:
		return nil
	}
}
