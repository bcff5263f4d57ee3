// Package store provides the embedded key-value façade the rest of the
// ledger is built on: named tables and multimap tables over a single
// BadgerDB keyspace, one writer at a time, durable on commit.
//
// Tables are not a BadgerDB primitive. Following the same trick
// NornicDB's storage engine uses for its label/adjacency indexes
// (single-byte key prefixes scanned with an iterator), a Store carves
// its keyspace into named regions: every key written through a Table
// or Multimap is prefixed with that table's tag, so distinct tables
// never collide and a prefix scan gives you exactly one table's rows.
package store

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

// Sentinel errors surfaced by the Store façade.
var (
	ErrNotFound  = errors.New("store: key not found")
	ErrReadOnly  = errors.New("store: write attempted in a read-only transaction")
	ErrCorrupted = errors.New("store: corrupted payload")
)

// Store is a single open BadgerDB, addressed by named tables.
type Store struct {
	db     *badger.DB
	path   string
	closed bool
}

// Options configures how a Store opens its backing BadgerDB.
type Options struct {
	// Dir is the directory BadgerDB will use. Required unless InMemory.
	Dir string

	// InMemory runs BadgerDB without touching disk. Used by tests.
	InMemory bool

	// SyncWrites forces fsync on every commit. Off by default: the
	// Store still durably commits on every successful transaction,
	// this only controls whether the write is flushed to disk before
	// Commit returns.
	SyncWrites bool
}

// Open opens (or creates) a Store at dir with default options.
func Open(dir string) (*Store, error) {
	return OpenWithOptions(Options{Dir: dir})
}

// OpenInMemory opens an ephemeral Store useful for tests.
func OpenInMemory() (*Store, error) {
	return OpenWithOptions(Options{InMemory: true})
}

// OpenWithOptions opens a Store with fine-grained control over the
// underlying BadgerDB instance.
func OpenWithOptions(opts Options) (*Store, error) {
	badgerOpts := badger.DefaultOptions(opts.Dir)
	if opts.InMemory {
		badgerOpts = badgerOpts.WithInMemory(true)
	}
	badgerOpts = badgerOpts.WithSyncWrites(opts.SyncWrites).WithLogger(nil)

	// Small footprint defaults: the ledger stores short text documents
	// and op records, not graph-scale payloads.
	badgerOpts = badgerOpts.
		WithMemTableSize(16 << 20).
		WithValueLogFileSize(64 << 20).
		WithNumMemtables(2).
		WithNumLevelZeroTables(2).
		WithNumLevelZeroTablesStall(4)

	db, err := badger.Open(badgerOpts)
	if err != nil {
		return nil, fmt.Errorf("store: open %q: %w", opts.Dir, err)
	}
	return &Store{db: db, path: opts.Dir}, nil
}

// Close releases the underlying BadgerDB handle. Idempotent.
func (s *Store) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

// Path returns the directory this Store was opened against ("" for an
// in-memory store).
func (s *Store) Path() string { return s.path }

// Update runs fn inside a single read-write transaction. All writes
// performed through the Txn it hands to fn become durable together on
// return, or are entirely discarded if fn (or the commit) returns an
// error — BadgerDB's transactional guarantees give us the Store's
// "readers never observe partial writes" contract directly.
func (s *Store) Update(fn func(txn *Txn) error) error {
	return s.db.Update(func(btxn *badger.Txn) error {
		return fn(&Txn{btxn: btxn, writable: true})
	})
}

// View runs fn inside a read-only transaction over a consistent
// snapshot of the last committed state. Concurrent with any writer.
func (s *Store) View(fn func(txn *Txn) error) error {
	return s.db.View(func(btxn *badger.Txn) error {
		return fn(&Txn{btxn: btxn, writable: false})
	})
}

// Txn is a single transaction, read-only or read-write.
type Txn struct {
	btxn     *badger.Txn
	writable bool
}

// tableKey builds the physical key for a logical (tableTag, key) pair.
func tableKey(tag byte, key []byte) []byte {
	out := make([]byte, 0, 1+len(key))
	out = append(out, tag)
	out = append(out, key...)
	return out
}

// Put writes key->value under the given table tag.
func (t *Txn) Put(tag byte, key, value []byte) error {
	if !t.writable {
		return ErrReadOnly
	}
	return t.btxn.Set(tableKey(tag, key), value)
}

// Get reads the value stored under (tag, key). Returns ErrNotFound if
// absent.
func (t *Txn) Get(tag byte, key []byte) ([]byte, error) {
	item, err := t.btxn.Get(tableKey(tag, key))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return item.ValueCopy(nil)
}

// Delete removes the (tag, key) entry. No error if absent.
func (t *Txn) Delete(tag byte, key []byte) error {
	if !t.writable {
		return ErrReadOnly
	}
	return t.btxn.Delete(tableKey(tag, key))
}

// Has reports whether (tag, key) exists.
func (t *Txn) Has(tag byte, key []byte) (bool, error) {
	_, err := t.btxn.Get(tableKey(tag, key))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// ScanPrefix iterates all (key, value) pairs whose physical key starts
// with tag+prefix, in key order, invoking fn with the key suffix
// (prefix stripped) and value. Stops early if fn returns an error
// (iteration itself then returns that error).
func (t *Txn) ScanPrefix(tag byte, prefix []byte, fn func(key, value []byte) error) error {
	opts := badger.DefaultIteratorOptions
	full := tableKey(tag, prefix)
	opts.Prefix = full
	it := t.btxn.NewIterator(opts)
	defer it.Close()

	for it.Seek(full); it.ValidForPrefix(full); it.Next() {
		item := it.Item()
		k := item.KeyCopy(nil)
		v, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		suffix := bytes.TrimPrefix(k, []byte{tag})
		if err := fn(suffix, v); err != nil {
			return err
		}
	}
	return nil
}

// ScanRange iterates all (key, value) pairs within [startKey, endKey]
// (inclusive) under the given table tag. Keys must be fixed-width and
// comparable as raw bytes (used for the GlobalSeq-keyed ledger_ops
// table).
func (t *Txn) ScanRange(tag byte, startKey, endKey []byte, fn func(key, value []byte) error) error {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = []byte{tag}
	it := t.btxn.NewIterator(opts)
	defer it.Close()

	start := tableKey(tag, startKey)
	end := tableKey(tag, endKey)
	for it.Seek(start); it.ValidForPrefix([]byte{tag}); it.Next() {
		item := it.Item()
		k := item.Key()
		if bytes.Compare(k, end) > 0 {
			break
		}
		kc := item.KeyCopy(nil)
		v, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		suffix := bytes.TrimPrefix(kc, []byte{tag})
		if err := fn(suffix, v); err != nil {
			return err
		}
	}
	return nil
}

// LastKey returns the lexicographically greatest key stored under tag,
// or (nil, false) if the table is empty. Used to find the current
// GlobalSeq high-water mark.
func (t *Txn) LastKey(tag byte) ([]byte, bool, error) {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = []byte{tag}
	opts.Reverse = true
	it := t.btxn.NewIterator(opts)
	defer it.Close()

	// Seek to the largest possible key under this prefix by seeking to
	// tag+0xFF...FF and walking backwards to the first valid entry.
	seek := append([]byte{tag}, bytes.Repeat([]byte{0xFF}, 16)...)
	it.Seek(seek)
	if !it.ValidForPrefix([]byte{tag}) {
		return nil, false, nil
	}
	k := it.Item().KeyCopy(nil)
	return bytes.TrimPrefix(k, []byte{tag}), true, nil
}
