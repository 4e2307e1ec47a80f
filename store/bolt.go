package store

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"

	"github.com/aeternalism/issuance/address"
	"github.com/aeternalism/issuance/sale"
)

var (
	bucketMeta        = []byte("meta")
	bucketEvents      = []byte("events")
	bucketInvestments = []byte("investments")
	bucketAudit       = []byte("audit")

	keyState = []byte("state")
)

// investmentKeySize is label(32) + round(4) + investor(20).
const investmentKeySize = sale.LabelSize + 4 + address.Size

// BoltStore persists issuance state in a bbolt database.
type BoltStore struct {
	db *bbolt.DB
}

// Compile-time interface check.
var _ Store = (*BoltStore)(nil)

// lockTimeout bounds the wait for another process holding the database.
const lockTimeout = time.Second

// OpenBoltStore opens or creates the bbolt database at dbPath.
// The parent directory is created if it does not exist. If another process
// holds the file, it fails with an error wrapping bbolt.ErrTimeout.
func OpenBoltStore(dbPath string) (*BoltStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("store: create directory: %w", err)
	}
	db, err := bbolt.Open(dbPath, 0600, &bbolt.Options{Timeout: lockTimeout})
	if err != nil {
		return nil, fmt.Errorf("store: open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketMeta, bucketEvents, bucketInvestments, bucketAudit} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("boltstore: create bucket %q: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: create buckets: %w", err)
	}

	return &BoltStore{db: db}, nil
}

// Path returns the database file path.
func (s *BoltStore) Path() string { return s.db.Path() }

// Close closes the underlying database.
func (s *BoltStore) Close() error { return s.db.Close() }

// View runs fn in a read-only bbolt transaction.
func (s *BoltStore) View(fn func(Tx) error) error {
	return s.db.View(func(tx *bbolt.Tx) error {
		return fn(&boltTx{tx: tx})
	})
}

// Update runs fn in a read-write bbolt transaction; bbolt rolls back on error.
func (s *BoltStore) Update(fn func(Tx) error) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return fn(&boltTx{tx: tx})
	})
}

// investmentKey encodes a ledger key so entries of one label and round are contiguous.
func investmentKey(k sale.LedgerKey) []byte {
	buf := make([]byte, investmentKeySize)
	copy(buf, k.Label.Key())
	binary.BigEndian.PutUint32(buf[sale.LabelSize:], k.Round)
	copy(buf[sale.LabelSize+4:], k.Investor[:])
	return buf
}

func roundPrefix(label sale.Label, round uint32) []byte {
	buf := make([]byte, sale.LabelSize+4)
	copy(buf, label.Key())
	binary.BigEndian.PutUint32(buf[sale.LabelSize:], round)
	return buf
}

func seqKey(seq uint64) []byte {
	k := make([]byte, 8)
	binary.BigEndian.PutUint64(k, seq)
	return k
}

// encodeGob serializes a value using gob encoding.
func encodeGob(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// decodeGob deserializes gob-encoded data into a value.
func decodeGob(data []byte, v interface{}) error {
	return gob.NewDecoder(bytes.NewReader(data)).Decode(v)
}

// ---------------------------------------------------------------------------
// boltTx implements Tx.
// ---------------------------------------------------------------------------

type boltTx struct {
	tx *bbolt.Tx
}

func (t *boltTx) put(bucket, key []byte, v interface{}) error {
	if !t.tx.Writable() {
		return ErrReadOnly
	}
	data, err := encodeGob(v)
	if err != nil {
		return fmt.Errorf("boltstore: encode: %w", err)
	}
	if err := t.tx.Bucket(bucket).Put(key, data); err != nil {
		return fmt.Errorf("boltstore: put %s: %w", bucket, err)
	}
	return nil
}

func (t *boltTx) State() (*sale.State, error) {
	data := t.tx.Bucket(bucketMeta).Get(keyState)
	if data == nil {
		return nil, ErrStateNotFound
	}
	var st sale.State
	if err := decodeGob(data, &st); err != nil {
		return nil, fmt.Errorf("boltstore: decode state: %w", err)
	}
	return &st, nil
}

func (t *boltTx) PutState(st *sale.State) error {
	if st == nil {
		return fmt.Errorf("%w: state", ErrNilParam)
	}
	return t.put(bucketMeta, keyState, st)
}

func (t *boltTx) Event(label sale.Label) (*sale.Event, error) {
	data := t.tx.Bucket(bucketEvents).Get(label.Key())
	if data == nil {
		return nil, ErrEventNotFound
	}
	var ev sale.Event
	if err := decodeGob(data, &ev); err != nil {
		return nil, fmt.Errorf("boltstore: decode event: %w", err)
	}
	return &ev, nil
}

func (t *boltTx) PutEvent(ev *sale.Event) error {
	if ev == nil {
		return fmt.Errorf("%w: event", ErrNilParam)
	}
	return t.put(bucketEvents, ev.Label.Key(), ev)
}

func (t *boltTx) Events() ([]*sale.Event, error) {
	var out []*sale.Event
	err := t.tx.Bucket(bucketEvents).ForEach(func(k, v []byte) error {
		var ev sale.Event
		if err := decodeGob(v, &ev); err != nil {
			return fmt.Errorf("boltstore: decode event in list: %w", err)
		}
		out = append(out, &ev)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (t *boltTx) Investment(key sale.LedgerKey) (*sale.Investment, error) {
	data := t.tx.Bucket(bucketInvestments).Get(investmentKey(key))
	if data == nil {
		return nil, ErrInvestmentNotFound
	}
	var inv sale.Investment
	if err := decodeGob(data, &inv); err != nil {
		return nil, fmt.Errorf("boltstore: decode investment: %w", err)
	}
	return &inv, nil
}

func (t *boltTx) PutInvestment(inv *sale.Investment) error {
	if inv == nil {
		return fmt.Errorf("%w: investment", ErrNilParam)
	}
	return t.put(bucketInvestments, investmentKey(inv.Key), inv)
}

func (t *boltTx) Investments(label sale.Label, round uint32) ([]*sale.Investment, error) {
	prefix := roundPrefix(label, round)
	var out []*sale.Investment

	c := t.tx.Bucket(bucketInvestments).Cursor()
	for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
		var inv sale.Investment
		if err := decodeGob(v, &inv); err != nil {
			return nil, fmt.Errorf("boltstore: decode investment in list: %w", err)
		}
		out = append(out, &inv)
	}
	return out, nil
}

func (t *boltTx) AppendAudit(rec *sale.AuditRecord) error {
	if rec == nil {
		return fmt.Errorf("%w: audit record", ErrNilParam)
	}
	if !t.tx.Writable() {
		return ErrReadOnly
	}
	seq, err := t.tx.Bucket(bucketAudit).NextSequence()
	if err != nil {
		return fmt.Errorf("boltstore: audit sequence: %w", err)
	}
	rec.Seq = seq
	return t.put(bucketAudit, seqKey(seq), rec)
}

func (t *boltTx) Audit() ([]*sale.AuditRecord, error) {
	var out []*sale.AuditRecord
	err := t.tx.Bucket(bucketAudit).ForEach(func(k, v []byte) error {
		var rec sale.AuditRecord
		if err := decodeGob(v, &rec); err != nil {
			return fmt.Errorf("boltstore: decode audit record: %w", err)
		}
		out = append(out, &rec)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
