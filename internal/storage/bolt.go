package storage

import (
	"encoding/json"
	"fmt"

	bolt "go.etcd.io/bbolt"

	"github.com/jask/sangam/internal/ledger"
)

const ledgerBucket = "ledger"

// Bolt stores the document as a single value in a bbolt bucket. It needs no
// migration step, which makes it handy on devices without cgo sqlite.
type Bolt struct {
	db  *bolt.DB
	def ledger.Document
}

// OpenBolt opens (or creates) the bbolt file and ensures the bucket exists.
func OpenBolt(path string, def ledger.Document) (*Bolt, error) {
	db, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(ledgerBucket))
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create bucket: %w", err)
	}
	return &Bolt{db: db, def: def}, nil
}

// Load reads the whole document, or returns the seeded default when the key
// has never been written.
func (b *Bolt) Load() (ledger.Document, error) {
	var raw []byte
	err := b.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket([]byte(ledgerBucket)).Get([]byte(DocumentKey)); v != nil {
			raw = append(raw, v...)
		}
		return nil
	})
	if err != nil {
		return ledger.Document{}, fmt.Errorf("read document: %w", err)
	}
	if raw == nil {
		return b.def, nil
	}
	var doc ledger.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return ledger.Document{}, fmt.Errorf("decode document: %w", err)
	}
	return doc, nil
}

// Save writes the whole document back under the namespace key.
func (b *Bolt) Save(doc ledger.Document) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	err = b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(ledgerBucket)).Put([]byte(DocumentKey), raw)
	})
	if err != nil {
		return fmt.Errorf("write document: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (b *Bolt) Close() error { return b.db.Close() }
