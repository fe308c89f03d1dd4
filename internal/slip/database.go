package slip

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.etcd.io/bbolt"
)

const bucketName = "slips"

// ErrNotFound is returned when no slip has the requested ID
var ErrNotFound = errors.New("slip not found")

// DB defines the interface for database operations
type DB interface {
	// SaveSlip saves a slip to the database
	SaveSlip(slip *Slip) error

	// GetSlip retrieves a slip by ID
	GetSlip(id string) (*Slip, error)

	// ListSlips returns all slips
	ListSlips() ([]*Slip, error)

	// DeleteSlip removes a slip from the database
	DeleteSlip(id string) error

	// Close closes the database connection
	Close() error
}

// BoltDB implements the DB interface using BoltDB
type BoltDB struct {
	db *bbolt.DB
}

// NewBoltDB creates a new BoltDB instance
func NewBoltDB(path string) (*BoltDB, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening boltdb: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating bucket: %w", err)
	}

	return &BoltDB{db: db}, nil
}

// SaveSlip inserts or replaces a slip
func (b *BoltDB) SaveSlip(slip *Slip) error {
	data, err := json.Marshal(slip)
	if err != nil {
		return fmt.Errorf("marshaling slip: %w", err)
	}
	return b.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(bucketName)).Put([]byte(slip.ID), data)
	})
}

// GetSlip retrieves a slip by ID
func (b *BoltDB) GetSlip(id string) (*Slip, error) {
	var slip Slip
	err := b.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket([]byte(bucketName)).Get([]byte(id))
		if data == nil {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return json.Unmarshal(data, &slip)
	})
	if err != nil {
		return nil, err
	}
	return &slip, nil
}

// ListSlips returns all slips in key order
func (b *BoltDB) ListSlips() ([]*Slip, error) {
	slips := make([]*Slip, 0)
	err := b.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(bucketName)).ForEach(func(k, v []byte) error {
			var slip Slip
			if err := json.Unmarshal(v, &slip); err != nil {
				return fmt.Errorf("unmarshaling slip %s: %w", k, err)
			}
			slips = append(slips, &slip)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return slips, nil
}

// DeleteSlip removes a slip. Deleting a missing ID is not an error.
func (b *BoltDB) DeleteSlip(id string) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(bucketName)).Delete([]byte(id))
	})
}

// Close closes the database connection
func (b *BoltDB) Close() error {
	return b.db.Close()
}
