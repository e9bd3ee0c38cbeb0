package trace

import (
	"encoding/binary"
	"encoding/json"
	"time"

	bolt "go.etcd.io/bbolt"
)

const bucketEvents = "events"

// BoltSink appends events to a bbolt database, keyed by big-endian
// sequence number.
type BoltSink struct {
	db *bolt.DB
}

// OpenBoltSink opens or creates the database at path.
func OpenBoltSink(path string) (*BoltSink, error) {
	db, err := bolt.Open(path, 0o644, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketEvents))
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &BoltSink{db: db}, nil
}

// Write stores ev under the bucket's next sequence number.
func (s *BoltSink) Write(ev Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketEvents))
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		return b.Put(marshalSeq(seq), data)
	})
}

// Events returns stored events with storage sequence in [from, upto).
// upto <= 0 means no upper bound.
func (s *BoltSink) Events(from, upto uint64) ([]Event, error) {
	var events []Event
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket([]byte(bucketEvents)).Cursor()
		for k, v := c.Seek(marshalSeq(from)); k != nil; k, v = c.Next() {
			if upto > 0 && unmarshalSeq(k) >= upto {
				break
			}
			var ev Event
			if err := json.Unmarshal(v, &ev); err != nil {
				return err
			}
			events = append(events, ev)
		}
		return nil
	})
	return events, err
}

// Count returns the number of stored events.
func (s *BoltSink) Count() (int, error) {
	var n int
	err := s.db.View(func(tx *bolt.Tx) error {
		n = tx.Bucket([]byte(bucketEvents)).Stats().KeyN
		return nil
	})
	return n, err
}

// Clear deletes every stored event.
func (s *BoltSink) Clear() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket([]byte(bucketEvents)); err != nil {
			return err
		}
		_, err := tx.CreateBucket([]byte(bucketEvents))
		return err
	})
}

// Close closes the database.
func (s *BoltSink) Close() error {
	return s.db.Close()
}

func marshalSeq(seq uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, seq)
	return b
}

func unmarshalSeq(key []byte) uint64 {
	return binary.BigEndian.Uint64(key)
}
