// Package historydb persists completed and in-progress BenchmarkRuns in an
// embedded bbolt database, so a session can be recovered or at least
// diagnosed after a crash, and so two historical runs can be compared
// without the external result-repository collaborator named out of scope
// in spec.md §1. Adapted from builddb.DB's bucket layout and
// transaction shape, re-keyed from port build records to benchmark runs.
package historydb

import (
	"encoding/json"
	"time"

	bolt "go.etcd.io/bbolt"

	"benchforge/internal/report"
	"benchforge/internal/telemetry"
)

const (
	bucketRuns      = "runs"
	bucketActive    = "active"
	bucketHostCRC   = "host_crc"
)

// DB wraps a bbolt database for run history and in-progress snapshots.
type DB struct {
	db *bolt.DB
}

// Open opens or creates a bbolt database at path, initialising the
// required buckets.
func Open(path string) (*DB, error) {
	bdb, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, &DatabaseError{Op: "open", Err: err}
	}

	err = bdb.Update(func(tx *bolt.Tx) error {
		for _, name := range []string{bucketRuns, bucketActive, bucketHostCRC} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return &DatabaseError{Op: "create bucket", Bucket: name, Err: err}
			}
		}
		return nil
	})
	if err != nil {
		bdb.Close()
		return nil, err
	}

	return &DB{db: bdb}, nil
}

// Close closes the database.
func (d *DB) Close() error {
	if d.db == nil {
		return nil
	}
	return d.db.Close()
}

// SaveRun persists a completed BenchmarkRun, keyed by its UUID, and
// records its host CRC for later comparability checks.
func (d *DB) SaveRun(run *report.BenchmarkRun) error {
	if run.ID == "" {
		return ErrEmptyID
	}
	data, err := json.Marshal(run)
	if err != nil {
		return &RunError{Op: "marshal", ID: run.ID, Err: err}
	}
	crc := ComputeHostCRC(run.SystemInfo)

	err = d.db.Update(func(tx *bolt.Tx) error {
		runs := tx.Bucket([]byte(bucketRuns))
		if runs == nil {
			return &DatabaseError{Op: "get bucket", Bucket: bucketRuns, Err: ErrBucketNotFound}
		}
		if err := runs.Put([]byte(run.ID), data); err != nil {
			return err
		}
		crcBucket := tx.Bucket([]byte(bucketHostCRC))
		if crcBucket == nil {
			return &DatabaseError{Op: "get bucket", Bucket: bucketHostCRC, Err: ErrBucketNotFound}
		}
		crcBytes := make([]byte, 4)
		crcBytes[0], crcBytes[1], crcBytes[2], crcBytes[3] = byte(crc), byte(crc>>8), byte(crc>>16), byte(crc>>24)
		return crcBucket.Put([]byte(run.ID), crcBytes)
	})
	if err != nil {
		return &RunError{Op: "save", ID: run.ID, Err: err}
	}
	return nil
}

// GetRun retrieves a previously saved BenchmarkRun by UUID.
func (d *DB) GetRun(id string) (*report.BenchmarkRun, error) {
	if id == "" {
		return nil, ErrEmptyID
	}
	var run report.BenchmarkRun
	err := d.db.View(func(tx *bolt.Tx) error {
		runs := tx.Bucket([]byte(bucketRuns))
		if runs == nil {
			return &DatabaseError{Op: "get bucket", Bucket: bucketRuns, Err: ErrBucketNotFound}
		}
		data := runs.Get([]byte(id))
		if data == nil {
			return &RunError{Op: "get", ID: id, Err: ErrRunNotFound}
		}
		return json.Unmarshal(data, &run)
	})
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// ListRunIDs returns every stored run's UUID.
func (d *DB) ListRunIDs() ([]string, error) {
	var ids []string
	err := d.db.View(func(tx *bolt.Tx) error {
		runs := tx.Bucket([]byte(bucketRuns))
		if runs == nil {
			return &DatabaseError{Op: "get bucket", Bucket: bucketRuns, Err: ErrBucketNotFound}
		}
		return runs.ForEach(func(k, v []byte) error {
			ids = append(ids, string(k))
			return nil
		})
	})
	return ids, err
}

// Comparable reports whether two stored runs were taken on the same host
// configuration (by CRC), returning ErrNotComparable when they weren't —
// the `benchforge compare` command refuses a cross-hardware diff rather
// than printing a misleading delta.
func (d *DB) Comparable(idA, idB string) error {
	var crcA, crcB []byte
	err := d.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(bucketHostCRC))
		if bucket == nil {
			return &DatabaseError{Op: "get bucket", Bucket: bucketHostCRC, Err: ErrBucketNotFound}
		}
		crcA = bucket.Get([]byte(idA))
		crcB = bucket.Get([]byte(idB))
		return nil
	})
	if err != nil {
		return err
	}
	if crcA == nil {
		return &RunError{Op: "comparable", ID: idA, Err: ErrRunNotFound}
	}
	if crcB == nil {
		return &RunError{Op: "comparable", ID: idB, Err: ErrRunNotFound}
	}
	for i := range crcA {
		if crcA[i] != crcB[i] {
			return ErrNotComparable
		}
	}
	return nil
}

// ActiveSnapshot is the in-progress record stored by SaveActiveSnapshot,
// so a killed session can be recovered or at least explained. The run
// command does not write one.
type ActiveSnapshot struct {
	RunID     string
	StartTime time.Time
	Status    telemetry.EngineStatus
}

// SaveActiveSnapshot records the in-progress status under a fixed key —
// only one session runs at a time, per spec.md §5.
func (d *DB) SaveActiveSnapshot(snap ActiveSnapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return d.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(bucketActive))
		if bucket == nil {
			return &DatabaseError{Op: "get bucket", Bucket: bucketActive, Err: ErrBucketNotFound}
		}
		return bucket.Put([]byte("current"), data)
	})
}

// ActiveSnapshotNow returns the most recent in-progress snapshot, if any.
func (d *DB) ActiveSnapshotNow() (*ActiveSnapshot, error) {
	var snap *ActiveSnapshot
	err := d.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(bucketActive))
		if bucket == nil {
			return &DatabaseError{Op: "get bucket", Bucket: bucketActive, Err: ErrBucketNotFound}
		}
		data := bucket.Get([]byte("current"))
		if data == nil {
			return nil
		}
		snap = &ActiveSnapshot{}
		return json.Unmarshal(data, snap)
	})
	return snap, err
}

// ClearActiveSnapshot removes the in-progress record once a session ends.
func (d *DB) ClearActiveSnapshot() error {
	return d.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(bucketActive))
		if bucket == nil {
			return &DatabaseError{Op: "get bucket", Bucket: bucketActive, Err: ErrBucketNotFound}
		}
		return bucket.Delete([]byte("current"))
	})
}
