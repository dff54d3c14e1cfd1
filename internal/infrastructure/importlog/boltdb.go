package importlog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/buyerdesk/backend/domain"
)

// Store persists CSV import reports in a local BoltDB file. Reports survive
// restarts so operators can review past imports; a retention janitor prunes
// old ones.
type Store struct {
	db     *bolt.DB
	bucket []byte
}

// Open initializes the BoltDB file and ensures the bucket exists.
func Open(path string, bucket string) (*Store, error) {
	if bucket == "" {
		bucket = "import_reports"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucket))
		return err
	}); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{
		db:     db,
		bucket: []byte(bucket),
	}, nil
}

// Save stores the report under a timestamp-ordered key so cursor iteration
// walks oldest to newest.
func (s *Store) Save(_ context.Context, report *domain.ImportReport) error {
	if s == nil || s.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	if report.CreatedAt.IsZero() {
		report.CreatedAt = time.Now()
	}

	payload, err := json.Marshal(report)
	if err != nil {
		return err
	}
	key := buildKey(report)

	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(s.bucket).Put([]byte(key), payload)
	})
}

// ListByUser returns the user's reports, newest first.
func (s *Store) ListByUser(_ context.Context, userID string, limit int) ([]domain.ImportReport, error) {
	if s == nil || s.db == nil {
		return nil, bolt.ErrDatabaseNotOpen
	}
	if limit <= 0 {
		limit = 20
	}

	var reports []domain.ImportReport
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(s.bucket).Cursor()
		for k, v := c.Last(); k != nil && len(reports) < limit; k, v = c.Prev() {
			var report domain.ImportReport
			if err := json.Unmarshal(v, &report); err != nil {
				continue
			}
			if report.UserID != userID {
				continue
			}
			reports = append(reports, report)
		}
		return nil
	})
	return reports, err
}

// DeleteOlderThan prunes reports created before the cutoff and returns how
// many were removed.
func (s *Store) DeleteOlderThan(_ context.Context, cutoff time.Time) (int, error) {
	if s == nil || s.db == nil {
		return 0, bolt.ErrDatabaseNotOpen
	}
	var removed int
	err := s.db.Update(func(tx *bolt.Tx) error {
		c := tx.Bucket(s.bucket).Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var report domain.ImportReport
			if err := json.Unmarshal(v, &report); err != nil {
				continue
			}
			if report.CreatedAt.Before(cutoff) {
				if err := c.Delete(); err != nil {
					return err
				}
				removed++
			}
		}
		return nil
	})
	return removed, err
}

// Size returns the number of stored reports.
func (s *Store) Size() (int, error) {
	if s == nil || s.db == nil {
		return 0, bolt.ErrDatabaseNotOpen
	}
	var count int
	err := s.db.View(func(tx *bolt.Tx) error {
		count = tx.Bucket(s.bucket).Stats().KeyN
		return nil
	})
	return count, err
}

// Close closes the Bolt database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func buildKey(report *domain.ImportReport) string {
	return fmt.Sprintf("%020d_%s", report.CreatedAt.UnixNano(), report.ID)
}
