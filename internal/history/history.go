// Package history persists finished run summaries to an embedded bolt
// database so past results can be compared against new runs.
package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.etcd.io/bbolt"

	"davload/internal/collector"
	"davload/internal/config"
)

const bucketRuns = "runs"

// Record is one finished run as stored on disk.
type Record struct {
	ID             string         `json:"id"`
	BaseURL        string         `json:"baseURL"`
	Engine         string         `json:"engine"`
	Requests       int            `json:"requests"`
	Concurrency    int            `json:"concurrency"`
	StartedAt      time.Time      `json:"startedAt"`
	Duration       time.Duration  `json:"duration"`
	Completed      int            `json:"completed"`
	Successful     int            `json:"successful"`
	Failed         int            `json:"failed"`
	RequestsPerSec float64        `json:"requestsPerSec,omitempty"`
	StatusCounts   map[string]int `json:"statusCounts"`
}

// NewRecord builds a Record from a finished run.
func NewRecord(cfg config.Run, summary *collector.Summary) Record {
	return Record{
		ID:             uuid.NewString(),
		BaseURL:        cfg.BaseURL,
		Engine:         cfg.Engine,
		Requests:       cfg.Requests,
		Concurrency:    cfg.Concurrency,
		StartedAt:      summary.Started,
		Duration:       summary.Duration,
		Completed:      summary.Completed,
		Successful:     summary.Successful,
		Failed:         summary.Failed,
		RequestsPerSec: summary.RequestsPerSec,
		StatusCounts:   summary.StatusCounts,
	}
}

// Store keeps records in a single-file bolt database.
type Store struct {
	db *bbolt.DB
}

// DefaultPath returns the per-user history database location.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".davload", "history.db"), nil
}

// Open opens or creates the history database at path. The open times out
// instead of blocking when another process holds the file lock.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}

	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketRuns))
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Save appends a record. Keys are zero-padded start timestamps so a
// reverse cursor walks records newest first.
func (s *Store) Save(record Record) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucketRuns))

		data, err := json.Marshal(record)
		if err != nil {
			return err
		}

		key := fmt.Sprintf("%020d", record.StartedAt.UnixNano())
		return b.Put([]byte(key), data)
	})
}

// List returns up to limit records, newest first. A limit of zero or less
// returns everything.
func (s *Store) List(limit int) ([]Record, error) {
	var records []Record

	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucketRuns))
		c := b.Cursor()

		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			if limit > 0 && len(records) >= limit {
				break
			}
			var record Record
			if err := json.Unmarshal(v, &record); err != nil {
				return fmt.Errorf("decoding record %s: %w", k, err)
			}
			records = append(records, record)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return records, nil
}
