// Package history keeps a local record of finished batches so past runs can
// be listed and re-opened without re-processing documents.
package history

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.etcd.io/bbolt"

	"github.com/joseph-ayodele/invoice-insights/internal/common"
	"github.com/joseph-ayodele/invoice-insights/internal/entity"
)

const batchesBucket = "batches"

// Record is one stored batch run. Master list and savings are captured as
// computed at export time; re-reading never re-rolls the random draws.
type Record struct {
	ID        string               `json:"id"`
	CreatedAt time.Time            `json:"created_at"`
	Summary   entity.BatchSummary  `json:"summary"`
	Master    []entity.MasterItem  `json:"master_list,omitempty"`
	Savings   entity.SavingsReport `json:"savings,omitempty"`
}

// ListEntry is the lightweight view used for batch listings.
type ListEntry struct {
	ID         string    `json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	TotalFiles int       `json:"total_files"`
	Successful int       `json:"successful"`
	Failed     int       `json:"failed"`
}

// Store persists batch records in a local bbolt file.
type Store struct {
	db     *bbolt.DB
	logger *slog.Logger
}

func NewStore(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(batchesBucket))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create history bucket: %w", err)
	}
	return &Store{db: db, logger: logger}, nil
}

// SaveBatch stores a finished batch and returns its generated ID. Keys are
// prefixed with the creation time so bucket iteration yields them in
// chronological order.
func (s *Store) SaveBatch(summary entity.BatchSummary, master []entity.MasterItem, savings entity.SavingsReport) (string, error) {
	rec := Record{
		ID:        uuid.New().String(),
		CreatedAt: time.Now().UTC(),
		Summary:   summary,
		Master:    master,
		Savings:   savings,
	}
	err := s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(batchesBucket))
		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("marshal batch record: %w", err)
		}
		return bucket.Put(storageKey(rec), data)
	})
	if err != nil {
		return "", err
	}
	s.logger.Info("history.batch.saved",
		"batch_id", rec.ID, "files", summary.TotalFiles)
	return rec.ID, nil
}

// ListBatches returns lightweight entries for every stored batch, newest
// first.
func (s *Store) ListBatches() ([]ListEntry, error) {
	entries := make([]ListEntry, 0)
	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(batchesBucket))
		return bucket.ForEach(func(_, v []byte) error {
			var rec Record
			if err := json.Unmarshal(v, &rec); err != nil {
				return fmt.Errorf("unmarshal batch record: %w", err)
			}
			entries = append(entries, ListEntry{
				ID:         rec.ID,
				CreatedAt:  rec.CreatedAt,
				TotalFiles: rec.Summary.TotalFiles,
				Successful: rec.Summary.Successful,
				Failed:     rec.Summary.Failed,
			})
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	// Keys iterate oldest first; flip for the listing.
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	return entries, nil
}

// GetBatch retrieves one stored batch by its ID.
func (s *Store) GetBatch(id string) (*Record, error) {
	var rec *Record
	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(batchesBucket))
		return bucket.ForEach(func(_, v []byte) error {
			if rec != nil {
				return nil
			}
			var candidate Record
			if err := json.Unmarshal(v, &candidate); err != nil {
				return fmt.Errorf("unmarshal batch record: %w", err)
			}
			if candidate.ID == id {
				rec = &candidate
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, fmt.Errorf("%w: batch %s", common.ErrNotFound, id)
	}
	return rec, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func storageKey(rec Record) []byte {
	return []byte(rec.CreatedAt.Format(time.RFC3339Nano) + "/" + rec.ID)
}
