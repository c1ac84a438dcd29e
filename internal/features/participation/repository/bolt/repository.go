// Package bolt stores participations in an embedded BoltDB file. It suits
// single-node deployments that run without Redis.
package bolt

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"giveaway-offers-backend/internal/features/participation/models"
	"giveaway-offers-backend/internal/features/participation/repository"

	bolt "github.com/boltdb/bolt"
)

const bucketName = "participations"

type Store struct {
	db *bolt.DB
}

// Open opens (or creates) the database file and ensures the bucket exists.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create bucket: %w", err)
	}

	return &Store{db: db}, nil
}

var _ repository.ParticipationRepository = (*Store)(nil)

func (s *Store) Put(ctx context.Context, token string, p *models.Participation) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal participation: %w", err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketName)).Put([]byte(token), data)
	})
}

func (s *Store) Get(ctx context.Context, token string) (*models.Participation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var p models.Participation
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket([]byte(bucketName)).Get([]byte(token))
		if v == nil {
			return repository.ErrNotFound
		}
		return json.Unmarshal(v, &p)
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListByPrize scans the bucket; prize volumes are small enough that no
// secondary index is kept.
func (s *Store) ListByPrize(ctx context.Context, prizeID string) ([]*models.Participation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	items := []*models.Participation{}
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketName)).ForEach(func(k, v []byte) error {
			var p models.Participation
			if err := json.Unmarshal(v, &p); err != nil {
				return fmt.Errorf("decode participation %s: %w", k, err)
			}
			if p.PrizeID == prizeID {
				items = append(items, &p)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	repository.SortBySubmission(items)
	return items, nil
}

func (s *Store) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.View(func(tx *bolt.Tx) error {
		if tx.Bucket([]byte(bucketName)) == nil {
			return fmt.Errorf("bucket %s missing", bucketName)
		}
		return nil
	})
}

// Close releases the database file lock.
func (s *Store) Close() error {
	return s.db.Close()
}
