// Package storage persists analysis snapshots: the ingested record sets
// plus a computed summary, so a session can be reloaded or shared later.
// Snapshots always land on local disk as JSON; S3/DynamoDB mirroring is
// optional and additive.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pkom79/email-metrics-cloud-sub001/internal/config"
	"github.com/pkom79/email-metrics-cloud-sub001/internal/engine"
)

// Snapshot is one saved analysis session.
type Snapshot struct {
	ID          string                 `json:"id"`
	Name        string                 `json:"name"`
	CreatedAt   time.Time              `json:"created_at"`
	Campaigns   []engine.SendRecord    `json:"campaigns"`
	Flows       []engine.SendRecord    `json:"flows"`
	Subscribers []engine.Subscriber    `json:"subscribers"`
	Totals      engine.AggregateTotals `json:"totals"`
	Derived     engine.DerivedMetrics  `json:"derived"`
}

// Meta is the listing view of a snapshot, without record payloads.
type Meta struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	CreatedAt       time.Time `json:"created_at"`
	CampaignCount   int       `json:"campaign_count"`
	FlowCount       int       `json:"flow_count"`
	SubscriberCount int       `json:"subscriber_count"`
}

// Storage writes snapshots to a local directory and, when configured,
// mirrors them to S3 with a DynamoDB index.
type Storage struct {
	cfg config.StorageConfig
	mu  sync.RWMutex
	aws *AWSStorage
}

// New creates the storage layer and ensures the local directory exists.
func New(cfg config.StorageConfig) (*Storage, error) {
	if err := os.MkdirAll(cfg.LocalPath, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir %s: %w", cfg.LocalPath, err)
	}
	return &Storage{cfg: cfg}, nil
}

// EnableAWS attaches the cloud mirror. Called at startup when the config
// carries a bucket and table.
func (s *Storage) EnableAWS(aws *AWSStorage) {
	s.mu.Lock()
	s.aws = aws
	s.mu.Unlock()
}

// NewSnapshot assembles a snapshot from a session's records with a fresh
// identifier and computed summary.
func NewSnapshot(name string, d *engine.Dataset) *Snapshot {
	totals, derived := engine.AggregateAndDerive(d.AllRecords())
	return &Snapshot{
		ID:          uuid.New().String(),
		Name:        name,
		CreatedAt:   time.Now().UTC(),
		Campaigns:   d.Campaigns(),
		Flows:       d.Flows(),
		Subscribers: d.Subscribers(),
		Totals:      totals,
		Derived:     derived,
	}
}

// Save writes a snapshot to disk and mirrors it to AWS when enabled.
// A mirror failure does not fail the save; the local copy is the source
// of truth.
func (s *Storage) Save(ctx context.Context, snap *Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.path(snap.ID)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("finalize snapshot: %w", err)
	}

	// The local copy is the source of truth; a mirror failure is logged,
	// not returned.
	if s.aws != nil {
		if err := s.aws.PutSnapshot(ctx, snap, data); err != nil {
			log.Printf("[storage] mirror snapshot %s: %v", snap.ID, err)
		}
	}
	return nil
}

// Load reads one snapshot by ID, preferring the local copy and falling
// back to the S3 mirror.
func (s *Storage) Load(ctx context.Context, id string) (*Snapshot, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}

	s.mu.RLock()
	aws := s.aws
	data, err := os.ReadFile(s.path(id))
	s.mu.RUnlock()

	if err != nil {
		if !os.IsNotExist(err) || aws == nil {
			return nil, fmt.Errorf("read snapshot %s: %w", id, err)
		}
		data, err = aws.GetSnapshot(ctx, id)
		if err != nil {
			return nil, err
		}
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", id, err)
	}
	return &snap, nil
}

// List returns metadata for every local snapshot, newest first. When the
// local directory is empty and a mirror is attached, the mirror's index is
// consulted so a fresh host still sees earlier sessions.
func (s *Storage) List(ctx context.Context) ([]Meta, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.cfg.LocalPath)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}

	metas := make([]Meta, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.cfg.LocalPath, e.Name()))
		if err != nil {
			continue
		}
		var snap Snapshot
		if err := json.Unmarshal(data, &snap); err != nil {
			continue
		}
		metas = append(metas, Meta{
			ID:              snap.ID,
			Name:            snap.Name,
			CreatedAt:       snap.CreatedAt,
			CampaignCount:   len(snap.Campaigns),
			FlowCount:       len(snap.Flows),
			SubscriberCount: len(snap.Subscribers),
		})
	}

	if len(metas) == 0 && s.aws != nil {
		remote, err := s.aws.ListSnapshots(ctx)
		if err != nil {
			log.Printf("[storage] list mirror snapshots: %v", err)
		} else {
			metas = remote
		}
	}

	sort.Slice(metas, func(i, j int) bool {
		return metas[i].CreatedAt.After(metas[j].CreatedAt)
	})
	return metas, nil
}

// Delete removes a local snapshot.
func (s *Storage) Delete(_ context.Context, id string) error {
	if err := validateID(id); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.path(id)); err != nil {
		return fmt.Errorf("delete snapshot %s: %w", id, err)
	}
	return nil
}

func (s *Storage) path(id string) string {
	return filepath.Join(s.cfg.LocalPath, id+".json")
}

// validateID rejects IDs that could escape the storage directory.
func validateID(id string) error {
	if id == "" || strings.ContainsAny(id, "/\\.") {
		return fmt.Errorf("invalid snapshot id %q", id)
	}
	return nil
}
