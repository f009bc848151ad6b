// Package export persists alignment run output for the external export
// collaborator: runs and their records land in a relational store the
// exporter reads back in stable cell order.
package export

import (
	"context"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/taxotools/semalign/align"
	"github.com/taxotools/semalign/types"
)

// Run is one alignment export job.
type Run struct {
	ID             string    `gorm:"primaryKey;size:36"`
	TaxonomyFilter string    `gorm:"size:255"`
	Concepts       int       `gorm:"not null"`
	Failed         int       `gorm:"not null"`
	CreatedAt      time.Time `gorm:"autoCreateTime"`
}

// Record is one persisted alignment record, flat for tabular export.
type Record struct {
	ID       uint   `gorm:"primaryKey;autoIncrement"`
	RunID    string `gorm:"size:36;not null;uniqueIndex:idx_run_cell"`
	CellID   string `gorm:"size:32;not null;uniqueIndex:idx_run_cell"`
	Sequence uint64 `gorm:"not null"`

	Relation   string  `gorm:"size:32;not null"`
	Confidence float64 `gorm:"not null"`

	SourceURI        string `gorm:"size:512;index"`
	SourceLabel      string `gorm:"size:512"`
	SourceDefinition string `gorm:"type:text"`

	CandidateURI        string `gorm:"size:512;index"`
	CandidateLabel      string `gorm:"size:512"`
	CandidateDefinition string `gorm:"type:text"`
}

// Store persists alignment runs over GORM.
type Store struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewStore wraps an existing gorm handle and migrates the schema.
func NewStore(db *gorm.DB, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if err := db.AutoMigrate(&Run{}, &Record{}); err != nil {
		return nil, fmt.Errorf("failed to auto migrate: %w", err)
	}
	return &Store{db: db, logger: log.With(zap.String("component", "export"))}, nil
}

// Open opens (or creates) a SQLite-backed store at path. Use
// ":memory:" for an ephemeral store.
func Open(path string, log *zap.Logger) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open export store: %w", err)
	}
	return NewStore(db, log)
}

// SaveRun persists one batch alignment outcome as a run plus its
// records. Failed concepts count toward the run but contribute no rows;
// the export surface shows them as skipped, never as fabricated matches.
func (s *Store) SaveRun(ctx context.Context, taxonomyFilter string, results []align.ConceptResult) (*Run, error) {
	run := &Run{
		ID:             uuid.NewString(),
		TaxonomyFilter: taxonomyFilter,
		Concepts:       len(results),
	}

	var rows []Record
	seq := uint64(0)
	for _, res := range results {
		if res.Err != nil {
			run.Failed++
			continue
		}
		for _, rec := range res.Records {
			seq++
			rows = append(rows, Record{
				RunID:               run.ID,
				CellID:              rec.CellID,
				Sequence:            seq,
				Relation:            string(rec.Relation),
				Confidence:          rec.Confidence,
				SourceURI:           rec.SourceURI,
				SourceLabel:         rec.SourceLabel,
				SourceDefinition:    rec.SourceDefinition,
				CandidateURI:        rec.CandidateURI,
				CandidateLabel:      rec.CandidateLabel,
				CandidateDefinition: rec.CandidateDefinition,
			})
		}
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(run).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.Create(&rows).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save run: %w", err)
	}

	s.logger.Info("alignment run saved",
		zap.String("run", run.ID),
		zap.Int("records", len(rows)),
		zap.Int("failed", run.Failed))
	return run, nil
}

// Records returns a run's records in allocation order.
func (s *Store) Records(ctx context.Context, runID string) ([]Record, error) {
	var rows []Record
	err := s.db.WithContext(ctx).
		Where("run_id = ?", runID).
		Order("sequence ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load records: %w", err)
	}
	return rows, nil
}

// GetRun returns one run by id.
func (s *Store) GetRun(ctx context.Context, runID string) (*Run, error) {
	var run Run
	err := s.db.WithContext(ctx).First(&run, "id = ?", runID).Error
	if err == gorm.ErrRecordNotFound {
		return nil, types.NewErrorf(types.ErrNotFound, "run %s not found", runID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load run: %w", err)
	}
	return &run, nil
}

// Runs lists all runs, newest first.
func (s *Store) Runs(ctx context.Context) ([]Run, error) {
	var runs []Run
	err := s.db.WithContext(ctx).Order("created_at DESC").Find(&runs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	return runs, nil
}
