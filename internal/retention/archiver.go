package retention

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"farmasys/internal/model"
)

// ArchiveRow is implemented by every archive model via the embedded
// ArchiveMeta. The source builds the row with its type-specific columns and
// snapshot; the processor stamps the header (hash, timestamps, version).
type ArchiveRow interface {
	SetMeta(meta model.ArchiveMeta)
}

// Candidate is one archival-eligible live record prepared by a Source.
type Candidate struct {
	OriginalID uuid.UUID
	TenantID   uuid.UUID
	DeletedAt  time.Time
	DeletedBy  *uuid.UUID
	// Fields is the ordered critical-field set the integrity hash covers.
	Fields []Field
	// Snapshot is the serialized original record.
	Snapshot []byte
	// Row is the archive row with only its type-specific columns filled; the
	// header is stamped by the processor before commit.
	Row ArchiveRow
}

// Source is the persistent-store collaborator for one entity type.
// CommitBatch must be atomic: all archive rows inserted and all live rows
// flagged ARCHIVED, or nothing.
type Source interface {
	Type() EntityType
	// FetchEligible returns up to limit soft-deleted, not-yet-archived records
	// with DeletedAt before cutoff, ordered by a stable key.
	FetchEligible(ctx context.Context, cutoff time.Time, limit int) ([]Candidate, error)
	// CommitBatch inserts the archive rows and flags the corresponding live
	// rows in a single transaction.
	CommitBatch(ctx context.Context, rows []ArchiveRow, originalIDs []uuid.UUID) error
	// PurgeExpired permanently deletes archive rows archived before cutoff,
	// returning the number of rows removed.
	PurgeExpired(ctx context.Context, cutoff time.Time) (int64, error)
}

// ArchiverConfig tunes the batch processor.
type ArchiverConfig struct {
	BatchSize  int
	BatchPause time.Duration
	Reason     string // archival reason recorded on every row
}

// TypeResult is the per-type outcome of one run.
type TypeResult struct {
	Type     EntityType `json:"type"`
	Archived int        `json:"archived"`
	Batches  int        `json:"batches"`
	Error    string     `json:"error,omitempty"`
}

// RunSummary is the structured outcome of one archival run.
type RunSummary struct {
	StartedAt     time.Time    `json:"started_at"`
	FinishedAt    time.Time    `json:"finished_at"`
	TotalArchived int          `json:"total_archived"`
	Cancelled     bool         `json:"cancelled"`
	Types         []TypeResult `json:"types"`
}

// PurgeSummary is the outcome of one permanent-deletion run.
type PurgeSummary struct {
	Cutoff     time.Time            `json:"cutoff"`
	TotalRows  int64                `json:"total_rows"`
	PerType    map[EntityType]int64 `json:"per_type"`
	FinishedAt time.Time            `json:"finished_at"`
}

// Archiver migrates expired soft-deleted records into the archive store.
// Types are processed sequentially, batches within a type sequentially, one
// transaction per batch. Cancellation is checked only at batch boundaries so
// a stop can never tear a batch.
type Archiver struct {
	policies *PolicySet
	hasher   Hasher
	sources  map[EntityType]Source
	cfg      ArchiverConfig
	now      func() time.Time
}

func NewArchiver(policies *PolicySet, sources []Source, cfg ArchiverConfig) *Archiver {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 500
	}
	if cfg.Reason == "" {
		cfg.Reason = "retention_policy"
	}
	byType := make(map[EntityType]Source, len(sources))
	for _, s := range sources {
		byType[s.Type()] = s
	}
	return &Archiver{policies: policies, sources: byType, cfg: cfg, now: time.Now}
}

// Run executes one full archival pass. Every registered source must resolve
// to a policy before any batch is committed — a partial policy is fatal at
// run start. A failure mid-type abandons that type only; batches already
// committed (for it or for earlier types) stay committed.
func (a *Archiver) Run(ctx context.Context) (*RunSummary, error) {
	summary := &RunSummary{StartedAt: a.now()}

	// Fail fast on configuration before touching storage.
	for t := range a.sources {
		if a.policies.Protected(t) {
			continue
		}
		if _, err := a.policies.Resolve(t); err != nil {
			return nil, err
		}
	}

	for _, t := range a.policies.ArchivableTypes() {
		src, ok := a.sources[t]
		if !ok {
			continue
		}
		res := a.runType(ctx, src)
		summary.Types = append(summary.Types, res)
		summary.TotalArchived += res.Archived
		if ctx.Err() != nil {
			summary.Cancelled = true
			break
		}
	}

	summary.FinishedAt = a.now()
	log.Info().
		Int("total_archived", summary.TotalArchived).
		Dur("duration", summary.FinishedAt.Sub(summary.StartedAt)).
		Bool("cancelled", summary.Cancelled).
		Msg("archival run finished")
	return summary, nil
}

func (a *Archiver) runType(ctx context.Context, src Source) TypeResult {
	res := TypeResult{Type: src.Type()}

	cutoff, err := a.policies.Cutoff(src.Type(), a.now())
	if err != nil {
		res.Error = err.Error()
		return res
	}

	for {
		// Cooperative cancellation — only between batches.
		if ctx.Err() != nil {
			return res
		}

		batch, err := src.FetchEligible(ctx, cutoff, a.cfg.BatchSize)
		if err != nil {
			res.Error = (&TransientStorageError{Op: "fetch " + string(src.Type()), Err: err}).Error()
			log.Error().Err(err).Str("type", string(src.Type())).Msg("archival fetch failed")
			return res
		}
		if len(batch) == 0 {
			return res
		}

		rows := make([]ArchiveRow, 0, len(batch))
		ids := make([]uuid.UUID, 0, len(batch))
		archivedAt := a.now()
		for _, c := range batch {
			hash, err := a.hasher.Sum(CurrentSchemaVersion, c.Fields)
			if err != nil {
				res.Error = err.Error()
				return res
			}
			meta := model.ArchiveMeta{
				OriginalID:     c.OriginalID,
				TenantID:       c.TenantID,
				DeletedAt:      c.DeletedAt,
				DeletedBy:      c.DeletedBy,
				ArchivedAt:     archivedAt,
				ArchivalReason: a.cfg.Reason,
				SchemaVersion:  CurrentSchemaVersion,
				Snapshot:       c.Snapshot,
				IntegrityHash:  hash,
			}
			c.Row.SetMeta(meta)
			rows = append(rows, c.Row)
			ids = append(ids, c.OriginalID)
		}

		if err := src.CommitBatch(ctx, rows, ids); err != nil {
			// Whole batch rolled back; next scheduled run retries it.
			res.Error = (&TransientStorageError{Op: "commit " + string(src.Type()), Err: err}).Error()
			log.Error().Err(err).
				Str("type", string(src.Type())).
				Int("batch_size", len(rows)).
				Msg("archival batch discarded")
			return res
		}
		res.Archived += len(batch)
		res.Batches++
		log.Debug().
			Str("type", string(src.Type())).
			Int("count", len(batch)).
			Msg("archival batch committed")

		// Explicit backpressure against shared storage.
		if a.cfg.BatchPause > 0 {
			select {
			case <-ctx.Done():
				return res
			case <-time.After(a.cfg.BatchPause):
			}
		}
	}
}

// Purge permanently deletes archive rows older than the global ceiling. Live
// tables are never touched.
func (a *Archiver) Purge(ctx context.Context) (*PurgeSummary, error) {
	cutoff := a.policies.PurgeCutoff(a.now())
	summary := &PurgeSummary{Cutoff: cutoff, PerType: make(map[EntityType]int64)}

	for _, t := range a.policies.ArchivableTypes() {
		src, ok := a.sources[t]
		if !ok {
			continue
		}
		if ctx.Err() != nil {
			break
		}
		n, err := src.PurgeExpired(ctx, cutoff)
		if err != nil {
			return summary, &TransientStorageError{Op: "purge " + string(t), Err: err}
		}
		summary.PerType[t] = n
		summary.TotalRows += n
	}
	summary.FinishedAt = a.now()
	log.Info().Int64("purged", summary.TotalRows).Time("cutoff", cutoff).Msg("archive purge finished")
	return summary, nil
}
