package retention

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"farmasys/internal/model"
)

// StoredArchive is one sampled archive row, reduced to what re-verification
// needs: the stored hash, the schema version it was written under, and the
// critical fields rebuilt from the stored columns.
type StoredArchive struct {
	OriginalID    uuid.UUID
	SchemaVersion int
	StoredHash    string
	Fields        []Field
}

// AuditSource samples the archive store for one entity type.
type AuditSource interface {
	Type() EntityType
	// Sample returns up to limit archive rows, most-recent-first, or randomly
	// when random is set.
	Sample(ctx context.Context, limit int, random bool) ([]StoredArchive, error)
}

// CheckStore persists audit outcomes.
type CheckStore interface {
	SaveCheck(ctx context.Context, check *model.IntegrityCheck) error
}

// AuditorConfig tunes sampling and classification.
type AuditorConfig struct {
	SampleSize int
	MinPercent float64 // below this, status is ATTENTION
	Random     bool
}

// Auditor re-verifies archived integrity hashes by sampling. Corruption is
// reported with its original id, never corrected.
type Auditor struct {
	hasher  Hasher
	sources []AuditSource
	store   CheckStore
	cfg     AuditorConfig
	now     func() time.Time
}

func NewAuditor(sources []AuditSource, store CheckStore, cfg AuditorConfig) *Auditor {
	if cfg.SampleSize <= 0 {
		cfg.SampleSize = 100
	}
	return &Auditor{sources: sources, store: store, cfg: cfg, now: time.Now}
}

// RunCheck audits every registered archive type and persists one
// IntegrityCheck per type. An empty archive counts as 100% intact.
func (a *Auditor) RunCheck(ctx context.Context) ([]model.IntegrityCheck, error) {
	var checks []model.IntegrityCheck

	for _, src := range a.sources {
		sample, err := src.Sample(ctx, a.cfg.SampleSize, a.cfg.Random)
		if err != nil {
			return checks, &TransientStorageError{Op: "sample " + string(src.Type()), Err: err}
		}

		check := model.IntegrityCheck{
			EntityType: string(src.Type()),
			SampleSize: len(sample),
			CheckedAt:  a.now(),
		}
		var corruptIDs []string
		for _, rec := range sample {
			recomputed, err := a.hasher.Sum(rec.SchemaVersion, rec.Fields)
			if err != nil || recomputed != rec.StoredHash {
				check.CorruptCount++
				corruptIDs = append(corruptIDs, rec.OriginalID.String())
				violation := &IntegrityViolation{Type: src.Type(), OriginalID: rec.OriginalID}
				log.Warn().Str("type", string(src.Type())).
					Str("original_id", rec.OriginalID.String()).
					Msg(violation.Error())
				continue
			}
			check.IntactCount++
		}

		check.PercentIntact = percentIntact(check.IntactCount, check.SampleSize)
		check.Status = Classify(check.PercentIntact, a.cfg.MinPercent)
		if len(corruptIDs) > 0 {
			check.CorruptIDs, _ = json.Marshal(corruptIDs)
		}

		if a.store != nil {
			if err := a.store.SaveCheck(ctx, &check); err != nil {
				return checks, &TransientStorageError{Op: "save check " + string(src.Type()), Err: err}
			}
		}
		checks = append(checks, check)

		log.Info().
			Str("type", string(src.Type())).
			Int("sample", check.SampleSize).
			Int("corrupt", check.CorruptCount).
			Float64("percent_intact", check.PercentIntact).
			Str("status", check.Status).
			Msg("integrity check completed")
	}
	return checks, nil
}

func percentIntact(intact, sample int) float64 {
	if sample == 0 {
		return 100
	}
	return float64(intact) / float64(sample) * 100
}

// Classify maps a percent-intact value to PASS or ATTENTION against the
// configured minimum threshold.
func Classify(percent, minPercent float64) string {
	if percent < minPercent {
		return model.IntegrityAttention
	}
	return model.IntegrityPass
}
