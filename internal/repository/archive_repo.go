package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"farmasys/internal/model"
	"farmasys/internal/retention"
)

// ArchiveRepository is the persistent-store collaborator of the retention
// subsystem: per-type archival sources, audit sampling, report aggregation,
// alert counting, and integrity-check persistence, all over the same *gorm.DB.
type ArchiveRepository struct{ db *gorm.DB }

func NewArchiveRepository(db *gorm.DB) *ArchiveRepository { return &ArchiveRepository{db: db} }

// Sources returns one archival source per archivable entity type.
func (r *ArchiveRepository) Sources() []retention.Source {
	return []retention.Source{
		&saleArchiveSource{db: r.db},
		&stockMovementArchiveSource{db: r.db},
		&customerArchiveSource{db: r.db},
		&supplierArchiveSource{db: r.db},
	}
}

// AuditSources returns one sampling source per archive table.
func (r *ArchiveRepository) AuditSources() []retention.AuditSource {
	return []retention.AuditSource{
		&saleArchiveSource{db: r.db},
		&stockMovementArchiveSource{db: r.db},
		&customerArchiveSource{db: r.db},
		&supplierArchiveSource{db: r.db},
	}
}

// ── Generic helpers shared by the per-type sources ───────────────────────────

// fetchEligible loads up to limit soft-deleted records of L with a deletion
// date at or before cutoff, ordered by id for a stable batch walk.
func fetchEligible[L any](ctx context.Context, db *gorm.DB, cutoff time.Time, limit int) ([]L, error) {
	var rows []L
	err := db.WithContext(ctx).
		Where("state = ? AND deleted_at <= ?", model.LifecycleSoftDeleted, cutoff).
		Order("id").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

// commitBatch inserts the archive rows and flags the live rows in one
// transaction. If any live row was concurrently mutated out of SOFT_DELETED
// the whole batch rolls back — no partially archived batch is observable.
func commitBatch[L any, A any](ctx context.Context, db *gorm.DB, archives []A, ids []uuid.UUID, archivedAt time.Time) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&archives).Error; err != nil {
			return err
		}
		var live L
		res := tx.Model(&live).
			Where("id IN ? AND state = ?", ids, model.LifecycleSoftDeleted).
			Updates(map[string]interface{}{
				"state":       model.LifecycleArchived,
				"archived_at": archivedAt,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected != int64(len(ids)) {
			return fmt.Errorf("arquivamento inconsistente: %d de %d registros marcados", res.RowsAffected, len(ids))
		}
		return nil
	})
}

// purgeExpired permanently deletes archive rows of A archived before cutoff.
func purgeExpired[A any](ctx context.Context, db *gorm.DB, cutoff time.Time) (int64, error) {
	var zero A
	res := db.WithContext(ctx).Where("archived_at < ?", cutoff).Delete(&zero)
	return res.RowsAffected, res.Error
}

// sampleArchives loads up to limit archive rows, most-recent-first or random.
func sampleArchives[A any](ctx context.Context, db *gorm.DB, limit int, random bool) ([]A, error) {
	var rows []A
	q := db.WithContext(ctx).Limit(limit)
	if random {
		q = q.Order("random()")
	} else {
		q = q.Order("archived_at DESC")
	}
	err := q.Find(&rows).Error
	return rows, err
}

// ── Sale ─────────────────────────────────────────────────────────────────────

type saleArchiveSource struct{ db *gorm.DB }

func (s *saleArchiveSource) Type() retention.EntityType { return retention.EntitySale }

func (s *saleArchiveSource) FetchEligible(ctx context.Context, cutoff time.Time, limit int) ([]retention.Candidate, error) {
	rows, err := fetchEligible[model.Sale](ctx, s.db, cutoff, limit)
	if err != nil {
		return nil, err
	}
	cands := make([]retention.Candidate, 0, len(rows))
	for i := range rows {
		sale := &rows[i]
		snap, err := json.Marshal(sale)
		if err != nil {
			return nil, err
		}
		cands = append(cands, retention.Candidate{
			OriginalID: sale.ID,
			TenantID:   sale.TenantID,
			DeletedAt:  *sale.DeletedAt,
			DeletedBy:  sale.DeletedBy,
			Fields: retention.SaleFields(sale.ID, sale.TenantID, sale.Number,
				sale.TotalValue, sale.ItemCount, sale.HasControlled, *sale.DeletedAt),
			Snapshot: snap,
			Row: &model.ArchivedSale{
				SaleNumber:    sale.Number,
				TotalValue:    sale.TotalValue,
				ItemCount:     sale.ItemCount,
				HasControlled: sale.HasControlled,
			},
		})
	}
	return cands, nil
}

func (s *saleArchiveSource) CommitBatch(ctx context.Context, rows []retention.ArchiveRow, ids []uuid.UUID) error {
	archives := make([]model.ArchivedSale, 0, len(rows))
	for _, row := range rows {
		archives = append(archives, *row.(*model.ArchivedSale))
	}
	return commitBatch[model.Sale](ctx, s.db, archives, ids, archives[0].ArchivedAt)
}

func (s *saleArchiveSource) PurgeExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	return purgeExpired[model.ArchivedSale](ctx, s.db, cutoff)
}

func (s *saleArchiveSource) Sample(ctx context.Context, limit int, random bool) ([]retention.StoredArchive, error) {
	rows, err := sampleArchives[model.ArchivedSale](ctx, s.db, limit, random)
	if err != nil {
		return nil, err
	}
	out := make([]retention.StoredArchive, 0, len(rows))
	for i := range rows {
		a := &rows[i]
		out = append(out, retention.StoredArchive{
			OriginalID:    a.OriginalID,
			SchemaVersion: a.SchemaVersion,
			StoredHash:    a.IntegrityHash,
			Fields: retention.SaleFields(a.OriginalID, a.TenantID, a.SaleNumber,
				a.TotalValue, a.ItemCount, a.HasControlled, a.DeletedAt),
		})
	}
	return out, nil
}

// ── Stock movement ───────────────────────────────────────────────────────────

type stockMovementArchiveSource struct{ db *gorm.DB }

func (s *stockMovementArchiveSource) Type() retention.EntityType {
	return retention.EntityStockMovement
}

func (s *stockMovementArchiveSource) FetchEligible(ctx context.Context, cutoff time.Time, limit int) ([]retention.Candidate, error) {
	rows, err := fetchEligible[model.StockMovement](ctx, s.db, cutoff, limit)
	if err != nil {
		return nil, err
	}
	cands := make([]retention.Candidate, 0, len(rows))
	for i := range rows {
		m := &rows[i]
		snap, err := json.Marshal(m)
		if err != nil {
			return nil, err
		}
		cands = append(cands, retention.Candidate{
			OriginalID: m.ID,
			TenantID:   m.TenantID,
			DeletedAt:  *m.DeletedAt,
			DeletedBy:  m.DeletedBy,
			Fields: retention.StockMovementArchiveFields(m.ID, m.TenantID, m.ProductID,
				m.Type, m.Quantity, m.ResultingBalance, *m.DeletedAt),
			Snapshot: snap,
			Row: &model.ArchivedStockMovement{
				ProductID:        m.ProductID,
				MovementType:     m.Type,
				Quantity:         m.Quantity,
				ResultingBalance: m.ResultingBalance,
			},
		})
	}
	return cands, nil
}

func (s *stockMovementArchiveSource) CommitBatch(ctx context.Context, rows []retention.ArchiveRow, ids []uuid.UUID) error {
	archives := make([]model.ArchivedStockMovement, 0, len(rows))
	for _, row := range rows {
		archives = append(archives, *row.(*model.ArchivedStockMovement))
	}
	return commitBatch[model.StockMovement](ctx, s.db, archives, ids, archives[0].ArchivedAt)
}

func (s *stockMovementArchiveSource) PurgeExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	return purgeExpired[model.ArchivedStockMovement](ctx, s.db, cutoff)
}

func (s *stockMovementArchiveSource) Sample(ctx context.Context, limit int, random bool) ([]retention.StoredArchive, error) {
	rows, err := sampleArchives[model.ArchivedStockMovement](ctx, s.db, limit, random)
	if err != nil {
		return nil, err
	}
	out := make([]retention.StoredArchive, 0, len(rows))
	for i := range rows {
		a := &rows[i]
		out = append(out, retention.StoredArchive{
			OriginalID:    a.OriginalID,
			SchemaVersion: a.SchemaVersion,
			StoredHash:    a.IntegrityHash,
			Fields: retention.StockMovementArchiveFields(a.OriginalID, a.TenantID, a.ProductID,
				a.MovementType, a.Quantity, a.ResultingBalance, a.DeletedAt),
		})
	}
	return out, nil
}

// ── Customer ─────────────────────────────────────────────────────────────────

type customerArchiveSource struct{ db *gorm.DB }

func (s *customerArchiveSource) Type() retention.EntityType { return retention.EntityCustomer }

func (s *customerArchiveSource) FetchEligible(ctx context.Context, cutoff time.Time, limit int) ([]retention.Candidate, error) {
	rows, err := fetchEligible[model.Customer](ctx, s.db, cutoff, limit)
	if err != nil {
		return nil, err
	}
	cands := make([]retention.Candidate, 0, len(rows))
	for i := range rows {
		c := &rows[i]
		snap, err := json.Marshal(c)
		if err != nil {
			return nil, err
		}
		cands = append(cands, retention.Candidate{
			OriginalID: c.ID,
			TenantID:   c.TenantID,
			DeletedAt:  *c.DeletedAt,
			DeletedBy:  c.DeletedBy,
			Fields:     retention.CustomerFields(c.ID, c.TenantID, c.Document, c.FullName, *c.DeletedAt),
			Snapshot:   snap,
			Row: &model.ArchivedCustomer{
				Document: c.Document,
				FullName: c.FullName,
			},
		})
	}
	return cands, nil
}

func (s *customerArchiveSource) CommitBatch(ctx context.Context, rows []retention.ArchiveRow, ids []uuid.UUID) error {
	archives := make([]model.ArchivedCustomer, 0, len(rows))
	for _, row := range rows {
		archives = append(archives, *row.(*model.ArchivedCustomer))
	}
	return commitBatch[model.Customer](ctx, s.db, archives, ids, archives[0].ArchivedAt)
}

func (s *customerArchiveSource) PurgeExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	return purgeExpired[model.ArchivedCustomer](ctx, s.db, cutoff)
}

func (s *customerArchiveSource) Sample(ctx context.Context, limit int, random bool) ([]retention.StoredArchive, error) {
	rows, err := sampleArchives[model.ArchivedCustomer](ctx, s.db, limit, random)
	if err != nil {
		return nil, err
	}
	out := make([]retention.StoredArchive, 0, len(rows))
	for i := range rows {
		a := &rows[i]
		out = append(out, retention.StoredArchive{
			OriginalID:    a.OriginalID,
			SchemaVersion: a.SchemaVersion,
			StoredHash:    a.IntegrityHash,
			Fields:        retention.CustomerFields(a.OriginalID, a.TenantID, a.Document, a.FullName, a.DeletedAt),
		})
	}
	return out, nil
}

// ── Supplier ─────────────────────────────────────────────────────────────────

type supplierArchiveSource struct{ db *gorm.DB }

func (s *supplierArchiveSource) Type() retention.EntityType { return retention.EntitySupplier }

func (s *supplierArchiveSource) FetchEligible(ctx context.Context, cutoff time.Time, limit int) ([]retention.Candidate, error) {
	rows, err := fetchEligible[model.Supplier](ctx, s.db, cutoff, limit)
	if err != nil {
		return nil, err
	}
	cands := make([]retention.Candidate, 0, len(rows))
	for i := range rows {
		sup := &rows[i]
		snap, err := json.Marshal(sup)
		if err != nil {
			return nil, err
		}
		cands = append(cands, retention.Candidate{
			OriginalID: sup.ID,
			TenantID:   sup.TenantID,
			DeletedAt:  *sup.DeletedAt,
			DeletedBy:  sup.DeletedBy,
			Fields:     retention.SupplierFields(sup.ID, sup.TenantID, sup.TaxID, sup.LegalName, *sup.DeletedAt),
			Snapshot:   snap,
			Row: &model.ArchivedSupplier{
				TaxID:     sup.TaxID,
				LegalName: sup.LegalName,
			},
		})
	}
	return cands, nil
}

func (s *supplierArchiveSource) CommitBatch(ctx context.Context, rows []retention.ArchiveRow, ids []uuid.UUID) error {
	archives := make([]model.ArchivedSupplier, 0, len(rows))
	for _, row := range rows {
		archives = append(archives, *row.(*model.ArchivedSupplier))
	}
	return commitBatch[model.Supplier](ctx, s.db, archives, ids, archives[0].ArchivedAt)
}

func (s *supplierArchiveSource) PurgeExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	return purgeExpired[model.ArchivedSupplier](ctx, s.db, cutoff)
}

func (s *supplierArchiveSource) Sample(ctx context.Context, limit int, random bool) ([]retention.StoredArchive, error) {
	rows, err := sampleArchives[model.ArchivedSupplier](ctx, s.db, limit, random)
	if err != nil {
		return nil, err
	}
	out := make([]retention.StoredArchive, 0, len(rows))
	for i := range rows {
		a := &rows[i]
		out = append(out, retention.StoredArchive{
			OriginalID:    a.OriginalID,
			SchemaVersion: a.SchemaVersion,
			StoredHash:    a.IntegrityHash,
			Fields:        retention.SupplierFields(a.OriginalID, a.TenantID, a.TaxID, a.LegalName, a.DeletedAt),
		})
	}
	return out, nil
}

// ── retention.ReportStore / retention.AlertStore / retention.CheckStore ──────

func (r *ArchiveRepository) CountArchivedBetween(ctx context.Context, t retention.EntityType, from, to time.Time) (int64, error) {
	m, err := archiveModelFor(t)
	if err != nil {
		return 0, err
	}
	var n int64
	err = r.db.WithContext(ctx).Model(m).
		Where("archived_at >= ? AND archived_at < ?", from, to).
		Count(&n).Error
	return n, err
}

func (r *ArchiveRepository) TenantBreakdown(ctx context.Context, from, to time.Time) ([]retention.TenantArchiveStats, error) {
	var stats []retention.TenantArchiveStats
	err := r.db.WithContext(ctx).Model(&model.ArchivedSale{}).
		Select(`tenant_id,
			COUNT(*) AS archived_count,
			COALESCE(SUM(total_value), 0) AS total_value,
			COUNT(*) FILTER (WHERE has_controlled) AS controlled_count`).
		Where("archived_at >= ? AND archived_at < ?", from, to).
		Group("tenant_id").
		Order("tenant_id").
		Scan(&stats).Error
	return stats, err
}

func (r *ArchiveRepository) ChecksBetween(ctx context.Context, from, to time.Time) ([]model.IntegrityCheck, error) {
	var checks []model.IntegrityCheck
	err := r.db.WithContext(ctx).
		Where("checked_at >= ? AND checked_at < ?", from, to).
		Order("checked_at").
		Find(&checks).Error
	return checks, err
}

func (r *ArchiveRepository) LastCheck(ctx context.Context) (*model.IntegrityCheck, error) {
	var check model.IntegrityCheck
	err := r.db.WithContext(ctx).Order("checked_at DESC").First(&check).Error
	if err != nil {
		return nil, err
	}
	return &check, nil
}

func (r *ArchiveRepository) CountPurgeEligible(ctx context.Context, cutoff time.Time) (int64, error) {
	var total int64
	for _, m := range []interface{}{
		&model.ArchivedSale{}, &model.ArchivedStockMovement{},
		&model.ArchivedCustomer{}, &model.ArchivedSupplier{},
	} {
		var n int64
		if err := r.db.WithContext(ctx).Model(m).Where("archived_at < ?", cutoff).Count(&n).Error; err != nil {
			return 0, err
		}
		total += n
	}
	return total, nil
}

func (r *ArchiveRepository) CountEligibleBefore(ctx context.Context, t retention.EntityType, cutoff time.Time) (int64, error) {
	m, err := liveModelFor(t)
	if err != nil {
		return 0, err
	}
	var n int64
	err = r.db.WithContext(ctx).Model(m).
		Where("state = ? AND deleted_at <= ?", model.LifecycleSoftDeleted, cutoff).
		Count(&n).Error
	return n, err
}

func (r *ArchiveRepository) SaveCheck(ctx context.Context, check *model.IntegrityCheck) error {
	return r.db.WithContext(ctx).Create(check).Error
}

func archiveModelFor(t retention.EntityType) (interface{}, error) {
	switch t {
	case retention.EntitySale:
		return &model.ArchivedSale{}, nil
	case retention.EntityStockMovement:
		return &model.ArchivedStockMovement{}, nil
	case retention.EntityCustomer:
		return &model.ArchivedCustomer{}, nil
	case retention.EntitySupplier:
		return &model.ArchivedSupplier{}, nil
	default:
		return nil, fmt.Errorf("tipo sem tabela de arquivo: %s", t)
	}
}

func liveModelFor(t retention.EntityType) (interface{}, error) {
	switch t {
	case retention.EntitySale:
		return &model.Sale{}, nil
	case retention.EntityStockMovement:
		return &model.StockMovement{}, nil
	case retention.EntityCustomer:
		return &model.Customer{}, nil
	case retention.EntitySupplier:
		return &model.Supplier{}, nil
	default:
		return nil, fmt.Errorf("tipo sem tabela ativa: %s", t)
	}
}
