package retention

import (
	"sort"
	"time"
)

// EntityType identifies an archivable (or protected) business entity.
type EntityType string

const (
	EntitySale          EntityType = "sale"
	EntityStockMovement EntityType = "stock_movement"
	EntityCustomer      EntityType = "customer"
	EntitySupplier      EntityType = "supplier"
	EntityProduct       EntityType = "product"
	EntityPrescription  EntityType = "prescription"
)

// Policy is the resolved retention rule for one entity type.
type Policy struct {
	Years     int
	Protected bool
}

// PolicySet maps entity types to retention periods plus the protected set and
// the global archive ceiling. It is built once at startup and treated as a
// read-only snapshot by every job that consumes it.
type PolicySet struct {
	years           map[EntityType]int
	protected       map[EntityType]bool
	maxArchiveYears int
}

// NewPolicySet validates and freezes a retention configuration. Every
// configured period must be positive and the archive ceiling must not be
// shorter than the longest live retention.
func NewPolicySet(years map[EntityType]int, protected []EntityType, maxArchiveYears int) (*PolicySet, error) {
	if maxArchiveYears <= 0 {
		return nil, &ConfigurationError{Reason: "max archive years deve ser positivo"}
	}
	ys := make(map[EntityType]int, len(years))
	for t, y := range years {
		if y <= 0 {
			return nil, &ConfigurationError{Type: t, Reason: "periodo de retencao deve ser positivo"}
		}
		ys[t] = y
	}
	ps := make(map[EntityType]bool, len(protected))
	for _, t := range protected {
		ps[t] = true
	}
	return &PolicySet{years: ys, protected: ps, maxArchiveYears: maxArchiveYears}, nil
}

// Resolve returns the policy for t. Unknown, unprotected types are a
// configuration error.
func (p *PolicySet) Resolve(t EntityType) (Policy, error) {
	if p.protected[t] {
		return Policy{Protected: true}, nil
	}
	years, ok := p.years[t]
	if !ok {
		return Policy{}, &ConfigurationError{Type: t}
	}
	return Policy{Years: years}, nil
}

// Protected reports whether t belongs to the protected set.
func (p *PolicySet) Protected(t EntityType) bool { return p.protected[t] }

// ArchivableTypes returns the configured, non-protected types in a stable
// order so sequential processing is deterministic.
func (p *PolicySet) ArchivableTypes() []EntityType {
	types := make([]EntityType, 0, len(p.years))
	for t := range p.years {
		if !p.protected[t] {
			types = append(types, t)
		}
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

// Cutoff returns the soft-delete date before which records of type t are
// archival-eligible at instant now.
func (p *PolicySet) Cutoff(t EntityType, now time.Time) (time.Time, error) {
	pol, err := p.Resolve(t)
	if err != nil {
		return time.Time{}, err
	}
	if pol.Protected {
		return time.Time{}, &ConfigurationError{Type: t, Reason: "tipo protegido nunca e arquivado"}
	}
	return now.AddDate(-pol.Years, 0, 0), nil
}

// PurgeCutoff returns the archival date before which archive rows are
// eligible for permanent deletion at instant now.
func (p *PolicySet) PurgeCutoff(now time.Time) time.Time {
	return now.AddDate(-p.maxArchiveYears, 0, 0)
}

// MaxArchiveYears exposes the global ceiling for reports.
func (p *PolicySet) MaxArchiveYears() int { return p.maxArchiveYears }
