package retention

import (
	"context"
	"fmt"
	"sort"
	"time"

	"farmasys/internal/model"
)

// Severity orders alerts for display: INFO < ATTENTION < ERROR.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityAttention
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "INFO"
	case SeverityAttention:
		return "ATTENTION"
	case SeverityError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// MarshalJSON emits the symbolic name instead of the ordinal.
func (s Severity) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// Alert codes.
const (
	AlertUpcomingArchival = "UPCOMING_ARCHIVAL"
	AlertPendingPurge     = "PENDING_PURGE"
	AlertIntegrityFailed  = "INTEGRITY_FAILED"
)

// Alert is one active retention alert.
type Alert struct {
	Severity   Severity   `json:"severity"`
	Code       string     `json:"code"`
	EntityType EntityType `json:"entity_type,omitempty"`
	Count      int64      `json:"count,omitempty"`
	Message    string     `json:"message"`
}

// AlertStore exposes the counting queries the engine needs over both live and
// archive stores.
type AlertStore interface {
	// CountEligibleBefore counts soft-deleted, unarchived records of type t
	// whose deletion date falls before cutoff.
	CountEligibleBefore(ctx context.Context, t EntityType, cutoff time.Time) (int64, error)
	CountPurgeEligible(ctx context.Context, cutoff time.Time) (int64, error)
	LastCheck(ctx context.Context) (*model.IntegrityCheck, error)
}

// AlertEngine derives the active alerts from current store state. It holds no
// state of its own — alerts disappear when their condition clears.
type AlertEngine struct {
	store    AlertStore
	policies *PolicySet
	now      func() time.Time
}

func NewAlertEngine(store AlertStore, policies *PolicySet) *AlertEngine {
	return &AlertEngine{store: store, policies: policies, now: time.Now}
}

// ActiveAlerts evaluates all alert conditions and returns them sorted by
// ascending severity.
func (e *AlertEngine) ActiveAlerts(ctx context.Context) ([]Alert, error) {
	now := e.now()
	var alerts []Alert

	// Records crossing the retention cutoff within the next 30 days.
	horizon := now.AddDate(0, 0, 30)
	for _, t := range e.policies.ArchivableTypes() {
		cutoff, err := e.policies.Cutoff(t, horizon)
		if err != nil {
			return nil, err
		}
		n, err := e.store.CountEligibleBefore(ctx, t, cutoff)
		if err != nil {
			return nil, &TransientStorageError{Op: "alert count " + string(t), Err: err}
		}
		if n > 0 {
			alerts = append(alerts, Alert{
				Severity:   SeverityInfo,
				Code:       AlertUpcomingArchival,
				EntityType: t,
				Count:      n,
				Message:    fmt.Sprintf("%d registros de %s serao arquivados nos proximos 30 dias", n, t),
			})
		}
	}

	// Archives past the global ceiling, pending permanent deletion.
	purgeable, err := e.store.CountPurgeEligible(ctx, e.policies.PurgeCutoff(now))
	if err != nil {
		return nil, &TransientStorageError{Op: "alert purge count", Err: err}
	}
	if purgeable > 0 {
		alerts = append(alerts, Alert{
			Severity: SeverityAttention,
			Code:     AlertPendingPurge,
			Count:    purgeable,
			Message:  fmt.Sprintf("%d registros arquivados elegiveis para exclusao permanente", purgeable),
		})
	}

	// Failed most-recent integrity check.
	last, err := e.store.LastCheck(ctx)
	if err == nil && last != nil && last.Status == model.IntegrityAttention {
		alerts = append(alerts, Alert{
			Severity: SeverityError,
			Code:     AlertIntegrityFailed,
			Count:    int64(last.CorruptCount),
			Message: fmt.Sprintf("verificacao de integridade falhou: %.1f%% integro (minimo configurado nao atingido)",
				last.PercentIntact),
		})
	}

	sort.SliceStable(alerts, func(i, j int) bool { return alerts[i].Severity < alerts[j].Severity })
	return alerts, nil
}
