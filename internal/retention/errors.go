package retention

import (
	"fmt"

	"github.com/google/uuid"
)

// ConfigurationError signals a missing or invalid retention policy. It is
// fatal at run start: the archival job refuses to run with a partial policy.
type ConfigurationError struct {
	Type   EntityType
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("retention: politica invalida para %q: %s", e.Type, e.Reason)
	}
	return fmt.Sprintf("retention: nenhuma politica configurada para %q", e.Type)
}

// TransientStorageError wraps a failed batch transaction. The whole batch was
// rolled back and will be retried on the next scheduled run.
type TransientStorageError struct {
	Op  string
	Err error
}

func (e *TransientStorageError) Error() string {
	return fmt.Sprintf("retention: %s: %v", e.Op, e.Err)
}

func (e *TransientStorageError) Unwrap() error { return e.Err }

// IntegrityViolation is one hash mismatch found by the auditor. It is only
// reported — the archive row is never touched.
type IntegrityViolation struct {
	Type       EntityType
	OriginalID uuid.UUID
}

func (e *IntegrityViolation) Error() string {
	return fmt.Sprintf("retention: hash divergente no arquivo %s/%s", e.Type, e.OriginalID)
}
