package worker

// alert_email_worker.go
// Processes retention alert jobs from QueueAlertEmail and delivers them by
// SMTP to the configured operations mailbox.

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/rs/zerolog/log"

	"farmasys/internal/infra"
)

// AlertEmailPayload is the job envelope sent to QueueAlertEmail.
type AlertEmailPayload struct {
	ToEmail string `json:"to_email"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// AlertEmailWorker delivers retention alert emails.
type AlertEmailWorker struct {
	mailer *infra.Mailer
}

func NewAlertEmailWorker(mailer *infra.Mailer) *AlertEmailWorker {
	return &AlertEmailWorker{mailer: mailer}
}

// Process sends one alert email. A returned error triggers a retry and
// eventually the DLQ.
func (w *AlertEmailWorker) Process(_ context.Context, raw json.RawMessage) error {
	var payload AlertEmailPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("alert_email_worker: invalid payload")
		return nil // malformed payloads are not retryable
	}
	if payload.ToEmail == "" {
		log.Warn().Msg("alert_email_worker: empty to_email, skipping")
		return nil
	}

	if err := w.mailer.SendAlert(payload.ToEmail, payload.Subject, payload.Body); err != nil {
		log.Error().Err(err).Str("to", payload.ToEmail).Msg("alert_email_worker: send failed")
		return errors.New("smtp delivery failed")
	}
	log.Info().Str("to", payload.ToEmail).Msg("alert_email_worker: alert delivered")
	return nil
}
