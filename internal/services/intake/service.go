// Package intake accepts raw inbound report payloads and turns them into
// cases. Senders vary wildly, so the payload is treated as opaque JSON: a few
// well-known fields are probed, everything else is preserved verbatim on the
// intake event.
package intake

import (
	"context"
	"encoding/json"
	"time"

	"github.com/tidwall/gjson"

	"github.com/caseflow/intake/internal/domain/caserecord"
	svcerr "github.com/caseflow/intake/internal/errors"
	"github.com/caseflow/intake/internal/services/cases"
	"github.com/caseflow/intake/pkg/logger"
)

// Service handles inbound webhook deliveries.
type Service struct {
	cases  *cases.Service
	logger *logger.Logger
}

// NewService creates an intake service.
func NewService(caseSvc *cases.Service, log *logger.Logger) *Service {
	return &Service{cases: caseSvc, logger: log}
}

// Receipt is the acknowledgement returned to the sender.
type Receipt struct {
	CaseID     string    `json:"case_id"`
	Status     string    `json:"status"`
	ReceivedAt time.Time `json:"received_at"`
}

// HandleWebhook validates a raw delivery and opens a case for it. The body
// must be a JSON object; arrays and scalars are rejected.
func (s *Service) HandleWebhook(ctx context.Context, body []byte) (Receipt, error) {
	if !json.Valid(body) {
		return Receipt{}, svcerr.InvalidPayload("body is not valid JSON")
	}
	parsed := gjson.ParseBytes(body)
	if !parsed.IsObject() {
		return Receipt{}, svcerr.InvalidPayload("body must be a JSON object")
	}

	externalRef := parsed.Get("external_ref").String()
	if externalRef == "" {
		externalRef = parsed.Get("externalRef").String()
	}
	source := parsed.Get("source").String()
	if source == "" {
		source = parsed.Get("channel").String()
	}

	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return Receipt{}, svcerr.InvalidPayload("body must be a JSON object")
	}

	receivedAt := time.Now().UTC()
	timeline, err := s.cases.CreateFromIntake(ctx, cases.IntakeReport{
		ExternalRef: externalRef,
		Source:      caserecord.ParseSource(source),
		ReceivedAt:  receivedAt,
		Raw:         raw,
	}, caserecord.ActorAPI, externalRef)
	if err != nil {
		s.logger.WithError(err).Error("webhook intake failed")
		return Receipt{}, svcerr.Internal()
	}

	return Receipt{
		CaseID:     timeline.Case.ID.String(),
		Status:     string(timeline.Case.Status),
		ReceivedAt: receivedAt,
	}, nil
}
