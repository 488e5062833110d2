// internal/notify/fanout.go
package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/lauraedgell33/European-digital-logistics-sub006/internal/common/logger"
	"github.com/lauraedgell33/European-digital-logistics-sub006/internal/common/metrics"
	"github.com/lauraedgell33/European-digital-logistics-sub006/internal/models"
)

// highPriorityScore marks matches strong enough to warrant the SMS channel.
const highPriorityScore = 80.0

// Fanout turns a match result into at most one notification per company: a
// summary for the freight owner and a best-vehicle notice for each carrier
// company among the candidates.
type Fanout struct {
	contacts ContactSource
	sink     Sink
	logger   logger.Logger
}

// NewFanout creates the notification fan-out.
func NewFanout(contacts ContactSource, sink Sink, log logger.Logger) *Fanout {
	return &Fanout{
		contacts: contacts,
		sink:     sink,
		logger:   log.WithFields(map[string]interface{}{"component": "notification-fanout"}),
	}
}

// Send fans out notifications for one freight's match result and returns the
// number delivered. The dedup set is scoped to this pass: a company with
// several matched vehicles hears about its best one only. An empty result
// sends nothing. A company whose delivery fails is logged and skipped; the
// last failure is returned after the pass completes.
func (f *Fanout) Send(ctx context.Context, freight *models.FreightOffer, result *models.MatchResult) (int, error) {
	if len(result.Candidates) == 0 {
		return 0, nil
	}

	notified := make(map[string]bool)
	sent := 0
	var lastErr error

	// Owner first, so a company that both posted the freight and matched a
	// vehicle gets the summary rather than a carrier notice.
	owner := f.ownerSummary(freight, result)
	notified[freight.CompanyID] = true
	if err := f.deliver(ctx, owner, "owner"); err != nil {
		lastErr = err
	} else {
		sent++
	}

	// Candidates arrive ranked, so the first vehicle seen per company is
	// that company's best match.
	for i := range result.Candidates {
		c := &result.Candidates[i]
		if notified[c.CompanyID] {
			continue
		}
		notified[c.CompanyID] = true

		if err := f.deliver(ctx, f.carrierMatch(freight, c), "carrier"); err != nil {
			lastErr = err
			continue
		}
		sent++
	}

	return sent, lastErr
}

func (f *Fanout) deliver(ctx context.Context, n *models.Notification, recipient string) error {
	contact, err := f.contacts.GetContact(ctx, n.CompanyID)
	if err != nil {
		f.logger.Warn("no contact for company, skipping notification", map[string]interface{}{
			"companyId": n.CompanyID,
			"freightId": n.FreightID,
			"kind":      n.Kind,
		})
		return nil
	}

	if err := f.sink.Deliver(ctx, n, contact); err != nil {
		f.logger.Error("notification delivery failed", map[string]interface{}{
			"notificationId": n.ID,
			"companyId":      n.CompanyID,
			"error":          err.Error(),
		})
		return err
	}

	metrics.NotificationsSent.WithLabelValues(recipient).Inc()
	return nil
}

func (f *Fanout) ownerSummary(freight *models.FreightOffer, result *models.MatchResult) *models.Notification {
	best := result.BestScore()
	return &models.Notification{
		ID:         uuid.New().String(),
		CompanyID:  freight.CompanyID,
		FreightID:  freight.ID,
		Kind:       models.NotificationKindOwnerSummary,
		Subject:    fmt.Sprintf("%d vehicles matched for your freight %s", len(result.Candidates), freight.ID),
		Body:       fmt.Sprintf("We found %d available vehicles for your freight from %s to %s. Best match score: %.0f/100.", len(result.Candidates), freight.Origin.City, freight.Destination.City, best),
		BestScore:  best,
		MatchCount: len(result.Candidates),
		Priority:   priorityFor(best),
		SentAt:     time.Now().UTC().Format(time.RFC3339),
	}
}

func (f *Fanout) carrierMatch(freight *models.FreightOffer, c *models.MatchCandidate) *models.Notification {
	return &models.Notification{
		ID:            uuid.New().String(),
		CompanyID:     c.CompanyID,
		FreightID:     freight.ID,
		Kind:          models.NotificationKindCarrierMatch,
		Subject:       fmt.Sprintf("Freight match for your vehicle %s", c.VehicleID),
		Body:          fmt.Sprintf("Your vehicle %s matches a freight from %s to %s (%.0f kg, %s). Match score: %.0f/100.", c.VehicleID, freight.Origin.City, freight.Destination.City, freight.WeightKg, freight.VehicleType, c.Score),
		BestVehicleID: c.VehicleID,
		BestScore:     c.Score,
		Priority:      priorityFor(c.Score),
		SentAt:        time.Now().UTC().Format(time.RFC3339),
	}
}

func priorityFor(score float64) string {
	if score >= highPriorityScore {
		return "high"
	}
	return "normal"
}
