// internal/notify/fanout_test.go
package notify

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/lauraedgell33/European-digital-logistics-sub006/internal/common/logger"
	"github.com/lauraedgell33/European-digital-logistics-sub006/internal/models"
)

// ==========================
// Test Helper Functions
// ==========================

type stubContacts struct {
	known map[string]*models.CompanyContact
}

func (s *stubContacts) GetContact(_ context.Context, companyID string) (*models.CompanyContact, error) {
	c, ok := s.known[companyID]
	if !ok {
		return nil, ErrContactNotFound
	}
	return c, nil
}

type recordingSink struct {
	delivered []*models.Notification
	failFor   map[string]bool
}

func (s *recordingSink) Deliver(_ context.Context, n *models.Notification, _ *models.CompanyContact) error {
	if s.failFor[n.CompanyID] {
		return fmt.Errorf("delivery refused for %s", n.CompanyID)
	}
	s.delivered = append(s.delivered, n)
	return nil
}

func testLogger(t *testing.T) logger.Logger {
	return logger.NewZapAdapter(zaptest.NewLogger(t))
}

func contactsFor(companyIDs ...string) *stubContacts {
	known := make(map[string]*models.CompanyContact)
	for _, id := range companyIDs {
		known[id] = &models.CompanyContact{
			CompanyID: id,
			Email:     id + "@example.com",
		}
	}
	return &stubContacts{known: known}
}

func fanoutFreight() *models.FreightOffer {
	return &models.FreightOffer{
		ID:          "freight-001",
		CompanyID:   "company-owner",
		Origin:      models.Location{Country: "DE", City: "Munich"},
		Destination: models.Location{Country: "FR", City: "Paris"},
		WeightKg:    18000,
		VehicleType: "tautliner",
	}
}

func candidate(vehicleID, companyID string, score float64) models.MatchCandidate {
	return models.MatchCandidate{
		VehicleID: vehicleID,
		FreightID: "freight-001",
		CompanyID: companyID,
		Score:     score,
	}
}

func resultWith(candidates ...models.MatchCandidate) *models.MatchResult {
	return &models.MatchResult{
		FreightID:  "freight-001",
		Candidates: candidates,
		ComputedAt: time.Now().UTC(),
	}
}

func byKind(notifications []*models.Notification, kind string) []*models.Notification {
	var out []*models.Notification
	for _, n := range notifications {
		if n.Kind == kind {
			out = append(out, n)
		}
	}
	return out
}

// ==========================
// Fan-out Tests
// ==========================

func TestSend_OwnerAndCarriers(t *testing.T) {
	sink := &recordingSink{}
	fanout := NewFanout(contactsFor("company-owner", "company-a", "company-b"), sink, testLogger(t))

	result := resultWith(
		candidate("veh-1", "company-a", 91.5),
		candidate("veh-2", "company-b", 73.0),
	)

	sent, err := fanout.Send(context.Background(), fanoutFreight(), result)
	require.NoError(t, err)
	assert.Equal(t, 3, sent)

	owners := byKind(sink.delivered, models.NotificationKindOwnerSummary)
	require.Len(t, owners, 1)
	assert.Equal(t, "company-owner", owners[0].CompanyID)
	assert.Equal(t, 2, owners[0].MatchCount)
	assert.Equal(t, 91.5, owners[0].BestScore)
	assert.Equal(t, "high", owners[0].Priority)

	carriers := byKind(sink.delivered, models.NotificationKindCarrierMatch)
	require.Len(t, carriers, 2)
}

func TestSend_OneNotificationPerCompany(t *testing.T) {
	sink := &recordingSink{}
	fanout := NewFanout(contactsFor("company-owner", "company-a"), sink, testLogger(t))

	// Two vehicles of the same company: only the best (first ranked) is
	// referenced, in a single notification.
	result := resultWith(
		candidate("veh-1", "company-a", 88.0),
		candidate("veh-2", "company-a", 61.0),
	)

	sent, err := fanout.Send(context.Background(), fanoutFreight(), result)
	require.NoError(t, err)
	assert.Equal(t, 2, sent)

	carriers := byKind(sink.delivered, models.NotificationKindCarrierMatch)
	require.Len(t, carriers, 1)
	assert.Equal(t, "veh-1", carriers[0].BestVehicleID)
	assert.Equal(t, 88.0, carriers[0].BestScore)
}

func TestSend_OwnerCompanyAlsoCarrier(t *testing.T) {
	sink := &recordingSink{}
	fanout := NewFanout(contactsFor("company-owner", "company-a"), sink, testLogger(t))

	// The owner's own vehicle matched; the owner still gets exactly one
	// notification, the summary.
	result := resultWith(
		candidate("veh-own", "company-owner", 95.0),
		candidate("veh-1", "company-a", 70.0),
	)

	sent, err := fanout.Send(context.Background(), fanoutFreight(), result)
	require.NoError(t, err)
	assert.Equal(t, 2, sent)

	var ownerNotices []*models.Notification
	for _, n := range sink.delivered {
		if n.CompanyID == "company-owner" {
			ownerNotices = append(ownerNotices, n)
		}
	}
	require.Len(t, ownerNotices, 1)
	assert.Equal(t, models.NotificationKindOwnerSummary, ownerNotices[0].Kind)
}

func TestSend_EmptyResultSendsNothing(t *testing.T) {
	sink := &recordingSink{}
	fanout := NewFanout(contactsFor("company-owner"), sink, testLogger(t))

	sent, err := fanout.Send(context.Background(), fanoutFreight(), resultWith())
	require.NoError(t, err)
	assert.Zero(t, sent)
	assert.Empty(t, sink.delivered)
}

func TestSend_MissingContactSkipsCompany(t *testing.T) {
	sink := &recordingSink{}
	// company-b has no contact on file.
	fanout := NewFanout(contactsFor("company-owner", "company-a"), sink, testLogger(t))

	result := resultWith(
		candidate("veh-1", "company-a", 80.0),
		candidate("veh-2", "company-b", 75.0),
	)

	sent, err := fanout.Send(context.Background(), fanoutFreight(), result)
	require.NoError(t, err, "missing contact is a skip, not a failure")
	assert.Equal(t, 2, sent)
}

func TestSend_DeliveryFailureDoesNotAbortPass(t *testing.T) {
	sink := &recordingSink{failFor: map[string]bool{"company-a": true}}
	fanout := NewFanout(contactsFor("company-owner", "company-a", "company-b"), sink, testLogger(t))

	result := resultWith(
		candidate("veh-1", "company-a", 85.0),
		candidate("veh-2", "company-b", 70.0),
	)

	sent, err := fanout.Send(context.Background(), fanoutFreight(), result)
	require.Error(t, err)
	assert.Equal(t, 2, sent, "owner and company-b still notified")

	carriers := byKind(sink.delivered, models.NotificationKindCarrierMatch)
	require.Len(t, carriers, 1)
	assert.Equal(t, "company-b", carriers[0].CompanyID)
}

func TestSend_NotificationIDsUnique(t *testing.T) {
	sink := &recordingSink{}
	fanout := NewFanout(contactsFor("company-owner", "company-a", "company-b"), sink, testLogger(t))

	result := resultWith(
		candidate("veh-1", "company-a", 80.0),
		candidate("veh-2", "company-b", 70.0),
	)

	_, err := fanout.Send(context.Background(), fanoutFreight(), result)
	require.NoError(t, err)

	seen := make(map[string]bool)
	for _, n := range sink.delivered {
		assert.NotEmpty(t, n.ID)
		assert.False(t, seen[n.ID], "duplicate notification id %s", n.ID)
		seen[n.ID] = true
		assert.NotEmpty(t, n.SentAt)
	}
}
