// internal/models/notification.go
package models

// Notification kinds emitted by the fan-out pass.
const (
	NotificationKindOwnerSummary = "owner_summary"
	NotificationKindCarrierMatch = "carrier_match"
)

// Notification is the payload handed to the notification sink. Delivery
// guarantees belong to the notification subsystem, not this engine.
type Notification struct {
	ID        string `json:"id"`
	CompanyID string `json:"companyId"`
	FreightID string `json:"freightId"`
	Kind      string `json:"kind"`
	Subject   string `json:"subject"`
	Body      string `json:"body"`

	// Carrier notifications reference the company's best-scoring vehicle
	// among those matched; owner summaries carry the match count instead.
	BestVehicleID string  `json:"bestVehicleId,omitempty"`
	BestScore     float64 `json:"bestScore,omitempty"`
	MatchCount    int     `json:"matchCount,omitempty"`

	Priority string `json:"priority,omitempty"`
	SentAt   string `json:"sentAt"`
}

// CompanyContact is the contact read model used to address notifications.
type CompanyContact struct {
	CompanyID string `json:"companyId"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
}
