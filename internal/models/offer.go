// internal/models/offer.go
package models

import "time"

// Freight and vehicle offer statuses as stored in the read model.
const (
	FreightStatusActive    = "active"
	VehicleStatusAvailable = "available"
)

// Location is a point with its administrative context.
type Location struct {
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Country string  `json:"country"`
	City    string  `json:"city,omitempty"`
}

// FreightOffer is a shipper's request for cargo transport. Read-only input to
// the engine; immutable for the duration of a match computation.
type FreightOffer struct {
	ID          string   `json:"id"`
	CompanyID   string   `json:"companyId"`
	Origin      Location `json:"origin"`
	Destination Location `json:"destination"`

	WeightKg      float64 `json:"weightKg"`
	VolumeM3      float64 `json:"volumeM3,omitempty"`      // 0 = unspecified
	LoadingMeters float64 `json:"loadingMeters,omitempty"` // 0 = unspecified

	VehicleType       string   `json:"vehicleType"`
	RequiredEquipment []string `json:"requiredEquipment,omitempty"`

	IsHazardous bool   `json:"isHazardous"`
	ADRClass    string `json:"adrClass,omitempty"`

	RequiresTemperatureControl bool    `json:"requiresTemperatureControl"`
	TempMinC                   float64 `json:"tempMinC,omitempty"`
	TempMaxC                   float64 `json:"tempMaxC,omitempty"`

	LoadingDate time.Time `json:"loadingDate"`
	Price       float64   `json:"price,omitempty"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
}

// VehicleOffer is a carrier's declaration of available capacity, location and
// time window. Read-only input to the engine.
type VehicleOffer struct {
	ID        string   `json:"id"`
	CompanyID string   `json:"companyId"`
	Location  Location `json:"location"`

	// PreferredDestination is nil when the carrier has not stated one.
	PreferredDestination *Location `json:"preferredDestination,omitempty"`

	VehicleType   string  `json:"vehicleType"`
	CapacityKg    float64 `json:"capacityKg"`
	CapacityM3    float64 `json:"capacityM3,omitempty"` // 0 = unspecified
	LoadingMeters float64 `json:"loadingMeters,omitempty"`
	PalletSpaces  int     `json:"palletSpaces,omitempty"`

	Equipment             []string `json:"equipment,omitempty"`
	HasADR                bool     `json:"hasAdr"`
	HasTemperatureControl bool     `json:"hasTemperatureControl"`
	TempMinC              float64  `json:"tempMinC,omitempty"`
	TempMaxC              float64  `json:"tempMaxC,omitempty"`

	AvailableFrom time.Time `json:"availableFrom"`
	// AvailableTo is nil for open-ended availability.
	AvailableTo *time.Time `json:"availableTo,omitempty"`

	PricePerKm float64 `json:"pricePerKm,omitempty"`
	FlatPrice  float64 `json:"flatPrice,omitempty"`

	Status   string `json:"status"`
	IsPublic bool   `json:"isPublic"`
}

// HasEquipment reports whether the vehicle carries the given equipment tag.
func (v *VehicleOffer) HasEquipment(tag string) bool {
	for _, e := range v.Equipment {
		if e == tag {
			return true
		}
	}
	return false
}
