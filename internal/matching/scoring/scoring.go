// internal/matching/scoring/scoring.go

// Package scoring implements the deterministic fitness model for a
// (freight, vehicle) pair. Scoring has no side effects: the same inputs
// always produce the same candidate, which keeps the interactive and batch
// paths consistent.
package scoring

import (
	"fmt"
	"math"

	"github.com/lauraedgell33/European-digital-logistics-sub006/internal/common/config"
	"github.com/lauraedgell33/European-digital-logistics-sub006/internal/geo"
	"github.com/lauraedgell33/European-digital-logistics-sub006/internal/models"
)

// Engine computes match candidates from configured weights and decay bounds.
type Engine struct {
	weights        config.WeightsConfig
	radiusKm       float64
	maxTimeGapDays int
}

// NewEngine creates a scoring engine from the matching configuration.
func NewEngine(cfg config.MatchingConfig) *Engine {
	return &Engine{
		weights:        cfg.Weights,
		radiusKm:       cfg.RadiusKm,
		maxTimeGapDays: cfg.MaxTimeGapDays,
	}
}

// Score computes the candidate for one (freight, vehicle) pair. A violated
// hard constraint marks the candidate disqualified; graded sub-scores are
// still filled in so near misses stay visible in logs. Malformed offer data
// returns an error so the caller can exclude the candidate without aborting
// the rest of the match.
func (e *Engine) Score(freight *models.FreightOffer, vehicle *models.VehicleOffer) (models.MatchCandidate, error) {
	candidate := models.MatchCandidate{
		VehicleID:     vehicle.ID,
		FreightID:     freight.ID,
		CompanyID:     vehicle.CompanyID,
		AvailableFrom: vehicle.AvailableFrom,
	}

	if err := validateInputs(freight, vehicle); err != nil {
		return candidate, err
	}

	capacity, capReason := e.capacityFit(freight, vehicle)
	equipment, eqReason := e.equipmentFit(freight, vehicle)
	proximity := e.proximityFit(freight, vehicle)
	timeFit := e.timeFit(freight, vehicle)
	destination := e.destinationFit(freight, vehicle)

	candidate.SubScores = models.SubScores{
		Capacity:    capacity,
		Equipment:   equipment,
		Proximity:   proximity,
		TimeFit:     timeFit,
		Destination: destination,
	}

	candidate.Score = round2(
		float64(capacity)*float64(e.weights.Capacity)/100 +
			float64(equipment)*float64(e.weights.Equipment)/100 +
			float64(proximity)*float64(e.weights.Proximity)/100 +
			float64(timeFit)*float64(e.weights.TimeFit)/100 +
			float64(destination)*float64(e.weights.Destination)/100)

	// Disqualification is absolute: physically impossible matches never
	// reach the result, regardless of the aggregate.
	if capReason != "" {
		candidate.Disqualified = true
		candidate.DisqualifyReason = capReason
	} else if eqReason != "" {
		candidate.Disqualified = true
		candidate.DisqualifyReason = eqReason
	}

	return candidate, nil
}

func validateInputs(freight *models.FreightOffer, vehicle *models.VehicleOffer) error {
	if freight.WeightKg <= 0 || math.IsNaN(freight.WeightKg) {
		return fmt.Errorf("freight %s has invalid weight %v", freight.ID, freight.WeightKg)
	}
	if freight.LoadingDate.IsZero() {
		return fmt.Errorf("freight %s has no loading date", freight.ID)
	}
	if !geo.ValidCoordinates(freight.Origin.Lat, freight.Origin.Lon) {
		return fmt.Errorf("freight %s has invalid origin coordinates", freight.ID)
	}
	if vehicle.CapacityKg < 0 || math.IsNaN(vehicle.CapacityKg) {
		return fmt.Errorf("vehicle %s has invalid capacity %v", vehicle.ID, vehicle.CapacityKg)
	}
	if !geo.ValidCoordinates(vehicle.Location.Lat, vehicle.Location.Lon) {
		return fmt.Errorf("vehicle %s has invalid location coordinates", vehicle.ID)
	}
	if vehicle.AvailableFrom.IsZero() {
		return fmt.Errorf("vehicle %s has no availability start", vehicle.ID)
	}
	return nil
}

// capacityFit is a hard constraint expressed as a graded score: 100 when the
// vehicle holds the cargo, 0 (plus a disqualification reason) when it cannot.
// A vehicle capacity of 0 m³ or 0 loading meters means unspecified and is not
// held against the vehicle.
func (e *Engine) capacityFit(freight *models.FreightOffer, vehicle *models.VehicleOffer) (int, string) {
	if vehicle.CapacityKg < freight.WeightKg {
		return 0, models.DisqualifyCapacityWeight
	}
	if freight.VolumeM3 > 0 && vehicle.CapacityM3 > 0 && vehicle.CapacityM3 < freight.VolumeM3 {
		return 0, models.DisqualifyCapacityVolume
	}
	if freight.LoadingMeters > 0 && vehicle.LoadingMeters > 0 && vehicle.LoadingMeters < freight.LoadingMeters {
		return 0, models.DisqualifyLoadingMeters
	}
	return 100, ""
}

// equipmentFit covers required equipment tags, ADR and temperature control.
// Any violated requirement disqualifies the vehicle outright.
func (e *Engine) equipmentFit(freight *models.FreightOffer, vehicle *models.VehicleOffer) (int, string) {
	for _, tag := range freight.RequiredEquipment {
		if !vehicle.HasEquipment(tag) {
			return 0, models.DisqualifyEquipment
		}
	}

	if freight.IsHazardous && !vehicle.HasADR {
		return 0, models.DisqualifyADR
	}

	if freight.RequiresTemperatureControl {
		if !vehicle.HasTemperatureControl {
			return 0, models.DisqualifyTemperature
		}
		// A vehicle with both bounds at zero has not declared its range
		// and is taken at its word.
		declared := vehicle.TempMinC != 0 || vehicle.TempMaxC != 0
		if declared && (freight.TempMinC < vehicle.TempMinC || freight.TempMaxC > vehicle.TempMaxC) {
			return 0, models.DisqualifyTemperature
		}
	}

	return 100, ""
}

// proximityFit decays linearly from 100 at the freight origin to 0 at the
// radius cutoff, clamped beyond.
func (e *Engine) proximityFit(freight *models.FreightOffer, vehicle *models.VehicleOffer) int {
	d := geo.Haversine(vehicle.Location.Lat, vehicle.Location.Lon,
		freight.Origin.Lat, freight.Origin.Lon)
	if d >= e.radiusKm {
		return 0
	}
	return int(math.Round(100 * (1 - d/e.radiusKm)))
}

// timeFit is 100 when the loading date falls inside the vehicle's
// availability window and decays linearly per day of gap, reaching 0 at the
// configured maximum gap. A nil AvailableTo is open-ended.
func (e *Engine) timeFit(freight *models.FreightOffer, vehicle *models.VehicleOffer) int {
	loading := freight.LoadingDate

	var gapDays float64
	switch {
	case loading.Before(vehicle.AvailableFrom):
		gapDays = vehicle.AvailableFrom.Sub(loading).Hours() / 24
	case vehicle.AvailableTo != nil && loading.After(*vehicle.AvailableTo):
		gapDays = loading.Sub(*vehicle.AvailableTo).Hours() / 24
	default:
		return 100
	}

	gap := math.Ceil(gapDays)
	if gap >= float64(e.maxTimeGapDays) {
		return 0
	}
	return int(math.Round(100 * (1 - gap/float64(e.maxTimeGapDays))))
}

// destinationFit rewards an explicit preference for the freight's destination
// country, stays neutral when no preference is stated, and scores 0 on an
// actively conflicting preference.
func (e *Engine) destinationFit(freight *models.FreightOffer, vehicle *models.VehicleOffer) int {
	if vehicle.PreferredDestination == nil || vehicle.PreferredDestination.Country == "" {
		return 50
	}
	if vehicle.PreferredDestination.Country == freight.Destination.Country {
		return 100
	}
	return 0
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
