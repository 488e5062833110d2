// internal/matching/scoring/scoring_test.go
package scoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lauraedgell33/European-digital-logistics-sub006/internal/common/config"
	"github.com/lauraedgell33/European-digital-logistics-sub006/internal/models"
)

// ==========================
// Test Helper Functions
// ==========================

func testConfig() config.MatchingConfig {
	return config.MatchingConfig{
		Weights: config.WeightsConfig{
			Capacity:    25,
			Equipment:   20,
			Proximity:   30,
			TimeFit:     15,
			Destination: 10,
		},
		RadiusKm:       300,
		GraceDays:      2,
		MaxTimeGapDays: 5,
	}
}

var loadingDate = time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

func munichFreight() *models.FreightOffer {
	return &models.FreightOffer{
		ID:          "freight-001",
		CompanyID:   "company-shipper",
		Origin:      models.Location{Lat: 48.137, Lon: 11.575, Country: "DE", City: "Munich"},
		Destination: models.Location{Lat: 48.857, Lon: 2.352, Country: "FR", City: "Paris"},
		WeightKg:    18000,
		VehicleType: "tautliner",
		LoadingDate: loadingDate,
		Status:      models.FreightStatusActive,
	}
}

func munichVehicle() *models.VehicleOffer {
	to := loadingDate.Add(5 * 24 * time.Hour)
	return &models.VehicleOffer{
		ID:            "veh-a",
		CompanyID:     "company-a",
		Location:      models.Location{Lat: 48.14, Lon: 11.58, Country: "DE", City: "Munich"},
		VehicleType:   "tautliner",
		CapacityKg:    24000,
		AvailableFrom: loadingDate.Add(-2 * 24 * time.Hour),
		AvailableTo:   &to,
		Status:        models.VehicleStatusAvailable,
		IsPublic:      true,
	}
}

func score(t *testing.T, freight *models.FreightOffer, vehicle *models.VehicleOffer) models.MatchCandidate {
	candidate, err := NewEngine(testConfig()).Score(freight, vehicle)
	require.NoError(t, err)
	return candidate
}

// ==========================
// Aggregate Scoring Tests
// ==========================

func TestScore_StrongLocalMatch(t *testing.T) {
	// A Munich vehicle with ample capacity, available around the loading
	// date: every hard constraint passes and the aggregate lands high.
	candidate := score(t, munichFreight(), munichVehicle())

	assert.False(t, candidate.Disqualified)
	assert.Equal(t, 100, candidate.SubScores.Capacity)
	assert.Equal(t, 100, candidate.SubScores.Equipment)
	assert.Equal(t, 100, candidate.SubScores.TimeFit)
	assert.Equal(t, 50, candidate.SubScores.Destination, "no stated preference is neutral")
	assert.GreaterOrEqual(t, candidate.SubScores.Proximity, 99, "vehicle is essentially at the origin")
	assert.GreaterOrEqual(t, candidate.Score, 80.0)
	assert.LessOrEqual(t, candidate.Score, 100.0)
}

func TestScore_UndersizedVehicleDisqualified(t *testing.T) {
	// A Warsaw vehicle that cannot lift the cargo: disqualified outright,
	// whatever its other sub-scores say.
	vehicle := munichVehicle()
	vehicle.ID = "veh-b"
	vehicle.Location = models.Location{Lat: 52.230, Lon: 21.012, Country: "PL", City: "Warsaw"}
	vehicle.CapacityKg = 10000

	candidate := score(t, munichFreight(), vehicle)
	assert.True(t, candidate.Disqualified)
	assert.Equal(t, models.DisqualifyCapacityWeight, candidate.DisqualifyReason)
	assert.Equal(t, 0, candidate.SubScores.Capacity)
}

func TestScore_Deterministic(t *testing.T) {
	freight, vehicle := munichFreight(), munichVehicle()
	first := score(t, freight, vehicle)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, score(t, freight, vehicle))
	}
}

func TestScore_WeightedAggregate(t *testing.T) {
	// Pin the sub-scores and verify the weighted sum: capacity 100,
	// equipment 100, proximity 0 (beyond radius), timeFit 100,
	// destination 0 (conflicting preference).
	vehicle := munichVehicle()
	vehicle.Location = models.Location{Lat: 55.676, Lon: 12.568, Country: "DE", City: "Copenhagen"}
	vehicle.PreferredDestination = &models.Location{Country: "SE"}

	candidate := score(t, munichFreight(), vehicle)
	require.False(t, candidate.Disqualified)
	assert.Equal(t, 0, candidate.SubScores.Proximity)
	assert.Equal(t, 0, candidate.SubScores.Destination)
	// 100*0.25 + 100*0.20 + 0*0.30 + 100*0.15 + 0*0.10
	assert.Equal(t, 60.0, candidate.Score)
}

// ==========================
// Capacity Tests
// ==========================

func TestScore_VolumeDisqualifies(t *testing.T) {
	freight := munichFreight()
	freight.VolumeM3 = 90
	vehicle := munichVehicle()
	vehicle.CapacityM3 = 80

	candidate := score(t, freight, vehicle)
	assert.True(t, candidate.Disqualified)
	assert.Equal(t, models.DisqualifyCapacityVolume, candidate.DisqualifyReason)
}

func TestScore_UnspecifiedVolumeNotHeldAgainstVehicle(t *testing.T) {
	freight := munichFreight()
	freight.VolumeM3 = 90
	vehicle := munichVehicle()
	vehicle.CapacityM3 = 0 // unspecified

	candidate := score(t, freight, vehicle)
	assert.False(t, candidate.Disqualified)
}

func TestScore_LoadingMetersDisqualify(t *testing.T) {
	freight := munichFreight()
	freight.LoadingMeters = 13.6
	vehicle := munichVehicle()
	vehicle.LoadingMeters = 7.2

	candidate := score(t, freight, vehicle)
	assert.True(t, candidate.Disqualified)
	assert.Equal(t, models.DisqualifyLoadingMeters, candidate.DisqualifyReason)
}

// ==========================
// Equipment Tests
// ==========================

func TestScore_MissingEquipmentDisqualifies(t *testing.T) {
	freight := munichFreight()
	freight.RequiredEquipment = []string{"tail_lift", "straps"}
	vehicle := munichVehicle()
	vehicle.Equipment = []string{"tail_lift"}

	candidate := score(t, freight, vehicle)
	assert.True(t, candidate.Disqualified)
	assert.Equal(t, models.DisqualifyEquipment, candidate.DisqualifyReason)
}

func TestScore_HazardousNeedsADR(t *testing.T) {
	freight := munichFreight()
	freight.IsHazardous = true
	freight.ADRClass = "3"

	vehicle := munichVehicle()
	candidate := score(t, freight, vehicle)
	assert.True(t, candidate.Disqualified)
	assert.Equal(t, models.DisqualifyADR, candidate.DisqualifyReason)

	vehicle.HasADR = true
	candidate = score(t, freight, vehicle)
	assert.False(t, candidate.Disqualified)
}

func TestScore_TemperatureControl(t *testing.T) {
	freight := munichFreight()
	freight.RequiresTemperatureControl = true
	freight.TempMinC = 2
	freight.TempMaxC = 8

	vehicle := munichVehicle()
	candidate := score(t, freight, vehicle)
	assert.True(t, candidate.Disqualified, "no reefer unit at all")

	vehicle.HasTemperatureControl = true
	vehicle.TempMinC = -20
	vehicle.TempMaxC = 5 // cannot hold the upper bound
	candidate = score(t, freight, vehicle)
	assert.True(t, candidate.Disqualified)
	assert.Equal(t, models.DisqualifyTemperature, candidate.DisqualifyReason)

	vehicle.TempMaxC = 10
	candidate = score(t, freight, vehicle)
	assert.False(t, candidate.Disqualified)
}

func TestScore_UndeclaredTempRangeAccepted(t *testing.T) {
	freight := munichFreight()
	freight.RequiresTemperatureControl = true
	freight.TempMinC = 2
	freight.TempMaxC = 8

	vehicle := munichVehicle()
	vehicle.HasTemperatureControl = true
	// Zero bounds mean the range was never declared.

	candidate := score(t, freight, vehicle)
	assert.False(t, candidate.Disqualified)
}

// ==========================
// Time Fit Tests
// ==========================

func TestScore_TimeFitDecay(t *testing.T) {
	freight := munichFreight()
	vehicle := munichVehicle()

	// Loading two days before the vehicle frees up: 100*(1 - 2/5) = 60.
	vehicle.AvailableFrom = loadingDate.Add(2 * 24 * time.Hour)
	vehicle.AvailableTo = nil
	candidate := score(t, freight, vehicle)
	assert.Equal(t, 60, candidate.SubScores.TimeFit)

	// At the maximum gap the sub-score bottoms out.
	vehicle.AvailableFrom = loadingDate.Add(5 * 24 * time.Hour)
	candidate = score(t, freight, vehicle)
	assert.Equal(t, 0, candidate.SubScores.TimeFit)
}

func TestScore_OpenEndedAvailability(t *testing.T) {
	vehicle := munichVehicle()
	vehicle.AvailableFrom = loadingDate.Add(-30 * 24 * time.Hour)
	vehicle.AvailableTo = nil

	candidate := score(t, munichFreight(), vehicle)
	assert.Equal(t, 100, candidate.SubScores.TimeFit)
}

// ==========================
// Destination Tests
// ==========================

func TestScore_DestinationPreference(t *testing.T) {
	freight := munichFreight() // destination FR
	vehicle := munichVehicle()

	vehicle.PreferredDestination = &models.Location{Country: "FR"}
	assert.Equal(t, 100, score(t, freight, vehicle).SubScores.Destination)

	vehicle.PreferredDestination = &models.Location{Country: "PL"}
	assert.Equal(t, 0, score(t, freight, vehicle).SubScores.Destination)

	vehicle.PreferredDestination = nil
	assert.Equal(t, 50, score(t, freight, vehicle).SubScores.Destination)
}

// ==========================
// Input Validation Tests
// ==========================

func TestScore_MalformedInputs(t *testing.T) {
	engine := NewEngine(testConfig())

	freight := munichFreight()
	freight.WeightKg = 0
	_, err := engine.Score(freight, munichVehicle())
	assert.Error(t, err)

	freight = munichFreight()
	freight.Origin.Lat = 123
	_, err = engine.Score(freight, munichVehicle())
	assert.Error(t, err)

	vehicle := munichVehicle()
	vehicle.AvailableFrom = time.Time{}
	_, err = engine.Score(munichFreight(), vehicle)
	assert.Error(t, err)

	vehicle = munichVehicle()
	vehicle.CapacityKg = -1
	_, err = engine.Score(munichFreight(), vehicle)
	assert.Error(t, err)
}
