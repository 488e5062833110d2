// internal/matching/retrieve/sql.go
package retrieve

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/lauraedgell33/European-digital-logistics-sub006/internal/common/config"
	"github.com/lauraedgell33/European-digital-logistics-sub006/internal/common/logger"
	"github.com/lauraedgell33/European-digital-logistics-sub006/internal/geo"
	"github.com/lauraedgell33/European-digital-logistics-sub006/internal/models"
)

const freightCacheKeyPrefix = "freight:offer:"

const freightColumns = `id, company_id,
	origin_lat, origin_lon, origin_country, origin_city,
	dest_lat, dest_lon, dest_country, dest_city,
	weight_kg, volume_m3, loading_meters,
	vehicle_type, required_equipment,
	is_hazardous, adr_class,
	requires_temp_control, temp_min_c, temp_max_c,
	loading_date, price, status, created_at`

const vehicleColumns = `id, company_id,
	lat, lon, country, city,
	pref_dest_lat, pref_dest_lon, pref_dest_country,
	vehicle_type, capacity_kg, capacity_m3, loading_meters, pallet_spaces,
	equipment, has_adr, has_temp_control, temp_min_c, temp_max_c,
	available_from, available_to,
	price_per_km, flat_price, status, is_public`

// SQLRepository reads the offer and contact tables through postgres, with an
// optional redis read-through cache for freight lookups.
type SQLRepository struct {
	db     *sql.DB
	redis  *redis.Client
	cfg    config.MatchingConfig
	logger logger.Logger
}

// NewSQLRepository creates the postgres-backed offer repository. The redis
// client may be nil, which disables caching.
func NewSQLRepository(db *sql.DB, rdb *redis.Client, cfg config.MatchingConfig, log logger.Logger) *SQLRepository {
	return &SQLRepository{
		db:     db,
		redis:  rdb,
		cfg:    cfg,
		logger: log.WithFields(map[string]interface{}{"component": "offer-repository"}),
	}
}

// GetFreight resolves a freight id to an active offer. Cache entries that
// fail to unmarshal are treated as misses.
func (r *SQLRepository) GetFreight(ctx context.Context, id string) (*models.FreightOffer, error) {
	cacheKey := freightCacheKeyPrefix + id
	if r.redis != nil {
		if val, err := r.redis.Get(ctx, cacheKey).Result(); err == nil {
			var freight models.FreightOffer
			if err := json.Unmarshal([]byte(val), &freight); err == nil {
				return &freight, nil
			}
		}
	}

	row := r.db.QueryRowContext(ctx, fmt.Sprintf(
		`SELECT %s FROM freight_offers WHERE id = $1 AND status = $2`, freightColumns),
		id, models.FreightStatusActive)

	freight, err := scanFreight(row)
	if err == sql.ErrNoRows {
		return nil, ErrFreightNotFound
	}
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, ErrRetrievalTimeout
		}
		return nil, fmt.Errorf("get freight %s: %w", id, err)
	}

	if r.redis != nil {
		if data, err := json.Marshal(freight); err == nil {
			ttl := time.Duration(r.cfg.FreightCacheTTLSec) * time.Second
			if err := r.redis.Set(ctx, cacheKey, data, ttl).Err(); err != nil {
				r.logger.Warn("freight cache write failed", map[string]interface{}{
					"freightId": id,
					"error":     err,
				})
			}
		}
	}

	return freight, nil
}

// ListActiveFreightsSince returns active freight offers created at or after
// the given timestamp, oldest first.
func (r *SQLRepository) ListActiveFreightsSince(ctx context.Context, since time.Time) ([]models.FreightOffer, error) {
	rows, err := r.db.QueryContext(ctx, fmt.Sprintf(
		`SELECT %s FROM freight_offers WHERE status = $1 AND created_at >= $2 ORDER BY created_at`, freightColumns),
		models.FreightStatusActive, since)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, ErrRetrievalTimeout
		}
		return nil, fmt.Errorf("list freights since %s: %w", since.Format(time.RFC3339), err)
	}
	defer rows.Close()

	var freights []models.FreightOffer
	for rows.Next() {
		freight, err := scanFreight(rows)
		if err != nil {
			return nil, fmt.Errorf("scan freight row: %w", err)
		}
		freights = append(freights, *freight)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate freight rows: %w", err)
	}

	return freights, nil
}

// ListCandidateVehicles applies the structural prefilters of the candidate
// retriever: status, visibility, vehicle type and availability window in
// SQL; the coarse geographic branch (origin country, preferred destination
// country, or radius) finishes in Go since the radius leg needs haversine.
func (r *SQLRepository) ListCandidateVehicles(ctx context.Context, freight *models.FreightOffer) ([]models.VehicleOffer, error) {
	grace := time.Duration(r.cfg.GraceDays) * 24 * time.Hour
	windowStart := freight.LoadingDate.Add(-grace)
	windowEnd := freight.LoadingDate.Add(grace)

	rows, err := r.db.QueryContext(ctx, fmt.Sprintf(
		`SELECT %s FROM vehicle_offers
		 WHERE status = $1 AND is_public = TRUE
		   AND vehicle_type = $2
		   AND available_from <= $3
		   AND (available_to IS NULL OR available_to >= $4)`, vehicleColumns),
		models.VehicleStatusAvailable, freight.VehicleType, windowEnd, windowStart)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, ErrRetrievalTimeout
		}
		return nil, fmt.Errorf("list candidate vehicles for freight %s: %w", freight.ID, err)
	}
	defer rows.Close()

	var vehicles []models.VehicleOffer
	for rows.Next() {
		vehicle, err := scanVehicle(rows)
		if err != nil {
			return nil, fmt.Errorf("scan vehicle row: %w", err)
		}
		if !r.geoEligible(freight, vehicle) {
			continue
		}
		vehicles = append(vehicles, *vehicle)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate vehicle rows: %w", err)
	}

	return vehicles, nil
}

// geoEligible implements the coarse geographic prefilter that bounds the
// candidate set before the scoring pass.
func (r *SQLRepository) geoEligible(freight *models.FreightOffer, vehicle *models.VehicleOffer) bool {
	if vehicle.Location.Country == freight.Origin.Country {
		return true
	}
	if vehicle.PreferredDestination != nil &&
		vehicle.PreferredDestination.Country == freight.Destination.Country {
		return true
	}
	d := geo.Haversine(vehicle.Location.Lat, vehicle.Location.Lon,
		freight.Origin.Lat, freight.Origin.Lon)
	return d <= r.cfg.RadiusKm
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanFreight(row rowScanner) (*models.FreightOffer, error) {
	var f models.FreightOffer
	var equipment pq.StringArray
	var adrClass sql.NullString
	var price sql.NullFloat64

	err := row.Scan(
		&f.ID, &f.CompanyID,
		&f.Origin.Lat, &f.Origin.Lon, &f.Origin.Country, &f.Origin.City,
		&f.Destination.Lat, &f.Destination.Lon, &f.Destination.Country, &f.Destination.City,
		&f.WeightKg, &f.VolumeM3, &f.LoadingMeters,
		&f.VehicleType, &equipment,
		&f.IsHazardous, &adrClass,
		&f.RequiresTemperatureControl, &f.TempMinC, &f.TempMaxC,
		&f.LoadingDate, &price, &f.Status, &f.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	f.RequiredEquipment = equipment
	f.ADRClass = adrClass.String
	f.Price = price.Float64
	return &f, nil
}

func scanVehicle(row rowScanner) (*models.VehicleOffer, error) {
	var v models.VehicleOffer
	var equipment pq.StringArray
	var prefLat, prefLon sql.NullFloat64
	var prefCountry sql.NullString
	var availableTo sql.NullTime

	err := row.Scan(
		&v.ID, &v.CompanyID,
		&v.Location.Lat, &v.Location.Lon, &v.Location.Country, &v.Location.City,
		&prefLat, &prefLon, &prefCountry,
		&v.VehicleType, &v.CapacityKg, &v.CapacityM3, &v.LoadingMeters, &v.PalletSpaces,
		&equipment, &v.HasADR, &v.HasTemperatureControl, &v.TempMinC, &v.TempMaxC,
		&v.AvailableFrom, &availableTo,
		&v.PricePerKm, &v.FlatPrice, &v.Status, &v.IsPublic,
	)
	if err != nil {
		return nil, err
	}

	v.Equipment = equipment
	if prefCountry.Valid && prefCountry.String != "" {
		v.PreferredDestination = &models.Location{
			Lat:     prefLat.Float64,
			Lon:     prefLon.Float64,
			Country: prefCountry.String,
		}
	}
	if availableTo.Valid {
		t := availableTo.Time
		v.AvailableTo = &t
	}
	return &v, nil
}
