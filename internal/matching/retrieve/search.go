// internal/matching/retrieve/search.go
package retrieve

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/lauraedgell33/European-digital-logistics-sub006/internal/common/config"
	"github.com/lauraedgell33/European-digital-logistics-sub006/internal/common/logger"
	"github.com/lauraedgell33/European-digital-logistics-sub006/internal/models"
)

// searchPageSize bounds one prefilter query; the scoring cap in the matching
// service is the authoritative limit.
const searchPageSize = 1000

// SearchRetriever is the Elasticsearch-backed VehicleSource. The vehicle
// index carries a geo_point `position` field, which lets the radius branch of
// the coarse prefilter run as a native geo_distance clause instead of a table
// scan.
type SearchRetriever struct {
	client *elasticsearch.Client
	index  string
	cfg    config.MatchingConfig
	logger logger.Logger
}

// NewSearchRetriever creates the Elasticsearch candidate retriever.
func NewSearchRetriever(client *elasticsearch.Client, index string, cfg config.MatchingConfig, log logger.Logger) *SearchRetriever {
	return &SearchRetriever{
		client: client,
		index:  index,
		cfg:    cfg,
		logger: log.WithFields(map[string]interface{}{"component": "search-retriever"}),
	}
}

// ListCandidateVehicles runs the structural prefilter as a bool query:
// status, visibility, vehicle type and availability window as filters, the
// geographic branches as a should-group with minimum_should_match 1.
func (r *SearchRetriever) ListCandidateVehicles(ctx context.Context, freight *models.FreightOffer) ([]models.VehicleOffer, error) {
	queryBody := r.buildQuery(freight)

	body, err := json.Marshal(queryBody)
	if err != nil {
		return nil, fmt.Errorf("marshal candidate query: %w", err)
	}

	size := searchPageSize
	req := esapi.SearchRequest{
		Index: []string{r.index},
		Body:  strings.NewReader(string(body)),
		Size:  &size,
	}

	res, err := req.Do(ctx, r.client)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, ErrRetrievalTimeout
		}
		return nil, fmt.Errorf("candidate search for freight %s: %w", freight.ID, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("candidate search for freight %s returned status %s", freight.ID, res.Status())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				Source models.VehicleOffer `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode candidate search response: %w", err)
	}

	vehicles := make([]models.VehicleOffer, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		vehicles = append(vehicles, hit.Source)
	}

	return vehicles, nil
}

func (r *SearchRetriever) buildQuery(freight *models.FreightOffer) map[string]interface{} {
	grace := time.Duration(r.cfg.GraceDays) * 24 * time.Hour
	windowStart := freight.LoadingDate.Add(-grace).Format(time.RFC3339)
	windowEnd := freight.LoadingDate.Add(grace).Format(time.RFC3339)

	filterClauses := []interface{}{
		map[string]interface{}{
			"term": map[string]interface{}{"status": models.VehicleStatusAvailable},
		},
		map[string]interface{}{
			"term": map[string]interface{}{"isPublic": true},
		},
		map[string]interface{}{
			"term": map[string]interface{}{"vehicleType": freight.VehicleType},
		},
		map[string]interface{}{
			"range": map[string]interface{}{
				"availableFrom": map[string]interface{}{"lte": windowEnd},
			},
		},
		// Open-ended availability means no availableTo field.
		map[string]interface{}{
			"bool": map[string]interface{}{
				"should": []interface{}{
					map[string]interface{}{
						"bool": map[string]interface{}{
							"must_not": map[string]interface{}{
								"exists": map[string]interface{}{"field": "availableTo"},
							},
						},
					},
					map[string]interface{}{
						"range": map[string]interface{}{
							"availableTo": map[string]interface{}{"gte": windowStart},
						},
					},
				},
				"minimum_should_match": 1,
			},
		},
	}

	geoShould := []interface{}{
		map[string]interface{}{
			"term": map[string]interface{}{"location.country": freight.Origin.Country},
		},
		map[string]interface{}{
			"term": map[string]interface{}{"preferredDestination.country": freight.Destination.Country},
		},
		map[string]interface{}{
			"geo_distance": map[string]interface{}{
				"distance": fmt.Sprintf("%.0fkm", r.cfg.RadiusKm),
				"position": map[string]interface{}{
					"lat": freight.Origin.Lat,
					"lon": freight.Origin.Lon,
				},
			},
		},
	}

	return map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"filter":               filterClauses,
				"should":               geoShould,
				"minimum_should_match": 1,
			},
		},
	}
}
