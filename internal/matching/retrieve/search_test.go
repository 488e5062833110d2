// internal/matching/retrieve/search_test.go
package retrieve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lauraedgell33/European-digital-logistics-sub006/internal/models"
)

func TestBuildQuery(t *testing.T) {
	r := &SearchRetriever{cfg: testMatchingConfig()}
	query := r.buildQuery(munichFreight())

	boolQuery, ok := query["query"].(map[string]interface{})["bool"].(map[string]interface{})
	require.True(t, ok)

	filters, ok := boolQuery["filter"].([]interface{})
	require.True(t, ok)
	require.Len(t, filters, 5)

	// Structural prefilters go in filter context.
	statusTerm := filters[0].(map[string]interface{})["term"].(map[string]interface{})
	assert.Equal(t, models.VehicleStatusAvailable, statusTerm["status"])

	typeTerm := filters[2].(map[string]interface{})["term"].(map[string]interface{})
	assert.Equal(t, "tautliner", typeTerm["vehicleType"])

	// The geographic branch is a should-group needing at least one leg.
	assert.Equal(t, 1, boolQuery["minimum_should_match"])
	should, ok := boolQuery["should"].([]interface{})
	require.True(t, ok)
	require.Len(t, should, 3)

	originTerm := should[0].(map[string]interface{})["term"].(map[string]interface{})
	assert.Equal(t, "DE", originTerm["location.country"])

	destTerm := should[1].(map[string]interface{})["term"].(map[string]interface{})
	assert.Equal(t, "FR", destTerm["preferredDestination.country"])

	geoDistance := should[2].(map[string]interface{})["geo_distance"].(map[string]interface{})
	assert.Equal(t, "300km", geoDistance["distance"])
	position := geoDistance["position"].(map[string]interface{})
	assert.Equal(t, 48.137, position["lat"])
}

func TestBuildQuery_AvailabilityWindow(t *testing.T) {
	r := &SearchRetriever{cfg: testMatchingConfig()}
	query := r.buildQuery(munichFreight())

	boolQuery := query["query"].(map[string]interface{})["bool"].(map[string]interface{})
	filters := boolQuery["filter"].([]interface{})

	// availableFrom must not be later than the window end (loading + grace).
	fromRange := filters[3].(map[string]interface{})["range"].(map[string]interface{})["availableFrom"].(map[string]interface{})
	assert.Equal(t, "2026-03-12T00:00:00Z", fromRange["lte"])

	// availableTo is either absent (open-ended) or at or after the window
	// start.
	toGroup := filters[4].(map[string]interface{})["bool"].(map[string]interface{})
	assert.Equal(t, 1, toGroup["minimum_should_match"])
	toShould := toGroup["should"].([]interface{})
	require.Len(t, toShould, 2)
	toRange := toShould[1].(map[string]interface{})["range"].(map[string]interface{})["availableTo"].(map[string]interface{})
	assert.Equal(t, "2026-03-08T00:00:00Z", toRange["gte"])
}
