package nutrition

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	t.Run("should parse foods envelope with array", func(t *testing.T) {
		raw := []byte(`{"foods":{"food":[
			{"food_id":"33691","food_name":"Apple","brand_name":"","food_description":"Per 100g - Calories: 52kcal | Fat: 0.17g | Carbs: 13.81g | Protein: 0.26g"},
			{"food_id":"35718","food_name":"Apple Juice","brand_name":"Motts"}
		]}}`)

		records := Normalize(raw)
		require.Len(t, records, 2)

		assert.Equal(t, "Apple", records[0].Name)
		assert.Equal(t, "33691", records[0].UPC)
		assert.Equal(t, "fatsecret", records[0].Source)
		assert.InDelta(t, 52, records[0].Nutrients["calories"], 0.001)
		assert.InDelta(t, 0.26, records[0].Nutrients["protein"], 0.001)

		assert.Equal(t, "Motts", records[1].Brand)
		assert.Nil(t, records[1].Nutrients)
	})

	t.Run("should parse foods envelope with single object", func(t *testing.T) {
		raw := []byte(`{"foods":{"food":{"food_id":"1","food_name":"Banana"}}}`)

		records := Normalize(raw)
		require.Len(t, records, 1)
		assert.Equal(t, "Banana", records[0].Name)
	})

	t.Run("should parse products list", func(t *testing.T) {
		raw := []byte(`{"products":[{"product_name":"Apple","code":"123","brands":"Nature Co","nutriments":{"energy-kcal_100g":52,"proteins_100g":"0.3","sugars_100g":"n/a"}}]}`)

		records := Normalize(raw)
		require.Len(t, records, 1)

		assert.Equal(t, "Apple", records[0].Name)
		assert.Equal(t, "123", records[0].UPC)
		assert.Equal(t, "openfoodfacts", records[0].Source)
		assert.InDelta(t, 52, records[0].Nutrients["energy-kcal_100g"], 0.001)
		assert.InDelta(t, 0.3, records[0].Nutrients["proteins_100g"], 0.001)
		assert.NotContains(t, records[0].Nutrients, "sugars_100g")
	})

	t.Run("should skip products without name or code", func(t *testing.T) {
		raw := []byte(`{"products":[{"nutriments":{}},{"product_name":"Kept"}]}`)

		records := Normalize(raw)
		require.Len(t, records, 1)
		assert.Equal(t, "Kept", records[0].Name)
	})

	t.Run("should return empty for unrecognized shape", func(t *testing.T) {
		assert.Empty(t, Normalize([]byte(`{"unexpected":[]}`)))
		assert.Empty(t, Normalize([]byte(`not json at all`)))
		assert.Empty(t, Normalize([]byte(`[]`)))
	})
}

func TestParseNutrientSummary(t *testing.T) {
	t.Run("should handle missing description", func(t *testing.T) {
		assert.Nil(t, parseNutrientSummary(""))
	})

	t.Run("should skip unparsable fragments", func(t *testing.T) {
		nutrients := parseNutrientSummary("Calories: 100kcal | Fat: unknown")
		assert.InDelta(t, 100, nutrients["calories"], 0.001)
		assert.NotContains(t, nutrients, "fat")
	})
}
