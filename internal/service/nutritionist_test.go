package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forkline/forkline/backend/internal/model"
)

func TestDailyCalorieIntake(t *testing.T) {
	t.Run("female moderate activity", func(t *testing.T) {
		calories, err := DailyCalorieIntake("female", 30, 65, 165, "moderate")
		require.NoError(t, err)
		assert.Equal(t, float64(2124), calories)
	})

	t.Run("male light activity", func(t *testing.T) {
		calories, err := DailyCalorieIntake("male", 40, 80, 180, "light")
		require.NoError(t, err)
		assert.Equal(t, float64(2379), calories)
	})

	t.Run("unknown sex", func(t *testing.T) {
		_, err := DailyCalorieIntake("other", 30, 65, 165, "moderate")
		assert.Error(t, err)
	})

	t.Run("unknown activity level", func(t *testing.T) {
		_, err := DailyCalorieIntake("female", 30, 65, 165, "extreme")
		assert.Error(t, err)
	})
}

func TestMacronutrientSplit(t *testing.T) {
	protein, carbs, fat := MacronutrientSplit(2000, model.MacroPercentages{
		ProteinPercent: 30, CarbPercent: 40, FatPercent: 30,
	})
	assert.Equal(t, float64(150), protein)
	assert.Equal(t, float64(200), carbs)
	assert.Equal(t, float64(67), fat)
}

func TestNutritionistToolkit(t *testing.T) {
	toolkit := NewNutritionistToolkit()

	t.Run("calorie intake", func(t *testing.T) {
		tool, ok := toolkit.Lookup("get_daily_calorie_intake")
		require.True(t, ok)

		out, err := tool.Run(context.Background(), json.RawMessage(
			`{"sex":"female","age":30,"weight_kg":65,"height_cm":165,"activity_level":"moderate"}`))
		require.NoError(t, err)

		var result map[string]float64
		require.NoError(t, json.Unmarshal([]byte(out), &result))
		assert.Equal(t, float64(2124), result["maintenance_calories"])
	})

	t.Run("macro distribution defaults to balanced split", func(t *testing.T) {
		tool, ok := toolkit.Lookup("get_macronutrient_distribution")
		require.True(t, ok)

		out, err := tool.Run(context.Background(), json.RawMessage(`{"daily_calories":2000}`))
		require.NoError(t, err)

		var result map[string]float64
		require.NoError(t, json.Unmarshal([]byte(out), &result))
		assert.Equal(t, float64(150), result["protein_grams"])
		assert.Equal(t, float64(200), result["carb_grams"])
		assert.Equal(t, float64(67), result["fat_grams"])
		assert.Equal(t, float64(30), result["protein_percent"])
	})

	t.Run("macro distribution rejects bad percentages", func(t *testing.T) {
		tool, ok := toolkit.Lookup("get_macronutrient_distribution")
		require.True(t, ok)

		_, err := tool.Run(context.Background(), json.RawMessage(
			`{"daily_calories":2000,"protein_percent":30,"carb_percent":30,"fat_percent":30}`))
		assert.Error(t, err)
	})
}
