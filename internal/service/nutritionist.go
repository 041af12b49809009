package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/forkline/forkline/backend/internal/agent"
	"github.com/forkline/forkline/backend/internal/model"
)

// activityMultipliers are the standard TDEE factors applied on top of the
// basal metabolic rate.
var activityMultipliers = map[string]float64{
	"sedentary":   1.2,
	"light":       1.375,
	"moderate":    1.55,
	"active":      1.725,
	"very_active": 1.9,
}

// DailyCalorieIntake estimates maintenance calories for one person using
// the Mifflin-St Jeor equation scaled by an activity multiplier.
func DailyCalorieIntake(sex string, age int, weightKg, heightCm float64, activityLevel string) (float64, error) {
	multiplier, ok := activityMultipliers[strings.ToLower(activityLevel)]
	if !ok {
		return 0, fmt.Errorf("unknown activity level %q, expected one of sedentary, light, moderate, active, very_active", activityLevel)
	}

	bmr := 10*weightKg + 6.25*heightCm - 5*float64(age)
	switch strings.ToLower(sex) {
	case "male":
		bmr += 5
	case "female":
		bmr -= 161
	default:
		return 0, fmt.Errorf("unknown sex %q, expected male or female", sex)
	}

	return math.Round(bmr * multiplier), nil
}

// MacronutrientSplit converts a daily calorie budget and a percentage
// split into grams per macronutrient, at 4 kcal per gram of protein and
// carbohydrate and 9 kcal per gram of fat.
func MacronutrientSplit(calories float64, split model.MacroPercentages) (proteinGrams, carbGrams, fatGrams float64) {
	proteinGrams = math.Round(calories * split.ProteinPercent / 100 / 4)
	carbGrams = math.Round(calories * split.CarbPercent / 100 / 4)
	fatGrams = math.Round(calories * split.FatPercent / 100 / 9)
	return proteinGrams, carbGrams, fatGrams
}

// NewNutritionistToolkit assembles the calculators offered to the meal
// plan agent: daily caloric needs per person and macro distribution for
// a calorie budget.
func NewNutritionistToolkit() *agent.Toolkit {
	return agent.NewToolkit(calorieIntakeTool(), macroDistributionTool())
}

func calorieIntakeTool() agent.Tool {
	return agent.Tool{
		Name:        "get_daily_calorie_intake",
		Description: "Calculate the recommended daily calorie intake for one person from their demographics and activity level. Call once per person.",
		Parameters: json.RawMessage(`{"type":"object","properties":{
			"sex":{"type":"string","enum":["male","female"]},
			"age":{"type":"integer","description":"Age in years"},
			"weight_kg":{"type":"number","description":"Body weight in kilograms"},
			"height_cm":{"type":"number","description":"Height in centimeters"},
			"activity_level":{"type":"string","enum":["sedentary","light","moderate","active","very_active"]}
		},"required":["sex","age","weight_kg","height_cm","activity_level"]}`),
		Run: func(ctx context.Context, args json.RawMessage) (string, error) {
			var params struct {
				Sex           string  `json:"sex"`
				Age           int     `json:"age"`
				WeightKg      float64 `json:"weight_kg"`
				HeightCm      float64 `json:"height_cm"`
				ActivityLevel string  `json:"activity_level"`
			}
			if err := json.Unmarshal(args, &params); err != nil {
				return "", fmt.Errorf("invalid arguments: %w", err)
			}

			calories, err := DailyCalorieIntake(params.Sex, params.Age, params.WeightKg, params.HeightCm, params.ActivityLevel)
			if err != nil {
				return "", err
			}

			out, err := json.Marshal(map[string]float64{"maintenance_calories": calories})
			if err != nil {
				return "", err
			}
			return string(out), nil
		},
	}
}

func macroDistributionTool() agent.Tool {
	return agent.Tool{
		Name:        "get_macronutrient_distribution",
		Description: "Convert a daily calorie budget into grams of protein, carbohydrate and fat. Percentages default to a balanced 30/40/30 split and must sum to 100 when given.",
		Parameters: json.RawMessage(`{"type":"object","properties":{
			"daily_calories":{"type":"number","description":"Calorie budget to distribute"},
			"protein_percent":{"type":"number"},
			"carb_percent":{"type":"number"},
			"fat_percent":{"type":"number"}
		},"required":["daily_calories"]}`),
		Run: func(ctx context.Context, args json.RawMessage) (string, error) {
			var params struct {
				DailyCalories  float64 `json:"daily_calories"`
				ProteinPercent float64 `json:"protein_percent"`
				CarbPercent    float64 `json:"carb_percent"`
				FatPercent     float64 `json:"fat_percent"`
			}
			if err := json.Unmarshal(args, &params); err != nil {
				return "", fmt.Errorf("invalid arguments: %w", err)
			}

			split := model.MacroPercentages{
				ProteinPercent: params.ProteinPercent,
				CarbPercent:    params.CarbPercent,
				FatPercent:     params.FatPercent,
			}
			if split.ProteinPercent == 0 && split.CarbPercent == 0 && split.FatPercent == 0 {
				split = model.MacroPercentages{ProteinPercent: 30, CarbPercent: 40, FatPercent: 30}
			}
			if sum := split.ProteinPercent + split.CarbPercent + split.FatPercent; math.Abs(sum-100) > 0.5 {
				return "", fmt.Errorf("macro percentages sum to %.0f, expected 100", sum)
			}

			protein, carbs, fat := MacronutrientSplit(params.DailyCalories, split)
			out, err := json.Marshal(map[string]float64{
				"protein_grams":   protein,
				"carb_grams":      carbs,
				"fat_grams":       fat,
				"protein_percent": split.ProteinPercent,
				"carb_percent":    split.CarbPercent,
				"fat_percent":     split.FatPercent,
			})
			if err != nil {
				return "", err
			}
			return string(out), nil
		},
	}
}
