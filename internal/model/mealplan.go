package model

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MacroPercentages splits a meal's calories across the three macros.
type MacroPercentages struct {
	ProteinPercent float64 `json:"protein_percent"`
	CarbPercent    float64 `json:"carb_percent"`
	FatPercent     float64 `json:"fat_percent"`
}

// RecipeSkeleton is a placeholder slot in a meal plan: target macros and
// scheduling for a recipe that may not have been generated yet. RecipeID
// stays empty until a concrete recipe is linked.
type RecipeSkeleton struct {
	SkeletonID                string                 `json:"skeleton_id"`
	Title                     string                 `json:"title"`
	RecipeID                  string                 `json:"recipe_id,omitempty"`
	TargetCaloriesPerServing  int                    `json:"target_calories_per_serving"`
	Servings                  int                    `json:"servings"`
	MacroPercentages          MacroPercentages       `json:"macro_percentages"`
	Dates                     map[string][]time.Time `json:"dates,omitempty"`
	MealType                  string                 `json:"meal_type"`
}

// SkeletonList is a custom type for storing recipe skeletons in JSONB
type SkeletonList []RecipeSkeleton

// Value implements the driver.Valuer interface
func (l SkeletonList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return "[]", nil
	}
	return json.Marshal(l)
}

// Scan implements the sql.Scanner interface
func (l *SkeletonList) Scan(value interface{}) error {
	return scanJSONB(value, l)
}

// MealPlan is a set of recipe skeletons scheduled across days and people.
type MealPlan struct {
	ID        uuid.UUID      `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"meal_plan_id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	UserID    uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	Recipes   SkeletonList   `gorm:"type:jsonb;not null;default:'[]'" json:"recipes"`
}
