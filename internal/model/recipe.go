package model

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	pgvector "github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

// Ingredient is a single recipe ingredient. An empty Unit means the
// quantity is a plain count.
type Ingredient struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit,omitempty"`
	Notes    string  `json:"notes,omitempty"`
}

// InstructionSection groups ordered cooking steps under a heading.
type InstructionSection struct {
	SectionName string   `json:"section_name"`
	Steps       []string `json:"steps"`
}

// IngredientList is a custom type for storing ingredients in JSONB
type IngredientList []Ingredient

// Value implements the driver.Valuer interface
func (l IngredientList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return "[]", nil
	}
	return json.Marshal(l)
}

// Scan implements the sql.Scanner interface
func (l *IngredientList) Scan(value interface{}) error {
	return scanJSONB(value, l)
}

// InstructionList is a custom type for storing instruction sections in JSONB
type InstructionList []InstructionSection

// Value implements the driver.Valuer interface
func (l InstructionList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return "[]", nil
	}
	return json.Marshal(l)
}

// Scan implements the sql.Scanner interface
func (l *InstructionList) Scan(value interface{}) error {
	return scanJSONB(value, l)
}

// JSONBStringArray is a custom type for handling string arrays in JSONB
type JSONBStringArray []string

// Value implements the driver.Valuer interface
func (a JSONBStringArray) Value() (driver.Value, error) {
	if len(a) == 0 {
		return "[]", nil
	}
	return json.Marshal(a)
}

// Scan implements the sql.Scanner interface
func (a *JSONBStringArray) Scan(value interface{}) error {
	return scanJSONB(value, a)
}

func scanJSONB(value interface{}, dest interface{}) error {
	if value == nil {
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return nil
	}

	return json.Unmarshal(bytes, dest)
}

// Recipe is the generated recipe, both the agent's target schema and the
// catalog row. Nutrition figures are whole-recipe totals, recorded in
// NutritionBasis so consumers never have to guess.
type Recipe struct {
	ID              uuid.UUID        `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"recipe_id"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
	DeletedAt       gorm.DeletedAt   `gorm:"index" json:"-"`
	Title           string           `gorm:"size:255;not null" json:"title"`
	Description     string           `gorm:"type:text" json:"description"`
	Ingredients     IngredientList   `gorm:"type:jsonb;not null;default:'[]'" json:"ingredients"`
	Instructions    InstructionList  `gorm:"type:jsonb;not null;default:'[]'" json:"instructions"`
	PrepTimeMinutes int              `json:"prep_time_minutes"`
	CookTimeMinutes int              `json:"cook_time_minutes"`
	Nutrition       NutritionProfile `gorm:"type:jsonb" json:"nutrition"`
	NutritionBasis  string           `gorm:"size:20" json:"nutrition_basis,omitempty"`
	Servings        int              `json:"servings"`
	ServingSize     string           `gorm:"size:255" json:"serving_size,omitempty"`
	Citations       JSONBStringArray `gorm:"type:jsonb;default:'[]'" json:"citations,omitempty"`
	ImageURL        string           `gorm:"size:255" json:"image_url,omitempty"`
	Embedding       pgvector.Vector  `gorm:"type:vector(3)" json:"-"`
	UserID          uuid.UUID        `gorm:"type:uuid;index" json:"user_id"`
}

// IsComplete reports whether the recipe has the minimum content to be
// served: at least one ingredient and one instruction step. A missing
// image never makes a recipe incomplete.
func (r *Recipe) IsComplete() bool {
	if len(r.Ingredients) == 0 {
		return false
	}
	for _, section := range r.Instructions {
		if len(section.Steps) > 0 {
			return true
		}
	}
	return false
}
