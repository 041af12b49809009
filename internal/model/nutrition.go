package model

import (
	"database/sql/driver"
	"encoding/json"
)

// NutritionBasisTotal marks nutrition figures that cover the whole recipe,
// all servings combined. It is the only basis the service emits.
const NutritionBasisTotal = "total"

// NutritionProfile holds energy and macro/micronutrient quantities.
// Every field is optional; nil means the value is unknown or was not
// requested, and absent fields are never rendered into prompts.
type NutritionProfile struct {
	Calories     *int     `json:"calories,omitempty"`
	ProteinGrams *float64 `json:"protein_grams,omitempty"`
	CarbsGrams   *float64 `json:"carbs_grams,omitempty"`
	FatGrams     *float64 `json:"fat_grams,omitempty"`
	FiberGrams   *float64 `json:"fiber_grams,omitempty"`
	SugarGrams   *float64 `json:"sugar_grams,omitempty"`
	SodiumMg     *float64 `json:"sodium_mg,omitempty"`
}

// IsEmpty reports whether no field is set.
func (p NutritionProfile) IsEmpty() bool {
	return p.Calories == nil &&
		p.ProteinGrams == nil &&
		p.CarbsGrams == nil &&
		p.FatGrams == nil &&
		p.FiberGrams == nil &&
		p.SugarGrams == nil &&
		p.SodiumMg == nil
}

// Value implements the driver.Valuer interface
func (p NutritionProfile) Value() (driver.Value, error) {
	return json.Marshal(p)
}

// Scan implements the sql.Scanner interface
func (p *NutritionProfile) Scan(value interface{}) error {
	return scanJSONB(value, p)
}
