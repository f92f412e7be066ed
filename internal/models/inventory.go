package models

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// IngredientRecord represents one ingredient currently stored in the fridge
type IngredientRecord struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Quantity  Quantity  `json:"quantity"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Quantity is an amount paired with its unit of measurement
type Quantity struct {
	Value float64       `json:"value"`
	Unit  InventoryUnit `json:"unit"`
}

// InventoryUnit represents the unit of measurement for a fridge item
type InventoryUnit string

const (
	// Weight units
	UnitGrams     InventoryUnit = "grams"
	UnitKilograms InventoryUnit = "kg"

	// Volume units
	UnitMilliliters InventoryUnit = "ml"
	UnitLiters      InventoryUnit = "liters"
	UnitCups        InventoryUnit = "cups"
	UnitTablespoons InventoryUnit = "tbsp"
	UnitTeaspoons   InventoryUnit = "tsp"

	// Count units
	UnitPieces InventoryUnit = "pieces"
)

// Units lists the canonical units in the order clients present them
var Units = []InventoryUnit{
	UnitGrams,
	UnitKilograms,
	UnitPieces,
	UnitMilliliters,
	UnitLiters,
	UnitCups,
	UnitTablespoons,
	UnitTeaspoons,
}

var unitAliases = map[string]InventoryUnit{
	"g":           UnitGrams,
	"gram":        UnitGrams,
	"grams":       UnitGrams,
	"kg":          UnitKilograms,
	"kilogram":    UnitKilograms,
	"kilograms":   UnitKilograms,
	"piece":       UnitPieces,
	"pieces":      UnitPieces,
	"pcs":         UnitPieces,
	"unit":        UnitPieces,
	"units":       UnitPieces,
	"ml":          UnitMilliliters,
	"milliliter":  UnitMilliliters,
	"milliliters": UnitMilliliters,
	"l":           UnitLiters,
	"liter":       UnitLiters,
	"liters":      UnitLiters,
	"litre":       UnitLiters,
	"litres":      UnitLiters,
	"cup":         UnitCups,
	"cups":        UnitCups,
	"tbsp":        UnitTablespoons,
	"tablespoon":  UnitTablespoons,
	"tablespoons": UnitTablespoons,
	"tsp":         UnitTeaspoons,
	"teaspoon":    UnitTeaspoons,
	"teaspoons":   UnitTeaspoons,
}

// ParseUnit maps a unit as typed by a user to its canonical form
func ParseUnit(raw string) (InventoryUnit, error) {
	unit, ok := unitAliases[strings.ToLower(strings.TrimSpace(raw))]
	if !ok {
		return "", fmt.Errorf("%w: unrecognized unit %q", ErrValidation, raw)
	}
	return unit, nil
}

// NewQuantity validates an amount and unit. A nil amount means the caller omitted it.
func NewQuantity(amount *float64, unit string) (Quantity, error) {
	if amount == nil {
		return Quantity{}, fmt.Errorf("%w: quantity value is required", ErrValidation)
	}
	if math.IsNaN(*amount) || math.IsInf(*amount, 0) {
		return Quantity{}, fmt.Errorf("%w: quantity value must be a finite number", ErrValidation)
	}
	if *amount < 0 {
		return Quantity{}, fmt.Errorf("%w: quantity value must not be negative", ErrValidation)
	}
	u, err := ParseUnit(unit)
	if err != nil {
		return Quantity{}, err
	}
	return Quantity{Value: *amount, Unit: u}, nil
}

// NormalizeName trims and case-folds an ingredient name into its uniqueness key
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func (q Quantity) String() string {
	return fmt.Sprintf("%g %s", q.Value, q.Unit)
}
