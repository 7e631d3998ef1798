package enums

import "fmt"

// DietType describes what a species eats.
type DietType string

const (
	DietTypeHerbivore DietType = "herbivore"
	DietTypeCarnivore DietType = "carnivore"
	DietTypeOmnivore  DietType = "omnivore"
)

var validDietTypes = []DietType{
	DietTypeHerbivore,
	DietTypeCarnivore,
	DietTypeOmnivore,
}

// String implements fmt.Stringer.
func (d DietType) String() string {
	return string(d)
}

// IsValid reports whether the value is a known DietType.
func (d DietType) IsValid() bool {
	for _, candidate := range validDietTypes {
		if candidate == d {
			return true
		}
	}
	return false
}

// ParseDietType converts raw input into a DietType.
func ParseDietType(value string) (DietType, error) {
	for _, candidate := range validDietTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid diet type %q", value)
}
