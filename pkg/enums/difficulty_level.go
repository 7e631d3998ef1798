package enums

import "fmt"

// DifficultyLevel grades how demanding a species is to keep.
type DifficultyLevel string

const (
	DifficultyLevelBeginner     DifficultyLevel = "beginner"
	DifficultyLevelIntermediate DifficultyLevel = "intermediate"
	DifficultyLevelAdvanced     DifficultyLevel = "advanced"
)

var validDifficultyLevels = []DifficultyLevel{
	DifficultyLevelBeginner,
	DifficultyLevelIntermediate,
	DifficultyLevelAdvanced,
}

// String implements fmt.Stringer.
func (d DifficultyLevel) String() string {
	return string(d)
}

// IsValid reports whether the value is a known DifficultyLevel.
func (d DifficultyLevel) IsValid() bool {
	for _, candidate := range validDifficultyLevels {
		if candidate == d {
			return true
		}
	}
	return false
}

// ParseDifficultyLevel converts raw input into a DifficultyLevel.
func ParseDifficultyLevel(value string) (DifficultyLevel, error) {
	for _, candidate := range validDifficultyLevels {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid difficulty level %q", value)
}
