package catalog

import (
	"fmt"
	"time"
)

// Difficulty is a question difficulty tier. Tiers are ordered and
// advancement between them only goes forward.
type Difficulty string

const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"
)

// AllDifficulties returns the tiers in ascending order.
func AllDifficulties() []Difficulty {
	return []Difficulty{Easy, Medium, Hard}
}

// ParseDifficulty converts a user-supplied string to a Difficulty.
func ParseDifficulty(s string) (Difficulty, error) {
	d := Difficulty(s)
	if !d.Valid() {
		return "", fmt.Errorf("unknown difficulty %q (want easy, medium or hard)", s)
	}
	return d, nil
}

// Valid reports whether d is one of the known tiers.
func (d Difficulty) Valid() bool {
	switch d {
	case Easy, Medium, Hard:
		return true
	}
	return false
}

// Next returns the tier after d. The second return is false on the last tier.
func (d Difficulty) Next() (Difficulty, bool) {
	switch d {
	case Easy:
		return Medium, true
	case Medium:
		return Hard, true
	}
	return d, false
}

// IsHardest reports whether no tier follows d.
func (d Difficulty) IsHardest() bool {
	_, ok := d.Next()
	return !ok
}

// TimeLimit returns the per-question time budget for the tier.
func (d Difficulty) TimeLimit() time.Duration {
	switch d {
	case Medium:
		return 2 * time.Minute
	case Hard:
		return 3 * time.Minute
	default:
		return time.Minute
	}
}

// Label returns the display name for the tier.
func (d Difficulty) Label() string {
	switch d {
	case Easy:
		return "Easy"
	case Medium:
		return "Medium"
	case Hard:
		return "Hard"
	}
	return string(d)
}

// Module is a cybersecurity topic area in the curriculum.
type Module struct {
	ID            string
	Name          string
	Description   string
	Icon          string
	Dependencies  []string // module IDs that must be completed first
	PassThreshold int      // minimum score (0-100) to count as completed
}

// IsSeed reports whether the module has no dependencies and is therefore
// always available.
func (m Module) IsSeed() bool {
	return len(m.Dependencies) == 0
}
