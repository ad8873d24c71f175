package profile

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Level is a skill proficiency, 1 (beginner) through 4 (expert).
type Level int

const (
	LevelBeginner     Level = 1
	LevelIntermediate Level = 2
	LevelAdvanced     Level = 3
	LevelExpert       Level = 4
)

func (l Level) Clamp() Level {
	if l < LevelBeginner {
		return LevelBeginner
	}
	if l > LevelExpert {
		return LevelExpert
	}
	return l
}

func (l Level) String() string {
	switch l.Clamp() {
	case LevelBeginner:
		return "beginner"
	case LevelIntermediate:
		return "intermediate"
	case LevelAdvanced:
		return "advanced"
	default:
		return "expert"
	}
}

func ParseLevel(s string) (Level, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "beginner":
		return LevelBeginner, true
	case "intermediate":
		return LevelIntermediate, true
	case "advanced":
		return LevelAdvanced, true
	case "expert":
		return LevelExpert, true
	default:
		return 0, false
	}
}

type Skill struct {
	Name  string
	Level Level
}

// NormalizeSkillName is the key skills are compared by.
func NormalizeSkillName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

// NormalizeLocation is the key locations are compared by.
func NormalizeLocation(loc string) string {
	return strings.ToLower(strings.Join(strings.Fields(loc), " "))
}

type Professional struct {
	ID              uuid.UUID
	DisplayName     string
	Skills          []Skill
	Location        string
	MinCompensation int64
	Available       bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type Business struct {
	ID          uuid.UUID
	Name        string
	Industry    string
	Location    string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
