package seeder

import (
	"context"

	"hire-match/internal/domain/actor"
	"hire-match/internal/domain/position"
	"hire-match/internal/domain/profile"
	"hire-match/internal/usecase"
)

var demoPositions = map[string][]usecase.CreatePositionInput{
	"Northwind Labs": {
		{
			Title:    "Senior Go Engineer",
			Location: "Berlin",
			RequiredSkills: []position.RequiredSkill{
				{Name: "Go", MinLevel: profile.LevelAdvanced},
				{Name: "PostgreSQL", MinLevel: profile.LevelIntermediate},
			},
			Compensation:  position.CompensationRange{Min: 70000, Max: 95000},
			Capacity:      1,
			HardSkillGate: true,
		},
		{
			Title:          "Platform Engineer",
			Location:       "Berlin",
			RequiredSkills: []position.RequiredSkill{{Name: "Kubernetes", MinLevel: profile.LevelAdvanced}},
			Compensation:   position.CompensationRange{Min: 80000},
			Capacity:       2,
		},
	},
	"Harbor Freight Tech": {
		{
			Title:    "Full-stack Developer",
			Location: "Remote",
			RequiredSkills: []position.RequiredSkill{
				{Name: "TypeScript", MinLevel: profile.LevelIntermediate},
				{Name: "Go", MinLevel: profile.LevelBeginner},
			},
			Compensation: position.CompensationRange{Min: 55000, Max: 70000},
			Capacity:     3,
		},
	},
}

// PositionSeeder creates each demo position its business does not already list
// under the same title, so a partial run can be resumed.
type PositionSeeder struct{}

func (PositionSeeder) Name() string { return "positions" }

func (PositionSeeder) Run(ctx context.Context, t Target) error {
	for _, b := range demoBusinesses {
		a := actor.Actor{ID: DemoID("business:" + b.Name), Role: actor.RoleBusiness}
		existing, err := t.Catalog.ListPositionsByBusiness(ctx, a, a.ID)
		if err != nil {
			return err
		}
		titles := make(map[string]struct{}, len(existing))
		for _, p := range existing {
			titles[p.Title] = struct{}{}
		}
		for _, in := range demoPositions[b.Name] {
			if _, ok := titles[in.Title]; ok {
				continue
			}
			if _, err := t.Catalog.CreatePosition(ctx, a, in); err != nil {
				return err
			}
		}
	}
	return nil
}
