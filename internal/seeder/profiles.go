package seeder

import (
	"context"

	"hire-match/internal/domain/actor"
	"hire-match/internal/domain/profile"
	"hire-match/internal/usecase"
)

var demoBusinesses = []usecase.BusinessInput{
	{Name: "Northwind Labs", Industry: "Software", Location: "Berlin", Description: "Developer tooling"},
	{Name: "Harbor Freight Tech", Industry: "Logistics", Location: "Remote", Description: "Fleet routing"},
}

var demoProfessionals = []usecase.ProfessionalInput{
	{
		DisplayName:     "Ari Novak",
		Skills:          []profile.Skill{{Name: "Go", Level: profile.LevelExpert}, {Name: "PostgreSQL", Level: profile.LevelAdvanced}},
		Location:        "Berlin",
		MinCompensation: 75000,
		Available:       true,
	},
	{
		DisplayName:     "Sam Okafor",
		Skills:          []profile.Skill{{Name: "TypeScript", Level: profile.LevelAdvanced}, {Name: "Go", Level: profile.LevelIntermediate}},
		Location:        "Remote",
		MinCompensation: 60000,
		Available:       true,
	},
	{
		DisplayName:     "Jules Moreau",
		Skills:          []profile.Skill{{Name: "Kubernetes", Level: profile.LevelExpert}, {Name: "Redis", Level: profile.LevelAdvanced}},
		Location:        "Paris",
		MinCompensation: 90000,
		Available:       true,
	},
}

type BusinessSeeder struct{}

func (BusinessSeeder) Name() string { return "businesses" }

func (BusinessSeeder) Run(ctx context.Context, t Target) error {
	for _, b := range demoBusinesses {
		a := actor.Actor{ID: DemoID("business:" + b.Name), Role: actor.RoleBusiness}
		if _, err := t.Profiles.UpsertBusiness(ctx, a, b); err != nil {
			return err
		}
	}
	return nil
}

type ProfessionalSeeder struct{}

func (ProfessionalSeeder) Name() string { return "professionals" }

func (ProfessionalSeeder) Run(ctx context.Context, t Target) error {
	for _, p := range demoProfessionals {
		a := actor.Actor{ID: DemoID("professional:" + p.DisplayName), Role: actor.RoleProfessional}
		if _, err := t.Profiles.UpsertProfessional(ctx, a, p); err != nil {
			return err
		}
	}
	return nil
}
