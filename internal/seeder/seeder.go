// Package seeder loads demo businesses, professionals and positions through
// the same usecases the API uses, so seeded data obeys every engine rule.
package seeder

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"hire-match/internal/usecase"
)

// namespace derives stable demo identities so reruns update instead of duplicate.
var namespace = uuid.MustParse("5f0b8c9e-2d4a-4c55-9a3e-7b1f6d2e8a10")

func DemoID(name string) uuid.UUID {
	return uuid.NewSHA1(namespace, []byte(name))
}

type Target struct {
	Profiles usecase.ProfileUsecase
	Catalog  usecase.CatalogUsecase
	Logger   *zap.Logger
}

type Seeder interface {
	Name() string
	Run(ctx context.Context, t Target) error
}

type Runner struct {
	Seeders []Seeder
}

func (r Runner) Run(ctx context.Context, t Target) error {
	if t.Profiles == nil || t.Catalog == nil {
		return fmt.Errorf("seeder target is incomplete")
	}
	if t.Logger == nil {
		t.Logger = zap.NewNop()
	}
	for _, s := range r.Seeders {
		if s == nil {
			continue
		}
		if err := s.Run(ctx, t); err != nil {
			return fmt.Errorf("seed %s: %w", s.Name(), err)
		}
		t.Logger.Info("seeded", zap.String("seeder", s.Name()))
	}
	return nil
}

func Defaults() []Seeder {
	return []Seeder{
		BusinessSeeder{},
		ProfessionalSeeder{},
		PositionSeeder{},
	}
}
