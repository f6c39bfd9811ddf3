// Package seed fills biological_data with synthetic tuberculosis samples
// for demos.
package seed

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"biodb-backend-go/internal/models"

	"github.com/brianvoe/gofakeit/v7"
)

const (
	DefaultCount = 100

	SamplePrefix      = "TB Sample "
	Species           = "Mycobacterium tuberculosis"
	DescriptionPrefix = "Isolated from "
	lookbackYears     = 5
)

// TissueSources are the sample origins a description is drawn from.
var TissueSources = []string{"lung tissue", "lymph node", "sputum"}

// SampleAdder is the public insert contract the seeder writes through.
type SampleAdder interface {
	Add(ctx context.Context, sample models.NewSample) (models.BiologicalSample, error)
}

type Seeder struct {
	Samples SampleAdder
	Faker   *gofakeit.Faker
	Now     func() time.Time
}

func New(samples SampleAdder, faker *gofakeit.Faker) *Seeder {
	if faker == nil {
		faker = gofakeit.New(0)
	}
	return &Seeder{Samples: samples, Faker: faker, Now: time.Now}
}

// Seed inserts count synthetic samples and stops at the first failed insert.
// It returns how many rows were stored.
func (s *Seeder) Seed(ctx context.Context, count int) (int, error) {
	if count < 0 {
		return 0, fmt.Errorf("seed: count must not be negative, got %d", count)
	}
	for i := 0; i < count; i++ {
		if err := ctx.Err(); err != nil {
			return i, err
		}
		if _, err := s.Samples.Add(ctx, s.Generate()); err != nil {
			return i, fmt.Errorf("seed: insert %d of %d: %w", i+1, count, err)
		}
	}
	return count, nil
}

// Generate synthesizes one sample without storing it.
func (s *Seeder) Generate() models.NewSample {
	today := truncateDay(s.Now())
	collected := s.Faker.DateRange(today.AddDate(-lookbackYears, 0, 0), today).Format(models.DateLayout)
	collectedBy := s.Faker.Name()
	description := DescriptionPrefix + s.Faker.RandomString(TissueSources)
	return models.NewSample{
		SampleName:     SamplePrefix + strconv.Itoa(s.Faker.IntRange(1, 9999)),
		Species:        Species,
		CollectionDate: &collected,
		CollectedBy:    &collectedBy,
		Description:    &description,
	}
}

func truncateDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}
