package services

import (
	"context"

	"biodb-backend-go/internal/models"

	"github.com/jmoiron/sqlx"
)

// SampleRepository reads and writes biological_data. It performs no
// validation; callers check mandatory fields first.
type SampleRepository struct {
	DB   *sqlx.DB
	Feed *SampleFeed
}

func NewSampleRepository(conn *sqlx.DB, feed *SampleFeed) *SampleRepository {
	return &SampleRepository{DB: conn, Feed: feed}
}

func (r *SampleRepository) Add(ctx context.Context, sample models.NewSample) (models.BiologicalSample, error) {
	var id int64
	err := r.DB.GetContext(ctx, &id, r.DB.Rebind(`
INSERT INTO biological_data (sample_name, species, collection_date, collected_by, description)
VALUES (?, ?, ?, ?, ?)
RETURNING record_id`), sample.SampleName, sample.Species, sample.CollectionDate, sample.CollectedBy, sample.Description)
	if err != nil {
		return models.BiologicalSample{}, WrapError(err, "insert sample")
	}
	stored := models.BiologicalSample{
		RecordID:       id,
		SampleName:     sample.SampleName,
		Species:        sample.Species,
		CollectionDate: sample.CollectionDate,
		CollectedBy:    sample.CollectedBy,
		Description:    sample.Description,
	}
	if r.Feed != nil {
		r.Feed.Broadcast(stored)
	}
	return stored, nil
}

func (r *SampleRepository) ListAll(ctx context.Context) ([]models.BiologicalSample, error) {
	items := []models.BiologicalSample{}
	if err := r.DB.SelectContext(ctx, &items, `
SELECT record_id, sample_name, species, collection_date, collected_by, description
FROM biological_data
ORDER BY record_id`); err != nil {
		return nil, WrapError(err, "select samples")
	}
	return items, nil
}

func (r *SampleRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.DB.GetContext(ctx, &count, `SELECT COUNT(*) FROM biological_data`); err != nil {
		return 0, WrapError(err, "count samples")
	}
	return count, nil
}
