package store_test

import (
	"context"
	"os"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/labelr/labelr/internal/db"
	"github.com/labelr/labelr/internal/db/migrations"
	"github.com/labelr/labelr/internal/dbpool"
	"github.com/labelr/labelr/internal/models"
	"github.com/labelr/labelr/internal/store"
)

// testEnv holds shared test infrastructure (single pool across all tests).
type testEnv struct {
	pool *dbpool.Pool
	log  *logrus.Logger
}

var sharedEnv *testEnv

func getTestEnv(t *testing.T) *testEnv {
	t.Helper()

	if sharedEnv != nil {
		return sharedEnv
	}

	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()

	pool, err := dbpool.NewPool(ctx, dbURL, 4)
	if err != nil {
		t.Fatalf("connecting to test DB: %v", err)
	}

	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)

	if err := db.RunMigrations(ctx, pool, log, migrations.FS); err != nil {
		t.Fatalf("migrating test DB: %v", err)
	}

	sharedEnv = &testEnv{
		pool: pool,
		log:  log,
	}

	return sharedEnv
}

func f(v float64) *float64 { return &v }

// setupDataset creates a dataset with a News/Score schema and the given
// sample texts, removed again after the test.
func setupDataset(t *testing.T, texts ...string) (store.Base, *models.DatasetDetail) {
	t.Helper()

	env := getTestEnv(t)
	base := store.Base{Pool: env.pool, Log: env.log}
	ctx := context.Background()

	ds, err := store.NewDatasetStore(base).CreateDataset(ctx, models.CreateDatasetRequest{
		Name: "test dataset",
		Labels: []models.LabelDefinition{
			{Name: "News", Variant: models.VariantBoolean},
			{Name: "Score", Variant: models.VariantNumerical, Minimum: f(-1), Maximum: f(1), Interval: f(0.5)},
		},
	})
	if err != nil {
		t.Fatalf("CreateDataset: %v", err)
	}

	t.Cleanup(func() {
		env.pool.Exec(context.Background(), "DELETE FROM datasets WHERE id = $1", ds.ID) //nolint:errcheck // best-effort cleanup
	})

	if len(texts) > 0 {
		samples := make([]models.NewSample, 0, len(texts))
		for i, text := range texts {
			samples = append(samples, models.NewSample{OriginalID: string(rune('a' + i)), Text: text})
		}

		if _, err := store.NewSampleStore(base).AddSamples(ctx, ds.ID, samples); err != nil {
			t.Fatalf("AddSamples: %v", err)
		}
	}

	return base, ds
}
