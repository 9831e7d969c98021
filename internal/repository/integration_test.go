//go:build integration

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/Naenyn/FeedbackPortlet/internal/database"
	"github.com/Naenyn/FeedbackPortlet/internal/metrics"
	"github.com/Naenyn/FeedbackPortlet/internal/model"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

func setupPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("feedback"),
		postgres.WithUsername("feedback"),
		postgres.WithPassword("feedback"),
		postgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, container)
	require.NoError(t, err)

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	logger := zerolog.Nop()
	require.NoError(t, database.Migrate(ctx, &logger, dsn))
	// Migrating twice is a no-op.
	require.NoError(t, database.Migrate(ctx, &logger, dsn))

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	return pool
}

func comment(s string) *string { return &s }

func TestFeedbackRepository_Postgres(t *testing.T) {
	ctx := context.Background()
	pool := setupPostgres(t)
	repo := NewFeedbackRepository(pool, nil, StoreOptions{}, metrics.New(prometheus.NewRegistry()))

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	seed := []model.FeedbackItem{
		{UserID: "u1", UserRole: "student", FeedbackType: model.FeedbackTypeYes, Feedback: comment("great"), SubmissionTime: base},
		{UserID: "u1", UserRole: "student", FeedbackType: model.FeedbackTypeNo, SubmissionTime: base.Add(time.Hour)},
		{UserID: "u2", UserRole: "faculty", FeedbackType: model.FeedbackTypeUndecided, Feedback: comment(""), SubmissionTime: base.Add(2 * time.Hour)},
		{UserID: "u3", UserRole: "", FeedbackType: "MAYBE", Feedback: comment("hmm"), SubmissionTime: base.Add(3 * time.Hour)},
	}

	for i := range seed {
		require.True(t, seed[i].ID.IsNew())
		require.NoError(t, repo.StoreFeedback(ctx, &seed[i]))
		require.False(t, seed[i].ID.IsNew())
	}

	t.Run("store assigns distinct ids", func(t *testing.T) {
		seen := map[string]bool{}
		for _, item := range seed {
			assert.False(t, seen[item.ID.String()])
			seen[item.ID.String()] = true
		}
	})

	t.Run("store updates existing record", func(t *testing.T) {
		updated := seed[1]
		updated.Feedback = comment("changed my mind")
		require.NoError(t, repo.StoreFeedback(ctx, &updated))
		assert.Equal(t, seed[1].ID, updated.ID)
		seed[1] = updated

		items, err := repo.ListFeedback(ctx)
		require.NoError(t, err)
		require.Len(t, items, len(seed))

		var stored *model.FeedbackItem
		for i := range items {
			if items[i].ID == updated.ID {
				stored = &items[i]
			}
		}
		require.NotNil(t, stored)
		require.NotNil(t, stored.Feedback)
		assert.Equal(t, "changed my mind", *stored.Feedback)
		assert.Equal(t, model.FeedbackTypeNo, stored.FeedbackType)
		assert.True(t, base.Add(time.Hour).Equal(stored.SubmissionTime))
	})

	t.Run("store unknown id fails", func(t *testing.T) {
		ghost := model.FeedbackItem{ID: model.NewFeedbackID(999999), UserID: "x", FeedbackType: model.FeedbackTypeYes, SubmissionTime: base}
		err := repo.StoreFeedback(ctx, &ghost)
		require.Error(t, err)
		assert.True(t, IsNotFound(err))
	})

	t.Run("list is newest first", func(t *testing.T) {
		items, err := repo.ListFeedback(ctx)
		require.NoError(t, err)
		require.Len(t, items, 4)
		for i := 1; i < len(items); i++ {
			assert.False(t, items[i].SubmissionTime.After(items[i-1].SubmissionTime))
		}
		assert.Equal(t, "u3", items[0].UserID)
	})

	window := model.QueryParameters{
		StartDisplayDate: ptr(base),
		EndDisplayDate:   ptr(base.Add(3 * time.Hour)),
	}

	t.Run("query with inclusive window", func(t *testing.T) {
		items, err := repo.QueryFeedback(ctx, window)
		require.NoError(t, err)
		assert.Len(t, items, 4)
	})

	t.Run("query without dates matches nothing", func(t *testing.T) {
		items, err := repo.QueryFeedback(ctx, model.QueryParameters{})
		require.NoError(t, err)
		assert.NotNil(t, items)
		assert.Empty(t, items)
	})

	t.Run("query filters and pages", func(t *testing.T) {
		params := window
		params.UserRole = "student"
		items, err := repo.QueryFeedback(ctx, params)
		require.NoError(t, err)
		assert.Len(t, items, 2)

		params = window
		params.StartDisplayCount = 1
		params.ItemsDisplayed = 2
		items, err = repo.QueryFeedback(ctx, params)
		require.NoError(t, err)
		require.Len(t, items, 2)
		assert.Equal(t, "u2", items[0].UserID)
	})

	t.Run("role and type filters compose with AND", func(t *testing.T) {
		params := window
		params.UserRole = "student"
		params.FeedbackType = string(model.FeedbackTypeNo)

		items, err := repo.QueryFeedback(ctx, params)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, seed[1].ID, items[0].ID)

		count, err := repo.CountFeedback(ctx, model.QueryParameters{UserRole: "student", FeedbackType: string(model.FeedbackTypeNo)})
		require.NoError(t, err)
		assert.EqualValues(t, 1, count)

		params.FeedbackType = string(model.FeedbackTypeUndecided)
		items, err = repo.QueryFeedback(ctx, params)
		require.NoError(t, err)
		assert.Empty(t, items)
	})

	t.Run("listing and counting comment filters differ on empty comments", func(t *testing.T) {
		params := window
		params.CommentsOnlyDisplayed = true

		items, err := repo.QueryFeedback(ctx, params)
		require.NoError(t, err)
		assert.Len(t, items, 4)

		count, err := repo.CountFeedback(ctx, params)
		require.NoError(t, err)
		assert.EqualValues(t, 3, count)

		consistent := NewFeedbackRepository(pool, nil, StoreOptions{ConsistentCommentFilter: true}, nil)
		items, err = consistent.QueryFeedback(ctx, params)
		require.NoError(t, err)
		assert.Len(t, items, 3)
	})

	t.Run("count ignores partial date range", func(t *testing.T) {
		count, err := repo.CountFeedback(ctx, model.QueryParameters{StartDisplayDate: ptr(base.Add(time.Hour))})
		require.NoError(t, err)
		assert.EqualValues(t, 4, count)

		count, err = repo.CountFeedback(ctx, model.QueryParameters{
			StartDisplayDate: ptr(base.Add(time.Hour)),
			EndDisplayDate:   ptr(base.Add(2 * time.Hour)),
		})
		require.NoError(t, err)
		assert.EqualValues(t, 2, count)
	})

	t.Run("stats", func(t *testing.T) {
		stats, err := repo.Stats(ctx)
		require.NoError(t, err)
		assert.EqualValues(t, 3, stats.UniqueUsers)
		assert.EqualValues(t, 1, stats.PositiveResponses)
		assert.EqualValues(t, 1, stats.NegativeResponses)
		assert.EqualValues(t, 2, stats.UndecidedResponses)
	})

	t.Run("stats by role", func(t *testing.T) {
		byRole, err := repo.StatsByRole(ctx)
		require.NoError(t, err)

		require.Contains(t, byRole, "student")
		assert.EqualValues(t, 1, byRole["student"].UniqueUsers)
		assert.EqualValues(t, 1, byRole["student"].PositiveResponses)
		assert.EqualValues(t, 1, byRole["student"].NegativeResponses)

		require.Contains(t, byRole, "faculty")
		assert.EqualValues(t, 1, byRole["faculty"].UndecidedResponses)

		require.Contains(t, byRole, "")
		assert.EqualValues(t, 1, byRole[""].UndecidedResponses)
	})
}
