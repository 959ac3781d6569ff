//go:build integration

package repositories_test

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"

	"pocketlog/internal/config"
	"pocketlog/internal/database"
	"pocketlog/internal/models"
	"pocketlog/internal/repositories"
)

func newPostgresDB(t *testing.T) *gorm.DB {
	t.Helper()
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("pocketlog"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
		),
	)
	if err != nil {
		t.Skipf("failed to start postgres container: %s", err)
	}
	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate postgres container: %s", err)
		}
	})

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := database.Open(config.DatabaseConfig{Driver: "postgres", DSN: connStr})
	require.NoError(t, err)
	return db
}

func TestPostgres_Repositories(t *testing.T) {
	db := newPostgresDB(t)
	users := repositories.NewGORMUserRepository(db)
	goals := repositories.NewGORMGoalRepository(db)
	spending := repositories.NewGORMSpendingRepository(db)
	reactions := repositories.NewGORMReactionRepository(db)

	t.Run("user upsert and nickname conflict", func(t *testing.T) {
		_, created, err := users.UpsertFromLogin(10, "ten", "")
		require.NoError(t, err)
		assert.True(t, created)
		_, created, err = users.UpsertFromLogin(10, "ten", "")
		require.NoError(t, err)
		assert.False(t, created)

		_, _, err = users.UpsertFromLogin(11, "eleven", "")
		require.NoError(t, err)
		require.NoError(t, users.SetNicknameIfUnset(10, "pg"))
		assert.ErrorIs(t, users.UpdateNickname(11, "pg"), repositories.ErrConflict)
	})

	t.Run("concurrent goal increments", func(t *testing.T) {
		month := day("2024-11-01")
		_, err := goals.Upsert(10, month, decimal.NewFromInt(500000))
		require.NoError(t, err)

		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := goals.IncrementCurrentSpending(10, month, decimal.RequireFromString("0.5"))
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		goal, err := goals.Find(10, month)
		require.NoError(t, err)
		assert.Equal(t, "10", goal.CurrentSpending.String())
	})

	t.Run("decimal sums and reactions", func(t *testing.T) {
		for _, amount := range []string{"100", "250.50", "0"} {
			require.NoError(t, spending.Create(&models.Spending{KakaoID: 10, Amount: decimal.RequireFromString(amount), Description: "x", Date: day("2024-11-15")}))
		}
		amounts, err := spending.AmountsInRange(10, day("2024-11-01"), day("2024-11-30"))
		require.NoError(t, err)
		total := decimal.Zero
		for _, a := range amounts {
			total = total.Add(a)
		}
		assert.Equal(t, "350.5", total.String())

		require.NoError(t, reactions.Upsert(&models.Reaction{KakaoID: 10, Date: day("2024-11-15"), ReactionType: models.ReactionHappy}))
		require.NoError(t, reactions.Upsert(&models.Reaction{KakaoID: 10, Date: day("2024-11-15"), ReactionType: models.ReactionSad}))
		list, err := reactions.ListByDateRange(10, day("2024-11-15"), day("2024-11-15"))
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, models.ReactionSad, list[0].ReactionType)
	})
}
