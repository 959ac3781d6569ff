package database_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pocketlog/internal/config"
	"pocketlog/internal/database"
	"pocketlog/internal/models"
)

func TestOpenSQLiteMigratesSchema(t *testing.T) {
	db, err := database.Open(config.DatabaseConfig{Driver: "sqlite", DSN: "file::memory:"})
	require.NoError(t, err)

	for _, model := range []any{&models.User{}, &models.Follow{}, &models.Spending{}, &models.SpendingGoal{}, &models.Reaction{}} {
		assert.True(t, db.Migrator().HasTable(model), "missing table for %T", model)
	}
	assert.True(t, db.Migrator().HasIndex(&models.SpendingGoal{}, "idx_goal_user_month"))
	assert.True(t, db.Migrator().HasIndex(&models.Reaction{}, "idx_reaction_user_date"))
	assert.True(t, db.Migrator().HasIndex(&models.Follow{}, "idx_follow_pair"))
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := database.Open(config.DatabaseConfig{Driver: "oracle", DSN: "x"})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported database driver")
}
