package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/ahmetcoskunkizilkaya/sosusa-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/sosusa-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func run(t *testing.T, db *gorm.DB, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd(func() (*gorm.DB, error) { return db, nil }, &out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func seed(t *testing.T, db *gorm.DB) (*models.User, *models.Post) {
	t.Helper()
	user := &models.User{Username: "alice", Email: "alice@example.com", Password: "x", Role: models.RoleUser, IsActive: true}
	require.NoError(t, db.Create(user).Error)
	category := &models.Category{Name: "news"}
	require.NoError(t, db.Create(category).Error)
	post := &models.Post{Content: "hello", Status: models.PostStatusPublished, UserID: user.ID, CategoryID: category.ID}
	require.NoError(t, db.Create(post).Error)
	return user, post
}

func report(t *testing.T, db *gorm.DB, reporter *models.User, target models.ReportTarget) *models.Report {
	t.Helper()
	r := &models.Report{Reason: "spam", Status: models.ReportPending, ReporterID: reporter.ID}
	r.SetTarget(target)
	require.NoError(t, db.Create(r).Error)
	return r
}

func TestMigrate(t *testing.T) {
	db := setupDB(t)

	out, err := run(t, db, "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "migrated")
	assert.True(t, db.Migrator().HasTable(&models.Report{}))
}

func TestReportsDismissAndUndo(t *testing.T) {
	db := setupDB(t)
	require.NoError(t, database.Migrate(db))
	user, post := seed(t, db)
	report(t, db, user, models.PostTarget(post.ID))
	report(t, db, user, models.PostTarget(post.ID))

	out, err := run(t, db, "reports", "dismiss", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "dismiss: 2 report(s) affected")

	var dismissed int64
	db.Model(&models.Report{}).Where("status = ?", models.ReportDismissed).Count(&dismissed)
	assert.Equal(t, int64(2), dismissed)

	out, err = run(t, db, "reports", "undo", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "undo: 2 report(s) affected")

	out, err = run(t, db, "reports", "list", "--status", "Pending")
	require.NoError(t, err)
	assert.Contains(t, out, "post:")
	assert.Contains(t, out, "2 of 2")
}

func TestReportsDeleteContent(t *testing.T) {
	db := setupDB(t)
	require.NoError(t, database.Migrate(db))
	user, post := seed(t, db)
	r := report(t, db, user, models.PostTarget(post.ID))

	_, err := run(t, db, "reports", "delete-content", "1")
	require.NoError(t, err)

	var reloaded models.Report
	require.NoError(t, db.First(&reloaded, r.ID).Error)
	assert.Equal(t, models.ReportResolved, reloaded.Status)
	assert.Nil(t, reloaded.TargetID)

	out, err := run(t, db, "--output", "json", "reports", "groups")
	require.NoError(t, err)
	assert.Contains(t, out, `"anchor_id": 1`)
}

func TestReportsActionUnknownID(t *testing.T) {
	db := setupDB(t)
	require.NoError(t, database.Migrate(db))

	_, err := run(t, db, "reports", "dismiss", "42")
	assert.Error(t, err)

	_, err = run(t, db, "reports", "dismiss", "abc")
	assert.ErrorContains(t, err, "invalid id")
}

func TestUsersPromoteAndBan(t *testing.T) {
	db := setupDB(t)
	require.NoError(t, database.Migrate(db))
	user, _ := seed(t, db)

	out, err := run(t, db, "users", "promote", "ALICE@example.com")
	require.NoError(t, err)
	assert.Contains(t, out, "role=admin")

	_, err = run(t, db, "users", "promote", "alice@example.com", "--revoke")
	require.NoError(t, err)

	out, err = run(t, db, "users", "ban", user.ID.String())
	require.NoError(t, err)
	assert.Contains(t, out, "active=false")

	var reloaded models.User
	require.NoError(t, db.First(&reloaded, "id = ?", user.ID).Error)
	assert.Equal(t, models.RoleUser, reloaded.Role)
	assert.False(t, reloaded.IsActive)
}

func TestRequestsApprove(t *testing.T) {
	db := setupDB(t)
	require.NoError(t, database.Migrate(db))
	user, post := seed(t, db)
	req := &models.CategoryAccessRequest{UserID: user.ID, CategoryID: post.CategoryID, Reason: "journalist", Status: models.AccessPending}
	require.NoError(t, db.Create(req).Error)

	out, err := run(t, db, "requests", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "journalist")

	out, err = run(t, db, "requests", "approve", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "request 1 approved")

	var reloaded models.CategoryAccessRequest
	require.NoError(t, db.First(&reloaded, req.ID).Error)
	assert.Equal(t, models.AccessApproved, reloaded.Status)
}

func TestCategoriesVerify(t *testing.T) {
	db := setupDB(t)
	require.NoError(t, database.Migrate(db))
	seed(t, db)

	out, err := run(t, db, "categories", "verify", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "verified=true")
}

func TestInvalidOutputFormat(t *testing.T) {
	db := setupDB(t)
	_, err := run(t, db, "--output", "xml", "migrate")
	assert.ErrorContains(t, err, "unknown output format")
}

func TestReportsGroupsStatusFilterCountsMatchingOnly(t *testing.T) {
	db := setupDB(t)
	require.NoError(t, database.Migrate(db))
	user, post := seed(t, db)
	report(t, db, user, models.PostTarget(post.ID))
	dismissed := report(t, db, user, models.PostTarget(post.ID))
	require.NoError(t, db.Model(dismissed).Update("status", models.ReportDismissed).Error)

	decode := func(out string) []map[string]any {
		var groups []map[string]any
		require.NoError(t, json.Unmarshal([]byte(out), &groups))
		return groups
	}

	out, err := run(t, db, "--output", "json", "reports", "groups", "--status", "Pending")
	require.NoError(t, err)
	groups := decode(out)
	require.Len(t, groups, 1)
	assert.Equal(t, float64(1), groups[0]["count"])
	assert.Equal(t, float64(1), groups[0]["pending"])
	assert.Equal(t, float64(0), groups[0]["dismissed"])

	out, err = run(t, db, "--output", "json", "reports", "groups")
	require.NoError(t, err)
	groups = decode(out)
	require.Len(t, groups, 1)
	assert.Equal(t, float64(2), groups[0]["count"])
	assert.Equal(t, float64(1), groups[0]["dismissed"])
}
