package services

import (
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/sosusa-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/sosusa-backend/internal/models"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.OpenSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func fixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

func createUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	u := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "x",
		Role:     models.RoleUser,
		IsActive: true,
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

func createCategory(t *testing.T, db *gorm.DB, name string, creator *models.User) *models.Category {
	t.Helper()
	c := &models.Category{Name: name}
	if creator != nil {
		c.CreatedByID = &creator.ID
	}
	require.NoError(t, db.Create(c).Error)
	return c
}

func createPost(t *testing.T, db *gorm.DB, id uint, author *models.User, category *models.Category) *models.Post {
	t.Helper()
	p := &models.Post{ID: id, Content: "post", Status: models.PostStatusPublished, UserID: author.ID, CategoryID: category.ID}
	require.NoError(t, db.Create(p).Error)
	return p
}

func createComment(t *testing.T, db *gorm.DB, post *models.Post, author *models.User, parent *models.Comment) *models.Comment {
	t.Helper()
	c := &models.Comment{Content: "comment", PostID: post.ID, UserID: author.ID}
	if parent != nil {
		c.ParentCommentID = &parent.ID
	}
	require.NoError(t, db.Create(c).Error)
	return c
}

func createReport(t *testing.T, db *gorm.DB, id uint, reporter *models.User, target models.ReportTarget, status models.ReportStatus) *models.Report {
	t.Helper()
	r := &models.Report{ID: id, Reason: "spam", Status: status, ReporterID: reporter.ID}
	r.SetTarget(target)
	require.NoError(t, db.Create(r).Error)
	return r
}

func reloadReport(t *testing.T, db *gorm.DB, id uint) models.Report {
	t.Helper()
	var r models.Report
	require.NoError(t, db.First(&r, id).Error)
	return r
}

func count(t *testing.T, db *gorm.DB, model interface{}, query string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	q := db.Model(model)
	if query != "" {
		q = q.Where(query, args...)
	}
	require.NoError(t, q.Count(&n).Error)
	return n
}

