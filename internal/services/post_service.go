package services

import (
	"context"
	"errors"
	"strings"

	"github.com/ahmetcoskunkizilkaya/sosusa-backend/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/sosusa-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/sosusa-backend/internal/storage"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const MaxMediaPerPost = 10

type PostService struct {
	db           *gorm.DB
	categories   *CategoryService
	filter       *ContentFilter
	now          Clock
	mediaBaseURL string
}

func NewPostService(db *gorm.DB, categories *CategoryService, filter *ContentFilter) *PostService {
	if filter == nil {
		filter = NewContentFilter()
	}
	return &PostService{db: db, categories: categories, filter: filter, now: systemClock}
}

func (s *PostService) WithClock(now Clock) *PostService {
	s.now = now
	return s
}

// WithMediaBaseURL restricts post media to files served under baseURL.
func (s *PostService) WithMediaBaseURL(baseURL string) *PostService {
	s.mediaBaseURL = strings.TrimRight(baseURL, "/")
	return s
}

// MediaInput is client-supplied media. Type is advisory; the stored type is
// derived from the path.
type MediaInput struct {
	Path string
	Type string
}

type CreatePostInput struct {
	UserID     uuid.UUID
	CategoryID uint
	Content    string
	Media      []MediaInput
	IsAdmin    bool
}

func (s *PostService) withDetails(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).
		Preload("User").
		Preload("Category").
		Preload("Media").
		Preload("Likes").
		Order("posts.created_at DESC, posts.id DESC")
}

func (s *PostService) GetPost(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := s.withDetails(ctx).First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, storageError("get_post", err, "post_id", id)
	}
	return &post, nil
}

func (s *PostService) GetCategoryPosts(ctx context.Context, categoryID uint) ([]models.Post, error) {
	var posts []models.Post
	if err := s.withDetails(ctx).Where("category_id = ?", categoryID).Find(&posts).Error; err != nil {
		return nil, storageError("get_category_posts", err, "category_id", categoryID)
	}
	return posts, nil
}

// GetFeedPosts returns posts from the given categories, newest first.
func (s *PostService) GetFeedPosts(ctx context.Context, categoryIDs []uint) ([]models.Post, error) {
	if len(categoryIDs) == 0 {
		return []models.Post{}, nil
	}
	var posts []models.Post
	if err := s.withDetails(ctx).Where("category_id IN ?", categoryIDs).Limit(100).Find(&posts).Error; err != nil {
		return nil, storageError("get_feed_posts", err)
	}
	return posts, nil
}

// GetFeed returns posts from every category the user follows.
func (s *PostService) GetFeed(ctx context.Context, userID uuid.UUID) ([]models.Post, error) {
	var categoryIDs []uint
	if err := s.db.WithContext(ctx).Model(&models.CategoryFollow{}).
		Where("user_id = ?", userID).Pluck("category_id", &categoryIDs).Error; err != nil {
		return nil, storageError("get_feed", err, "user_id", userID)
	}
	return s.GetFeedPosts(ctx, categoryIDs)
}

func (s *PostService) GetUserPosts(ctx context.Context, userID uuid.UUID) ([]models.Post, error) {
	var posts []models.Post
	if err := s.withDetails(ctx).Where("user_id = ?", userID).Find(&posts).Error; err != nil {
		return nil, storageError("get_user_posts", err, "user_id", userID)
	}
	return posts, nil
}

func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	content := strings.TrimSpace(in.Content)
	if content == "" && len(in.Media) == 0 {
		return nil, ErrEmptyPost
	}
	if len(in.Media) > MaxMediaPerPost {
		return nil, ErrTooManyMedia
	}
	media, err := s.checkMedia(in.Media)
	if err != nil {
		return nil, err
	}
	if err := s.filter.Check(content); err != nil {
		return nil, err
	}

	category, err := s.categories.GetByID(ctx, in.CategoryID)
	if err != nil {
		return nil, err
	}
	allowed, err := s.categories.CanPost(ctx, in.UserID, category, in.IsAdmin)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, ErrAccessRequired
	}

	post := models.Post{
		Content:    content,
		Status:     models.PostStatusPublished,
		UserID:     in.UserID,
		CategoryID: category.ID,
		Media:      media,
	}

	if err := s.db.WithContext(ctx).Create(&post).Error; err != nil {
		return nil, storageError("create_post", err, "user_id", in.UserID, "category_id", in.CategoryID)
	}

	metrics.PostsCreated.Inc()
	return s.GetPost(ctx, post.ID)
}

// checkMedia accepts only paths the media store handed out and classifies
// them by extension.
func (s *PostService) checkMedia(inputs []MediaInput) ([]models.PostMedia, error) {
	media := make([]models.PostMedia, 0, len(inputs))
	for _, m := range inputs {
		path := strings.TrimSpace(m.Path)
		if path == "" || strings.Contains(path, "..") {
			return nil, ErrInvalidMedia
		}
		if s.mediaBaseURL != "" {
			if !strings.HasPrefix(path, s.mediaBaseURL+"/") {
				return nil, ErrInvalidMedia
			}
		} else if strings.Contains(path, "://") {
			return nil, ErrInvalidMedia
		}

		mediaType, err := storage.ClassifyMedia(path)
		if err != nil {
			return nil, ErrInvalidMedia
		}
		media = append(media, models.PostMedia{MediaPath: path, MediaType: mediaType})
	}
	return media, nil
}

// UpdatePost replaces the text of the caller's own post.
func (s *PostService) UpdatePost(ctx context.Context, postID uint, userID uuid.UUID, content string) (*models.Post, error) {
	content = strings.TrimSpace(content)
	if err := s.filter.Check(content); err != nil {
		return nil, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		post, err := ownedPost(tx, postID, userID)
		if err != nil {
			return err
		}
		if content == "" {
			var media int64
			if err := tx.Model(&models.PostMedia{}).Where("post_id = ?", post.ID).Count(&media).Error; err != nil {
				return err
			}
			if media == 0 {
				return ErrEmptyPost
			}
		}
		return tx.Model(post).Updates(map[string]interface{}{
			"content":    content,
			"updated_at": s.now(),
		}).Error
	})
	if err != nil {
		return nil, finish("update_post", err, "post_id", postID, "user_id", userID)
	}
	return s.GetPost(ctx, postID)
}

// DeletePost removes the caller's own post with its comments, likes and media,
// resolving and detaching every report on them. It returns the number of
// reports resolved.
func (s *PostService) DeletePost(ctx context.Context, postID uint, userID uuid.UUID) (int64, error) {
	var resolved int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := ownedPost(tx, postID, userID); err != nil {
			return err
		}
		var err error
		resolved, err = deletePosts(tx, []uint{postID}, s.now())
		return err
	})
	if err != nil {
		return 0, finish("delete_post", err, "post_id", postID, "user_id", userID)
	}

	metrics.ReportsAffected.WithLabelValues("delete_own_post").Add(float64(resolved))
	return resolved, nil
}

func ownedPost(tx *gorm.DB, postID uint, userID uuid.UUID) (*models.Post, error) {
	var post models.Post
	if err := tx.First(&post, postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	if post.UserID != userID {
		return nil, ErrNotPostOwner
	}
	return &post, nil
}

// ToggleLike likes or unlikes the post and returns the new state and like count.
func (s *PostService) ToggleLike(ctx context.Context, postID uint, userID uuid.UUID) (bool, int64, error) {
	var (
		liked bool
		count int64
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var exists int64
		if err := tx.Model(&models.Post{}).Where("id = ?", postID).Count(&exists).Error; err != nil {
			return err
		}
		if exists == 0 {
			return ErrPostNotFound
		}

		result := tx.Where("post_id = ? AND user_id = ?", postID, userID).Delete(&models.PostLike{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			liked = true
			if err := tx.Create(&models.PostLike{PostID: postID, UserID: userID, LikedAt: s.now()}).Error; err != nil {
				return err
			}
		}
		return tx.Model(&models.PostLike{}).Where("post_id = ?", postID).Count(&count).Error
	})
	if err != nil {
		return false, 0, finish("toggle_like", err, "post_id", postID, "user_id", userID)
	}
	return liked, count, nil
}

func (s *PostService) LikeCount(ctx context.Context, postID uint) (int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.PostLike{}).Where("post_id = ?", postID).Count(&count).Error; err != nil {
		return 0, storageError("like_count", err, "post_id", postID)
	}
	return count, nil
}

// GetComments returns the post's comments oldest first; replies reference their parent.
func (s *PostService) GetComments(ctx context.Context, postID uint) ([]models.Comment, error) {
	var comments []models.Comment
	err := s.db.WithContext(ctx).Preload("User").Where("post_id = ?", postID).
		Order("created_at ASC, id ASC").Find(&comments).Error
	if err != nil {
		return nil, storageError("get_comments", err, "post_id", postID)
	}
	return comments, nil
}

func (s *PostService) CreateComment(ctx context.Context, userID uuid.UUID, postID uint, parentID *uint, content string) (*models.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyComment
	}
	if err := s.filter.Check(content); err != nil {
		return nil, err
	}

	comment := models.Comment{Content: content, PostID: postID, UserID: userID, ParentCommentID: parentID}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var exists int64
		if err := tx.Model(&models.Post{}).Where("id = ?", postID).Count(&exists).Error; err != nil {
			return err
		}
		if exists == 0 {
			return ErrPostNotFound
		}

		if parentID != nil {
			var parent models.Comment
			if err := tx.First(&parent, *parentID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrCommentNotFound
				}
				return err
			}
			if parent.PostID != postID {
				return ErrParentMismatch
			}
		}
		return tx.Create(&comment).Error
	})
	if err != nil {
		return nil, finish("create_comment", err, "post_id", postID, "user_id", userID)
	}

	if err := s.db.WithContext(ctx).Preload("User").First(&comment, comment.ID).Error; err != nil {
		return nil, storageError("create_comment", err, "comment_id", comment.ID)
	}
	return &comment, nil
}

// SearchPosts matches content or author username case-insensitively.
func (s *PostService) SearchPosts(ctx context.Context, term string) ([]models.Post, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return []models.Post{}, nil
	}
	like := "%" + strings.ToLower(term) + "%"

	var posts []models.Post
	err := s.withDetails(ctx).
		Joins("JOIN users ON users.id = posts.user_id").
		Where("LOWER(posts.content) LIKE ? OR LOWER(users.username) LIKE ?", like, like).
		Limit(10).
		Find(&posts).Error
	if err != nil {
		return nil, storageError("search_posts", err)
	}
	return posts, nil
}
