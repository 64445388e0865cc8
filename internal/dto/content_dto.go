package dto

import "github.com/ahmetcoskunkizilkaya/sosusa-backend/internal/models"

type MediaItem struct {
	Path string `json:"path"`
	Type string `json:"type"`
}

type CreatePostRequest struct {
	Content string      `json:"content"`
	Media   []MediaItem `json:"media"`
}

type UpdatePostRequest struct {
	Content string `json:"content"`
}

type DeletePostResponse struct {
	PostID          uint  `json:"post_id"`
	ReportsResolved int64 `json:"reports_resolved"`
}

type CreateCommentRequest struct {
	Content         string `json:"content"`
	ParentCommentID *uint  `json:"parent_comment_id"`
}

type LikeResponse struct {
	Liked bool  `json:"liked"`
	Count int64 `json:"count"`
}

type CreateCategoryRequest struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	IsRestricted bool   `json:"is_restricted"`
}

type CategoryResponse struct {
	Category    *models.Category `json:"category"`
	IsFollowing bool             `json:"is_following"`
	CanPost     bool             `json:"can_post"`
	HasPending  bool             `json:"has_pending_request"`
}

type FollowResponse struct {
	Following bool `json:"following"`
}

type AccessRequestRequest struct {
	Reason                 string  `json:"reason"`
	SupportingDocumentPath *string `json:"supporting_document_path"`
}

type UpdateProfileRequest struct {
	DisplayName  *string `json:"display_name"`
	Bio          *string `json:"bio"`
	ProfileImage *string `json:"profile_image"`
}

type ProfileResponse struct {
	User          UserResponse  `json:"user"`
	FollowerCount int64         `json:"follower_count"`
	Posts         []models.Post `json:"posts"`
}

type MediaResponse struct {
	Path      string `json:"path"`
	URL       string `json:"url"`
	MediaType string `json:"media_type"`
	Size      int64  `json:"size"`
}
