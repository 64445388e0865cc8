package services

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ahmetcoskunkizilkaya/sosusa-backend/internal/models"
)

var (
	// Moderation
	ErrReportNotFound     = errors.New("report not found")
	ErrReportDetached     = errors.New("report content has already been removed")
	ErrTargetNotFound     = errors.New("reported content not found")
	ErrTargetNotDeletable = errors.New("reported target cannot be deleted")
	ErrAlreadyReported    = errors.New("you have already reported this")
	ErrSelfReport         = errors.New("you cannot report yourself")
	ErrReasonRequired     = errors.New("reason is required")
	ErrInvalidTarget      = models.ErrInvalidTarget
	ErrContentRejected    = errors.New("content rejected")

	// Categories and access requests
	ErrCategoryNotFound      = errors.New("category not found")
	ErrCategoryExists        = errors.New("category name already exists")
	ErrCategoryNameRequired  = errors.New("category name is required")
	ErrAccessRequestNotFound = errors.New("access request not found")
	ErrRequestPending        = errors.New("you already have a pending request for this category")
	ErrAccessAlreadyGranted  = errors.New("you already have access to this category")
	ErrAccessRequired        = errors.New("this category requires approved access to post")

	// Posts
	ErrPostNotFound    = errors.New("post not found")
	ErrCommentNotFound = errors.New("comment not found")
	ErrEmptyPost       = errors.New("post must have content or media")
	ErrEmptyComment    = errors.New("comment cannot be empty")
	ErrTooManyMedia    = errors.New("a post can have at most 10 media files")
	ErrParentMismatch  = errors.New("parent comment belongs to a different post")
	ErrInvalidMedia    = errors.New("media must be an image or video uploaded to this site")
	ErrNotPostOwner    = errors.New("you can only change your own posts")

	// Users and auth
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("invalid or expired refresh token")
	ErrAccountSuspended   = errors.New("your account has been suspended")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidRole        = errors.New("invalid role")
)

var domainErrors = []error{
	ErrReportNotFound, ErrReportDetached, ErrTargetNotFound, ErrTargetNotDeletable,
	ErrAlreadyReported, ErrSelfReport, ErrReasonRequired, ErrInvalidTarget, ErrContentRejected,
	ErrCategoryNotFound, ErrCategoryExists, ErrCategoryNameRequired, ErrAccessRequestNotFound,
	ErrRequestPending, ErrAccessAlreadyGranted, ErrAccessRequired,
	ErrPostNotFound, ErrCommentNotFound, ErrEmptyPost, ErrEmptyComment, ErrTooManyMedia, ErrParentMismatch,
	ErrInvalidMedia, ErrNotPostOwner,
	ErrUserNotFound, ErrEmailTaken, ErrUsernameTaken, ErrInvalidCredentials, ErrInvalidToken,
	ErrAccountSuspended, ErrWeakPassword, ErrInvalidInput, ErrInvalidRole,
}

// CooldownError is returned when an access request is resubmitted before the
// rejection cooldown has elapsed.
type CooldownError struct {
	RejectedAt time.Time
	EligibleAt time.Time
	Now        time.Time
}

func (e *CooldownError) DaysRemaining() int {
	remaining := e.EligibleAt.Sub(e.Now)
	days := int(remaining / (24 * time.Hour))
	if remaining%(24*time.Hour) > 0 {
		days++
	}
	return days
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("Your previous request was rejected on %s. You can resubmit on %s (%d day(s) remaining).",
		e.RejectedAt.UTC().Format("January 2, 2006"),
		e.EligibleAt.UTC().Format("January 2, 2006 15:04 MST"),
		e.DaysRemaining())
}

// ContentRejectedError carries the user-facing reason a text was refused.
type ContentRejectedError struct {
	Reason  string
	Message string
}

func (e *ContentRejectedError) Error() string { return e.Message }

func (e *ContentRejectedError) Is(target error) bool { return target == ErrContentRejected }

// IsDomainError reports whether err is an expected business outcome rather
// than an infrastructure failure.
func IsDomainError(err error) bool {
	var cd *CooldownError
	if errors.As(err, &cd) {
		return true
	}
	for _, e := range domainErrors {
		if errors.Is(err, e) {
			return true
		}
	}
	return false
}

// storageError logs a persistence failure with context and wraps it for the caller.
func storageError(action string, err error, attrs ...any) error {
	args := append([]any{"action", action, "error", err}, attrs...)
	slog.Error("storage operation failed", args...)
	return fmt.Errorf("%s: %w", action, err)
}

// finish passes domain errors through and logs/wraps everything else.
func finish(action string, err error, attrs ...any) error {
	if err == nil || IsDomainError(err) {
		return err
	}
	return storageError(action, err, attrs...)
}

// Clock returns the current time. Services take one so time-based rules can be tested.
type Clock func() time.Time

func systemClock() time.Time { return time.Now().UTC() }
