package handlers

import (
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/sosusa-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/sosusa-backend/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/sosusa-backend/internal/storage"
	"github.com/gofiber/fiber/v2"
)

type MediaHandler struct {
	store    storage.MediaStore
	maxBytes int64
}

func NewMediaHandler(store storage.MediaStore, maxBytes int64) *MediaHandler {
	return &MediaHandler{store: store, maxBytes: maxBytes}
}

// UploadPostMedia stores one image or video for a post.
func (h *MediaHandler) UploadPostMedia(c *fiber.Ctx) error {
	return h.upload(c, storage.FolderPosts, storage.ClassifyMedia)
}

// UploadVerification stores a supporting document for an access request.
func (h *MediaHandler) UploadVerification(c *fiber.Ctx) error {
	return h.upload(c, storage.FolderVerification, storage.ClassifyDocument)
}

func (h *MediaHandler) UploadProfileImage(c *fiber.Ctx) error {
	return h.upload(c, storage.FolderProfiles, storage.ClassifyImage)
}

func (h *MediaHandler) upload(c *fiber.Ctx, folder string, classify func(string) (string, error)) error {
	userID, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}

	file, err := c.FormFile("file")
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "file is required")
	}

	mediaType, err := classify(file.Filename)
	if err != nil {
		return respondError(c, err)
	}
	if err := storage.ValidateSize(file.Size, h.maxBytes); err != nil {
		return respondError(c, err)
	}

	src, err := file.Open()
	if err != nil {
		return respondError(c, err)
	}
	defer src.Close()

	stored, err := h.store.Save(c.UserContext(), storage.Upload{
		Folder:   folder,
		Filename: file.Filename,
		Size:     file.Size,
		Body:     src,
	})
	if err != nil {
		slog.Error("media upload failed", "action", "upload_media", "user_id", userID.String(), "folder", folder, "error", err)
		return respondError(c, err)
	}

	metrics.MediaUploads.WithLabelValues(mediaType, h.store.Driver()).Inc()
	return c.Status(fiber.StatusCreated).JSON(dto.MediaResponse{
		Path:      stored.Path,
		URL:       stored.URL,
		MediaType: mediaType,
		Size:      stored.Size,
	})
}
