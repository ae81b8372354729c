package handler

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/palaver-chat/palaver/internal/domain"
	"github.com/palaver-chat/palaver/internal/middleware"
)

// FileHandler handles HTTP requests for file operations
type FileHandler struct {
	fileService domain.FileService
	maxUploadMB int64
}

// NewFileHandler creates a new file handler
func NewFileHandler(fileService domain.FileService, maxUploadMB int64) *FileHandler {
	return &FileHandler{
		fileService: fileService,
		maxUploadMB: maxUploadMB,
	}
}

// Upload handles POST /v1/rooms/:room/files
func (h *FileHandler) Upload(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"error":   "user not authenticated",
		})
	}

	form, err := c.MultipartForm()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "invalid multipart form: " + err.Error(),
		})
	}

	files := form.File["file"]
	if len(files) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "missing 'file' field in form data",
		})
	}
	upload := files[0]

	maxBytes := h.maxUploadMB * 1024 * 1024
	if upload.Size > maxBytes {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   fmt.Sprintf("file size exceeds maximum of %dMB", h.maxUploadMB),
		})
	}

	content, err := upload.Open()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "failed to open uploaded file",
		})
	}
	defer content.Close()

	file, _, _, err := h.fileService.Create(c.Context(), domain.UploadRequest{
		OwnerID: userID,
		RoomID:  c.Params("room"),
		Name:    upload.Filename,
		Type:    upload.Header.Get("Content-Type"),
		Size:    upload.Size,
		Content: content,
		Post:    c.FormValue("post") == "true",
	})
	if err != nil {
		return uploadError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    file,
	})
}

// List handles GET /v1/files and GET /v1/rooms/:room/files
func (h *FileHandler) List(c *fiber.Ctx) error {
	opts := domain.DefaultListFilesOptions()
	opts.Room = c.Params("room", c.Query("room"))
	opts.Expand = c.Query("expand")
	opts.Skip = int64(c.QueryInt("skip"))
	opts.Take = int64(c.QueryInt("take", domain.DefaultListTake))
	opts.Reverse = c.QueryBool("reverse", true)

	if from := c.Query("from"); from != "" {
		t, err := time.Parse(time.RFC3339, from)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"error":   "invalid 'from' timestamp, expected RFC3339",
			})
		}
		opts.From = t
	}
	if to := c.Query("to"); to != "" {
		t, err := time.Parse(time.RFC3339, to)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"error":   "invalid 'to' timestamp, expected RFC3339",
			})
		}
		opts.To = t
	}

	files, err := h.fileService.List(c.Context(), opts)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "failed to list files: " + err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    files,
	})
}

// Download handles GET /files/:id/:name, serving binaries for providers that
// store them locally.
func (h *FileHandler) Download(c *fiber.Ctx) error {
	file, err := h.fileService.Get(c.Context(), c.Params("id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false,
				"error":   "file not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "failed to look up file",
		})
	}

	content, err := h.fileService.Open(c.Context(), file)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false,
				"error":   "file content not available",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "failed to open file",
		})
	}

	c.Set(fiber.HeaderContentType, file.Type)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("inline; filename=%q", url.PathEscape(file.Name)))

	return c.SendStream(content, int(file.Size))
}

// uploadError maps domain errors to HTTP statuses
func uploadError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrFilesDisabled):
		status = fiber.StatusForbidden
	case errors.Is(err, domain.ErrTypeNotAllowed):
		status = fiber.StatusUnsupportedMediaType
	case errors.Is(err, domain.ErrRoomNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, domain.ErrRoomArchived):
		status = fiber.StatusBadRequest
	}

	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"error":   err.Error(),
	})
}
