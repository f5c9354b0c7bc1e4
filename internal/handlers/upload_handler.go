package handlers

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/NazirHussain1/blog-api-pagination-filtering-sub001/pkg/storage"
)

// allowedImageTypes maps the accepted image MIME types to their file extension.
var allowedImageTypes = []struct {
	mime string
	ext  string
}{
	{"image/jpeg", ".jpg"},
	{"image/png", ".png"},
	{"image/gif", ".gif"},
	{"image/webp", ".webp"},
}

// UploadHandler stores images in the configured ImageStore
type UploadHandler struct {
	store    storage.ImageStore
	maxBytes int64
}

// NewUploadHandler creates a new UploadHandler. A nil store disables uploads.
func NewUploadHandler(store storage.ImageStore, maxBytes int64) *UploadHandler {
	return &UploadHandler{store: store, maxBytes: maxBytes}
}

// RegisterUploadRoutes registers the upload route
func (h *UploadHandler) RegisterUploadRoutes(g *echo.Group, requireAuth echo.MiddlewareFunc) {
	g.POST("/upload", h.UploadImage, requireAuth)
}

// UploadImage accepts a multipart "image" field and returns the stored image URL
func (h *UploadHandler) UploadImage(c echo.Context) error {
	if h.store == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "Image uploads are not configured")
	}

	file, err := c.FormFile("image")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "An image file is required in the \"image\" field")
	}
	if file.Size > h.maxBytes {
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, fmt.Sprintf("Image must not exceed %d bytes", h.maxBytes))
	}

	src, err := file.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Failed to read uploaded file")
	}
	defer src.Close()

	mtype, err := mimetype.DetectReader(src)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Failed to read uploaded file")
	}
	contentType, ext := "", ""
	for _, t := range allowedImageTypes {
		if mtype.Is(t.mime) {
			contentType, ext = t.mime, t.ext
			break
		}
	}
	if contentType == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Only JPEG, PNG, GIF and WebP images are allowed")
	}

	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return internalError(fmt.Errorf("rewind upload: %w", err))
	}

	name := "images/" + uuid.NewString() + ext
	url, err := h.store.Put(c.Request().Context(), name, src, file.Size, contentType)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, "Failed to store image").SetInternal(err)
	}

	return ok(c, http.StatusCreated, echo.Map{"url": url})
}
