// Upload HTTP handlers.
//
//   - POST /uploads              (multipart "file"; jpg, jpeg, png, gif)
//   - GET  /uploads/files/{name} (public)
//
// Uploaded images back pet photos and vaccine sticker pictures. The declared
// extension must agree with the sniffed content type.
package handlers

import (
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/apisada-prim/pawbook/internal/http/middleware"
	"github.com/apisada-prim/pawbook/internal/storage"
)

// multipartOverhead is headroom for boundaries and part headers on top of
// the file size cap.
const multipartOverhead = 64 << 10

// UploadResponse describes a stored image.
type UploadResponse struct {
	Name        string `json:"name"         example:"0b7c1e9a-3f55-4f8e-9d7e-5d1f6c1a2b3c.jpg"`
	URL         string `json:"url"          example:"http://localhost:8080/api/v1/uploads/files/0b7c1e9a-3f55-4f8e-9d7e-5d1f6c1a2b3c.jpg"`
	ContentType string `json:"content_type" example:"image/jpeg"`
	Size        int64  `json:"size"         example:"48213"`
}

// UploadImage godoc
// @ID          uploadImage
// @Summary     Upload an image
// @Description Stores a JPEG, PNG, or GIF (max 10 MiB by default) and returns its public URL.
// @Tags        Uploads
// @Accept      multipart/form-data
// @Produce     json
// @Security    BearerAuth
// @Param       file  formData  file  true  "Image file"
// @Success     201   {object}  handlers.UploadResponse
// @Failure     400   {object}  handlers.ErrorResponse  "Missing file"
// @Failure     413   {object}  handlers.ErrorResponse  "File too large"
// @Failure     415   {object}  handlers.ErrorResponse  "Not an allowed image type"
// @Router      /uploads [post]
func (h *Handlers) UploadImage(c *gin.Context) {
	if _, has := principal(c); !has {
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.UploadMaxBytes+multipartOverhead)

	fh, err := c.FormFile("file")
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			fail(c, http.StatusRequestEntityTooLarge, ErrCodePayloadTooLarge, "file too large")
			return
		}
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "multipart field \"file\" required")
		return
	}
	if fh.Size > h.UploadMaxBytes {
		fail(c, http.StatusRequestEntityTooLarge, ErrCodePayloadTooLarge, "file too large")
		return
	}
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	contentType, allowed := storage.ContentTypeFor(ext)
	if !allowed {
		fail(c, http.StatusUnsupportedMediaType, ErrCodeUnsupportedMedia, "only jpg, jpeg, png, and gif are allowed")
		return
	}

	f, err := fh.Open()
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "unreadable upload")
		return
	}
	defer f.Close()

	sniffed, err := mimetype.DetectReader(f)
	if err != nil || !sniffed.Is(contentType) {
		fail(c, http.StatusUnsupportedMediaType, ErrCodeUnsupportedMedia, "file content does not match its extension")
		return
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "rewind upload")
		return
	}

	name := uuid.NewString() + ext
	if err := h.Files.Put(c.Request.Context(), name, f, fh.Size, contentType); err != nil {
		middleware.LoggerFrom(c).Error().Err(err).Str("object", name).Msg("store upload")
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not store file")
		return
	}
	ok(c, http.StatusCreated, UploadResponse{
		Name:        name,
		URL:         h.PublicBaseURL + strings.TrimRight(h.FilesPath, "/") + "/" + name,
		ContentType: contentType,
		Size:        fh.Size,
	})
}

// ServeUpload godoc
// @ID          serveUpload
// @Summary     Fetch an uploaded image
// @Tags        Uploads
// @Produce     image/jpeg,image/png,image/gif
// @Param       name  path  string  true  "Object name"
// @Success     200   {file}    file
// @Failure     404   {object}  handlers.ErrorResponse  "Not found"
// @Router      /uploads/files/{name} [get]
func (h *Handlers) ServeUpload(c *gin.Context) {
	name := c.Param("name")
	rc, info, err := h.Files.Open(c.Request.Context(), name)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) || errors.Is(err, storage.ErrInvalidKey) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "file not found")
			return
		}
		middleware.LoggerFrom(c).Error().Err(err).Str("object", name).Msg("open upload")
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not read file")
		return
	}
	defer rc.Close()

	contentType := info.ContentType
	if contentType == "" {
		contentType, _ = storage.ContentTypeFor(filepath.Ext(name))
	}
	c.DataFromReader(http.StatusOK, info.Size, contentType, rc, map[string]string{
		"Cache-Control":          "public, max-age=86400, immutable",
		"X-Content-Type-Options": "nosniff",
	})
}
