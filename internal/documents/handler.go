package documents

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"pulsechain-backend/internal/shared/server/middleware"
	"pulsechain-backend/internal/shared/server/respond"
	"pulsechain-backend/internal/shared/telemetry"
)

// multipart boundary and metadata fields ride alongside the file.
const uploadBodyOverhead = 1 << 20

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches document routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/documents/upload", h.upload)
	rg.GET("/documents", h.list)
	rg.GET("/documents/:id", h.get)
	rg.DELETE("/documents/:id", h.remove)
	rg.GET("/documents/:id/download", h.download)
}

func (h *Handler) upload(c *gin.Context) {
	ownerID := middleware.UserIDFromContext(c)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.Svc.Validator.MaxBytes()+uploadBodyOverhead)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, ErrorCodeValidation, "file is required", nil)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, ErrorCodeValidation, "unable to read file", nil)
		return
	}
	defer file.Close()

	doc, err := h.Svc.Upload(c.Request.Context(), ownerID, UploadInput{
		File:     file,
		FileName: fileHeader.Filename,
		MimeType: fileHeader.Header.Get("Content-Type"),
		Size:     fileHeader.Size,
		Title:    c.PostForm("title"),
		Category: c.PostForm("category"),
		Date:     c.PostForm("date"),
		Tags:     c.PostForm("tags"),
	})
	if err != nil {
		var verr *ValidationError
		switch {
		case errors.As(err, &verr):
			respond.Error(c, http.StatusBadRequest, ErrorCodeValidation, verr.Error(), gin.H{"reason": verr.Reason})
		case errors.Is(err, ErrExtractionFailed):
			respond.Error(c, http.StatusBadRequest, ErrorCodeExtraction, "no extractable text in document", nil)
		case errors.Is(err, ErrOCRUnavailable):
			respond.Error(c, http.StatusBadGateway, ErrorCodeOCRGateway, "text recognition service unavailable", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, ErrorCodePersistence, "failed to store document", nil)
		}
		return
	}

	c.Set("documentId", doc.ID)
	respond.JSON(c, http.StatusCreated, toResponse(doc))
}

func (h *Handler) list(c *gin.Context) {
	ownerID := middleware.UserIDFromContext(c)

	docs, err := h.Svc.List(c.Request.Context(), ownerID)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, ErrorCodePersistence, "failed to list documents", nil)
		return
	}

	resp := make([]DocumentResponse, 0, len(docs))
	for _, doc := range docs {
		resp = append(resp, toResponse(doc))
	}
	respond.OK(c, resp)
}

func (h *Handler) get(c *gin.Context) {
	ownerID := middleware.UserIDFromContext(c)

	doc, err := h.Svc.Get(c.Request.Context(), ownerID, c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, ErrorCodeNotFound, "document not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, ErrorCodePersistence, "failed to fetch document", nil)
		return
	}
	respond.OK(c, toDetail(doc))
}

func (h *Handler) remove(c *gin.Context) {
	ownerID := middleware.UserIDFromContext(c)

	if err := h.Svc.Delete(c.Request.Context(), ownerID, c.Param("id")); err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, ErrorCodeNotFound, "document not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, ErrorCodePersistence, "failed to delete document", nil)
		return
	}
	respond.OK(c, gin.H{"message": "document deleted"})
}

func (h *Handler) download(c *gin.Context) {
	ownerID := middleware.UserIDFromContext(c)

	doc, rc, err := h.Svc.Download(c.Request.Context(), ownerID, c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, ErrorCodeNotFound, "document not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, ErrorCodePersistence, "failed to open document", nil)
		return
	}
	defer rc.Close()

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.FileName))
	c.Header("Content-Type", contentTypeFor(doc.FileName))
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, rc); err != nil {
		// Headers are already out; nothing left to do but log.
		telemetry.Error("document.download", map[string]any{"document_id": doc.ID, "error": err.Error()})
	}
}

func contentTypeFor(fileName string) string {
	if byExt := mime.TypeByExtension(filepath.Ext(fileName)); byExt != "" {
		return byExt
	}
	return "application/octet-stream"
}
