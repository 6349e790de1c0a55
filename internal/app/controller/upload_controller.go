package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	apperrors "github.com/taragold/taraerp-backend/internal/errors"
	"github.com/taragold/taraerp-backend/internal/middleware"
	"github.com/taragold/taraerp-backend/internal/storage"
)

type UploadController struct {
	storage *storage.S3Storage
}

func NewUploadController(storage *storage.S3Storage) *UploadController {
	return &UploadController{
		storage: storage,
	}
}

type PresignRequest struct {
	Filename    string `json:"filename" binding:"required"`
	ContentType string `json:"content_type" binding:"required"`
}

var imageContentTypes = []string{
	"image/jpeg",
	"image/jpg",
	"image/png",
	"image/webp",
}

// KYC documents are scans, so PDFs are accepted alongside images.
var documentContentTypes = append([]string{
	"application/pdf",
}, imageContentTypes...)

func (ctrl *UploadController) presign(
	c *gin.Context,
	allowedTypes []string,
	fn func(filename, contentType string) (*storage.PresignedURLResponse, error),
) {
	log := middleware.GetLoggerFromContext(c)

	var req PresignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid presign request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "The submitted information is not valid")
		return
	}

	if err := ctrl.storage.ValidateContentType(req.ContentType, allowedTypes); err != nil {
		log.Warn("Rejected content type", map[string]interface{}{
			"content_type": req.ContentType,
		})
		apperrors.BadRequest(c, apperrors.UploadInvalidFileType, "This file type is not allowed")
		return
	}

	response, err := fn(req.Filename, req.ContentType)
	if err != nil {
		log.Error("Failed to generate presigned URL", err, map[string]interface{}{
			"filename":     req.Filename,
			"content_type": req.ContentType,
		})
		apperrors.RespondWithError(c, http.StatusInternalServerError, apperrors.UploadFailed, "Failed to prepare the upload")
		return
	}

	log.Info("Presigned upload URL generated", map[string]interface{}{
		"filename": req.Filename,
		"key":      response.Key,
	})

	c.JSON(http.StatusOK, gin.H{
		"upload_url": response.UploadURL,
		"file_url":   response.FileURL,
		"key":        response.Key,
	})
}

// PresignKYCDocument issues an upload URL for a KYC document scan
// POST /api/v1/uploads/kyc-document
func (ctrl *UploadController) PresignKYCDocument(c *gin.Context) {
	ctrl.presign(c, documentContentTypes, ctrl.storage.PresignKYCDocument)
}

// PresignOrderAttachment issues an upload URL for an order design document
// POST /api/v1/uploads/order-attachment
func (ctrl *UploadController) PresignOrderAttachment(c *gin.Context) {
	ctrl.presign(c, documentContentTypes, ctrl.storage.PresignOrderAttachment)
}

// PresignPartnerPhoto issues an upload URL for a partner photo
// POST /api/v1/uploads/partner-photo
func (ctrl *UploadController) PresignPartnerPhoto(c *gin.Context) {
	ctrl.presign(c, imageContentTypes, ctrl.storage.PresignPartnerPhoto)
}
