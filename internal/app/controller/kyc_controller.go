package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/taragold/taraerp-backend/internal/app/service"
	apperrors "github.com/taragold/taraerp-backend/internal/errors"
	"github.com/taragold/taraerp-backend/internal/middleware"
)

type KYCController struct {
	kycService service.KYCService
}

func NewKYCController(kycService service.KYCService) *KYCController {
	return &KYCController{
		kycService: kycService,
	}
}

// UpsertKYCRequest carries KYC fields. Omitted fields are untouched;
// an empty string clears the field.
type UpsertKYCRequest struct {
	BisNo          *string `json:"bis_no"`
	BisAttachment  *string `json:"bis_attachment"`
	GstNo          *string `json:"gst_no"`
	GstAttachment  *string `json:"gst_attachment"`
	MsmeNo         *string `json:"msme_no"`
	MsmeAttachment *string `json:"msme_attachment"`
	PanNo          *string `json:"pan_no"`
	PanAttachment  *string `json:"pan_attachment"`
	TanNo          *string `json:"tan_no"`
	TanAttachment  *string `json:"tan_attachment"`
	Image          *string `json:"image"`
	Name           *string `json:"name"`
	AadharNo       *string `json:"aadhar_no"`
	AadharAttach   *string `json:"aadhar_attach"`
	BankName       *string `json:"bank_name"`
	AccountName    *string `json:"account_name"`
	AccountNo      *string `json:"account_no"`
	IfscCode       *string `json:"ifsc_code"`
	Branch         *string `json:"branch"`
	BankCity       *string `json:"bank_city"`
	BankState      *string `json:"bank_state"`
	Note           *string `json:"note"`
}

func respondKYCError(c *gin.Context, err error, context string) {
	switch {
	case errors.Is(err, service.ErrPartnerNotFound):
		apperrors.NotFound(c, apperrors.PartnerNotFound, "Business partner not found")
	case errors.Is(err, service.ErrKYCNotFound):
		apperrors.NotFound(c, apperrors.KYCNotFound, "No KYC record exists for this partner")
	case errors.Is(err, service.ErrInvalidPAN):
		apperrors.BadRequest(c, apperrors.KYCInvalidPAN, "PAN number format is invalid")
	case errors.Is(err, service.ErrInvalidGST):
		apperrors.BadRequest(c, apperrors.KYCInvalidGST, "GST number format is invalid")
	case errors.Is(err, service.ErrInvalidAadhar):
		apperrors.BadRequest(c, apperrors.KYCInvalidAadhar, "Aadhar number must be 12 digits")
	case errors.Is(err, service.ErrInvalidIFSC):
		apperrors.BadRequest(c, apperrors.KYCInvalidIFSC, "IFSC code format is invalid")
	case errors.Is(err, service.ErrInvalidMSME):
		apperrors.BadRequest(c, apperrors.KYCInvalidMSME, "MSME registration number format is invalid")
	case errors.Is(err, service.ErrKYCNotFreezed):
		apperrors.Conflict(c, apperrors.ResourceConflict, "The KYC record is not freezed")
	default:
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, context)
	}
}

// Get returns the KYC record for a partner
// GET /api/v1/partners/:bp_code/kyc
func (ctrl *KYCController) Get(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	bpCode := c.Param("bp_code")

	kyc, err := ctrl.kycService.GetByBPCode(bpCode)
	if err != nil {
		log.Warn("Failed to get KYC record", map[string]interface{}{
			"bp_code": bpCode,
			"error":   err.Error(),
		})
		respondKYCError(c, err, "get kyc")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"kyc": kyc,
	})
}

// Upsert creates or patches the KYC record for a partner
// PUT /api/v1/partners/:bp_code/kyc
func (ctrl *KYCController) Upsert(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	bpCode := c.Param("bp_code")

	var req UpsertKYCRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid KYC request", map[string]interface{}{
			"bp_code": bpCode,
			"error":   err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "The submitted information is not valid")
		return
	}

	input := service.KYCInput{
		BisNo:          req.BisNo,
		BisAttachment:  req.BisAttachment,
		GstNo:          req.GstNo,
		GstAttachment:  req.GstAttachment,
		MsmeNo:         req.MsmeNo,
		MsmeAttachment: req.MsmeAttachment,
		PanNo:          req.PanNo,
		PanAttachment:  req.PanAttachment,
		TanNo:          req.TanNo,
		TanAttachment:  req.TanAttachment,
		Image:          req.Image,
		Name:           req.Name,
		AadharNo:       req.AadharNo,
		AadharAttach:   req.AadharAttach,
		BankName:       req.BankName,
		AccountName:    req.AccountName,
		AccountNo:      req.AccountNo,
		IfscCode:       req.IfscCode,
		Branch:         req.Branch,
		BankCity:       req.BankCity,
		BankState:      req.BankState,
		Note:           req.Note,
	}

	kyc, err := ctrl.kycService.Upsert(bpCode, input)
	if err != nil {
		log.Warn("KYC upsert failed", map[string]interface{}{
			"bp_code": bpCode,
			"error":   err.Error(),
		})
		respondKYCError(c, err, "upsert kyc")
		return
	}

	log.Info("KYC record saved", map[string]interface{}{
		"bp_code": bpCode,
		"status":  kyc.Status,
	})

	c.JSON(http.StatusOK, gin.H{
		"message": "KYC record saved",
		"kyc":     kyc,
	})
}

// Freeze blocks new orders for the partner until unfrozen
// POST /api/v1/partners/:bp_code/kyc/freeze
func (ctrl *KYCController) Freeze(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	bpCode := c.Param("bp_code")

	kyc, err := ctrl.kycService.Freeze(bpCode)
	if err != nil {
		log.Warn("KYC freeze failed", map[string]interface{}{
			"bp_code": bpCode,
			"error":   err.Error(),
		})
		respondKYCError(c, err, "freeze kyc")
		return
	}

	log.Info("KYC record freezed", map[string]interface{}{
		"bp_code": bpCode,
	})

	c.JSON(http.StatusOK, gin.H{
		"message": "KYC record freezed",
		"kyc":     kyc,
	})
}

// Unfreeze lifts a freeze
// POST /api/v1/partners/:bp_code/kyc/unfreeze
func (ctrl *KYCController) Unfreeze(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	bpCode := c.Param("bp_code")

	kyc, err := ctrl.kycService.Unfreeze(bpCode)
	if err != nil {
		log.Warn("KYC unfreeze failed", map[string]interface{}{
			"bp_code": bpCode,
			"error":   err.Error(),
		})
		respondKYCError(c, err, "unfreeze kyc")
		return
	}

	log.Info("KYC record unfreezed", map[string]interface{}{
		"bp_code": bpCode,
	})

	c.JSON(http.StatusOK, gin.H{
		"message": "KYC record unfreezed",
		"kyc":     kyc,
	})
}

// Revoke permanently withdraws KYC approval
// POST /api/v1/partners/:bp_code/kyc/revoke
func (ctrl *KYCController) Revoke(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	bpCode := c.Param("bp_code")

	kyc, err := ctrl.kycService.Revoke(bpCode)
	if err != nil {
		log.Warn("KYC revoke failed", map[string]interface{}{
			"bp_code": bpCode,
			"error":   err.Error(),
		})
		respondKYCError(c, err, "revoke kyc")
		return
	}

	log.Info("KYC record revoked", map[string]interface{}{
		"bp_code": bpCode,
	})

	c.JSON(http.StatusOK, gin.H{
		"message": "KYC record revoked",
		"kyc":     kyc,
	})
}
