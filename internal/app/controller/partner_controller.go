package controller

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/taragold/taraerp-backend/internal/app/model"
	"github.com/taragold/taraerp-backend/internal/app/service"
	apperrors "github.com/taragold/taraerp-backend/internal/errors"
	"github.com/taragold/taraerp-backend/internal/middleware"
)

type PartnerController struct {
	partnerService service.PartnerService
}

func NewPartnerController(partnerService service.PartnerService) *PartnerController {
	return &PartnerController{
		partnerService: partnerService,
	}
}

type RegisterPartnerRequest struct {
	BusinessName  string `json:"business_name" binding:"required"`
	Role          string `json:"role" binding:"required"`
	ContactPerson string `json:"contact_person"`
	Mobile        string `json:"mobile" binding:"required"`
	Email         string `json:"email" binding:"omitempty,email"`
	BusinessEmail string `json:"business_email" binding:"omitempty,email"`
	Address       string `json:"address"`
	Pincode       string `json:"pincode"`
	City          string `json:"city"`
	State         string `json:"state"`
	CreditTerms   string `json:"credit_terms"`
}

type UpdatePartnerRequest struct {
	BusinessName  *string `json:"business_name"`
	ContactPerson *string `json:"contact_person"`
	Mobile        *string `json:"mobile"`
	Email         *string `json:"email"`
	BusinessEmail *string `json:"business_email"`
	Address       *string `json:"address"`
	Pincode       *string `json:"pincode"`
	CreditTerms   *string `json:"credit_terms"`
}

// respondPartnerError maps the partner service sentinels onto HTTP responses.
func respondPartnerError(c *gin.Context, err error, context string) {
	switch {
	case errors.Is(err, service.ErrPartnerNotFound):
		apperrors.NotFound(c, apperrors.PartnerNotFound, "Business partner not found")
	case errors.Is(err, service.ErrPartnerExists):
		apperrors.Conflict(c, apperrors.PartnerMobileExists, "A partner with this mobile number already exists")
	case errors.Is(err, service.ErrPartnerEmailExists):
		apperrors.Conflict(c, apperrors.PartnerAlreadyExists, "A partner with this email already exists")
	case errors.Is(err, service.ErrBusinessNameRequired):
		apperrors.BadRequest(c, apperrors.ValidationRequired, "Business name is required")
	case errors.Is(err, service.ErrInvalidPartnerRole):
		apperrors.BadRequest(c, apperrors.PartnerInvalidRole, "Partner role must be BUYER or CRAFTSMAN")
	case errors.Is(err, service.ErrInvalidMobile):
		apperrors.BadRequest(c, apperrors.ValidationInvalidFormat, "Mobile number must be 10 to 15 digits")
	case errors.Is(err, service.ErrInvalidCreditTerms):
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Credit terms must be one of T1, T2, T3 or CH")
	case errors.Is(err, service.ErrPermissionDenied):
		apperrors.Forbidden(c, "You do not have permission to perform this action")
	case errors.Is(err, service.ErrPartnerNotCraftsman):
		apperrors.Conflict(c, apperrors.ResourceConflict, "The partner has already been converted to a craftsman")
	default:
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, context)
	}
}

// Register creates a new business partner and issues its code
// POST /api/v1/partners
func (ctrl *PartnerController) Register(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req RegisterPartnerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid partner registration request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "The submitted information is not valid")
		return
	}

	log.Debug("Processing partner registration", map[string]interface{}{
		"business_name": req.BusinessName,
		"role":          req.Role,
	})

	input := service.RegisterPartnerInput{
		BusinessName:  req.BusinessName,
		Role:          model.PartnerRole(strings.ToUpper(req.Role)),
		ContactPerson: req.ContactPerson,
		Mobile:        req.Mobile,
		Email:         req.Email,
		BusinessEmail: req.BusinessEmail,
		Address:       req.Address,
		Pincode:       req.Pincode,
		City:          req.City,
		State:         req.State,
		CreditTerms:   model.CreditTerms(req.CreditTerms),
	}

	partner, err := ctrl.partnerService.Register(input, middleware.GetActor(c))
	if err != nil {
		log.Warn("Partner registration failed", map[string]interface{}{
			"business_name": req.BusinessName,
			"error":         err.Error(),
		})
		respondPartnerError(c, err, "register partner")
		return
	}

	log.Info("Business partner registered", map[string]interface{}{
		"bp_code":       partner.BPCode,
		"business_name": partner.BusinessName,
		"role":          partner.Role,
	})

	c.JSON(http.StatusCreated, gin.H{
		"message": "Business partner registered successfully",
		"partner": partner,
	})
}

// List returns partners, optionally filtered by role and status
// GET /api/v1/partners?role=BUYER&status=approved
func (ctrl *PartnerController) List(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	role := model.PartnerRole(strings.ToUpper(c.Query("role")))
	status := model.PartnerStatus(c.Query("status"))

	partners, err := ctrl.partnerService.List(role, status)
	if err != nil {
		log.Error("Failed to list partners", err, map[string]interface{}{
			"role":   role,
			"status": status,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "list partners")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"partners": partners,
		"count":    len(partners),
	})
}

// Get returns a single partner by its code
// GET /api/v1/partners/:bp_code
func (ctrl *PartnerController) Get(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	bpCode := c.Param("bp_code")

	partner, err := ctrl.partnerService.GetByBPCode(bpCode)
	if err != nil {
		if errors.Is(err, service.ErrPartnerNotFound) {
			apperrors.NotFound(c, apperrors.PartnerNotFound, "Business partner not found")
			return
		}
		log.Error("Failed to get partner", err, map[string]interface{}{
			"bp_code": bpCode,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "get partner")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"partner": partner,
	})
}

// Update patches partner fields
// PUT /api/v1/partners/:bp_code
func (ctrl *PartnerController) Update(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	bpCode := c.Param("bp_code")

	var req UpdatePartnerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid partner update request", map[string]interface{}{
			"bp_code": bpCode,
			"error":   err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "The submitted information is not valid")
		return
	}

	input := service.UpdatePartnerInput{
		BusinessName:  req.BusinessName,
		ContactPerson: req.ContactPerson,
		Mobile:        req.Mobile,
		Email:         req.Email,
		BusinessEmail: req.BusinessEmail,
		Address:       req.Address,
		Pincode:       req.Pincode,
	}
	if req.CreditTerms != nil {
		terms := model.CreditTerms(*req.CreditTerms)
		input.CreditTerms = &terms
	}

	partner, err := ctrl.partnerService.Update(bpCode, input)
	if err != nil {
		log.Warn("Partner update failed", map[string]interface{}{
			"bp_code": bpCode,
			"error":   err.Error(),
		})
		respondPartnerError(c, err, "update partner")
		return
	}

	log.Info("Business partner updated", map[string]interface{}{
		"bp_code": partner.BPCode,
	})

	c.JSON(http.StatusOK, gin.H{
		"message": "Business partner updated successfully",
		"partner": partner,
	})
}

// Approve marks a pending partner as approved for ordering
// POST /api/v1/partners/:bp_code/approve
func (ctrl *PartnerController) Approve(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	bpCode := c.Param("bp_code")

	partner, err := ctrl.partnerService.Approve(bpCode)
	if err != nil {
		log.Warn("Partner approval failed", map[string]interface{}{
			"bp_code": bpCode,
			"error":   err.Error(),
		})
		respondPartnerError(c, err, "approve partner")
		return
	}

	log.Info("Business partner approved", map[string]interface{}{
		"bp_code": partner.BPCode,
	})

	c.JSON(http.StatusOK, gin.H{
		"message": "Business partner approved",
		"partner": partner,
	})
}

// ConvertToCraftsman creates a craftsman record from an existing buyer
// POST /api/v1/partners/:bp_code/convert
func (ctrl *PartnerController) ConvertToCraftsman(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	bpCode := c.Param("bp_code")

	partner, err := ctrl.partnerService.ConvertToCraftsman(bpCode, middleware.GetActor(c))
	if err != nil {
		log.Warn("Partner conversion failed", map[string]interface{}{
			"bp_code": bpCode,
			"error":   err.Error(),
		})
		respondPartnerError(c, err, "convert partner")
		return
	}

	log.Info("Buyer converted to craftsman", map[string]interface{}{
		"bp_code":     bpCode,
		"new_bp_code": partner.BPCode,
	})

	c.JSON(http.StatusCreated, gin.H{
		"message": "Partner converted to craftsman",
		"partner": partner,
	})
}

// Delete soft-deletes a partner; its code is never reissued
// DELETE /api/v1/partners/:bp_code
func (ctrl *PartnerController) Delete(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	bpCode := c.Param("bp_code")

	if err := ctrl.partnerService.Delete(bpCode); err != nil {
		log.Warn("Partner deletion failed", map[string]interface{}{
			"bp_code": bpCode,
			"error":   err.Error(),
		})
		respondPartnerError(c, err, "delete partner")
		return
	}

	log.Info("Business partner deleted", map[string]interface{}{
		"bp_code": bpCode,
	})

	c.JSON(http.StatusOK, gin.H{
		"message": "Business partner deleted",
	})
}
