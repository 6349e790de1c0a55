package errors

// Error code constants.
// Format: CATEGORY_SPECIFIC_DETAIL
// Frontends map these codes to localized messages.

const (
	// ==================== Auth (AUTH_) ====================
	AuthUnauthorized       = "AUTH_UNAUTHORIZED"        // login required
	AuthInvalidCredentials = "AUTH_INVALID_CREDENTIALS" // wrong email/password
	AuthTokenExpired       = "AUTH_TOKEN_EXPIRED"
	AuthTokenInvalid       = "AUTH_TOKEN_INVALID"
	AuthTokenRevoked       = "AUTH_TOKEN_REVOKED"
	AuthEmailAlreadyExists = "AUTH_EMAIL_EXISTS"
	AuthOTPInvalid         = "AUTH_OTP_INVALID"
	AuthOTPExpired         = "AUTH_OTP_EXPIRED"
	AuthOTPNotVerified     = "AUTH_OTP_NOT_VERIFIED"
	AuthOTPThrottled       = "AUTH_OTP_THROTTLED" // resend requested too soon

	// ==================== Authorization (AUTHZ_) ====================
	AuthzForbidden    = "AUTHZ_FORBIDDEN"
	AuthzAccessDenied = "AUTHZ_ACCESS_DENIED"
	AuthzRoleNotFound = "AUTHZ_ROLE_NOT_FOUND"
	AuthzAdminOnly    = "AUTHZ_ADMIN_ONLY"

	// ==================== Validation (VALIDATION_) ====================
	ValidationInvalidInput  = "VALIDATION_INVALID_INPUT"
	ValidationInvalidID     = "VALIDATION_INVALID_ID"
	ValidationInvalidFormat = "VALIDATION_INVALID_FORMAT"
	ValidationRequired      = "VALIDATION_REQUIRED"

	// ==================== Resource (RESOURCE_) ====================
	ResourceNotFound      = "RESOURCE_NOT_FOUND"
	ResourceAlreadyExists = "RESOURCE_ALREADY_EXISTS"
	ResourceConflict      = "RESOURCE_CONFLICT"

	// ==================== Business partner (PARTNER_) ====================
	PartnerNotFound      = "PARTNER_NOT_FOUND"
	PartnerMobileExists  = "PARTNER_MOBILE_EXISTS"
	PartnerInvalidRole   = "PARTNER_INVALID_ROLE"
	PartnerNotApproved   = "PARTNER_NOT_APPROVED"
	PartnerAlreadyExists = "PARTNER_ALREADY_EXISTS"

	// ==================== KYC (KYC_) ====================
	KYCNotFound      = "KYC_NOT_FOUND"
	KYCInvalidPAN    = "KYC_INVALID_PAN"
	KYCInvalidGST    = "KYC_INVALID_GST"
	KYCInvalidIFSC   = "KYC_INVALID_IFSC"
	KYCInvalidAadhar = "KYC_INVALID_AADHAR"
	KYCInvalidMSME   = "KYC_INVALID_MSME"
	KYCFrozen        = "KYC_FROZEN"
	KYCRevoked       = "KYC_REVOKED"

	// ==================== Order (ORDER_) ====================
	OrderNotFound         = "ORDER_NOT_FOUND"
	OrderInvalidState     = "ORDER_INVALID_STATE"
	OrderInvalidDueDate   = "ORDER_INVALID_DUE_DATE"
	OrderCraftsmanUnknown = "ORDER_CRAFTSMAN_UNKNOWN"
	OrderReasonRequired   = "ORDER_REASON_REQUIRED"
	OrderInvalidReason    = "ORDER_INVALID_REASON"

	// ==================== Notification (NOTIFICATION_) ====================
	NotificationNotFound = "NOTIFICATION_NOT_FOUND"

	// ==================== Upload (UPLOAD_) ====================
	UploadInvalidFileType = "UPLOAD_INVALID_FILE_TYPE"
	UploadFileTooLarge    = "UPLOAD_FILE_TOO_LARGE"
	UploadFailed          = "UPLOAD_FAILED"

	// ==================== Internal (INTERNAL_) ====================
	InternalServerError   = "INTERNAL_SERVER_ERROR"
	InternalDatabaseError = "INTERNAL_DATABASE_ERROR"
	InternalExternalAPI   = "INTERNAL_EXTERNAL_API"
	InternalConfigError   = "INTERNAL_CONFIG_ERROR"
)
