package errors

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// ErrorInfo is a parsed error ready for the wire.
type ErrorInfo struct {
	Code    string
	Message string
}

// ParseError converts database and network errors into stable codes.
// Sensitive driver details are never forwarded to the client.
func ParseError(err error, context string) ErrorInfo {
	if err == nil {
		return ErrorInfo{
			Code:    InternalServerError,
			Message: "an internal error occurred",
		}
	}

	errStr := err.Error()
	errStrLower := strings.ToLower(errStr)

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrorInfo{
			Code:    ResourceNotFound,
			Message: getNotFoundMessage(context),
		}
	}

	// PostgreSQL constraint violations.

	// unique_violation (23505)
	if strings.Contains(errStrLower, "duplicate key") || strings.Contains(errStrLower, "unique constraint") {
		return parseDuplicateKeyError(errStr)
	}

	// foreign_key_violation (23503)
	if strings.Contains(errStrLower, "foreign key constraint") {
		return ErrorInfo{
			Code:    ResourceConflict,
			Message: "the record is referenced by other data",
		}
	}

	// not_null_violation (23502)
	if strings.Contains(errStrLower, "null value") && strings.Contains(errStrLower, "violates not-null constraint") {
		return ErrorInfo{
			Code:    ValidationRequired,
			Message: "a required field is missing",
		}
	}

	if strings.Contains(errStrLower, "connection refused") ||
		strings.Contains(errStrLower, "no such host") ||
		strings.Contains(errStrLower, "timeout") {
		return ErrorInfo{
			Code:    InternalExternalAPI,
			Message: "an external service is unavailable, please try again later",
		}
	}

	return ErrorInfo{
		Code:    InternalServerError,
		Message: "an internal error occurred, please try again later",
	}
}

func parseDuplicateKeyError(errStr string) ErrorInfo {
	errLower := strings.ToLower(errStr)

	if strings.Contains(errLower, "bp_code") || strings.Contains(errLower, "idx_business_partners_bp_code") {
		return ErrorInfo{
			Code:    PartnerAlreadyExists,
			Message: "a partner with this code already exists",
		}
	}

	if strings.Contains(errLower, "mobile") || strings.Contains(errLower, "idx_business_partners_mobile") {
		return ErrorInfo{
			Code:    PartnerMobileExists,
			Message: "this mobile number is already registered",
		}
	}

	if strings.Contains(errLower, "order_no") || strings.Contains(errLower, "idx_orders_order_no") {
		return ErrorInfo{
			Code:    ResourceAlreadyExists,
			Message: "this order number is already taken",
		}
	}

	if strings.Contains(errLower, "email") || strings.Contains(errLower, "idx_users_email") {
		return ErrorInfo{
			Code:    AuthEmailAlreadyExists,
			Message: "this email is already in use",
		}
	}

	if strings.Contains(errLower, "user_code") || strings.Contains(errLower, "idx_users_user_code") {
		return ErrorInfo{
			Code:    ResourceAlreadyExists,
			Message: "this user code is already taken",
		}
	}

	return ErrorInfo{
		Code:    ResourceAlreadyExists,
		Message: "the record already exists",
	}
}

// ParseAndRespond parses err and writes the standard error payload.
// When the error maps to a not-found condition the status is adjusted to 404.
func ParseAndRespond(c interface{ JSON(int, interface{}) }, statusCode int, err error, context string) {
	errorInfo := ParseError(err, context)
	if errorInfo.Code == ResourceNotFound {
		statusCode = 404
	}
	c.JSON(statusCode, ErrorResponse{
		Error:   errorInfo.Code,
		Message: errorInfo.Message,
	})
}

func getNotFoundMessage(context string) string {
	contextLower := strings.ToLower(context)

	if strings.Contains(contextLower, "partner") {
		return "business partner not found"
	}
	if strings.Contains(contextLower, "kyc") {
		return "KYC record not found"
	}
	if strings.Contains(contextLower, "order") {
		return "order not found"
	}
	if strings.Contains(contextLower, "user") {
		return "user not found"
	}
	if strings.Contains(contextLower, "notification") {
		return "notification not found"
	}

	return "the requested record was not found"
}
