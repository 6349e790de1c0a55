// Package validate holds format checks for Indian statutory identifiers.
package validate

import "regexp"

var (
	panPattern    = regexp.MustCompile(`^[A-Z]{5}[0-9]{4}[A-Z]$`)
	gstPattern    = regexp.MustCompile(`^[0-3][0-9][A-Z]{5}[0-9]{4}[A-Z][0-9A-Z]Z[0-9A-Z]$`)
	aadharPattern = regexp.MustCompile(`^[0-9]{12}$`)
	ifscPattern   = regexp.MustCompile(`^[A-Z]{4}[0-9]{7}$`)
	msmePattern   = regexp.MustCompile(`^[Uu][Dd][Yy]\d{2}[A-Za-z]{3}\d{7}$`)
	mobilePattern = regexp.MustCompile(`^[0-9]{10,15}$`)
)

// PAN reports whether s is a valid permanent account number.
func PAN(s string) bool {
	return panPattern.MatchString(s)
}

// GST reports whether s is a valid GST registration number.
func GST(s string) bool {
	return gstPattern.MatchString(s)
}

// Aadhar reports whether s is a valid 12-digit Aadhar number.
func Aadhar(s string) bool {
	return aadharPattern.MatchString(s)
}

// IFSC reports whether s is a valid bank IFSC code.
func IFSC(s string) bool {
	return ifscPattern.MatchString(s)
}

// MSME reports whether s is a valid Udyam registration number.
func MSME(s string) bool {
	return msmePattern.MatchString(s)
}

// Mobile reports whether s is a plausible mobile number (10 to 15 digits).
func Mobile(s string) bool {
	return mobilePattern.MatchString(s)
}
