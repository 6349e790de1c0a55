// Package codegen issues the short business codes used across the system:
// partner codes (BA001), order numbers (001) and user codes (AD-0001).
// Formatting and parsing are pure; callers serialize issuance with a
// KeyedMutex and back it with unique database constraints.
package codegen

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/taragold/taraerp-backend/internal/app/model"
)

// PartnerCodePrefix derives the two-character prefix for a partner code:
// 'B' for buyers, 'A' for craftsmen, followed by the uppercased first
// letter of the business name.
func PartnerCodePrefix(role model.PartnerRole, businessName string) (string, error) {
	name := strings.TrimSpace(businessName)
	if name == "" {
		return "", fmt.Errorf("business name is required")
	}

	var roleChar byte
	switch role {
	case model.PartnerRoleBuyer:
		roleChar = 'B'
	case model.PartnerRoleCraftsman:
		roleChar = 'A'
	default:
		return "", fmt.Errorf("unknown partner role %q", role)
	}

	first, _ := utf8.DecodeRuneInString(name)
	return fmt.Sprintf("%c%c", roleChar, unicode.ToUpper(first)), nil
}

// FormatPartnerCode renders a partner code from its prefix and sequence.
func FormatPartnerCode(prefix string, seq int) string {
	return fmt.Sprintf("%s%03d", prefix, seq)
}

// SeqFromPartnerCode extracts the sequence from a code carrying the given
// prefix. Codes with other prefixes belong to a different sequence scope.
func SeqFromPartnerCode(code, prefix string) (int, bool) {
	if !strings.HasPrefix(code, prefix) {
		return 0, false
	}
	n, err := strconv.Atoi(code[len(prefix):])
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// FormatOrderNo renders a zero-padded order number.
func FormatOrderNo(seq int) string {
	return fmt.Sprintf("%03d", seq)
}

// SeqFromOrderNo extracts the numeric sequence from an order number.
// Historical numbers carried a letter prefix (e.g. WR012); the leading
// letters are ignored so the sequence keeps advancing past them.
func SeqFromOrderNo(orderNo string) (int, bool) {
	i := 0
	for i < len(orderNo) && !unicode.IsDigit(rune(orderNo[i])) {
		i++
	}
	if i == len(orderNo) {
		return 0, false
	}
	n, err := strconv.Atoi(orderNo[i:])
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// FormatUserCode renders a user code from its role prefix and sequence.
func FormatUserCode(prefix string, seq int) string {
	return fmt.Sprintf("%s-%04d", prefix, seq)
}

// SeqFromUserCode extracts the sequence from a user code with the given
// role prefix.
func SeqFromUserCode(code, prefix string) (int, bool) {
	rest, found := strings.CutPrefix(code, prefix+"-")
	if !found {
		return 0, false
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
