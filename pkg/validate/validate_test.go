package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPAN(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"Valid PAN", "ABCDE1234F", true},
		{"Lowercase letters", "abcde1234f", false},
		{"Too short", "ABCD1234F", false},
		{"Digits in prefix", "AB1DE1234F", false},
		{"Missing suffix letter", "ABCDE12345", false},
		{"Empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PAN(tt.input))
		})
	}
}

func TestGST(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"Valid GST", "27ABCDE1234F1Z5", true},
		{"State code out of range", "47ABCDE1234F1Z5", false},
		{"Missing Z marker", "27ABCDE1234F1X5", false},
		{"Too short", "27ABCDE1234F1Z", false},
		{"Empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GST(tt.input))
		})
	}
}

func TestAadhar(t *testing.T) {
	assert.True(t, Aadhar("123456789012"))
	assert.False(t, Aadhar("12345678901"))
	assert.False(t, Aadhar("1234567890123"))
	assert.False(t, Aadhar("12345678901a"))
}

func TestIFSC(t *testing.T) {
	assert.True(t, IFSC("HDFC0001234"))
	assert.False(t, IFSC("HDFC001234"))
	assert.False(t, IFSC("hdfc0001234"))
	assert.False(t, IFSC(""))
}

func TestMSME(t *testing.T) {
	assert.True(t, MSME("UDY12ABC1234567"))
	assert.True(t, MSME("udy12abc1234567"))
	assert.False(t, MSME("ABC12DEF1234567"))
	assert.False(t, MSME("UDY12ABC123456"))
}

func TestMobile(t *testing.T) {
	assert.True(t, Mobile("9876543210"))
	assert.True(t, Mobile("919876543210"))
	assert.False(t, Mobile("987654321"))
	assert.False(t, Mobile("98765432101234567"))
	assert.False(t, Mobile("98765x3210"))
}
