package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taragold/taraerp-backend/internal/app/codegen"
	"github.com/taragold/taraerp-backend/internal/app/model"
	"github.com/taragold/taraerp-backend/internal/app/repository"
	"github.com/taragold/taraerp-backend/internal/db"
	"gorm.io/gorm"
)

func setupKYCServiceTest(t *testing.T) (KYCService, PartnerService, *gorm.DB) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	partnerRepo := repository.NewPartnerRepository(testDB)
	kycRepo := repository.NewKYCRepository(testDB)
	kycService := NewKYCService(kycRepo, partnerRepo, nil)
	partnerService := NewPartnerService(partnerRepo, codegen.NewKeyedMutex())

	return kycService, partnerService, testDB
}

func strPtr(s string) *string { return &s }

// completeKYCInput fills every field the completeness check looks at.
func completeKYCInput() KYCInput {
	return KYCInput{
		BisNo:          strPtr("HM123456"),
		BisAttachment:  strPtr("https://files.example.com/bis.pdf"),
		GstNo:          strPtr("27AAPFU0939F1ZV"),
		GstAttachment:  strPtr("https://files.example.com/gst.pdf"),
		MsmeNo:         strPtr("UDY01MHX1234567"),
		MsmeAttachment: strPtr("https://files.example.com/msme.pdf"),
		PanNo:          strPtr("AAPFU0939F"),
		PanAttachment:  strPtr("https://files.example.com/pan.pdf"),
		TanNo:          strPtr("MUMA12345B"),
		TanAttachment:  strPtr("https://files.example.com/tan.pdf"),
		Image:          strPtr("https://files.example.com/photo.jpg"),
		Name:           strPtr("Golden House Pvt Ltd"),
		AadharNo:       strPtr("123412341234"),
		AadharAttach:   strPtr("https://files.example.com/aadhar.pdf"),
		BankName:       strPtr("State Bank of India"),
		AccountName:    strPtr("Golden House"),
		AccountNo:      strPtr("00123456789"),
		IfscCode:       strPtr("SBIN0001234"),
		Branch:         strPtr("Zaveri Bazaar"),
		BankCity:       strPtr("Mumbai"),
		BankState:      strPtr("Maharashtra"),
		Note:           strPtr("Verified against originals"),
	}
}

func TestKYCService_Upsert_Lifecycle(t *testing.T) {
	kycService, partnerService, _ := setupKYCServiceTest(t)
	partner := registerTestBuyer(t, partnerService, "Golden House", "9876543210")

	// Partial record stays pending
	kyc, err := kycService.Upsert(partner.BPCode, KYCInput{
		PanNo: strPtr("AAPFU0939F"),
		Name:  strPtr("Golden House Pvt Ltd"),
	})
	require.NoError(t, err)
	assert.Equal(t, model.KYCStatusPending, kyc.Status)

	synced, err := partnerService.GetByBPCode(partner.BPCode)
	require.NoError(t, err)
	assert.Equal(t, model.PartnerStatusPending, synced.Status)

	// Completing the record approves KYC and the partner with it
	kyc, err = kycService.Upsert(partner.BPCode, completeKYCInput())
	require.NoError(t, err)
	assert.Equal(t, model.KYCStatusApproved, kyc.Status)

	synced, err = partnerService.GetByBPCode(partner.BPCode)
	require.NoError(t, err)
	assert.Equal(t, model.PartnerStatusApproved, synced.Status)

	// Blanking a field drops it back to pending
	kyc, err = kycService.Upsert(partner.BPCode, KYCInput{Branch: strPtr("")})
	require.NoError(t, err)
	assert.Equal(t, model.KYCStatusPending, kyc.Status)

	// The note counts toward completeness like every other field
	withoutNote := completeKYCInput()
	withoutNote.Note = strPtr("")
	kyc, err = kycService.Upsert(partner.BPCode, withoutNote)
	require.NoError(t, err)
	assert.Equal(t, model.KYCStatusPending, kyc.Status)
}

func TestKYCService_Upsert_Validation(t *testing.T) {
	kycService, partnerService, _ := setupKYCServiceTest(t)
	partner := registerTestBuyer(t, partnerService, "Golden House", "9876543210")

	tests := []struct {
		name    string
		input   KYCInput
		wantErr error
	}{
		{name: "Bad PAN", input: KYCInput{PanNo: strPtr("12345ABCDE")}, wantErr: ErrInvalidPAN},
		{name: "Bad GST", input: KYCInput{GstNo: strPtr("INVALID-GST")}, wantErr: ErrInvalidGST},
		{name: "Bad Aadhar", input: KYCInput{AadharNo: strPtr("12AB")}, wantErr: ErrInvalidAadhar},
		{name: "Bad IFSC", input: KYCInput{IfscCode: strPtr("SB1234")}, wantErr: ErrInvalidIFSC},
		{name: "Bad MSME", input: KYCInput{MsmeNo: strPtr("NOPE")}, wantErr: ErrInvalidMSME},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kyc, err := kycService.Upsert(partner.BPCode, tt.input)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, kyc)
		})
	}

	// Nothing was written by the rejected updates
	_, err := kycService.GetByBPCode(partner.BPCode)
	assert.ErrorIs(t, err, ErrKYCNotFound)

	_, err = kycService.Upsert("ZZ999", KYCInput{})
	assert.ErrorIs(t, err, ErrPartnerNotFound)
}

func TestKYCService_FreezeUnfreeze(t *testing.T) {
	kycService, partnerService, _ := setupKYCServiceTest(t)
	partner := registerTestBuyer(t, partnerService, "Golden House", "9876543210")

	// No record to freeze yet
	_, err := kycService.Freeze(partner.BPCode)
	assert.ErrorIs(t, err, ErrKYCNotFound)

	_, err = kycService.Upsert(partner.BPCode, completeKYCInput())
	require.NoError(t, err)

	frozen, err := kycService.Freeze(partner.BPCode)
	require.NoError(t, err)
	assert.Equal(t, model.KYCStatusFreezed, frozen.Status)

	synced, err := partnerService.GetByBPCode(partner.BPCode)
	require.NoError(t, err)
	assert.Equal(t, model.PartnerStatusFreezed, synced.Status)

	// Unfreeze restores the derived status, here back to approved
	unfrozen, err := kycService.Unfreeze(partner.BPCode)
	require.NoError(t, err)
	assert.Equal(t, model.KYCStatusApproved, unfrozen.Status)

	_, err = kycService.Unfreeze(partner.BPCode)
	assert.ErrorIs(t, err, ErrKYCNotFreezed)
}

func TestKYCService_Revoke(t *testing.T) {
	kycService, partnerService, _ := setupKYCServiceTest(t)
	partner := registerTestBuyer(t, partnerService, "Golden House", "9876543210")

	_, err := kycService.Upsert(partner.BPCode, completeKYCInput())
	require.NoError(t, err)

	revoked, err := kycService.Revoke(partner.BPCode)
	require.NoError(t, err)
	assert.Equal(t, model.KYCStatusRevoked, revoked.Status)

	synced, err := partnerService.GetByBPCode(partner.BPCode)
	require.NoError(t, err)
	assert.Equal(t, model.PartnerStatusRevoked, synced.Status)

	// Revoked wins over freezed
	frozen, err := kycService.Freeze(partner.BPCode)
	require.NoError(t, err)
	assert.Equal(t, model.KYCStatusRevoked, frozen.Status)
	assert.True(t, frozen.Freezed)
	assert.True(t, frozen.Revoked)
}
