package scheduler

import (
	"github.com/robfig/cron/v3"
	"github.com/taragold/taraerp-backend/internal/app/repository"
	"github.com/taragold/taraerp-backend/pkg/logger"
	"github.com/taragold/taraerp-backend/pkg/util"
)

// EnrichmentScheduler backfills data the registration flow could not
// resolve synchronously: city/state from pincodes, bank branch details
// from IFSC codes. It also purges expired password reset records.
type EnrichmentScheduler struct {
	cron        *cron.Cron
	partnerRepo repository.PartnerRepository
	kycRepo     repository.KYCRepository
	resetRepo   repository.PasswordResetRepository
}

func NewEnrichmentScheduler(
	partnerRepo repository.PartnerRepository,
	kycRepo repository.KYCRepository,
	resetRepo repository.PasswordResetRepository,
) *EnrichmentScheduler {
	return &EnrichmentScheduler{
		cron:        cron.New(),
		partnerRepo: partnerRepo,
		kycRepo:     kycRepo,
		resetRepo:   resetRepo,
	}
}

func (s *EnrichmentScheduler) Start() error {
	// Both lookups hit free public APIs, so the jobs run hourly and
	// touch only the records that still need filling.
	if _, err := s.cron.AddFunc("15 * * * *", s.backfillPartnerLocations); err != nil {
		logger.Error("Failed to add cron job for partner location backfill", err)
		return err
	}

	if _, err := s.cron.AddFunc("45 * * * *", s.backfillBankDetails); err != nil {
		logger.Error("Failed to add cron job for bank detail backfill", err)
		return err
	}

	// Expired OTP rows are dead weight, swept once a day.
	if _, err := s.cron.AddFunc("0 3 * * *", s.purgeExpiredResets); err != nil {
		logger.Error("Failed to add cron job for password reset purge", err)
		return err
	}

	s.cron.Start()
	logger.Info("Enrichment scheduler started", map[string]interface{}{
		"jobs": 3,
	})

	return nil
}

func (s *EnrichmentScheduler) Stop() {
	logger.Info("Stopping enrichment scheduler...")
	s.cron.Stop()
	logger.Info("Enrichment scheduler stopped")
}

func (s *EnrichmentScheduler) backfillPartnerLocations() {
	partners, err := s.partnerRepo.ListMissingLocation()
	if err != nil {
		logger.Error("Failed to list partners for location backfill", err)
		return
	}

	if len(partners) == 0 {
		return
	}

	logger.Info("Backfilling partner locations", map[string]interface{}{
		"count": len(partners),
	})

	filled := 0
	for i := range partners {
		partner := &partners[i]

		location, err := util.LookupPincode(partner.Pincode)
		if err != nil {
			logger.Warn("Pincode lookup failed", map[string]interface{}{
				"bp_code": partner.BPCode,
				"pincode": partner.Pincode,
				"error":   err.Error(),
			})
			continue
		}

		if partner.City == "" {
			partner.City = location.City
		}
		if partner.State == "" {
			partner.State = location.State
		}

		if err := s.partnerRepo.Update(partner); err != nil {
			logger.Error("Failed to save backfilled partner location", err, map[string]interface{}{
				"bp_code": partner.BPCode,
			})
			continue
		}
		filled++
	}

	logger.Info("Partner location backfill finished", map[string]interface{}{
		"filled": filled,
		"total":  len(partners),
	})
}

func (s *EnrichmentScheduler) backfillBankDetails() {
	records, err := s.kycRepo.ListIncompleteBankDetails()
	if err != nil {
		logger.Error("Failed to list KYC records for bank detail backfill", err)
		return
	}

	if len(records) == 0 {
		return
	}

	logger.Info("Backfilling bank details from IFSC codes", map[string]interface{}{
		"count": len(records),
	})

	filled := 0
	for i := range records {
		kyc := &records[i]

		branch, err := util.LookupIFSC(kyc.IfscCode)
		if err != nil {
			logger.Warn("IFSC lookup failed", map[string]interface{}{
				"partner_id": kyc.PartnerID,
				"ifsc_code":  kyc.IfscCode,
				"error":      err.Error(),
			})
			continue
		}

		if kyc.BankName == "" {
			kyc.BankName = branch.Bank
		}
		if kyc.Branch == "" {
			kyc.Branch = branch.Branch
		}
		if kyc.BankCity == "" {
			kyc.BankCity = branch.City
		}
		if kyc.BankState == "" {
			kyc.BankState = branch.State
		}

		if err := s.kycRepo.Update(kyc); err != nil {
			logger.Error("Failed to save backfilled bank details", err, map[string]interface{}{
				"partner_id": kyc.PartnerID,
			})
			continue
		}
		filled++
	}

	logger.Info("Bank detail backfill finished", map[string]interface{}{
		"filled": filled,
		"total":  len(records),
	})
}

func (s *EnrichmentScheduler) purgeExpiredResets() {
	if err := s.resetRepo.DeleteExpired(); err != nil {
		logger.Error("Failed to purge expired password resets", err)
		return
	}
	logger.Info("Expired password resets purged")
}
