package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/taragold/taraerp-backend/config"
	"github.com/taragold/taraerp-backend/internal/app/codegen"
	"github.com/taragold/taraerp-backend/internal/app/model"
	"github.com/taragold/taraerp-backend/internal/app/repository"
	"github.com/taragold/taraerp-backend/internal/db"
	"github.com/taragold/taraerp-backend/pkg/validate"
	"github.com/xuri/excelize/v2"
)

// Imports business partners from an XLSX export of the old ledger.
// Expected columns, in order:
//
//	business_name, role, contact_person, mobile, email, address,
//	pincode, city, state, credit_terms

func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: go run cmd/seed/main.go <xlsx_file_path>")
	}

	filePath := os.Args[1]

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	if err := db.Initialize(&cfg.Database); err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	partnerRepo := repository.NewPartnerRepository(db.GetDB())

	fmt.Printf("Reading XLSX file: %s\n", filePath)
	partners, err := readPartnersFromXLSX(filePath)
	if err != nil {
		log.Fatal("Failed to read XLSX:", err)
	}

	fmt.Printf("Total partners to import: %d\n", len(partners))

	fmt.Print("Do you want to proceed with the import? (yes/no): ")
	var confirm string
	fmt.Scanln(&confirm)
	if confirm != "yes" && confirm != "y" {
		fmt.Println("Import cancelled.")
		return
	}

	// Codes are issued per prefix; the highest existing sequence for
	// each prefix is loaded once and counted up in memory. The unique
	// index on bp_code catches any race with a running server.
	nextSeq := make(map[string]int)
	imported := 0
	failed := 0

	for i := range partners {
		partner := &partners[i]

		prefix, err := codegen.PartnerCodePrefix(partner.Role, partner.BusinessName)
		if err != nil {
			failed++
			continue
		}

		if _, ok := nextSeq[prefix]; !ok {
			codes, err := partnerRepo.BPCodes(prefix)
			if err != nil {
				log.Fatal("Failed to load existing partner codes:", err)
			}
			max := 0
			for _, code := range codes {
				if seq, ok := codegen.SeqFromPartnerCode(code, prefix); ok && seq > max {
					max = seq
				}
			}
			nextSeq[prefix] = max
		}

		nextSeq[prefix]++
		partner.BPCode = codegen.FormatPartnerCode(prefix, nextSeq[prefix])

		if err := partnerRepo.Create(partner); err != nil {
			fmt.Printf("  Failed to import %s (%s): %v\n", partner.BusinessName, partner.Mobile, err)
			nextSeq[prefix]-- // sequence not consumed
			failed++
			continue
		}
		imported++

		if imported%100 == 0 {
			fmt.Printf("Imported %d partners...\n", imported)
		}
	}

	fmt.Println("Import completed!")
	fmt.Printf("  Imported: %d\n", imported)
	fmt.Printf("  Failed:   %d\n", failed)
}

func readPartnersFromXLSX(filePath string) ([]model.BusinessPartner, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("no sheets found in XLSX file")
	}

	fmt.Printf("Reading sheet: %s\n", sheetName)

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("no data found in XLSX file")
	}

	var partners []model.BusinessPartner
	seen := make(map[string]bool) // mobile+role dedupe
	skippedCount := 0
	invalidMobileCount := 0

	for i, row := range rows {
		if i == 0 {
			fmt.Printf("Headers: %v\n", row)
			continue
		}

		if len(row) < 4 {
			skippedCount++
			continue
		}

		businessName := strings.TrimSpace(row[0])
		role := model.PartnerRole(strings.ToUpper(strings.TrimSpace(row[1])))
		contactPerson := strings.TrimSpace(row[2])
		mobile := strings.TrimSpace(row[3])

		if businessName == "" || mobile == "" {
			skippedCount++
			continue
		}

		if role != model.PartnerRoleBuyer && role != model.PartnerRoleCraftsman {
			skippedCount++
			continue
		}

		if !validate.Mobile(mobile) {
			invalidMobileCount++
			skippedCount++
			continue
		}

		key := mobile + "|" + string(role)
		if seen[key] {
			skippedCount++
			continue
		}
		seen[key] = true

		partner := model.BusinessPartner{
			BusinessName:  businessName,
			Role:          role,
			ContactPerson: contactPerson,
			Mobile:        mobile,
			CreditTerms:   model.CreditTermsCash,
			Status:        model.PartnerStatusPending,
		}

		if len(row) > 4 {
			partner.Email = strings.TrimSpace(row[4])
		}
		if len(row) > 5 {
			partner.Address = strings.TrimSpace(row[5])
		}
		if len(row) > 6 {
			partner.Pincode = strings.TrimSpace(row[6])
		}
		if len(row) > 7 {
			partner.City = strings.TrimSpace(row[7])
		}
		if len(row) > 8 {
			partner.State = strings.TrimSpace(row[8])
		}
		if len(row) > 9 {
			if terms := model.CreditTerms(strings.ToUpper(strings.TrimSpace(row[9]))); terms != "" {
				switch terms {
				case model.CreditTermsT1, model.CreditTermsT2, model.CreditTermsT3, model.CreditTermsCash:
					partner.CreditTerms = terms
				}
			}
		}

		partners = append(partners, partner)
	}

	fmt.Printf("\nSummary:\n")
	fmt.Printf("  Total rows: %d\n", len(rows)-1)
	fmt.Printf("  Valid partners: %d\n", len(partners))
	fmt.Printf("  Skipped rows: %d\n", skippedCount)
	fmt.Printf("  Rows with invalid mobiles: %d\n", invalidMobileCount)

	return partners, nil
}
