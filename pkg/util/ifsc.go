package util

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// BankBranch is the bank detail resolved for an IFSC code.
type BankBranch struct {
	Bank   string `json:"BANK"`
	Branch string `json:"BRANCH"`
	City   string `json:"CITY"`
	State  string `json:"STATE"`
}

// LookupIFSC resolves an IFSC code via the Razorpay IFSC API.
func LookupIFSC(ifsc string) (*BankBranch, error) {
	url := fmt.Sprintf("https://ifsc.razorpay.com/%s", ifsc)
	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	client := &http.Client{
		Timeout: 5 * time.Second,
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("no bank found for IFSC %s", ifsc)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("IFSC API returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var branch BankBranch
	if err := json.Unmarshal(body, &branch); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return &branch, nil
}
