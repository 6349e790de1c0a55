package util

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// PincodeLocation is the city/state resolved for an Indian PIN code.
type PincodeLocation struct {
	City  string
	State string
}

type pincodeResponse struct {
	Status     string `json:"Status"`
	PostOffice []struct {
		Block    string `json:"Block"`
		District string `json:"District"`
		State    string `json:"State"`
	} `json:"PostOffice"`
}

// LookupPincode resolves a PIN code via the India Post postal API.
func LookupPincode(pincode string) (*PincodeLocation, error) {
	url := fmt.Sprintf("https://api.postalpincode.in/pincode/%s", pincode)
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

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("pincode API returned status %d", resp.StatusCode)
	}

	var results []pincodeResponse
	if err := json.Unmarshal(body, &results); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if len(results) == 0 || results[0].Status != "Success" || len(results[0].PostOffice) == 0 {
		return nil, fmt.Errorf("no location found for pincode %s", pincode)
	}

	office := results[0].PostOffice[0]
	city := office.Block
	if city == "" {
		city = office.District
	}

	return &PincodeLocation{
		City:  city,
		State: office.State,
	}, nil
}
