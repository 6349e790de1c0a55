package util

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

// SendOTPSMS sends a password reset OTP via the Twilio messaging API.
func SendOTPSMS(mobile, otp string) error {
	accountSID := os.Getenv("SMS_ACCOUNT_SID")
	authToken := os.Getenv("SMS_AUTH_TOKEN")
	fromNumber := os.Getenv("SMS_FROM")

	// Dev mode: without Twilio settings, log the OTP instead of sending.
	if accountSID == "" || authToken == "" || fromNumber == "" {
		log.Printf("================================")
		log.Printf("[dev mode] password reset OTP for %s: %s", mobile, otp)
		log.Printf("(no SMS was actually sent)")
		log.Printf("================================")
		return nil
	}

	apiURL := fmt.Sprintf("https://api.twilio.com/2010-04-01/Accounts/%s/Messages.json", accountSID)

	form := url.Values{}
	form.Set("To", mobile)
	form.Set("From", fromNumber)
	form.Set("Body", fmt.Sprintf("Your one-time password is %s. It expires in 5 minutes.", otp))

	req, err := http.NewRequest("POST", apiURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.SetBasicAuth(accountSID, authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	client := &http.Client{
		Timeout: 10 * time.Second,
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("SMS API returned status %d, body: %s", resp.StatusCode, string(body))
	}

	return nil
}
