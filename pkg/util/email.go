package util

import (
	"fmt"
	"log"
	"net/smtp"
	"os"
)

// SendOTPEmail sends a password reset OTP to the given address.
func SendOTPEmail(to, otp string) error {
	host := os.Getenv("SMTP_HOST")
	port := os.Getenv("SMTP_PORT")
	username := os.Getenv("SMTP_USERNAME")
	password := os.Getenv("SMTP_PASSWORD")
	from := os.Getenv("SMTP_FROM")

	// Dev mode: without SMTP settings, log the OTP instead of sending.
	if host == "" || username == "" {
		log.Printf("================================")
		log.Printf("[dev mode] password reset OTP for %s: %s", to, otp)
		log.Printf("(no email was actually sent)")
		log.Printf("================================")
		return nil
	}

	if port == "" {
		port = "587"
	}
	if from == "" {
		from = username
	}

	subject := "Your password reset code"
	body := fmt.Sprintf("Your one-time password is %s. It expires in 5 minutes.", otp)
	msg := []byte(fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n", from, to, subject, body))

	auth := smtp.PlainAuth("", username, password, host)
	if err := smtp.SendMail(host+":"+port, auth, from, []string{to}, msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}
