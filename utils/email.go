// utils/email.go
package utils

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/gomail.v2"
)

// SendWithdrawalDecisionEmail notifies an ambassador that their withdrawal
// request was decided. Callers treat failure as non-fatal and log it.
func SendWithdrawalDecisionEmail(email, status string, amount int64, reason string) error {
	smtpHost := os.Getenv("SMTP_HOST")
	smtpUser := os.Getenv("SMTP_USER")
	smtpPass := os.Getenv("SMTP_PASS")
	fromEmail := os.Getenv("FROM_EMAIL")

	senderEmail := fromEmail
	if senderEmail == "" {
		senderEmail = smtpUser
	}

	if smtpHost == "" {
		smtpHost = "mail.smtp2go.com"
	}
	if smtpUser == "" || smtpPass == "" {
		return fmt.Errorf("SMTP configuration is incomplete: check SMTP_USER and SMTP_PASS")
	}

	smtpPort := 2525
	if smtpPortStr := os.Getenv("SMTP_PORT"); smtpPortStr != "" {
		if portNum, err := strconv.Atoi(smtpPortStr); err == nil && portNum > 0 {
			smtpPort = portNum
		}
	}

	subject := "Your withdrawal request was " + status
	body := fmt.Sprintf("Your withdrawal request of ₹%.2f was %s.", float64(amount)/100, status)
	if status == "rejected" && reason != "" {
		body += "\nReason: " + reason
	}

	m := gomail.NewMessage()
	m.SetHeader("From", senderEmail)
	m.SetHeader("To", email)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	d := gomail.NewDialer(smtpHost, smtpPort, smtpUser, smtpPass)
	return d.DialAndSend(m)
}
