package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"
)

// ErrPaymentNotCaptured is returned when the gateway reports the transaction
// as anything other than captured for the expected amount.
var ErrPaymentNotCaptured = errors.New("payment not captured by gateway")

// PaymentService talks to the external payment gateway that collects plan
// purchase amounts. The gateway owns the money movement; this service only
// verifies that a transaction id corresponds to a captured payment.
type PaymentService struct {
	baseURL string
	keyID   string
	secret  string
	client  *http.Client
}

// NewPaymentService creates a payment service from environment configuration
func NewPaymentService() *PaymentService {
	baseURL := os.Getenv("PAYMENT_API_URL")
	if baseURL == "" {
		baseURL = "https://api.razorpay.com/v1"
	}

	keyID := os.Getenv("PAYMENT_KEY_ID")
	secret := os.Getenv("PAYMENT_KEY_SECRET")
	if keyID == "" || secret == "" {
		log.Printf("WARNING: payment gateway credentials not fully configured:")
		if keyID == "" {
			log.Printf("  - PAYMENT_KEY_ID is missing")
		}
		if secret == "" {
			log.Printf("  - PAYMENT_KEY_SECRET is missing")
		}
		log.Printf("Plan purchases will fail until these are set")
	}

	return &PaymentService{
		baseURL: baseURL,
		keyID:   keyID,
		secret:  secret,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

type gatewayPayment struct {
	ID     string `json:"id"`
	Amount int64  `json:"amount"`
	Status string `json:"status"` // "created", "authorized", "captured", "failed"
}

// VerifyCapture confirms with the gateway that transactionID is a captured
// payment of exactly expectedAmount (in paise). Returns
// ErrPaymentNotCaptured when the gateway knows the transaction but it is not
// captured for that amount; any transport failure is returned as-is.
func (s *PaymentService) VerifyCapture(ctx context.Context, transactionID string, expectedAmount int64) error {
	if s.keyID == "" || s.secret == "" {
		return errors.New("missing payment gateway credentials: set PAYMENT_KEY_ID and PAYMENT_KEY_SECRET")
	}

	url := fmt.Sprintf("%s/payments/%s", s.baseURL, transactionID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.SetBasicAuth(s.keyID, s.secret)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach payment gateway: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read gateway response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		log.Printf("payment gateway returned %d for %s: %s", resp.StatusCode, transactionID, string(body))
		return ErrPaymentNotCaptured
	}

	var payment gatewayPayment
	if err := json.Unmarshal(body, &payment); err != nil {
		return fmt.Errorf("failed to decode gateway response: %w", err)
	}

	if payment.Status != "captured" || payment.Amount != expectedAmount {
		log.Printf("payment %s not usable: status=%s amount=%d expected=%d",
			transactionID, payment.Status, payment.Amount, expectedAmount)
		return ErrPaymentNotCaptured
	}
	return nil
}
