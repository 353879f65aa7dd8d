package controllers

import (
	"bytes"
	"context"
	"encoding/base64"
	"image/png"
	"net/http"
	"os"
	"time"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/qr"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/feastly/ambassador_backend/models"
	"github.com/feastly/ambassador_backend/repositories"
)

type ReferralController struct {
	db             *mongo.Client
	ambassadorRepo *repositories.AmbassadorRepository
}

func NewReferralController(db *mongo.Client) *ReferralController {
	return &ReferralController{
		db:             db,
		ambassadorRepo: repositories.NewAmbassadorRepository(db),
	}
}

// referralLink builds the signup deep link carrying the referral code
func referralLink(code string) string {
	base := os.Getenv("APP_BASE_URL")
	if base == "" {
		base = "https://feastly.app"
	}
	return base + "/register?ref=" + code
}

// GetReferralData returns the ambassador's referral code, count and link
func (rc *ReferralController) GetReferralData(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	ambassador, ok := currentAmbassador(ctx, c, rc.ambassadorRepo)
	if !ok {
		return nil
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Referral data fetched successfully",
		Data: models.ReferralData{
			ReferralCode:  ambassador.ReferralCode,
			ReferralCount: len(ambassador.Users),
			ReferralLink:  referralLink(ambassador.ReferralCode),
		},
	})
}

// GetReferralQRCode returns the referral link as a base64-encoded QR PNG
func (rc *ReferralController) GetReferralQRCode(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	ambassador, ok := currentAmbassador(ctx, c, rc.ambassadorRepo)
	if !ok {
		return nil
	}

	dataURI, err := generateQRCode(referralLink(ambassador.ReferralCode))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to generate QR code",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "QR code generated successfully",
		Data: map[string]string{
			"referralCode": ambassador.ReferralCode,
			"qrCode":       dataURI,
		},
	})
}

// generateQRCode encodes the content as a 300x300 PNG data URI
func generateQRCode(content string) (string, error) {
	qrCode, err := qr.Encode(content, qr.M, qr.Auto)
	if err != nil {
		return "", err
	}

	qrCode, err = barcode.Scale(qrCode, 300, 300)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, qrCode); err != nil {
		return "", err
	}

	base64QR := base64.StdEncoding.EncodeToString(buf.Bytes())
	return "data:image/png;base64," + base64QR, nil
}
