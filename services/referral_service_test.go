package services

import (
	"testing"

	"github.com/feastly/ambassador_backend/models"
	"github.com/feastly/ambassador_backend/utils"
)

func TestBonusTypeFor(t *testing.T) {
	tests := []struct {
		referrer utils.ReferralKind
		referred utils.ReferralKind
		want     string
	}{
		{utils.AmbassadorReferral, utils.AmbassadorReferral, models.BonusAmbassadorToAmbassador},
		{utils.VendorReferral, utils.AmbassadorReferral, models.BonusVendorToAmbassador},
		{utils.AmbassadorReferral, utils.VendorReferral, models.BonusAmbassadorToVendor},
		{utils.VendorReferral, utils.VendorReferral, models.BonusVendorToVendor},
		{utils.UnknownReferral, utils.AmbassadorReferral, ""},
		{utils.AmbassadorReferral, utils.UnknownReferral, ""},
	}

	for _, tt := range tests {
		if got := BonusTypeFor(tt.referrer, tt.referred); got != tt.want {
			t.Errorf("BonusTypeFor(%q, %q) = %q, want %q", tt.referrer, tt.referred, got, tt.want)
		}
	}
}
