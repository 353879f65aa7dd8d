package utils

import "testing"

func TestFormatReferralCode(t *testing.T) {
	tests := []struct {
		prefix string
		seq    int64
		want   string
	}{
		{AmbassadorPrefix, 1, "AMB-000001"},
		{AmbassadorPrefix, 42, "AMB-000042"},
		{VendorPrefix, 7, "VEN-000007"},
		{AmbassadorPrefix, 1234567, "AMB-1234567"},
	}

	for _, tt := range tests {
		if got := FormatReferralCode(tt.prefix, tt.seq); got != tt.want {
			t.Errorf("FormatReferralCode(%q, %d) = %q, want %q", tt.prefix, tt.seq, got, tt.want)
		}
	}
}

func TestClassifyReferralCode(t *testing.T) {
	tests := []struct {
		code string
		want ReferralKind
	}{
		{"AMB-000001", AmbassadorReferral},
		{"VEN-000007", VendorReferral},
		{"amb-000001", AmbassadorReferral},
		{"  ven-000007  ", VendorReferral},
		{"XYZ-000001", UnknownReferral},
		{"", UnknownReferral},
		{"AMB", UnknownReferral},
	}

	for _, tt := range tests {
		if got := ClassifyReferralCode(tt.code); got != tt.want {
			t.Errorf("ClassifyReferralCode(%q) = %q, want %q", tt.code, got, tt.want)
		}
	}
}

func TestNormalizeReferralCode(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{" amb-000001 ", "AMB-000001"},
		{"VEN-000007", "VEN-000007"},
		{"   ", ""},
		{"", ""},
	}

	for _, tt := range tests {
		if got := NormalizeReferralCode(tt.in); got != tt.want {
			t.Errorf("NormalizeReferralCode(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
