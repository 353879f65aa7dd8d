package models

import (
	"testing"
	"time"
)

func TestExtendExpiry(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("first purchase runs from now", func(t *testing.T) {
		var p *AmbassadorPayment
		got := p.ExtendExpiry(now, 30)
		want := now.AddDate(0, 0, 30)
		if !got.Equal(want) {
			t.Errorf("ExtendExpiry = %v, want %v", got, want)
		}
	})

	t.Run("expired purchase runs from now", func(t *testing.T) {
		p := &AmbassadorPayment{ExpiryDate: now.AddDate(0, 0, -10)}
		got := p.ExtendExpiry(now, 30)
		want := now.AddDate(0, 0, 30)
		if !got.Equal(want) {
			t.Errorf("ExtendExpiry = %v, want %v", got, want)
		}
	})

	t.Run("unexpired purchase stacks remaining validity", func(t *testing.T) {
		remaining := now.AddDate(0, 0, 10)
		p := &AmbassadorPayment{ExpiryDate: remaining}
		got := p.ExtendExpiry(now, 30)
		want := remaining.AddDate(0, 0, 30)
		if !got.Equal(want) {
			t.Errorf("ExtendExpiry = %v, want %v", got, want)
		}
	})
}
