package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEffectivePrice_DirectPrice(t *testing.T) {
	p := Product{Price: 42.5, Prices: []PriceEntry{{Price: 10}}}

	assert.Equal(t, 42.5, p.EffectivePrice())
}

func TestEffectivePrice_FallsBackToLatestHistoryEntry(t *testing.T) {
	now := time.Now()
	p := Product{Prices: []PriceEntry{
		{Price: 30, Date: now.Add(-time.Hour)},
		{Price: 55, Date: now},
		{Price: 20, Date: now.Add(-2 * time.Hour)},
	}}

	assert.Equal(t, 55.0, p.EffectivePrice())
}

func TestEffectivePrice_NoPriceData(t *testing.T) {
	p := Product{}

	assert.Equal(t, 0.0, p.EffectivePrice())
}

func TestNormalizeSubject(t *testing.T) {
	assert.Equal(t, "user@example.com", NormalizeSubject("  User@Example.COM "))
	assert.Equal(t, "", NormalizeSubject("   "))
}
