package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func testPolicy() StrategyPolicy {
	return StrategyPolicy{
		MaxOfferFractionOfFloor: 0.8,
		BidIncrement:            0.001,
		UndercutAmount:          0.001,
	}
}

func TestPriceOffer_BeatsBestOffer(t *testing.T) {
	price, ok := PriceOffer(0.5, 0, 1.0, testPolicy())
	assert.True(t, ok)
	assert.InDelta(t, 0.501, price, 1e-9)
}

func TestPriceOffer_RejectsAboveCeiling(t *testing.T) {
	// 0.9 + 0.001 > 1.0 × 0.8
	_, ok := PriceOffer(0.9, 0, 1.0, testPolicy())
	assert.False(t, ok)
}

func TestPriceOffer_ExactlyAtCeiling(t *testing.T) {
	// 0.799 + 0.001 == 0.8 → allowed, the ceiling is exclusive
	price, ok := PriceOffer(0.799, 0, 1.0, testPolicy())
	assert.True(t, ok)
	assert.InDelta(t, 0.8, price, 1e-9)
}

func TestPriceOffer_RoundsTo4Decimals(t *testing.T) {
	p := testPolicy()
	p.BidIncrement = 0.00011
	price, ok := PriceOffer(0.5, 0, 1.0, p)
	assert.True(t, ok)
	assert.InDelta(t, 0.5001, price, 1e-9)
}

func TestPriceOffer_SecondBestStrategy(t *testing.T) {
	p := testPolicy()
	p.UseSecondBest = true
	// best offer ignored; result based on second-best
	price, ok := PriceOffer(0.6, 0.4, 1.0, p)
	assert.True(t, ok)
	assert.InDelta(t, 0.401, price, 1e-9)
}

func TestPriceOffer_SecondBestFallsBackWhenZero(t *testing.T) {
	p := testPolicy()
	p.UseSecondBest = true
	price, ok := PriceOffer(0.5, 0, 1.0, p)
	assert.True(t, ok)
	assert.InDelta(t, 0.501, price, 1e-9)
}

func TestPriceOffer_SecondBestStillCapped(t *testing.T) {
	p := testPolicy()
	p.UseSecondBest = true
	_, ok := PriceOffer(0.5, 0.85, 1.0, p)
	assert.False(t, ok, "ceiling applies in every strategy mode")
}

func TestPriceListing_UndercutsFloor(t *testing.T) {
	assert.InDelta(t, 0.999, PriceListing(1.0, testPolicy()), 1e-9)
}

func TestRound4(t *testing.T) {
	assert.Equal(t, 0.1235, Round4(0.123456))
	assert.Equal(t, 0.5, Round4(0.5))
}

func TestRound6(t *testing.T) {
	assert.Equal(t, 0.002803, Round6(0.0028034))
	assert.Equal(t, 1.015305, Round6(1.0153049))
}

func TestTokenKey_LowercasesContract(t *testing.T) {
	assert.Equal(t, "0xabc-7", TokenKey("0xABC", "7"))
}

func TestSameAddress(t *testing.T) {
	assert.True(t, SameAddress("0xAbC", "0xabc"))
	assert.False(t, SameAddress("", ""))
	assert.False(t, SameAddress("0xabc", "0xdef"))
}
