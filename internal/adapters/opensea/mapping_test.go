package opensea

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestToOffer_PerItemPrice(t *testing.T) {
	w := wireOffer{
		OrderHash:         "0xabc",
		Price:             wirePrice{Currency: "WETH", Decimals: 18, Value: "3000000000000000000"},
		RemainingQuantity: 4,
	}
	w.ProtocolData.Parameters.Offerer = "0xOFFERER"

	o := toOffer(w)
	assert.Equal(t, "0xabc", o.OrderHash)
	assert.InDelta(t, 0.75, o.Price, 1e-12, "batch offer price is per item")
	assert.Equal(t, 4, o.Quantity)
	assert.Equal(t, "0xOFFERER", o.Offerer)
}

func TestToOffer_MissingQuantityDefaultsToOne(t *testing.T) {
	w := wireOffer{
		Price: wirePrice{Decimals: 18, Value: "500000000000000000"},
	}
	o := toOffer(w)
	assert.Equal(t, 1, o.Quantity)
	assert.InDelta(t, 0.5, o.Price, 1e-12)
}

func TestToListing_StructuredPrice(t *testing.T) {
	w := wireListing{OrderHash: "0xdef"}
	w.Price.Current = wirePrice{Currency: "ETH", Decimals: 18, Value: "999000000000000000"}
	w.ProtocolData.Parameters.Offerer = "0xMAKER"
	w.ProtocolData.Parameters.Offer = []struct {
		Token                string `json:"token"`
		IdentifierOrCriteria string `json:"identifierOrCriteria"`
	}{{Token: "0xCCC", IdentifierOrCriteria: "42"}}

	l := toListing(w)
	assert.InDelta(t, 0.999, l.Price, 1e-12)
	assert.Equal(t, "0xMAKER", l.Maker)
	assert.Equal(t, "0xCCC", l.Contract)
	assert.Equal(t, "42", l.Identifier)
}

func TestToListing_FlatPriceFallback(t *testing.T) {
	w := wireListing{CurrentPrice: "700000000000000000"}
	l := toListing(w)
	assert.InDelta(t, 0.7, l.Price, 1e-12, "orders payload carries a flat wei string")
}

func TestToListing_MakerAccountOverridesOfferer(t *testing.T) {
	w := wireListing{}
	w.ProtocolData.Parameters.Offerer = "0xOFFERER"
	w.Maker = &struct {
		Address string `json:"address"`
	}{Address: "0xACCOUNT"}

	l := toListing(w)
	assert.Equal(t, "0xACCOUNT", l.Maker)
}

func TestToListing_ExpirationSources(t *testing.T) {
	w := wireListing{ExpirationTime: 1767225600}
	l := toListing(w)
	assert.Equal(t, time.Unix(1767225600, 0).UTC(), l.Expiration)

	w2 := wireListing{}
	w2.ProtocolData.Parameters.EndTime = "1767225600"
	l2 := toListing(w2)
	assert.Equal(t, time.Unix(1767225600, 0).UTC(), l2.Expiration)
}

func TestParseUnits_MalformedValueIsZero(t *testing.T) {
	assert.True(t, parseUnits("not-a-number", 18).IsZero())
	assert.True(t, parseUnits("", 18).IsZero())
}

func TestParseUnits_ZeroDecimalsDefaultsTo18(t *testing.T) {
	d := parseUnits("1000000000000000000", 0)
	assert.Equal(t, "1", d.String())
}

func TestParseUnits_NonStandardDecimals(t *testing.T) {
	d := parseUnits("1500000", 6)
	assert.Equal(t, "1.5", d.String())
}
