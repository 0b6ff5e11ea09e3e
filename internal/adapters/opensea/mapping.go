package opensea

// mapping.go — wire payloads → domain types. All field-name fallbacks and
// price normalization live here; nothing downstream branches on payload
// shape.

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jfortea/floorbot/internal/domain"
)

// toOffer converts a collection offer. Batch offers are normalized to a
// per-item price so the bidding strategy compares like with like.
func toOffer(w wireOffer) domain.Offer {
	quantity := w.RemainingQuantity
	if quantity < 1 {
		quantity = 1
	}

	total := parseUnits(w.Price.Value, w.Price.Decimals)
	perItem := total.Div(decimal.NewFromInt(int64(quantity)))

	return domain.Offer{
		OrderHash: w.OrderHash,
		Price:     perItem.InexactFloat64(),
		Offerer:   w.ProtocolData.Parameters.Offerer,
		Quantity:  quantity,
	}
}

func toOffers(ws []wireOffer) []domain.Offer {
	offers := make([]domain.Offer, 0, len(ws))
	for _, w := range ws {
		offers = append(offers, toOffer(w))
	}
	return offers
}

// toListing converts a listing. The two payload shapes disagree on where
// the price and maker live; prefer the structured fields and fall back to
// the flat ones.
func toListing(w wireListing) domain.Listing {
	l := domain.Listing{
		OrderHash: w.OrderHash,
		Maker:     w.ProtocolData.Parameters.Offerer,
	}
	if w.Maker != nil && w.Maker.Address != "" {
		l.Maker = w.Maker.Address
	}

	if w.Price.Current.Value != "" {
		l.Price = parseUnits(w.Price.Current.Value, w.Price.Current.Decimals).InexactFloat64()
	} else if w.CurrentPrice != "" {
		l.Price = parseUnits(w.CurrentPrice, 18).InexactFloat64()
	}

	if items := w.ProtocolData.Parameters.Offer; len(items) > 0 {
		l.Contract = items[0].Token
		l.Identifier = items[0].IdentifierOrCriteria
	}

	if w.ExpirationTime > 0 {
		l.Expiration = time.Unix(w.ExpirationTime, 0).UTC()
	} else if end := w.ProtocolData.Parameters.EndTime; end != "" {
		if d, err := decimal.NewFromString(end); err == nil {
			l.Expiration = time.Unix(d.IntPart(), 0).UTC()
		}
	}

	return l
}

func toListings(ws []wireListing) []domain.Listing {
	listings := make([]domain.Listing, 0, len(ws))
	for _, w := range ws {
		listings = append(listings, toListing(w))
	}
	return listings
}

func toNFT(w wireNFT) domain.NFT {
	return domain.NFT{
		Contract:   w.Contract,
		Identifier: w.Identifier,
		Collection: w.Collection,
	}
}

func toNFTs(ws []wireNFT) []domain.NFT {
	nfts := make([]domain.NFT, 0, len(ws))
	for _, w := range ws {
		nfts = append(nfts, toNFT(w))
	}
	return nfts
}

// parseUnits converts an integer base-unit string to a decimal amount.
// Malformed input yields zero; a zero price never passes the strategy's
// sanity gates, so it is the safe degraded value.
func parseUnits(value string, decimals int) decimal.Decimal {
	if decimals <= 0 {
		decimals = 18
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero
	}
	return d.Shift(int32(-decimals))
}
