package opensea

// types.go — wire shapes of the OpenSea v2 REST API. These stay inside the
// adapter; mapping.go converts them to domain types.

type statsResponse struct {
	Total struct {
		FloorPrice float64 `json:"floor_price"`
	} `json:"total"`
}

// wirePrice is the value/decimals pair OpenSea uses for monetary amounts.
// Value is an integer string in the currency's base units.
type wirePrice struct {
	Currency string `json:"currency"`
	Decimals int    `json:"decimals"`
	Value    string `json:"value"`
}

type wireProtocolData struct {
	Parameters struct {
		Offerer string `json:"offerer"`
		EndTime string `json:"endTime"`
		Offer   []struct {
			Token                string `json:"token"`
			IdentifierOrCriteria string `json:"identifierOrCriteria"`
		} `json:"offer"`
	} `json:"parameters"`
}

type wireOffer struct {
	OrderHash         string           `json:"order_hash"`
	Price             wirePrice        `json:"price"`
	RemainingQuantity int              `json:"remaining_quantity"`
	ProtocolData      wireProtocolData `json:"protocol_data"`
}

type offersResponse struct {
	Offers []wireOffer `json:"offers"`
	Next   string      `json:"next"`
}

type wireNFT struct {
	Identifier string `json:"identifier"`
	Collection string `json:"collection"`
	Contract   string `json:"contract"`
}

type nftsResponse struct {
	NFTs []wireNFT `json:"nfts"`
	Next string    `json:"next"`
}

// wireListing covers both listing-shaped payloads the API returns: the
// listings endpoints nest the price under price.current, the orders
// endpoints use a flat wei string in current_price and may carry the maker
// as an account object.
type wireListing struct {
	OrderHash string `json:"order_hash"`
	Price     struct {
		Current wirePrice `json:"current"`
	} `json:"price"`
	CurrentPrice string `json:"current_price"`
	Maker        *struct {
		Address string `json:"address"`
	} `json:"maker"`
	ExpirationTime int64            `json:"expiration_time"`
	ProtocolData   wireProtocolData `json:"protocol_data"`
}

type listingsResponse struct {
	Listings []wireListing `json:"listings"`
	Next     string        `json:"next"`
}

type ordersResponse struct {
	Orders []wireListing `json:"orders"`
}

type createOrderResponse struct {
	OrderHash string `json:"order_hash"`
	Order     struct {
		OrderHash string `json:"order_hash"`
	} `json:"order"`
}

type fulfillmentResponse struct {
	FulfillmentData struct {
		Transaction struct {
			To       string `json:"to"`
			Value    string `json:"value"`
			Calldata string `json:"calldata"`
		} `json:"transaction"`
	} `json:"fulfillment_data"`
}
