package opensea

// api.go — ports.Marketplace on the OpenSea v2 REST API.
//
// Reads are plain GETs. Writes build a Seaport order, sign it with the
// wallet key and submit the signed payload; a purchase additionally pulls
// fulfillment calldata from the API and submits it on-chain through the
// Signer.

import (
	"context"
	"encoding/hex"
	"fmt"
	"math/big"
	"net/url"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/jfortea/floorbot/internal/domain"
)

// Signer signs Seaport digests and submits fulfillment transactions. The
// on-chain wallet adapter implements it.
type Signer interface {
	Address() string
	SignDigest(digest common.Hash) ([]byte, error)
	SendTransaction(ctx context.Context, to string, value *big.Int, calldata []byte) error
}

// Config identifies the chain orders settle on.
type Config struct {
	Chain        string // OpenSea chain identifier: "ethereum", "base", ...
	ChainID      int64
	WrappedToken string // wrapped native ERC-20 that settles offers
	// FeeBps is the marketplace fee consideration in basis points.
	// Zero means the OpenSea default.
	FeeBps int64
}

const defaultFeeBps = 250

// listingDefaultTTL applies when the caller passes a zero expiry.
const listingDefaultTTL = 30 * 24 * time.Hour

// API implements ports.Marketplace.
type API struct {
	client *Client
	signer Signer
	cfg    Config
}

// NewAPI creates the marketplace adapter.
func NewAPI(client *Client, signer Signer, cfg Config) *API {
	if cfg.FeeBps == 0 {
		cfg.FeeBps = defaultFeeBps
	}
	return &API{client: client, signer: signer, cfg: cfg}
}

// CollectionFloor returns the collection's floor price from the stats
// endpoint.
func (a *API) CollectionFloor(ctx context.Context, slug string) (float64, error) {
	var resp statsResponse
	path := fmt.Sprintf("/api/v2/collections/%s/stats", url.PathEscape(slug))
	if err := a.client.get(ctx, path, &resp); err != nil {
		return 0, fmt.Errorf("opensea.CollectionFloor: %s: %w", slug, err)
	}
	return resp.Total.FloorPrice, nil
}

// CollectionOffers returns collection-wide bids, best first, per-item priced.
func (a *API) CollectionOffers(ctx context.Context, slug string, limit int) ([]domain.Offer, error) {
	var resp offersResponse
	path := fmt.Sprintf("/api/v2/offers/collection/%s?limit=%d", url.PathEscape(slug), limit)
	if err := a.client.get(ctx, path, &resp); err != nil {
		return nil, fmt.Errorf("opensea.CollectionOffers: %s: %w", slug, err)
	}
	return toOffers(resp.Offers), nil
}

// NFTsByAccount returns tokens held by the address.
func (a *API) NFTsByAccount(ctx context.Context, address string, limit int) ([]domain.NFT, error) {
	var resp nftsResponse
	path := fmt.Sprintf("/api/v2/chain/%s/account/%s/nfts?limit=%d",
		url.PathEscape(a.cfg.Chain), url.PathEscape(address), limit)
	if err := a.client.get(ctx, path, &resp); err != nil {
		return nil, fmt.Errorf("opensea.NFTsByAccount: %s: %w", address, err)
	}
	return toNFTs(resp.NFTs), nil
}

// NFTsByCollection returns tokens in the collection.
func (a *API) NFTsByCollection(ctx context.Context, slug string, limit int) ([]domain.NFT, error) {
	var resp nftsResponse
	path := fmt.Sprintf("/api/v2/collection/%s/nfts?limit=%d", url.PathEscape(slug), limit)
	if err := a.client.get(ctx, path, &resp); err != nil {
		return nil, fmt.Errorf("opensea.NFTsByCollection: %s: %w", slug, err)
	}
	return toNFTs(resp.NFTs), nil
}

// NFTListings returns open listings for one token, cheapest first.
func (a *API) NFTListings(ctx context.Context, contract, identifier string, limit int) ([]domain.Listing, error) {
	var resp ordersResponse
	path := fmt.Sprintf(
		"/api/v2/orders/%s/seaport/listings?asset_contract_address=%s&token_ids=%s&order_by=eth_price&order_direction=asc&limit=%d",
		url.PathEscape(a.cfg.Chain), url.QueryEscape(contract), url.QueryEscape(identifier), limit)
	if err := a.client.get(ctx, path, &resp); err != nil {
		return nil, fmt.Errorf("opensea.NFTListings: token %s: %w", identifier, err)
	}
	return toListings(resp.Orders), nil
}

// CollectionListings returns the cheapest open listings in the collection.
func (a *API) CollectionListings(ctx context.Context, slug string, limit int) ([]domain.Listing, error) {
	var resp listingsResponse
	path := fmt.Sprintf("/api/v2/listings/collection/%s/best?limit=%d", url.PathEscape(slug), limit)
	if err := a.client.get(ctx, path, &resp); err != nil {
		return nil, fmt.Errorf("opensea.CollectionListings: %s: %w", slug, err)
	}
	return toListings(resp.Listings), nil
}

type collectionCriteria struct {
	Collection struct {
		Slug string `json:"slug"`
	} `json:"collection"`
}

func criteriaFor(slug string) collectionCriteria {
	var c collectionCriteria
	c.Collection.Slug = slug
	return c
}

type buildOfferRequest struct {
	Offerer         string             `json:"offerer"`
	Quantity        int                `json:"quantity"`
	Criteria        collectionCriteria `json:"criteria"`
	ProtocolAddress string             `json:"protocol_address"`
}

type buildOfferResponse struct {
	PartialParameters struct {
		Consideration []seaportItemJSON `json:"consideration"`
		Zone          string            `json:"zone"`
		ZoneHash      string            `json:"zoneHash"`
	} `json:"partialParameters"`
}

type createOfferRequest struct {
	Criteria        collectionCriteria `json:"criteria"`
	ProtocolData    signedOrderJSON    `json:"protocol_data"`
	ProtocolAddress string             `json:"protocol_address"`
}

// CreateCollectionOffer places a criteria offer on the collection. The API's
// build endpoint dictates the consideration side (criteria item plus fees);
// we supply and sign the full order.
func (a *API) CreateCollectionOffer(ctx context.Context, slug string, amount float64, expiry time.Time) (string, error) {
	build := buildOfferRequest{
		Offerer:         a.signer.Address(),
		Quantity:        1,
		Criteria:        criteriaFor(slug),
		ProtocolAddress: seaportAddress,
	}
	var built buildOfferResponse
	if err := a.client.post(ctx, "/api/v2/offers/build", build, &built); err != nil {
		return "", fmt.Errorf("opensea.CreateCollectionOffer: build: %w", err)
	}

	consideration, err := parseConsideration(built.PartialParameters.Consideration)
	if err != nil {
		return "", fmt.Errorf("opensea.CreateCollectionOffer: %w", err)
	}

	order := orderComponents{
		Offerer: common.HexToAddress(a.signer.Address()),
		Zone:    common.HexToAddress(built.PartialParameters.Zone),
		Offer: []offerItem{{
			ItemType:             itemERC20,
			Token:                common.HexToAddress(a.cfg.WrappedToken),
			IdentifierOrCriteria: big.NewInt(0),
			StartAmount:          etherToWei(amount),
			EndAmount:            etherToWei(amount),
		}},
		Consideration: consideration,
		OrderType:     orderTypePartialOpen,
		StartTime:     big.NewInt(time.Now().Unix()),
		EndTime:       big.NewInt(expiry.Unix()),
		ZoneHash:      common.HexToHash(built.PartialParameters.ZoneHash),
		Salt:          randomSalt(),
		ConduitKey:    common.HexToHash(conduitKey),
		Counter:       big.NewInt(0),
	}

	signature, err := a.signer.SignDigest(order.digest(a.cfg.ChainID))
	if err != nil {
		return "", fmt.Errorf("opensea.CreateCollectionOffer: sign: %w", err)
	}

	req := createOfferRequest{
		Criteria:        criteriaFor(slug),
		ProtocolData:    order.toJSON(signature),
		ProtocolAddress: seaportAddress,
	}
	var resp createOrderResponse
	if err := a.client.post(ctx, "/api/v2/offers", req, &resp); err != nil {
		return "", fmt.Errorf("opensea.CreateCollectionOffer: submit: %w", err)
	}
	return orderHashFrom(resp), nil
}

type createListingRequest struct {
	Parameters      seaportParametersJSON `json:"parameters"`
	Signature       string                `json:"signature"`
	ProtocolAddress string                `json:"protocol_address"`
}

// CreateListing lists one owned token at the given price. The consideration
// splits the proceeds between the seller and the marketplace fee recipient.
func (a *API) CreateListing(ctx context.Context, contract, identifier string, amount float64, expiry time.Time) (string, error) {
	tokenID, ok := new(big.Int).SetString(identifier, 10)
	if !ok {
		return "", fmt.Errorf("opensea.CreateListing: invalid token id %q", identifier)
	}
	if expiry.IsZero() {
		expiry = time.Now().Add(listingDefaultTTL)
	}

	total := etherToWei(amount)
	fee := new(big.Int).Div(new(big.Int).Mul(total, big.NewInt(a.cfg.FeeBps)), big.NewInt(10000))
	seller := new(big.Int).Sub(total, fee)
	offerer := common.HexToAddress(a.signer.Address())

	order := orderComponents{
		Offerer: offerer,
		Offer: []offerItem{{
			ItemType:             itemERC721,
			Token:                common.HexToAddress(contract),
			IdentifierOrCriteria: tokenID,
			StartAmount:          big.NewInt(1),
			EndAmount:            big.NewInt(1),
		}},
		Consideration: []considerationItem{
			{
				offerItem: offerItem{
					ItemType:             itemNative,
					IdentifierOrCriteria: big.NewInt(0),
					StartAmount:          seller,
					EndAmount:            seller,
				},
				Recipient: offerer,
			},
			{
				offerItem: offerItem{
					ItemType:             itemNative,
					IdentifierOrCriteria: big.NewInt(0),
					StartAmount:          fee,
					EndAmount:            fee,
				},
				Recipient: common.HexToAddress(feeRecipient),
			},
		},
		OrderType:  orderTypeFullOpen,
		StartTime:  big.NewInt(time.Now().Unix()),
		EndTime:    big.NewInt(expiry.Unix()),
		Salt:       randomSalt(),
		ConduitKey: common.HexToHash(conduitKey),
		Counter:    big.NewInt(0),
	}

	signature, err := a.signer.SignDigest(order.digest(a.cfg.ChainID))
	if err != nil {
		return "", fmt.Errorf("opensea.CreateListing: sign: %w", err)
	}

	signed := order.toJSON(signature)
	req := createListingRequest{
		Parameters:      signed.Parameters,
		Signature:       signed.Signature,
		ProtocolAddress: seaportAddress,
	}

	path := fmt.Sprintf("/api/v2/orders/%s/seaport/listings", url.PathEscape(a.cfg.Chain))
	var resp createOrderResponse
	if err := a.client.post(ctx, path, req, &resp); err != nil {
		return "", fmt.Errorf("opensea.CreateListing: token %s: %w", identifier, err)
	}
	return orderHashFrom(resp), nil
}

// CancelOrder cancels an off-chain order. The API verifies the request by
// the offerer's signature over the order hash.
func (a *API) CancelOrder(ctx context.Context, orderHash string) error {
	signature, err := a.signer.SignDigest(common.HexToHash(orderHash))
	if err != nil {
		return fmt.Errorf("opensea.CancelOrder: sign: %w", err)
	}

	path := fmt.Sprintf("/api/v2/orders/chain/%s/protocol/%s/%s/cancel",
		url.PathEscape(a.cfg.Chain), seaportAddress, url.PathEscape(orderHash))
	body := map[string]string{
		"offerer_signature": "0x" + hex.EncodeToString(signature),
	}
	if err := a.client.post(ctx, path, body, nil); err != nil {
		return fmt.Errorf("opensea.CancelOrder: %s: %w", orderHash, err)
	}
	return nil
}

type fulfillmentRequest struct {
	Listing struct {
		Hash            string `json:"hash"`
		Chain           string `json:"chain"`
		ProtocolAddress string `json:"protocol_address"`
	} `json:"listing"`
	Fulfiller struct {
		Address string `json:"address"`
	} `json:"fulfiller"`
}

// FulfillListing buys the listing: fetch the fulfillment transaction from
// the API and submit it on-chain.
func (a *API) FulfillListing(ctx context.Context, listing domain.Listing) error {
	var req fulfillmentRequest
	req.Listing.Hash = listing.OrderHash
	req.Listing.Chain = a.cfg.Chain
	req.Listing.ProtocolAddress = seaportAddress
	req.Fulfiller.Address = a.signer.Address()

	var resp fulfillmentResponse
	if err := a.client.post(ctx, "/api/v2/listings/fulfillment_data", req, &resp); err != nil {
		return fmt.Errorf("opensea.FulfillListing: %s: %w", listing.OrderHash, err)
	}

	tx := resp.FulfillmentData.Transaction
	value, ok := new(big.Int).SetString(tx.Value, 10)
	if !ok {
		return fmt.Errorf("opensea.FulfillListing: invalid tx value %q", tx.Value)
	}
	calldata, err := hex.DecodeString(strings.TrimPrefix(tx.Calldata, "0x"))
	if err != nil {
		return fmt.Errorf("opensea.FulfillListing: decode calldata: %w", err)
	}

	if err := a.signer.SendTransaction(ctx, tx.To, value, calldata); err != nil {
		return fmt.Errorf("opensea.FulfillListing: send tx: %w", err)
	}
	return nil
}

// parseConsideration converts the build endpoint's consideration items into
// hashable form.
func parseConsideration(items []seaportItemJSON) ([]considerationItem, error) {
	out := make([]considerationItem, 0, len(items))
	for _, item := range items {
		identifier, ok := new(big.Int).SetString(item.IdentifierOrCriteria, 10)
		if !ok {
			return nil, fmt.Errorf("invalid consideration identifier %q", item.IdentifierOrCriteria)
		}
		start, ok := new(big.Int).SetString(item.StartAmount, 10)
		if !ok {
			return nil, fmt.Errorf("invalid consideration amount %q", item.StartAmount)
		}
		end, ok := new(big.Int).SetString(item.EndAmount, 10)
		if !ok {
			return nil, fmt.Errorf("invalid consideration amount %q", item.EndAmount)
		}
		out = append(out, considerationItem{
			offerItem: offerItem{
				ItemType:             uint8(item.ItemType),
				Token:                common.HexToAddress(item.Token),
				IdentifierOrCriteria: identifier,
				StartAmount:          start,
				EndAmount:            end,
			},
			Recipient: common.HexToAddress(item.Recipient),
		})
	}
	return out, nil
}

func orderHashFrom(resp createOrderResponse) string {
	if resp.OrderHash != "" {
		return resp.OrderHash
	}
	return resp.Order.OrderHash
}
