package opensea

// seaport.go — Seaport order construction and EIP-712 signing.
//
// OpenSea's write endpoints accept fully signed Seaport orders; the API
// never signs for you. Orders are hashed per the Seaport 1.6 typed-data
// layout and signed with the wallet key.

import (
	"crypto/rand"
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/shopspring/decimal"
)

const (
	seaportName    = "Seaport"
	seaportVersion = "1.6"

	// Seaport 1.6, same address on every chain.
	seaportAddress = "0x0000000000000068F116a894984e2DB1123eB395"

	// OpenSea conduit: the contract orders approve for transfers.
	conduitKey = "0x0000007b02230091a7ed01230072f7006a004d60a8d4e71d599b8104250f0000"

	// OpenSea fee recipient for the marketplace fee consideration item.
	feeRecipient = "0x0000a26b00c1F0DF003000390027140000fAa719"

	orderTypeFullOpen    = 0 // listings
	orderTypePartialOpen = 1 // criteria offers
)

// Seaport item types.
const (
	itemNative         = 0
	itemERC20          = 1
	itemERC721         = 2
	itemERC721Criteria = 4
)

type offerItem struct {
	ItemType             uint8
	Token                common.Address
	IdentifierOrCriteria *big.Int
	StartAmount          *big.Int
	EndAmount            *big.Int
}

type considerationItem struct {
	offerItem
	Recipient common.Address
}

type orderComponents struct {
	Offerer       common.Address
	Zone          common.Address
	Offer         []offerItem
	Consideration []considerationItem
	OrderType     uint8
	StartTime     *big.Int
	EndTime       *big.Int
	ZoneHash      common.Hash
	Salt          *big.Int
	ConduitKey    common.Hash
	Counter       *big.Int
}

// EIP-712 type hashes (computed once).
var (
	eip712DomainTypeHash = crypto.Keccak256Hash([]byte(
		"EIP712Domain(string name,string version,uint256 chainId,address verifyingContract)",
	))
	offerItemTypeHash = crypto.Keccak256Hash([]byte(
		"OfferItem(uint8 itemType,address token,uint256 identifierOrCriteria,uint256 startAmount,uint256 endAmount)",
	))
	considerationItemTypeHash = crypto.Keccak256Hash([]byte(
		"ConsiderationItem(uint8 itemType,address token,uint256 identifierOrCriteria,uint256 startAmount,uint256 endAmount,address recipient)",
	))
	orderComponentsTypeHash = crypto.Keccak256Hash([]byte(
		"OrderComponents(address offerer,address zone,OfferItem[] offer,ConsiderationItem[] consideration,uint8 orderType,uint256 startTime,uint256 endTime,bytes32 zoneHash,uint256 salt,bytes32 conduitKey,uint256 counter)" +
			"ConsiderationItem(uint8 itemType,address token,uint256 identifierOrCriteria,uint256 startAmount,uint256 endAmount,address recipient)" +
			"OfferItem(uint8 itemType,address token,uint256 identifierOrCriteria,uint256 startAmount,uint256 endAmount)",
	))
)

func uint256(v *big.Int) []byte {
	return common.LeftPadBytes(v.Bytes(), 32)
}

func uint8Word(v uint8) []byte {
	return common.LeftPadBytes([]byte{v}, 32)
}

func addressWord(a common.Address) []byte {
	return common.LeftPadBytes(a.Bytes(), 32)
}

func (o offerItem) hash() common.Hash {
	var buf []byte
	buf = append(buf, offerItemTypeHash.Bytes()...)
	buf = append(buf, uint8Word(o.ItemType)...)
	buf = append(buf, addressWord(o.Token)...)
	buf = append(buf, uint256(o.IdentifierOrCriteria)...)
	buf = append(buf, uint256(o.StartAmount)...)
	buf = append(buf, uint256(o.EndAmount)...)
	return crypto.Keccak256Hash(buf)
}

func (c considerationItem) hash() common.Hash {
	var buf []byte
	buf = append(buf, considerationItemTypeHash.Bytes()...)
	buf = append(buf, uint8Word(c.ItemType)...)
	buf = append(buf, addressWord(c.Token)...)
	buf = append(buf, uint256(c.IdentifierOrCriteria)...)
	buf = append(buf, uint256(c.StartAmount)...)
	buf = append(buf, uint256(c.EndAmount)...)
	buf = append(buf, addressWord(c.Recipient)...)
	return crypto.Keccak256Hash(buf)
}

func (oc orderComponents) hash() common.Hash {
	var offerBuf []byte
	for _, item := range oc.Offer {
		offerBuf = append(offerBuf, item.hash().Bytes()...)
	}
	var considerationBuf []byte
	for _, item := range oc.Consideration {
		considerationBuf = append(considerationBuf, item.hash().Bytes()...)
	}

	var buf []byte
	buf = append(buf, orderComponentsTypeHash.Bytes()...)
	buf = append(buf, addressWord(oc.Offerer)...)
	buf = append(buf, addressWord(oc.Zone)...)
	buf = append(buf, crypto.Keccak256Hash(offerBuf).Bytes()...)
	buf = append(buf, crypto.Keccak256Hash(considerationBuf).Bytes()...)
	buf = append(buf, uint8Word(oc.OrderType)...)
	buf = append(buf, uint256(oc.StartTime)...)
	buf = append(buf, uint256(oc.EndTime)...)
	buf = append(buf, oc.ZoneHash.Bytes()...)
	buf = append(buf, uint256(oc.Salt)...)
	buf = append(buf, oc.ConduitKey.Bytes()...)
	buf = append(buf, uint256(oc.Counter)...)
	return crypto.Keccak256Hash(buf)
}

// domainSeparator computes the Seaport EIP-712 domain separator for a chain.
func domainSeparator(chainID int64) common.Hash {
	var buf []byte
	buf = append(buf, eip712DomainTypeHash.Bytes()...)
	buf = append(buf, crypto.Keccak256Hash([]byte(seaportName)).Bytes()...)
	buf = append(buf, crypto.Keccak256Hash([]byte(seaportVersion)).Bytes()...)
	buf = append(buf, uint256(big.NewInt(chainID))...)
	buf = append(buf, addressWord(common.HexToAddress(seaportAddress))...)
	return crypto.Keccak256Hash(buf)
}

// digest returns the value to sign: keccak256(0x1901 || domain || struct).
func (oc orderComponents) digest(chainID int64) common.Hash {
	var buf []byte
	buf = append(buf, 0x19, 0x01)
	buf = append(buf, domainSeparator(chainID).Bytes()...)
	buf = append(buf, oc.hash().Bytes()...)
	return crypto.Keccak256Hash(buf)
}

// randomSalt returns a random 16-byte salt as Seaport expects.
func randomSalt() *big.Int {
	b := make([]byte, 16)
	rand.Read(b)
	return new(big.Int).SetBytes(b)
}

// etherToWei converts a decimal asset amount to base units without
// float drift.
func etherToWei(amount float64) *big.Int {
	return decimal.NewFromFloat(amount).Shift(18).BigInt()
}

// --- JSON wire form of signed order parameters ---

type seaportItemJSON struct {
	ItemType             int    `json:"itemType"`
	Token                string `json:"token"`
	IdentifierOrCriteria string `json:"identifierOrCriteria"`
	StartAmount          string `json:"startAmount"`
	EndAmount            string `json:"endAmount"`
	Recipient            string `json:"recipient,omitempty"`
}

type seaportParametersJSON struct {
	Offerer                         string            `json:"offerer"`
	Zone                            string            `json:"zone"`
	Offer                           []seaportItemJSON `json:"offer"`
	Consideration                   []seaportItemJSON `json:"consideration"`
	OrderType                       int               `json:"orderType"`
	StartTime                       string            `json:"startTime"`
	EndTime                         string            `json:"endTime"`
	ZoneHash                        string            `json:"zoneHash"`
	Salt                            string            `json:"salt"`
	ConduitKey                      string            `json:"conduitKey"`
	TotalOriginalConsiderationItems int               `json:"totalOriginalConsiderationItems"`
	Counter                         string            `json:"counter"`
}

type signedOrderJSON struct {
	Parameters seaportParametersJSON `json:"parameters"`
	Signature  string                `json:"signature"`
}

func (oc orderComponents) toJSON(signature []byte) signedOrderJSON {
	offer := make([]seaportItemJSON, 0, len(oc.Offer))
	for _, item := range oc.Offer {
		offer = append(offer, seaportItemJSON{
			ItemType:             int(item.ItemType),
			Token:                item.Token.Hex(),
			IdentifierOrCriteria: item.IdentifierOrCriteria.String(),
			StartAmount:          item.StartAmount.String(),
			EndAmount:            item.EndAmount.String(),
		})
	}
	consideration := make([]seaportItemJSON, 0, len(oc.Consideration))
	for _, item := range oc.Consideration {
		consideration = append(consideration, seaportItemJSON{
			ItemType:             int(item.ItemType),
			Token:                item.Token.Hex(),
			IdentifierOrCriteria: item.IdentifierOrCriteria.String(),
			StartAmount:          item.StartAmount.String(),
			EndAmount:            item.EndAmount.String(),
			Recipient:            item.Recipient.Hex(),
		})
	}

	return signedOrderJSON{
		Parameters: seaportParametersJSON{
			Offerer:                         oc.Offerer.Hex(),
			Zone:                            oc.Zone.Hex(),
			Offer:                           offer,
			Consideration:                   consideration,
			OrderType:                       int(oc.OrderType),
			StartTime:                       oc.StartTime.String(),
			EndTime:                         oc.EndTime.String(),
			ZoneHash:                        oc.ZoneHash.Hex(),
			Salt:                            "0x" + oc.Salt.Text(16),
			ConduitKey:                      conduitKey,
			TotalOriginalConsiderationItems: len(consideration),
			Counter:                         oc.Counter.String(),
		},
		Signature: "0x" + fmt.Sprintf("%x", signature),
	}
}

// String is used only in debug logs.
func (s signedOrderJSON) String() string {
	b, _ := json.Marshal(s)
	return string(b)
}
