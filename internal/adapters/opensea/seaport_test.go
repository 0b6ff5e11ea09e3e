package opensea

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
)

func sampleOrder(amountWei *big.Int) orderComponents {
	return orderComponents{
		Offerer: common.HexToAddress("0x1111111111111111111111111111111111111111"),
		Offer: []offerItem{{
			ItemType:             itemERC20,
			Token:                common.HexToAddress("0x4200000000000000000000000000000000000006"),
			IdentifierOrCriteria: big.NewInt(0),
			StartAmount:          amountWei,
			EndAmount:            amountWei,
		}},
		Consideration: []considerationItem{{
			offerItem: offerItem{
				ItemType:             itemERC721Criteria,
				Token:                common.HexToAddress("0x2222222222222222222222222222222222222222"),
				IdentifierOrCriteria: big.NewInt(0),
				StartAmount:          big.NewInt(1),
				EndAmount:            big.NewInt(1),
			},
			Recipient: common.HexToAddress("0x1111111111111111111111111111111111111111"),
		}},
		OrderType:  orderTypePartialOpen,
		StartTime:  big.NewInt(1700000000),
		EndTime:    big.NewInt(1700000600),
		Salt:       big.NewInt(12345),
		ConduitKey: common.HexToHash(conduitKey),
		Counter:    big.NewInt(0),
	}
}

func TestOrderDigest_Deterministic(t *testing.T) {
	a := sampleOrder(etherToWei(0.5)).digest(8453)
	b := sampleOrder(etherToWei(0.5)).digest(8453)
	assert.Equal(t, a, b)
}

func TestOrderDigest_SensitiveToAmount(t *testing.T) {
	a := sampleOrder(etherToWei(0.5)).digest(8453)
	b := sampleOrder(etherToWei(0.5001)).digest(8453)
	assert.NotEqual(t, a, b)
}

func TestOrderDigest_SensitiveToChain(t *testing.T) {
	a := sampleOrder(etherToWei(0.5)).digest(1)
	b := sampleOrder(etherToWei(0.5)).digest(8453)
	assert.NotEqual(t, a, b, "domain separator binds the chain id")
}

func TestDomainSeparator_PerChain(t *testing.T) {
	assert.NotEqual(t, domainSeparator(1), domainSeparator(8453))
}

func TestRandomSalt_Varies(t *testing.T) {
	assert.NotEqual(t, randomSalt().String(), randomSalt().String())
}

func TestEtherToWei(t *testing.T) {
	assert.Equal(t, "500000000000000000", etherToWei(0.5).String())
	assert.Equal(t, "501000000000000000", etherToWei(0.501).String())
}

func TestOrderToJSON(t *testing.T) {
	order := sampleOrder(etherToWei(0.5))
	signed := order.toJSON(make([]byte, 65))

	assert.Equal(t, order.Offerer.Hex(), signed.Parameters.Offerer)
	assert.Len(t, signed.Parameters.Offer, 1)
	assert.Equal(t, "500000000000000000", signed.Parameters.Offer[0].StartAmount)
	assert.Equal(t, 1, signed.Parameters.TotalOriginalConsiderationItems)
	assert.Equal(t, "0x3039", signed.Parameters.Salt)
	assert.Equal(t, 132, len(signed.Signature)-2, "65 bytes hex encoded")
}
