package auth

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/GoPolymarket/polymarket-go-sdk/pkg/apierror"
)

// Contracts is the set of on-chain addresses an order interacts with on a
// given chain. NegRiskExchange/NegRiskAdapter are only populated on chains
// where negative-risk markets exist.
type Contracts struct {
	Exchange          common.Address
	NegRiskExchange   common.Address
	NegRiskAdapter    common.Address
	Collateral        common.Address
	ConditionalTokens common.Address
}

var polygonContracts = Contracts{
	Exchange:          common.HexToAddress("0x4bFb41d5B3570DeFd03C39a9A4D8dE6Bd8B8982E"),
	NegRiskExchange:   common.HexToAddress("0xC5d563A36AE78145C45a50134d48A1215220f80a"),
	NegRiskAdapter:    common.HexToAddress("0xd91E80cF2E7be2e162c6513ceD06f1dD0dA35296"),
	Collateral:        common.HexToAddress("0x2791Bca1f2de4661ED88A30C99A7a9449Aa84174"),
	ConditionalTokens: common.HexToAddress("0x4D97DCd97eC945f40cF65F87097ACe5EA0476045"),
}

var amoyContracts = Contracts{
	Exchange:          common.HexToAddress("0xdFE02Eb6733538f8Ea35D585af8DE5958AD99E40"),
	NegRiskExchange:   common.HexToAddress("0xC5d563A36AE78145C45a50134d48A1215220f80a"),
	NegRiskAdapter:    common.HexToAddress("0xd91E80cF2E7be2e162c6513ceD06f1dD0dA35296"),
	Collateral:        common.HexToAddress("0x9c4e1703476e875070ee25b56a58b008cfb8fa78"),
	ConditionalTokens: common.HexToAddress("0x69308FB512518e39F9b16112fA8d994F4e2Bf8bB"),
}

// ChainContracts returns the contract set for a chain.
func ChainContracts(chainID int64) (Contracts, error) {
	switch chainID {
	case PolygonChainID:
		return polygonContracts, nil
	case AmoyChainID:
		return amoyContracts, nil
	default:
		return Contracts{}, apierror.MissingContractConfig(chainID, false)
	}
}

// ContractConfig returns the contract set for a chain with Exchange resolved
// for the market flavor: the negative-risk exchange when negRisk is set, the
// standard CTF exchange otherwise.
func ContractConfig(chainID int64, negRisk bool) (Contracts, error) {
	contracts, err := ChainContracts(chainID)
	if err != nil {
		return Contracts{}, err
	}
	if negRisk {
		if contracts.NegRiskExchange == (common.Address{}) {
			return Contracts{}, apierror.MissingContractConfig(chainID, true)
		}
		contracts.Exchange = contracts.NegRiskExchange
	}
	return contracts, nil
}

// ExchangeAddress returns the verifying contract for an order: the standard
// CTF exchange, or the negative-risk exchange when the order's market is
// flagged neg-risk.
func ExchangeAddress(chainID int64, negRisk bool) (common.Address, error) {
	contracts, err := ChainContracts(chainID)
	if err != nil {
		return common.Address{}, err
	}
	if negRisk {
		if contracts.NegRiskExchange == (common.Address{}) {
			return common.Address{}, apierror.MissingContractConfig(chainID, true)
		}
		return contracts.NegRiskExchange, nil
	}
	return contracts.Exchange, nil
}
