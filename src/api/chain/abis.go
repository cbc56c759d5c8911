package chain

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// Minimal ABI fragments for the externally-deployed contracts. Only the
// functions and events this service calls or parses are declared.

const ventureFactoryJSON = `[
	{"type":"function","name":"createShareToken","stateMutability":"nonpayable","inputs":[{"name":"name","type":"string"},{"name":"symbol","type":"string"},{"name":"totalShares","type":"uint256"}],"outputs":[{"name":"","type":"address"}]},
	{"type":"function","name":"createVentureEcosystem","stateMutability":"nonpayable","inputs":[{"name":"params","type":"tuple","components":[{"name":"founder","type":"address"},{"name":"tokenURI","type":"string"},{"name":"totalShares","type":"uint256"},{"name":"pricePerShare","type":"uint256"},{"name":"demoAdmin","type":"address"},{"name":"shareToken","type":"address"}]}],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"event","name":"TokenCreated","inputs":[{"name":"shareToken","type":"address","indexed":true},{"name":"name","type":"string","indexed":false},{"name":"symbol","type":"string","indexed":false}],"anonymous":false},
	{"type":"event","name":"VentureCreated","inputs":[{"name":"ventureId","type":"uint256","indexed":true},{"name":"founder","type":"address","indexed":true},{"name":"vault","type":"address","indexed":false},{"name":"saleTreasury","type":"address","indexed":false},{"name":"dao","type":"address","indexed":false},{"name":"timelock","type":"address","indexed":false}],"anonymous":false}
]`

const ventureShareJSON = `[
	{"type":"function","name":"balanceOf","stateMutability":"view","inputs":[{"name":"account","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"event","name":"Transfer","inputs":[{"name":"from","type":"address","indexed":true},{"name":"to","type":"address","indexed":true},{"name":"value","type":"uint256","indexed":false}],"anonymous":false}
]`

const saleTreasuryJSON = `[
	{"type":"function","name":"pricePerShare","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"sharesSold","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"totalSharesForSale","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"distributeFunds","stateMutability":"nonpayable","inputs":[],"outputs":[]},
	{"type":"function","name":"setPriceByAdmin","stateMutability":"nonpayable","inputs":[{"name":"newPrice","type":"uint256"}],"outputs":[]}
]`

const ventureDAOJSON = `[
	{"type":"function","name":"propose","stateMutability":"nonpayable","inputs":[{"name":"targets","type":"address[]"},{"name":"values","type":"uint256[]"},{"name":"calldatas","type":"bytes[]"},{"name":"description","type":"string"}],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"state","stateMutability":"view","inputs":[{"name":"proposalId","type":"uint256"}],"outputs":[{"name":"","type":"uint8"}]},
	{"type":"function","name":"proposalVotes","stateMutability":"view","inputs":[{"name":"proposalId","type":"uint256"}],"outputs":[{"name":"againstVotes","type":"uint256"},{"name":"forVotes","type":"uint256"},{"name":"abstainVotes","type":"uint256"}]},
	{"type":"function","name":"proposalSnapshot","stateMutability":"view","inputs":[{"name":"proposalId","type":"uint256"}],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"quorum","stateMutability":"view","inputs":[{"name":"blockNumber","type":"uint256"}],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"castVoteBySigRaw","stateMutability":"nonpayable","inputs":[{"name":"proposalId","type":"uint256"},{"name":"support","type":"uint8"},{"name":"v","type":"uint8"},{"name":"r","type":"bytes32"},{"name":"s","type":"bytes32"}],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"event","name":"ProposalCreated","inputs":[{"name":"proposalId","type":"uint256","indexed":false},{"name":"proposer","type":"address","indexed":false},{"name":"targets","type":"address[]","indexed":false},{"name":"values","type":"uint256[]","indexed":false},{"name":"signatures","type":"string[]","indexed":false},{"name":"calldatas","type":"bytes[]","indexed":false},{"name":"voteStart","type":"uint256","indexed":false},{"name":"voteEnd","type":"uint256","indexed":false},{"name":"description","type":"string","indexed":false}],"anonymous":false}
]`

const erc20JSON = `[
	{"type":"function","name":"balanceOf","stateMutability":"view","inputs":[{"name":"account","type":"address"}],"outputs":[{"name":"","type":"uint256"}]}
]`

var (
	FactoryABI  = mustABI(ventureFactoryJSON)
	ShareABI    = mustABI(ventureShareJSON)
	TreasuryABI = mustABI(saleTreasuryJSON)
	DAOABI      = mustABI(ventureDAOJSON)
	ERC20ABI    = mustABI(erc20JSON)
)

func mustABI(src string) *abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(src))
	if err != nil {
		panic(err)
	}
	return &parsed
}

// EcosystemParams is the tuple argument of createVentureEcosystem. Field
// order and names must match the ABI components.
type EcosystemParams struct {
	Founder       common.Address
	TokenURI      string
	TotalShares   *big.Int
	PricePerShare *big.Int
	DemoAdmin     common.Address
	ShareToken    common.Address
}
