// Package relay is the write path: it executes multi-transaction,
// ledger-mutating workflows on behalf of callers who do not hold the
// operator signing key. Derived off-chain rows are only written after every
// on-chain step has confirmed and proven its effect.
package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/shopspring/decimal"

	"github.com/venturehub/venturehub/src/api/chain"
	"github.com/venturehub/venturehub/src/api/types"
)

// ContentStore pins blobs and documents and returns content hashes.
type ContentStore interface {
	PinFile(ctx context.Context, name string, data []byte) (string, error)
	PinJSON(ctx context.Context, name string, doc interface{}) (string, error)
}

// Ledger submits reads and operator-signed writes to the chain.
type Ledger interface {
	Operator() common.Address
	Call(ctx context.Context, to common.Address, a *abi.ABI, method string, args ...interface{}) ([]interface{}, error)
	Transact(ctx context.Context, to common.Address, a *abi.ABI, method string, nonce uint64, args ...interface{}) (*ethtypes.Receipt, error)
}

// Store is the slice of the index store the orchestrator needs.
type Store interface {
	WalletForUser(userID uint64) (string, error)
	VentureAddresses(ventureID uint64) (dao, treasury string, err error)
	SaveVenture(v *types.Venture) error
	SaveProposal(p *types.Proposal) error
}

// Orchestrator coordinates the privileged write workflows. All
// nonce-consuming sends go through the sequencer, so at most one workflow
// holds the operator account at a time.
type Orchestrator struct {
	store   Store
	pins    ContentStore
	ledger  Ledger
	seq     *chain.Sequencer
	factory common.Address
}

func New(store Store, pins ContentStore, ledger Ledger, seq *chain.Sequencer, factory common.Address) *Orchestrator {
	return &Orchestrator{store: store, pins: pins, ledger: ledger, seq: seq, factory: factory}
}

type CreateVentureInput struct {
	UserID          uint64
	Name            string
	Industry        string
	Mission         string
	TeamInfo        string
	FundraisingGoal decimal.Decimal // fiat units
	TotalShares     decimal.Decimal // whole shares
	Logo            []byte
}

type CreateVentureResult struct {
	VentureID string `json:"ventureId"`
	TxHash    string `json:"transactionHash"`
}

// CreateVenture runs the full creation workflow: pin content, create the
// share token, create the venture ecosystem, persist one atomic venture row.
// Any failed step aborts the whole operation with no partial row; there is
// no automatic retry. A failure after the token transaction leaves an
// orphaned token contract, which the returned error names for
// reconciliation.
func (o *Orchestrator) CreateVenture(ctx context.Context, in CreateVentureInput) (*CreateVentureResult, error) {
	// Resolve the founder wallet before touching the content store, so a
	// missing linkage performs no uploads.
	wallet, err := o.store.WalletForUser(in.UserID)
	if err != nil {
		return nil, fmt.Errorf("resolve founder: %w", err)
	}
	if wallet == "" {
		return nil, fmt.Errorf("%w: founder has no linked wallet address", ErrPrecursorMissing)
	}
	founder := common.HexToAddress(wallet)

	// Derive the sale parameters before touching the content store: a share
	// count too small to price performs no uploads either.
	totalSharesBN, _, initialPrice, err := SaleParams(in.FundraisingGoal, in.TotalShares)
	if err != nil {
		return nil, fmt.Errorf("sale parameters: %w", err)
	}

	imageHash, err := o.pins.PinFile(ctx, in.Name+"-logo", in.Logo)
	if err != nil {
		return nil, fmt.Errorf("pin logo: %w", err)
	}
	imageURI := "ipfs://" + imageHash

	metadata := map[string]interface{}{
		"name":        in.Name,
		"description": in.Mission,
		"image":       imageURI,
		"attributes": []map[string]interface{}{
			{"trait_type": "Industry", "value": in.Industry},
			{"trait_type": "Team", "value": in.TeamInfo},
			{"trait_type": "Fundraising Goal (USDC)", "value": in.FundraisingGoal.String()},
		},
	}
	metadataHash, err := o.pins.PinJSON(ctx, in.Name+"-metadata.json", metadata)
	if err != nil {
		return nil, fmt.Errorf("pin metadata: %w", err)
	}
	tokenURI := "ipfs://" + metadataHash
	log.Printf("create venture %q: pinned logo and metadata", in.Name)

	tokenName := TokenName(in.Name)
	tokenSymbol := TokenSymbol(in.Name)

	sess, err := o.seq.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("nonce: %w", err)
	}
	defer sess.End()

	// Transaction 1: create the share token.
	nonce1 := sess.Reserve()
	log.Printf("create venture %q: createShareToken at nonce %d", in.Name, nonce1)
	receipt1, err := o.ledger.Transact(ctx, o.factory, chain.FactoryABI, "createShareToken",
		nonce1, tokenName, tokenSymbol, totalSharesBN)
	if err != nil {
		return nil, fmt.Errorf("createShareToken: %w", err)
	}

	tokenArgs, err := chain.EventArgs(chain.FactoryABI, receipt1, o.factory, "TokenCreated")
	if err != nil {
		return nil, fmt.Errorf("%w: TokenCreated (tx %s): %v", ErrChainStateMismatch, receipt1.TxHash.Hex(), err)
	}
	shareToken := tokenArgs["shareToken"].(common.Address)
	log.Printf("create venture %q: share token at %s", in.Name, shareToken.Hex())

	// Transaction 2: create the rest of the ecosystem. The nonce is the
	// local increment, not a re-read: the node may not have indexed
	// transaction 1 yet.
	nonce2 := sess.Reserve()
	log.Printf("create venture %q: createVentureEcosystem at nonce %d", in.Name, nonce2)
	receipt2, err := o.ledger.Transact(ctx, o.factory, chain.FactoryABI, "createVentureEcosystem",
		nonce2, chain.EcosystemParams{
			Founder:       founder,
			TokenURI:      tokenURI,
			TotalShares:   totalSharesBN,
			PricePerShare: initialPrice,
			DemoAdmin:     o.ledger.Operator(),
			ShareToken:    shareToken,
		})
	if err != nil {
		return nil, fmt.Errorf("createVentureEcosystem (orphaned share token %s): %w", shareToken.Hex(), err)
	}

	ventureArgs, err := chain.EventArgs(chain.FactoryABI, receipt2, o.factory, "VentureCreated")
	if err != nil {
		return nil, fmt.Errorf("%w: VentureCreated (tx %s): %v", ErrChainStateMismatch, receipt2.TxHash.Hex(), err)
	}
	ventureID := ventureArgs["ventureId"].(*big.Int)

	// One atomic row with every address taken from the parsed logs, never
	// from request input.
	venture := &types.Venture{
		VentureNftID:         ventureID.String(),
		FounderID:            in.UserID,
		Name:                 in.Name,
		Industry:             in.Industry,
		Mission:              in.Mission,
		TeamInfo:             in.TeamInfo,
		IpfsMetadataURI:      tokenURI,
		LogoURL:              imageURI,
		ShareTokenAddress:    shareToken.Hex(),
		VaultAddress:         ventureArgs["vault"].(common.Address).Hex(),
		SaleTreasuryAddress:  ventureArgs["saleTreasury"].(common.Address).Hex(),
		DaoAddress:           ventureArgs["dao"].(common.Address).Hex(),
		TimelockAddress:      ventureArgs["timelock"].(common.Address).Hex(),
		FundraisingGoal:      in.FundraisingGoal.String(),
		TotalShares:          totalSharesBN.String(),
		InitialPricePerShare: initialPrice.String(),
	}
	if err := o.store.SaveVenture(venture); err != nil {
		return nil, fmt.Errorf("persist venture: %w", err)
	}
	log.Printf("create venture %q: saved as venture %d (nft %s)", in.Name, venture.ID, venture.VentureNftID)

	return &CreateVentureResult{
		VentureID: ventureID.String(),
		TxHash:    receipt2.TxHash.Hex(),
	}, nil
}

// Proposal type tags.
const (
	ProposalTypeDiscussion      = "general_discussion"
	ProposalTypeDistributeFunds = "distribute_funds"
)

type ProposalInput struct {
	VentureID   uint64
	ProposerID  uint64 // off-chain submitter; the operator signs on-chain
	Title       string
	Description string
	Type        string
}

type ProposalResult struct {
	ProposalID string `json:"proposalId"`
	TxHash     string `json:"transactionHash"`
}

// RelayProposal submits a governance proposal with the operator as the
// literal on-chain proposer and persists the off-chain record. The persisted
// description is byte-identical to the submitted one: the governor hashes it
// again at queue/execute time.
func (o *Orchestrator) RelayProposal(ctx context.Context, in ProposalInput) (*ProposalResult, error) {
	daoAddr, treasuryAddr, err := o.store.VentureAddresses(in.VentureID)
	if err != nil {
		return nil, fmt.Errorf("resolve venture %d: %w", in.VentureID, err)
	}
	dao := common.HexToAddress(daoAddr)

	fullDescription := fmt.Sprintf("Title: %s\n\n%s", in.Title, in.Description)

	var (
		targets   []common.Address
		values    []*big.Int
		calldatas [][]byte
	)
	switch in.Type {
	case ProposalTypeDistributeFunds:
		data, err := chain.TreasuryABI.Pack("distributeFunds")
		if err != nil {
			return nil, fmt.Errorf("encode distributeFunds: %w", err)
		}
		targets = []common.Address{common.HexToAddress(treasuryAddr)}
		values = []*big.Int{big.NewInt(0)}
		calldatas = [][]byte{data}
	default:
		// Plain discussion: a no-op against the governor itself.
		targets = []common.Address{dao}
		values = []*big.Int{big.NewInt(0)}
		calldatas = [][]byte{{}}
	}

	sess, err := o.seq.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("nonce: %w", err)
	}
	defer sess.End()

	log.Printf("relaying proposal %q for venture %d", in.Title, in.VentureID)
	receipt, err := o.ledger.Transact(ctx, dao, chain.DAOABI, "propose",
		sess.Reserve(), targets, values, calldatas, fullDescription)
	if err != nil {
		return nil, fmt.Errorf("propose: %w", err)
	}

	args, err := chain.EventArgs(chain.DAOABI, receipt, dao, "ProposalCreated")
	if err != nil {
		return nil, fmt.Errorf("%w: ProposalCreated (tx %s): %v", ErrChainStateMismatch, receipt.TxHash.Hex(), err)
	}
	proposalID := args["proposalId"].(*big.Int)
	log.Printf("proposal %s created, on-chain proposer %s", proposalID, args["proposer"].(common.Address).Hex())

	proposal := &types.Proposal{
		VentureID:         in.VentureID,
		ProposerID:        in.ProposerID,
		ProposalOnchainID: proposalID.String(),
		Title:             in.Title,
		Description:       fullDescription,
		Targets:           marshalAddresses(targets),
		Values:            marshalBigInts(values),
		Calldatas:         marshalCalldatas(calldatas),
	}
	if err := o.store.SaveProposal(proposal); err != nil {
		return nil, fmt.Errorf("persist proposal: %w", err)
	}

	return &ProposalResult{ProposalID: proposalID.String(), TxHash: receipt.TxHash.Hex()}, nil
}

type VoteInput struct {
	VentureID  uint64
	ProposalID *big.Int
	Support    uint8
	V          uint8
	R          common.Hash
	S          common.Hash
}

// RelayVote submits a signature-carrying vote with the operator paying gas.
// The governor recovers the signer and checks eligibility; this relay
// validates nothing and surfaces the ledger outcome verbatim.
func (o *Orchestrator) RelayVote(ctx context.Context, in VoteInput) (string, error) {
	daoAddr, _, err := o.store.VentureAddresses(in.VentureID)
	if err != nil {
		return "", fmt.Errorf("resolve venture %d: %w", in.VentureID, err)
	}

	sess, err := o.seq.Begin(ctx)
	if err != nil {
		return "", fmt.Errorf("nonce: %w", err)
	}
	defer sess.End()

	log.Printf("relaying gasless vote for proposal %s", in.ProposalID)
	receipt, err := o.ledger.Transact(ctx, common.HexToAddress(daoAddr), chain.DAOABI, "castVoteBySigRaw",
		sess.Reserve(), in.ProposalID, in.Support, in.V, [32]byte(in.R), [32]byte(in.S))
	if err != nil {
		return "", err
	}
	return receipt.TxHash.Hex(), nil
}

// SetPrice updates the live share price on the sale treasury. No index write
// follows: price is always read live.
func (o *Orchestrator) SetPrice(ctx context.Context, ventureID uint64, newPrice decimal.Decimal) (string, error) {
	_, treasuryAddr, err := o.store.VentureAddresses(ventureID)
	if err != nil {
		return "", fmt.Errorf("resolve venture %d: %w", ventureID, err)
	}

	priceBN := newPrice.Shift(FiatDecimals).BigInt()

	sess, err := o.seq.Begin(ctx)
	if err != nil {
		return "", fmt.Errorf("nonce: %w", err)
	}
	defer sess.End()

	receipt, err := o.ledger.Transact(ctx, common.HexToAddress(treasuryAddr), chain.TreasuryABI, "setPriceByAdmin",
		sess.Reserve(), priceBN)
	if err != nil {
		return "", fmt.Errorf("setPriceByAdmin: %w", err)
	}
	return receipt.TxHash.Hex(), nil
}

func marshalAddresses(addrs []common.Address) string {
	out := make([]string, len(addrs))
	for i, a := range addrs {
		out[i] = a.Hex()
	}
	body, _ := json.Marshal(out)
	return string(body)
}

func marshalBigInts(vals []*big.Int) string {
	out := make([]string, len(vals))
	for i, v := range vals {
		out[i] = v.String()
	}
	body, _ := json.Marshal(out)
	return string(body)
}

func marshalCalldatas(calls [][]byte) string {
	out := make([]string, len(calls))
	for i, c := range calls {
		out[i] = hexutil.Encode(c)
	}
	body, _ := json.Marshal(out)
	return string(body)
}
