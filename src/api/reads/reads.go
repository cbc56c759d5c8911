// Package reads is the read path: it assembles responses from index rows
// and live ledger state, fanned out concurrently, tolerating per-item
// failure of the live portion.
package reads

import (
	"context"
	"fmt"
	"log"
	"math/big"
	"sort"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/venturehub/venturehub/src/api/chain"
	"github.com/venturehub/venturehub/src/api/relay"
	"github.com/venturehub/venturehub/src/api/types"
)

// Ledger is the read-only slice of the chain client.
type Ledger interface {
	Call(ctx context.Context, to common.Address, a *abi.ABI, method string, args ...interface{}) ([]interface{}, error)
	TransferRecipients(ctx context.Context, token common.Address) ([]common.Address, error)
}

// Store is the slice of the index store the reader needs.
type Store interface {
	AllVentures() ([]types.Venture, error)
	VentureByID(id uint64) (*types.Venture, error)
	WalletForUser(userID uint64) (string, error)
	ProposalsForVenture(ventureID uint64) ([]types.Proposal, error)
	UsersByWallets(addrs []string) ([]types.User, error)
}

var shareUnit = new(big.Int).Exp(big.NewInt(10), big.NewInt(relay.ShareDecimals), nil)

type Reader struct {
	store  Store
	ledger Ledger
	usdc   common.Address // payment token read for treasury balances
}

func New(store Store, ledger Ledger, usdc common.Address) *Reader {
	return &Reader{store: store, ledger: ledger, usdc: usdc}
}

// Portfolio returns every venture the user's wallet currently holds a
// nonzero balance in, hydrated with live price and value. No linked wallet
// yields an empty result, not an error. A venture whose live reads fail is
// dropped from the result, never the whole response.
func (r *Reader) Portfolio(ctx context.Context, userID uint64) ([]types.PortfolioItem, error) {
	wallet, err := r.store.WalletForUser(userID)
	if err != nil {
		return nil, err
	}
	if wallet == "" {
		return []types.PortfolioItem{}, nil
	}
	holder := common.HexToAddress(wallet)

	ventures, err := r.store.AllVentures()
	if err != nil {
		return nil, err
	}

	items := fanOut(ventures, func(v types.Venture) (*types.PortfolioItem, error) {
		balance, err := r.callUint(ctx, common.HexToAddress(v.ShareTokenAddress), chain.ShareABI, "balanceOf", holder)
		if err != nil {
			return nil, err
		}
		if balance.Sign() == 0 {
			return nil, nil
		}

		price, err := r.callUint(ctx, common.HexToAddress(v.SaleTreasuryAddress), chain.TreasuryABI, "pricePerShare")
		if err != nil {
			return nil, err
		}
		value := new(big.Int).Div(new(big.Int).Mul(balance, price), shareUnit)

		return &types.PortfolioItem{
			Venture:      v,
			SharesOwned:  balance.String(),
			CurrentValue: value.String(),
			CurrentPrice: price.String(),
			InitialPrice: v.InitialPricePerShare,
		}, nil
	}, func(v types.Venture, err error) {
		log.Printf("portfolio: could not hydrate venture %q: %v", v.Name, err)
	})

	out := make([]types.PortfolioItem, 0, len(items))
	for _, it := range items {
		out = append(out, *it)
	}
	return out, nil
}

// Dashboard assembles the composite venture view: the index row, proposals
// hydrated with live governance state, the caller's stake, the treasury
// snapshot and the current shareholder list. One proposal failing to
// hydrate degrades that proposal to status-unknown only.
func (r *Reader) Dashboard(ctx context.Context, ventureID, userID uint64) (*types.Dashboard, error) {
	venture, err := r.store.VentureByID(ventureID)
	if err != nil {
		return nil, err
	}

	wallet, err := r.store.WalletForUser(userID)
	if err != nil {
		return nil, err
	}

	proposals, err := r.store.ProposalsForVenture(ventureID)
	if err != nil {
		return nil, err
	}

	var (
		wg           sync.WaitGroup
		userShares   = big.NewInt(0)
		treasuryBal  *big.Int
		price        *big.Int
		shareholders []types.Shareholder
		errShares    error
		errTreasury  error
		errPrice     error
		errHolders   error
	)
	treasury := common.HexToAddress(venture.SaleTreasuryAddress)

	wg.Add(4)
	go func() {
		defer wg.Done()
		if wallet == "" {
			return
		}
		userShares, errShares = r.callUint(ctx, common.HexToAddress(venture.ShareTokenAddress), chain.ShareABI,
			"balanceOf", common.HexToAddress(wallet))
	}()
	go func() {
		defer wg.Done()
		treasuryBal, errTreasury = r.callUint(ctx, r.usdc, chain.ERC20ABI, "balanceOf", treasury)
	}()
	go func() {
		defer wg.Done()
		price, errPrice = r.callUint(ctx, treasury, chain.TreasuryABI, "pricePerShare")
	}()
	go func() {
		defer wg.Done()
		shareholders, errHolders = r.shareholdersOf(ctx, venture)
	}()
	wg.Wait()

	for _, err := range []error{errShares, errTreasury, errPrice, errHolders} {
		if err != nil {
			return nil, fmt.Errorf("dashboard for venture %d: %w", ventureID, err)
		}
	}

	return &types.Dashboard{
		Venture:   *venture,
		Proposals: r.hydrateProposals(ctx, common.HexToAddress(venture.DaoAddress), proposals),
		UserStake: types.UserStake{SharesOwned: userShares.String()},
		OnChain: types.FinancialSnapshot{
			TreasuryBalance: treasuryBal.String(),
			PricePerShare:   price.String(),
			InitialPrice:    venture.InitialPricePerShare,
		},
		Shareholders: shareholders,
	}, nil
}

// hydrateProposals fetches live state for each proposal concurrently. A
// proposal whose live reads fail keeps its row fields with a nil status.
func (r *Reader) hydrateProposals(ctx context.Context, dao common.Address, proposals []types.Proposal) []types.ProposalView {
	views := make([]types.ProposalView, len(proposals))
	var wg sync.WaitGroup
	for i, p := range proposals {
		wg.Add(1)
		go func(i int, p types.Proposal) {
			defer wg.Done()
			views[i] = r.hydrateProposal(ctx, dao, p)
		}(i, p)
	}
	wg.Wait()
	return views
}

func (r *Reader) hydrateProposal(ctx context.Context, dao common.Address, p types.Proposal) types.ProposalView {
	view := types.ProposalView{Proposal: p}

	id, ok := new(big.Int).SetString(p.ProposalOnchainID, 10)
	if !ok {
		log.Printf("proposal %d has malformed on-chain id %q", p.ID, p.ProposalOnchainID)
		return view
	}

	state, err := r.callUint8(ctx, dao, "state", id)
	if err != nil {
		log.Printf("could not sync proposal %s: %v", p.ProposalOnchainID, err)
		return view
	}

	out, err := r.ledger.Call(ctx, dao, chain.DAOABI, "proposalVotes", id)
	if err != nil || len(out) < 3 {
		log.Printf("could not sync proposal %s votes: %v", p.ProposalOnchainID, err)
		return view
	}
	against := out[0].(*big.Int)
	forVotes := out[1].(*big.Int)
	abstain := out[2].(*big.Int)

	status := int(state)
	view.Status = &status
	view.ForVotes = forVotes.String()
	view.AgainstVotes = against.String()
	view.AbstainVotes = abstain.String()

	// Quorum is evaluated at the proposal's snapshot block; for + abstain
	// weigh toward it, against does not.
	snapshot, err := r.callUint(ctx, dao, chain.DAOABI, "proposalSnapshot", id)
	if err != nil {
		log.Printf("could not read snapshot for proposal %s: %v", p.ProposalOnchainID, err)
		return view
	}
	quorum, err := r.callUint(ctx, dao, chain.DAOABI, "quorum", snapshot)
	if err != nil {
		log.Printf("could not read quorum for proposal %s: %v", p.ProposalOnchainID, err)
		return view
	}

	view.SnapshotBlock = snapshot.String()
	view.QuorumRequired = quorum.String()
	view.QuorumMet = new(big.Int).Add(forVotes, abstain).Cmp(quorum) >= 0
	return view
}

// Shareholders resolves the current holder list for a venture.
func (r *Reader) Shareholders(ctx context.Context, ventureID uint64) ([]types.Shareholder, error) {
	venture, err := r.store.VentureByID(ventureID)
	if err != nil {
		return nil, err
	}
	return r.shareholdersOf(ctx, venture)
}

type holding struct {
	address common.Address
	balance *big.Int
}

// shareholdersOf enumerates every address that ever received the share
// token, keeps those with a live positive balance, and resolves off-chain
// identities by wallet, falling back to a truncated address. Sorted
// descending by balance; tie order is not guaranteed.
func (r *Reader) shareholdersOf(ctx context.Context, venture *types.Venture) ([]types.Shareholder, error) {
	token := common.HexToAddress(venture.ShareTokenAddress)
	recipients, err := r.ledger.TransferRecipients(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("holder history for %s: %w", venture.Name, err)
	}

	holders := fanOut(recipients, func(addr common.Address) (*holding, error) {
		balance, err := r.callUint(ctx, token, chain.ShareABI, "balanceOf", addr)
		if err != nil {
			return nil, err
		}
		if balance.Sign() <= 0 {
			return nil, nil
		}
		return &holding{address: addr, balance: balance}, nil
	}, func(addr common.Address, err error) {
		log.Printf("shareholders: could not read balance of %s: %v", addr.Hex(), err)
	})

	if len(holders) == 0 {
		return []types.Shareholder{}, nil
	}

	wallets := make([]string, len(holders))
	for i, h := range holders {
		wallets[i] = h.address.Hex()
	}
	users, err := r.store.UsersByWallets(wallets)
	if err != nil {
		return nil, err
	}
	byWallet := make(map[string]types.User, len(users))
	for _, u := range users {
		if u.WalletAddress != nil {
			byWallet[strings.ToLower(*u.WalletAddress)] = u
		}
	}

	sort.Slice(holders, func(i, j int) bool {
		return holders[i].balance.Cmp(holders[j].balance) > 0
	})

	out := make([]types.Shareholder, 0, len(holders))
	for _, h := range holders {
		hex := h.address.Hex()
		sh := types.Shareholder{
			FullName:    hex[:6] + "..." + hex[len(hex)-4:],
			Role:        "external",
			SharesOwned: h.balance.String(),
		}
		if u, ok := byWallet[strings.ToLower(hex)]; ok {
			sh.FullName = u.FullName
			sh.Role = u.Role
		}
		out = append(out, sh)
	}
	return out, nil
}

// Stats merges the venture row with the live treasury sale counters.
func (r *Reader) Stats(ctx context.Context, ventureID uint64) (*types.VentureStats, error) {
	venture, err := r.store.VentureByID(ventureID)
	if err != nil {
		return nil, err
	}
	treasury := common.HexToAddress(venture.SaleTreasuryAddress)

	var (
		wg                        sync.WaitGroup
		sold, price, forSale      *big.Int
		errSold, errPrice, errFor error
	)
	wg.Add(3)
	go func() { defer wg.Done(); sold, errSold = r.callUint(ctx, treasury, chain.TreasuryABI, "sharesSold") }()
	go func() { defer wg.Done(); price, errPrice = r.callUint(ctx, treasury, chain.TreasuryABI, "pricePerShare") }()
	go func() {
		defer wg.Done()
		forSale, errFor = r.callUint(ctx, treasury, chain.TreasuryABI, "totalSharesForSale")
	}()
	wg.Wait()

	for _, err := range []error{errSold, errPrice, errFor} {
		if err != nil {
			return nil, fmt.Errorf("stats for venture %d: %w", ventureID, err)
		}
	}

	return &types.VentureStats{
		SharesSold:         sold.String(),
		PricePerShare:      price.String(),
		InitialPrice:       venture.InitialPricePerShare,
		TotalSharesForSale: forSale.String(),
		TotalShares:        venture.TotalShares,
	}, nil
}

func (r *Reader) callUint(ctx context.Context, to common.Address, a *abi.ABI, method string, args ...interface{}) (*big.Int, error) {
	out, err := r.ledger.Call(ctx, to, a, method, args...)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%s returned nothing", method)
	}
	v, ok := out[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("%s returned %T, want *big.Int", method, out[0])
	}
	return v, nil
}

func (r *Reader) callUint8(ctx context.Context, to common.Address, method string, args ...interface{}) (uint8, error) {
	out, err := r.ledger.Call(ctx, to, chain.DAOABI, method, args...)
	if err != nil {
		return 0, err
	}
	if len(out) == 0 {
		return 0, fmt.Errorf("%s returned nothing", method)
	}
	v, ok := out[0].(uint8)
	if !ok {
		return 0, fmt.Errorf("%s returned %T, want uint8", method, out[0])
	}
	return v, nil
}
