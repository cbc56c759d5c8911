package reads

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/venturehub/venturehub/src/api/types"
)

var (
	usdcAddr     = common.HexToAddress("0x00000000000000000000000000000000000000aa")
	tokenAddr    = common.HexToAddress("0x00000000000000000000000000000000000000bb")
	treasuryAddr = common.HexToAddress("0x00000000000000000000000000000000000000cc")
	daoAddr      = common.HexToAddress("0x00000000000000000000000000000000000000dd")
	holderAddr   = common.HexToAddress("0x00000000000000000000000000000000000000ee")
)

type fakeStore struct {
	ventures  []types.Venture
	byID      map[uint64]*types.Venture
	wallet    string
	proposals []types.Proposal
	users     []types.User
}

func (f *fakeStore) AllVentures() ([]types.Venture, error) { return f.ventures, nil }

func (f *fakeStore) VentureByID(id uint64) (*types.Venture, error) {
	v, ok := f.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return v, nil
}

func (f *fakeStore) WalletForUser(userID uint64) (string, error) { return f.wallet, nil }

func (f *fakeStore) ProposalsForVenture(ventureID uint64) ([]types.Proposal, error) {
	return f.proposals, nil
}

func (f *fakeStore) UsersByWallets(addrs []string) ([]types.User, error) { return f.users, nil }

// fakeLedger answers view calls through a per-test respond func. Calls arrive
// concurrently, so the counter is guarded.
type fakeLedger struct {
	mu         sync.Mutex
	callCount  int
	recipients []common.Address
	respond    func(to common.Address, method string, args []interface{}) ([]interface{}, error)
}

func (f *fakeLedger) Call(ctx context.Context, to common.Address, a *abi.ABI, method string, args ...interface{}) ([]interface{}, error) {
	f.mu.Lock()
	f.callCount++
	f.mu.Unlock()
	return f.respond(to, method, args)
}

func (f *fakeLedger) TransferRecipients(ctx context.Context, token common.Address) ([]common.Address, error) {
	return f.recipients, nil
}

func ventureRow(id uint64, name, token, treasury string) types.Venture {
	v := types.Venture{
		Name:                 name,
		ShareTokenAddress:    token,
		SaleTreasuryAddress:  treasury,
		DaoAddress:           daoAddr.Hex(),
		InitialPricePerShare: "1250000",
		TotalShares:          "1000000000000000000000000",
	}
	v.ID = id
	return v
}

func TestPortfolio(t *testing.T) {
	held := ventureRow(1, "Held", tokenAddr.Hex(), treasuryAddr.Hex())
	empty := ventureRow(2, "Empty", "0x0000000000000000000000000000000000000b02", "0x0000000000000000000000000000000000000c02")
	broken := ventureRow(3, "Broken", "0x0000000000000000000000000000000000000b03", "0x0000000000000000000000000000000000000c03")

	balance, _ := new(big.Int).SetString("100000000000000000000", 10) // 100 shares
	ledger := &fakeLedger{}
	ledger.respond = func(to common.Address, method string, args []interface{}) ([]interface{}, error) {
		switch {
		case method == "balanceOf" && to == tokenAddr:
			return []interface{}{new(big.Int).Set(balance)}, nil
		case method == "balanceOf" && to == common.HexToAddress(empty.ShareTokenAddress):
			return []interface{}{big.NewInt(0)}, nil
		case method == "balanceOf":
			return nil, errors.New("rpc timeout")
		case method == "pricePerShare" && to == treasuryAddr:
			return []interface{}{big.NewInt(2000000)}, nil
		}
		return nil, errors.New("unexpected call " + method)
	}
	store := &fakeStore{ventures: []types.Venture{held, empty, broken}, wallet: holderAddr.Hex()}

	items, err := New(store, ledger, usdcAddr).Portfolio(context.Background(), 42)
	require.NoError(t, err)

	// zero-balance and failing ventures are dropped, not fatal
	require.Len(t, items, 1)
	assert.Equal(t, "Held", items[0].Venture.Name)
	assert.Equal(t, balance.String(), items[0].SharesOwned)
	assert.Equal(t, "2000000", items[0].CurrentPrice)
	assert.Equal(t, "200000000", items[0].CurrentValue) // 100 shares at $2
	assert.Equal(t, "1250000", items[0].InitialPrice)
}

func TestPortfolioNoWallet(t *testing.T) {
	ledger := &fakeLedger{}
	store := &fakeStore{ventures: []types.Venture{ventureRow(1, "V", tokenAddr.Hex(), treasuryAddr.Hex())}}

	items, err := New(store, ledger, usdcAddr).Portfolio(context.Background(), 42)
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Zero(t, ledger.callCount, "no wallet means no chain reads")
}

func TestDashboard(t *testing.T) {
	v := ventureRow(1, "Held", tokenAddr.Hex(), treasuryAddr.Hex())
	live := types.Proposal{VentureID: 1, ProposalOnchainID: "101", Title: "Live"}
	live.ID = 1
	dark := types.Proposal{VentureID: 1, ProposalOnchainID: "102", Title: "Dark"}
	dark.ID = 2

	ledger := &fakeLedger{recipients: nil}
	ledger.respond = func(to common.Address, method string, args []interface{}) ([]interface{}, error) {
		switch method {
		case "balanceOf":
			if to == usdcAddr {
				return []interface{}{big.NewInt(750000000)}, nil // treasury USDC
			}
			return []interface{}{big.NewInt(5)}, nil // user shares
		case "pricePerShare":
			return []interface{}{big.NewInt(2000000)}, nil
		case "state":
			if args[0].(*big.Int).String() == "102" {
				return nil, errors.New("rpc timeout")
			}
			return []interface{}{uint8(1)}, nil
		case "proposalVotes":
			return []interface{}{big.NewInt(10), big.NewInt(60), big.NewInt(40)}, nil
		case "proposalSnapshot":
			return []interface{}{big.NewInt(1234)}, nil
		case "quorum":
			return []interface{}{big.NewInt(100)}, nil
		}
		return nil, errors.New("unexpected call " + method)
	}
	store := &fakeStore{
		byID:      map[uint64]*types.Venture{1: &v},
		wallet:    holderAddr.Hex(),
		proposals: []types.Proposal{live, dark},
	}

	d, err := New(store, ledger, usdcAddr).Dashboard(context.Background(), 1, 42)
	require.NoError(t, err)

	assert.Equal(t, "Held", d.Venture.Name)
	assert.Equal(t, "5", d.UserStake.SharesOwned)
	assert.Equal(t, "750000000", d.OnChain.TreasuryBalance)
	assert.Equal(t, "2000000", d.OnChain.PricePerShare)
	assert.Equal(t, "1250000", d.OnChain.InitialPrice)
	assert.Empty(t, d.Shareholders)

	require.Len(t, d.Proposals, 2)
	hydrated := d.Proposals[0]
	require.NotNil(t, hydrated.Status)
	assert.Equal(t, 1, *hydrated.Status)
	assert.Equal(t, "60", hydrated.ForVotes)
	assert.Equal(t, "10", hydrated.AgainstVotes)
	assert.Equal(t, "40", hydrated.AbstainVotes)
	assert.Equal(t, "1234", hydrated.SnapshotBlock)
	assert.Equal(t, "100", hydrated.QuorumRequired)
	assert.True(t, hydrated.QuorumMet, "for 60 + abstain 40 meets quorum 100")

	// one proposal failing to hydrate degrades to status-unknown, keeping
	// the row fields
	degraded := d.Proposals[1]
	assert.Nil(t, degraded.Status)
	assert.Equal(t, "Dark", degraded.Title)
	assert.Empty(t, degraded.ForVotes)
}

func TestDashboardUnknownVenture(t *testing.T) {
	store := &fakeStore{byID: map[uint64]*types.Venture{}}
	_, err := New(store, &fakeLedger{}, usdcAddr).Dashboard(context.Background(), 9, 42)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestShareholders(t *testing.T) {
	v := ventureRow(1, "Held", tokenAddr.Hex(), treasuryAddr.Hex())
	known := common.HexToAddress("0x1111111111111111111111111111111111111111")
	exited := common.HexToAddress("0x2222222222222222222222222222222222222222")
	whale := common.HexToAddress("0x3333333333333333333333333333333333333333")

	ledger := &fakeLedger{recipients: []common.Address{known, exited, whale}}
	ledger.respond = func(to common.Address, method string, args []interface{}) ([]interface{}, error) {
		switch args[0].(common.Address) {
		case known:
			return []interface{}{big.NewInt(50)}, nil
		case exited:
			return []interface{}{big.NewInt(0)}, nil
		case whale:
			return []interface{}{big.NewInt(200)}, nil
		}
		return nil, errors.New("unexpected holder")
	}
	knownWallet := known.Hex()
	store := &fakeStore{
		byID:  map[uint64]*types.Venture{1: &v},
		users: []types.User{{FullName: "Ada Founder", Role: "entrepreneur", WalletAddress: &knownWallet}},
	}

	holders, err := New(store, ledger, usdcAddr).Shareholders(context.Background(), 1)
	require.NoError(t, err)

	// exited holder dropped; descending by balance; unknown wallet keeps a
	// truncated address identity
	require.Len(t, holders, 2)
	assert.Equal(t, "200", holders[0].SharesOwned)
	assert.Equal(t, "0x3333...3333", holders[0].FullName)
	assert.Equal(t, "external", holders[0].Role)
	assert.Equal(t, "50", holders[1].SharesOwned)
	assert.Equal(t, "Ada Founder", holders[1].FullName)
	assert.Equal(t, "entrepreneur", holders[1].Role)
}

func TestStats(t *testing.T) {
	v := ventureRow(1, "Held", tokenAddr.Hex(), treasuryAddr.Hex())
	ledger := &fakeLedger{}
	ledger.respond = func(to common.Address, method string, args []interface{}) ([]interface{}, error) {
		switch method {
		case "sharesSold":
			return []interface{}{big.NewInt(300)}, nil
		case "pricePerShare":
			return []interface{}{big.NewInt(2000000)}, nil
		case "totalSharesForSale":
			return []interface{}{big.NewInt(400)}, nil
		}
		return nil, errors.New("unexpected call " + method)
	}
	store := &fakeStore{byID: map[uint64]*types.Venture{1: &v}}

	stats, err := New(store, ledger, usdcAddr).Stats(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "300", stats.SharesSold)
	assert.Equal(t, "2000000", stats.PricePerShare)
	assert.Equal(t, "400", stats.TotalSharesForSale)
	assert.Equal(t, "1250000", stats.InitialPrice)
	assert.Equal(t, v.TotalShares, stats.TotalShares)
}

func TestStatsFailureIsFatal(t *testing.T) {
	v := ventureRow(1, "Held", tokenAddr.Hex(), treasuryAddr.Hex())
	ledger := &fakeLedger{}
	ledger.respond = func(to common.Address, method string, args []interface{}) ([]interface{}, error) {
		if method == "sharesSold" {
			return nil, errors.New("rpc timeout")
		}
		return []interface{}{big.NewInt(1)}, nil
	}
	store := &fakeStore{byID: map[uint64]*types.Venture{1: &v}}

	_, err := New(store, ledger, usdcAddr).Stats(context.Background(), 1)
	require.ErrorContains(t, err, "rpc timeout")
}
