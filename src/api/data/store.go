package data

import (
	"gorm.io/gorm"

	"github.com/venturehub/venturehub/src/api/types"
)

// Store is the gorm-backed index store used by the relay orchestrator and
// the aggregation reader.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store { return &Store{db: db} }

// WalletForUser returns the user's linked wallet address, or "" if none is
// linked yet.
func (s *Store) WalletForUser(userID uint64) (string, error) {
	var user types.User
	if err := s.db.First(&user, userID).Error; err != nil {
		return "", err
	}
	if user.WalletAddress == nil {
		return "", nil
	}
	return *user.WalletAddress, nil
}

// VentureAddresses resolves the governance and sale-treasury contracts for a
// venture.
func (s *Store) VentureAddresses(ventureID uint64) (dao, treasury string, err error) {
	var v types.Venture
	if err := s.db.Select("dao_address", "sale_treasury_address").First(&v, ventureID).Error; err != nil {
		return "", "", err
	}
	return v.DaoAddress, v.SaleTreasuryAddress, nil
}

func (s *Store) SaveVenture(v *types.Venture) error {
	return s.db.Create(v).Error
}

func (s *Store) SaveProposal(p *types.Proposal) error {
	return s.db.Create(p).Error
}

func (s *Store) AllVentures() ([]types.Venture, error) {
	var ventures []types.Venture
	err := s.db.Find(&ventures).Error
	return ventures, err
}

func (s *Store) VentureByID(id uint64) (*types.Venture, error) {
	var v types.Venture
	if err := s.db.First(&v, id).Error; err != nil {
		return nil, err
	}
	return &v, nil
}

func (s *Store) ProposalsForVenture(ventureID uint64) ([]types.Proposal, error) {
	var proposals []types.Proposal
	err := s.db.Where("venture_id = ?", ventureID).Order("created_at desc").Find(&proposals).Error
	return proposals, err
}

// UsersByWallets resolves off-chain identities for a set of wallet
// addresses. Matching is case-insensitive on the caller's side.
func (s *Store) UsersByWallets(addrs []string) ([]types.User, error) {
	if len(addrs) == 0 {
		return nil, nil
	}
	var users []types.User
	err := s.db.Where("wallet_address IN ?", addrs).Find(&users).Error
	return users, err
}
