package types

import "time"

// Users
type User struct {
	ID            uint64  `gorm:"primaryKey" json:"id"`
	FullName      string  `gorm:"size:255;not null" json:"full_name"`
	Email         string  `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash  string  `gorm:"size:255;not null" json:"-"`
	Role          string  `gorm:"size:32;not null" json:"role"` // entrepreneur, vc, admin
	WalletAddress *string `gorm:"size:64;uniqueIndex" json:"wallet_address"`
	CreatedAt     time.Time `json:"created_at"`
}

// Ventures mirrors the on-chain venture ecosystem. The address columns are
// written exactly once, together, after both creation transactions confirm.
type Venture struct {
	ID                   uint64 `gorm:"primaryKey" json:"id"`
	VentureNftID         string `gorm:"size:78;not null" json:"venture_nft_id"`
	FounderID            uint64 `gorm:"index;not null" json:"founder_id"`
	Name                 string `gorm:"size:255;not null" json:"name"`
	Industry             string `gorm:"size:128" json:"industry"`
	Mission              string `gorm:"type:text" json:"mission"`
	TeamInfo             string `gorm:"type:text" json:"team_info"`
	IpfsMetadataURI      string `gorm:"size:256" json:"ipfs_metadata_uri"`
	LogoURL              string `gorm:"size:256" json:"logo_url"`
	ShareTokenAddress    string `gorm:"size:64;not null" json:"share_token_address"`
	VaultAddress         string `gorm:"size:64;not null" json:"vault_address"`
	SaleTreasuryAddress  string `gorm:"size:64;not null" json:"sale_treasury_address"`
	DaoAddress           string `gorm:"size:64;not null" json:"dao_address"`
	TimelockAddress      string `gorm:"size:64;not null" json:"timelock_address"`
	FundraisingGoal      string `gorm:"size:64;not null" json:"fundraising_goal"`        // fiat units, 6 decimals when scaled
	TotalShares          string `gorm:"size:78;not null" json:"total_shares"`            // token base units, 18 decimals
	InitialPricePerShare string `gorm:"size:78;not null" json:"initial_price_per_share"` // 6-decimal base units
	CreatedAt            time.Time `json:"created_at"`
}

// Investments is a witness set: a row records THAT a user has ever held
// shares of a venture. The authoritative balance is always read live from
// the ledger; SharesOwned stays "0" forever.
type Investment struct {
	ID          uint64 `gorm:"primaryKey"`
	UserID      uint64 `gorm:"uniqueIndex:idx_user_venture;not null"`
	VentureID   uint64 `gorm:"uniqueIndex:idx_user_venture;not null"`
	SharesOwned string `gorm:"size:8;default:'0'"`
	CreatedAt   time.Time
}

// Proposals persists the off-chain half of a governance proposal. Description
// must stay byte-identical to the string submitted on-chain: it is hashed
// again when the proposal is queued or executed.
type Proposal struct {
	ID                uint64 `gorm:"primaryKey" json:"id"`
	VentureID         uint64 `gorm:"index;not null" json:"venture_id"`
	ProposerID        uint64 `gorm:"not null" json:"proposer_id"`
	ProposalOnchainID string `gorm:"size:78;not null" json:"proposal_onchain_id"`
	Title             string `gorm:"size:255;not null" json:"title"`
	Description       string `gorm:"type:text;not null" json:"description"`
	Targets           string `gorm:"type:text" json:"targets"`   // JSON array of addresses
	Values            string `gorm:"type:text" json:"values"`    // JSON array of decimal strings
	Calldatas         string `gorm:"type:text" json:"calldatas"` // JSON array of hex strings
	CreatedAt         time.Time `json:"created_at"`
}

// Listings are marketplace offers mirrored from on-chain listing events.
// Status moves forward only: open -> sold or open -> cancelled.
type Listing struct {
	ID                uint64 `gorm:"primaryKey" json:"id"`
	ListingOnchainID  string `gorm:"size:78;uniqueIndex;not null" json:"listing_onchain_id"`
	VentureID         uint64 `gorm:"index;not null" json:"venture_id"`
	SellerAddress     string `gorm:"size:64;not null" json:"seller_address"`
	ShareTokenAddress string `gorm:"size:64;index;not null" json:"share_token_address"`
	Amount            string `gorm:"size:78;not null" json:"amount"`
	PricePerShare     string `gorm:"size:78;not null" json:"price_per_share"`
	Status            string `gorm:"size:16;default:'open'" json:"status"`
	CreatedAt         time.Time `json:"created_at"`
}

const (
	ListingOpen      = "open"
	ListingSold      = "sold"
	ListingCancelled = "cancelled"
)

// Settings
type Setting struct {
	ID    uint8  `gorm:"primaryKey"`
	Name  string `gorm:"size:32;not null"`
	Value string `gorm:"size:256;not null"`
}

// PortfolioItem is a venture row hydrated with the caller's live holding.
// All big-number fields are decimal strings in base units.
type PortfolioItem struct {
	Venture
	SharesOwned  string `json:"shares_owned"`
	CurrentValue string `json:"currentValue"` // 6-decimal base units
	CurrentPrice string `json:"currentPrice"` // 6-decimal base units
	InitialPrice string `json:"initialPrice"`
}

// ProposalView is a proposal row hydrated with live governance state.
// Status is nil when live hydration failed for this proposal.
type ProposalView struct {
	Proposal
	Status         *int   `json:"status"`
	ForVotes       string `json:"for_votes,omitempty"`
	AgainstVotes   string `json:"against_votes,omitempty"`
	AbstainVotes   string `json:"abstain_votes,omitempty"`
	QuorumRequired string `json:"quorum_required,omitempty"`
	SnapshotBlock  string `json:"snapshot_block,omitempty"`
	QuorumMet      bool   `json:"quorum_met"`
}

// Governance proposal states, mirroring the external governor contract.
const (
	ProposalPending = iota
	ProposalActive
	ProposalCanceled
	ProposalDefeated
	ProposalSucceeded
	ProposalQueued
	ProposalExpired
	ProposalExecuted
)

// Shareholder is one current holder of a venture's share token. FullName
// falls back to a truncated address when no user matches the wallet.
type Shareholder struct {
	FullName    string `json:"full_name"`
	Role        string `json:"role"`
	SharesOwned string `json:"shares_owned"`
}

type UserStake struct {
	SharesOwned string `json:"sharesOwned"`
}

// FinancialSnapshot is the live treasury view of a venture.
type FinancialSnapshot struct {
	TreasuryBalance string `json:"treasuryBalance"` // 6-decimal base units
	PricePerShare   string `json:"pricePerShare"`   // 6-decimal base units
	InitialPrice    string `json:"initialPrice"`
}

// Dashboard is the composite venture view: index rows plus live chain state.
type Dashboard struct {
	Venture      Venture           `json:"venture"`
	Proposals    []ProposalView    `json:"proposals"`
	UserStake    UserStake         `json:"userStake"`
	OnChain      FinancialSnapshot `json:"onChain"`
	Shareholders []Shareholder     `json:"shareholders"`
}

type VentureStats struct {
	SharesSold         string `json:"sharesSold"`
	PricePerShare      string `json:"pricePerShare"`
	InitialPrice       string `json:"initialPrice"`
	TotalSharesForSale string `json:"totalSharesForSale"`
	TotalShares        string `json:"totalShares"`
}

// OpenListing is a marketplace listing joined with its venture's display
// fields.
type OpenListing struct {
	ListingOnchainID  string `json:"listing_onchain_id"`
	SellerAddress     string `json:"seller_address"`
	ShareTokenAddress string `json:"share_token_address"`
	Amount            string `json:"amount"`
	PricePerShare     string `json:"price_per_share"`
	VentureID         uint64 `json:"venture_id"`
	VentureName       string `json:"venture_name"`
	VentureLogo       string `json:"venture_logo"`
}
