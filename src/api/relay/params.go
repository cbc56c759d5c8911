package relay

import (
	"fmt"
	"math/big"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// Fixed-point unit conventions. Applied everywhere valuation is computed;
// never mix the two scales.
const (
	ShareDecimals = 18 // share-token base units
	FiatDecimals  = 6  // USDC-style fiat base units
)

// saleFractionPct is the portion of total shares offered through the sale
// treasury at creation.
const saleFractionPct = 40

var shareUnit = new(big.Int).Exp(big.NewInt(10), big.NewInt(ShareDecimals), nil)

// TokenSymbol derives a short ticker from the venture name: the first four
// characters, uppercased, with whitespace removed.
func TokenSymbol(name string) string {
	runes := []rune(name)
	if len(runes) > 4 {
		runes = runes[:4]
	}
	var b strings.Builder
	for _, r := range runes {
		if unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(unicode.ToUpper(r))
	}
	return b.String()
}

// TokenName derives the share-token display name.
func TokenName(ventureName string) string {
	return ventureName + " Share"
}

// SaleParams converts the human-readable fundraising goal and total share
// count into on-chain parameters: total shares and shares-for-sale in
// 18-decimal base units, and the initial price per share in 6-decimal base
// units. The price division truncates; the remainder is accepted, not an
// error. A share count whose sale tranche truncates to zero base units is
// rejected: it has no representable price.
func SaleParams(goal, totalShares decimal.Decimal) (totalSharesBN, sharesForSale, initialPrice *big.Int, err error) {
	totalSharesBN = totalShares.Shift(ShareDecimals).BigInt()
	sharesForSale = new(big.Int).Div(
		new(big.Int).Mul(totalSharesBN, big.NewInt(saleFractionPct)),
		big.NewInt(100),
	)
	if sharesForSale.Sign() == 0 {
		return nil, nil, nil, fmt.Errorf("%w: %s total shares leaves an empty sale tranche",
			ErrQuantityTooSmall, totalShares)
	}

	goalBN := goal.Shift(FiatDecimals).BigInt()
	initialPrice = new(big.Int).Div(new(big.Int).Mul(goalBN, shareUnit), sharesForSale)
	return totalSharesBN, sharesForSale, initialPrice, nil
}
