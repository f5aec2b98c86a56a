package sim

import "github.com/shopspring/decimal"

// DefaultBalance is the starting cash of every episode unless overridden.
const DefaultBalance = 100000

// Portfolio is the cash and base-asset position of the agent. Value is the
// mark-to-market total at the last priced step.
type Portfolio struct {
	Balance decimal.Decimal
	Shares  decimal.Decimal
	Value   decimal.Decimal
}

func NewPortfolio(balance decimal.Decimal) Portfolio {
	return Portfolio{
		Balance: balance,
		Shares:  decimal.Zero,
		Value:   balance,
	}
}

// MarkToMarket values cash plus holdings at price.
func (p Portfolio) MarkToMarket(price decimal.Decimal) decimal.Decimal {
	return p.Balance.Add(p.Shares.Mul(price))
}

// Trade applies a to the portfolio at price and returns the new portfolio and
// the number of whole shares exchanged. Value is left untouched; callers
// revalue with MarkToMarket. Buys only ever spend a fraction of the cash and
// sells never exceed holdings, so neither side can go negative.
func (p Portfolio) Trade(a Action, price decimal.Decimal) (Portfolio, decimal.Decimal) {
	mag := decimal.NewFromFloat(clamp01(a.Magnitude))

	switch a.Direction {
	case Buy:
		if !p.Balance.IsPositive() || !price.IsPositive() {
			return p, decimal.Zero
		}
		invest := p.Balance.Mul(mag)
		shares := invest.Div(price).Floor()
		// Div rounds at DivisionPrecision and may land on the next whole share.
		if shares.Mul(price).GreaterThan(invest) {
			shares = shares.Sub(decimal.NewFromInt(1))
		}
		if !shares.IsPositive() {
			return p, decimal.Zero
		}
		p.Balance = p.Balance.Sub(shares.Mul(price))
		p.Shares = p.Shares.Add(shares)
		return p, shares

	case Sell:
		if !p.Shares.IsPositive() {
			return p, decimal.Zero
		}
		shares := p.Shares.Mul(mag).Truncate(0)
		if !shares.IsPositive() {
			return p, decimal.Zero
		}
		p.Balance = p.Balance.Add(shares.Mul(price))
		p.Shares = p.Shares.Sub(shares)
		return p, shares.Neg()
	}

	return p, decimal.Zero
}
