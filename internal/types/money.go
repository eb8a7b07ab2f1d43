// README: Common money value object used across modules.
package types

type Money struct {
	Amount   int64
	Currency string
}

// CurrencyINR is the currency every budget in the planner is expressed in.
const CurrencyINR = "INR"
