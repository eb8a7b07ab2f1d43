package itinerary

import (
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"myitinerary/internal/types"
)

type BudgetKind string

const (
	BudgetPredefined BudgetKind = "predefined"
	BudgetCustom     BudgetKind = "custom"
)

// BudgetRanges are the preset budget selections offered by the form, in rupees.
var BudgetRanges = []string{
	"40000-80000",
	"80000-160000",
	"160000-320000",
	"320000-640000",
	"640000+",
}

// Budget is either one of BudgetRanges or a positive custom amount.
type Budget struct {
	Kind   BudgetKind
	Range  string
	Amount types.Money
}

var amountPrinter = message.NewPrinter(language.English)

// PredefinedBudget selects one of BudgetRanges.
func PredefinedBudget(r string) (Budget, error) {
	r = strings.TrimSpace(r)
	for _, br := range BudgetRanges {
		if br == r {
			return Budget{Kind: BudgetPredefined, Range: r}, nil
		}
	}
	return Budget{}, missingField("budget")
}

func CustomBudget(amount int64) Budget {
	return Budget{Kind: BudgetCustom, Amount: types.Money{Amount: amount, Currency: types.CurrencyINR}}
}

// ParseCustomBudget keeps only the digits of text, as the custom budget input does,
// and rejects an empty or zero amount.
func ParseCustomBudget(text string) (Budget, error) {
	var digits strings.Builder
	for _, r := range text {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	if digits.Len() == 0 {
		return Budget{}, missingField("custom_budget")
	}
	amount, err := strconv.ParseInt(digits.String(), 10, 64)
	if err != nil || amount <= 0 {
		return Budget{}, &ValidationError{Field: "custom_budget", Message: MsgInvalidBudget}
	}
	return CustomBudget(amount), nil
}

func (b Budget) IsZero() bool {
	switch b.Kind {
	case BudgetPredefined:
		return b.Range == ""
	case BudgetCustom:
		return b.Amount.Amount <= 0
	}
	return true
}

// Display renders the budget the way the summary shows it: "₹40000-80000" or "₹150,000".
func (b Budget) Display() string {
	switch b.Kind {
	case BudgetPredefined:
		return "₹" + b.Range
	case BudgetCustom:
		return amountPrinter.Sprintf("₹%d", b.Amount.Amount)
	}
	return ""
}
