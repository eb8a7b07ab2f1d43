// README: Form options (budget presets, travel types, flight choices).
package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"myitinerary/internal/modules/itinerary"
)

type option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Options handles GET /api/options.
func Options(c *gin.Context) {
	budgets := make([]option, 0, len(itinerary.BudgetRanges)+1)
	for _, r := range itinerary.BudgetRanges {
		b, _ := itinerary.PredefinedBudget(r)
		budgets = append(budgets, option{Value: r, Label: b.Display()})
	}
	budgets = append(budgets, option{Value: budgetCustom, Label: "Custom"})

	types := make([]option, 0, len(itinerary.TravelTypes))
	for _, t := range itinerary.TravelTypes {
		types = append(types, option{Value: string(t), Label: strings.ToUpper(string(t[:1])) + string(t[1:])})
	}

	writeJSON(c, http.StatusOK, gin.H{
		"budgets":      budgets,
		"travel_types": types,
		"flight_options": []option{
			{Value: FlightOptionWith, Label: itinerary.FlightsIncluded},
			{Value: FlightOptionWithout, Label: itinerary.FlightsExcluded},
		},
	})
}
