package handlers

import (
	"errors"
	"testing"

	"myitinerary/internal/modules/itinerary"
)

func TestToTripRequest(t *testing.T) {
	req := generateReq{
		Travelers:    3,
		Budget:       "custom",
		CustomBudget: "1,50,000",
		StartDate:    "2024-06-01",
		EndDate:      "2024-06-05",
		Destination:  "  Goa ",
		TravelType:   "Adventure",
		FlightOption: FlightOptionWithout,
	}
	got, err := req.toTripRequest()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Destination != "Goa" || got.TravelType != itinerary.TravelType("adventure") {
		t.Errorf("fields not normalized: %+v", got)
	}
	if got.IncludeFlights {
		t.Error("withoutFlight should exclude flights")
	}
	if got.Budget.Amount.Amount != 150000 {
		t.Errorf("custom budget = %d, want 150000", got.Budget.Amount.Amount)
	}
	if got.DayCount() != 5 {
		t.Errorf("day count = %d, want 5", got.DayCount())
	}
}

func TestToTripRequestErrors(t *testing.T) {
	tests := []struct {
		name  string
		req   generateReq
		field string
	}{
		{"bad date", generateReq{Budget: "40000-80000", StartDate: "01/06/2024", FlightOption: FlightOptionWith}, "start_date"},
		{"unknown budget", generateReq{Budget: "1-2", FlightOption: FlightOptionWith}, "budget"},
		{"no flight option", generateReq{Budget: "40000-80000"}, "flight_option"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.req.toTripRequest()
			var ve *itinerary.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if ve.Field != tt.field {
				t.Fatalf("field = %q, want %q", ve.Field, tt.field)
			}
		})
	}
}

func TestIsValidID(t *testing.T) {
	cases := map[string]bool{
		"":                                  false,
		"abc123":                            true,
		"0123456789abcdef0123456789abcdef":  true,
		"0123456789abcdef0123456789abcdef0": false,
		"abc-123":                           false,
	}
	for in, want := range cases {
		if got := isValidID(in); got != want {
			t.Errorf("isValidID(%q) = %v, want %v", in, got, want)
		}
	}
}
