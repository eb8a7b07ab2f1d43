// README: Trip request and itinerary data model. JSON keys follow the shape the planner asks the model for.
package itinerary

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

type TravelType string

const (
	TravelLeisure   TravelType = "leisure"
	TravelBusiness  TravelType = "business"
	TravelAdventure TravelType = "adventure"
	TravelCultural  TravelType = "cultural"
	TravelRomantic  TravelType = "romantic"
	TravelFamily    TravelType = "family"
)

// TravelTypes lists the selectable travel categories in form order.
var TravelTypes = []TravelType{
	TravelLeisure, TravelBusiness, TravelAdventure, TravelCultural, TravelRomantic, TravelFamily,
}

func (t TravelType) Valid() bool {
	for _, tt := range TravelTypes {
		if t == tt {
			return true
		}
	}
	return false
}

// DisplayDateLayout is the DD/MM/YYYY format used for every date shown to the model and the user.
const DisplayDateLayout = "02/01/2006"

const (
	FlightsIncluded = "Include flights"
	FlightsExcluded = "No flights needed"
)

// ParseDisplayDate parses a DD/MM/YYYY date.
func ParseDisplayDate(s string) (time.Time, error) {
	return time.Parse(DisplayDateLayout, strings.TrimSpace(s))
}

// TripRequest is built from the form once per generation.
type TripRequest struct {
	Travelers      int
	Budget         Budget
	StartDate      time.Time
	EndDate        time.Time
	Destination    string
	TravelType     TravelType
	IncludeFlights bool
	// Origin is the optional departure location collected when flights are included.
	Origin string
}

// Validate checks presence of every field and the date order. It returns *ValidationError.
func (r TripRequest) Validate() error {
	switch {
	case r.Travelers <= 0:
		return missingField("travelers")
	case r.Budget.IsZero():
		return missingField("budget")
	case r.StartDate.IsZero():
		return missingField("start_date")
	case r.EndDate.IsZero():
		return missingField("end_date")
	case strings.TrimSpace(r.Destination) == "":
		return missingField("destination")
	case !r.TravelType.Valid():
		return missingField("travel_type")
	}
	if civilDate(r.EndDate).Before(civilDate(r.StartDate)) {
		return &ValidationError{Field: "end_date", Message: MsgEndBeforeStart}
	}
	return nil
}

// DayCount is the inclusive number of calendar days between start and end.
func (r TripRequest) DayCount() int {
	return daysInclusive(r.StartDate, r.EndDate)
}

func (r TripRequest) FlightPreference() string {
	if r.IncludeFlights {
		return FlightsIncluded
	}
	return FlightsExcluded
}

// Summary echoes the request for display next to the generated itinerary.
func (r TripRequest) Summary() Summary {
	return Summary{
		NumTravelers: r.Travelers,
		Budget:       Text(r.Budget.Display()),
		TravelDates: TravelDates{
			Start: r.StartDate.Format(DisplayDateLayout),
			End:   r.EndDate.Format(DisplayDateLayout),
		},
		Destination:      strings.TrimSpace(r.Destination),
		TravelType:       string(r.TravelType),
		FlightPreference: r.FlightPreference(),
	}
}

func civilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func daysInclusive(start, end time.Time) int {
	return int(civilDate(end).Sub(civilDate(start)).Hours()/24) + 1
}

type Itinerary struct {
	Destination    string         `json:"destination"`
	StartDate      string         `json:"startDate"`
	EndDate        string         `json:"endDate"`
	Days           []DayPlan      `json:"days"`
	Summary        Summary        `json:"summary"`
	ExpectedBudget ExpectedBudget `json:"expectedBudget"`
}

type DayPlan struct {
	Day           int        `json:"day"`
	Date          string     `json:"date"`
	Activities    []Activity `json:"activities"`
	Meals         []Meal     `json:"meals,omitempty"`
	Accommodation string     `json:"accommodation,omitempty"`
}

type Activity struct {
	Time          string `json:"time"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	Location      string `json:"location,omitempty"`
	BookingLink   string `json:"bookingLink,omitempty"`
	EstimatedCost Amount `json:"estimatedCost"`
}

type Meal struct {
	Type       string `json:"type"`
	Restaurant string `json:"restaurant,omitempty"`
	Cuisine    string `json:"cuisine,omitempty"`
}

type TravelDates struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type Summary struct {
	NumTravelers     int         `json:"numTravelers"`
	Budget           Text        `json:"budget"`
	TravelDates      TravelDates `json:"travelDates"`
	Destination      string      `json:"destination"`
	TravelType       string      `json:"travelType"`
	FlightPreference string      `json:"flightPreference"`
}

// ExpectedBudget holds free-text estimates; they are displayed, never computed on.
type ExpectedBudget struct {
	Flights       Text `json:"flights"`
	Accommodation Text `json:"accommodation"`
	Meals         Text `json:"meals"`
	Activities    Text `json:"activities"`
}

// Amount is a non-validated cost estimate. It accepts a JSON number, a numeric
// string such as "₹1,200", or null. Strings without digits ("Free") decode to 0.
type Amount float64

func (a *Amount) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*a = 0
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		num := numericPart(s)
		if num == "" {
			*a = 0
			return nil
		}
		f, err := strconv.ParseFloat(num, 64)
		if err != nil {
			return fmt.Errorf("cost %q is not a number", s)
		}
		*a = Amount(f)
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	*a = Amount(f)
	return nil
}

// numericPart returns the first number in s: an optional sign, digits with ","
// grouping and one decimal point. For a range such as "₹500-1000" that is the
// lower bound.
func numericPart(s string) string {
	var sb strings.Builder
	rs := []rune(s)
	started, dot := false, false
	for i, r := range rs {
		switch {
		case r >= '0' && r <= '9':
			started = true
			sb.WriteRune(r)
		case !started && r == '-' && i+1 < len(rs) && rs[i+1] >= '0' && rs[i+1] <= '9':
			sb.WriteRune(r)
		case started && r == ',':
		case started && r == '.' && !dot:
			dot = true
			sb.WriteRune(r)
		case started:
			return strings.TrimSuffix(sb.String(), ".")
		}
	}
	return strings.TrimSuffix(sb.String(), ".")
}

// Text is free text that also tolerates a bare JSON number or null in its place.
type Text string

func (t *Text) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*t = ""
		return nil
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = Text(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*t = Text(n.String())
	return nil
}

func (t Text) String() string {
	return string(t)
}
