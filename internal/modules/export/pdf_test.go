package export

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"myitinerary/internal/modules/itinerary"
)

func sampleItinerary() *itinerary.Itinerary {
	return &itinerary.Itinerary{
		Destination: "Goa",
		StartDate:   "01/06/2024",
		EndDate:     "02/06/2024",
		Days: []itinerary.DayPlan{
			{
				Day:  1,
				Date: "01/06/2024",
				Activities: []itinerary.Activity{
					{Time: "Morning", Title: "Baga Beach", Description: "Sunrise walk", Location: "Baga", EstimatedCost: 0},
				},
				Meals:         []itinerary.Meal{{Type: "Dinner", Restaurant: "Britto's", Cuisine: "Goan"}},
				Accommodation: "Taj Holiday Village",
			},
			{Day: 2, Date: "02/06/2024", Activities: []itinerary.Activity{}},
		},
		Summary:        itinerary.Summary{NumTravelers: 2, Budget: "₹40000-80000", Destination: "Goa"},
		ExpectedBudget: itinerary.ExpectedBudget{Flights: "₹12,000", Meals: "8000"},
	}
}

func TestWritePDF(t *testing.T) {
	var buf bytes.Buffer
	if err := WritePDF(&buf, sampleItinerary(), nil); err != nil {
		t.Fatalf("WritePDF: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF")) {
		t.Fatal("output is not a PDF")
	}
}

func TestWritePDFNil(t *testing.T) {
	if err := WritePDF(&bytes.Buffer{}, nil, nil); !errors.Is(err, ErrNoItinerary) {
		t.Fatalf("expected ErrNoItinerary, got %v", err)
	}
}

func TestMealLine(t *testing.T) {
	tests := []struct {
		meal itinerary.Meal
		want string
	}{
		{itinerary.Meal{Type: "Dinner", Restaurant: "Britto's", Cuisine: "Goan"}, "Dinner: Britto's (Goan)"},
		{itinerary.Meal{Type: "Lunch"}, "Lunch: Local dining"},
		{itinerary.Meal{Type: "Breakfast", Cuisine: "Continental"}, "Breakfast: Local dining (Continental)"},
	}
	for _, tt := range tests {
		if got := MealLine(tt.meal); got != tt.want {
			t.Errorf("MealLine = %q, want %q", got, tt.want)
		}
	}
}

func TestFilename(t *testing.T) {
	if got := Filename(sampleItinerary()); got != "ITINERARY_Goa_01-06-2024.pdf" {
		t.Errorf("Filename = %q", got)
	}
}

func TestFilenameIsHeaderSafe(t *testing.T) {
	tests := []struct {
		dest string
		want string
	}{
		{"Goa, India", "ITINERARY_Goa_India_01-06-2024.pdf"},
		{"Zürich; \"old town\"", "ITINERARY_Z_rich_old_town_01-06-2024.pdf"},
		{"  ", "ITINERARY_NA_01-06-2024.pdf"},
		{strings.Repeat("ü", 30) + strings.Repeat("a", 60), "ITINERARY_" + strings.Repeat("a", 40) + "_01-06-2024.pdf"},
	}
	for _, tt := range tests {
		got := Filename(&itinerary.Itinerary{Destination: tt.dest, StartDate: "01/06/2024"})
		if got != tt.want {
			t.Errorf("Filename(%q) = %q, want %q", tt.dest, got, tt.want)
		}
	}
}
