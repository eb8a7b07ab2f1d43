// README: Itinerary PDF rendering.
package export

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/phpdave11/gofpdf"

	"myitinerary/internal/modules/itinerary"
)

var ErrNoItinerary = errors.New("no itinerary to export")

const maxFilenamePart = 40

// WritePDF renders it as an A4 document. summary overrides it.Summary when non-nil.
func WritePDF(w io.Writer, it *itinerary.Itinerary, summary *itinerary.Summary) error {
	if it == nil {
		return ErrNoItinerary
	}
	sum := it.Summary
	if summary != nil {
		sum = *summary
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	text := func(s string) string {
		// Core fonts are cp1252; the rupee sign is not in it.
		return tr(strings.ReplaceAll(s, "₹", "Rs. "))
	}

	pdf.SetTitle("Itinerary "+safe(it.Destination, sum.Destination), true)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, text("Trip to "+safe(it.Destination, safe(sum.Destination, "-"))))
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	lines := []string{
		fmt.Sprintf("Dates        : %s - %s", safe(it.StartDate, sum.TravelDates.Start), safe(it.EndDate, sum.TravelDates.End)),
		fmt.Sprintf("Travelers    : %d", sum.NumTravelers),
		fmt.Sprintf("Budget       : %s", safe(sum.Budget.String(), "-")),
		fmt.Sprintf("Travel type  : %s", safe(sum.TravelType, "-")),
		fmt.Sprintf("Flights      : %s", safe(sum.FlightPreference, "-")),
	}
	for _, s := range lines {
		pdf.Cell(0, 6, text(s))
		pdf.Ln(6)
	}
	pdf.Ln(4)

	for _, day := range it.Days {
		pdf.SetFont("Helvetica", "B", 13)
		pdf.Cell(0, 8, text(fmt.Sprintf("Day %d - %s", day.Day, safe(day.Date, "-"))))
		pdf.Ln(9)

		pdf.SetFont("Helvetica", "", 10)
		for _, a := range day.Activities {
			line := fmt.Sprintf("%s: %s", safe(a.Time, "Anytime"), safe(a.Title, "-"))
			if a.Description != "" {
				line += " - " + a.Description
			}
			if a.Location != "" {
				line += " (" + a.Location + ")"
			}
			pdf.MultiCell(0, 5, text(line), "", "", false)
		}
		for _, m := range day.Meals {
			pdf.MultiCell(0, 5, text(MealLine(m)), "", "", false)
		}
		if day.Accommodation != "" {
			pdf.MultiCell(0, 5, text("Stay: "+day.Accommodation), "", "", false)
		}
		pdf.Ln(3)
	}

	eb := it.ExpectedBudget
	pdf.SetFont("Helvetica", "B", 13)
	pdf.Cell(0, 8, "Expected Budget")
	pdf.Ln(9)
	pdf.SetFont("Helvetica", "", 10)
	for _, s := range []string{
		"Flights       : " + safe(eb.Flights.String(), "-"),
		"Accommodation : " + safe(eb.Accommodation.String(), "-"),
		"Meals         : " + safe(eb.Meals.String(), "-"),
		"Activities    : " + safe(eb.Activities.String(), "-"),
	} {
		pdf.Cell(0, 6, text(s))
		pdf.Ln(6)
	}

	return pdf.Output(w)
}

// MealLine formats a meal as "Type: restaurant (cuisine)".
func MealLine(m itinerary.Meal) string {
	line := fmt.Sprintf("%s: %s", safe(m.Type, "Meal"), safe(m.Restaurant, "Local dining"))
	if m.Cuisine != "" {
		line += " (" + m.Cuisine + ")"
	}
	return line
}

// Filename suggests a download name such as "ITINERARY_Goa_01-06-2024.pdf".
func Filename(it *itinerary.Itinerary) string {
	if it == nil {
		return "ITINERARY.pdf"
	}
	return fmt.Sprintf("ITINERARY_%s_%s.pdf", safeFilenamePart(it.Destination), safeFilenamePart(it.StartDate))
}

func safe(v, fallback string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return fallback
	}
	return v
}

// safeFilenamePart keeps ASCII letters, digits, '-' and '.'; '/' becomes '-' and any
// other run of characters a single '_'.
func safeFilenamePart(s string) string {
	var sb strings.Builder
	for _, r := range strings.TrimSpace(s) {
		switch {
		case r < utf8.RuneSelf && (unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '.'):
			sb.WriteRune(r)
		case r == '/':
			sb.WriteByte('-')
		case sb.Len() > 0 && !strings.HasSuffix(sb.String(), "_"):
			sb.WriteByte('_')
		}
		if sb.Len() >= maxFilenamePart {
			break
		}
	}
	out := strings.Trim(sb.String(), "_")
	if len(out) > maxFilenamePart {
		out = out[:maxFilenamePart]
	}
	if out == "" {
		return "NA"
	}
	return out
}
