package itinerary

import (
	"encoding/json"
	"fmt"
	"strings"

	"myitinerary/internal/ai"
)

const (
	generationRole = "You are a travel expert creating a COMPLETE structured JSON itinerary."
	adjustmentRole = "You are an expert travel planner. Carefully modify the existing itinerary based on user's request. " +
		"Maintain the original JSON structure exactly. Ensure comprehensive and realistic modifications."
)

// SchemaDescription renders the JSON shape both prompts ask for. It marshals a
// placeholder Itinerary so the prompt always matches the Go model.
func SchemaDescription(summary Summary) string {
	placeholder := Itinerary{
		Destination: "string",
		StartDate:   "DD/MM/YYYY",
		EndDate:     "DD/MM/YYYY",
		Days: []DayPlan{{
			Day:  1,
			Date: "DD/MM/YYYY",
			Activities: []Activity{{
				Time:          "Morning/Afternoon/Evening",
				Title:         "string",
				Description:   "string",
				Location:      "string",
				BookingLink:   "string",
				EstimatedCost: 0,
			}},
			Meals: []Meal{{
				Type:       "Breakfast/Lunch/Dinner",
				Restaurant: "string",
				Cuisine:    "string",
			}},
			Accommodation: "string",
		}},
		Summary: summary,
		ExpectedBudget: ExpectedBudget{
			Flights:       "string",
			Accommodation: "string",
			Meals:         "string",
			Activities:    "string",
		},
	}
	b, err := json.MarshalIndent(placeholder, "", "  ")
	if err != nil {
		// Only plain strings, ints and floats are involved.
		panic(fmt.Sprintf("itinerary: marshal schema placeholder: %v", err))
	}
	return string(b)
}

// ActivityDensity is the per-day activity rule for a trip of the given length.
func ActivityDensity(days int) string {
	switch {
	case days < 7:
		return "at least 3-4 activities per day"
	case days <= 14:
		return "2-3 activities per day"
	default:
		return "1-2 key activities per day"
	}
}

// GenerationMessages builds the system and user messages for a new itinerary.
func GenerationMessages(req TripRequest) []ai.Message {
	days := req.DayCount()
	summary := req.Summary()
	start, end := summary.TravelDates.Start, summary.TravelDates.End

	var sys strings.Builder
	sys.WriteString(generationRole)
	sys.WriteString("\n\nCRITICAL REQUIREMENTS:\n")
	fmt.Fprintf(&sys, "- EXACTLY one detailed day object for EVERY single day from %s to %s (inclusive)\n", start, end)
	fmt.Fprintf(&sys, "- Total number of day objects MUST be exactly %d\n", days)
	sys.WriteString("- Number days sequentially starting at 1 and give each day its date in DD/MM/YYYY format\n")
	fmt.Fprintf(&sys, "- Include %s\n", ActivityDensity(days))
	sys.WriteString("- Respond with JSON only, using exactly this structure:\n")
	sys.WriteString(SchemaDescription(summary))

	var user strings.Builder
	fmt.Fprintf(&user, "Create a fully detailed itinerary for a trip with %d travelers. ", req.Travelers)
	fmt.Fprintf(&user, "The budget is %s. ", summary.Budget)
	fmt.Fprintf(&user, "The trip starts on %s and ends on %s. ", start, end)
	fmt.Fprintf(&user, "The destination is %s. ", summary.Destination)
	fmt.Fprintf(&user, "The travel type is %s. ", req.TravelType)
	fmt.Fprintf(&user, "Flight preference: %s. ", summary.FlightPreference)
	if req.IncludeFlights && strings.TrimSpace(req.Origin) != "" {
		fmt.Fprintf(&user, "Flights depart from %s. ", strings.TrimSpace(req.Origin))
	}
	fmt.Fprintf(&user, "Generate plans for every day from %s to %s, including activities, meals, and accommodations for each day.", start, end)

	return []ai.Message{
		ai.SystemMessage(sys.String()),
		ai.UserMessage(user.String()),
	}
}

// AdjustmentMessages builds the messages that ask the model to rewrite current per instruction.
func AdjustmentMessages(current *Itinerary, instruction string) ([]ai.Message, error) {
	serialized, err := json.MarshalIndent(current, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("itinerary: serialize current itinerary: %w", err)
	}

	var user strings.Builder
	user.WriteString("Current Itinerary Details:\n")
	user.Write(serialized)
	user.WriteString("\n\nAdjustment Request: ")
	user.WriteString(strings.TrimSpace(instruction))
	user.WriteString("\n\nINSTRUCTIONS:\n")
	user.WriteString("1. Review the current itinerary carefully\n")
	user.WriteString("2. Apply the requested changes\n")
	user.WriteString("3. Maintain the exact JSON structure as:\n")
	user.WriteString(SchemaDescription(current.Summary))
	user.WriteString("\n4. Provide detailed, realistic modifications\n")
	user.WriteString("5. Ensure all days are fully populated")

	return []ai.Message{
		ai.SystemMessage(adjustmentRole),
		ai.UserMessage(user.String()),
	}, nil
}
