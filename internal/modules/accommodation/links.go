package accommodation

type Link struct {
	Kind        string `json:"kind"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	URL         string `json:"url"`
}

const (
	LinkRecommendation = "recommendation"
	LinkBooking        = "booking"
)

// Links returns the travel recommendations and booking shortcuts shown with an itinerary.
func Links() []Link {
	return []Link{
		{Kind: LinkRecommendation, Title: "Local Experiences", Description: "Discover unique activities at your destination", URL: "https://www.getyourguide.com"},
		{Kind: LinkRecommendation, Title: "Travel Insurance", Description: "Protect your trip with comprehensive coverage", URL: "https://www.worldnomads.com"},
		{Kind: LinkBooking, Title: "Book Hotels", URL: "https://www.booking.com"},
		{Kind: LinkBooking, Title: "Find Flights", URL: "https://www.skyscanner.com"},
	}
}
