package tips

import (
	"fmt"

	"github.com/FACorreiaa/travelmate-api/internal/types"
)

const (
	systemPrompt = "You are a helpful travel assistant. Your task is to generate travel tips in JSON format based on the user's trip details and activities. Output ONLY the JSON object with categories: 'Cultural Advice', 'Local Information', 'Must Have Items'."

	promptTemperature = 0.7
	promptMaxTokens   = 2000
)

func buildPrompt(trip *types.Trip) string {
	activities := trip.Activities
	if activities == "" {
		activities = "General tourism and leisure"
	}

	return fmt.Sprintf(`Create a list of helpful travel tips in JSON format for a trip to %s from %s to %s.

Consider the following details:
Destination: %s
Dates: %s to %s
Planned Activities: %s

The output MUST be a valid JSON object containing a single key "categories".
The "categories" key should hold a list of category objects.
Each category object should have a "name" (string) and an "items" (list) key.
The "name" should be one of: "Cultural Advice", "Local Information", "Must Have Items".
Each item object in the "items" list should have a single key:
- "tip" (string, required): The text of the travel tip.

Example JSON structure:
{
    "categories": [
        {
            "name": "Cultural Advice",
            "items": [
                {"tip": "Learn a few basic local phrases like 'hello' and 'thank you'."},
                {"tip": "Dress modestly when visiting religious sites."}
            ]
        },
        {
            "name": "Local Information",
            "items": [
                {"tip": "The local currency is [Currency Name]. Credit cards are widely accepted, but carry some cash."},
                {"tip": "Public transport is efficient. Consider buying a multi-day pass."},
                {"tip": "Emergency number is [Number]."}
            ]
        },
        {
            "name": "Must Have Items",
            "items": [
                {"tip": "Comfortable walking shoes are essential."},
                {"tip": "A universal travel adapter if coming from abroad."},
                {"tip": "Sunscreen and a hat, especially during summer months."}
            ]
        }
    ]
}

Generate the travel tips now based on the trip details. Ensure the output is ONLY the JSON object. Do not use bracketed placeholders like [Number].`,
		trip.Destination,
		trip.StartDate.Format("2006-01-02"),
		trip.EndDate.Format("2006-01-02"),
		trip.Destination,
		trip.StartDate.Format("Jan 02, 2006"),
		trip.EndDate.Format("Jan 02, 2006"),
		activities,
	)
}
