package packing

import (
	"fmt"

	"github.com/FACorreiaa/travelmate-api/internal/types"
)

const (
	systemPrompt = "You are a travel assistant. Your task is to generate a packing list in JSON format based on the user's trip details, activities, and weather forecast. Output ONLY the JSON object."

	promptTemperature = 0.6
	promptMaxTokens   = 1500
)

// buildPrompt renders the user prompt for a packing-list generation. The
// weather summary is embedded verbatim so the model sees exactly what the
// forecast pipeline produced.
func buildPrompt(trip *types.Trip, weatherSummary string) string {
	activities := trip.Activities
	if activities == "" {
		activities = "General tourism and leisure"
	}

	return fmt.Sprintf(`Create a detailed packing list in JSON format for a trip to %s from %s to %s.

Consider the following details:
Destination: %s
Dates: %s to %s
Planned Activities: %s
Weather Forecast Summary: %s

The output MUST be a valid JSON object containing a single key "categories".
The "categories" key should hold a list of category objects.
Each category object should have a "name" (string) and an "items" (list) key.
Each item object in the "items" list should have:
- "name" (string, required): The name of the item.
- "quantity" (integer, optional, default 1): How many of this item.
- "essential" (boolean, optional, default false): Is this item essential (e.g., passport, medications)? Mark essentials as true.
- "notes" (string, optional): Brief notes (e.g., 'Waterproof', 'For evening wear').
- "for_day" (string, optional): If item is specific to a day, provide date in 'YYYY-MM-DD' format. Only use if truly day-specific.

Example JSON structure:
{
    "categories": [
        {
            "name": "Clothing",
            "items": [
                {"name": "T-shirts", "quantity": 5, "essential": false, "notes": "Breathable fabric"},
                {"name": "Jeans", "quantity": 1, "essential": false},
                {"name": "Rain Jacket", "quantity": 1, "essential": true, "notes": "Check weather forecast daily"}
            ]
        },
        {
            "name": "Toiletries",
            "items": [
                {"name": "Toothbrush", "quantity": 1, "essential": true},
                {"name": "Travel-size Shampoo", "quantity": 1, "essential": false}
            ]
        },
        {
            "name": "Documents & Money",
            "items": [
                {"name": "Passport", "quantity": 1, "essential": true},
                {"name": "Local Currency", "quantity": 1, "essential": true, "notes": "Some cash recommended"}
            ]
        },
        {
            "name": "Medications",
            "items": [
                {"name": "Prescription Medication", "quantity": 1, "essential": true, "notes": "Bring prescription copy"},
                {"name": "Pain Relievers", "quantity": 1, "essential": false}
            ]
        }
    ]
}

Generate the packing list now based on the trip details and weather. Ensure the output is ONLY the JSON object.`,
		trip.Destination,
		trip.StartDate.Format("2006-01-02"),
		trip.EndDate.Format("2006-01-02"),
		trip.Destination,
		trip.StartDate.Format("Jan 02, 2006"),
		trip.EndDate.Format("Jan 02, 2006"),
		activities,
		weatherSummary,
	)
}
