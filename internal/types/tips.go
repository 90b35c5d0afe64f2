package types

import (
	"time"

	"github.com/google/uuid"
)

type TipCategory string

const (
	TipCategoryCultural  TipCategory = "CULTURAL"
	TipCategoryLocalInfo TipCategory = "LOCAL_INFO"
	TipCategoryMustHave  TipCategory = "MUST_HAVE"
	TipCategoryGeneral   TipCategory = "GENERAL"
)

var TipCategoryChoices = []CategoryChoice{
	{Code: string(TipCategoryCultural), Display: "Cultural Advice"},
	{Code: string(TipCategoryLocalInfo), Display: "Local Information"},
	{Code: string(TipCategoryMustHave), Display: "Must Have Items"},
	{Code: string(TipCategoryGeneral), Display: "General Tips"},
}

func TipCategoryDisplay(code TipCategory) string {
	for _, c := range TipCategoryChoices {
		if c.Code == string(code) {
			return c.Display
		}
	}
	return string(code)
}

type TravelTips struct {
	ID          uuid.UUID `json:"id"`
	TripID      uuid.UUID `json:"trip_id"`
	Generated   bool      `json:"generated"`
	LastUpdated time.Time `json:"last_updated"`
}

type TipItem struct {
	ID           uuid.UUID   `json:"id"`
	TravelTipsID uuid.UUID   `json:"travel_tips_id"`
	Category     TipCategory `json:"category"`
	Content      string      `json:"content"`
}

type TravelTipsResponse struct {
	Tips           TravelTips           `json:"tips"`
	TipsByCategory map[string][]TipItem `json:"tips_by_category"`
}
