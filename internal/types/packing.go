package types

import (
	"time"

	"github.com/google/uuid"
)

// PackingCategory is the fixed enumeration packing items are filed under.
type PackingCategory string

const (
	PackingCategoryClothing    PackingCategory = "CLOTHING"
	PackingCategoryToiletries  PackingCategory = "TOILETRIES"
	PackingCategoryElectronics PackingCategory = "ELECTRONICS"
	PackingCategoryDocuments   PackingCategory = "DOCUMENTS"
	PackingCategoryMisc        PackingCategory = "MISC"
)

// PackingCategoryChoices maps category codes to display names, in display order.
var PackingCategoryChoices = []CategoryChoice{
	{Code: string(PackingCategoryClothing), Display: "Clothing"},
	{Code: string(PackingCategoryToiletries), Display: "Toiletries"},
	{Code: string(PackingCategoryElectronics), Display: "Electronics"},
	{Code: string(PackingCategoryDocuments), Display: "Documents"},
	{Code: string(PackingCategoryMisc), Display: "Miscellaneous"},
}

// CategoryChoice pairs an enum code with its human-readable display name.
type CategoryChoice struct {
	Code    string
	Display string
}

func IsValidPackingCategory(code string) bool {
	for _, c := range PackingCategoryChoices {
		if c.Code == code {
			return true
		}
	}
	return false
}

func PackingCategoryDisplay(code PackingCategory) string {
	for _, c := range PackingCategoryChoices {
		if c.Code == string(code) {
			return c.Display
		}
	}
	return string(code)
}

type PackingList struct {
	ID          uuid.UUID `json:"id"`
	TripID      uuid.UUID `json:"trip_id"`
	Generated   bool      `json:"generated"`
	LastUpdated time.Time `json:"last_updated"`
}

type PackingItem struct {
	ID            uuid.UUID       `json:"id"`
	PackingListID uuid.UUID       `json:"packing_list_id"`
	Name          string          `json:"name"`
	Category      PackingCategory `json:"category"`
	Quantity      int             `json:"quantity"`
	IsEssential   bool            `json:"is_essential"`
	Notes         string          `json:"notes,omitempty"`
	ForDay        *time.Time      `json:"for_day,omitempty"`
	CustomAdded   bool            `json:"custom_added"`
	Completed     bool            `json:"completed"`
}

// PackingListResponse groups items by category display name for the client.
type PackingListResponse struct {
	List            PackingList              `json:"list"`
	ItemsByCategory map[string][]PackingItem `json:"items_by_category"`
}

type CreatePackingItemParams struct {
	Name        string  `json:"name"`
	Category    string  `json:"category"`
	Quantity    int     `json:"quantity"`
	IsEssential bool    `json:"is_essential"`
	Notes       string  `json:"notes,omitempty"`
	ForDay      *string `json:"for_day,omitempty"` // YYYY-MM-DD
}

type UpdatePackingItemParams struct {
	Name        *string `json:"name,omitempty"`
	Category    *string `json:"category,omitempty"`
	Quantity    *int    `json:"quantity,omitempty"`
	IsEssential *bool   `json:"is_essential,omitempty"`
	Notes       *string `json:"notes,omitempty"`
	ForDay      *string `json:"for_day,omitempty"`
}

type GenerateResult struct {
	ItemsCreated int    `json:"items_created"`
	Message      string `json:"message"`
}
