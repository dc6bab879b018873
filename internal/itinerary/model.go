// README: Itinerary request/response types, category list and keyword vocabulary.
package itinerary

import (
	"strconv"
	"strings"
)

// DateLayout is the calendar date format used on the wire.
const DateLayout = "2006-01-02"

// StatusCompleted marks an itinerary whose days were all generated.
const StatusCompleted = "COMPLETED"

// TripRequest is the input of a generation call.
type TripRequest struct {
	TotalAdults      int      `json:"total_adults" binding:"gte=1"`
	TotalChildren    int      `json:"total_children" binding:"gte=0"`
	Destination      string   `json:"destination" binding:"required"`
	DestinationState string   `json:"destination_state"`
	DepartureDate    string   `json:"departure_date" binding:"required"`
	ReturnDate       string   `json:"return_date" binding:"required"`
	Activities       []string `json:"activities"`
	Amenities        []string `json:"amenities"`
	Food             []string `json:"food"`
	Pacing           []string `json:"pacing"`
	SpecialNote      string   `json:"special_note"`
}

// DayOutline is one day of the outline pass.
type DayOutline struct {
	DayNumber int      `json:"day_number"`
	Date      string   `json:"date"`
	Places    []string `json:"places"`
}

// Outline is the coarse day-to-places skeleton of a long trip.
type Outline struct {
	Title    string       `json:"title"`
	Category string       `json:"category"`
	Days     []DayOutline `json:"days"`
}

// Activity is a single timed entry of a day plan.
type Activity struct {
	Time        string `json:"time"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Place       string `json:"place"`
	Keyword     string `json:"keyword"`

	// Filled by optional map enrichment.
	Address       string  `json:"address,omitempty"`
	Rating        float32 `json:"rating,omitempty"`
	PlaceID       string  `json:"place_id,omitempty"`
	TravelMinutes int     `json:"travel_minutes,omitempty"`
}

// DetailedDay is a day with its ordered activities.
type DetailedDay struct {
	DayNumber  int        `json:"day_number"`
	DayUUID    string     `json:"day_uuid"`
	Date       string     `json:"date"`
	Activities []Activity `json:"activities"`
}

// Itinerary is the data payload of a successful generation.
type Itinerary struct {
	ItineraryID string        `json:"itinerary_id"`
	Title       string        `json:"title"`
	Category    string        `json:"category"`
	Days        []DetailedDay `json:"days"`
	Status      string        `json:"status"`
}

// Envelope wraps every HTTP response body.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

// Categories is the fixed list an itinerary category must be drawn from.
var Categories = []string{
	"Cultural & Heritage",
	"Museums & Art",
	"Food & Culinary Experiences",
	"Outdoor & Nature",
	"Shopping & Fashion",
	"Leisure & Relaxation",
	"Family-Friendly Activities",
	"Accessibility-Friendly",
	"Local Experiences",
	"Historical Sites",
	"Photography & Scenic Spots",
	"Wellness & Spa",
	"Adventure & Outdoor Sports",
	"Seasonal & Festive",
	"Shopping & Souvenirs",
}

// Keywords is the loosely enforced activity vocabulary offered to the model.
var Keywords = []string{
	"arrival", "hotel", "meal", "outdoor", "leisure", "museum", "cultural",
	"adventure", "nature", "shopping", "entertainment", "romantic", "water",
	"wildlife", "sports", "spa", "historical", "travel", "relaxation",
	"amenity_workspace", "amenity_game_room", "amenity_gym", "amenity_pool",
	"amenity_parking", "amenity_outdoor_space",
	"pace_relaxed", "pace_balanced", "pace_fast",
	"food_casual", "food_fine", "food_local", "food_asian", "food_italian", "food_mexican",
	"service_transport",
}

// CanonicalCategory matches name against Categories ignoring case and
// surrounding space, returning the canonical spelling.
func CanonicalCategory(name string) (string, bool) {
	name = strings.TrimSpace(name)
	for _, c := range Categories {
		if strings.EqualFold(c, name) {
			return c, true
		}
	}
	return "", false
}

// DayUUID derives the stable identifier of a day within an itinerary.
func DayUUID(dayNumber int, itineraryID string) string {
	return "day-" + strconv.Itoa(dayNumber) + "-" + itineraryID
}
