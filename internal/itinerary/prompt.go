// README: Prompt builders for the short-trip, outline, detail and regeneration calls.
package itinerary

import (
	"encoding/json"
	"fmt"
	"strings"

	"tripplanner/internal/ai"
)

// Prompt is a system instruction plus the user payload sent alongside it.
type Prompt struct {
	System string
	User   string
}

// Messages converts the prompt into the completion client's message pair.
func (p Prompt) Messages() []ai.Message {
	return ai.SystemUser(p.System, p.User)
}

func quotedCategories() string {
	quoted := make([]string, len(Categories))
	for i, c := range Categories {
		quoted[i] = fmt.Sprintf("%q", c)
	}
	return strings.Join(quoted, ", ")
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "None"
	}
	return strings.Join(items, ", ")
}

func noteOrNone(note string) string {
	if strings.TrimSpace(note) == "" {
		return "None specified"
	}
	return note
}

// requestJSON is the user message of every generation call. TripRequest only
// holds strings, ints and slices so encoding cannot fail.
func requestJSON(req TripRequest) string {
	b, _ := json.Marshal(req)
	return string(b)
}

const titleAndCategoryRule = `Generate a SHORT title for this itinerary using only 2-3 words that reflects the trip's main theme (e.g., "Cultural Moscow", "Tokyo Adventures", "Paris Discovery"). You MUST choose exactly one category from this list based on the planned activities: %s.`

// ShortTripPrompt asks for the whole itinerary in one call.
func ShortTripPrompt(req TripRequest, tripDays int, itineraryID string) Prompt {
	var b strings.Builder
	fmt.Fprintf(&b, "You are an expert travel planner AI. Use web search to find current, accurate information about %s.\n\n", req.Destination)
	b.WriteString("TRAVEL DETAILS:\n")
	fmt.Fprintf(&b, "- Trip Duration: %d days\n", tripDays)
	fmt.Fprintf(&b, "- Travelers: %d adults, %d children (under 12)\n", req.TotalAdults, req.TotalChildren)
	fmt.Fprintf(&b, "- Destination: %s\n", destinationLine(req))
	fmt.Fprintf(&b, "- Departure Date: %s\n", req.DepartureDate)
	fmt.Fprintf(&b, "- Return Date: %s\n\n", req.ReturnDate)
	writePreferences(&b, req)
	b.WriteString("Search the web for real places, restaurants, hotels, and current events that match these preferences.\n\n")
	fmt.Fprintf(&b, titleAndCategoryRule+"\n\n", quotedCategories())
	fmt.Fprintf(&b, "Keywords to use for activities: [%s]\n\n", strings.Join(Keywords, ", "))
	b.WriteString("IMPORTANT: Return ONLY valid JSON, no markdown, no comments:\n\n")
	fmt.Fprintf(&b, `{
  "success": true,
  "data": {
    "title": "Short Title",
    "category": "Cultural & Heritage",
    "days": [
      {
        "day_number": 1,
        "day_uuid": "%s",
        "date": "%s",
        "activities": [
          {
            "time": "9:00 AM",
            "title": "Airport Arrival",
            "description": "Arrive at %s Airport and proceed through customs and baggage claim",
            "place": "%s Airport",
            "keyword": "arrival"
          }
        ]
      }
    ],
    "status": "COMPLETED"
  },
  "message": "Itinerary generated successfully"
}`, DayUUID(1, itineraryID), req.DepartureDate, req.Destination, req.Destination)
	fmt.Fprintf(&b, "\n\nGenerate %d days of activities. Use real place names found through web search that match the user's preferences.", tripDays)

	return Prompt{System: b.String(), User: requestJSON(req)}
}

// OutlinePrompt asks for the day-to-places skeleton of a long trip.
func OutlinePrompt(req TripRequest, tripDays int) Prompt {
	var b strings.Builder
	b.WriteString("You are a travel planner AI.\n\n")
	fmt.Fprintf(&b, "Generate a structured JSON itinerary outline for a %d-day trip to %s starting on %s.\n", tripDays, destinationLine(req), req.DepartureDate)
	b.WriteString("ONLY include this structure per day:\n\n")
	b.WriteString("- day_number (integer)\n- date (YYYY-MM-DD)\n- places (list of 2-4 unique attractions/activities per day, brief names only)\n\n")
	b.WriteString("DO NOT include full descriptions or times. Only suggest unique, culturally and logistically appropriate activities. No duplication.\n\n")
	fmt.Fprintf(&b, titleAndCategoryRule+"\n\n", quotedCategories())
	fmt.Fprintf(&b, "Produce exactly %d days.\n\n", tripDays)
	b.WriteString(`Return only valid JSON in this format:

{
  "title": "Short Title",
  "category": "Cultural & Heritage",
  "days": [
    {"day_number": 1, "date": "YYYY-MM-DD", "places": ["Place 1", "Place 2", "Place 3"]}
  ]
}`)
	return Prompt{System: b.String(), User: requestJSON(req)}
}

// DetailPrompt asks for full activities of the outline days in chunk only.
func DetailPrompt(req TripRequest, chunk []DayOutline, itineraryID string) Prompt {
	var b strings.Builder
	b.WriteString("You are an expert travel planner AI. Based on the given per-day list of places, generate a detailed JSON travel itinerary.\n\n")
	b.WriteString("TRAVEL DETAILS\n")
	fmt.Fprintf(&b, "- Travelers: %d adults, %d children\n", req.TotalAdults, req.TotalChildren)
	fmt.Fprintf(&b, "- Destination: %s\n", destinationLine(req))
	fmt.Fprintf(&b, "- Accessibility/Amenities: %s\n", joinOrNone(req.Amenities))
	fmt.Fprintf(&b, "- Interests: %s\n", joinOrNone(req.Activities))
	fmt.Fprintf(&b, "- Food Preferences: %s\n", joinOrNone(req.Food))
	fmt.Fprintf(&b, "- Pacing: %s\n", joinOrNone(req.Pacing))
	fmt.Fprintf(&b, "- Special Notes: %s\n\n", noteOrNone(req.SpecialNote))

	b.WriteString("ASSIGNED DAYS\n")
	for _, d := range chunk {
		fmt.Fprintf(&b, "Day %d (%s): %s\n", d.DayNumber, d.Date, strings.Join(d.Places, ", "))
	}

	first := 1
	if len(chunk) > 0 {
		first = chunk[0].DayNumber
	}
	b.WriteString("\nINSTRUCTIONS\n")
	b.WriteString("- Only generate days assigned above\n")
	b.WriteString("- Each day should have 2-4 activities\n")
	b.WriteString("- Activities should flow logically (morning to evening)\n")
	b.WriteString("- Consider accessibility, age group, and pacing\n")
	fmt.Fprintf(&b, "- Use keywords from: [%s]\n\n", strings.Join(Keywords, ", "))
	fmt.Fprintf(&b, `Return ONLY valid JSON in this exact format:
{
  "days": [
    {
      "day_number": %d,
      "day_uuid": "%s",
      "date": "YYYY-MM-DD",
      "activities": [
        {"time": "9:00 AM", "title": "Activity title", "description": "Brief activity description", "place": "Place name", "keyword": "activity-type"}
      ]
    }
  ]
}

IMPORTANT: Return only the JSON object with the "days" array. Do not include any other text or markdown.`, first, DayUUID(first, itineraryID))

	return Prompt{System: b.String(), User: requestJSON(req)}
}

// RegeneratePrompt asks the model to rework one day, or to propose
// alternatives when req.Mode is ModeSearch. candidates are optional real
// places found nearby.
func RegeneratePrompt(req RegenerateRequest, candidates []string) Prompt {
	var b strings.Builder
	fmt.Fprintf(&b, "You are an expert travel planner AI revising one day of a trip to %s.\n\n", req.Destination)
	if c := req.UserContext; c != nil {
		b.WriteString("TRAVELERS\n")
		fmt.Fprintf(&b, "- %d adults, %d children\n", c.TotalAdults, c.TotalChildren)
		if len(c.Preferences) > 0 {
			fmt.Fprintf(&b, "- Preferences: %s\n", strings.Join(c.Preferences, ", "))
		}
		fmt.Fprintf(&b, "- Special Notes: %s\n\n", noteOrNone(c.SpecialNote))
	}
	fmt.Fprintf(&b, "REQUESTED CHANGE\n%s\n\n", req.UserChange)
	if len(candidates) > 0 {
		b.WriteString("NEARBY CANDIDATES (prefer these real places)\n")
		for _, c := range candidates {
			fmt.Fprintf(&b, "- %s\n", c)
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "Keywords to use for activities: [%s]\n\n", strings.Join(Keywords, ", "))

	if req.Mode == ModeSearch {
		b.WriteString(`Suggest between 1 and 5 alternative activities that satisfy the requested change and fit the day given by the user.
Return ONLY valid JSON in this exact format:
{
  "suggestions": [
    {"time": "2:00 PM", "title": "Activity title", "description": "Brief description", "place": "Place name", "keyword": "activity-type"}
  ]
}`)
	} else {
		b.WriteString(`Apply the requested change to the day given by the user. Keep activities that the change does not affect.
Return ONLY valid JSON in this exact format:
{
  "day_number": 1,
  "date": "YYYY-MM-DD",
  "activities": [
    {"time": "9:00 AM", "title": "Activity title", "description": "Brief description", "place": "Place name", "keyword": "activity-type"}
  ]
}`)
	}

	day, _ := json.Marshal(req.DayPlan)
	return Prompt{System: b.String(), User: string(day)}
}

func destinationLine(req TripRequest) string {
	if s := strings.TrimSpace(req.DestinationState); s != "" {
		return req.Destination + ", " + s
	}
	return req.Destination
}

func writePreferences(b *strings.Builder, req TripRequest) {
	b.WriteString("PREFERENCES:\n")
	fmt.Fprintf(b, "- Activities: %s\n", joinOrNone(req.Activities))
	fmt.Fprintf(b, "- Amenities: %s\n", joinOrNone(req.Amenities))
	fmt.Fprintf(b, "- Food: %s\n", joinOrNone(req.Food))
	fmt.Fprintf(b, "- Pacing: %s\n", joinOrNone(req.Pacing))
	fmt.Fprintf(b, "- Special Notes: %s\n\n", noteOrNone(req.SpecialNote))
}
