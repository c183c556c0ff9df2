package ticketmaster

// ClassificationMusic restricts searches to the Music segment.
const ClassificationMusic = "Music"

// Attraction is a catalog performer entry.
type Attraction struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Event is a single event listing as returned by events.json.
type Event struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	URL      string  `json:"url"`
	Images   []Image `json:"images"`
	Dates    Dates   `json:"dates"`
	Embedded struct {
		Venues []Venue `json:"venues"`
	} `json:"_embedded"`
}

// Venues returns the venues embedded in the event, if any.
func (e Event) Venues() []Venue {
	return e.Embedded.Venues
}

// Image is an event or attraction image.
type Image struct {
	URL    string `json:"url"`
	Ratio  string `json:"ratio"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// Dates holds event scheduling information.
type Dates struct {
	Start struct {
		LocalDate string `json:"localDate"` // YYYY-MM-DD
		LocalTime string `json:"localTime"` // HH:MM:SS, may be empty
	} `json:"start"`
	Timezone string `json:"timezone"`
}

// Venue is an embedded event venue.
type Venue struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// AttractionQuery parameters for attractions.json.
type AttractionQuery struct {
	Keyword        string
	Classification string
	Size           int
}

// EventQuery parameters for events.json.
type EventQuery struct {
	AttractionID   string
	City           string
	Radius         int
	Unit           string // "miles" or "km"
	Classification string
	Size           int
	Sort           string // e.g. "date,asc"
}
