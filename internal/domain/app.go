package domain

import "time"

// RadioStation receives track submissions.
type RadioStation struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Frequency string `json:"frequency"`
}

// TrackSubmission is the music-submission form. SelectedStations holds
// station emails, as chosen in the station list.
type TrackSubmission struct {
	ID               string   `json:"id,omitempty"`
	ArtistName       string   `json:"artistName"`
	TrackTitle       string   `json:"trackTitle"`
	TrackInfo        string   `json:"trackInfo"`
	TrackURL         string   `json:"trackUrl"`
	AvatarURL        string   `json:"avatarUrl"`
	SelectedStations []string `json:"selectedRadioStationIds"`
}

// Ticket is an event ticket listing.
type Ticket struct {
	ID               string    `json:"id"`
	Type             string    `json:"type"`
	Description      string    `json:"description"`
	EventDate        string    `json:"eventDate,omitempty"`
	Venue            string    `json:"venue,omitempty"`
	AvailableTickets int       `json:"availableTickets,omitempty"`
	Owner            string    `json:"owner,omitempty"`
	Price            []float64 `json:"price"`
}

// Connection request status values.
const (
	ConnectionPending  = "pending"
	ConnectionAccepted = "accepted"
	ConnectionRejected = "rejected"
)

// Connection links two users.
type Connection struct {
	ID          string    `json:"id"`
	SenderID    string    `json:"sender_id"`
	RecipientID string    `json:"recipient_id"`
	Status      string    `json:"connection_status"`
	CreatedAt   time.Time `json:"created_at"`
}

// Reel is one playable entry of the video feed.
type Reel struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	MimeType string `json:"mime_type"`
	URL      string `json:"url"`
}
