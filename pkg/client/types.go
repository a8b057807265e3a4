package client

import "time"

// User is the public view of an account.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// AuthResponse is returned by Register and Login.
type AuthResponse struct {
	User      User   `json:"user"`
	Token     string `json:"token"`
	ExpiresIn int    `json:"expires_in"` // seconds
}

type ItemStatus string

const (
	StatusAvailable ItemStatus = "available"
	StatusClaimed   ItemStatus = "claimed"
	StatusReturned  ItemStatus = "returned"
)

// Item is a found-item posting as served by the API.
type Item struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Category     string     `json:"category"`
	Location     string     `json:"location"`
	DateFound    string     `json:"dateFound"`
	ContactInfo  string     `json:"contactInfo"`
	ImageURL     string     `json:"imageUrl,omitempty"`
	PostedBy     string     `json:"postedBy"`
	PostedByName string     `json:"postedByName"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    *time.Time `json:"updatedAt,omitempty"`
	Status       ItemStatus `json:"status"`
}

// NewItem is the payload for CreateItem. Every field except ImageURL is required.
type NewItem struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Location    string `json:"location"`
	DateFound   string `json:"dateFound"`
	ContactInfo string `json:"contactInfo"`
	ImageURL    string `json:"imageUrl,omitempty"`
}

// ItemFilter narrows ListItems. Zero values match everything.
type ItemFilter struct {
	Query    string
	Category string
	Status   ItemStatus
	PostedBy string
}

type ItemStats struct {
	Total     int `json:"total"`
	Available int `json:"available"`
	Claimed   int `json:"claimed"`
	Returned  int `json:"returned"`
}

// ProfileUpdate reports a completed rename.
type ProfileUpdate struct {
	Success      bool   `json:"success"`
	Message      string `json:"message"`
	ItemsUpdated int    `json:"items_updated"`
}

// UploadedFile describes a stored upload.
type UploadedFile struct {
	URL         string `json:"url"`
	Pathname    string `json:"pathname"`
	ContentType string `json:"contentType"`
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type verifyRequest struct {
	Token string `json:"token"`
}

type statusRequest struct {
	Status ItemStatus `json:"status"`
}

type profileRequest struct {
	Name string `json:"name"`
}

type userResponse struct {
	User User `json:"user"`
}

type itemResponse struct {
	Item *Item `json:"item"`
}

type itemListResponse struct {
	Items []*Item `json:"items"`
	Total int     `json:"total"`
}
