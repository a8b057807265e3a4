package models

import (
	"sort"
	"strings"
	"time"
)

// ItemStatus is the lifecycle state of a found item
type ItemStatus string

const (
	StatusAvailable ItemStatus = "available"
	StatusClaimed   ItemStatus = "claimed"
	StatusReturned  ItemStatus = "returned"
)

// Valid reports whether s is one of the known statuses.
func (s ItemStatus) Valid() bool {
	switch s {
	case StatusAvailable, StatusClaimed, StatusReturned:
		return true
	}
	return false
}

// ItemCategories is the fixed classification set for found items.
var ItemCategories = []string{
	"Electronics",
	"Clothing",
	"Accessories",
	"Documents",
	"Keys",
	"Bags",
	"Jewelry",
	"Sports Equipment",
	"Books",
	"Other",
}

// IsValidCategory reports whether category is in ItemCategories.
func IsValidCategory(category string) bool {
	for _, c := range ItemCategories {
		if c == category {
			return true
		}
	}
	return false
}

// FoundItem represents a found-item posting
type FoundItem struct {
	ID           string     `json:"id" dynamodbav:"item_id"` // Primary Key
	Title        string     `json:"title" dynamodbav:"title"`
	Description  string     `json:"description" dynamodbav:"description"`
	Category     string     `json:"category" dynamodbav:"category"`
	Location     string     `json:"location" dynamodbav:"location"`
	DateFound    string     `json:"dateFound" dynamodbav:"date_found"`
	ContactInfo  string     `json:"contactInfo" dynamodbav:"contact_info"`
	ImageURL     string     `json:"imageUrl,omitempty" dynamodbav:"image_url,omitempty"`
	PostedBy     string     `json:"postedBy" dynamodbav:"posted_by"`          // Owner user ID (GSI: posted_by-index)
	PostedByName string     `json:"postedByName" dynamodbav:"posted_by_name"` // Denormalized owner display name
	CreatedAt    time.Time  `json:"createdAt" dynamodbav:"created_at"`
	UpdatedAt    *time.Time `json:"updatedAt,omitempty" dynamodbav:"updated_at,omitempty"`
	Status       ItemStatus `json:"status" dynamodbav:"status"`
}

// CreateItemRequest represents the item creation payload
type CreateItemRequest struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description" validate:"required"`
	Category    string `json:"category" validate:"required"`
	Location    string `json:"location" validate:"required"`
	DateFound   string `json:"dateFound" validate:"required"`
	ContactInfo string `json:"contactInfo" validate:"required"`
	ImageURL    string `json:"imageUrl,omitempty"`
}

// Normalize trims every text field.
func (r *CreateItemRequest) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.Description = strings.TrimSpace(r.Description)
	r.Category = strings.TrimSpace(r.Category)
	r.Location = strings.TrimSpace(r.Location)
	r.DateFound = strings.TrimSpace(r.DateFound)
	r.ContactInfo = strings.TrimSpace(r.ContactInfo)
	r.ImageURL = strings.TrimSpace(r.ImageURL)
}

// MissingFields lists the required fields that are empty.
func (r *CreateItemRequest) MissingFields() []string {
	var missing []string
	for _, f := range []struct {
		name, value string
	}{
		{"title", r.Title},
		{"description", r.Description},
		{"category", r.Category},
		{"location", r.Location},
		{"dateFound", r.DateFound},
		{"contactInfo", r.ContactInfo},
	} {
		if f.value == "" {
			missing = append(missing, f.name)
		}
	}
	return missing
}

// UpdateStatusRequest represents a status change
type UpdateStatusRequest struct {
	Status ItemStatus `json:"status" validate:"required"`
}

// ItemResponse wraps a single item
type ItemResponse struct {
	Item *FoundItem `json:"item"`
}

// ItemListResponse wraps a list of items
type ItemListResponse struct {
	Items []*FoundItem `json:"items"`
	Total int          `json:"total"`
}

// ItemStats summarizes a user's postings by status
type ItemStats struct {
	Total     int `json:"total"`
	Available int `json:"available"`
	Claimed   int `json:"claimed"`
	Returned  int `json:"returned"`
}

// ItemFilter narrows an item listing. Zero values match everything.
type ItemFilter struct {
	Query    string     // case-insensitive substring of title, description or location
	Category string     // exact category
	Status   ItemStatus // exact status
	PostedBy string     // owner user ID
}

// Match reports whether item satisfies the filter.
func (f ItemFilter) Match(item *FoundItem) bool {
	if f.Category != "" && item.Category != f.Category {
		return false
	}
	if f.Status != "" && item.Status != f.Status {
		return false
	}
	if f.PostedBy != "" && item.PostedBy != f.PostedBy {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(f.Query)); q != "" {
		if !strings.Contains(strings.ToLower(item.Title), q) &&
			!strings.Contains(strings.ToLower(item.Description), q) &&
			!strings.Contains(strings.ToLower(item.Location), q) {
			return false
		}
	}
	return true
}

// Apply filters items and returns them newest first.
func (f ItemFilter) Apply(items []*FoundItem) []*FoundItem {
	out := make([]*FoundItem, 0, len(items))
	for _, item := range items {
		if f.Match(item) {
			out = append(out, item)
		}
	}
	SortNewestFirst(out)
	return out
}

// SortNewestFirst orders items by CreatedAt descending.
func SortNewestFirst(items []*FoundItem) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
}

// Stats counts items per status.
func Stats(items []*FoundItem) ItemStats {
	stats := ItemStats{Total: len(items)}
	for _, item := range items {
		switch item.Status {
		case StatusAvailable:
			stats.Available++
		case StatusClaimed:
			stats.Claimed++
		case StatusReturned:
			stats.Returned++
		}
	}
	return stats
}
