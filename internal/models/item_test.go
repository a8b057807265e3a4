package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleItems() []*FoundItem {
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	return []*FoundItem{
		{ID: "1", Title: "Black Wallet", Description: "leather", Location: "Library", Category: "Accessories", Status: StatusAvailable, PostedBy: "u1", CreatedAt: base},
		{ID: "2", Title: "iPhone", Description: "cracked screen", Location: "Cafeteria", Category: "Electronics", Status: StatusClaimed, PostedBy: "u2", CreatedAt: base.Add(2 * time.Hour)},
		{ID: "3", Title: "Keys", Description: "car keys near the library door", Location: "Parking", Category: "Keys", Status: StatusReturned, PostedBy: "u1", CreatedAt: base.Add(time.Hour)},
	}
}

func TestItemFilter_ApplySortsNewestFirst(t *testing.T) {
	out := ItemFilter{}.Apply(sampleItems())

	require.Len(t, out, 3)
	assert.Equal(t, []string{"2", "3", "1"}, []string{out[0].ID, out[1].ID, out[2].ID})
}

func TestItemFilter_QueryMatchesTitleDescriptionLocation(t *testing.T) {
	out := ItemFilter{Query: "  LIBRARY "}.Apply(sampleItems())

	require.Len(t, out, 2)
	assert.Equal(t, "3", out[0].ID)
	assert.Equal(t, "1", out[1].ID)
}

func TestItemFilter_Combined(t *testing.T) {
	items := sampleItems()

	assert.Len(t, ItemFilter{Category: "Electronics"}.Apply(items), 1)
	assert.Len(t, ItemFilter{Status: StatusReturned}.Apply(items), 1)
	assert.Len(t, ItemFilter{PostedBy: "u1"}.Apply(items), 2)
	assert.Empty(t, ItemFilter{PostedBy: "u1", Category: "Electronics"}.Apply(items))
}

func TestStats(t *testing.T) {
	stats := Stats(sampleItems())

	assert.Equal(t, ItemStats{Total: 3, Available: 1, Claimed: 1, Returned: 1}, stats)
}

func TestCreateItemRequest_MissingFields(t *testing.T) {
	req := CreateItemRequest{Title: "  Umbrella ", Description: " ", Category: "Other", Location: "Gym", ContactInfo: "x@y.z"}
	req.Normalize()

	assert.Equal(t, "Umbrella", req.Title)
	assert.Equal(t, []string{"description", "dateFound"}, req.MissingFields())
}

func TestCategoriesAndStatuses(t *testing.T) {
	assert.True(t, IsValidCategory("Sports Equipment"))
	assert.False(t, IsValidCategory("sports equipment"))

	assert.True(t, StatusClaimed.Valid())
	assert.False(t, ItemStatus("lost").Valid())
}

func TestRegisterRequest_Normalize(t *testing.T) {
	req := RegisterRequest{Name: " Bob ", Email: "  Bob@X.com ", Password: " secret1 "}
	req.Normalize()

	assert.Equal(t, "Bob", req.Name)
	assert.Equal(t, "bob@x.com", req.Email)
	assert.Equal(t, "secret1", req.Password)
}
