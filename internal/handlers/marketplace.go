package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/cinesafe/cinesafe-backend/internal/database"
	"github.com/cinesafe/cinesafe-backend/internal/models"
)

const (
	defaultPageSize = 12
	maxPageSize     = 50
)

type MarketplacePage struct {
	Success    bool               `json:"success"`
	Data       []models.Equipment `json:"data"`
	NextCursor string             `json:"next_cursor,omitempty"`
	HasMore    bool               `json:"has_more"`
}

// trimPage applies the over-fetch convention: the query asks for
// pageSize+1 documents and the presence of the extra one means another
// page exists. The extra document is never returned.
func trimPage(items []models.Equipment, pageSize int) ([]models.Equipment, bool) {
	if len(items) > pageSize {
		return items[:pageSize], true
	}
	return items, false
}

// applyLocationFilter is the soft in-page location filter: a
// case-insensitive substring match against the denormalized owner
// location. Evaluated only within the fetched page, so pages near
// location boundaries may be under-filled even when more matches exist
// later in the cursor sequence.
func applyLocationFilter(items []models.Equipment, location string) []models.Equipment {
	search := strings.ToLower(strings.TrimSpace(location))
	if search == "" {
		return items
	}
	filtered := make([]models.Equipment, 0, len(items))
	for _, item := range items {
		if item.OwnerProfile == nil {
			continue
		}
		if strings.Contains(strings.ToLower(item.OwnerProfile.Location), search) {
			filtered = append(filtered, item)
		}
	}
	return filtered
}

// pageCursor returns the pagination cursor for the next request: the id of
// the last item on this page, before soft filtering.
func pageCursor(items []models.Equipment) string {
	if len(items) == 0 {
		return ""
	}
	return items[len(items)-1].ID.Hex()
}

// GetRentalListings serves the paginated rental marketplace.
func GetRentalListings(w http.ResponseWriter, r *http.Request) {
	getMarketplaceItems(w, r, "is_for_rent")
}

// GetSaleListings serves the paginated sales marketplace.
func GetSaleListings(w http.ResponseWriter, r *http.Request) {
	getMarketplaceItems(w, r, "is_for_sale")
}

// getMarketplaceItems runs the cursor-paginated listing query. Ordering is
// by _id, which is total and stable, so pages never skip or duplicate
// items across concurrent inserts beyond the soft-filter under-fill.
// Category is matched server-side; location is the soft in-page filter.
func getMarketplaceItems(w http.ResponseWriter, r *http.Request, listingField string) {
	q := r.URL.Query()

	pageSize := defaultPageSize
	if s := q.Get("page_size"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			pageSize = n
		}
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	filter := bson.M{
		listingField: true,
		"status":     models.StatusSafe,
	}
	if category := strings.TrimSpace(q.Get("category")); category != "" {
		filter["category"] = category
	}
	if cursor := q.Get("cursor"); cursor != "" {
		cursorID, err := primitive.ObjectIDFromHex(cursor)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid cursor")
			return
		}
		filter["_id"] = bson.M{"$gt": cursorID}
	}

	ctx, cancel := dbContext()
	defer cancel()

	// Over-fetch one extra record instead of running a count query.
	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetLimit(int64(pageSize + 1))

	cur, err := database.DB.Collection("equipment").Find(ctx, filter, opts)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Database error")
		return
	}
	var fetched []models.Equipment
	if err := cur.All(ctx, &fetched); err != nil {
		writeError(w, http.StatusInternalServerError, "Database error")
		return
	}

	page, hasMore := trimPage(fetched, pageSize)
	nextCursor := pageCursor(page)

	location := q.Get("city")
	if location == "" {
		location = q.Get("uf")
	}
	data := applyLocationFilter(page, location)
	if data == nil {
		data = []models.Equipment{}
	}

	writeJSON(w, http.StatusOK, MarketplacePage{
		Success:    true,
		Data:       data,
		NextCursor: nextCursor,
		HasMore:    hasMore,
	})
}
