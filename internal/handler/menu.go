package handler

import (
	"context"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/alisoleah/qr-ordering-api/internal/database"
)

// MenuStore defines the database methods needed by the menu handler.
type MenuStore interface {
	GetDefaultRestaurant(ctx context.Context) (database.Restaurant, error)
	ListCategories(ctx context.Context, restaurantID uuid.UUID) ([]database.Category, error)
	ListAvailableMenuItems(ctx context.Context, restaurantID uuid.UUID) ([]database.MenuItem, error)
}

// MenuHandler serves the guest-facing menu.
type MenuHandler struct {
	store MenuStore
}

func NewMenuHandler(store MenuStore) *MenuHandler {
	return &MenuHandler{store: store}
}

func (h *MenuHandler) RegisterRoutes(r chi.Router) {
	r.Get("/menu", h.Get)
}

type menuItemResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Price       string    `json:"price"`
	ImageURL    string    `json:"image_url,omitempty"`
}

type menuCategoryResponse struct {
	ID    uuid.UUID          `json:"id"`
	Name  string             `json:"name"`
	Items []menuItemResponse `json:"items"`
}

// Get handles GET /api/menu: active categories with their available items.
func (h *MenuHandler) Get(w http.ResponseWriter, r *http.Request) {
	restaurant, err := h.store.GetDefaultRestaurant(r.Context())
	if err != nil {
		log.Printf("ERROR: get restaurant for menu: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	categories, err := h.store.ListCategories(r.Context(), restaurant.ID)
	if err != nil {
		log.Printf("ERROR: list categories: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	items, err := h.store.ListAvailableMenuItems(r.Context(), restaurant.ID)
	if err != nil {
		log.Printf("ERROR: list menu items: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	byCategory := make(map[uuid.UUID][]menuItemResponse)
	for _, mi := range items {
		byCategory[mi.CategoryID] = append(byCategory[mi.CategoryID], menuItemResponse{
			ID:          mi.ID,
			Name:        mi.Name,
			Description: textOrEmpty(mi.Description),
			Price:       numericString(mi.Price),
			ImageURL:    textOrEmpty(mi.ImageUrl),
		})
	}

	resp := make([]menuCategoryResponse, 0, len(categories))
	for _, c := range categories {
		resp = append(resp, menuCategoryResponse{
			ID:    c.ID,
			Name:  c.Name,
			Items: byCategory[c.ID],
		})
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"restaurant": restaurant.Name,
		"currency":   restaurant.Currency,
		"categories": resp,
	})
}
