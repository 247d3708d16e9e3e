// Package api exposes the chatbot, catalog, and purchase-insight
// endpoints over HTTP.
package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/freshmind/recommender/internal/chat"
	"github.com/freshmind/recommender/internal/domain"
	"github.com/freshmind/recommender/internal/insights"
)

// Handlers contains all HTTP handlers.
type Handlers struct {
	chatService *chat.Service
	catalog     chat.CatalogRepository
	history     chat.HistoryRepository
	users       chat.UserRepository
	summarizer  *insights.Summarizer
	banner      *insights.BannerRenderer
	windowDays  int
}

// NewHandlers creates a Handlers instance.
func NewHandlers(
	chatService *chat.Service,
	catalog chat.CatalogRepository,
	history chat.HistoryRepository,
	users chat.UserRepository,
	summarizer *insights.Summarizer,
	banner *insights.BannerRenderer,
	windowDays int,
) *Handlers {
	if windowDays <= 0 {
		windowDays = insights.DefaultWindowDays
	}
	return &Handlers{
		chatService: chatService,
		catalog:     catalog,
		history:     history,
		users:       users,
		summarizer:  summarizer,
		banner:      banner,
		windowDays:  windowDays,
	}
}

// ChatRequest is the POST /api/chat body.
type ChatRequest struct {
	UserID  int    `json:"user_id"`
	Message string `json:"message"`
}

// HandleChat runs one chatbot turn.
func (h *Handlers) HandleChat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Message == "" {
		respondError(w, http.StatusBadRequest, "message is required")
		return
	}

	resp, err := h.chatService.Handle(r.Context(), req.UserID, req.Message)
	if err != nil {
		if errors.Is(err, chat.ErrUserNotFound) {
			respondError(w, http.StatusNotFound, "user not found")
			return
		}
		log.Printf("api: chat turn failed: %v", err)
		respondError(w, http.StatusInternalServerError, "chat processing failed")
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

// PurchaseSummaryResponse is the insight summary plus its rendered banner.
type PurchaseSummaryResponse struct {
	domain.InsightSummary
	UserName string `json:"user_name"`
	Message  string `json:"message,omitempty"`
}

// HandlePurchaseSummary returns a user's weighted purchase insights.
func (h *Handlers) HandlePurchaseSummary(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.Atoi(chi.URLParam(r, "userID"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	windowDays := h.windowDays
	if days := r.URL.Query().Get("days"); days != "" {
		d, err := strconv.Atoi(days)
		if err != nil || d <= 0 {
			respondError(w, http.StatusBadRequest, "invalid days parameter")
			return
		}
		windowDays = d
	}

	user, err := h.users.Get(r.Context(), userID)
	if err != nil {
		if errors.Is(err, chat.ErrUserNotFound) {
			respondError(w, http.StatusNotFound, "user not found")
			return
		}
		log.Printf("api: loading user %d failed: %v", userID, err)
		respondError(w, http.StatusInternalServerError, "loading user failed")
		return
	}

	history, err := h.history.ListForUser(r.Context(), userID, windowDays)
	if err != nil {
		log.Printf("api: loading history for user %d failed: %v", userID, err)
		respondError(w, http.StatusInternalServerError, "loading purchase history failed")
		return
	}
	catalog, err := h.catalog.List(r.Context(), "")
	if err != nil {
		log.Printf("api: loading catalog failed: %v", err)
		respondError(w, http.StatusInternalServerError, "loading catalog failed")
		return
	}

	summary := h.summarizer.Summarize(userID, history, catalog, windowDays)
	resp := PurchaseSummaryResponse{InsightSummary: summary, UserName: user.Name}
	if h.banner != nil {
		resp.Message = h.banner.Render(user, summary)
	}
	respondJSON(w, http.StatusOK, resp)
}

// HandleListProducts returns the catalog, optionally filtered by category.
func (h *Handlers) HandleListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.List(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		log.Printf("api: listing products failed: %v", err)
		respondError(w, http.StatusInternalServerError, "listing products failed")
		return
	}
	if products == nil {
		products = []domain.Product{}
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"products": products,
		"count":    len(products),
	})
}

// HealthCheck reports liveness.
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "recommender",
	})
}

// Response helpers

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
