package recommend

import (
	"sort"
	"time"

	"github.com/freshmind/recommender/internal/domain"
)

// recentWindow is the trailing window that defines "recent" categories.
const recentWindow = 30 * 24 * time.Hour

// topCategoryLimit caps the all-time preferred category list.
const topCategoryLimit = 3

// PurchaseProfile is the compact, request-scoped view of a shopper's
// purchase history. Recent categories capture what they're into lately;
// top categories capture stable all-time preference. The two feed
// different score tiers.
type PurchaseProfile struct {
	// Counts maps productID to total purchase event count.
	Counts map[int]int
	// RecentCategories holds categories purchased within the trailing
	// 30 days, resolved against the catalog.
	RecentCategories map[string]bool
	// TopCategories holds up to 3 all-time most frequent categories,
	// most frequent first, ties broken by first-seen order.
	TopCategories []string
	// LastPurchase is the most recent purchase timestamp, zero if none.
	LastPurchase time.Time
}

// Purchased reports whether the shopper has bought the product before.
func (p *PurchaseProfile) Purchased(productID int) bool {
	return p.Counts[productID] > 0
}

// HasTopCategory reports whether the category is an all-time favorite.
func (p *PurchaseProfile) HasTopCategory(category string) bool {
	for _, c := range p.TopCategories {
		if c == category {
			return true
		}
	}
	return false
}

// Analyze builds a PurchaseProfile from raw purchase events. Events whose
// product no longer exists in the catalog are skipped as stale history.
// An empty history yields an all-empty profile, never an error.
func Analyze(history []domain.PurchaseEvent, catalog []domain.Product, now time.Time) *PurchaseProfile {
	profile := &PurchaseProfile{
		Counts:           make(map[int]int),
		RecentCategories: make(map[string]bool),
	}
	if len(history) == 0 {
		return profile
	}

	categoryByID := make(map[int]string, len(catalog))
	for _, p := range catalog {
		categoryByID[p.ID] = p.Category
	}

	// Recency order so LastPurchase and the recent window fall out of a
	// single pass.
	events := make([]domain.PurchaseEvent, len(history))
	copy(events, history)
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].PurchasedAt.After(events[j].PurchasedAt)
	})
	profile.LastPurchase = events[0].PurchasedAt

	cutoff := now.Add(-recentWindow)
	categoryCounts := make(map[string]int)
	var categoryOrder []string

	for _, ev := range events {
		profile.Counts[ev.ProductID]++

		category, ok := categoryByID[ev.ProductID]
		if !ok || category == "" {
			continue // stale history: product left the catalog
		}

		if _, seen := categoryCounts[category]; !seen {
			categoryOrder = append(categoryOrder, category)
		}
		categoryCounts[category]++

		if !ev.PurchasedAt.Before(cutoff) {
			profile.RecentCategories[category] = true
		}
	}

	// Top categories over all history, ties broken by first-seen order.
	// categoryOrder preserves that order; a stable sort keeps it for ties.
	top := make([]string, len(categoryOrder))
	copy(top, categoryOrder)
	sort.SliceStable(top, func(i, j int) bool {
		return categoryCounts[top[i]] > categoryCounts[top[j]]
	})
	if len(top) > topCategoryLimit {
		top = top[:topCategoryLimit]
	}
	profile.TopCategories = top

	return profile
}
