package handlers

import (
	"context"
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/javierturcios2607/Proyecto-Tifon/internal/hotstore"
)

// ProfileLookup reads a user's most recent events from the hot store.
type ProfileLookup interface {
	Lookup(ctx context.Context, userID string, limit int) ([]hotstore.ProfileEvent, error)
}

// ProfileHandler serves user profile lookups
type ProfileHandler struct {
	Store        ProfileLookup
	Logger       *zap.Logger
	DefaultLimit int
}

// NewProfileHandler creates a new profile handler with dependencies
func NewProfileHandler(store ProfileLookup, logger *zap.Logger, defaultLimit int) *ProfileHandler {
	if defaultLimit <= 0 {
		defaultLimit = hotstore.DefaultLookupLimit
	}
	return &ProfileHandler{
		Store:        store,
		Logger:       logger,
		DefaultLimit: defaultLimit,
	}
}

// ProfileResponse represents the response for GET /api/v1/profiles/:user_id
type ProfileResponse struct {
	UserID       string                  `json:"user_id"`
	EventCount   int                     `json:"event_count"`
	RecentEvents []hotstore.ProfileEvent `json:"recent_events"`
}

// GetProfile handles GET /api/v1/profiles/:user_id
// Query parameters:
//   - user_id (optional): fallback when the path parameter is absent
//   - limit (optional): number of recent events to return, newest first
func (h *ProfileHandler) GetProfile(c *fiber.Ctx) error {
	userID := c.Params("user_id")
	if userID == "" {
		userID = c.Query("user_id")
	}
	if userID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "user_id is required",
		})
	}

	limit := h.DefaultLimit
	if limitStr := c.Query("limit"); limitStr != "" {
		parsedLimit, err := strconv.Atoi(limitStr)
		if err != nil || parsedLimit <= 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "limit must be a positive integer",
			})
		}
		limit = parsedLimit
	}

	events, err := h.Store.Lookup(c.Context(), userID, limit)
	if err != nil {
		if errors.Is(err, hotstore.ErrNoEvents) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "no events found for user",
			})
		}
		h.Logger.Error("Failed to look up user profile",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch profile",
		})
	}

	return c.JSON(ProfileResponse{
		UserID:       userID,
		EventCount:   len(events),
		RecentEvents: events,
	})
}
