package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/javierturcios2607/Proyecto-Tifon/internal/hotstore"
)

type stubLookup struct {
	events    []hotstore.ProfileEvent
	err       error
	gotUserID string
	gotLimit  int
}

func (s *stubLookup) Lookup(_ context.Context, userID string, limit int) ([]hotstore.ProfileEvent, error) {
	s.gotUserID = userID
	s.gotLimit = limit
	if s.err != nil {
		return nil, s.err
	}
	return s.events, nil
}

func newTestApp(store *stubLookup) *fiber.App {
	app := fiber.New()
	handler := NewProfileHandler(store, zap.NewNop(), 5)
	app.Get("/api/v1/profiles", handler.GetProfile)
	app.Get("/api/v1/profiles/:user_id", handler.GetProfile)
	return app
}

func TestGetProfileReturnsRecentEvents(t *testing.T) {
	store := &stubLookup{
		events: []hotstore.ProfileEvent{
			{RowKey: "user_1#30803680000000", EventType: "click", ProductID: "PROD-A", Revenue: "0.5"},
			{RowKey: "user_1#30803680001000", EventType: "impression", ProductID: "PROD-B", Revenue: "0"},
		},
	}
	app := newTestApp(store)

	req := httptest.NewRequest("GET", "/api/v1/profiles/user_1", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var got ProfileResponse
	require.NoError(t, json.Unmarshal(body, &got))

	assert.Equal(t, "user_1", got.UserID)
	assert.Equal(t, 2, got.EventCount)
	require.Len(t, got.RecentEvents, 2)
	assert.Equal(t, "click", got.RecentEvents[0].EventType)

	assert.Equal(t, "user_1", store.gotUserID)
	assert.Equal(t, 5, store.gotLimit)
}

func TestGetProfileCustomLimit(t *testing.T) {
	store := &stubLookup{events: []hotstore.ProfileEvent{{RowKey: "k", EventType: "click"}}}
	app := newTestApp(store)

	req := httptest.NewRequest("GET", "/api/v1/profiles/user_2?limit=20", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, 20, store.gotLimit)
}

func TestGetProfileUserIDQueryFallback(t *testing.T) {
	store := &stubLookup{events: []hotstore.ProfileEvent{{RowKey: "k", EventType: "click"}}}
	app := newTestApp(store)

	req := httptest.NewRequest("GET", "/api/v1/profiles?user_id=user_9", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "user_9", store.gotUserID)
}

func TestGetProfileMissingUserID(t *testing.T) {
	store := &stubLookup{}
	app := newTestApp(store)

	req := httptest.NewRequest("GET", "/api/v1/profiles", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestGetProfileInvalidLimit(t *testing.T) {
	store := &stubLookup{}
	app := newTestApp(store)

	for _, limit := range []string{"abc", "0", "-3"} {
		req := httptest.NewRequest("GET", "/api/v1/profiles/user_3?limit="+limit, nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode, "limit=%s", limit)
	}
}

func TestGetProfileUnknownUser(t *testing.T) {
	store := &stubLookup{err: hotstore.ErrNoEvents}
	app := newTestApp(store)

	req := httptest.NewRequest("GET", "/api/v1/profiles/user_404", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestGetProfileStoreFailure(t *testing.T) {
	store := &stubLookup{err: errors.New("redis down")}
	app := newTestApp(store)

	req := httptest.NewRequest("GET", "/api/v1/profiles/user_5", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
}
