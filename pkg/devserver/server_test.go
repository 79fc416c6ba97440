package devserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tableflip.dev/backstage/pkg/entity"
)

func call(t *testing.T, s *Server, method, path, token string, body any) (int, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	var out map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &out)
	return rec.Code, out
}

func login(t *testing.T, s *Server) (string, string) {
	t.Helper()
	code, out := call(t, s, http.MethodPost, "/v1/auth/login", "", map[string]string{"email": DefaultEmail, "password": DefaultPassword})
	require.Equal(t, http.StatusOK, code)
	data := out["data"].(map[string]any)
	return data["accessToken"].(string), data["refreshToken"].(string)
}

func TestLoginRejectsBadPassword(t *testing.T) {
	s := New()
	code, out := call(t, s, http.MethodPost, "/v1/auth/login", "", map[string]string{"email": DefaultEmail, "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Invalid email or password", out["message"])
}

func TestListPaginatesAndFilters(t *testing.T) {
	s := New()
	for i := 0; i < 12; i++ {
		status := "open"
		if i%3 == 0 {
			status = "resolved"
		}
		require.NoError(t, s.Seed("tickets", entity.Entity{"subject": "Ticket", "status": status}))
	}
	access, _ := login(t, s)

	code, out := call(t, s, http.MethodGet, "/v1/admin/tickets?page=2&limit=5", access, nil)
	require.Equal(t, http.StatusOK, code)
	data := out["data"].(map[string]any)
	assert.Len(t, data["tickets"], 5)
	p := data["pagination"].(map[string]any)
	assert.EqualValues(t, 2, p["currentPage"])
	assert.EqualValues(t, 3, p["totalPages"])
	assert.EqualValues(t, 12, p["totalCount"])

	_, out = call(t, s, http.MethodGet, "/v1/admin/tickets?status=resolved", access, nil)
	p = out["data"].(map[string]any)["pagination"].(map[string]any)
	assert.EqualValues(t, 4, p["totalCount"])
}

func TestSearchMatchesNestedStrings(t *testing.T) {
	s := New()
	require.NoError(t, s.Seed("payout-requests",
		entity.Entity{"user": map[string]any{"email": "nova@artists.example"}, "amount": 120.0},
		entity.Entity{"user": map[string]any{"email": "rio@artists.example"}, "amount": 80.0},
	))
	access, _ := login(t, s)
	_, out := call(t, s, http.MethodGet, "/v1/admin/payout-requests?search=NOVA", access, nil)
	rows := out["data"].(map[string]any)["payoutRequests"].([]any)
	require.Len(t, rows, 1)
}

func TestInvalidatedTokenNeedsRefresh(t *testing.T) {
	s := New()
	access, refresh := login(t, s)
	s.InvalidateAccessTokens()

	code, _ := call(t, s, http.MethodGet, "/v1/admin/users", access, nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, out := call(t, s, http.MethodPost, "/v1/auth/refresh-token", "", map[string]string{"refreshToken": refresh})
	require.Equal(t, http.StatusOK, code)
	fresh := out["data"].(map[string]any)["accessToken"].(string)
	assert.NotEqual(t, access, fresh)

	code, _ = call(t, s, http.MethodGet, "/v1/admin/users", fresh, nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, 1, s.Stats().Refreshes)
}

func TestCreateRejectsDuplicateMonth(t *testing.T) {
	s := New()
	access, _ := login(t, s)
	code, out := call(t, s, http.MethodPost, "/v1/mcn/admin/royalty-months", access, map[string]any{"month": "Jan-25"})
	require.Equal(t, http.StatusCreated, code)
	doc := out["data"].(map[string]any)["data"].(map[string]any)
	assert.True(t, entity.ValidObjectID(doc["_id"].(string)))

	code, out = call(t, s, http.MethodPost, "/v1/mcn/admin/royalty-months", access, map[string]any{"month": "jan-25"})
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "Month already exists", out["message"])
}

func TestToggleSuffixRouteAndFaults(t *testing.T) {
	s := New()
	require.NoError(t, s.Seed("royalty-months", entity.Entity{"_id": "65a1b2c3d4e5f60718293a4b", "month": "Feb-25", "isActive": true}))
	access, _ := login(t, s)

	code, _ := call(t, s, http.MethodPatch, "/v1/mcn/admin/royalty-months/65a1b2c3d4e5f60718293a4b/toggle", access, map[string]any{"isActive": false})
	require.Equal(t, http.StatusOK, code)
	active, _ := s.Docs("royalty-months")[0].Bool("isActive")
	assert.False(t, active)

	s.Fail(http.MethodPatch, "/v1/mcn/admin/royalty-months", http.StatusInternalServerError, "Toggle failed")
	code, out := call(t, s, http.MethodPatch, "/v1/mcn/admin/royalty-months/65a1b2c3d4e5f60718293a4b/toggle", access, map[string]any{"isActive": true})
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "Toggle failed", out["message"])

	s.ClearFaults()
	code, _ = call(t, s, http.MethodGet, "/v1/mcn/admin/royalty-months", access, nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestReadOnlyResourceHasNoWrites(t *testing.T) {
	s := New()
	access, _ := login(t, s)
	code, _ := call(t, s, http.MethodPost, "/v1/admin/reports", access, map[string]any{"month": "Jan-25"})
	assert.NotEqual(t, http.StatusCreated, code)
}

func TestDeleteValidatesID(t *testing.T) {
	s := New()
	access, _ := login(t, s)
	code, out := call(t, s, http.MethodDelete, "/v1/admin/users/abc", access, nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Invalid ID", out["message"])
}

func TestSeedSamplesFillsEveryResource(t *testing.T) {
	s := New()
	require.NoError(t, s.SeedSamples())
	for _, res := range entity.All() {
		assert.NotEmpty(t, s.Docs(res.Name), res.Name)
	}
	for _, d := range s.Docs("royalty-months") {
		assert.True(t, entity.ValidMonthCode(d.String("month")), d.String("month"))
		assert.True(t, entity.ValidObjectID(d.ID()))
	}
}
