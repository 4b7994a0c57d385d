package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crm-backend/internal/services"
)

func newTestContext(method, target, contentType, body string) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, target, strings.NewReader(body))
	if contentType != "" {
		c.Request.Header.Set("Content-Type", contentType)
	}
	return c, w
}

func TestRespondWithErrorStatuses(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{&services.Error{Kind: services.KindValidation, Message: "bad"}, http.StatusBadRequest},
		{&services.Error{Kind: services.KindUnsupportedMediaType, Message: "bad type"}, http.StatusBadRequest},
		{&services.Error{Kind: services.KindNotFound, Message: "gone"}, http.StatusNotFound},
		{&services.Error{Kind: services.KindConflict, Message: "dup"}, http.StatusConflict},
		{&services.Error{Kind: services.KindUnauthorized, Message: "no"}, http.StatusUnauthorized},
		{&services.Error{Kind: services.KindServiceUnavailable, Message: "down"}, http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		c, w := newTestContext(http.MethodGet, "/", "", "")
		respondWithError(c, "TEST", tc.err)

		assert.Equal(t, tc.status, w.Code, tc.err.Error())
		var body map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, false, body["success"])
		assert.NotEmpty(t, body["message"])
		assert.NotContains(t, body, "details")
	}
}

func TestRespondWithErrorDetails(t *testing.T) {
	c, w := newTestContext(http.MethodGet, "/", "", "")
	respondWithError(c, "TEST", &services.Error{Kind: services.KindValidation, Message: "m", Details: []string{"name is required"}})

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, []any{"name is required"}, body["details"])
}

func TestNotesFromBody(t *testing.T) {
	cases := []struct {
		contentType string
		body        string
		notes       string
		ok          bool
	}{
		{"application/json", `{"notes":"a"}`, "a", true},
		{"application/json", `"b"`, "b", true},
		{"text/plain", "c", "c", true},
		{"", `"d"`, "d", true},
		{"application/json", `{"notes":1}`, "", false},
		{"application/json", `{"other":"x"}`, "", false},
		{"application/json", `null`, "", false},
		{"application/json", `{`, "", false},
	}
	for _, tc := range cases {
		c, _ := newTestContext(http.MethodPut, "/customers/1/notes", tc.contentType, tc.body)
		notes, ok := notesFromBody(c)
		assert.Equal(t, tc.ok, ok, tc.body)
		assert.Equal(t, tc.notes, notes, tc.body)
	}
}

func TestParsePaginationParams(t *testing.T) {
	c, _ := newTestContext(http.MethodGet, "/customers", "", "")
	window, err := parsePaginationParams(c)
	require.NoError(t, err)
	assert.False(t, window.set)

	c, _ = newTestContext(http.MethodGet, "/customers?page=2", "", "")
	window, err = parsePaginationParams(c)
	require.NoError(t, err)
	assert.Equal(t, pageWindow{page: 2, limit: defaultPageLimit, set: true}, window)

	for _, query := range []string{"page=0", "limit=-1", "page=x", "limit=1.5"} {
		c, _ = newTestContext(http.MethodGet, "/customers?"+query, "", "")
		_, err = parsePaginationParams(c)
		assert.ErrorIs(t, err, errInvalidPagination, query)
	}
}

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	assert.Equal(t, items, paginate(items, pageWindow{}))
	assert.Equal(t, []int{3, 4}, paginate(items, pageWindow{page: 2, limit: 2, set: true}))
	assert.Equal(t, []int{5}, paginate(items, pageWindow{page: 3, limit: 2, set: true}))
	assert.Empty(t, paginate(items, pageWindow{page: 4, limit: 2, set: true}))
}

func TestListResponse(t *testing.T) {
	body := listResponse("users", []string{"a", "b", "c"}, pageWindow{page: 1, limit: 2, set: true})
	assert.Equal(t, gin.H{"success": true, "users": []string{"a", "b"}, "page": 1, "limit": 2, "total": 3}, body)

	body = listResponse("users", []string{"a"}, pageWindow{})
	assert.Equal(t, gin.H{"success": true, "users": []string{"a"}}, body)
}

func TestIsJSONArray(t *testing.T) {
	assert.True(t, isJSONArray([]byte("  [1]")))
	assert.False(t, isJSONArray([]byte(`{"a":[]}`)))
	assert.False(t, isJSONArray(nil))
}
