package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *APIClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewAPIClient(srv.URL+"/", time.Second)
}

func TestListFridge(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/fridge", r.URL.Path)
		assert.Equal(t, "green tea", r.URL.Query().Get("search"))
		w.Write([]byte(`[{"id":"1","name":"green tea","quantity":{"value":20,"unit":"pieces"}}]`))
	})

	items, err := c.ListFridge(context.Background(), "green tea")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "green tea", items[0].Name)
	assert.Equal(t, 20.0, items[0].Quantity.Value)
}

func TestAddIngredient(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))

		var body map[string]interface{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Tomato", body["ingredient"])
		assert.Equal(t, map[string]interface{}{"value": 2.0, "unit": "pieces"}, body["quantity"])

		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"message":"Added tomato to the fridge","fridge":[{"id":"1","name":"tomato","quantity":{"value":2,"unit":"pieces"}}]}`))
	})
	c.Token = "tok"

	res, err := c.AddIngredient(context.Background(), "Tomato", 2, "pieces")
	require.NoError(t, err)
	require.Len(t, res.Fridge, 1)
	assert.Equal(t, "tomato", res.Fridge[0].Name)
}

func TestAPIError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"ingredient not found: caviar"}`))
	})

	_, err := c.RemoveIngredient(context.Background(), "caviar")
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "ingredient not found: caviar", apiErr.Message)
}

func TestRecipes(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"recipes":"1. Shakshuka"}`))
	})

	res, err := c.Recipes(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "1. Shakshuka", res.Text)
	assert.Empty(t, res.Meals)
}

func TestParseReceipt(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		f, header, err := r.FormFile("receipt")
		if !assert.NoError(t, err) {
			return
		}
		data, _ := io.ReadAll(f)
		assert.Equal(t, "scan.jpg", header.Filename)
		assert.Equal(t, "jpeg-bytes", string(data))
		w.Write([]byte(`{"text":"BREAD 2.10"}`))
	})

	text, err := c.ParseReceipt(context.Background(), "scan.jpg", strings.NewReader("jpeg-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "BREAD 2.10", text)
}

func TestCheckHealth(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	assert.Error(t, c.CheckHealth(context.Background()))
}

func TestDebouncer_Tickets(t *testing.T) {
	d := NewDebouncer(SearchDelay)
	first := d.Next()
	second := d.Next()

	assert.False(t, d.Live(first))
	assert.True(t, d.Live(second))

	third := d.Next()
	assert.False(t, d.Live(second))
	assert.True(t, d.Live(third))
	assert.Equal(t, SearchDelay, d.Delay())
}

func TestLatest_DiscardsStaleResponses(t *testing.T) {
	var l Latest
	older := l.Issue()
	newer := l.Issue()

	assert.True(t, l.Apply(newer))
	assert.False(t, l.Apply(older), "a response to an older request must not overwrite newer state")

	third := l.Issue()
	assert.True(t, l.Apply(third))
}
