package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"fridgechef/internal/models"
)

// APIClient handles requests to the fridgechef API
type APIClient struct {
	httpClient *http.Client
	BaseURL    string
	Token      string
}

// APIError is a non-2xx answer from the API
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("request failed with status code: %d", e.StatusCode)
	}
	return fmt.Sprintf("%s (status %d)", e.Message, e.StatusCode)
}

// MutationResult is the answer to an add or remove
type MutationResult struct {
	Message string                    `json:"message"`
	Fridge  []models.IngredientRecord `json:"fridge"`
}

// NewAPIClient creates a new API client
func NewAPIClient(baseURL string, timeout time.Duration) *APIClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &APIClient{
		httpClient: &http.Client{Timeout: timeout},
		BaseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// CheckHealth checks if the API and its store are up
func (c *APIClient) CheckHealth(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/api/health", nil, "", nil)
}

// ListFridge returns the fridge contents, filtered by search when non-empty
func (c *APIClient) ListFridge(ctx context.Context, search string) ([]models.IngredientRecord, error) {
	path := "/api/fridge"
	if search != "" {
		path += "?search=" + url.QueryEscape(search)
	}
	var items []models.IngredientRecord
	if err := c.do(ctx, http.MethodGet, path, nil, "", &items); err != nil {
		return nil, err
	}
	return items, nil
}

// AddIngredient puts a new ingredient in the fridge
func (c *APIClient) AddIngredient(ctx context.Context, name string, value float64, unit string) (*MutationResult, error) {
	body, err := json.Marshal(map[string]interface{}{
		"ingredient": name,
		"quantity":   map[string]interface{}{"value": value, "unit": unit},
	})
	if err != nil {
		return nil, err
	}
	var res MutationResult
	if err := c.do(ctx, http.MethodPost, "/api/fridge", bytes.NewReader(body), "application/json", &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// RemoveIngredient takes an ingredient out of the fridge
func (c *APIClient) RemoveIngredient(ctx context.Context, name string) (*MutationResult, error) {
	body, err := json.Marshal(map[string]string{"ingredient": name})
	if err != nil {
		return nil, err
	}
	var res MutationResult
	if err := c.do(ctx, http.MethodDelete, "/api/fridge", bytes.NewReader(body), "application/json", &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Recipes fetches suggestions for the current fridge contents
func (c *APIClient) Recipes(ctx context.Context) (models.RecipeResult, error) {
	var res models.RecipeResult
	err := c.do(ctx, http.MethodGet, "/api/recipes", nil, "", &res)
	return res, err
}

// ParseReceipt uploads a receipt and returns its text
func (c *APIClient) ParseReceipt(ctx context.Context, filename string, r io.Reader) (string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("receipt", filename)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, r); err != nil {
		return "", err
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	var res struct {
		Text string `json:"text"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/receipt/parse", &buf, mw.FormDataContentType(), &res); err != nil {
		return "", err
	}
	return res.Text, nil
}

func (c *APIClient) do(ctx context.Context, method, path string, body io.Reader, contentType string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&e)
		return &APIError{StatusCode: resp.StatusCode, Message: e.Error}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", path, err)
	}
	return nil
}
