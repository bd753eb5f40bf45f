package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"farewatch-service/internal/domain/entity"
	"farewatch-service/internal/domain/repository"
	"farewatch-service/pkg/logger"
)

// ScraperSearchRepository drives the external scraping collaborator over
// HTTP. The collaborator owns the browser automation; this client only
// submits one search task at a time and decodes the raw offer records.
type ScraperSearchRepository struct {
	logger      logger.Logger
	baseURL     string
	bearerToken string
	client      *http.Client
}

// NewScraperSearchRepository creates a new scraper client
func NewScraperSearchRepository(baseURL, bearerToken string, logger logger.Logger) repository.FlightSearchRepository {
	return &ScraperSearchRepository{
		logger:      logger,
		baseURL:     baseURL,
		bearerToken: bearerToken,
		// Rendered search pages can take a while to settle
		client: &http.Client{Timeout: 90 * time.Second},
	}
}

type searchRequest struct {
	Origin             string `json:"origin"`
	Destination        string `json:"destination"`
	DepartureDate      string `json:"departureDate"`
	ReturnDate         string `json:"returnDate,omitempty"`
	Cabin              string `json:"cabin"`
	MinDurationMinutes int    `json:"minDurationMinutes,omitempty"`
	PremiumOnly        bool   `json:"premiumOnly,omitempty"`
}

// Search submits one search task and returns the raw offer records. Every
// failure is wrapped as *entity.SearchError so the scheduler can treat it
// as a skipped task.
func (r *ScraperSearchRepository) Search(ctx context.Context, task entity.SearchTask) ([]entity.RawOffer, error) {
	body := searchRequest{
		Origin:             task.Route.Origin,
		Destination:        task.Route.Destination,
		DepartureDate:      task.Dates.Departure,
		ReturnDate:         task.Dates.Return,
		Cabin:              string(task.Route.Cabin),
		MinDurationMinutes: task.MinDurationMinutes,
		PremiumOnly:        task.PremiumOnly,
	}

	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, r.searchError(task, fmt.Errorf("failed to marshal search request: %w", err))
	}

	url := fmt.Sprintf("%s/api/v1/flights/search", r.baseURL)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, r.searchError(task, fmt.Errorf("failed to create request: %w", err))
	}

	req.Header.Set("Authorization", "Bearer "+r.bearerToken)
	req.Header.Set("Content-Type", "application/json")

	r.logger.Info("Searching flights",
		"origin", task.Route.Origin,
		"destination", task.Route.Destination,
		"departure", task.Dates.Departure,
		"return", task.Dates.Return,
		"cabin", task.Route.Cabin)

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, r.searchError(task, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var errorBody map[string]interface{}
		json.NewDecoder(resp.Body).Decode(&errorBody)
		return nil, r.searchError(task, fmt.Errorf("scraper service returned status %d: %v", resp.StatusCode, errorBody))
	}

	var response struct {
		Success bool `json:"success"`
		Data    struct {
			Offers []entity.RawOffer `json:"offers"`
		} `json:"data"`
		Error struct {
			Message string `json:"message"`
			Code    string `json:"code"`
		} `json:"error"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, r.searchError(task, fmt.Errorf("failed to decode response: %w", err))
	}

	if !response.Success {
		return nil, r.searchError(task, fmt.Errorf("scraper reported failure: %s (code: %s)", response.Error.Message, response.Error.Code))
	}

	r.logger.Info("Search completed",
		"origin", task.Route.Origin,
		"destination", task.Route.Destination,
		"departure", task.Dates.Departure,
		"offers", len(response.Data.Offers))

	return response.Data.Offers, nil
}

func (r *ScraperSearchRepository) searchError(task entity.SearchTask, err error) *entity.SearchError {
	return &entity.SearchError{
		Origin:        task.Route.Origin,
		Destination:   task.Route.Destination,
		DepartureDate: task.Dates.Departure,
		ReturnDate:    task.Dates.Return,
		Err:           err,
	}
}
