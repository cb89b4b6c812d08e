package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// DefaultBaseURL is the OpenWeather current weather endpoint root.
const DefaultBaseURL = "https://api.openweathermap.org"

// ErrUnexpectedStatus is returned when the provider answers with a non-200 status.
var ErrUnexpectedStatus = errors.New("weather: unexpected status")

// HTTPDoer defines http.Client interface subset.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// Observation is the outdoor temperature (°C) and relative humidity (%).
type Observation struct {
	Temperature float64
	Humidity    float64
}

// Client queries current conditions for a coordinate.
type Client struct {
	baseURL string
	apiKey  string
	client  HTTPDoer
}

// NewClient builds client with base URL. An empty baseURL uses DefaultBaseURL.
func NewClient(baseURL, apiKey string, client HTTPDoer) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  client,
	}
}

// NewDefaultHTTPClient returns *http.Client with timeout.
func NewDefaultHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}

type currentResponse struct {
	Main struct {
		Temp     float64 `json:"temp"`
		Humidity float64 `json:"humidity"`
	} `json:"main"`
}

// Current returns the conditions at lat/lon in metric units.
func (c *Client) Current(ctx context.Context, lat, lon float64) (Observation, error) {
	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	q.Set("units", "metric")
	q.Set("appid", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/data/2.5/weather?"+q.Encode(), nil)
	if err != nil {
		return Observation{}, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return Observation{}, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Observation{}, err
	}
	if resp.StatusCode != http.StatusOK {
		return Observation{}, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	var payload currentResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return Observation{}, fmt.Errorf("decode weather response: %w", err)
	}
	return Observation{Temperature: payload.Main.Temp, Humidity: payload.Main.Humidity}, nil
}
