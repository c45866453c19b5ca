package geocode

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"assettrack/internal/domain/service"
	"assettrack/internal/errors"

	"github.com/paulmach/orb"
)

const defaultGoogleEndpoint = "https://maps.googleapis.com/maps/api/geocode/json"

// ErrNoResult is returned when the provider knows nothing about the query.
var ErrNoResult = errors.New("no geocoding result")

type googleGeocoder struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
}

type googleResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Results      []struct {
		FormattedAddress string `json:"formatted_address"`
		Geometry         struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

// NewGoogleGeocoder creates a geocoder against endpoint; empty means Google's.
func NewGoogleGeocoder(endpoint, apiKey string, httpClient *http.Client) service.Geocoder {
	if endpoint == "" {
		endpoint = defaultGoogleEndpoint
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &googleGeocoder{endpoint: endpoint, apiKey: apiKey, httpClient: httpClient}
}

func (g *googleGeocoder) Reverse(ctx context.Context, point orb.Point) (string, error) {
	params := url.Values{}
	params.Set("latlng", strconv.FormatFloat(point.Lat(), 'f', -1, 64)+","+strconv.FormatFloat(point.Lon(), 'f', -1, 64))

	resp, err := g.query(ctx, params)
	if err != nil {
		return "", err
	}

	return resp.Results[0].FormattedAddress, nil
}

func (g *googleGeocoder) Forward(ctx context.Context, address string) (orb.Point, error) {
	params := url.Values{}
	params.Set("address", address)

	resp, err := g.query(ctx, params)
	if err != nil {
		return orb.Point{}, err
	}
	loc := resp.Results[0].Geometry.Location

	return orb.Point{loc.Lng, loc.Lat}, nil
}

// query returns a response with at least one result, or an error.
func (g *googleGeocoder) query(ctx context.Context, params url.Values) (*googleResponse, error) {
	params.Set("key", g.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("geocoding returned status %d", resp.StatusCode)
	}

	var body googleResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, errors.Wrap(err, "decode geocoding response")
	}

	switch body.Status {
	case "OK":
	case "ZERO_RESULTS":
		return nil, ErrNoResult
	default:
		return nil, errors.Errorf("geocoding failed: %s %s", body.Status, body.ErrorMessage)
	}
	if len(body.Results) == 0 {
		return nil, ErrNoResult
	}

	return &body, nil
}
