package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/kjstillabower/travel-planner-service/internal/models"
)

// MaxFlightOffers caps the offers requested from and returned by Amadeus.
const MaxFlightOffers = 5

// tokenSkew is subtracted from the token lifetime so a token is never used right at expiry.
const tokenSkew = 30 * time.Second

// AmadeusClient searches flight offers with an OAuth2 client-credentials token.
type AmadeusClient struct {
	clientID     string
	clientSecret string
	baseURL      string
	client       *http.Client
	now          func() time.Time

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

func NewAmadeusClient(clientID, clientSecret, baseURL string, timeout time.Duration) (*AmadeusClient, error) {
	if err := requireKey("Amadeus API key", clientID); err != nil {
		return nil, err
	}
	if clientSecret == "" {
		return nil, fmt.Errorf("%w: Amadeus API secret is required", ErrInvalidAPIKey)
	}
	return &AmadeusClient{
		clientID:     clientID,
		clientSecret: clientSecret,
		baseURL:      strings.TrimRight(baseURL, "/"),
		client:       &http.Client{Timeout: timeout},
		now:          time.Now,
	}, nil
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// token returns a cached access token or fetches a new one. The lock is held across the
// refresh so concurrent callers share one token request.
func (c *AmadeusClient) token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && c.now().Before(c.tokenExpiry) {
		return c.accessToken, nil
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", c.clientID)
	form.Set("client_secret", c.clientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/security/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var tr tokenResponse
	if err := do(c.client, ProviderAmadeusAuth, req, &tr); err != nil {
		return "", fmt.Errorf("amadeus token: %w", err)
	}
	if tr.AccessToken == "" {
		return "", fmt.Errorf("amadeus token: %w: empty access token", ErrUpstreamFailure)
	}

	c.accessToken = tr.AccessToken
	c.tokenExpiry = c.now().Add(time.Duration(tr.ExpiresIn)*time.Second - tokenSkew)
	return c.accessToken, nil
}

// dropToken forgets a token Amadeus rejected, unless a concurrent caller already replaced it.
func (c *AmadeusClient) dropToken(rejected string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.accessToken == rejected {
		c.accessToken = ""
		c.tokenExpiry = time.Time{}
	}
}

type flightOffersResponse struct {
	Data []struct {
		Price struct {
			Total    string `json:"total"`
			Currency string `json:"currency"`
		} `json:"price"`
		Itineraries []struct {
			Segments []struct {
				Departure struct {
					IataCode string `json:"iataCode"`
					At       string `json:"at"`
				} `json:"departure"`
				Arrival struct {
					IataCode string `json:"iataCode"`
					At       string `json:"at"`
				} `json:"arrival"`
				CarrierCode string `json:"carrierCode"`
				Number      string `json:"number"`
			} `json:"segments"`
		} `json:"itineraries"`
	} `json:"data"`
}

// SearchFlights returns up to MaxFlightOffers one-adult offers in upstream order.
func (c *AmadeusClient) SearchFlights(ctx context.Context, origin, destination string, departure time.Time) ([]models.FlightOffer, error) {
	token, err := c.token(ctx)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("originLocationCode", origin)
	params.Set("destinationLocationCode", destination)
	params.Set("departureDate", departure.Format(models.DateLayout))
	params.Set("adults", "1")
	params.Set("max", fmt.Sprint(MaxFlightOffers))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v2/shopping/flight-offers?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	var apiResp flightOffersResponse
	if err := do(c.client, ProviderAmadeus, req, &apiResp); err != nil {
		if errors.Is(err, ErrInvalidAPIKey) {
			c.dropToken(token)
		}
		return nil, fmt.Errorf("flight offers %s-%s: %w", origin, destination, err)
	}

	offers := make([]models.FlightOffer, 0, len(apiResp.Data))
	for _, d := range apiResp.Data {
		if len(offers) == MaxFlightOffers {
			break
		}
		offer := models.FlightOffer{
			Price:       models.Price{Total: d.Price.Total, Currency: d.Price.Currency},
			Itineraries: make([]models.Itinerary, 0, len(d.Itineraries)),
		}
		for _, it := range d.Itineraries {
			segments := make([]models.Segment, 0, len(it.Segments))
			for _, s := range it.Segments {
				segments = append(segments, models.Segment{
					Departure:    models.Endpoint{Airport: s.Departure.IataCode, Time: s.Departure.At},
					Arrival:      models.Endpoint{Airport: s.Arrival.IataCode, Time: s.Arrival.At},
					Carrier:      s.CarrierCode,
					FlightNumber: s.Number,
				})
			}
			offer.Itineraries = append(offer.Itineraries, models.Itinerary{Segments: segments})
		}
		offers = append(offers, offer)
	}
	return offers, nil
}
