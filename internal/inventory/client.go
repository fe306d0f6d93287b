package inventory

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/metinatakli/room-booking-bridge/internal/domain"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	DefaultBaseURL      = "https://api.cloudbeds.com/api/v1.3"
	DefaultReadTimeout  = 20 * time.Second
	DefaultWriteTimeout = 30 * time.Second

	maxResponseBytes = 4 << 20
)

type Config struct {
	BaseURL      string
	APIKey       string
	PropertyID   string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Client talks to the hotel property-management API. Calls are never
// retried: a failure surfaces immediately as an *domain.UpstreamError.
type Client struct {
	baseURL    *url.URL
	apiKey     string
	propertyID string
	read       *http.Client
	write      *http.Client
	logger     *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = DefaultReadTimeout
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = DefaultWriteTimeout
	}

	u, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid inventory base url %q: %w", cfg.BaseURL, err)
	}

	transport := otelhttp.NewTransport(http.DefaultTransport)

	return &Client{
		baseURL:    u,
		apiKey:     cfg.APIKey,
		propertyID: cfg.PropertyID,
		read:       &http.Client{Timeout: cfg.ReadTimeout, Transport: transport},
		write:      &http.Client{Timeout: cfg.WriteTimeout, Transport: transport},
		logger:     logger,
	}, nil
}

func (c *Client) PropertyID() string {
	return c.propertyID
}

func (c *Client) GetAvailableRoomTypes(
	ctx context.Context,
	query domain.AvailabilityQuery) (*domain.AvailabilityResult, error) {

	params := url.Values{}
	params.Set("propertyIDs", c.propertyID)
	params.Set("startDate", query.StartDate.Format(time.DateOnly))
	params.Set("endDate", query.EndDate.Format(time.DateOnly))
	params.Set("rooms", "1")

	if query.Adults > 0 {
		params.Set("adults", fmt.Sprint(query.Adults))
		params.Set("children", fmt.Sprint(max(query.Children, 0)))
	}

	if query.PromoCode != "" {
		params.Set("promoCode", query.PromoCode)
	}

	var resp envelope[[]availabilityProperty]

	err := c.get(ctx, "/getAvailableRoomTypes", params, &resp)
	if err != nil {
		return nil, err
	}

	return toAvailabilityResult(resp.Data), nil
}

func (c *Client) GetRoomTypes(ctx context.Context) ([]domain.RoomType, error) {
	params := url.Values{}
	params.Set("propertyIDs", c.propertyID)

	var resp envelope[[]roomTypeRecord]

	err := c.get(ctx, "/getRoomTypes", params, &resp)
	if err != nil {
		return nil, err
	}

	roomTypes := make([]domain.RoomType, 0, len(resp.Data))
	for _, rt := range resp.Data {
		roomTypes = append(roomTypes, domain.RoomType{
			RoomTypeID: string(rt.RoomTypeID),
			ShortCode:  rt.RoomTypeNameShort,
			Name:       rt.RoomTypeName,
			MaxGuests:  int(rt.MaxGuests),
		})
	}

	return roomTypes, nil
}

func (c *Client) GetRatePlans(ctx context.Context, start, end time.Time) ([]domain.RatePlan, error) {
	params := url.Values{}
	params.Set("propertyIDs", c.propertyID)
	params.Set("startDate", start.Format(time.DateOnly))
	params.Set("endDate", end.Format(time.DateOnly))

	var resp envelope[[]ratePlanRecord]

	err := c.get(ctx, "/getRatePlans", params, &resp)
	if err != nil {
		return nil, err
	}

	plans := make([]domain.RatePlan, 0, len(resp.Data))
	for _, rp := range resp.Data {
		plans = append(plans, domain.RatePlan{
			RatePlanID: string(rp.RateID),
			RoomTypeID: string(rp.RoomTypeID),
			Name:       domain.NormalizePlanLabel(rp.RatePlanNamePublic),
			Price:      rp.RoomRate,
		})
	}

	return plans, nil
}

func (c *Client) GetTaxesAndFees(
	ctx context.Context,
	roomTypeID string,
	start, end time.Time) ([]domain.TaxOrFee, error) {

	params := url.Values{}
	params.Set("propertyID", c.propertyID)
	params.Set("roomTypeID", roomTypeID)
	params.Set("startDate", start.Format(time.DateOnly))
	params.Set("endDate", end.Format(time.DateOnly))

	var resp envelope[[]taxRecord]

	err := c.get(ctx, "/getTaxesAndFees", params, &resp)
	if err != nil {
		return nil, err
	}

	taxes := make([]domain.TaxOrFee, 0, len(resp.Data))
	for _, t := range resp.Data {
		taxes = append(taxes, domain.TaxOrFee{
			Name:        t.Name,
			Amount:      t.Amount,
			Type:        strings.ToLower(t.Type),
			Description: t.Description,
		})
	}

	return taxes, nil
}

// PostReservation creates a reservation. The raw response body is returned
// even on failure so callers can keep it for diagnostics.
func (c *Client) PostReservation(
	ctx context.Context,
	req domain.ReservationRequest) (*domain.ReservationResponse, []byte, error) {

	if req.PropertyID == "" {
		req.PropertyID = c.propertyID
	}

	body, err := c.post(ctx, "/postReservation", encodeReservation(req))
	if err != nil {
		return nil, body, err
	}

	var resp reservationRecord
	err = json.Unmarshal(body, &resp)
	if err != nil {
		return nil, body, &domain.UpstreamError{
			Endpoint:   "/postReservation",
			StatusCode: http.StatusOK,
			Body:       string(body),
			Err:        fmt.Errorf("decode response: %w", err),
		}
	}

	return &domain.ReservationResponse{
		Success:       resp.Success,
		ReservationID: string(resp.ReservationID),
		Status:        resp.Status,
		Message:       resp.Message,
	}, body, nil
}

func (c *Client) get(ctx context.Context, endpoint string, params url.Values, dst any) error {
	body, err := c.do(ctx, c.read, http.MethodGet, endpoint, params, nil)
	if err != nil {
		return err
	}

	err = json.Unmarshal(body, dst)
	if err != nil {
		return &domain.UpstreamError{
			Endpoint:   endpoint,
			StatusCode: http.StatusOK,
			Body:       string(body),
			Err:        fmt.Errorf("decode response: %w", err),
		}
	}

	return nil
}

func (c *Client) post(ctx context.Context, endpoint string, form url.Values) ([]byte, error) {
	return c.do(ctx, c.write, http.MethodPost, endpoint, nil, strings.NewReader(form.Encode()))
}

func (c *Client) do(
	ctx context.Context,
	httpClient *http.Client,
	method, endpoint string,
	params url.Values,
	body io.Reader) ([]byte, error) {

	if c.apiKey == "" {
		return nil, domain.ErrMissingAPIKey
	}

	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + endpoint
	if params != nil {
		u.RawQuery = params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, err
	}

	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	start := time.Now()

	res, err := httpClient.Do(req)
	if err != nil {
		c.logger.Warn("inventory request failed", "endpoint", endpoint, "method", method, "error", err)
		return nil, &domain.UpstreamError{Endpoint: endpoint, Err: err}
	}
	defer res.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(res.Body, maxResponseBytes))
	if err != nil {
		return nil, &domain.UpstreamError{Endpoint: endpoint, StatusCode: res.StatusCode, Err: err}
	}

	c.logger.Debug("inventory request",
		"endpoint", endpoint,
		"method", method,
		"status", res.StatusCode,
		"duration", time.Since(start))

	if res.StatusCode < 200 || res.StatusCode > 299 {
		c.logger.Warn("inventory returned non-2xx status",
			"endpoint", endpoint,
			"status", res.StatusCode,
			"body", string(respBody))

		return respBody, &domain.UpstreamError{
			Endpoint:   endpoint,
			StatusCode: res.StatusCode,
			Body:       string(respBody),
		}
	}

	return respBody, nil
}

func toAvailabilityResult(properties []availabilityProperty) *domain.AvailabilityResult {
	result := &domain.AvailabilityResult{}
	if len(properties) == 0 {
		return result
	}

	result.CurrencyCode = properties[0].PropertyCurrency.CurrencyCode
	result.CurrencySymbol = properties[0].PropertyCurrency.CurrencySymbol

	for _, property := range properties {
		for _, room := range property.PropertyRooms {
			maxGuests := int(room.MaxGuests)
			if maxGuests == 0 {
				maxGuests = int(room.AdultsIncluded) + int(room.ChildrenIncluded)
			}

			result.Rooms = append(result.Rooms, domain.RoomTypeRate{
				RoomTypeID:     string(room.RoomTypeID),
				ShortCode:      room.RoomTypeNameShort,
				Name:           room.RoomTypeName,
				RoomsAvailable: int(room.RoomsAvailable),
				Rate:           room.RoomRate,
				RatePlanName:   room.RatePlanNamePublic,
				MaxGuests:      maxGuests,
			})
		}
	}

	return result
}
