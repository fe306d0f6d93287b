package integration_test

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/metinatakli/room-booking-bridge/api"
	"github.com/metinatakli/room-booking-bridge/internal/domain"
	"github.com/metinatakli/room-booking-bridge/internal/payment"
	"github.com/metinatakli/room-booking-bridge/internal/selection"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"github.com/stripe/stripe-go/v82/webhook"
)

type BookingTestSuite struct {
	BaseSuite
}

func TestBookingSuite(t *testing.T) {
	if testing.Short() {
		t.Skip()
	}

	suite.Run(t, new(BookingTestSuite))
}

var (
	testCheckin  = time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	testCheckout = time.Date(2025, 7, 3, 0, 0, 0, 0, time.UTC)
)

func stayForm() url.Values {
	return url.Values{
		"checkin":  {testCheckin.Format(time.DateOnly)},
		"checkout": {testCheckout.Format(time.DateOnly)},
	}
}

func billingForm(paymentMethod string) url.Values {
	return url.Values{
		"first_name":     {"Ada"},
		"last_name":      {"Lovelace"},
		"email":          {"ada@example.com"},
		"country":        {"GB"},
		"payment_method": {paymentMethod},
	}
}

// searchDisplay renders search results the way the room list shows them,
// with one rate plan radio checked per room.
type searchDisplay struct {
	rooms   map[string]api.Room
	checked map[string]domain.RatePlanTag
}

func newSearchDisplay(resp api.SearchRoomsResponse, checked map[string]domain.RatePlanTag) *searchDisplay {
	rooms := make(map[string]api.Room, len(resp.Rooms))
	for _, room := range resp.Rooms {
		rooms[room.ShortCode] = room
	}

	return &searchDisplay{rooms: rooms, checked: checked}
}

func (d *searchDisplay) CheckedPlan(code string) (domain.RatePlanTag, bool) {
	plan, ok := d.checked[code]
	return plan, ok
}

func (d *searchDisplay) rate(code string, plan domain.RatePlanTag) *api.Rate {
	room, ok := d.rooms[code]
	if !ok {
		return nil
	}

	if plan == domain.PlanDiscounted {
		return room.Discounted
	}

	return room.Standard
}

func (d *searchDisplay) Price(code string, plan domain.RatePlanTag) (decimal.Decimal, bool) {
	rate := d.rate(code, plan)
	if rate == nil {
		return decimal.Zero, false
	}

	return rate.Price, true
}

func (d *searchDisplay) PlanLabel(code string, plan domain.RatePlanTag) string {
	if rate := d.rate(code, plan); rate != nil {
		return rate.Label
	}

	return domain.DefaultPlanLabel(plan)
}

func (s *BookingTestSuite) TestSearchRooms() {
	scenarios := []Scenario{
		{
			Name:           "returns 422 when checkout is missing",
			Method:         http.MethodPost,
			URL:            "/rooms/search",
			Form:           url.Values{"checkin": {"2025-07-01"}},
			ExpectedStatus: http.StatusUnprocessableEntity,
			ExpectedResponse: `{
				"success": false,
				"data": {
					"message": "One or more fields are invalid",
					"validationErrors": [
						{"field": "checkout", "issue": "is required"}
					]
				}
			}`,
		},
		{
			Name:           "returns room types with standard and discounted rates",
			Method:         http.MethodPost,
			URL:            "/rooms/search",
			Form:           stayForm(),
			ExpectedStatus: http.StatusOK,
			ExpectedResponse: `{
				"success": true,
				"data": {
					"rooms": [
						{
							"roomTypeId": "116008102105282",
							"shortCode": "RM7",
							"displayName": "Deluxe Double",
							"maxGuests": 2,
							"roomsAvailable": 3,
							"standard": {"price": "120", "label": "Standard Rate"},
							"discounted": {"price": "99", "label": "Member Rate"}
						},
						{
							"roomTypeId": "116025401716958",
							"shortCode": "RM9",
							"displayName": "Garden Suite",
							"maxGuests": 4,
							"roomsAvailable": 1,
							"standard": {"price": "180", "label": "Standard Rate"}
						}
					],
					"currencyCode": "GBP",
					"currencySymbol": "£"
				}
			}`,
		},
	}

	for _, scenario := range scenarios {
		scenario.Run(s.T(), s.app)
	}
}

func (s *BookingTestSuite) TestRoomPricingWithoutFees() {
	form := stayForm()
	form.Set("room_type_id", "116008102105282")

	res := s.newBrowser().do(http.MethodPost, "/rooms/pricing", form, nil)
	s.Require().Equal(http.StatusOK, res.StatusCode)

	pricing := decodeData[api.PricingResponse](s.T(), res)
	s.True(decimal.NewFromInt(120).Equal(pricing.BaseRate))
	s.True(pricing.Total.Equal(pricing.BaseRate))
	s.Empty(pricing.Taxes)
	s.Equal("GBP", pricing.Currency)
}

func (s *BookingTestSuite) TestMonthPricesAreCached() {
	form := url.Values{"year": {"2025"}, "month": {"2"}}
	browser := s.newBrowser()

	res := browser.do(http.MethodPost, "/rooms/month-prices", form, nil)
	s.Require().Equal(http.StatusOK, res.StatusCode)

	month := decodeData[api.MonthPricesResponse](s.T(), res)
	s.Require().Len(month.Days, 28)
	for _, day := range month.Days {
		s.True(day.Available)
		s.Require().NotNil(day.LowestPrice)
		s.True(decimal.NewFromInt(99).Equal(*day.LowestPrice))
	}
	s.Equal(28, s.inventory.Calls("/getAvailableRoomTypes"))

	cached, err := s.app.RedisClient.Exists(context.Background(), "month_prices:4242:2025:02:all").Result()
	s.Require().NoError(err)
	s.Equal(int64(1), cached)

	res = browser.do(http.MethodPost, "/rooms/month-prices", form, nil)
	s.Require().Equal(http.StatusOK, res.StatusCode)
	res.Body.Close()

	s.Equal(28, s.inventory.Calls("/getAvailableRoomTypes"))
}

// bookSelection searches, picks RM7 on the discounted plan and RM9 on the
// standard plan, then starts checkout.
func (s *BookingTestSuite) bookSelection(b *browser) {
	res := b.do(http.MethodPost, "/rooms/search", stayForm(), nil)
	s.Require().Equal(http.StatusOK, res.StatusCode)

	display := newSearchDisplay(decodeData[api.SearchRoomsResponse](s.T(), res), map[string]domain.RatePlanTag{
		"RM7": domain.PlanDiscounted,
		"RM9": domain.PlanStandard,
	})

	state := selection.NewState(&selection.MemoryStorage{})
	key := selection.Key{Checkin: testCheckin, Checkout: testCheckout}

	s.Require().NoError(state.ToggleRoom(key, "RM7", display))
	s.Require().NoError(state.ToggleRoom(key, "RM9", display))

	booking, err := state.Checkout(key, 2, 0, display)
	s.Require().NoError(err)
	s.True(decimal.NewFromInt(279).Equal(booking.TotalPrice))

	res = b.do(http.MethodPost, "/booking", booking.Form(), nil)
	s.Require().Equal(http.StatusOK, res.StatusCode)
	s.Equal("/checkout", decodeData[api.SetBookingResponse](s.T(), res).CheckoutUrl)
}

func (s *BookingTestSuite) adminHeaders() map[string]string {
	return map[string]string{"Authorization": "Bearer " + testAdminToken}
}

func (s *BookingTestSuite) TestCashOnDeliveryCreatesReservation() {
	ctx := context.Background()
	b := s.newBrowser()

	s.bookSelection(b)

	res := b.do(http.MethodGet, "/checkout", nil, nil)
	s.Require().Equal(http.StatusOK, res.StatusCode)

	cart := decodeData[api.CartResponse](s.T(), res)
	s.Require().Len(cart.Items, 2)
	s.True(decimal.NewFromInt(279).Equal(cart.Total))
	s.Equal("RM7", cart.Items[0].RoomCode)
	s.Equal("Deluxe Double", cart.Items[0].DisplayName)
	s.Equal("Member Rate", cart.Items[0].RatePlanLabel)
	s.True(decimal.NewFromInt(99).Equal(cart.Items[0].Price))
	s.Equal("RM9", cart.Items[1].RoomCode)
	s.True(decimal.NewFromInt(180).Equal(cart.Items[1].Price))

	res = b.do(http.MethodPost, "/checkout", billingForm(domain.PaymentMethodCashOnDelivery), nil)
	s.Require().Equal(http.StatusCreated, res.StatusCode)

	placed := decodeData[api.PlaceOrderResponse](s.T(), res)
	s.Equal("completed", placed.Status)
	s.Require().NotNil(placed.ReservationId)
	s.Equal("987654", *placed.ReservationId)

	order, err := s.app.Orders.GetByID(ctx, placed.OrderId)
	s.Require().NoError(err)
	s.Equal(domain.OrderStatusCompleted, order.Status)
	s.Equal("987654", order.ReservationID)
	s.Equal("confirmed", order.ReservationStatus)
	s.Require().Len(order.Items, 2)
	s.Require().NotNil(order.LegacyBooking)
	s.Equal([]string{"RM7", "RM9"}, order.LegacyBooking.RoomCodes)
	s.Require().NotEmpty(order.Notes)
	s.Equal("Reservation ID: 987654", order.Notes[len(order.Notes)-1].Note)

	reservations := s.inventory.Reservations()
	s.Require().Len(reservations, 1)
	sent := reservations[0]
	s.Equal(fmt.Sprintf("WC-%d", placed.OrderId), sent.Get("thirdPartyIdentifier"))
	s.Equal("2025-07-01", sent.Get("startDate"))
	s.Equal("2025-07-03", sent.Get("endDate"))
	s.Equal("ada@example.com", sent.Get("guestEmail"))
	s.Equal("116008102105282", sent.Get("rooms[0][roomTypeID]"))
	s.Equal("116025401716958", sent.Get("rooms[1][roomTypeID]"))
	s.Equal("2", sent.Get("adults[0][quantity]"))

	res = b.do(http.MethodGet, "/checkout", nil, nil)
	s.Require().Equal(http.StatusOK, res.StatusCode)
	s.Empty(decodeData[api.CartResponse](s.T(), res).Items)

	orderPath := fmt.Sprintf("/admin/orders/%d", placed.OrderId)

	res = b.do(http.MethodGet, orderPath, nil, s.adminHeaders())
	s.Require().Equal(http.StatusOK, res.StatusCode)

	stored := decodeData[api.OrderResponse](s.T(), res)
	s.Require().NotNil(stored.ReservationId)
	s.Equal("987654", *stored.ReservationId)

	res = b.do(http.MethodPost, orderPath+"/reservation", nil, s.adminHeaders())
	s.Require().Equal(http.StatusOK, res.StatusCode)
	s.Equal("987654", decodeData[api.SynthesisResponse](s.T(), res).ReservationId)

	s.Len(s.inventory.Reservations(), 1)
}

func (s *BookingTestSuite) sendWebhook(b *browser, eventType, checkoutSessionID string) *http.Response {
	paymentStatus := "unpaid"
	if eventType == "checkout.session.completed" {
		paymentStatus = "paid"
	}

	payload := []byte(fmt.Sprintf(`{
		"id": "evt_integration",
		"object": "event",
		"type": %q,
		"data": {"object": {"id": %q, "object": "checkout.session", "payment_status": %q}}
	}`, eventType, checkoutSessionID, paymentStatus))

	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload: payload,
		Secret:  testWebhookSecret,
	})

	req, err := http.NewRequest(http.MethodPost, b.server.URL+"/webhook", bytes.NewReader(signed.Payload))
	s.Require().NoError(err)

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Stripe-Signature", signed.Header)

	res, err := b.server.Client().Do(req)
	s.Require().NoError(err)

	return res
}

func (s *BookingTestSuite) TestPaidCheckoutCreatesReservationOnWebhook() {
	ctx := context.Background()
	b := s.newBrowser()

	s.bookSelection(b)

	res := b.do(http.MethodGet, "/checkout", nil, nil)
	s.Require().Equal(http.StatusOK, res.StatusCode)
	res.Body.Close()

	res = b.do(http.MethodPost, "/checkout", billingForm("stripe"), nil)
	s.Require().Equal(http.StatusCreated, res.StatusCode)

	placed := decodeData[api.PlaceOrderResponse](s.T(), res)
	s.Equal("pending", placed.Status)
	s.Require().NotNil(placed.RedirectUrl)
	s.Equal(fmt.Sprintf("%s?order_id=%d", testSuccessURL, placed.OrderId), *placed.RedirectUrl)
	s.Nil(placed.ReservationId)
	s.Empty(s.inventory.Reservations())

	checkoutSessionID := payment.SandboxSessionID(placed.OrderId)

	res = s.sendWebhook(b, "checkout.session.completed", checkoutSessionID)
	s.Equal(http.StatusOK, res.StatusCode)
	res.Body.Close()

	order, err := s.app.Orders.GetByID(ctx, placed.OrderId)
	s.Require().NoError(err)
	s.Equal(domain.OrderStatusProcessing, order.Status)
	s.Equal("987654", order.ReservationID)
	s.Len(s.inventory.Reservations(), 1)

	// a redelivered event must not book the rooms twice
	res = s.sendWebhook(b, "checkout.session.completed", checkoutSessionID)
	s.Equal(http.StatusOK, res.StatusCode)
	res.Body.Close()

	s.Len(s.inventory.Reservations(), 1)
}

func (s *BookingTestSuite) TestExpiredCheckoutCancelsOrder() {
	ctx := context.Background()
	b := s.newBrowser()

	s.bookSelection(b)

	res := b.do(http.MethodGet, "/checkout", nil, nil)
	s.Require().Equal(http.StatusOK, res.StatusCode)
	res.Body.Close()

	res = b.do(http.MethodPost, "/checkout", billingForm("stripe"), nil)
	s.Require().Equal(http.StatusCreated, res.StatusCode)

	placed := decodeData[api.PlaceOrderResponse](s.T(), res)

	res = s.sendWebhook(b, "checkout.session.expired", payment.SandboxSessionID(placed.OrderId))
	s.Equal(http.StatusOK, res.StatusCode)
	res.Body.Close()

	order, err := s.app.Orders.GetByID(ctx, placed.OrderId)
	s.Require().NoError(err)
	s.Equal(domain.OrderStatusCancelled, order.Status)
	s.Empty(order.ReservationID)
	s.Empty(s.inventory.Reservations())
}

func (s *BookingTestSuite) TestGuardBlocksUnavailableRoom() {
	b := s.newBrowser()

	booking := stayForm()
	booking.Add("room_codes", "RM7")
	booking.Add("room_codes", "RM8")
	booking.Set("total_price", "200.00")
	booking.Set("price_per_room[RM7]", "120.00")
	booking.Set("price_per_room[RM8]", "80.00")

	res := b.do(http.MethodPost, "/booking", booking, nil)
	s.Require().Equal(http.StatusOK, res.StatusCode)
	res.Body.Close()

	res = b.do(http.MethodGet, "/checkout", nil, nil)
	s.Require().Equal(http.StatusOK, res.StatusCode)
	res.Body.Close()

	res = b.do(http.MethodPost, "/checkout", billingForm(domain.PaymentMethodCashOnDelivery), nil)
	s.Equal(http.StatusConflict, res.StatusCode)
	compareResponse(s.T(), res.Body, `{
		"success": false,
		"data": {
			"message": "One or more rooms are no longer available for your dates",
			"conflicts": [
				{
					"kind": "room_no_longer_available",
					"roomCode": "RM8",
					"checkin": "2025-07-01",
					"checkout": "2025-07-03",
					"message": "The selected room (RM8) is no longer available for your dates. Please update your booking."
				}
			]
		}
	}`)
	res.Body.Close()

	var orders int
	err := s.app.DB.QueryRow(context.Background(), "SELECT count(*) FROM orders").Scan(&orders)
	s.Require().NoError(err)
	s.Zero(orders)
}
