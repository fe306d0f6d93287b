package app

import (
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/metinatakli/room-booking-bridge/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeForm(t *testing.T) {
	app := newTestApplication()

	values := url.Values{
		"room_codes[]":                {"RM7", " RM9 ", " "},
		"room_codes":                  {"RM8"},
		"adults":                      {"3"},
		"checkin":                     {"2025-07-01"},
		"checkout":                    {""},
		"total_price":                 {"249.99"},
		"price_per_room[RM7]":         {"120.50"},
		"price_per_room[]":            {"1"},
		"plan_label_per_room[RM9]":    {" Member Rate "},
		"plan_label_per_room_ignored": {"x"},
	}

	w, r := executeFormRequest(t, http.MethodPost, "/booking", values)

	input := api.SetBookingRequest{Adults: 2, Children: 1}
	err := app.decodeForm(w, r, &input)
	require.NoError(t, err)

	assert.Equal(t, []string{"RM8", "RM7", "RM9"}, input.RoomCodes)
	assert.Equal(t, 3, input.Adults)
	assert.Equal(t, 1, input.Children, "a missing field keeps its default")
	assert.Equal(t, "2025-07-01", input.Checkin.Format("2006-01-02"))
	assert.True(t, input.Checkout.IsZero())
	assert.True(t, price("249.99").Equal(input.TotalPrice))

	require.Len(t, input.PricePerRoom, 1)
	assert.True(t, price("120.5").Equal(input.PricePerRoom["RM7"]))

	if diff := cmp.Diff(map[string]string{"RM9": "Member Rate"}, input.PlanLabelPerRoom); diff != "" {
		t.Errorf("PlanLabelPerRoom mismatch (-want +got):\n%s", diff)
	}
	assert.Nil(t, input.PlanPerRoom)
}

func TestDecodeFormCollectsConversionErrors(t *testing.T) {
	app := newTestApplication()

	w, r := executeFormRequest(t, http.MethodPost, "/booking", url.Values{
		"adults":              {"two"},
		"checkin":             {"01/07/2025"},
		"price_per_room[RM7]": {"cheap"},
		"room_codes":          {"RM7"},
	})

	input := api.SetBookingRequest{Adults: 2}
	err := app.decodeForm(w, r, &input)
	require.Error(t, err)

	assert.Equal(t, strings.Join([]string{
		"adults must be an integer",
		"checkin must be a date in YYYY-MM-DD format",
		"price_per_room[RM7] must be a decimal number",
	}, "\n"), err.Error())
	assert.ErrorIs(t, err, errNotDate)

	assert.Equal(t, 2, input.Adults)
	assert.True(t, input.Checkin.IsZero())
	assert.Equal(t, []string{"RM7"}, input.RoomCodes)
}

func TestDecodeFormRejectsOversizedBody(t *testing.T) {
	app := newTestApplication()

	w, r := executeFormRequest(t, http.MethodPost, "/booking", url.Values{
		"notes": {strings.Repeat("a", maxFormBytes+1)},
	})

	var input api.RemoveCartItemRequest
	err := app.decodeForm(w, r, &input)
	require.Error(t, err)
	assert.Equal(t, "body must not be larger than 1048576 bytes", err.Error())
}

func TestNormalizeForm(t *testing.T) {
	got := normalizeForm(url.Values{
		"codes[]": {"B", "  "},
		"codes":   {" A "},
		"solo[]":  {"x"},
		"blank":   {"", " "},
		"name":    {" Ada "},
	})

	want := url.Values{
		"codes": {"A", "B"},
		"solo":  {"x"},
		"name":  {"Ada"},
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("normalizeForm() mismatch (-want +got):\n%s", diff)
	}
}

func TestBookingURL(t *testing.T) {
	app := newTestApplication()
	app.config.BookingEngine.URL = "https://hotels.example.com/reservation/"

	got := app.bookingURL("101", date("2025-07-01"), date("2025-07-04"), 2, 0)

	assert.Equal(t,
		"https://hotels.example.com/reservation/abc123/?adults=2&checkin=2025-07-01&checkout=2025-07-04&currency=gbp&kids=0&room_type=101",
		got)
}
