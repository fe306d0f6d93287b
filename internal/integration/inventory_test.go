package integration_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
)

const testAPIKey = "test-api-key"

// fakeInventory serves canned property-management responses and records
// every reservation it receives.
type fakeInventory struct {
	server *httptest.Server

	mu           sync.Mutex
	calls        map[string]int
	reservations []url.Values
}

func newFakeInventory() *fakeInventory {
	f := &fakeInventory{calls: make(map[string]int)}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /getAvailableRoomTypes", f.availableRoomTypes)
	mux.HandleFunc("GET /getRoomTypes", f.roomTypes)
	mux.HandleFunc("POST /postReservation", f.postReservation)

	f.server = httptest.NewServer(f.authorize(mux))

	return f
}

func (f *fakeInventory) URL() string {
	return f.server.URL
}

func (f *fakeInventory) Close() {
	f.server.Close()
}

func (f *fakeInventory) Calls(endpoint string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.calls[endpoint]
}

func (f *fakeInventory) Reservations() []url.Values {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]url.Values(nil), f.reservations...)
}

func (f *fakeInventory) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = make(map[string]int)
	f.reservations = nil
}

func (f *fakeInventory) authorize(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-api-key") != testAPIKey {
			http.Error(w, `{"success":false,"message":"invalid api key"}`, http.StatusUnauthorized)
			return
		}

		f.mu.Lock()
		f.calls[r.URL.Path]++
		f.mu.Unlock()

		next.ServeHTTP(w, r)
	})
}

func (f *fakeInventory) availableRoomTypes(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"success":true,"data":[{"propertyID":4242,
		"propertyCurrency":{"currencyCode":"GBP","currencySymbol":"£"},
		"propertyRooms":[
			{"roomTypeID":"116008102105282","roomTypeName":"Deluxe Double","roomTypeNameShort":"RM7",
			 "roomsAvailable":3,"roomRate":"120.00","ratePlanNamePublic":"Default","maxGuests":2},
			{"roomTypeID":"116008102105282","roomTypeName":"Deluxe Double","roomTypeNameShort":"RM7",
			 "roomsAvailable":3,"roomRate":"99.00","ratePlanNamePublic":"Member Rate","maxGuests":2},
			{"roomTypeID":"116025401716958","roomTypeName":"Garden Suite","roomTypeNameShort":"RM9",
			 "roomsAvailable":1,"roomRate":"180.00","ratePlanNamePublic":"","maxGuests":4},
			{"roomTypeID":"116025179291849","roomTypeName":"Twin Room","roomTypeNameShort":"RM8",
			 "roomsAvailable":0,"roomRate":"80.00","ratePlanNamePublic":"Default","maxGuests":2}
		]}]}`))
}

func (f *fakeInventory) roomTypes(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"success":true,"data":[
		{"roomTypeID":116008102105282,"roomTypeName":"Deluxe Double","roomTypeNameShort":"RM7","maxGuests":2},
		{"roomTypeID":116025401716958,"roomTypeName":"Garden Suite","roomTypeNameShort":"RM9","maxGuests":4}
	]}`))
}

func (f *fakeInventory) postReservation(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, `{"success":false,"message":"bad form"}`, http.StatusBadRequest)
		return
	}

	f.mu.Lock()
	f.reservations = append(f.reservations, r.PostForm)
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"success":true,"reservationID":987654,"status":"confirmed"}`))
}
