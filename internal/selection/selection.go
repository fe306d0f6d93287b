// Package selection keeps the visitor's room and rate plan choices per
// searched date range. It never talks to the network; prices always come from
// what is currently displayed.
package selection

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"net/url"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/metinatakli/room-booking-bridge/internal/domain"
	"github.com/shopspring/decimal"
)

var (
	ErrPlanRequired  = errors.New("please choose a rate plan for this room first")
	ErrUnknownPlan   = errors.New("unknown rate plan")
	ErrNothingPicked = errors.New("please select at least one room")
	ErrNothingPriced = errors.New("none of the selected rooms has a price for these dates")
)

// Key scopes a selection to one search. Different dates never share state.
type Key struct {
	Checkin  time.Time
	Checkout time.Time
}

func (k Key) String() string {
	return domain.StayKey(k.Checkin, k.Checkout)
}

type Selection struct {
	SelectedRoomCodes []string                      `json:"selectedRoomCodes"`
	ChosenPlanByRoom  map[string]domain.RatePlanTag `json:"chosenPlanByRoom"`
}

// Display exposes what the page currently shows for a room.
type Display interface {
	// CheckedPlan is the rate plan radio currently checked for the room.
	CheckedPlan(code string) (domain.RatePlanTag, bool)
	// Price is the displayed price of the room for the plan.
	Price(code string, plan domain.RatePlanTag) (decimal.Decimal, bool)
	// PlanLabel is the displayed name of the plan for the room.
	PlanLabel(code string, plan domain.RatePlanTag) string
}

// Storage persists the serialized state, like browser local storage.
type Storage interface {
	Load() ([]byte, error)
	Save(data []byte) error
}

type State struct {
	mu         sync.Mutex
	storage    Storage
	selections map[string]*Selection
}

// NewState restores previously saved selections. Unreadable storage starts
// from an empty state.
func NewState(storage Storage) *State {
	s := &State{
		storage:    storage,
		selections: make(map[string]*Selection),
	}

	data, err := storage.Load()
	if err == nil && len(data) > 0 {
		_ = json.Unmarshal(data, &s.selections)
	}

	return s
}

// Get returns a copy of the selection for the key.
func (s *State) Get(key Key) Selection {
	s.mu.Lock()
	defer s.mu.Unlock()

	sel := s.selection(key)

	return Selection{
		SelectedRoomCodes: slices.Clone(sel.SelectedRoomCodes),
		ChosenPlanByRoom:  maps.Clone(sel.ChosenPlanByRoom),
	}
}

// ToggleRoom deselects a selected room, forgetting its plan. Selecting a room
// requires a checked rate plan radio.
func (s *State) ToggleRoom(key Key, code string, display Display) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sel := s.selection(key)

	if i := slices.Index(sel.SelectedRoomCodes, code); i >= 0 {
		sel.SelectedRoomCodes = slices.Delete(sel.SelectedRoomCodes, i, i+1)
		delete(sel.ChosenPlanByRoom, code)
		return s.persist()
	}

	plan, ok := display.CheckedPlan(code)
	if !ok {
		return ErrPlanRequired
	}

	sel.SelectedRoomCodes = append(sel.SelectedRoomCodes, code)
	sel.ChosenPlanByRoom[code] = plan

	return s.persist()
}

// ChoosePlan records the plan whether or not the room is selected.
func (s *State) ChoosePlan(key Key, code string, plan domain.RatePlanTag) error {
	if plan != domain.PlanStandard && plan != domain.PlanDiscounted {
		return fmt.Errorf("%w: %q", ErrUnknownPlan, plan)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.selection(key).ChosenPlanByRoom[code] = plan

	return s.persist()
}

// ComputeTotal sums the displayed price of the checked plan of every
// selected room.
func (s *State) ComputeTotal(key Key, display Display) decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := decimal.Zero
	for _, code := range s.selection(key).SelectedRoomCodes {
		if p, ok := displayedPrice(code, display); ok {
			total = total.Add(p)
		}
	}

	return total
}

// BookingRequest is what the page submits to start checkout.
type BookingRequest struct {
	RoomCodes        []string
	Checkin          time.Time
	Checkout         time.Time
	Adults           int
	Children         int
	TotalPrice       decimal.Decimal
	PricePerRoom     map[string]decimal.Decimal
	PlanPerRoom      map[string]domain.RatePlanTag
	PlanLabelPerRoom map[string]string
}

// Checkout builds the start-checkout request from the current selection.
// Rooms the page shows no price for are left out of the request.
func (s *State) Checkout(key Key, adults, children int, display Display) (*BookingRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sel := s.selection(key)
	if len(sel.SelectedRoomCodes) == 0 {
		return nil, ErrNothingPicked
	}

	req := &BookingRequest{
		RoomCodes:        make([]string, 0, len(sel.SelectedRoomCodes)),
		Checkin:          key.Checkin,
		Checkout:         key.Checkout,
		Adults:           adults,
		Children:         children,
		TotalPrice:       decimal.Zero,
		PricePerRoom:     make(map[string]decimal.Decimal),
		PlanPerRoom:      make(map[string]domain.RatePlanTag),
		PlanLabelPerRoom: make(map[string]string),
	}

	for _, code := range sel.SelectedRoomCodes {
		plan, ok := display.CheckedPlan(code)
		if !ok {
			return nil, fmt.Errorf("room %s: %w", code, ErrPlanRequired)
		}

		p, ok := display.Price(code, plan)
		if !ok {
			continue
		}

		req.RoomCodes = append(req.RoomCodes, code)
		req.PricePerRoom[code] = p
		req.PlanPerRoom[code] = plan
		req.PlanLabelPerRoom[code] = display.PlanLabel(code, plan)
		req.TotalPrice = req.TotalPrice.Add(p)
	}

	if len(req.RoomCodes) == 0 {
		return nil, ErrNothingPriced
	}

	return req, nil
}

// Form encodes the request the way the set-booking endpoint reads it.
func (r *BookingRequest) Form() url.Values {
	form := url.Values{}

	for _, code := range r.RoomCodes {
		form.Add("room_codes", code)
	}
	form.Set("checkin", r.Checkin.Format(time.DateOnly))
	form.Set("checkout", r.Checkout.Format(time.DateOnly))
	form.Set("adults", strconv.Itoa(r.Adults))
	form.Set("children", strconv.Itoa(r.Children))
	form.Set("total_price", r.TotalPrice.StringFixed(2))

	for code, price := range r.PricePerRoom {
		form.Set("price_per_room["+code+"]", price.StringFixed(2))
	}
	for code, plan := range r.PlanPerRoom {
		form.Set("plan_per_room["+code+"]", string(plan))
	}
	for code, label := range r.PlanLabelPerRoom {
		form.Set("plan_label_per_room["+code+"]", label)
	}

	return form
}

func displayedPrice(code string, display Display) (decimal.Decimal, bool) {
	plan, ok := display.CheckedPlan(code)
	if !ok {
		return decimal.Zero, false
	}

	return display.Price(code, plan)
}

func (s *State) selection(key Key) *Selection {
	k := key.String()

	sel, ok := s.selections[k]
	if !ok {
		sel = &Selection{}
		s.selections[k] = sel
	}
	if sel.ChosenPlanByRoom == nil {
		sel.ChosenPlanByRoom = make(map[string]domain.RatePlanTag)
	}

	return sel
}

func (s *State) persist() error {
	data, err := json.Marshal(s.selections)
	if err != nil {
		return err
	}

	return s.storage.Save(data)
}

// MemoryStorage keeps the serialized state in memory.
type MemoryStorage struct {
	mu   sync.Mutex
	data []byte
}

func (m *MemoryStorage) Load() ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return slices.Clone(m.data), nil
}

func (m *MemoryStorage) Save(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data = slices.Clone(data)
	return nil
}
