package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/form/v4"
	"github.com/metinatakli/room-booking-bridge/api"
	"github.com/shopspring/decimal"
)

const maxFormBytes = 1_048_576

func (app *Application) writeJSON(w http.ResponseWriter, status int, data any, headers http.Header) error {
	js, err := json.Marshal(data)
	if err != nil {
		return err
	}

	js = append(js, '\n')

	maps.Copy(w.Header(), headers)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(js)

	return nil
}

// writeSuccess wraps data in the success envelope.
func (app *Application) writeSuccess(w http.ResponseWriter, r *http.Request, status int, data any) {
	err := app.writeJSON(w, status, api.Envelope{Success: true, Data: data}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

var formDecoder = newFormDecoder()

// conversionError is the reason a single form value could not be decoded.
type conversionError string

func (e conversionError) Error() string {
	return string(e)
}

const (
	errNotInteger conversionError = "must be an integer"
	errNotDate    conversionError = "must be a date in YYYY-MM-DD format"
	errNotDecimal conversionError = "must be a decimal number"
)

func newFormDecoder() *form.Decoder {
	decoder := form.NewDecoder()

	decoder.RegisterCustomTypeFunc(func(vals []string) (any, error) {
		n, err := strconv.Atoi(vals[0])
		if err != nil {
			return nil, errNotInteger
		}
		return n, nil
	}, 0)

	decoder.RegisterCustomTypeFunc(func(vals []string) (any, error) {
		t, err := time.Parse(time.DateOnly, vals[0])
		if err != nil {
			return nil, errNotDate
		}
		return t, nil
	}, time.Time{})

	decoder.RegisterCustomTypeFunc(func(vals []string) (any, error) {
		d, err := decimal.NewFromString(vals[0])
		if err != nil {
			return nil, errNotDecimal
		}
		return d, nil
	}, decimal.Decimal{})

	return decoder
}

// decodeForm decodes a url-encoded body into dst. Fields missing from the
// body keep whatever dst already holds, so callers set defaults first.
func (app *Application) decodeForm(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)

	err := r.ParseForm()
	if err != nil {
		var maxBytesError *http.MaxBytesError

		switch {
		case errors.As(err, &maxBytesError):
			return fmt.Errorf("body must not be larger than %d bytes", maxBytesError.Limit)
		default:
			return fmt.Errorf("body must be a valid url-encoded form")
		}
	}

	err = formDecoder.Decode(dst, normalizeForm(r.PostForm))
	if err != nil {
		var decodeErrors form.DecodeErrors

		if !errors.As(err, &decodeErrors) {
			return err
		}

		fields := slices.Sorted(maps.Keys(decodeErrors))
		errs := make([]error, len(fields))
		for i, field := range fields {
			errs[i] = fmt.Errorf("%s %w", field, decodeErrors[field])
		}

		return errors.Join(errs...)
	}

	return nil
}

// normalizeForm trims every value, drops blank ones and folds "key[]" into
// "key" after any plain "key" values.
func normalizeForm(values url.Values) url.Values {
	out := make(url.Values, len(values))

	keys := slices.Sorted(maps.Keys(values))
	for _, key := range keys {
		name := strings.TrimSuffix(key, "[]")
		if name != key && values.Has(name) {
			continue
		}

		for _, k := range []string{name, name + "[]"} {
			for _, v := range values[k] {
				if v = strings.TrimSpace(v); v != "" {
					out[name] = append(out[name], v)
				}
			}
		}
	}

	return out
}

func (app *Application) bookingURL(roomTypeID string, checkin, checkout time.Time, adults, kids int) string {
	query := url.Values{}
	query.Set("checkin", checkin.Format(time.DateOnly))
	query.Set("checkout", checkout.Format(time.DateOnly))
	query.Set("adults", strconv.Itoa(adults))
	query.Set("kids", strconv.Itoa(kids))
	query.Set("room_type", roomTypeID)
	query.Set("currency", app.config.BookingEngine.Currency)

	return fmt.Sprintf("%s/%s/?%s",
		strings.TrimRight(app.config.BookingEngine.URL, "/"),
		url.PathEscape(app.config.BookingEngine.Code),
		query.Encode())
}
