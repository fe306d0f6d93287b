package app

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/metinatakli/room-booking-bridge/api"
	"github.com/metinatakli/room-booking-bridge/internal/domain"
	appvalidator "github.com/metinatakli/room-booking-bridge/internal/validator"
)

const (
	ErrInternalServer      = "The server encountered a problem and could not process your request"
	ErrNotFound            = "The requested resource not found"
	ErrMethodNotAllowed    = "The %s method is not supported for this resource"
	ErrUnauthorized        = "You must be authenticated to access this resource"
	ErrFailedValidation    = "One or more fields are invalid"
	ErrUpstreamUnavailable = "The room inventory service is unavailable, please try again later"
	ErrSessionExpired      = "Your session is no longer available, please reload the page and try again"
	ErrRoomsUnavailable    = "One or more rooms are no longer available for your dates"
)

func (app *Application) logError(r *http.Request, err error) {
	app.contextGetLogger(r).Error(err.Error())
}

// The errorResponse() method is a generic helper for sending JSON-formatted error
// messages to the client with a given status code.
func (app *Application) errorResponse(w http.ResponseWriter, r *http.Request, status int, message string) {
	resp := api.ErrorResponse{
		Message:   message,
		RequestId: middleware.GetReqID(r.Context()),
		Timestamp: time.Now(),
	}

	err := app.writeJSON(w, status, api.Envelope{Success: false, Data: resp}, nil)
	if err != nil {
		app.logError(r, err)
		w.WriteHeader(500)
	}
}

func (app *Application) serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logError(r, err)

	app.errorResponse(w, r, http.StatusInternalServerError, ErrInternalServer)
}

func (app *Application) notFoundResponse(w http.ResponseWriter, r *http.Request) {
	app.errorResponse(w, r, http.StatusNotFound, ErrNotFound)
}

func (app *Application) notFoundResponseWithErr(w http.ResponseWriter, r *http.Request, err error) {
	app.errorResponse(w, r, http.StatusNotFound, err.Error())
}

func (app *Application) methodNotAllowedResponse(w http.ResponseWriter, r *http.Request) {
	app.errorResponse(w, r, http.StatusMethodNotAllowed, fmt.Sprintf(ErrMethodNotAllowed, r.Method))
}

func (app *Application) badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.errorResponse(w, r, http.StatusBadRequest, err.Error())
}

func (app *Application) editConflictResponseWithErr(w http.ResponseWriter, r *http.Request, err error) {
	app.errorResponse(w, r, http.StatusConflict, err.Error())
}

func (app *Application) unauthorizedAccessResponse(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	app.errorResponse(w, r, http.StatusUnauthorized, ErrUnauthorized)
}

func (app *Application) upstreamUnavailableResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.contextGetLogger(r).Warn("inventory call failed", "error", err)

	app.errorResponse(w, r, http.StatusBadGateway, ErrUpstreamUnavailable)
}

func (app *Application) sessionUnavailableResponse(w http.ResponseWriter, r *http.Request) {
	app.errorResponse(w, r, http.StatusServiceUnavailable, ErrSessionExpired)
}

// inventoryErrorResponse maps inventory client failures. A missing API key is
// a deployment problem, so it is hidden behind a server error.
func (app *Application) inventoryErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrMissingAPIKey):
		app.serverErrorResponse(w, r, err)
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		app.upstreamUnavailableResponse(w, r, err)
	default:
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) availabilityConflictResponse(
	w http.ResponseWriter,
	r *http.Request,
	guardErrors []domain.GuardError) {

	conflicts := make([]api.RoomConflict, len(guardErrors))
	for i, e := range guardErrors {
		conflicts[i] = api.RoomConflict{
			Kind:     string(e.Kind),
			RoomCode: e.RoomCode,
			Checkin:  e.Checkin,
			Checkout: e.Checkout,
			Message:  e.Message,
		}
	}

	resp := api.AvailabilityConflictResponse{
		Message:   ErrRoomsUnavailable,
		RequestId: middleware.GetReqID(r.Context()),
		Timestamp: time.Now(),
		Conflicts: conflicts,
	}

	err := app.writeJSON(w, http.StatusConflict, api.Envelope{Success: false, Data: resp}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) failedValidationResponse(w http.ResponseWriter, r *http.Request, err error) {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		app.badRequestResponse(w, r, err)
		return
	}

	resp := api.ValidationErrorResponse{
		Message:          ErrFailedValidation,
		RequestId:        middleware.GetReqID(r.Context()),
		Timestamp:        time.Now(),
		ValidationErrors: make([]api.ValidationError, len(validationErrors)),
	}

	for i, fieldErr := range validationErrors {
		resp.ValidationErrors[i] = api.ValidationError{
			Field: appvalidator.FieldName(fieldErr.Field()),
			Issue: appvalidator.ValidationMessage(fieldErr),
		}
	}

	err = app.writeJSON(w, http.StatusUnprocessableEntity, api.Envelope{Success: false, Data: resp}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
