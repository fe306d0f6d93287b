package validator

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/metinatakli/room-booking-bridge/internal/domain"
)

var roomCodeRgx = regexp.MustCompile(`^[A-Za-z0-9_-]{1,32}$`)

func NewValidator() *validator.Validate {
	validator := validator.New(validator.WithRequiredStructEnabled())

	validator.RegisterValidation("room_code", validateRoomCode)
	validator.RegisterValidation("plan_tag", validatePlanTag)

	return validator
}

func validateRoomCode(fl validator.FieldLevel) bool {
	return roomCodeRgx.MatchString(fl.Field().String())
}

func validatePlanTag(fl validator.FieldLevel) bool {
	tag := domain.RatePlanTag(fl.Field().String())

	return tag == domain.PlanStandard || tag == domain.PlanDiscounted
}

// ValidationMessage converts validator errors into readable messages
func ValidationMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must contain at least %s item(s)", err.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", err.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", err.Param())
	case "lte":
		return fmt.Sprintf("must be less than or equal to %s", err.Param())
	case "gtfield":
		return fmt.Sprintf("must be after %s", FieldName(err.Param()))
	case "iso3166_1_alpha2":
		return "must be a two letter country code"
	case "room_code":
		return "must be a room code of letters, digits, dashes or underscores"
	case "plan_tag":
		return "must be either standard or discounted"
	default:
		return "is invalid"
	}
}

// FieldName turns a struct field like PricePerRoom[RM7] into the form name
// price_per_room[RM7].
func FieldName(field string) string {
	name, index, hasIndex := strings.Cut(field, "[")

	var b strings.Builder
	for i, c := range name {
		if unicode.IsUpper(c) {
			if i > 0 {
				b.WriteByte('_')
			}
			c = unicode.ToLower(c)
		}
		b.WriteRune(c)
	}

	if hasIndex {
		b.WriteByte('[')
		b.WriteString(index)
	}

	return b.String()
}
