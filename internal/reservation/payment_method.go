package reservation

import "strings"

const defaultPaymentMethod = "credit"

var paymentMethods = map[string]string{
	"cod":               "cash",
	"cheque":            "cash",
	"paypal":            "pay_pal",
	"paypal_express":    "pay_pal",
	"paypal_plus":       "pay_pal",
	"stripe":            "credit",
	"stripe_apple_pay":  "credit",
	"stripe_google_pay": "credit",
	"square":            "credit",
	"mijireh_checkout":  "credit",
	"sage":              "credit",
	"worldpay":          "credit",
	"bank_transfer":     "ebanking",
	"bacs":              "ebanking",
}

// PaymentMethodTag maps a store payment method to the upstream tag.
func PaymentMethodTag(method string) string {
	if tag, ok := paymentMethods[strings.ToLower(strings.TrimSpace(method))]; ok {
		return tag
	}

	return defaultPaymentMethod
}
