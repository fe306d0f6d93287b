package domain

import "context"

// PaymentSession is a hosted payment page opened for one order. ID comes back
// on the payment webhook.
type PaymentSession struct {
	ID  string
	URL string
}

type PaymentProvider interface {
	StartPayment(ctx context.Context, visitorSession string, order *Order) (*PaymentSession, error)
}
