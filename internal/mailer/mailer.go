package mailer

type Mailer interface {
	Send(recipient, templateFile string, data any) error
}

const ReservationFailedTemplate = "reservation_failed.tmpl"

type ReservationFailedData struct {
	OrderID   int64
	Reason    string
	RoomCodes []string
	Checkin   string
	Checkout  string
	Trigger   string
}
