package mailer

import (
	"sync"
)

// Message is one alert handed to the mailer.
type Message struct {
	Recipient string
	Template  string
	Data      any
}

// RecordingMailer keeps every message in memory instead of delivering it.
type RecordingMailer struct {
	mu   sync.Mutex
	sent []Message
	err  error
}

func NewRecordingMailer() *RecordingMailer {
	return &RecordingMailer{}
}

// FailWith makes subsequent sends return err without recording anything.
func (m *RecordingMailer) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.err = err
}

func (m *RecordingMailer) Send(recipient, templateFile string, data any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return m.err
	}

	m.sent = append(m.sent, Message{
		Recipient: recipient,
		Template:  templateFile,
		Data:      data,
	})

	return nil
}

func (m *RecordingMailer) Sent() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]Message(nil), m.sent...)
}

// FailedReservations returns the payloads of reservation failure alerts.
func (m *RecordingMailer) FailedReservations() []ReservationFailedData {
	m.mu.Lock()
	defer m.mu.Unlock()

	var alerts []ReservationFailedData
	for _, msg := range m.sent {
		if data, ok := msg.Data.(ReservationFailedData); ok && msg.Template == ReservationFailedTemplate {
			alerts = append(alerts, data)
		}
	}

	return alerts
}

func (m *RecordingMailer) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sent = nil
	m.err = nil
}
