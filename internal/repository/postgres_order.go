package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/metinatakli/room-booking-bridge/internal/domain"
)

type PostgresOrderRepository struct {
	db DBTX
}

func NewPostgresOrderRepository(db DBTX) *PostgresOrderRepository {
	return &PostgresOrderRepository{
		db: db,
	}
}

// Create stores the order with its line items in one transaction.
func (p *PostgresOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	legacy, err := marshalNullable(order.LegacyBooking)
	if err != nil {
		return err
	}

	return runInTx(ctx, p.db, func(tx pgx.Tx) error {
		query := `
			INSERT INTO orders (
				status,
				payment_method,
				currency,
				total,
				billing_first_name,
				billing_last_name,
				billing_email,
				billing_country,
				billing_phone,
				legacy_booking
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			RETURNING id, created_at, updated_at
		`

		err := tx.QueryRow(
			ctx,
			query,
			order.Status,
			order.PaymentMethod,
			order.Currency,
			order.Total,
			order.Billing.FirstName,
			order.Billing.LastName,
			order.Billing.Email,
			order.Billing.Country,
			order.Billing.Phone,
			legacy,
		).Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt)
		if err != nil {
			return err
		}

		if len(order.Items) == 0 {
			return nil
		}

		rows := make([][]any, 0, len(order.Items))
		for _, item := range order.Items {
			booking, err := marshalNullable(item.Booking)
			if err != nil {
				return err
			}

			rows = append(rows, []any{
				order.ID,
				item.Key,
				item.ProductID,
				item.Quantity,
				item.Price,
				item.RoomIndex,
				booking,
			})
		}

		_, err = tx.CopyFrom(
			ctx,
			pgx.Identifier{"order_line_items"},
			[]string{"order_id", "item_key", "product_id", "quantity", "price", "room_index", "booking"},
			pgx.CopyFromRows(rows),
		)

		return err
	})
}

const selectOrder = `
	SELECT
		id,
		status,
		payment_method,
		currency,
		total,
		billing_first_name,
		billing_last_name,
		billing_email,
		billing_country,
		billing_phone,
		COALESCE(legacy_booking::text, ''),
		COALESCE(checkout_session_id, ''),
		COALESCE(reservation_id, ''),
		COALESCE(reservation_status, ''),
		COALESCE(reservation_response, ''),
		created_at,
		updated_at
	FROM orders
`

func (p *PostgresOrderRepository) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	return p.get(ctx, selectOrder+`WHERE id = $1`, id)
}

func (p *PostgresOrderRepository) GetByCheckoutSessionID(
	ctx context.Context,
	checkoutSessionID string) (*domain.Order, error) {

	return p.get(ctx, selectOrder+`WHERE checkout_session_id = $1`, checkoutSessionID)
}

func (p *PostgresOrderRepository) get(ctx context.Context, query string, arg any) (*domain.Order, error) {
	var (
		order    domain.Order
		legacy   string
		response string
	)

	err := p.db.QueryRow(ctx, query, arg).Scan(
		&order.ID,
		&order.Status,
		&order.PaymentMethod,
		&order.Currency,
		&order.Total,
		&order.Billing.FirstName,
		&order.Billing.LastName,
		&order.Billing.Email,
		&order.Billing.Country,
		&order.Billing.Phone,
		&legacy,
		&order.CheckoutSessionID,
		&order.ReservationID,
		&order.ReservationStatus,
		&response,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}
		return nil, err
	}

	if legacy != "" {
		order.LegacyBooking = new(domain.SessionBooking)
		err = json.Unmarshal([]byte(legacy), order.LegacyBooking)
		if err != nil {
			return nil, fmt.Errorf("decode legacy booking of order %d: %w", order.ID, err)
		}
	}

	order.ReservationResponse = rawResponse(response)

	order.Items, err = p.lineItems(ctx, order.ID)
	if err != nil {
		return nil, err
	}

	order.Notes, err = p.notes(ctx, order.ID)
	if err != nil {
		return nil, err
	}

	return &order, nil
}

func (p *PostgresOrderRepository) lineItems(ctx context.Context, orderID int64) ([]domain.OrderLineItem, error) {
	query := `
		SELECT id, item_key, product_id, quantity, price, room_index, COALESCE(booking::text, '')
		FROM order_line_items
		WHERE order_id = $1
		ORDER BY room_index, id
	`

	rows, err := p.db.Query(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.OrderLineItem, 0)

	for rows.Next() {
		var (
			item    domain.OrderLineItem
			booking string
		)

		err = rows.Scan(
			&item.ID,
			&item.Key,
			&item.ProductID,
			&item.Quantity,
			&item.Price,
			&item.RoomIndex,
			&booking,
		)
		if err != nil {
			return nil, err
		}

		if booking != "" {
			item.Booking = new(domain.IndividualBooking)
			err = json.Unmarshal([]byte(booking), item.Booking)
			if err != nil {
				return nil, fmt.Errorf("decode booking of line item %d: %w", item.ID, err)
			}
		}

		items = append(items, item)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return items, nil
}

func (p *PostgresOrderRepository) notes(ctx context.Context, orderID int64) ([]domain.OrderNote, error) {
	query := `SELECT id, note, created_at FROM order_notes WHERE order_id = $1 ORDER BY id`

	rows, err := p.db.Query(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notes := make([]domain.OrderNote, 0)

	for rows.Next() {
		var note domain.OrderNote

		err = rows.Scan(&note.ID, &note.Note, &note.CreatedAt)
		if err != nil {
			return nil, err
		}

		notes = append(notes, note)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return notes, nil
}

func (p *PostgresOrderRepository) SetCheckoutSession(ctx context.Context, id int64, checkoutSessionID string) error {
	query := `UPDATE orders
		SET checkout_session_id = $1, updated_at = NOW()
		WHERE id = $2`

	tag, err := p.db.Exec(ctx, query, checkoutSessionID, id)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrEditConflict
		}
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrRecordNotFound
	}

	return nil
}

func (p *PostgresOrderRepository) UpdateStatus(ctx context.Context, id int64, status domain.OrderStatus) error {
	query := `UPDATE orders
		SET status = $1, updated_at = NOW()
		WHERE id = $2`

	tag, err := p.db.Exec(ctx, query, status, id)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrRecordNotFound
	}

	return nil
}

// AttachReservation sets the reservation id only while none is attached.
func (p *PostgresOrderRepository) AttachReservation(
	ctx context.Context,
	id int64,
	record domain.ReservationRecord) error {

	query := `UPDATE orders
		SET reservation_id = $1, reservation_status = $2, reservation_response = $3, updated_at = NOW()
		WHERE id = $4 AND reservation_id IS NULL`

	tag, err := p.db.Exec(ctx, query, record.ReservationID, record.Status, string(record.RawResponse), id)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrReservationAlreadyAttached
	}

	return nil
}

func (p *PostgresOrderRepository) RecordReservationFailure(
	ctx context.Context,
	id int64,
	record domain.ReservationRecord) error {

	query := `UPDATE orders
		SET reservation_status = $1, reservation_response = $2, updated_at = NOW()
		WHERE id = $3 AND reservation_id IS NULL`

	_, err := p.db.Exec(ctx, query, record.Status, string(record.RawResponse), id)

	return err
}

func (p *PostgresOrderRepository) AddNote(ctx context.Context, id int64, note string) error {
	query := `INSERT INTO order_notes (order_id, note) VALUES ($1, $2)`

	_, err := p.db.Exec(ctx, query, id, note)

	return err
}

func marshalNullable[T any](v *T) ([]byte, error) {
	if v == nil {
		return nil, nil
	}

	return json.Marshal(v)
}

// rawResponse keeps non-JSON upstream bodies readable by quoting them.
func rawResponse(body string) json.RawMessage {
	if body == "" {
		return nil
	}

	if json.Valid([]byte(body)) {
		return json.RawMessage(body)
	}

	quoted, _ := json.Marshal(body)

	return quoted
}
