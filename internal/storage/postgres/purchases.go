package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	domainErrors "github.com/polkiloo/travelpay/internal/domain/errors"
	"github.com/polkiloo/travelpay/internal/domain/model"
)

type purchaseRepository struct {
	storage *Storage
}

const purchaseColumns = `id, internal_order_id, receipt_number, full_name, email, phone, user_id,
    package_id, package_slug, package_title, destination, travel_date, checkout_type, customer_note,
    travellers, unit_price, unit_label, amount, currency,
    razorpay_order_id, razorpay_payment_id, razorpay_signature, payment_method,
    status, failure_reason, failure_code, failure_source, failure_step,
    refund_id, refunded_amount, refund_notes,
    created_at, paid_at, refunded_at, receipt_sent_at, updated_at`

// keyTarget resolves a PurchaseKey ($1 order id, $2 purchase id) to at most one row id,
// preferring the gateway order id. A purchase id only matches a row bound to no order or
// to the same order.
const keyTarget = `SELECT id FROM purchases
    WHERE ($1 <> '' AND razorpay_order_id = $1)
       OR ($2 <> '' AND id = $2 AND ($1 = '' OR razorpay_order_id = '' OR razorpay_order_id = $1))
    ORDER BY (razorpay_order_id = $1) DESC
    LIMIT 1`

const insertHistory = `INSERT INTO purchase_status_history (purchase_id, from_status, to_status, payment_id, detail)
                       VALUES ($1, $2, $3, $4, $5)`

func scanPurchase(row pgx.Row) (*model.Purchase, error) {
	var (
		p                 model.Purchase
		checkoutType      string
		unitLabel         string
		status            string
		unitPrice, amount int64
		refunded          int64
		notes             string
	)
	err := row.Scan(
		&p.ID, &p.InternalOrderID, &p.ReceiptNumber, &p.FullName, &p.Email, &p.Phone, &p.UserID,
		&p.PackageID, &p.PackageSlug, &p.PackageTitle, &p.Destination, &p.TravelDate, &checkoutType, &p.CustomerNote,
		&p.Travellers, &unitPrice, &unitLabel, &amount, &p.Currency,
		&p.RazorpayOrderID, &p.RazorpayPaymentID, &p.RazorpaySignature, &p.PaymentMethod,
		&status, &p.FailureReason, &p.FailureCode, &p.FailureSource, &p.FailureStep,
		&p.RefundID, &refunded, &notes,
		&p.CreatedAt, &p.PaidAt, &p.RefundedAt, &p.ReceiptSentAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.CheckoutType = model.CheckoutType(checkoutType)
	p.UnitLabel = model.UnitLabel(unitLabel)
	p.Status = model.PurchaseStatus(status)
	p.UnitPrice = model.FromMinorUnits(unitPrice)
	p.Amount = model.FromMinorUnits(amount)
	p.RefundedAmount = model.FromMinorUnits(refunded)
	if notes != "" && notes != "{}" {
		if err := json.Unmarshal([]byte(notes), &p.RefundNotes); err != nil {
			return nil, fmt.Errorf("decode refund notes: %w", err)
		}
	}
	return &p, nil
}

func encodeNotes(notes map[string]string) (string, error) {
	if len(notes) == 0 {
		return "{}", nil
	}
	raw, err := json.Marshal(notes)
	if err != nil {
		return "", fmt.Errorf("encode refund notes: %w", err)
	}
	return string(raw), nil
}

func (r *purchaseRepository) Create(ctx context.Context, purchase *model.Purchase) (*model.Purchase, error) {
	const query = `INSERT INTO purchases (id, full_name, email, phone, user_id,
                       package_id, package_slug, package_title, destination, travel_date, checkout_type, customer_note,
                       travellers, unit_price, unit_label, amount, currency, razorpay_order_id, status)
                   VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
                   RETURNING ` + purchaseColumns

	id := purchase.ID
	if id == "" {
		id = uuid.NewString()
	}

	var created *model.Purchase
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, query,
			id, purchase.FullName, purchase.Email, purchase.Phone, purchase.UserID,
			purchase.PackageID, purchase.PackageSlug, purchase.PackageTitle, purchase.Destination, purchase.TravelDate,
			string(purchase.CheckoutType), purchase.CustomerNote,
			purchase.Travellers, model.ToMinorUnits(purchase.UnitPrice), string(purchase.UnitLabel),
			model.ToMinorUnits(purchase.Amount), purchase.Currency, purchase.RazorpayOrderID,
			string(model.PurchaseStatusCreated),
		)
		p, err := scanPurchase(row)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, insertHistory, p.ID, "", string(model.PurchaseStatusCreated), "", p.RazorpayOrderID); err != nil {
			return err
		}
		created = p
		return nil
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domainErrors.ErrAlreadyExists
		}
		return nil, err
	}
	return created, nil
}

func (r *purchaseRepository) Get(ctx context.Context, key model.PurchaseKey) (*model.Purchase, error) {
	if key.Empty() {
		return nil, domainErrors.ErrMissingCorrelation
	}
	query := `SELECT ` + purchaseColumns + ` FROM purchases WHERE id = (` + keyTarget + `)`
	p, err := scanPurchase(r.storage.pool.QueryRow(ctx, query, key.OrderID, key.PurchaseID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *purchaseRepository) GetByPaymentID(ctx context.Context, paymentID string) (*model.Purchase, error) {
	const query = `SELECT ` + purchaseColumns + ` FROM purchases
                   WHERE razorpay_payment_id = $1 ORDER BY created_at DESC LIMIT 1`
	if paymentID == "" {
		return nil, domainErrors.ErrNotFound
	}
	p, err := scanPurchase(r.storage.pool.QueryRow(ctx, query, paymentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

// transitionSet returns the SET clause for a target status and its arguments, numbered
// from $5 ($1..$4 are order id, purchase id, from status and to status).
func transitionSet(to model.PurchaseStatus, patch model.TransitionPatch) (string, []any, string, error) {
	switch to {
	case model.PurchaseStatusPaid:
		return `razorpay_payment_id = COALESCE(NULLIF($5, ''), razorpay_payment_id),
                razorpay_signature = COALESCE(NULLIF($6, ''), razorpay_signature),
                payment_method = COALESCE(NULLIF($7, ''), payment_method),
                paid_at = COALESCE(paid_at, NOW()),
                receipt_number = CASE WHEN receipt_number = ''
                    THEN 'RCPT-' || to_char(NOW(), 'YYYYMMDD') || '-' || LPAD(nextval('purchase_receipt_seq')::text, 6, '0')
                    ELSE receipt_number END`,
			[]any{patch.PaymentID, patch.Signature, patch.PaymentMethod}, patch.PaymentMethod, nil
	case model.PurchaseStatusFailed:
		return `razorpay_payment_id = COALESCE(NULLIF($5, ''), razorpay_payment_id),
                payment_method = COALESCE(NULLIF($6, ''), payment_method),
                failure_code = $7,
                failure_reason = $8,
                failure_source = $9,
                failure_step = $10`,
			[]any{patch.PaymentID, patch.PaymentMethod, patch.FailureCode, patch.FailureReason, patch.FailureSource, patch.FailureStep},
			patch.FailureReason, nil
	case model.PurchaseStatusRefunded:
		notes, err := encodeNotes(patch.RefundNotes)
		if err != nil {
			return "", nil, "", err
		}
		return `refund_id = $5,
                refunded_amount = $6,
                refund_notes = $7,
                refunded_at = NOW()`,
			[]any{patch.RefundID, model.ToMinorUnits(patch.RefundedAmount), notes}, patch.RefundID, nil
	default:
		return "", nil, "", fmt.Errorf("%w: unsupported target status %q", domainErrors.ErrInvalidTransition, to)
	}
}

func (r *purchaseRepository) Transition(ctx context.Context, key model.PurchaseKey, from, to model.PurchaseStatus, patch model.TransitionPatch) (*model.Purchase, error) {
	if key.Empty() {
		return nil, domainErrors.ErrMissingCorrelation
	}
	if !from.CanTransition(to) {
		return nil, fmt.Errorf("%w: %s -> %s", domainErrors.ErrInvalidTransition, from, to)
	}

	set, extra, detail, err := transitionSet(to, patch)
	if err != nil {
		return nil, err
	}
	query := `UPDATE purchases SET status = $4, ` + set + `, updated_at = NOW()
              WHERE id = (` + keyTarget + `) AND status = $3
              RETURNING ` + purchaseColumns
	args := append([]any{key.OrderID, key.PurchaseID, string(from), string(to)}, extra...)

	var updated *model.Purchase
	err = r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		p, err := scanPurchase(tx.QueryRow(ctx, query, args...))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domainErrors.ErrPreconditionFailed
			}
			return err
		}
		if _, err := tx.Exec(ctx, insertHistory, p.ID, string(from), string(to), p.RazorpayPaymentID, detail); err != nil {
			return err
		}
		updated = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *purchaseRepository) ClaimReceipt(ctx context.Context, purchaseID string) (bool, error) {
	const query = `UPDATE purchases SET receipt_sent_at = NOW() WHERE id = $1 AND receipt_sent_at IS NULL`
	tag, err := r.storage.pool.Exec(ctx, query, purchaseID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *purchaseRepository) ReleaseReceipt(ctx context.Context, purchaseID string) error {
	const query = `UPDATE purchases SET receipt_sent_at = NULL WHERE id = $1`
	_, err := r.storage.pool.Exec(ctx, query, purchaseID)
	return err
}
