package usecase

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"strings"

	"github.com/polkiloo/travelpay/internal/adapter/mail"
	"github.com/polkiloo/travelpay/internal/domain/model"
	"github.com/polkiloo/travelpay/internal/domain/repository"
)

// ReceiptDisplay is client supplied display data used when the stored purchase lacks it.
type ReceiptDisplay struct {
	FullName     string
	Email        string
	Phone        string
	PackageTitle string
	Destination  string
	TravelDate   string
	Travellers   int
	Amount       string
}

// ReceiptOutcome reports which receipt emails went out.
type ReceiptOutcome struct {
	CustomerSent bool
	AdminSent    bool
	AlreadySent  bool
}

// ReceiptNotifier sends the customer receipt and the admin notice once per purchase.
type ReceiptNotifier struct {
	sender     mail.Sender
	repo       repository.PurchaseRepository
	adminEmail string
	logger     *slog.Logger
}

// NewReceiptNotifier constructs a notifier. An empty adminEmail disables the admin notice.
func NewReceiptNotifier(sender mail.Sender, repo repository.PurchaseRepository, adminEmail string, logger *slog.Logger) *ReceiptNotifier {
	return &ReceiptNotifier{sender: sender, repo: repo, adminEmail: adminEmail, logger: logger}
}

type receiptView struct {
	PurchaseID      string
	InternalOrderID string
	ReceiptNumber   string
	FullName        string
	Email           string
	Phone           string
	PackageTitle    string
	Destination     string
	TravelDate      string
	Travellers      int
	Amount          string
	OrderID         string
	PaymentID       string
	PaymentMethod   string
}

// Notify is best effort: failures are logged and reported as unsent.
func (n *ReceiptNotifier) Notify(ctx context.Context, purchase *model.Purchase, display ReceiptDisplay) ReceiptOutcome {
	var out ReceiptOutcome
	view := buildReceiptView(purchase, display)

	claimed := false
	if view.PurchaseID != "" {
		ok, err := n.repo.ClaimReceipt(ctx, view.PurchaseID)
		if err != nil {
			n.logger.Warn("claim receipt failed", slog.String("purchaseId", view.PurchaseID), slog.String("error", err.Error()))
			return out
		}
		if !ok {
			out.AlreadySent = true
			return out
		}
		claimed = true
	}

	if view.Email != "" {
		out.CustomerSent = n.send(ctx, "customer", mail.Message{
			To:      view.Email,
			ToName:  view.FullName,
			Subject: fmt.Sprintf("Payment receipt %s", firstNonEmpty(view.ReceiptNumber, view.InternalOrderID, view.OrderID)),
			HTML:    renderReceipt(view, "Thank you for your booking. Your payment has been received."),
			Text:    renderText(view),
		})
	}
	if n.adminEmail != "" {
		out.AdminSent = n.send(ctx, "admin", mail.Message{
			To:      n.adminEmail,
			Subject: fmt.Sprintf("New booking paid: %s", firstNonEmpty(view.PackageTitle, view.OrderID)),
			HTML:    renderReceipt(view, "A new booking has been paid."),
			Text:    renderText(view),
		})
	}

	if claimed && !out.CustomerSent && !out.AdminSent {
		if err := n.repo.ReleaseReceipt(ctx, view.PurchaseID); err != nil {
			n.logger.Warn("release receipt failed", slog.String("purchaseId", view.PurchaseID), slog.String("error", err.Error()))
		}
	}
	return out
}

func (n *ReceiptNotifier) send(ctx context.Context, audience string, msg mail.Message) bool {
	if err := n.sender.Send(ctx, msg); err != nil {
		n.logger.Warn("receipt email failed", slog.String("audience", audience), slog.String("error", err.Error()))
		return false
	}
	return true
}

func buildReceiptView(p *model.Purchase, d ReceiptDisplay) receiptView {
	v := receiptView{
		FullName:     d.FullName,
		Email:        d.Email,
		Phone:        d.Phone,
		PackageTitle: d.PackageTitle,
		Destination:  d.Destination,
		TravelDate:   d.TravelDate,
		Travellers:   d.Travellers,
		Amount:       d.Amount,
	}
	if p == nil {
		return v
	}
	v.PurchaseID = p.ID
	v.InternalOrderID = p.InternalOrderID
	v.ReceiptNumber = p.ReceiptNumber
	v.OrderID = p.RazorpayOrderID
	v.PaymentID = p.RazorpayPaymentID
	v.PaymentMethod = p.PaymentMethod
	v.FullName = firstNonEmpty(p.FullName, v.FullName)
	v.Email = firstNonEmpty(p.Email, v.Email)
	v.Phone = firstNonEmpty(p.Phone, v.Phone)
	v.PackageTitle = firstNonEmpty(p.PackageTitle, v.PackageTitle)
	v.Destination = firstNonEmpty(p.Destination, v.Destination)
	v.TravelDate = firstNonEmpty(p.TravelDate, v.TravelDate)
	if p.Travellers > 0 {
		v.Travellers = p.Travellers
	}
	if p.Amount.IsPositive() {
		v.Amount = strings.TrimSpace(p.Currency + " " + p.Amount.StringFixed(2))
	}
	return v
}

func receiptRows(v receiptView) [][2]string {
	rows := [][2]string{
		{"Receipt", v.ReceiptNumber},
		{"Booking", v.InternalOrderID},
		{"Name", v.FullName},
		{"Phone", v.Phone},
		{"Package", v.PackageTitle},
		{"Destination", v.Destination},
		{"Travel date", v.TravelDate},
		{"Amount", v.Amount},
		{"Gateway order", v.OrderID},
		{"Payment", v.PaymentID},
		{"Method", v.PaymentMethod},
	}
	if v.Travellers > 0 {
		rows = append(rows, [2]string{"Travellers", fmt.Sprint(v.Travellers)})
	}
	out := rows[:0]
	for _, r := range rows {
		if r[1] != "" {
			out = append(out, r)
		}
	}
	return out
}

func renderReceipt(v receiptView, lead string) string {
	var b strings.Builder
	b.WriteString("<p>")
	b.WriteString(html.EscapeString(lead))
	b.WriteString("</p><table>")
	for _, r := range receiptRows(v) {
		fmt.Fprintf(&b, "<tr><th align=\"left\">%s</th><td>%s</td></tr>", html.EscapeString(r[0]), html.EscapeString(r[1]))
	}
	b.WriteString("</table>")
	return b.String()
}

func renderText(v receiptView) string {
	var b strings.Builder
	for _, r := range receiptRows(v) {
		fmt.Fprintf(&b, "%s: %s\n", r[0], r[1])
	}
	return b.String()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
