package usecase_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/polkiloo/travelpay/internal/adapter/mail"
	"github.com/polkiloo/travelpay/internal/domain/model"
	"github.com/polkiloo/travelpay/internal/test"
	"github.com/polkiloo/travelpay/internal/usecase"
)

func TestReceiptEscapesUserData(t *testing.T) {
	repo := test.NewPurchaseRepositoryStub()
	sender := &test.SenderStub{}
	n := usecase.NewReceiptNotifier(sender, repo, "", discardLogger())

	out := n.Notify(context.Background(), nil, usecase.ReceiptDisplay{FullName: "<script>x</script>", Email: "a@example.com"})
	if !out.CustomerSent || out.AdminSent {
		t.Fatalf("unexpected outcome %+v", out)
	}
	html := sender.Messages()[0].HTML
	if strings.Contains(html, "<script>") || !strings.Contains(html, "&lt;script&gt;") {
		t.Fatalf("html not escaped: %s", html)
	}
}

func TestReceiptReleasedWhenAllSendsFail(t *testing.T) {
	h := newHarness()
	p := h.seed(model.PurchaseStatusPaid)
	sender := &test.SenderStub{SendFn: func(context.Context, mail.Message) error { return errors.New("smtp down") }}
	n := usecase.NewReceiptNotifier(sender, h.repo, "admin@example.com", discardLogger())

	out := n.Notify(context.Background(), &p, usecase.ReceiptDisplay{})
	if out.CustomerSent || out.AdminSent {
		t.Fatalf("unexpected outcome %+v", out)
	}
	if h.repo.Releases() != 1 {
		t.Fatal("expected claim release")
	}
	stored, _ := h.repo.Snapshot(p.ID)
	if stored.ReceiptSentAt != nil {
		t.Fatal("claim must be cleared")
	}
}

func TestReceiptClaimedOnce(t *testing.T) {
	h := newHarness()
	p := h.seed(model.PurchaseStatusPaid)
	n := usecase.NewReceiptNotifier(h.sender, h.repo, "", discardLogger())

	if out := n.Notify(context.Background(), &p, usecase.ReceiptDisplay{}); !out.CustomerSent {
		t.Fatalf("unexpected outcome %+v", out)
	}
	if out := n.Notify(context.Background(), &p, usecase.ReceiptDisplay{}); !out.AlreadySent || out.CustomerSent {
		t.Fatalf("unexpected outcome %+v", out)
	}
}
