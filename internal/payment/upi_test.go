package payment

import (
	"bytes"
	"net/url"
	"strings"
	"testing"

	"github.com/vsplit/vsplit/internal/entity"
)

func TestURIEncodesFields(t *testing.T) {
	uri, err := URI(Request{
		PayeeVPA:  "asha@okbank",
		PayeeName: "Asha K",
		Amount:    245.3,
		Note:      "Dinner @ Cafe Madras",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(uri, "upi://pay?") {
		t.Fatalf("bad scheme: %q", uri)
	}
	u, err := url.Parse(uri)
	if err != nil {
		t.Fatalf("link does not parse: %v", err)
	}
	q := u.Query()
	if q.Get("pa") != "asha@okbank" {
		t.Errorf("pa = %q", q.Get("pa"))
	}
	if q.Get("am") != "245.30" {
		t.Errorf("am = %q, want fixed two decimals", q.Get("am"))
	}
	if q.Get("cu") != "INR" {
		t.Errorf("cu = %q", q.Get("cu"))
	}
	if q.Get("tn") != "Dinner @ Cafe Madras" {
		t.Errorf("tn = %q", q.Get("tn"))
	}
}

func TestURIRejectsBadInput(t *testing.T) {
	if _, err := URI(Request{PayeeVPA: "not-a-vpa", Amount: 10}); err == nil {
		t.Error("expected error for VPA without @")
	}
	if _, err := URI(Request{PayeeVPA: "a@b", Amount: 0}); err == nil {
		t.Error("expected error for zero amount")
	}
	if _, err := URI(Request{PayeeVPA: "  ", Amount: 10}); err == nil {
		t.Error("expected error for blank VPA")
	}
}

func TestQRPNG(t *testing.T) {
	png, err := QRPNG(Request{PayeeVPA: "asha@okbank", Amount: 100}, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.HasPrefix(png, []byte("\x89PNG")) {
		t.Fatalf("output is not a PNG (%d bytes)", len(png))
	}
}

func TestPayee(t *testing.T) {
	s := &entity.Session{Members: []entity.Member{
		{ID: "a", Name: "Asha"},
		{ID: "b", Name: "Ravi", UPIID: "ravi@upi"},
	}}
	m, err := Payee(s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.ID != "b" {
		t.Errorf("payee = %q, want first member with a UPI id", m.ID)
	}

	s.Members = append(s.Members, entity.Member{ID: "c", Name: "Group Admin", UPIID: "admin@upi"})
	m, err = Payee(s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.ID != "c" {
		t.Errorf("payee = %q, want admin-named member preferred", m.ID)
	}

	s.Members = s.Members[:2]
	s.Members[1].UPIID = ""
	if _, err := Payee(s); err == nil {
		t.Error("expected error when nobody has a UPI id")
	}
}
