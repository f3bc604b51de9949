// Package payment builds UPI collect links and QR codes for settling a
// member's share.
package payment

import (
	"fmt"
	"net/url"
	"strings"

	qrcode "github.com/skip2/go-qrcode"

	"github.com/vsplit/vsplit/internal/common"
	"github.com/vsplit/vsplit/internal/entity"
)

// Request describes one payment to collect.
type Request struct {
	PayeeVPA  string  // virtual payment address, name@bank
	PayeeName string
	Amount    float64
	Note      string
}

// URI renders the upi://pay deep link understood by every UPI app. Amounts
// are fixed to two decimals; UPI rejects more precision.
func URI(req Request) (string, error) {
	vpa := strings.TrimSpace(req.PayeeVPA)
	if vpa == "" || !strings.Contains(vpa, "@") {
		return "", common.InvalidInputError("payee UPI id must look like name@bank")
	}
	if req.Amount <= 0 {
		return "", common.InvalidInputErrorf("payment amount must be positive, got %.2f", req.Amount)
	}

	q := url.Values{}
	q.Set("pa", vpa)
	if req.PayeeName != "" {
		q.Set("pn", req.PayeeName)
	}
	q.Set("am", fmt.Sprintf("%.2f", req.Amount))
	q.Set("cu", "INR")
	if req.Note != "" {
		q.Set("tn", req.Note)
	}
	return "upi://pay?" + q.Encode(), nil
}

// QRPNG renders the deep link as a PNG QR code of the given edge size.
func QRPNG(req Request, size int) ([]byte, error) {
	uri, err := URI(req)
	if err != nil {
		return nil, err
	}
	if size <= 0 {
		size = 256
	}
	png, err := qrcode.Encode(uri, qrcode.Medium, size)
	if err != nil {
		return nil, common.WrapError(err, "encode qr")
	}
	return png, nil
}

// Payee picks who collects the money: a member named like the group admin
// if one registered a UPI id, otherwise the first member that did. Sessions
// without any UPI id cannot produce payment links.
func Payee(s *entity.Session) (*entity.Member, error) {
	for i := range s.Members {
		if s.Members[i].UPIID != "" && strings.Contains(strings.ToLower(s.Members[i].Name), "admin") {
			return &s.Members[i], nil
		}
	}
	for i := range s.Members {
		if s.Members[i].UPIID != "" {
			return &s.Members[i], nil
		}
	}
	return nil, common.NotFoundError("no member has a UPI id")
}
