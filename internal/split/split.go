// Package split computes who owes what: each claimed item's line total is
// divided evenly among the members who selected it, and tax plus tip are
// spread in proportion to each member's food share.
package split

import (
	"math"
	"sort"

	"github.com/vsplit/vsplit/constants"
	"github.com/vsplit/vsplit/internal/entity"
)

// ItemShare is one member's slice of a shared item.
type ItemShare struct {
	ItemID   int     `json:"itemId"`
	Name     string  `json:"name"`
	SharedBy int     `json:"sharedBy"`
	Amount   float64 `json:"amount"`
}

// MemberShare is the full breakdown for one member.
type MemberShare struct {
	MemberID      string                  `json:"memberId"`
	Name          string                  `json:"name"`
	Items         []ItemShare             `json:"items"`
	ItemsTotal    float64                 `json:"itemsTotal"`
	TaxShare      float64                 `json:"taxShare"`
	TipShare      float64                 `json:"tipShare"`
	Total         float64                 `json:"total"`
	PaymentStatus constants.PaymentStatus `json:"paymentStatus"`
}

// Allocation is the computed split for a whole session.
type Allocation struct {
	Shares         []MemberShare `json:"shares"`
	UnclaimedItems []int         `json:"unclaimedItems"`
	ClaimedTotal   float64       `json:"claimedTotal"`
	BillTotal      float64       `json:"billTotal"`
}

// Compute derives the allocation from the session's selections. Members with
// no selections get a zero share but still appear, so the caller can render
// everyone. Unclaimed items are reported rather than silently spread.
func Compute(s *entity.Session) Allocation {
	alloc := Allocation{}
	if s.Bill != nil {
		alloc.BillTotal = s.Bill.Total
	}

	var claimedItems float64
	shares := make(map[string]*MemberShare, len(s.Members))
	for _, m := range s.Members {
		shares[m.ID] = &MemberShare{
			MemberID:      m.ID,
			Name:          m.Name,
			PaymentStatus: m.PaymentStatus,
		}
	}

	if s.Bill != nil {
		for _, item := range s.Bill.Items {
			n := s.SelectionCount(item.ID)
			if n == 0 {
				alloc.UnclaimedItems = append(alloc.UnclaimedItems, item.ID)
				continue
			}
			portion := item.LineTotal / float64(n)
			claimedItems += item.LineTotal
			for memberID, sel := range s.Selections {
				share, ok := shares[memberID]
				if !ok {
					continue
				}
				for _, id := range sel {
					if id == item.ID {
						share.Items = append(share.Items, ItemShare{
							ItemID:   item.ID,
							Name:     item.Name,
							SharedBy: n,
							Amount:   round2(portion),
						})
						share.ItemsTotal += portion
						break
					}
				}
			}
		}
	}

	// Tax and tip follow each member's slice of the subtotal, not a flat
	// head count, so whoever ordered more also carries more of the extras.
	var tax, tip, denom float64
	if s.Bill != nil {
		tax, tip = s.Bill.Tax, s.Bill.Tip
		denom = s.Bill.Subtotal
	}
	if denom <= 0 {
		denom = claimedItems
	}
	for _, share := range shares {
		if denom > 0 {
			p := share.ItemsTotal / denom
			share.TaxShare = round2(tax * p)
			share.TipShare = round2(tip * p)
		}
		share.ItemsTotal = round2(share.ItemsTotal)
		share.Total = round2(share.ItemsTotal + share.TaxShare + share.TipShare)
	}

	for _, m := range s.Members {
		sh := shares[m.ID]
		sort.Slice(sh.Items, func(i, j int) bool { return sh.Items[i].ItemID < sh.Items[j].ItemID })
		alloc.Shares = append(alloc.Shares, *sh)
	}
	sort.Ints(alloc.UnclaimedItems)
	alloc.ClaimedTotal = round2(claimedItems)
	return alloc
}

// Summary is the settlement dashboard: headline numbers over the allocation.
type Summary struct {
	MemberCount      int     `json:"memberCount"`
	PaidCount        int     `json:"paidCount"`
	PendingCount     int     `json:"pendingCount"`
	CollectedTotal   float64 `json:"collectedTotal"`
	OutstandingTotal float64 `json:"outstandingTotal"`
	AllPaid          bool    `json:"allPaid"`
}

// Summarize rolls an allocation up into dashboard counters.
func Summarize(s *entity.Session, alloc Allocation) Summary {
	sum := Summary{MemberCount: len(s.Members), AllPaid: s.AllPaid()}
	for _, share := range alloc.Shares {
		if share.PaymentStatus == constants.PaymentPaid {
			sum.PaidCount++
			sum.CollectedTotal += share.Total
		} else {
			sum.PendingCount++
			sum.OutstandingTotal += share.Total
		}
	}
	sum.CollectedTotal = round2(sum.CollectedTotal)
	sum.OutstandingTotal = round2(sum.OutstandingTotal)
	return sum
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
