package entity

import (
	"time"

	"github.com/vsplit/vsplit/constants"
)

// Member is one person splitting a bill.
type Member struct {
	ID            string                  `json:"id"`
	Name          string                  `json:"name"`
	UPIID         string                  `json:"upiId"`
	PaymentStatus constants.PaymentStatus `json:"paymentStatus"`
}

// Session is the shared document for one bill-splitting round: the parsed
// bill, the member list, and each member's item selections. It is persisted
// and synced as a single JSON document keyed by the session ID.
type Session struct {
	ID         string           `json:"id"`
	Bill       *Bill            `json:"bill,omitempty"`
	Members    []Member         `json:"members"`
	Selections map[string][]int `json:"memberSelections"` // member ID -> selected item IDs
	CreatedAt  time.Time        `json:"createdAt"`
	UpdatedAt  time.Time        `json:"updatedAt"`
}

// Member returns the member with the given ID, or nil.
func (s *Session) Member(id string) *Member {
	for i := range s.Members {
		if s.Members[i].ID == id {
			return &s.Members[i]
		}
	}
	return nil
}

// Item returns the bill item with the given ID, or nil.
func (s *Session) Item(id int) *BillItem {
	if s.Bill == nil {
		return nil
	}
	for i := range s.Bill.Items {
		if s.Bill.Items[i].ID == id {
			return &s.Bill.Items[i]
		}
	}
	return nil
}

// SelectionCount reports how many members currently claim an item.
func (s *Session) SelectionCount(itemID int) int {
	n := 0
	for _, sel := range s.Selections {
		for _, id := range sel {
			if id == itemID {
				n++
				break
			}
		}
	}
	return n
}

// AllPaid reports whether every member has settled up. False for an empty
// member list.
func (s *Session) AllPaid() bool {
	if len(s.Members) == 0 {
		return false
	}
	for _, m := range s.Members {
		if m.PaymentStatus != constants.PaymentPaid {
			return false
		}
	}
	return true
}

// HistoryRecord summarizes a fully settled session for the group history view.
type HistoryRecord struct {
	ID         string    `json:"id"`
	SessionID  string    `json:"sessionId"`
	GroupName  string    `json:"groupName"`
	Date       string    `json:"date"` // YYYY-MM-DD
	Total      float64   `json:"total"`
	RecordedAt time.Time `json:"recordedAt"`
}
