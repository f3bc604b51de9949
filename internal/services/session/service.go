// Package session holds the business logic for a bill-splitting round:
// creating sessions, managing members, toggling selections and payments, and
// deriving each member's share.
package session

import (
	"context"
	"strings"

	"log/slog"

	"github.com/google/uuid"

	"github.com/vsplit/vsplit/constants"
	"github.com/vsplit/vsplit/internal/common"
	"github.com/vsplit/vsplit/internal/entity"
	"github.com/vsplit/vsplit/internal/repository"
	"github.com/vsplit/vsplit/internal/split"
)

// Service handles session business logic.
type Service struct {
	sessions *repository.SessionRepository
	history  *repository.HistoryRepository
	logger   *slog.Logger
}

// NewService creates a new session service.
func NewService(sessions *repository.SessionRepository, history *repository.HistoryRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		sessions: sessions,
		history:  history,
		logger:   logger,
	}
}

// Create starts a session around a parsed bill.
func (s *Service) Create(ctx context.Context, bill *entity.Bill) (*entity.Session, error) {
	if bill == nil || len(bill.Items) == 0 {
		return nil, common.InvalidInputError("session needs a bill with at least one item")
	}
	session := &entity.Session{
		Bill:       bill,
		Members:    []entity.Member{},
		Selections: map[string][]int{},
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// Get loads a session by share code.
func (s *Service) Get(ctx context.Context, id string) (*entity.Session, error) {
	v := common.NewValidator()
	v.Field("session_id", id, common.SessionID)
	if err := common.ValidateAndReturnError(v); err != nil {
		return nil, err
	}
	return s.sessions.Get(ctx, id)
}

// Delete removes a session.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.sessions.Delete(ctx, id)
}

// AttachBill replaces the session's bill with a freshly scanned one. Stale
// selections are cleared: item ids from the previous bill do not carry
// meaning into the new one.
func (s *Service) AttachBill(ctx context.Context, sessionID string, bill *entity.Bill) error {
	if bill == nil || len(bill.Items) == 0 {
		return common.InvalidInputError("cannot attach an empty bill")
	}
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	session.Bill = bill
	session.Selections = map[string][]int{}
	if err := s.sessions.Update(ctx, session); err != nil {
		return err
	}
	s.logger.Info("session.bill.attached", "session_id", sessionID, "items", len(bill.Items))
	return nil
}

// MemberRequest carries the fields for adding a member.
type MemberRequest struct {
	Name  string
	UPIID string
}

// AddMember registers a person in the session. Names must be unique within a
// session since they double as display labels on the settlement screen.
func (s *Service) AddMember(ctx context.Context, sessionID string, req MemberRequest) (*entity.Session, error) {
	name := strings.TrimSpace(req.Name)
	v := common.NewValidator()
	v.Field("name", name, common.Required)
	v.Field("name", name, func(f string, val interface{}) *common.ValidationError {
		return common.MaxLength(f, val, 40)
	})
	v.Field("upi_id", req.UPIID, common.UPIID)
	if err := common.ValidateAndReturnError(v); err != nil {
		return nil, err
	}

	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	for _, m := range session.Members {
		if strings.EqualFold(m.Name, name) {
			return nil, common.ConflictError("a member named " + name + " already exists")
		}
	}

	session.Members = append(session.Members, entity.Member{
		ID:            uuid.NewString(),
		Name:          name,
		UPIID:         strings.TrimSpace(req.UPIID),
		PaymentStatus: constants.PaymentPending,
	})
	if err := s.sessions.Update(ctx, session); err != nil {
		return nil, err
	}
	s.logger.Info("session.member.added", "session_id", sessionID, "members", len(session.Members))
	return session, nil
}

// RemoveMember drops a member and their selections.
func (s *Service) RemoveMember(ctx context.Context, sessionID, memberID string) (*entity.Session, error) {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	idx := -1
	for i := range session.Members {
		if session.Members[i].ID == memberID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, common.NotFoundError("member not found")
	}
	session.Members = append(session.Members[:idx], session.Members[idx+1:]...)
	delete(session.Selections, memberID)
	if err := s.sessions.Update(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// ToggleSelection flips a member's claim on an item. Claims are capped at
// the item quantity so four people cannot split three beers, except for
// tax-like lines which any number of members may share.
func (s *Service) ToggleSelection(ctx context.Context, sessionID, memberID string, itemID int) (*entity.Session, error) {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Member(memberID) == nil {
		return nil, common.NotFoundError("member not found")
	}
	item := session.Item(itemID)
	if item == nil {
		return nil, common.NotFoundError("item not found")
	}

	sel := session.Selections[memberID]
	for i, id := range sel {
		if id == itemID {
			session.Selections[memberID] = append(sel[:i], sel[i+1:]...)
			if err := s.sessions.Update(ctx, session); err != nil {
				return nil, err
			}
			return session, nil
		}
	}

	if !constants.IsTaxLike(item.Name, item.Category) &&
		session.SelectionCount(itemID) >= item.Quantity {
		return nil, common.ConflictError("all units of this item are already claimed")
	}

	session.Selections[memberID] = append(sel, itemID)
	if err := s.sessions.Update(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// TogglePayment flips a member's paid flag. The moment the last member
// settles, the session is recorded in the group history.
func (s *Service) TogglePayment(ctx context.Context, sessionID, memberID string) (*entity.Session, error) {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	member := session.Member(memberID)
	if member == nil {
		return nil, common.NotFoundError("member not found")
	}

	if member.PaymentStatus == constants.PaymentPaid {
		member.PaymentStatus = constants.PaymentPending
	} else {
		member.PaymentStatus = constants.PaymentPaid
	}
	if err := s.sessions.Update(ctx, session); err != nil {
		return nil, err
	}

	if session.AllPaid() && session.Bill != nil {
		rec := &entity.HistoryRecord{
			SessionID: session.ID,
			GroupName: session.Bill.RestaurantName,
			Date:      session.Bill.Date,
			Total:     session.Bill.Total,
		}
		if err := s.history.Record(ctx, rec); err != nil {
			// History is advisory; the payment toggle itself succeeded.
			s.logger.Error("session.history.failed", "session_id", session.ID, "error", err)
		} else {
			s.logger.Info("session.settled", "session_id", session.ID, "total", session.Bill.Total)
		}
	}
	return session, nil
}

// Share computes the current allocation for a session.
func (s *Service) Share(ctx context.Context, sessionID string) (*entity.Session, split.Allocation, error) {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, split.Allocation{}, err
	}
	return session, split.Compute(session), nil
}

// Summary computes the settlement dashboard for a session.
func (s *Service) Summary(ctx context.Context, sessionID string) (split.Summary, error) {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return split.Summary{}, err
	}
	return split.Summarize(session, split.Compute(session)), nil
}

// History lists previously settled sessions.
func (s *Service) History(ctx context.Context, limit int) ([]entity.HistoryRecord, error) {
	return s.history.List(ctx, limit)
}
