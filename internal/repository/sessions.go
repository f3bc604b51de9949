package repository

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/vsplit/vsplit/constants"
	"github.com/vsplit/vsplit/internal/common"
	"github.com/vsplit/vsplit/internal/entity"
)

// sessionSchemaTmpl guards every write: a session document that does not
// satisfy it never reaches the database, so a corrupted bill or selection
// map is caught at the boundary instead of at render time. The category enum
// is filled in from the canonical list.
const sessionSchemaTmpl = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["id", "bill", "members", "memberSelections"],
  "properties": {
    "id": {"type": "string", "pattern": "^[A-Z0-9]{8}$"},
    "bill": {
      "type": "object",
      "required": ["restaurant", "items", "subtotal", "total"],
      "properties": {
        "restaurant": {"type": "string"},
        "items": {
          "type": "array",
          "items": {
            "type": "object",
            "required": ["id", "name", "qty", "price"],
            "properties": {
              "id": {"type": "integer", "minimum": 1},
              "name": {"type": "string", "minLength": 1},
              "qty": {"type": "integer", "minimum": 1},
              "price": {"type": "number", "minimum": 0},
              "category": {"type": "string", "enum": [%s]}
            }
          }
        },
        "subtotal": {"type": "number", "minimum": 0},
        "tax": {"type": "number", "minimum": 0},
        "tip": {"type": "number", "minimum": 0},
        "total": {"type": "number", "minimum": 0}
      }
    },
    "members": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id", "name"],
        "properties": {
          "id": {"type": "string"},
          "name": {"type": "string", "minLength": 1},
          "upiId": {"type": "string"},
          "paymentStatus": {"type": "string", "enum": ["pending", "paid"]}
        }
      }
    },
    "memberSelections": {
      "type": "object",
      "additionalProperties": {
        "type": "array",
        "items": {"type": "integer"}
      }
    }
  }
}`

func sessionSchema() string {
	names := constants.AsStringSlice()
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = strconv.Quote(n)
	}
	return fmt.Sprintf(sessionSchemaTmpl, strings.Join(quoted, ", "))
}

const sessionIDAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

// NewSessionID returns an 8-character share code. Ambiguous glyphs (I, L, O,
// 0, 1) are excluded since codes are read aloud across the table.
func NewSessionID() (string, error) {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("session id: %w", err)
	}
	for i, b := range buf {
		buf[i] = sessionIDAlphabet[int(b)%len(sessionIDAlphabet)]
	}
	return string(buf), nil
}

// SessionRepository stores each session as one JSON document keyed by the
// share code. Sessions are small and read whole, so a document column beats
// a normalized layout here.
type SessionRepository struct {
	db     *sql.DB
	schema *jsonschema.Schema
	logger *slog.Logger
	now    func() time.Time
}

func NewSessionRepository(store *Store, logger *slog.Logger) (*SessionRepository, error) {
	if logger == nil {
		logger = slog.Default()
	}
	schema, err := jsonschema.CompileString("session.json", sessionSchema())
	if err != nil {
		return nil, fmt.Errorf("compile session schema: %w", err)
	}
	return &SessionRepository{db: store.DB, schema: schema, logger: logger, now: time.Now}, nil
}

// Create inserts a new session, generating its share code. Retries on the
// (vanishingly rare) code collision.
func (r *SessionRepository) Create(ctx context.Context, session *entity.Session) error {
	for attempt := 0; attempt < 3; attempt++ {
		id, err := NewSessionID()
		if err != nil {
			return err
		}
		session.ID = id
		session.CreatedAt = r.now().UTC()
		session.UpdatedAt = session.CreatedAt

		doc, err := r.marshalValidated(session)
		if err != nil {
			return err
		}
		_, err = r.db.ExecContext(ctx,
			`INSERT INTO sessions (id, document, created_at, updated_at) VALUES ($1, $2, $3, $4)`,
			session.ID, string(doc), session.CreatedAt, session.UpdatedAt)
		if err == nil {
			r.logger.Info("session.created", "session_id", session.ID, "items", len(session.Bill.Items))
			return nil
		}
		r.logger.Warn("session.create.retry", "session_id", session.ID, "error", err)
	}
	return common.NewAppError("SESSION_CREATE", "could not allocate a session id", common.ErrDatabase)
}

// Get loads a session by share code.
func (r *SessionRepository) Get(ctx context.Context, id string) (*entity.Session, error) {
	var doc string
	err := r.db.QueryRowContext(ctx,
		`SELECT document FROM sessions WHERE id = $1`, id).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.NotFoundError("session " + id + " not found")
	}
	if err != nil {
		return nil, common.WrapError(err, "load session")
	}
	var session entity.Session
	if err := json.Unmarshal([]byte(doc), &session); err != nil {
		return nil, common.WrapError(err, "decode session document")
	}
	return &session, nil
}

// Update persists the full session document.
func (r *SessionRepository) Update(ctx context.Context, session *entity.Session) error {
	session.UpdatedAt = r.now().UTC()
	doc, err := r.marshalValidated(session)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE sessions SET document = $1, updated_at = $2 WHERE id = $3`,
		string(doc), session.UpdatedAt, session.ID)
	if err != nil {
		return common.WrapError(err, "update session")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return common.NotFoundError("session " + session.ID + " not found")
	}
	return nil
}

// Delete removes a session document.
func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	if err != nil {
		return common.WrapError(err, "delete session")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return common.NotFoundError("session " + id + " not found")
	}
	r.logger.Info("session.deleted", "session_id", id)
	return nil
}

func (r *SessionRepository) marshalValidated(session *entity.Session) ([]byte, error) {
	doc, err := json.Marshal(session)
	if err != nil {
		return nil, common.WrapError(err, "encode session document")
	}
	var generic interface{}
	if err := json.Unmarshal(doc, &generic); err != nil {
		return nil, common.WrapError(err, "decode session document")
	}
	if err := r.schema.Validate(generic); err != nil {
		return nil, common.NewAppError("SESSION_SCHEMA", "session document failed validation", err)
	}
	return doc, nil
}
