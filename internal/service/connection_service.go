package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/arturoeanton/soundgate/internal/domain"
	"github.com/arturoeanton/soundgate/internal/port"
	"github.com/arturoeanton/soundgate/pkg/config"
)

// ConnectionService finds other users and manages connection requests for
// the signed-in user.
type ConnectionService struct {
	db       port.Databases
	sessions *SessionManager
	cfg      *config.Config
	newID    func() string
}

// NewConnectionService creates a connection service.
func NewConnectionService(db port.Databases, sessions *SessionManager, cfg *config.Config) *ConnectionService {
	return &ConnectionService{db: db, sessions: sessions, cfg: cfg, newID: uuid.NewString}
}

func (s *ConnectionService) me(op string) (string, error) {
	st := s.sessions.State()
	if !st.SignedIn() {
		return "", port.Wrap(port.KindAuth, op, "sign in first", port.ErrUnauthorized)
	}
	return st.User.ID, nil
}

// SearchUsers finds users by name.
func (s *ConnectionService) SearchUsers(ctx context.Context, term string) ([]domain.User, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, nil
	}
	list, err := s.db.ListDocuments(ctx, s.cfg.DatabaseID, s.cfg.UsersCollectionID, port.Search("name", term))
	if err != nil {
		return nil, fmt.Errorf("search users: %w", err)
	}
	users := make([]domain.User, 0, len(list.Documents))
	for _, d := range list.Documents {
		users = append(users, domain.User{ID: d.ID, Name: d.String("name"), Email: d.String("email")})
	}
	return users, nil
}

// SendRequest asks recipientID to connect.
func (s *ConnectionService) SendRequest(ctx context.Context, recipientID string) (*domain.Connection, error) {
	const op = "connections.send"
	sender, err := s.me(op)
	if err != nil {
		return nil, err
	}
	if recipientID == "" || recipientID == sender {
		return nil, port.Wrap(port.KindInvalidArgument, op, "invalid recipient", port.ErrInvalidArgument)
	}

	doc, err := s.db.CreateDocument(ctx, s.cfg.DatabaseID, s.cfg.ConnectionsCollectionID, s.newID(), map[string]any{
		"sender_id":         sender,
		"recipient_id":      recipientID,
		"connection_status": domain.ConnectionPending,
	})
	if err != nil {
		return nil, fmt.Errorf("send connection request: %w", err)
	}
	slog.Info("connection request sent", "connection_id", doc.ID, "recipient_id", recipientID)
	return connectionFromDocument(*doc), nil
}

// Respond accepts or rejects a pending request addressed to the caller.
func (s *ConnectionService) Respond(ctx context.Context, requestID string, accept bool) (*domain.Connection, error) {
	const op = "connections.respond"
	me, err := s.me(op)
	if err != nil {
		return nil, err
	}
	if requestID == "" {
		return nil, port.Wrap(port.KindInvalidArgument, op, "request id is required", port.ErrInvalidArgument)
	}

	own, err := s.list(ctx,
		port.Equal("$id", requestID),
		port.Equal("recipient_id", me),
		port.Equal("connection_status", domain.ConnectionPending),
	)
	if err != nil {
		return nil, err
	}
	if len(own) == 0 {
		return nil, port.Wrap(port.KindInvalidArgument, op, "no pending request "+requestID+" for you", port.ErrNotFound)
	}

	status := domain.ConnectionRejected
	if accept {
		status = domain.ConnectionAccepted
	}
	doc, err := s.db.UpdateDocument(ctx, s.cfg.DatabaseID, s.cfg.ConnectionsCollectionID, requestID, map[string]any{
		"connection_status": status,
	})
	if err != nil {
		return nil, fmt.Errorf("respond to connection request: %w", err)
	}
	return connectionFromDocument(*doc), nil
}

// Pending lists requests waiting for the caller's answer.
func (s *ConnectionService) Pending(ctx context.Context) ([]domain.Connection, error) {
	me, err := s.me("connections.pending")
	if err != nil {
		return nil, err
	}
	return s.list(ctx, port.Equal("recipient_id", me), port.Equal("connection_status", domain.ConnectionPending))
}

// Accepted lists the caller's accepted outgoing requests.
func (s *ConnectionService) Accepted(ctx context.Context) ([]domain.Connection, error) {
	me, err := s.me("connections.accepted")
	if err != nil {
		return nil, err
	}
	return s.list(ctx, port.Equal("sender_id", me), port.Equal("connection_status", domain.ConnectionAccepted))
}

func (s *ConnectionService) list(ctx context.Context, queries ...port.Query) ([]domain.Connection, error) {
	list, err := s.db.ListDocuments(ctx, s.cfg.DatabaseID, s.cfg.ConnectionsCollectionID, queries...)
	if err != nil {
		return nil, fmt.Errorf("list connections: %w", err)
	}
	out := make([]domain.Connection, 0, len(list.Documents))
	for _, d := range list.Documents {
		out = append(out, *connectionFromDocument(d))
	}
	return out, nil
}

func connectionFromDocument(d domain.Document) *domain.Connection {
	return &domain.Connection{
		ID:          d.ID,
		SenderID:    d.String("sender_id"),
		RecipientID: d.String("recipient_id"),
		Status:      d.String("connection_status"),
		CreatedAt:   d.CreatedAt,
	}
}
