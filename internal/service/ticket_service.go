package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/arturoeanton/soundgate/internal/domain"
	"github.com/arturoeanton/soundgate/internal/port"
	"github.com/arturoeanton/soundgate/pkg/config"
)

// TicketService lists and sells event tickets.
type TicketService struct {
	db    port.Databases
	cfg   *config.Config
	newID func() string
	now   func() time.Time
}

// NewTicketService creates a ticket service.
func NewTicketService(db port.Databases, cfg *config.Config) *TicketService {
	return &TicketService{db: db, cfg: cfg, newID: uuid.NewString, now: time.Now}
}

// NewTicket is the listing form: a ticket name, the event and three price tiers.
type NewTicket struct {
	Name   string
	Event  string
	Prices [3]float64
	Owner  string
	Venue  string
	Seats  int
}

// List returns every ticket listing.
func (s *TicketService) List(ctx context.Context) ([]domain.Ticket, error) {
	list, err := s.db.ListDocuments(ctx, s.cfg.DatabaseID, s.cfg.TicketsCollectionID)
	if err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}
	tickets := make([]domain.Ticket, 0, len(list.Documents))
	for _, d := range list.Documents {
		tickets = append(tickets, ticketFromDocument(d))
	}
	return tickets, nil
}

// Search lists tickets whose description contains term, ignoring case.
func (s *TicketService) Search(ctx context.Context, term string) ([]domain.Ticket, error) {
	tickets, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return FilterTickets(tickets, term), nil
}

// FilterTickets keeps tickets whose description contains term, ignoring case.
func FilterTickets(tickets []domain.Ticket, term string) []domain.Ticket {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return tickets
	}
	var out []domain.Ticket
	for _, t := range tickets {
		if strings.Contains(strings.ToLower(t.Description), term) {
			out = append(out, t)
		}
	}
	return out
}

// Create lists a new ticket.
func (s *TicketService) Create(ctx context.Context, in NewTicket) (*domain.Ticket, error) {
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Event) == "" {
		return nil, port.Wrap(port.KindInvalidArgument, "tickets.create", "name and event are required", port.ErrInvalidArgument)
	}
	for _, p := range in.Prices {
		if p <= 0 {
			return nil, port.Wrap(port.KindInvalidArgument, "tickets.create", "all three prices are required", port.ErrInvalidArgument)
		}
	}
	seats := in.Seats
	if seats <= 0 {
		seats = 100
	}

	t := domain.Ticket{
		Type:             in.Name,
		Description:      in.Event,
		EventDate:        s.now().UTC().Format(time.RFC3339),
		Venue:            in.Venue,
		AvailableTickets: seats,
		Owner:            in.Owner,
		Price:            in.Prices[:],
	}
	data := map[string]any{
		"type":             t.Type,
		"description":      t.Description,
		"eventDate":        t.EventDate,
		"venue":            t.Venue,
		"availableTickets": t.AvailableTickets,
		"owner":            t.Owner,
		"price":            t.Price,
	}

	doc, err := s.db.CreateDocument(ctx, s.cfg.DatabaseID, s.cfg.TicketsCollectionID, s.newID(), data)
	if err != nil {
		return nil, fmt.Errorf("create ticket: %w", err)
	}
	t.ID = doc.ID
	return &t, nil
}

func ticketFromDocument(d domain.Document) domain.Ticket {
	t := domain.Ticket{
		ID:          d.ID,
		Type:        d.String("type"),
		Description: d.String("description"),
		EventDate:   d.String("eventDate"),
		Venue:       d.String("venue"),
		Owner:       d.String("owner"),
	}
	if n, ok := d.Data["availableTickets"].(float64); ok {
		t.AvailableTickets = int(n)
	}
	if n, ok := d.Data["availableTickets"].(int); ok {
		t.AvailableTickets = n
	}
	switch prices := d.Data["price"].(type) {
	case []any:
		for _, p := range prices {
			if f, ok := p.(float64); ok {
				t.Price = append(t.Price, f)
			}
		}
	case []float64:
		t.Price = prices
	}
	return t
}
