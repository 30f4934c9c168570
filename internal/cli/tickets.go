package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/arturoeanton/soundgate/internal/domain"
	"github.com/arturoeanton/soundgate/internal/port"
	"github.com/arturoeanton/soundgate/internal/service"
)

func (a *app) tickets() (*service.TicketService, error) {
	h, err := a.handle()
	if err != nil {
		return nil, err
	}
	return service.NewTicketService(h.Databases(), a.cfg), nil
}

func newTicketsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tickets",
		Short: "List, search and sell event tickets",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List all tickets",
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := a.tickets()
			if err != nil {
				return err
			}
			tickets, err := svc.List(cmd.Context())
			if err != nil {
				return err
			}
			printTickets(a, tickets)
			return nil
		},
	}

	search := &cobra.Command{
		Use:   "search <term>",
		Short: "Search tickets by event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.tickets()
			if err != nil {
				return err
			}
			tickets, err := svc.Search(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printTickets(a, tickets)
			return nil
		},
	}

	var (
		in     service.NewTicket
		prices []float64
	)
	create := &cobra.Command{
		Use:   "create",
		Short: "List a ticket for sale",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if len(prices) != 3 {
				return port.NewError(port.KindInvalidArgument, "cli.tickets.create", "--prices takes exactly three tiers")
			}
			copy(in.Prices[:], prices)

			m, err := a.sessions(cmd.Context())
			if err != nil {
				return err
			}
			if st := m.State(); st.SignedIn() {
				in.Owner = st.User.ID
			}
			svc, err := a.tickets()
			if err != nil {
				return err
			}
			t, err := svc.Create(cmd.Context(), in)
			if err != nil {
				return err
			}
			printSuccess(a.out, "Ticket listed", fmt.Sprintf("%s for %s (id %s)", t.Type, t.Description, t.ID))
			return nil
		},
	}
	f := create.Flags()
	f.StringVar(&in.Name, "name", "", "ticket name, e.g. VIP")
	f.StringVar(&in.Event, "event", "", "event description")
	f.Float64SliceVar(&prices, "prices", nil, "three price tiers, e.g. 10,20,30")
	f.StringVar(&in.Venue, "venue", "", "venue")
	f.IntVar(&in.Seats, "seats", 0, "available tickets (default 100)")

	cmd.AddCommand(list, search, create)
	return cmd
}

func printTickets(a *app, tickets []domain.Ticket) {
	rows := make([][]string, 0, len(tickets))
	for _, t := range tickets {
		tiers := make([]string, len(t.Price))
		for i, p := range t.Price {
			tiers[i] = strconv.FormatFloat(p, 'f', 2, 64)
		}
		rows = append(rows, []string{t.Type, t.Description, strings.Join(tiers, " / "), strconv.Itoa(t.AvailableTickets)})
	}
	table(a.out, []string{"TICKET", "EVENT", "PRICES", "LEFT"}, rows)
}
