package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/arturoeanton/soundgate/internal/domain"
	"github.com/arturoeanton/soundgate/internal/service"
)

func (a *app) connections(ctx context.Context) (*service.ConnectionService, error) {
	m, err := a.sessions(ctx)
	if err != nil {
		return nil, err
	}
	h, err := a.handle()
	if err != nil {
		return nil, err
	}
	return service.NewConnectionService(h.Databases(), m, a.cfg), nil
}

func newConnectionsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "connections",
		Aliases: []string{"conn"},
		Short:   "Find people and manage connection requests",
	}

	search := &cobra.Command{
		Use:   "search <name>",
		Short: "Find users by name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.connections(cmd.Context())
			if err != nil {
				return err
			}
			users, err := svc.SearchUsers(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(users))
			for _, u := range users {
				rows = append(rows, []string{u.ID, u.Name, u.Email})
			}
			table(a.out, []string{"ID", "NAME", "EMAIL"}, rows)
			return nil
		},
	}

	send := &cobra.Command{
		Use:   "send <user-id>",
		Short: "Send a connection request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.connections(cmd.Context())
			if err != nil {
				return err
			}
			c, err := svc.SendRequest(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printSuccess(a.out, "Request sent", "request id "+c.ID)
			return nil
		},
	}

	var reject bool
	respond := &cobra.Command{
		Use:   "respond <request-id>",
		Short: "Accept (default) or reject a pending request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.connections(cmd.Context())
			if err != nil {
				return err
			}
			c, err := svc.Respond(cmd.Context(), args[0], !reject)
			if err != nil {
				return err
			}
			printSuccess(a.out, "Request "+c.Status, "")
			return nil
		},
	}
	respond.Flags().BoolVar(&reject, "reject", false, "reject instead of accepting")

	pending := &cobra.Command{
		Use:   "pending",
		Short: "List requests waiting for your answer",
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := a.connections(cmd.Context())
			if err != nil {
				return err
			}
			conns, err := svc.Pending(cmd.Context())
			if err != nil {
				return err
			}
			printConnections(a, conns)
			return nil
		},
	}

	accepted := &cobra.Command{
		Use:   "accepted",
		Short: "List your accepted requests",
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := a.connections(cmd.Context())
			if err != nil {
				return err
			}
			conns, err := svc.Accepted(cmd.Context())
			if err != nil {
				return err
			}
			printConnections(a, conns)
			return nil
		},
	}

	cmd.AddCommand(search, send, respond, pending, accepted)
	return cmd
}

func printConnections(a *app, conns []domain.Connection) {
	rows := make([][]string, 0, len(conns))
	for _, c := range conns {
		rows = append(rows, []string{c.ID, c.SenderID, c.RecipientID, c.Status, c.CreatedAt.Format("2006-01-02")})
	}
	table(a.out, []string{"REQUEST", "FROM", "TO", "STATUS", "DATE"}, rows)
}
