package cli

import (
	"github.com/spf13/cobra"

	"github.com/arturoeanton/soundgate/internal/service"
)

func newFeedCmd(a *app) *cobra.Command {
	var page int
	cmd := &cobra.Command{
		Use:   "feed",
		Short: "Page through submitted reels",
		RunE: func(cmd *cobra.Command, _ []string) error {
			h, err := a.handle()
			if err != nil {
				return err
			}
			reels, err := service.NewFeedService(h.Storage(), a.cfg).Page(cmd.Context(), page)
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(reels))
			for _, r := range reels {
				rows = append(rows, []string{r.Name, r.URL})
			}
			table(a.out, []string{"REEL", "URL"}, rows)
			return nil
		},
	}
	cmd.Flags().IntVar(&page, "page", 0, "page number, starting at 0")
	return cmd
}
