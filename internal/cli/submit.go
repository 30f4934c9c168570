package cli

import (
	"context"
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/arturoeanton/soundgate/internal/domain"
	"github.com/arturoeanton/soundgate/internal/service"
)

func (a *app) submissions() (*service.SubmissionService, error) {
	h, err := a.handle()
	if err != nil {
		return nil, err
	}
	uploads, err := a.uploads()
	if err != nil {
		return nil, err
	}
	return service.NewSubmissionService(h.Databases(), uploads, a.cfg), nil
}

func newStationsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stations",
		Short: "List radio stations that accept submissions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := a.submissions()
			if err != nil {
				return err
			}
			stations, err := svc.ListRadioStations(cmd.Context())
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(stations))
			for _, s := range stations {
				rows = append(rows, []string{s.Name, s.Frequency, s.Email})
			}
			table(a.out, []string{"STATION", "FREQUENCY", "EMAIL"}, rows)
			return nil
		},
	}
}

func newSubmitCmd(a *app) *cobra.Command {
	var (
		sub               domain.TrackSubmission
		trackPath, avatar string
	)
	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit a track to radio stations",
		Long: `Upload a track and artist picture, then submit them to the chosen stations.
Missing files are picked interactively; missing stations are chosen from a list.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			svc, err := a.submissions()
			if err != nil {
				return err
			}
			if err := promptMissing(
				promptField{title: "Artist name", value: &sub.ArtistName},
				promptField{title: "Track title", value: &sub.TrackTitle},
			); err != nil {
				return err
			}

			track, ok, err := a.assetFor(ctx, trackPath, domain.MediaAudio)
			if err != nil || !ok {
				return cancelled(a, err)
			}
			picture, ok, err := a.assetFor(ctx, avatar, domain.MediaImage)
			if err != nil || !ok {
				return cancelled(a, err)
			}

			if len(sub.SelectedStations) == 0 {
				sub.SelectedStations, err = chooseStations(ctx, svc)
				if err != nil {
					return err
				}
			}

			sub.AvatarURL, sub.TrackURL, err = svc.UploadAssets(ctx, picture, track)
			if err != nil {
				return err
			}
			saved, err := svc.Submit(ctx, sub)
			if err != nil {
				return err
			}
			printSuccess(a.out, "Submission received",
				fmt.Sprintf("%q sent to %d station(s) (id %s)", saved.TrackTitle, len(saved.SelectedStations), saved.ID))
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&sub.ArtistName, "artist", "", "artist name")
	f.StringVar(&sub.TrackTitle, "title", "", "track title")
	f.StringVar(&sub.TrackInfo, "info", "", "notes for the station")
	f.StringVar(&trackPath, "track", "", "audio file")
	f.StringVar(&avatar, "avatar", "", "artist picture")
	f.StringSliceVar(&sub.SelectedStations, "station", nil, "station email (repeatable)")
	return cmd
}

// assetFor uses path when given and the picker otherwise.
func (a *app) assetFor(ctx context.Context, path string, kind domain.MediaKind) (domain.Asset, bool, error) {
	if path != "" {
		return domain.Asset{URI: path}, true, nil
	}
	return a.picker.Pick(ctx, kind)
}

func cancelled(a *app, err error) error {
	if err != nil {
		return err
	}
	printWarn(a.out, "No file selected; nothing was submitted.")
	return nil
}

func chooseStations(ctx context.Context, svc *service.SubmissionService) ([]string, error) {
	stations, err := svc.ListRadioStations(ctx)
	if err != nil {
		return nil, err
	}
	opts := make([]huh.Option[string], 0, len(stations))
	for _, s := range stations {
		opts = append(opts, huh.NewOption(fmt.Sprintf("%s (%s)", s.Name, s.Frequency), s.Email))
	}

	var selected []string
	field := huh.NewMultiSelect[string]().
		Title("Radio stations").
		Options(opts...).
		Value(&selected)
	if err := huh.NewForm(huh.NewGroup(field)).Run(); err != nil {
		return nil, fmt.Errorf("prompt failed: %w", err)
	}
	return selected, nil
}
