package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/arturoeanton/soundgate/internal/domain"
	"github.com/arturoeanton/soundgate/internal/port"
	"github.com/arturoeanton/soundgate/pkg/config"
)

// SubmissionService sends music tracks to radio stations.
type SubmissionService struct {
	db      port.Databases
	uploads *UploadService
	cfg     *config.Config
	newID   func() string
}

// NewSubmissionService creates a submission service.
func NewSubmissionService(db port.Databases, uploads *UploadService, cfg *config.Config) *SubmissionService {
	return &SubmissionService{db: db, uploads: uploads, cfg: cfg, newID: uuid.NewString}
}

// ListRadioStations returns every station that accepts submissions.
func (s *SubmissionService) ListRadioStations(ctx context.Context) ([]domain.RadioStation, error) {
	list, err := s.db.ListDocuments(ctx, s.cfg.DatabaseID, s.cfg.RadioStationsCollectionID)
	if err != nil {
		return nil, fmt.Errorf("list radio stations: %w", err)
	}
	stations := make([]domain.RadioStation, 0, len(list.Documents))
	for _, d := range list.Documents {
		stations = append(stations, domain.RadioStation{
			ID:        d.ID,
			Name:      d.String("name"),
			Email:     d.String("email"),
			Frequency: d.String("frequency"),
		})
	}
	return stations, nil
}

// ToggleStation adds email to the selection, or removes it if present.
func ToggleStation(selected []string, email string) []string {
	if i := slices.Index(selected, email); i >= 0 {
		return slices.Delete(slices.Clone(selected), i, i+1)
	}
	return append(slices.Clone(selected), email)
}

// UploadAssets uploads the artist avatar and the track in parallel.
func (s *SubmissionService) UploadAssets(ctx context.Context, avatar, track domain.Asset) (avatarURL, trackURL string, err error) {
	if track.MimeType == "" {
		track.MimeType = InferMimeType(track.Name)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		u, err := s.uploads.Upload(gctx, s.cfg.AlbumCoversBucketID, avatar)
		if err != nil {
			return fmt.Errorf("avatar: %w", err)
		}
		avatarURL = u
		return nil
	})
	g.Go(func() error {
		u, err := s.uploads.Upload(gctx, s.cfg.MusicTracksBucketID, track)
		if err != nil {
			return fmt.Errorf("track: %w", err)
		}
		trackURL = u
		return nil
	})
	if err := g.Wait(); err != nil {
		return "", "", err
	}
	return avatarURL, trackURL, nil
}

func validateSubmission(sub domain.TrackSubmission) error {
	var missing []string
	if strings.TrimSpace(sub.ArtistName) == "" {
		missing = append(missing, "artist name")
	}
	if strings.TrimSpace(sub.TrackTitle) == "" {
		missing = append(missing, "track title")
	}
	if sub.TrackURL == "" {
		missing = append(missing, "track upload")
	}
	if sub.AvatarURL == "" {
		missing = append(missing, "avatar upload")
	}
	if len(sub.SelectedStations) == 0 {
		missing = append(missing, "radio stations")
	}
	if len(missing) > 0 {
		return port.Wrap(port.KindInvalidArgument, "submission.submit",
			"missing "+strings.Join(missing, ", "), port.ErrIncompleteSubmission)
	}
	return nil
}

// Submit stores a complete submission. Nothing is written when a field is
// missing.
func (s *SubmissionService) Submit(ctx context.Context, sub domain.TrackSubmission) (*domain.TrackSubmission, error) {
	if err := validateSubmission(sub); err != nil {
		return nil, err
	}

	data := map[string]any{
		"artistName":              sub.ArtistName,
		"trackTitle":              sub.TrackTitle,
		"trackInfo":               sub.TrackInfo,
		"trackUrl":                sub.TrackURL,
		"avatarUrl":               sub.AvatarURL,
		"selectedRadioStationIds": sub.SelectedStations,
	}
	doc, err := s.db.CreateDocument(ctx, s.cfg.DatabaseID, s.cfg.MusicSubmissionsCollectionID, s.newID(), data)
	if err != nil {
		slog.Error("submission failed", "track", sub.TrackTitle, "error", err)
		return nil, fmt.Errorf("create submission: %w", err)
	}

	sub.ID = doc.ID
	slog.Info("submission received", "submission_id", doc.ID, "stations", len(sub.SelectedStations))
	return &sub, nil
}
