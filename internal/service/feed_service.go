package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/arturoeanton/soundgate/internal/domain"
	"github.com/arturoeanton/soundgate/internal/port"
	"github.com/arturoeanton/soundgate/pkg/config"
)

// ReelsPageSize is the number of files fetched per feed page.
const ReelsPageSize = 10

// FeedService pages through the submitted-reels bucket.
type FeedService struct {
	storage port.Storage
	cfg     *config.Config
}

// NewFeedService creates a feed service.
func NewFeedService(storage port.Storage, cfg *config.Config) *FeedService {
	return &FeedService{storage: storage, cfg: cfg}
}

// Page returns the playable videos of page (0-based). Non-video files in the
// bucket are skipped, so a page may hold fewer than ReelsPageSize reels.
func (s *FeedService) Page(ctx context.Context, page int) ([]domain.Reel, error) {
	if page < 0 {
		return nil, port.Wrap(port.KindInvalidArgument, "feed.page", "page must not be negative", port.ErrInvalidArgument)
	}
	bucket := s.cfg.ReelsBucketID
	list, err := s.storage.ListFiles(ctx, bucket, port.Limit(ReelsPageSize), port.Offset(page*ReelsPageSize))
	if err != nil {
		return nil, fmt.Errorf("list reels: %w", err)
	}

	reels := make([]domain.Reel, 0, len(list.Files))
	for _, f := range list.Files {
		if !strings.HasPrefix(f.MimeType, "video/") {
			continue
		}
		reels = append(reels, domain.Reel{
			ID:       f.ID,
			Name:     f.Name,
			MimeType: f.MimeType,
			URL:      s.storage.GetFileView(bucket, f.ID),
		})
	}
	return reels, nil
}
