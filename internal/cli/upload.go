package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arturoeanton/soundgate/internal/domain"
	"github.com/arturoeanton/soundgate/internal/port"
)

func newUploadCmd(a *app) *cobra.Command {
	var bucket, file, kind string
	cmd := &cobra.Command{
		Use:   "upload",
		Short: "Upload a file and print its view URL",
		Long: `Upload a file to a bucket. Without --file a picker is shown.
--bucket takes a bucket id or one of: covers, tracks, reels.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := validKind(kind); err != nil {
				return err
			}
			uploads, err := a.uploads()
			if err != nil {
				return err
			}
			bucketID := a.bucket(bucket)
			mediaKind := domain.MediaKind(kind)

			if file == "" {
				url, ok, err := uploads.PickAndUpload(cmd.Context(), bucketID, mediaKind)
				if err != nil {
					return err
				}
				if !ok {
					printWarn(a.out, "No file selected.")
					return nil
				}
				printSuccess(a.out, "Upload complete", url)
				return nil
			}

			url, err := uploads.Upload(cmd.Context(), bucketID, domain.Asset{URI: file})
			if err != nil {
				return err
			}
			printSuccess(a.out, "Upload complete", url)
			return nil
		},
	}
	cmd.Flags().StringVar(&bucket, "bucket", "tracks", "bucket id or covers|tracks|reels")
	cmd.Flags().StringVar(&file, "file", "", "local file to upload")
	cmd.Flags().StringVar(&kind, "kind", string(domain.MediaAudio), "picker kind: image|video|audio|document")
	return cmd
}

func validKind(kind string) error {
	switch domain.MediaKind(kind) {
	case domain.MediaImage, domain.MediaVideo, domain.MediaAudio, domain.MediaDocument:
		return nil
	}
	return port.NewError(port.KindInvalidArgument, "cli.upload", fmt.Sprintf("unknown kind %q", kind))
}
