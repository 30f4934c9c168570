package handler

import (
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arturoeanton/soundgate/internal/adapter/backend"
	"github.com/arturoeanton/soundgate/internal/adapter/store"
	"github.com/arturoeanton/soundgate/internal/domain"
	"github.com/arturoeanton/soundgate/internal/middleware"
	"github.com/arturoeanton/soundgate/internal/platform"
	"github.com/arturoeanton/soundgate/internal/service"
	"github.com/arturoeanton/soundgate/pkg/config"
)

// startDevBackend serves the handlers over a real listener, with Redis
// sessions on miniredis and in-memory users, documents and files.
func startDevBackend(t *testing.T) string {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	identity := service.NewIdentityService(newMemUsers(), store.NewRedisSessionStore(rdb), time.Hour)

	app := fiber.New()
	v1 := app.Group("/v1", middleware.SessionMiddleware(identity))
	RegisterHealth(v1, "e2e")
	NewAccountHandler(identity, nil).Register(v1)
	NewDatabasesHandler(newMemDocs(), nil).Register(v1)
	NewStorageHandler(newMemFiles(), nil).Register(v1)

	srv := httptest.NewServer(adaptor.FiberApp(app))
	t.Cleanup(srv.Close)
	return srv.URL + "/v1"
}

func clientFor(t *testing.T, endpoint string, kind platform.Kind) (*backend.Handle, *config.Config) {
	t.Helper()
	cfg := &config.Config{
		Endpoint:            endpoint,
		ProjectID:           "proj",
		BundleID:            "com.soundgate.app",
		DatabaseID:          "db",
		TicketsCollectionID: "tickets",
		MusicTracksBucketID: "tracks",
		RequestTimeout:      5 * time.Second,
	}
	h, err := backend.NewFactory(cfg, backend.Options{Probe: platform.Fixed(kind)}).Instance()
	require.NoError(t, err)
	return h, cfg
}

func TestSessionLifecycleAgainstDevBackend(t *testing.T) {
	endpoint := startDevBackend(t)

	for _, kind := range []platform.Kind{platform.Browser, platform.Native} {
		t.Run(string(kind), func(t *testing.T) {
			ctx := context.Background()
			h, _ := clientFor(t, endpoint, kind)
			m := service.NewSessionManager(h.Account())

			assert.Equal(t, domain.AuthAnonymous, m.Start(ctx).Status)

			email := string(kind) + "@b.com"
			_, err := m.SignUp(ctx, email, "secret123", "A")
			require.NoError(t, err)
			st := m.State()
			require.Equal(t, domain.AuthAuthenticated, st.Status)
			assert.Equal(t, email, st.User.Email)

			// a fresh manager on the same handle restores the session
			restored := service.NewSessionManager(h.Account()).Start(ctx)
			assert.Equal(t, domain.AuthAuthenticated, restored.Status)
			assert.Equal(t, st.User.ID, restored.User.ID)

			require.NoError(t, m.SignOut(ctx))
			assert.Equal(t, domain.AuthAnonymous, m.State().Status)
			assert.Equal(t, domain.AuthAnonymous, service.NewSessionManager(h.Account()).Start(ctx).Status)

			_, err = m.SignIn(ctx, email, "wrong-password")
			require.Error(t, err)
			assert.Equal(t, domain.AuthAnonymous, m.State().Status)
		})
	}
}

func TestUploadAndTicketsAgainstDevBackend(t *testing.T) {
	ctx := context.Background()
	endpoint := startDevBackend(t)
	h, cfg := clientFor(t, endpoint, platform.Native)

	m := service.NewSessionManager(h.Account())
	_, err := m.SignUp(ctx, "a@b.com", "secret123", "A")
	require.NoError(t, err)

	p := filepath.Join(t.TempDir(), "song.mp3")
	require.NoError(t, os.WriteFile(p, []byte("ID3 audio"), 0o600))

	uploads := service.NewUploadService(h.Storage(), nil, platform.Native)
	viewURL, err := uploads.Upload(ctx, cfg.MusicTracksBucketID, domain.Asset{URI: p})
	require.NoError(t, err)
	assert.Contains(t, viewURL, endpoint+"/storage/buckets/tracks/files/")

	list, err := h.Storage().ListFiles(ctx, cfg.MusicTracksBucketID)
	require.NoError(t, err)
	require.Len(t, list.Files, 1)
	assert.Equal(t, "audio/mpeg", list.Files[0].MimeType)
	assert.Equal(t, "song.mp3", list.Files[0].Name)

	tickets := service.NewTicketService(h.Databases(), cfg)
	_, err = tickets.Create(ctx, service.NewTicket{Name: "VIP", Event: "Jazz Night", Prices: [3]float64{10, 20, 30}})
	require.NoError(t, err)

	found, err := tickets.Search(ctx, "jazz")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, []float64{10, 20, 30}, found[0].Price)
	assert.Equal(t, 100, found[0].AvailableTickets)
}
