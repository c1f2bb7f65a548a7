package api

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/require"

	"github.com/guildhallapp/guildhall-server/internal/auth"
	"github.com/guildhallapp/guildhall-server/internal/avatar"
	"github.com/guildhallapp/guildhall-server/internal/config"
	"github.com/guildhallapp/guildhall-server/internal/media/images"
	"github.com/guildhallapp/guildhall-server/internal/search"
	"github.com/guildhallapp/guildhall-server/internal/service"
	"github.com/guildhallapp/guildhall-server/internal/sse"
	"github.com/guildhallapp/guildhall-server/internal/store"
)

// testEnvelope mirrors the response envelope for decoding in tests.
type testEnvelope[T any] struct {
	V       int    `json:"v"`
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Error   string `json:"error"`
}

// testServer wraps the API server for handler testing.
type testServer struct {
	*Server
	api     humatest.TestAPI
	store   *store.Store
	overlay *avatar.OverlayStore
	cleanup func()
}

// setupTestServer creates a fully wired API server on temporary storage.
func setupTestServer(t *testing.T) *testServer {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "guildhall-api-test-*")
	require.NoError(t, err)

	dbPath := filepath.Join(tmpDir, "test.db")
	st, err := store.New(dbPath, nil, store.NewNoopEmitter())
	require.NoError(t, err)

	cfg := &config.Config{
		Server: config.ServerConfig{
			Name:         "Test Server",
			PublicOrigin: "http://localhost:3000",
		},
		Auth: config.AuthConfig{
			AccessTokenDuration:  15 * time.Minute,
			RefreshTokenDuration: 30 * 24 * time.Hour,
		},
	}

	authKey, err := auth.LoadOrGenerateKey(tmpDir)
	require.NoError(t, err)
	cfg.Auth.AccessTokenKey = authKey

	tokenService, err := auth.NewTokenService(
		hex.EncodeToString(authKey),
		cfg.Auth.AccessTokenDuration,
		cfg.Auth.RefreshTokenDuration,
	)
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	memberIndex, err := search.NewMemberIndex(search.Options{
		DataPath: tmpDir,
		Logger:   logger,
	})
	require.NoError(t, err)
	st.SetSearchIndexer(memberIndex)

	avatarStorage, err := images.NewStorage(tmpDir)
	require.NoError(t, err)
	processor := images.NewProcessor(5*1024*1024, logger)
	resolver := avatar.NewResolver(cfg.Server.PublicOrigin)
	overlay := avatar.NewOverlayStore()
	normalizer := avatar.NewNormalizer(overlay)

	sseManager := sse.NewManager(logger)
	sseHandler := sse.NewHandler(sseManager, logger)
	registrationBroadcaster := sse.NewRegistrationBroadcaster(logger)
	registrationHandler := sse.NewRegistrationStatusHandler(registrationBroadcaster, logger)

	sessionService := service.NewSessionService(st, tokenService, logger)
	instanceService := service.NewInstanceService(st, logger, cfg)
	authService := service.NewAuthService(st, tokenService, sessionService, instanceService, overlay, logger)
	avatarService := service.NewAvatarService(st, avatarStorage, processor, resolver, normalizer, overlay, sseManager, logger)
	rosterService := service.NewRosterService(st, overlay, sseManager, logger)
	memberService := service.NewMemberService(st, memberIndex, avatarService, logger)
	adminService := service.NewAdminService(st, overlay, logger)
	adminService.SetRegistrationNotifier(registrationBroadcaster)

	services := &Services{
		Instance: instanceService,
		Auth:     authService,
		Session:  sessionService,
		Avatar:   avatarService,
		Roster:   rosterService,
		Member:   memberService,
		Admin:    adminService,
	}

	s := NewServer(st, services, avatarStorage, memberIndex, sseManager, sseHandler, registrationHandler, logger)

	_, err = services.Instance.InitializeInstance(context.Background())
	require.NoError(t, err)

	cleanup := func() {
		_ = memberIndex.Close()
		_ = st.Close()
		_ = os.RemoveAll(tmpDir)
	}

	return &testServer{
		Server:  s,
		api:     humatest.Wrap(t, s.api),
		store:   st,
		overlay: overlay,
		cleanup: cleanup,
	}
}

// createTestUserAndLogin runs initial setup and returns the access token.
func (ts *testServer) createTestUserAndLogin(t *testing.T) string {
	t.Helper()

	resp := ts.api.Post("/api/v1/auth/setup", map[string]any{
		"email":        "admin@example.com",
		"password":     "SecurePassword123!",
		"display_name": "Admin User",
	})
	require.Equal(t, http.StatusOK, resp.Code)

	var envelope testEnvelope[AuthResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	require.NotEmpty(t, envelope.Data.AccessToken)

	return envelope.Data.AccessToken
}
