package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"content-dashboard/pkg/config"
	"content-dashboard/pkg/handlers"
	"content-dashboard/pkg/i18n"
	"content-dashboard/pkg/logging"
	"content-dashboard/pkg/services"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/securecookie"
	"github.com/klauspost/compress/gzhttp"
	"github.com/sirupsen/logrus"
)

func main() {
	// Initialize config
	if err := config.Init(); err != nil {
		logrus.WithError(err).Fatal("configuration")
	}
	log, err := logging.New(os.Stderr, config.LogLevel, config.LogFormat)
	if err != nil {
		logrus.WithError(err).Fatal("logger")
	}
	if err := run(log); err != nil {
		log.WithError(err).Fatal("dashboard stopped")
	}
}

func run(log *logrus.Logger) error {
	dashboard, err := config.LoadDashboard(config.DashboardConfig)
	if err != nil {
		return err
	}
	catalog, err := i18n.New()
	if err != nil {
		return err
	}

	gw, auth, err := newGateway(log)
	if err != nil {
		return err
	}

	pickerDirs := dashboard.PickerDirs
	if len(pickerDirs) == 0 {
		pickerDirs = []string{config.ImagesRoot}
	}
	gallery := services.NewGallery(gw, services.GalleryOptions{
		Root:       config.ImagesRoot,
		PickerDirs: pickerDirs,
		PageSize:   config.GalleryPageSize,
		MaxBytes:   int64(config.UploadMaxMB) << 20,
		Links: services.ImageLinks{
			PublicDir:  config.PublicDir,
			RawBaseURL: config.RawBaseURL,
			ProxyPath:  "/images/raw",
			Proxy:      config.ProxyImage,
		},
	}, log)

	h, err := handlers.New(handlers.Options{
		Content:   services.NewContentService(gw, dashboard, log),
		Gallery:   gallery,
		Dashboard: dashboard,
		Catalog:   catalog,
		Locale:    config.UILocale,
		DataDir:   config.DataDir,
		MaxUpload: int64(config.UploadMaxMB) << 20,
		Auth:      auth,
		Logger:    log,
	})
	if err != nil {
		return err
	}

	secret := []byte(config.SessionSecret)
	if len(secret) == 0 {
		log.Warn("SESSION_SECRET is not set; sessions end with this process")
		secret = securecookie.GenerateRandomKey(32)
	}
	if log.IsLevelEnabled(logrus.DebugLevel) {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	r, err := handlers.NewRouter(h, secret)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              config.ListenAddr,
		Handler:           gzhttp.GzipHandler(r),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.WithFields(logrus.Fields{"addr": config.ListenAddr, "backend": config.StoreBackend}).Info("dashboard listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// newGateway opens the configured backing store and, when GitHub login is
// enabled, the check applied to signed-in users.
func newGateway(log *logrus.Logger) (services.Gateway, *handlers.Auth, error) {
	var (
		gw       services.Gateway
		identity *services.GitHubGateway
		err      error
	)
	switch config.StoreBackend {
	case config.BackendLocal:
		var opts []services.LocalOption
		opts = append(opts, services.WithLocalLogger(log))
		if config.GitCommit {
			opts = append(opts, services.WithGitRecorder(&services.GitRecorder{
				Dir:       config.RepoPath,
				UserName:  config.GitUserName,
				UserEmail: config.GitUserEmail,
				Branch:    config.RepoBranch,
				Remote:    config.GitRemote,
				PushToken: config.GitPushToken,
			}))
		}
		gw, err = services.NewLocalGateway(config.RepoPath, opts...)
		if err != nil {
			return nil, nil, err
		}
		// Only used to resolve logins, which need no repository.
		identity, err = services.NewGitHubGateway("", config.GitHubAPIURL, "", "", "", services.WithGitHubLogger(log))
	default:
		identity, err = services.NewGitHubGateway(config.GitHubToken, config.GitHubAPIURL,
			config.RepoOwner, config.RepoName, config.RepoBranch,
			services.WithCommitter(config.GitUserName, config.GitUserEmail),
			services.WithGitHubLogger(log))
		gw = identity
	}
	if err != nil {
		return nil, nil, err
	}

	if !config.LoginRequired() {
		return gw, nil, nil
	}
	auth := &handlers.Auth{
		OAuth: config.OauthConf,
		Verify: func(ctx context.Context, token string) (string, error) {
			return identity.Editor(ctx, token, config.AllowedUsers)
		},
	}
	return gw, auth, nil
}
