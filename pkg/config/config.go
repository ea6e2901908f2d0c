package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
)

const (
	BackendGitHub = "github"
	BackendLocal  = "local"
)

var (
	// Target repository
	RepoOwner  = ""
	RepoName   = ""
	RepoBranch = "main"

	// Backing store
	StoreBackend = BackendGitHub
	GitHubToken  = ""
	GitHubAPIURL = ""
	RepoPath     = "./repo"

	// Git settings for the local store
	GitCommit    = false
	GitUserEmail = "bot@dashboard.local"
	GitUserName  = "Content Dashboard"
	GitRemote    = "origin"
	GitPushToken = ""

	// Content layout
	DataDir    = "data"
	ImagesRoot = "public/images"
	PublicDir  = "public"
	RawBaseURL = ""
	ProxyImage = false

	// Server
	ListenAddr      = ":8080"
	SessionSecret   = ""
	UILocale        = "ar"
	LogLevel        = "info"
	LogFormat       = "text"
	DashboardConfig = ""
	UploadMaxMB     = 10
	GalleryPageSize = 48

	// Login gate
	AllowedUsers []string
)

var OauthConf *oauth2.Config

type settings struct {
	Backend    string `validate:"oneof=github local"`
	Owner      string `validate:"required_if=Backend github"`
	Repo       string `validate:"required_if=Backend github"`
	Branch     string `validate:"required"`
	Token      string `validate:"required_if=Backend github"`
	APIURL     string `validate:"omitempty,url"`
	RepoPath   string `validate:"required_if=Backend local"`
	ImagesRoot string `validate:"required"`
	RawBaseURL string `validate:"omitempty,url"`
	Locale     string `validate:"oneof=ar en"`
	LogLevel   string `validate:"oneof=trace debug info warn warning error fatal panic"`
	LogFormat  string `validate:"oneof=text json"`
	UploadMax  int    `validate:"gt=0"`
	PageSize   int    `validate:"gt=0,lte=500"`
	Secret     string `validate:"omitempty,min=32"`
}

// Init loads .env and the environment into the package settings.
func Init() error {
	if err := godotenv.Load(); err != nil {
		logrus.Debug("no .env file loaded")
	}

	// Helper to get env with default
	getEnv := func(key, fallback string) string {
		if v := os.Getenv(key); v != "" {
			return v
		}
		return fallback
	}
	getInt := func(key string, fallback int) (int, error) {
		v := os.Getenv(key)
		if v == "" {
			return fallback, nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("%s: %w", key, err)
		}
		return n, nil
	}
	getBool := func(key string) bool {
		b, _ := strconv.ParseBool(os.Getenv(key))
		return b
	}

	appURL := getEnv("APP_URL", "http://localhost:8080")
	redirectURL := getEnv("GITHUB_REDIRECT_URL", appURL+"/auth/callback")

	RepoOwner = getEnv("TARGET_REPO_OWNER", "")
	RepoName = getEnv("TARGET_REPO_NAME", "")
	RepoBranch = getEnv("TARGET_REPO_BRANCH", "main")

	StoreBackend = strings.ToLower(getEnv("STORE_BACKEND", BackendGitHub))
	GitHubToken = getEnv("GITHUB_TOKEN", "")
	GitHubAPIURL = getEnv("GITHUB_API_URL", "")
	RepoPath = getEnv("REPO_PATH", "./repo")

	GitCommit = getBool("GIT_COMMIT")
	GitUserEmail = getEnv("GIT_USER_EMAIL", "bot@dashboard.local")
	GitUserName = getEnv("GIT_USER_NAME", "Content Dashboard")
	GitRemote = getEnv("GIT_REMOTE", "origin")
	GitPushToken = getEnv("GIT_PUSH_TOKEN", "")

	DataDir = strings.Trim(getEnv("DATA_DIR", "data"), "/")
	ImagesRoot = strings.Trim(getEnv("IMAGES_ROOT", "public/images"), "/")
	PublicDir = strings.Trim(getEnv("PUBLIC_DIR", "public"), "/")
	ProxyImage = getBool("PROXY_IMAGES")
	RawBaseURL = getEnv("RAW_BASE_URL", "")
	if RawBaseURL == "" && StoreBackend == BackendGitHub && RepoOwner != "" && RepoName != "" {
		RawBaseURL = fmt.Sprintf("https://raw.githubusercontent.com/%s/%s/%s/", RepoOwner, RepoName, RepoBranch)
	}
	if RawBaseURL != "" && !strings.HasSuffix(RawBaseURL, "/") {
		RawBaseURL += "/"
	}

	ListenAddr = getEnv("LISTEN_ADDR", ":8080")
	SessionSecret = getEnv("SESSION_SECRET", "")
	UILocale = strings.ToLower(getEnv("UI_LOCALE", "ar"))
	LogLevel = strings.ToLower(getEnv("LOG_LEVEL", "info"))
	LogFormat = strings.ToLower(getEnv("LOG_FORMAT", "text"))
	DashboardConfig = getEnv("DASHBOARD_CONFIG", "")

	var err error
	if UploadMaxMB, err = getInt("UPLOAD_MAX_MB", 10); err != nil {
		return err
	}
	if GalleryPageSize, err = getInt("GALLERY_PAGE_SIZE", 48); err != nil {
		return err
	}

	AllowedUsers = nil
	for _, u := range strings.Split(os.Getenv("ALLOWED_USERS"), ",") {
		if u = strings.TrimSpace(u); u != "" {
			AllowedUsers = append(AllowedUsers, u)
		}
	}

	OauthConf = nil
	if id := os.Getenv("GITHUB_CLIENT_ID"); id != "" {
		OauthConf = &oauth2.Config{
			ClientID:     id,
			ClientSecret: os.Getenv("GITHUB_CLIENT_SECRET"),
			Scopes:       []string{"read:user"},
			Endpoint:     github.Endpoint,
			RedirectURL:  redirectURL,
		}
	}

	return Validate()
}

// Validate checks the loaded settings.
func Validate() error {
	s := settings{
		Backend:    StoreBackend,
		Owner:      RepoOwner,
		Repo:       RepoName,
		Branch:     RepoBranch,
		Token:      GitHubToken,
		APIURL:     GitHubAPIURL,
		RepoPath:   RepoPath,
		ImagesRoot: ImagesRoot,
		RawBaseURL: RawBaseURL,
		Locale:     UILocale,
		LogLevel:   LogLevel,
		LogFormat:  LogFormat,
		UploadMax:  UploadMaxMB,
		PageSize:   GalleryPageSize,
		Secret:     SessionSecret,
	}
	if err := validator.New().Struct(s); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if !strings.HasPrefix(ImagesRoot+"/", PublicDir+"/") && PublicDir != "" {
		return fmt.Errorf("invalid configuration: IMAGES_ROOT %s is not below PUBLIC_DIR %s", ImagesRoot, PublicDir)
	}
	// The local store has no repository permissions to check logins against.
	if OauthConf != nil && StoreBackend == BackendLocal && len(AllowedUsers) == 0 {
		return fmt.Errorf("invalid configuration: ALLOWED_USERS is required for GitHub login with the local store")
	}
	return nil
}

// LoginRequired reports whether the GitHub login gate is enabled.
func LoginRequired() bool {
	return OauthConf != nil
}
