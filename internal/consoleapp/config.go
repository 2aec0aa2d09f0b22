package consoleapp

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/phillip-england/leavedesk/internal/envutil"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Addr          string `validate:"required"`
	APIBaseURL    string `validate:"required,url"`
	Env           string `validate:"oneof=development production"`
	SessionDir    string
	SessionSecret string `validate:"omitempty,min=12"`

	APITimeout          time.Duration `validate:"gt=0"`
	ExpiryRedirectDelay time.Duration `validate:"gte=0"`
	ReadTimeout         time.Duration `validate:"gt=0"`
	WriteTimeout        time.Duration `validate:"gt=0"`
	MaxUploadBytes      int64         `validate:"gt=0"`

	// Workspaces idle longer than IdleTimeout are dropped, and at most
	// MaxWorkspaces are held at once.
	IdleTimeout   time.Duration `validate:"gt=0"`
	MaxWorkspaces int           `validate:"gt=0"`
}

func DefaultConfigFromEnv() Config {
	return Config{
		Addr:                envutil.String("LEAVEDESK_ADDR", ":3000"),
		APIBaseURL:          envutil.String("API_BASE_URL", "http://localhost:8080"),
		Env:                 strings.ToLower(envutil.String("LEAVEDESK_ENV", EnvDevelopment)),
		SessionDir:          envutil.String("LEAVEDESK_SESSION_DIR", "data/sessions"),
		SessionSecret:       envutil.String("LEAVEDESK_SESSION_SECRET", ""),
		APITimeout:          envutil.Duration("LEAVEDESK_API_TIMEOUT", 8*time.Second),
		ExpiryRedirectDelay: envutil.Duration("LEAVEDESK_EXPIRY_REDIRECT_DELAY", 3*time.Second),
		ReadTimeout:         5 * time.Second,
		WriteTimeout:        30 * time.Second,
		MaxUploadBytes:      envutil.Int64("LEAVEDESK_MAX_UPLOAD_BYTES", 20<<20),
		IdleTimeout:         envutil.Duration("LEAVEDESK_IDLE_TIMEOUT", 12*time.Hour),
		MaxWorkspaces:       int(envutil.Int64("LEAVEDESK_MAX_WORKSPACES", 10000)),
	}
}

var validate = validator.New()

func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("invalid config: %s failed %q", verrs[0].Field(), verrs[0].Tag())
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	u, err := url.Parse(c.APIBaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid config: API base url %q must be absolute http(s)", c.APIBaseURL)
	}
	if c.Env == EnvProduction && c.SessionSecret == "" {
		return errors.New("invalid config: LEAVEDESK_SESSION_SECRET is required in production")
	}
	return nil
}

func (c Config) Production() bool { return c.Env == EnvProduction }
