package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Google       GoogleOAuthConfig
	FeatureFlags FeatureFlagsConfig
	GCP          GCPConfig
	GCS          GCSConfig
	Media        MediaConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"DISTROHUB_APP_ENV" required:"true"`
	Port         string `envconfig:"DISTROHUB_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"DISTROHUB_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"DISTROHUB_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"DISTROHUB_DB_DSN"`
	Driver string `envconfig:"DISTROHUB_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"DISTROHUB_DB_HOST"`
	Port     int    `envconfig:"DISTROHUB_DB_PORT" default:"5432"`
	User     string `envconfig:"DISTROHUB_DB_USER"`
	Password string `envconfig:"DISTROHUB_DB_PASSWORD"`
	Name     string `envconfig:"DISTROHUB_DB_NAME"`
	SSLMode  string `envconfig:"DISTROHUB_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"DISTROHUB_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"DISTROHUB_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"DISTROHUB_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"DISTROHUB_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"DISTROHUB_REDIS_URL" required:"true"`
	Address      string        `envconfig:"DISTROHUB_REDIS_ADDR"`
	Password     string        `envconfig:"DISTROHUB_REDIS_PASSWORD"`
	DB           int           `envconfig:"DISTROHUB_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"DISTROHUB_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"DISTROHUB_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"DISTROHUB_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"DISTROHUB_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"DISTROHUB_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"DISTROHUB_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"DISTROHUB_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"DISTROHUB_JWT_EXPIRATION_MINUTES" default:"60"`
	RefreshTokenTTLMinutes int    `envconfig:"DISTROHUB_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type GoogleOAuthConfig struct {
	ClientID     string `envconfig:"DISTROHUB_GOOGLE_CLIENT_ID"`
	ClientSecret string `envconfig:"DISTROHUB_GOOGLE_CLIENT_SECRET"`
	RedirectURL  string `envconfig:"DISTROHUB_GOOGLE_REDIRECT_URL"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"DISTROHUB_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"DISTROHUB_AUTO_MIGRATE" default:"false"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"DISTROHUB_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"DISTROHUB_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"DISTROHUB_GOOGLE_APPLICATION_CREDENTIALS"`
}

type GCSConfig struct {
	BucketName        string        `envconfig:"DISTROHUB_GCS_BUCKET_NAME" required:"true"`
	UploadURLExpiry   time.Duration `envconfig:"DISTROHUB_GCS_UPLOAD_URL_EXPIRY" default:"1h"`
	DownloadURLExpiry time.Duration `envconfig:"DISTROHUB_GCS_DOWNLOAD_URL_EXPIRY" default:"1h"`
}

// MediaConfig carries the upload validation rules. Artwork must be an exact
// square of ArtworkDimensionPx; audio is capped at AudioMaxMB per track.
type MediaConfig struct {
	ArtworkMaxMB       int `envconfig:"DISTROHUB_MEDIA_ARTWORK_MAX_MB" default:"10"`
	ArtworkDimensionPx int `envconfig:"DISTROHUB_MEDIA_ARTWORK_DIMENSION_PX" default:"3000"`
	AudioMaxMB         int `envconfig:"DISTROHUB_MEDIA_AUDIO_MAX_MB" default:"200"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if strings.EqualFold(db.Driver, "sqlite") {
		return fmt.Errorf("%s is required when driver is sqlite", EnvDBDSN)
	}

	missing := []string{}
	values := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range requiredDBEnvVars {
		if values[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}

	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
