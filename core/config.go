package core

import (
	"log"
	"net"
	"net/mail"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	Config struct {
		AppName          string
		Env              string // DEV (local; default), TEST, QA, PROD
		Build            string
		Debug            bool
		TestMode         bool
		SecretKey        string
		FrontendBaseURL  string
		DefaultFromEmail mail.Address
		RollbarToken     string
		SendgridAPIKey   string

		Server   ServerConfig
		Database DatabaseConfig
		Storage  StorageConfig
		Google   GoogleConfig
		Payments PaymentsConfig
	}

	ServerConfig struct {
		Host                      string
		Address                   string
		DebugAddress              string
		ReadTimeout               time.Duration
		WriteTimeout              time.Duration
		ShutdownTimeout           time.Duration
		JWTExpirationDelta        time.Duration
		JWTRefreshExpirationDelta time.Duration
		PasswordResetTimeoutDelta time.Duration
	}

	DatabaseConfig struct {
		Engine        string
		Host          string
		Port          int
		Name          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		DisableTLS    bool
	}

	StorageConfig struct {
		MediaDir      string
		MaxUploadSize int64 // bytes
	}

	GoogleConfig struct {
		ClientID        string
		ClientSecret    string
		RedirectURL     string
		AllowedDomain   string // hosted domain restriction for OAuth logins; empty allows any
		CredentialsFile string // service account used for Sheets
		SpreadsheetID   string
		SyncSchedule    string // cron spec; empty disables the periodic sync
	}

	// PaymentsConfig holds the figures used to compute teacher payments.
	PaymentsConfig struct {
		TarifaInterno           float64
		TarifaExterno           float64
		TarifaInternoEnfermeria float64
		TarifaExternoEnfermeria float64
		TasaRetencion           float64
		UmbralRetencion         float64
	}
)

func (dc DatabaseConfig) Address() string {
	return net.JoinHostPort(dc.Host, strconv.Itoa(dc.Port))
}

// NewConfig loads the configuration from defaults, `config/.env.<env>` (if it exists) and the environment.
// Environment variables are prefixed by the current env, eg. DEV_DATABASE_NAME.
func NewConfig() *Config {
	v := viper.New()
	v.SetTypeByDefaultValue(true)

	env := strings.ToUpper(os.Getenv("ENV"))
	if env == "" {
		env = "DEV"
	}

	// defaults
	v.SetDefault("debug", env == "DEV" || env == "TEST")
	v.SetDefault("appName", "SISCON")
	v.SetDefault("build", "develop")
	v.SetDefault("secretKey", "x8$k-u2!posgrado)siscon=7qz&w3(h#pl9@t5^v1rmn0eb")
	v.SetDefault("frontendBaseURL", "http://localhost:5173")
	v.SetDefault("defaultFromEmail", "noreply@localhost")
	v.SetDefault("rollbarToken", "")
	v.SetDefault("sendgridAPIKey", "")

	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.address", ":8000")
	v.SetDefault("server.debugAddress", ":4000")
	v.SetDefault("server.readTimeout", 5*time.Second)
	v.SetDefault("server.writeTimeout", 30*time.Second)
	v.SetDefault("server.shutdownTimeout", 5*time.Second)
	v.SetDefault("server.jwtExpirationDelta", 8*time.Hour)
	v.SetDefault("server.jwtRefreshExpirationDelta", 7*24*time.Hour)
	v.SetDefault("server.passwordResetTimeoutDelta", 3*24*time.Hour)

	v.SetDefault("database.engine", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "siscon")
	v.SetDefault("database.user", "siscon")
	v.SetDefault("database.password", "siscon")
	v.SetDefault("database.adminUser", "postgres")
	v.SetDefault("database.adminPassword", "postgres")
	v.SetDefault("database.disableTLS", true)

	v.SetDefault("storage.mediaDir", "media")
	v.SetDefault("storage.maxUploadSize", 10<<20)

	v.SetDefault("google.clientID", "")
	v.SetDefault("google.clientSecret", "")
	v.SetDefault("google.redirectURL", "http://localhost:8000/api/auth/google/callback")
	v.SetDefault("google.allowedDomain", "")
	v.SetDefault("google.credentialsFile", "")
	v.SetDefault("google.spreadsheetID", "")
	v.SetDefault("google.syncSchedule", "0 */6 * * *")

	v.SetDefault("payments.tarifaInterno", 80.0)
	v.SetDefault("payments.tarifaExterno", 100.0)
	v.SetDefault("payments.tarifaInternoEnfermeria", 90.0)
	v.SetDefault("payments.tarifaExternoEnfermeria", 110.0)
	v.SetDefault("payments.tasaRetencion", 0.08)
	v.SetDefault("payments.umbralRetencion", 1500.0)

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join("config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}

	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	fromEmail, err := mail.ParseAddress(v.GetString("defaultFromEmail"))
	if err != nil {
		log.Fatalf("config.defaultFromEmail: %v", err)
	}

	return &Config{
		AppName:          v.GetString("appName"),
		Env:              env,
		Build:            v.GetString("build"),
		Debug:            v.GetBool("debug"),
		TestMode:         env == "TEST",
		SecretKey:        v.GetString("secretKey"),
		FrontendBaseURL:  strings.TrimSuffix(v.GetString("frontendBaseURL"), "/"),
		DefaultFromEmail: *fromEmail,
		RollbarToken:     v.GetString("rollbarToken"),
		SendgridAPIKey:   v.GetString("sendgridAPIKey"),
		Server: ServerConfig{
			Host:                      v.GetString("server.host"),
			Address:                   v.GetString("server.address"),
			DebugAddress:              v.GetString("server.debugAddress"),
			ReadTimeout:               v.GetDuration("server.readTimeout"),
			WriteTimeout:              v.GetDuration("server.writeTimeout"),
			ShutdownTimeout:           v.GetDuration("server.shutdownTimeout"),
			JWTExpirationDelta:        v.GetDuration("server.jwtExpirationDelta"),
			JWTRefreshExpirationDelta: v.GetDuration("server.jwtRefreshExpirationDelta"),
			PasswordResetTimeoutDelta: v.GetDuration("server.passwordResetTimeoutDelta"),
		},
		Database: DatabaseConfig{
			Engine:        v.GetString("database.engine"),
			Host:          v.GetString("database.host"),
			Port:          v.GetInt("database.port"),
			Name:          v.GetString("database.name"),
			User:          v.GetString("database.user"),
			Password:      v.GetString("database.password"),
			AdminUser:     v.GetString("database.adminUser"),
			AdminPassword: v.GetString("database.adminPassword"),
			DisableTLS:    v.GetBool("database.disableTLS"),
		},
		Storage: StorageConfig{
			MediaDir:      v.GetString("storage.mediaDir"),
			MaxUploadSize: v.GetInt64("storage.maxUploadSize"),
		},
		Google: GoogleConfig{
			ClientID:        v.GetString("google.clientID"),
			ClientSecret:    v.GetString("google.clientSecret"),
			RedirectURL:     v.GetString("google.redirectURL"),
			AllowedDomain:   v.GetString("google.allowedDomain"),
			CredentialsFile: v.GetString("google.credentialsFile"),
			SpreadsheetID:   v.GetString("google.spreadsheetID"),
			SyncSchedule:    v.GetString("google.syncSchedule"),
		},
		Payments: PaymentsConfig{
			TarifaInterno:           v.GetFloat64("payments.tarifaInterno"),
			TarifaExterno:           v.GetFloat64("payments.tarifaExterno"),
			TarifaInternoEnfermeria: v.GetFloat64("payments.tarifaInternoEnfermeria"),
			TarifaExternoEnfermeria: v.GetFloat64("payments.tarifaExternoEnfermeria"),
			TasaRetencion:           v.GetFloat64("payments.tasaRetencion"),
			UmbralRetencion:         v.GetFloat64("payments.umbralRetencion"),
		},
	}
}

// NewTestConfig returns a Config suitable for tests; it never reads the environment.
func NewTestConfig() *Config {
	from, _ := mail.ParseAddress("noreply@localhost")
	return &Config{
		AppName:          "SISCON",
		Env:              "TEST",
		Build:            "test",
		TestMode:         true,
		SecretKey:        "secret",
		FrontendBaseURL:  "http://localhost:5173",
		DefaultFromEmail: *from,
		Server: ServerConfig{
			Host:                      "localhost",
			ShutdownTimeout:           time.Second,
			JWTExpirationDelta:        10 * time.Minute,
			JWTRefreshExpirationDelta: 4 * time.Hour,
			PasswordResetTimeoutDelta: 3 * 24 * time.Hour,
		},
		Storage: StorageConfig{
			MediaDir:      os.TempDir(),
			MaxUploadSize: 1 << 20,
		},
		Payments: PaymentsConfig{
			TarifaInterno:           80,
			TarifaExterno:           100,
			TarifaInternoEnfermeria: 90,
			TarifaExternoEnfermeria: 110,
			TasaRetencion:           0.08,
			UmbralRetencion:         1500,
		},
	}
}
