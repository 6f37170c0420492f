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

type Config struct {
	AppName                   string
	Env                       string // DEV (local; default), TEST, QA, PROD
	Build                     string
	Debug                     bool
	TestMode                  bool
	SecretKey                 string
	RollbarToken              string
	SendgridAPIKey            string
	FrontendBaseURL           string
	PasswordResetTimeoutDelta time.Duration
	defaultFromEmail          string

	Server struct {
		Host                      string
		Address                   string
		DebugHost                 string
		ShutdownTimeout           time.Duration
		JWTExpirationDelta        time.Duration
		JWTRefreshExpirationDelta time.Duration
		RateLimit                 float64 // requests per second, per client IP
		RateBurst                 int
	}

	Database struct {
		Engine        string // postgres | inmem
		Host          string
		Port          int
		Name          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		DisableTLS    bool
	}

	Upload struct {
		Backend          string // local | gcs
		Dir              string
		Bucket           string
		CredentialsFile  string // GCS service account key; application default credentials when empty
		BaseURL          string
		MaxBytes         int64
		MaxFiles         int
		AllowedMIMETypes []string
	}

	Cart struct {
		Dir      string
		InMemory bool
		TTL      time.Duration // idle carts are dropped after TTL
	}

	Risk struct {
		BatchParallelism int
		ReportCacheTTL   time.Duration
	}
}

// DefaultFromEmail parses the configured sender address; a bare address is accepted.
func (conf *Config) DefaultFromEmail() mail.Address {
	if addr, err := mail.ParseAddress(conf.defaultFromEmail); err == nil {
		return *addr
	}
	return mail.Address{Name: conf.AppName, Address: conf.defaultFromEmail}
}

func (conf *Config) SetDefaultFromEmail(addr string) { conf.defaultFromEmail = addr }

// DBAddress returns the database "host:port".
func (conf *Config) DBAddress() string {
	return net.JoinHostPort(conf.Database.Host, strconv.Itoa(conf.Database.Port))
}

func NewConfig() *Config {
	v := viper.New()

	// defaults
	v.SetTypeByDefaultValue(true)
	v.SetDefault("debug", true)
	v.SetDefault("appName", "Belleza")
	v.SetDefault("build", "dev")
	v.SetDefault("secretKey", "k9!x2v$7pq+wlr#3m@c8d&z0yt^h5e*uab4n%6gfs1j(o)")
	v.SetDefault("rollbarToken", "")
	v.SetDefault("sendgridApiKey", "")
	v.SetDefault("defaultFromEmail", "Belleza <noreply@localhost>")
	v.SetDefault("frontendBaseUrl", "http://localhost:3000")
	v.SetDefault("passwordResetTimeoutDelta", 3*24*time.Hour)

	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.address", ":8000")
	v.SetDefault("server.debugHost", ":4000")
	v.SetDefault("server.shutdownTimeout", 5*time.Second)
	v.SetDefault("server.jwtExpirationDelta", 7*24*time.Hour)
	v.SetDefault("server.jwtRefreshExpirationDelta", 4*time.Hour)
	v.SetDefault("server.rateLimit", 1.0)
	v.SetDefault("server.rateBurst", 5)

	v.SetDefault("database.engine", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "belleza")
	v.SetDefault("database.user", "belleza")
	v.SetDefault("database.password", "belleza")
	v.SetDefault("database.adminUser", "postgres")
	v.SetDefault("database.adminPassword", "postgres")
	v.SetDefault("database.disableTls", true)

	v.SetDefault("upload.backend", "local")
	v.SetDefault("upload.dir", "uploads")
	v.SetDefault("upload.bucket", "")
	v.SetDefault("upload.credentialsFile", "")
	v.SetDefault("upload.baseUrl", "/uploads")
	v.SetDefault("upload.maxBytes", int64(10<<20))
	v.SetDefault("upload.maxFiles", 10)
	v.SetDefault("upload.allowedMimeTypes", []string{"image/jpeg", "image/png", "image/gif", "image/webp"})

	v.SetDefault("cart.dir", "data/carts")
	v.SetDefault("cart.inMemory", false)
	v.SetDefault("cart.ttl", 30*24*time.Hour)

	v.SetDefault("risk.batchParallelism", 8)
	v.SetDefault("risk.reportCacheTtl", 5*time.Minute)

	env := strings.ToUpper(os.Getenv("ENV"))
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
	}
	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(configDir(), ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	conf := &Config{
		AppName:                   v.GetString("appName"),
		Env:                       env,
		Build:                     v.GetString("build"),
		Debug:                     v.GetBool("debug"),
		TestMode:                  v.GetBool("testMode"),
		SecretKey:                 v.GetString("secretKey"),
		RollbarToken:              v.GetString("rollbarToken"),
		SendgridAPIKey:            v.GetString("sendgridApiKey"),
		FrontendBaseURL:           v.GetString("frontendBaseUrl"),
		PasswordResetTimeoutDelta: v.GetDuration("passwordResetTimeoutDelta"),
		defaultFromEmail:          v.GetString("defaultFromEmail"),
	}

	conf.Server.Host = v.GetString("server.host")
	conf.Server.Address = v.GetString("server.address")
	conf.Server.DebugHost = v.GetString("server.debugHost")
	conf.Server.ShutdownTimeout = v.GetDuration("server.shutdownTimeout")
	conf.Server.JWTExpirationDelta = v.GetDuration("server.jwtExpirationDelta")
	conf.Server.JWTRefreshExpirationDelta = v.GetDuration("server.jwtRefreshExpirationDelta")
	conf.Server.RateLimit = v.GetFloat64("server.rateLimit")
	conf.Server.RateBurst = v.GetInt("server.rateBurst")

	conf.Database.Engine = v.GetString("database.engine")
	conf.Database.Host = v.GetString("database.host")
	conf.Database.Port = v.GetInt("database.port")
	conf.Database.Name = v.GetString("database.name")
	conf.Database.User = v.GetString("database.user")
	conf.Database.Password = v.GetString("database.password")
	conf.Database.AdminUser = v.GetString("database.adminUser")
	conf.Database.AdminPassword = v.GetString("database.adminPassword")
	conf.Database.DisableTLS = v.GetBool("database.disableTls")

	conf.Upload.Backend = v.GetString("upload.backend")
	conf.Upload.Dir = v.GetString("upload.dir")
	conf.Upload.Bucket = v.GetString("upload.bucket")
	conf.Upload.CredentialsFile = v.GetString("upload.credentialsFile")
	conf.Upload.BaseURL = v.GetString("upload.baseUrl")
	conf.Upload.MaxBytes = v.GetInt64("upload.maxBytes")
	conf.Upload.MaxFiles = v.GetInt("upload.maxFiles")
	conf.Upload.AllowedMIMETypes = v.GetStringSlice("upload.allowedMimeTypes")

	conf.Cart.Dir = v.GetString("cart.dir")
	conf.Cart.InMemory = v.GetBool("cart.inMemory")
	conf.Cart.TTL = v.GetDuration("cart.ttl")

	conf.Risk.BatchParallelism = v.GetInt("risk.batchParallelism")
	conf.Risk.ReportCacheTTL = v.GetDuration("risk.reportCacheTtl")

	return conf
}

// configDir is where the .env.* files live; CONFIG_DIR overrides "./config".
func configDir() string {
	if dir := os.Getenv("CONFIG_DIR"); dir != "" {
		return dir
	}
	return "config"
}
