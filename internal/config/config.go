package config

import (
	"fmt"
	"net/url"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/kr/pretty"
	"gopkg.in/validator.v2"
	"gopkg.in/yaml.v2"

	"crypto-graves/pkg/db"
)

const (
	zeroAddress          = "0x0000000000000000000000000000000000000000"
	defaultMaxUploadSize = 10 << 20
	defaultChainID       = 10143
)

// AppConfig holds all application-wide configurations.
type AppConfig struct {
	ServerPort         string    `yaml:"server_port" validate:"nonzero"`
	APIPrefix          string    `yaml:"api_prefix" validate:"regexp=^/"`
	LogLevel           string    `yaml:"log_level"`
	LogFormat          string    `yaml:"log_format"`
	Debug              bool      `yaml:"debug"`
	DB                 db.Config `yaml:"db"`
	Chain              Chain     `yaml:"chain"`
	MaxUploadSize      int64     `yaml:"max_upload_size" validate:"min=1"`
	CORSAllowedOrigins []string  `yaml:"cors_allowed_origins"`
}

// Chain holds the simulated chain parameters used when minting.
type Chain struct {
	ChainID              int64  `yaml:"chain_id" validate:"min=1"`
	NFTContractAddress   string `yaml:"nft_contract_address" validate:"regexp=^0x[0-9a-fA-F]{40}$"`
	TokenContractAddress string `yaml:"token_contract_address" validate:"regexp=^0x[0-9a-fA-F]{40}$"`
	NFTImageBaseURL      string `yaml:"nft_image_base_url"`
}

// Default returns the configuration used for local development.
func Default() AppConfig {
	return AppConfig{
		ServerPort: "8080",
		APIPrefix:  "/api/v1",
		LogLevel:   "info",
		LogFormat:  "json",
		DB: db.Config{
			Host:    "localhost",
			Port:    5432,
			User:    "postgres",
			DBName:  "cryptograves",
			SSLMode: "disable",
		},
		Chain: Chain{
			ChainID:              defaultChainID,
			NFTContractAddress:   zeroAddress,
			TokenContractAddress: zeroAddress,
			NFTImageBaseURL:      "https://api.cryptograves.com/images",
		},
		MaxUploadSize:      defaultMaxUploadSize,
		CORSAllowedOrigins: []string{"*"},
	}
}

// LoadConfig builds the configuration from defaults, the optional YAML file
// named by CONFIG_FILE and environment variables, in increasing precedence.
// The result is validated once; callers receive it by reference.
func LoadConfig() (*AppConfig, error) {
	cfg := Default()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(content))), &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}

	if cfg.DB.URL == "" {
		cfg.DB.URL = cfg.DB.DSN()
	}

	if err := validator.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func applyEnv(cfg *AppConfig) error {
	envString("SERVER_PORT", &cfg.ServerPort)
	envString("API_PREFIX", &cfg.APIPrefix)
	envString("LOG_LEVEL", &cfg.LogLevel)
	envString("LOG_FORMAT", &cfg.LogFormat)
	envString("DB_HOST", &cfg.DB.Host)
	envString("DB_USER", &cfg.DB.User)
	envString("DB_PASSWORD", &cfg.DB.Password)
	envString("DB_NAME", &cfg.DB.DBName)
	envString("DB_SSLMODE", &cfg.DB.SSLMode)
	envString("DATABASE_URL", &cfg.DB.URL)
	envString("NFT_CONTRACT_ADDRESS", &cfg.Chain.NFTContractAddress)
	envString("TOKEN_CONTRACT_ADDRESS", &cfg.Chain.TokenContractAddress)
	envString("NFT_IMAGE_BASE_URL", &cfg.Chain.NFTImageBaseURL)

	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		cfg.CORSAllowedOrigins = splitList(v)
	}

	if err := envBool("DEBUG", &cfg.Debug); err != nil {
		return err
	}
	if err := envBool("DB_AUTO_MIGRATE", &cfg.DB.AutoMigrate); err != nil {
		return err
	}
	if v := os.Getenv("DB_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid DB_PORT: %w", err)
		}
		cfg.DB.Port = port
	}
	if err := envInt64("CHAIN_ID", &cfg.Chain.ChainID); err != nil {
		return err
	}
	if err := envInt64("MAX_UPLOAD_SIZE", &cfg.MaxUploadSize); err != nil {
		return err
	}
	return nil
}

func envString(key string, dst *string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func envBool(key string, dst *bool) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = b
	return nil
}

func envInt64(key string, dst *int64) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = n
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// printable has AppConfig's fields without its String method.
type printable AppConfig

// String renders the configuration with credentials masked.
func (c AppConfig) String() string {
	redacted := printable(c)
	if redacted.DB.Password != "" {
		redacted.DB.Password = "***"
	}
	redacted.DB.URL = redactURL(redacted.DB.URL)
	return pretty.Sprint(redacted)
}

// keywordPassword matches the password of a key=value connection string.
var keywordPassword = regexp.MustCompile(`(?i)(password\s*=\s*)('(?:[^'\\]|\\.)*'|\S+)`)

// redactURL masks the credentials of a URL or key=value connection string.
func redactURL(raw string) string {
	if u, err := url.Parse(raw); err == nil && u.Scheme != "" && u.Host != "" {
		q := u.Query()
		if q.Has("password") {
			q.Set("password", "redacted")
			u.RawQuery = q.Encode()
		}
		if u.User == nil {
			return u.String()
		}
		u.User = nil
		return u.Scheme + "://***@" + strings.TrimPrefix(u.String(), u.Scheme+"://")
	}
	return keywordPassword.ReplaceAllString(raw, "${1}***")
}
