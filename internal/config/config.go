package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/vfg2006/sales-analytics-api/internal/domain"
)

type Config struct {
	App         App         `mapstructure:",squash"`
	Server      Server      `mapstructure:",squash"`
	Database    Database    `mapstructure:",squash"`
	Auth        Auth        `mapstructure:",squash"`
	Analysis    Analysis    `mapstructure:",squash"`
	ReportSync  ReportSync  `mapstructure:",squash"`
	ReportCache ReportCache `mapstructure:",squash"`
	Mailgun     Mailgun     `mapstructure:",squash"`
	Cors        Cors        `mapstructure:",squash"`
}

type App struct {
	LogLevel string `mapstructure:"log_level" validate:"oneof=trace debug info warn warning error fatal panic"`
	Env      string `mapstructure:"app_env"`
}

type Server struct {
	Host           string        `mapstructure:"host"`
	Port           string        `mapstructure:"port" validate:"required"`
	MaxUploadBytes int64         `mapstructure:"max_upload_bytes" validate:"gt=0"`
	ReadTimeout    time.Duration `mapstructure:"server_read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"server_write_timeout"`
}

type Database struct {
	DSN      string `mapstructure:"-"`
	Driver   string `mapstructure:"database_driver"`
	Password string `mapstructure:"database_password"`
	URL      string `mapstructure:"database_url"`
	User     string `mapstructure:"database_user"`
	Enabled  bool   `mapstructure:"database_enabled"`
}

type Auth struct {
	Secret       string        `mapstructure:"auth_secret" validate:"required"`
	TokenTTL     time.Duration `mapstructure:"auth_token_ttl" validate:"gt=0"`
	AdminEmail   string        `mapstructure:"auth_admin_email" validate:"omitempty,email"`
	AdminHash    string        `mapstructure:"auth_admin_password_hash"`
	AnalystEmail string        `mapstructure:"auth_analyst_email" validate:"omitempty,email"`
	AnalystHash  string        `mapstructure:"auth_analyst_password_hash"`
	PublicPaths  []string      `mapstructure:"auth_public_paths"`
}

// Analysis contém os valores padrão usados pelo motor de análise
type Analysis struct {
	Threshold         float64  `mapstructure:"analysis_threshold" validate:"gt=0"`
	TopN              int      `mapstructure:"analysis_top_n" validate:"gte=1"`
	Bucket            string   `mapstructure:"analysis_bucket" validate:"oneof=day week month"`
	Tolerance         float64  `mapstructure:"analysis_tolerance" validate:"gte=0"`
	ProjectionPeriods int      `mapstructure:"analysis_projection_periods" validate:"gte=0,lte=24"`
	DateLayouts       []string `mapstructure:"analysis_date_layouts"`
}

type ReportSync struct {
	CronSchedule  string   `mapstructure:"report_sync_cron"`
	SourcePath    string   `mapstructure:"report_sync_source_path"`
	Recipients    []string `mapstructure:"report_sync_recipients" validate:"dive,email"`
	Enabled       bool     `mapstructure:"report_sync_enabled"`
	RetentionDays int      `mapstructure:"report_sync_retention_days" validate:"gte=0"`
}

type ReportCache struct {
	TTL             time.Duration `mapstructure:"report_cache_ttl"`
	CleanupInterval time.Duration `mapstructure:"report_cache_cleanup_interval"`
}

type Mailgun struct {
	Domain string `mapstructure:"mailgun_domain"`
	APIKey string `mapstructure:"mailgun_api_key"`
	Sender string `mapstructure:"mailgun_sender"`
}

// Enabled indica se há credenciais suficientes para enviar e-mails pelo Mailgun
func (m Mailgun) Enabled() bool {
	return m.Domain != "" && m.APIKey != ""
}

type Cors struct {
	AllowedOrigins []string `mapstructure:"cors_allowed_origins"`
}

// AnalysisConfig converte a seção de análise para a configuração do domínio
func (c *Config) AnalysisConfig() domain.AnalysisConfig {
	layouts := make([]string, len(c.Analysis.DateLayouts))
	copy(layouts, c.Analysis.DateLayouts)

	return domain.AnalysisConfig{
		Threshold:         c.Analysis.Threshold,
		TopN:              c.Analysis.TopN,
		Bucket:            domain.Granularity(c.Analysis.Bucket),
		Tolerance:         c.Analysis.Tolerance,
		ProjectionPeriods: c.Analysis.ProjectionPeriods,
		DateLayouts:       layouts,
	}
}

func SetDefaults() {
	viper.SetDefault("HOST", "localhost")
	viper.SetDefault("PORT", 8000)
	viper.SetDefault("MAX_UPLOAD_BYTES", 10<<20) // 10 MB
	viper.SetDefault("SERVER_READ_TIMEOUT", "30s")
	viper.SetDefault("SERVER_WRITE_TIMEOUT", "60s")

	viper.SetDefault("DATABASE_DRIVER", "postgres")
	viper.SetDefault("DATABASE_URL", "localhost:5432/sales_analytics?sslmode=disable")
	viper.SetDefault("DATABASE_USER", "postgres")
	viper.SetDefault("DATABASE_PASSWORD", "root")
	viper.SetDefault("DATABASE_ENABLED", true)

	viper.SetDefault("AUTH_SECRET", "your_secret_key")
	viper.SetDefault("AUTH_TOKEN_TTL", "24h")
	viper.SetDefault("AUTH_PUBLIC_PATHS", "/healthcheck,/metrics,/v1/login")
	viper.SetDefault("AUTH_ADMIN_EMAIL", "")
	viper.SetDefault("AUTH_ADMIN_PASSWORD_HASH", "")
	viper.SetDefault("AUTH_ANALYST_EMAIL", "")
	viper.SetDefault("AUTH_ANALYST_PASSWORD_HASH", "")

	viper.SetDefault("ANALYSIS_THRESHOLD", 2.0)
	viper.SetDefault("ANALYSIS_TOP_N", 5)
	viper.SetDefault("ANALYSIS_BUCKET", "month")
	viper.SetDefault("ANALYSIS_TOLERANCE", 0.01)
	viper.SetDefault("ANALYSIS_PROJECTION_PERIODS", 3)
	viper.SetDefault("ANALYSIS_DATE_LAYOUTS", "")

	viper.SetDefault("REPORT_SYNC_CRON", "0 7 * * 1") // Toda segunda-feira às 7h da manhã
	viper.SetDefault("REPORT_SYNC_SOURCE_PATH", "")
	viper.SetDefault("REPORT_SYNC_RECIPIENTS", "")
	viper.SetDefault("REPORT_SYNC_ENABLED", false)
	viper.SetDefault("REPORT_SYNC_RETENTION_DAYS", 90)

	viper.SetDefault("REPORT_CACHE_TTL", "30m")
	viper.SetDefault("REPORT_CACHE_CLEANUP_INTERVAL", "10m")

	viper.SetDefault("MAILGUN_DOMAIN", "")
	viper.SetDefault("MAILGUN_API_KEY", "")
	viper.SetDefault("MAILGUN_SENDER", "Relatórios de Vendas <relatorios@example.com>")

	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173")

	viper.SetDefault("LOG_LEVEL", "debug")
	viper.SetDefault("APP_ENV", "development")
}

func NewConfig() (*Config, error) {
	loadEnvFile() // ONLY LOCAL

	config := &Config{}

	SetDefaults()

	viper.SetConfigType("env")
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	// Tentar ler o arquivo .env com o Viper (opcional, já que usamos godotenv)
	if err := viper.ReadInConfig(); err != nil {
		logrus.Info("Usando variáveis carregadas pelo godotenv (viper não conseguiu ler .env):", err)
	} else {
		logrus.Info("Arquivo .env lido pelo Viper com sucesso")
	}

	err := viper.Unmarshal(&config, viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	))
	if err != nil {
		return nil, err
	}

	config.Database.DSN = fmt.Sprintf(
		"%s://%s:%s@%s",
		config.Database.Driver,
		config.Database.User,
		config.Database.Password,
		config.Database.URL,
	)

	if err := Validate(config); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate verifica os campos da configuração carregada
func Validate(config *Config) error {
	if err := validator.New().Struct(config); err != nil {
		return fmt.Errorf("configuração inválida: %w", err)
	}
	return nil
}

// Função auxiliar para carregar o arquivo .env usando godotenv
func loadEnvFile() {
	cwd, err := os.Getwd()
	if err != nil {
		logrus.Warn("Não foi possível obter o diretório atual:", err)
		return
	}

	// Tentar várias localizações possíveis para o arquivo .env
	locations := []string{
		filepath.Join(cwd, ".env"),
		filepath.Join(filepath.Dir(cwd), ".env"),
		filepath.Join(cwd, "../../.env"),
	}

	for _, location := range locations {
		logrus.Debug("Tentando carregar .env de:", location)
		if err := godotenv.Load(location); err == nil {
			logrus.Info("Arquivo .env carregado com sucesso de:", location)
			return
		}
	}

	logrus.Warn("Não foi possível carregar o arquivo .env de nenhuma localização conhecida")
}
