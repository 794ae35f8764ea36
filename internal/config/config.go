package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

type Config struct {
	App          App          `mapstructure:",squash"`
	Server       Server       `mapstructure:",squash"`
	Database     Database     `mapstructure:",squash"`
	Meta         Meta         `mapstructure:",squash"`
	Redis        Redis        `mapstructure:",squash"`
	AssetStorage AssetStorage `mapstructure:",squash"`
	EntitySync   EntitySync   `mapstructure:",squash"`
	InsightSync  InsightSync  `mapstructure:",squash"`
	Health       Health       `mapstructure:",squash"`
	Auth         Auth         `mapstructure:",squash"`
	SecretKey    string       `mapstructure:"secret_key"`
}

type Server struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
}

type Database struct {
	DSN      string `mapstructure:"-"`
	Driver   string `mapstructure:"database_driver"`
	Password string `mapstructure:"database_password"`
	URL      string `mapstructure:"database_url"`
	User     string `mapstructure:"database_user"`
}

type Meta struct {
	BaseURL        string   `mapstructure:"meta_base_url"`
	URL            string   `mapstructure:"meta_url"`
	Version        string   `mapstructure:"meta_version"`
	AppID          string   `mapstructure:"meta_app_id"`
	AppSecret      string   `mapstructure:"meta_app_secret"`
	RequiredScopes []string `mapstructure:"meta_required_scopes"`
	PageLimit      int      `mapstructure:"meta_page_limit"`
}

type Redis struct {
	URL        string `mapstructure:"redis_url"`
	Enabled    bool   `mapstructure:"redis_enabled"`
	TTLMinutes int    `mapstructure:"redis_creative_ttl_minutes"`
}

type AssetStorage struct {
	BaseURL       string `mapstructure:"asset_storage_base_url"`
	PublicBaseURL string `mapstructure:"asset_storage_public_base_url"`
	APIKey        string `mapstructure:"asset_storage_api_key"`
	Bucket        string `mapstructure:"asset_storage_bucket"`
}

type EntitySync struct {
	TTLHours int `mapstructure:"entity_sync_ttl_hours"`
}

type InsightSync struct {
	CronSchedule        string `mapstructure:"insight_sync_cron"`
	Enabled             bool   `mapstructure:"insight_sync_enabled"`
	RequestDelaySeconds int    `mapstructure:"insight_sync_request_delay_seconds"`
	DefaultDaysBack     int    `mapstructure:"insight_sync_default_days_back"`
	BackfillMaxDays     int    `mapstructure:"insight_sync_backfill_max_days"`
}

type Health struct {
	StaleAfterHours        int `mapstructure:"health_stale_after_hours"`
	RecentErrorWindowHours int `mapstructure:"health_recent_error_window_hours"`
}

type App struct {
	LogLevel string `mapstructure:"log_level"`
}

type Auth struct {
	Secret string `mapstructure:"auth_secret"`
}

func SetDefaults() {
	viper.SetDefault("HOST", "localhost")
	viper.SetDefault("PORT", 8000)

	viper.SetDefault("DATABASE_DRIVER", "postgres")
	viper.SetDefault("DATABASE_URL", "localhost:5432/ads_dashboard")
	viper.SetDefault("DATABASE_USER", "postgres")
	viper.SetDefault("DATABASE_PASSWORD", "root")

	viper.SetDefault("META_BASE_URL", "https://graph.facebook.com")
	viper.SetDefault("META_URL", "https://graph.facebook.com/v22.0")
	viper.SetDefault("META_VERSION", "v22.0")
	viper.SetDefault("META_APP_ID", "your_app_id")
	viper.SetDefault("META_APP_SECRET", "your_app_secret")
	viper.SetDefault("META_REQUIRED_SCOPES", "ads_read,read_insights,business_management")
	viper.SetDefault("META_PAGE_LIMIT", 500) // Limite de paginação em massa do Graph

	viper.SetDefault("REDIS_URL", "redis://localhost:6379/0")
	viper.SetDefault("REDIS_ENABLED", false)
	viper.SetDefault("REDIS_CREATIVE_TTL_MINUTES", 60)

	viper.SetDefault("ASSET_STORAGE_BASE_URL", "")
	viper.SetDefault("ASSET_STORAGE_PUBLIC_BASE_URL", "")
	viper.SetDefault("ASSET_STORAGE_API_KEY", "")
	viper.SetDefault("ASSET_STORAGE_BUCKET", "ad-creatives")

	// Janela de validade do espelho de entidades (campanhas/conjuntos/anúncios)
	viper.SetDefault("ENTITY_SYNC_TTL_HOURS", 6)

	// Defaults para sincronização de insights
	viper.SetDefault("INSIGHT_SYNC_CRON", "0 3 * * *") // Todos os dias às 3h da manhã
	viper.SetDefault("INSIGHT_SYNC_ENABLED", false)
	viper.SetDefault("INSIGHT_SYNC_REQUEST_DELAY_SECONDS", 2) // 2 segundos entre requisições
	viper.SetDefault("INSIGHT_SYNC_DEFAULT_DAYS_BACK", 30)    // Primeira sincronização diária
	viper.SetDefault("INSIGHT_SYNC_BACKFILL_MAX_DAYS", 365)

	// Derivação de health do dashboard
	viper.SetDefault("HEALTH_STALE_AFTER_HOURS", 24)
	viper.SetDefault("HEALTH_RECENT_ERROR_WINDOW_HOURS", 24)

	viper.SetDefault("SECRET_KEY", "your_secret_key")
	viper.SetDefault("AUTH_SECRET", "your_auth_secret")

	viper.SetDefault("LOG_LEVEL", "debug")
}

func NewConfig() (*Config, error) {
	// Primeiro carregar o arquivo .env usando godotenv
	loadEnvFile() // ONLY LOCAL

	config := &Config{}

	SetDefaults()

	viper.SetConfigType("env")
	viper.SetConfigFile(".env")
	viper.AutomaticEnv() // Isso permite que o Viper leia variáveis de ambiente

	if err := viper.ReadInConfig(); err != nil {
		logrus.Info("Usando variáveis carregadas pelo godotenv (viper não conseguiu ler .env):", err)
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

	config.Meta.URL = fmt.Sprintf("%s/%s", config.Meta.BaseURL, config.Meta.Version)

	config.Database.DSN = fmt.Sprintf(
		"%s://%s:%s@%s",
		config.Database.Driver,
		config.Database.User,
		config.Database.Password,
		config.Database.URL,
	)

	return config, nil
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
		filepath.Join(cwd, "../.env"),
		filepath.Join(cwd, "../../.env"),
	}

	for _, location := range locations {
		err := godotenv.Load(location)
		if err == nil {
			logrus.Info("Arquivo .env carregado com sucesso de:", location)
			return
		}
	}

	logrus.Warn("Não foi possível carregar o arquivo .env de nenhuma localização conhecida")
}
