package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	Source    SourceConfig    `mapstructure:"source"`
	Ontology  OntologyConfig  `mapstructure:"ontology"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	AllowOrigins    []string      `mapstructure:"allow_origins"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json | console
}

// SourceConfig selects where supply data comes from
type SourceConfig struct {
	Kind        string `mapstructure:"kind"`     // ontology | csv | sql
	Scenario    string `mapstructure:"scenario"` // csv scenario directory
	CSVEncoding string `mapstructure:"csv_encoding"`
}

type OntologyConfig struct {
	BaseURL     string            `mapstructure:"base_url"`
	Token       string            `mapstructure:"token"`
	Network     string            `mapstructure:"network"`
	ObjectTypes ObjectTypesConfig `mapstructure:"object_types"`
	BatchSize   int               `mapstructure:"batch_size"`
	PageSize    int               `mapstructure:"page_size"`
	Concurrency int               `mapstructure:"concurrency"`
	Timeout     time.Duration     `mapstructure:"timeout"`
}

type ObjectTypesConfig struct {
	BOM             string `mapstructure:"bom"`
	Material        string `mapstructure:"material"`
	PurchaseRequest string `mapstructure:"purchase_request"`
	PurchaseOrder   string `mapstructure:"purchase_order"`
	MRP             string `mapstructure:"mrp"`
	Inventory       string `mapstructure:"inventory"`
}

type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"` // sqlite | mysql | postgres
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	LogQueries      bool          `mapstructure:"log_queries"`
}

type CacheConfig struct {
	Backend string        `mapstructure:"backend"` // memory | redis | none
	TTL     time.Duration `mapstructure:"ttl"`
}

type RedisConfig struct {
	Host      string `mapstructure:"host"`
	Port      int    `mapstructure:"port"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db"`
	PoolSize  int    `mapstructure:"pool_size"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

type SchedulerConfig struct {
	NodeLimit       int  `mapstructure:"node_limit"`
	DefaultLeadTime int  `mapstructure:"default_lead_time"`
	SortSiblings    bool `mapstructure:"sort_siblings"`
}

// Load reads an optional .env file, then the YAML config (explicit path, or
// config.yaml in ./configs or the working directory), then the environment.
func Load(path string) (*Config, error) {
	return LoadWithOverrides(path, nil)
}

// LoadWithOverrides is Load with command-line overrides applied before validation
func LoadWithOverrides(path string, override func(*Config)) (*Config, error) {
	// a missing .env is normal outside development
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("COCKPIT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	bindEnvVariables(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if override != nil {
		override(&cfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the configuration used when nothing is set
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	// defaults are static and always decode
	_ = v.Unmarshal(&cfg)
	return &cfg
}

// Validate checks enumerated settings
func (c *Config) Validate() error {
	switch c.Source.Kind {
	case "ontology", "csv", "sql":
	default:
		return fmt.Errorf("unknown source kind %q (expected ontology, csv or sql)", c.Source.Kind)
	}
	switch c.Cache.Backend {
	case "memory", "redis", "none":
	default:
		return fmt.Errorf("unknown cache backend %q (expected memory, redis or none)", c.Cache.Backend)
	}
	if c.Source.Kind == "csv" && c.Source.Scenario == "" {
		return errors.New("csv source requires source.scenario")
	}
	return nil
}

// RedisAddr returns host:port for the redis client
func (c RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 60*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.allow_origins", []string{"*"})

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("source.kind", "ontology")
	v.SetDefault("source.csv_encoding", "utf8")

	v.SetDefault("ontology.network", "supplychain_hd0202")
	v.SetDefault("ontology.object_types.bom", "supplychain_hd0202_bom")
	v.SetDefault("ontology.object_types.material", "supplychain_hd0202_material")
	v.SetDefault("ontology.object_types.purchase_request", "supplychain_hd0202_pr")
	v.SetDefault("ontology.object_types.purchase_order", "supplychain_hd0202_po")
	v.SetDefault("ontology.object_types.mrp", "supplychain_hd0202_mrp")
	v.SetDefault("ontology.object_types.inventory", "supplychain_hd0202_inventory")
	v.SetDefault("ontology.batch_size", 50)
	v.SetDefault("ontology.page_size", 1000)
	v.SetDefault("ontology.concurrency", 4)
	v.SetDefault("ontology.timeout", 30*time.Second)

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "cockpit.db")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", time.Hour)

	v.SetDefault("cache.backend", "memory")
	v.SetDefault("cache.ttl", 5*time.Minute)

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.key_prefix", "cockpit:")

	v.SetDefault("scheduler.node_limit", 2000)
	v.SetDefault("scheduler.default_lead_time", 7)
	v.SetDefault("scheduler.sort_siblings", false)
}

func bindEnvVariables(v *viper.Viper) {
	// Server
	v.BindEnv("server.port", "COCKPIT_SERVER_PORT", "SERVER_PORT")

	// Ontology
	v.BindEnv("ontology.base_url", "COCKPIT_ONTOLOGY_BASE_URL", "ONTOLOGY_BASE_URL")
	v.BindEnv("ontology.token", "COCKPIT_ONTOLOGY_TOKEN", "ONTOLOGY_TOKEN")

	// Database
	v.BindEnv("database.driver", "COCKPIT_DATABASE_DRIVER", "DB_DRIVER")
	v.BindEnv("database.dsn", "COCKPIT_DATABASE_DSN", "DB_DSN")

	// Redis
	v.BindEnv("redis.host", "COCKPIT_REDIS_HOST", "REDIS_HOST")
	v.BindEnv("redis.port", "COCKPIT_REDIS_PORT", "REDIS_PORT")
	v.BindEnv("redis.password", "COCKPIT_REDIS_PASSWORD", "REDIS_PASSWORD")
}
