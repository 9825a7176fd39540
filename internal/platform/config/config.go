package config

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config はアプリケーション全体の設定を表現します。
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Blob     BlobConfig     `yaml:"blob"`
	Ingest   IngestConfig   `yaml:"ingest"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ServerConfig は HTTP サーバーに関する設定です。
type ServerConfig struct {
	ListenAddr string `yaml:"listen_addr"`
}

// DatabaseConfig は PostgreSQL 接続に関する設定です。
type DatabaseConfig struct {
	Host               string        `yaml:"host"`
	Port               int           `yaml:"port"`
	User               string        `yaml:"user"`
	Password           string        `yaml:"password"`
	Name               string        `yaml:"name"`
	SSLMode            string        `yaml:"ssl_mode"`
	MaxOpenConns       int           `yaml:"max_open_conns"`
	MaxIdleConns       int           `yaml:"max_idle_conns"`
	ConnMaxLifetime    time.Duration `yaml:"-"`
	ConnMaxIdleTime    time.Duration `yaml:"-"`
	ConnMaxLifetimeRaw string        `yaml:"conn_max_lifetime"`
	ConnMaxIdleTimeRaw string        `yaml:"conn_max_idle_time"`
}

// RedisConfig は非同期キューのバッキングストアに関する設定です。
type RedisConfig struct {
	Addr         string        `yaml:"addr"`
	Password     string        `yaml:"password"`
	DB           int           `yaml:"db"`
	QueuePrefix  string        `yaml:"queue_prefix"`
	ResultTTL    time.Duration `yaml:"-"`
	ResultTTLRaw string        `yaml:"result_ttl"`
}

// BlobConfig は取り込み元 blob ストレージに関する設定です。
// base_url は go-getter が解決できる URL(file://, http(s)://, s3:// など)です。
type BlobConfig struct {
	BaseURL         string `yaml:"base_url"`
	DepartmentsFile string `yaml:"departments_file"`
	JobsFile        string `yaml:"jobs_file"`
	EmployeesFile   string `yaml:"employees_file"`
}

// IngestConfig は取り込みパイプラインの調整値です。
type IngestConfig struct {
	PageLimit    int `yaml:"page_limit"`
	SubBatchSize int `yaml:"sub_batch_size"`
	ReportYear   int `yaml:"report_year"`
}

// LoggingConfig はログ出力に関する設定です。
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load は指定されたパスから設定ファイルを読み込みます。
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}

	if err := cfg.validateAndNormalize(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validateAndNormalize() error {
	if c.Server.ListenAddr == "" {
		return fmt.Errorf("config: server.listen_addr must be set")
	}

	if err := c.Database.validateAndNormalize(); err != nil {
		return err
	}
	if err := c.Redis.validateAndNormalize(); err != nil {
		return err
	}
	if err := c.Blob.validateAndNormalize(); err != nil {
		return err
	}
	c.Ingest.normalize()
	c.Logging.normalize()

	return nil
}

func (d *DatabaseConfig) validateAndNormalize() error {
	if d.Host == "" {
		return fmt.Errorf("config: database.host must be set")
	}
	if d.Port == 0 {
		return fmt.Errorf("config: database.port must be set")
	}
	if d.User == "" {
		return fmt.Errorf("config: database.user must be set")
	}
	if d.Password == "" {
		return fmt.Errorf("config: database.password must be set")
	}
	if d.Name == "" {
		return fmt.Errorf("config: database.name must be set")
	}
	if d.SSLMode == "" {
		d.SSLMode = "disable"
	}

	lifetime, err := parseDurationAllowEmpty(d.ConnMaxLifetimeRaw)
	if err != nil {
		return fmt.Errorf("config: database.conn_max_lifetime: %w", err)
	}
	d.ConnMaxLifetime = lifetime

	idleTime, err := parseDurationAllowEmpty(d.ConnMaxIdleTimeRaw)
	if err != nil {
		return fmt.Errorf("config: database.conn_max_idle_time: %w", err)
	}
	d.ConnMaxIdleTime = idleTime

	return nil
}

func (r *RedisConfig) validateAndNormalize() error {
	if r.Addr == "" {
		return fmt.Errorf("config: redis.addr must be set")
	}
	if r.QueuePrefix == "" {
		r.QueuePrefix = "hiring-ingest"
	}

	ttl, err := parseDurationAllowEmpty(r.ResultTTLRaw)
	if err != nil {
		return fmt.Errorf("config: redis.result_ttl: %w", err)
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	r.ResultTTL = ttl

	return nil
}

func (b *BlobConfig) validateAndNormalize() error {
	if b.BaseURL == "" {
		return fmt.Errorf("config: blob.base_url must be set")
	}
	if b.DepartmentsFile == "" {
		b.DepartmentsFile = "departments.csv"
	}
	if b.JobsFile == "" {
		b.JobsFile = "jobs.csv"
	}
	if b.EmployeesFile == "" {
		b.EmployeesFile = "hired_employees.csv"
	}
	return nil
}

func (i *IngestConfig) normalize() {
	if i.PageLimit <= 0 {
		i.PageLimit = 1000
	}
	if i.SubBatchSize <= 0 {
		i.SubBatchSize = 100
	}
	if i.ReportYear <= 0 {
		i.ReportYear = 2021
	}
}

func (l *LoggingConfig) normalize() {
	if l.Level == "" {
		l.Level = "info"
	}
	if l.Format == "" {
		l.Format = "text"
	}
}

func parseDurationAllowEmpty(raw string) (time.Duration, error) {
	if raw == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	return d, nil
}

// DSN は pgx 用の接続文字列を返します。認証情報は URL エスケープします。
func (d DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:     d.Name,
		RawQuery: "sslmode=" + url.QueryEscape(d.SSLMode),
	}
	return u.String()
}
