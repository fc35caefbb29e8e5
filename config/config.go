package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config enthält alle Konfigurationsparameter aus Umgebungsvariablen.
type Config struct {
	DBHost     string `envconfig:"DB_HOST" required:"true"`
	DBPort     int    `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" required:"true"`
	DBPassword string `envconfig:"DB_PASSWORD" required:"true"`
	DBName     string `envconfig:"DB_NAME" required:"true"`

	HTTPPort     string `envconfig:"HTTP_PORT" default:"4242"`
	APISecretKey string `envconfig:"API_SECRET_KEY"`

	// Weibo cardlist API; die Query-Parameter stammen aus einer Client-Session.
	WeiboBaseURL     string        `envconfig:"WEIBO_BASE_URL" default:"https://api.weibo.cn/2/cardlist"`
	WeiboQueryParams string        `envconfig:"WEIBO_QUERY_PARAMS"`
	WeiboTimeout     time.Duration `envconfig:"WEIBO_TIMEOUT" default:"5s"`
	WeiboRetries     int           `envconfig:"WEIBO_RETRIES" default:"2"`
	GroupContainerID string        `envconfig:"GROUP_CONTAINER_ID" default:"231343_2689280541_8"`

	CronSchedule  string `envconfig:"CRON_SCHEDULE" default:"0 12 * * *"`
	ChartTimezone string `envconfig:"CHART_TIMEZONE" default:"Asia/Shanghai"`

	IndividualLineCount int `envconfig:"INDIVIDUAL_LINE_COUNT" default:"28"`

	Report
	Storage

	// Benachrichtigung der Chat-Gruppe; leer = deaktiviert
	NotifyURL     string `envconfig:"NOTIFY_URL"`
	NotifyGroupID int64  `envconfig:"NOTIFY_GROUP_ID"`
	ReportBaseURL string `envconfig:"REPORT_BASE_URL"`
}

// Report enthält das Layout des gerenderten Reports. Wird auch von
// cmd/rerender geladen.
type Report struct {
	FocusMember          string `envconfig:"FOCUS_MEMBER" default:"莫寒"`
	CmpHighlightedRows   []int  `envconfig:"CMP_HIGHLIGHTED_ROWS" default:"1,5,11,16,21,25"`
	CmpThickBorderedRows []int  `envconfig:"CMP_THICK_BORDERED_ROWS" default:"5,10,15,20,24"`
	GroupCutoffRow       int    `envconfig:"GROUP_CUTOFF_ROW" default:"16"`
}

// Storage wählt die Ablage: "file" (DATA_DIR) oder "s3".
type Storage struct {
	StorageBackend string `envconfig:"STORAGE_BACKEND" default:"file"`
	DataDir        string `envconfig:"DATA_DIR" default:"data"`
	S3URL          string `envconfig:"S3_URL"`
	S3Region       string `envconfig:"S3_REGION"`
	S3Key          string `envconfig:"S3_KEY"`
	S3Secret       string `envconfig:"S3_SECRET"`
	S3Bucket       string `envconfig:"S3_BUCKET"`
}

// Validate prüft die Pflichtfelder des gewählten Backends.
func (s Storage) Validate() error {
	switch s.StorageBackend {
	case "file":
	case "s3":
		if s.S3URL == "" || s.S3Bucket == "" || s.S3Key == "" || s.S3Secret == "" {
			return fmt.Errorf("STORAGE_BACKEND=s3 requires S3_URL, S3_BUCKET, S3_KEY and S3_SECRET")
		}
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q", s.StorageBackend)
	}
	return nil
}

// DSN gibt den Data Source Name für die PostgreSQL-Verbindung zurück.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=disable",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort)
}

// Validate prüft Kombinationen, die envconfig nicht ausdrücken kann.
func (c *Config) Validate() error {
	if err := c.Storage.Validate(); err != nil {
		return err
	}
	if c.NotifyURL != "" && c.NotifyGroupID == 0 {
		return fmt.Errorf("NOTIFY_URL requires NOTIFY_GROUP_ID")
	}
	return nil
}

// Load lädt die Konfiguration aus den Umgebungsvariablen.
func Load() (*Config, error) {
	_ = godotenv.Load()
	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return nil, err
	}
	return &c, c.Validate()
}
