// Package config loads engine configuration from a YAML file, environment
// variables, and a local .env file, following the same viper+mapstructure
// wiring the teacher CLI used for its own settings.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds every configuration key enumerated in spec §6.
type Config struct {
	App        App        `mapstructure:"app"`
	Database   Database   `mapstructure:"database"`
	Embedding  Embedding  `mapstructure:"embedding"`
	Rec        Rec        `mapstructure:"rec"`
	Learning   Learning   `mapstructure:"learning"`
	Replay     Replay     `mapstructure:"replay"`
	Hyperbolic Hyperbolic `mapstructure:"hyperbolic"`
	Server     Server     `mapstructure:"server"`
	Logging    Logging    `mapstructure:"logging"`
}

type App struct {
	Debug    bool   `mapstructure:"debug"`
	LogLevel string `mapstructure:"log_level"`
}

type Database struct {
	URL             string        `mapstructure:"url"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

type Embedding struct {
	Model     string `mapstructure:"model"`
	Dimension int    `mapstructure:"dimension"`
}

// ColdStartStrategy selects how the cold-start strategy orders its candidates.
type ColdStartStrategy string

const (
	ColdStartTrending     ColdStartStrategy = "trending"
	ColdStartRecent       ColdStartStrategy = "recent"
	ColdStartRatingSorted ColdStartStrategy = "rating_sorted"
)

type Rec struct {
	DefaultLimit         int               `mapstructure:"default_limit"`
	MaxLimit             int               `mapstructure:"max_limit"`
	SimilarityThreshold  float64           `mapstructure:"similarity_threshold"`
	DiversityFactor      float64           `mapstructure:"diversity_factor"`
	ColdStartStrategy    ColdStartStrategy `mapstructure:"cold_start_strategy"`
	RequestDeadline      time.Duration     `mapstructure:"request_deadline"`
	FeedbackDeadline     time.Duration     `mapstructure:"feedback_deadline"`
}

type Learning struct {
	Enabled               bool          `mapstructure:"enabled"`
	MinSamplesForTraining int           `mapstructure:"min_samples_for_training"`
	ConsolidationSchedule string        `mapstructure:"consolidation_schedule"` // 5-field cron expression, local time, fed directly to robfig/cron
	GNNEnabled            bool          `mapstructure:"gnn_enabled"`
	RewardDecay           float64       `mapstructure:"reward_decay"` // gamma
	LearningRate          float64       `mapstructure:"learning_rate"`
	ExplorationRate       float64       `mapstructure:"exploration_rate"`
	ExplorationDecay      float64       `mapstructure:"exploration_decay"`
	MinExplorationRate    float64       `mapstructure:"min_exploration_rate"`
	TargetUpdateFrequency int           `mapstructure:"target_update_frequency"`
	PersistEveryEpisodes  int           `mapstructure:"persist_every_episodes"`
}

type Replay struct {
	BufferSize int `mapstructure:"buffer_size"`
	BatchSize  int `mapstructure:"batch_size"`
}

type Hyperbolic struct {
	Curvature float64 `mapstructure:"curvature"`
}

type Server struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

type Logging struct {
	AccessLog bool `mapstructure:"access_log"`
}

// Load reads configuration from (in increasing priority) defaults, a YAML
// config file (if present), a local .env file (if present), and the
// environment. It never fails merely because a config file is absent.
func Load(configPath string) (*Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			return nil, fmt.Errorf("failed to load .env: %w", err)
		}
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("REC")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName("recoengine")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.debug", false)
	v.SetDefault("app.log_level", "info")

	v.SetDefault("database.url", "postgres://localhost:5432/recoengine?sslmode=disable")
	v.SetDefault("database.max_open_conns", 0) // resolved to num_cpus*2 at construction time if 0
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 30*time.Minute)

	v.SetDefault("embedding.model", "text-embedding-default")
	v.SetDefault("embedding.dimension", 384)

	v.SetDefault("rec.default_limit", 20)
	v.SetDefault("rec.max_limit", 100)
	v.SetDefault("rec.similarity_threshold", 0.3)
	v.SetDefault("rec.diversity_factor", 0.2)
	v.SetDefault("rec.cold_start_strategy", string(ColdStartRatingSorted))
	v.SetDefault("rec.request_deadline", 250*time.Millisecond)
	v.SetDefault("rec.feedback_deadline", 2*time.Second)

	v.SetDefault("learning.enabled", true)
	v.SetDefault("learning.min_samples_for_training", 100)
	v.SetDefault("learning.consolidation_schedule", "0 3 * * *")
	v.SetDefault("learning.gnn_enabled", false)
	v.SetDefault("learning.reward_decay", 0.95)
	v.SetDefault("learning.learning_rate", 0.1)
	v.SetDefault("learning.exploration_rate", 0.3)
	v.SetDefault("learning.exploration_decay", 0.995)
	v.SetDefault("learning.min_exploration_rate", 0.05)
	v.SetDefault("learning.target_update_frequency", 100)
	v.SetDefault("learning.persist_every_episodes", 50)

	v.SetDefault("replay.buffer_size", 10000)
	v.SetDefault("replay.batch_size", 32)

	v.SetDefault("hyperbolic.curvature", -1.0)

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)

	v.SetDefault("logging.access_log", true)
}
