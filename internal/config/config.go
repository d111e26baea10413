package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	StorageMemory = "memory"
	StorageRedis  = "redis"
	StorageSQLite = "sqlite"
)

type Config struct {
	LogLevel     string    `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTPPort     string    `yaml:"http-port" env:"HTTP_PORT" env-default:"9090"`
	SocketPort   string    `yaml:"socket-port" env:"SOCKET_PORT" env-default:"8080"`
	JWTSecretKey string    `yaml:"jwt-secret-key" env:"JWT_SECRET_KEY" env-required:"true"`
	LexiconPath  string    `yaml:"lexicon-path" env:"LEXICON_PATH"`
	Storage      Storage   `yaml:"storage"`
	Redis        Redis     `yaml:"redis"`
	Game         Game      `yaml:"game"`
	Server       Server    `yaml:"server"`
	Rooms        Rooms     `yaml:"rooms"`
	Scheduler    Scheduler `yaml:"scheduler"`
}

type Storage struct {
	Driver     string `yaml:"driver" env:"STORAGE_DRIVER" env-default:"memory"`
	SQLitePath string `yaml:"sqlite-path" env:"SQLITE_PATH" env-default:"./data/scrabble.db"`
}

type Redis struct {
	Host     string `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port     string `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
}

type Game struct {
	TurnTimeout         time.Duration `yaml:"turn-timeout" env:"GAME_TURN_TIMEOUT" env-default:"90s"`
	DrawOfferTimeout    time.Duration `yaml:"draw-offer-timeout" env:"GAME_DRAW_OFFER_TIMEOUT" env-default:"30s"`
	ReconnectWindow     time.Duration `yaml:"reconnect-window" env:"GAME_RECONNECT_WINDOW" env-default:"1m"`
	MaxConsecutiveSkips int           `yaml:"max-consecutive-skips" env:"GAME_MAX_CONSECUTIVE_SKIPS" env-default:"4"`
}

type Server struct {
	MaxFrameSize  int           `yaml:"max-frame-size" env:"SERVER_MAX_FRAME_SIZE" env-default:"1048576"`
	SendQueueSize int           `yaml:"send-queue-size" env:"SERVER_SEND_QUEUE_SIZE" env-default:"64"`
	WriteTimeout  time.Duration `yaml:"write-timeout" env:"SERVER_WRITE_TIMEOUT" env-default:"10s"`
	IdleTimeout   time.Duration `yaml:"idle-timeout" env:"SERVER_IDLE_TIMEOUT" env-default:"5m"`
}

type Rooms struct {
	EmptyGrace  time.Duration `yaml:"empty-grace" env:"ROOMS_EMPTY_GRACE" env-default:"2m"`
	InactiveTTL time.Duration `yaml:"inactive-ttl" env:"ROOMS_INACTIVE_TTL" env-default:"30m"`
	QueueSize   int           `yaml:"queue-size" env:"ROOMS_QUEUE_SIZE" env-default:"128"`
}

type Scheduler struct {
	Interval time.Duration `yaml:"interval" env:"SCHEDULER_INTERVAL" env-default:"1s"`
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config, err := Load(path)
	if err != nil {
		panic(err)
	}

	return config
}

// Load - reads path, then applies environment overrides and defaults.
func Load(path string) (*Config, error) {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		return nil, fmt.Errorf("unable to load config file: %w", err)
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return config, nil
}

func (that *Config) validate() error {
	switch that.Storage.Driver {
	case StorageMemory, StorageRedis, StorageSQLite:
	default:
		return fmt.Errorf("unknown storage driver %q", that.Storage.Driver)
	}

	if that.Game.MaxConsecutiveSkips <= 0 {
		return fmt.Errorf("game.max-consecutive-skips must be positive, got %d", that.Game.MaxConsecutiveSkips)
	}

	return nil
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}
