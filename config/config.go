package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Game     GameConfig     `mapstructure:"game"`
	Security SecurityConfig `mapstructure:"security"`
}

type ServerConfig struct {
	Port     int    `mapstructure:"port"`
	Debug    bool   `mapstructure:"debug"`
	AdminKey string `mapstructure:"admin_key"`
}

type DatabaseConfig struct {
	Mode         string        `mapstructure:"mode"` // sqlite | sqlite_memory | mysql
	SQLitePath   string        `mapstructure:"sqlite_path"`
	MySQLDSN     string        `mapstructure:"mysql_dsn"`
	MySQLMaxOpen int           `mapstructure:"mysql_max_open"`
	MySQLMaxIdle int           `mapstructure:"mysql_max_idle"`
	MySQLMaxLife time.Duration `mapstructure:"mysql_max_life"`
}

type CacheConfig struct {
	RedisAddr       string        `mapstructure:"redis_addr"`
	RedisPassword   string        `mapstructure:"redis_password"`
	RedisDB         int           `mapstructure:"redis_db"`
	LocalGCInterval time.Duration `mapstructure:"local_gc_interval"`
}

// GameConfig holds the gameplay tuning knobs. Defaults reproduce the
// live balance: 10 catches / 3 challenges / 10 adventures per 12-hour
// window, 30s attack cooldown, 60s adventure cooldown, 48h gyms.
type GameConfig struct {
	CatchLimit        int           `mapstructure:"catch_limit"`
	ChallengeLimit    int           `mapstructure:"challenge_limit"`
	AdventureLimit    int           `mapstructure:"adventure_limit"`
	QuotaWindow       time.Duration `mapstructure:"quota_window"`
	AttackCooldown    time.Duration `mapstructure:"attack_cooldown"`
	AdventureCooldown time.Duration `mapstructure:"adventure_cooldown"`
	ChallengeTimeout  time.Duration `mapstructure:"challenge_timeout"`
	PendingTimeout    time.Duration `mapstructure:"pending_timeout"`
	GymDuration       time.Duration `mapstructure:"gym_duration"`
	MaxBattleRounds   int           `mapstructure:"max_battle_rounds"`
	ItemDropPercent   int           `mapstructure:"item_drop_percent"`
	CreatureLossPct   int           `mapstructure:"creature_loss_percent"`
}

type SecurityConfig struct {
	JWTSecret      string        `mapstructure:"jwt_secret"`
	JWTTTL         time.Duration `mapstructure:"jwt_ttl"`
	RateLimitRPS   float64       `mapstructure:"rate_limit_rps"`
	RateLimitBurst int           `mapstructure:"rate_limit_burst"`
	AdminAllowIPs  []string      `mapstructure:"admin_allow_ips"`
}

// Load reads config from the given YAML file path.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.debug", false)
	v.SetDefault("database.mode", "sqlite")
	v.SetDefault("database.sqlite_path", "./data/creaturebot.db")
	v.SetDefault("database.mysql_max_open", 50)
	v.SetDefault("database.mysql_max_idle", 10)
	v.SetDefault("database.mysql_max_life", "1h")
	v.SetDefault("cache.local_gc_interval", "30s")
	v.SetDefault("game.catch_limit", 10)
	v.SetDefault("game.challenge_limit", 3)
	v.SetDefault("game.adventure_limit", 10)
	v.SetDefault("game.quota_window", "12h")
	v.SetDefault("game.attack_cooldown", "30s")
	v.SetDefault("game.adventure_cooldown", "60s")
	v.SetDefault("game.challenge_timeout", "5m")
	v.SetDefault("game.pending_timeout", "5m")
	v.SetDefault("game.gym_duration", "48h")
	v.SetDefault("game.max_battle_rounds", 20)
	v.SetDefault("game.item_drop_percent", 15)
	v.SetDefault("game.creature_loss_percent", 20)
	v.SetDefault("security.jwt_ttl", "72h")
	v.SetDefault("security.rate_limit_rps", 100)
	v.SetDefault("security.rate_limit_burst", 200)
}

// Default returns a Config with all defaults applied and no file read.
// Used by tests and tools that need a working config without a file.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		panic(err) // defaults always unmarshal
	}
	return cfg
}
