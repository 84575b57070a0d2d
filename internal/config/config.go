package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Mode          string        `mapstructure:"mode"`
	Port          int           `mapstructure:"port"`
	StaticPath    string        `mapstructure:"static_path"`
	UploadsDir    string        `mapstructure:"uploads_dir"`
	ReadLimit     int64         `mapstructure:"read_limit"`
	PingPeriod    time.Duration `mapstructure:"ping_period"`
	SendBuffer    int           `mapstructure:"send_buffer"`
	MsgRate       int           `mapstructure:"msg_rate"`
	MsgRateWindow time.Duration `mapstructure:"msg_rate_window"`
	PollDuration  time.Duration `mapstructure:"poll_duration"`
	QueueSize     int           `mapstructure:"queue_size"`
	AuthMode      string        `mapstructure:"auth_mode"`
	Secret        string        `mapstructure:"secret"`
	ICEServers    []ICEServer   `mapstructure:"ice_servers"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	fileName := fmt.Sprintf("config/config.%s.yaml", env)

	v.SetConfigFile(fileName)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetDefault("mode", "release")
	v.SetDefault("port", 8080)
	v.SetDefault("static_path", "./web")
	v.SetDefault("uploads_dir", "./uploads")
	v.SetDefault("read_limit", 32768)
	v.SetDefault("ping_period", "54s")
	v.SetDefault("send_buffer", 256)
	v.SetDefault("msg_rate", 50)
	v.SetDefault("msg_rate_window", "1s")
	v.SetDefault("poll_duration", "60s")
	v.SetDefault("queue_size", 512)
	v.SetDefault("auth_mode", "none")
	v.SetDefault("secret", "dev-secret")
	v.SetDefault("ice_servers", []map[string]any{
		{"urls": []string{"stun:stun.l.google.com:19302"}},
	})

	if err := v.ReadInConfig(); err != nil {
		fmt.Printf("⚠️ Config file not found (%s), using defaults\n", fileName)
	} else {
		fmt.Printf("✅ Loaded config: %s\n", fileName)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.AuthMode != "jwt" && cfg.AuthMode != "none" {
		return nil, fmt.Errorf("unknown auth_mode %q", cfg.AuthMode)
	}
	if err := validateICEServers(cfg.ICEServers); err != nil {
		return nil, err
	}
	fmt.Printf("🧩 Mode: %s | Port: %d | Auth: %s | Static: %s\n", cfg.Mode, cfg.Port, cfg.AuthMode, cfg.StaticPath)
	return &cfg, nil
}
