// Package config loads settings for the mock completion server and sets up
// the shared logger.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// Fallbacks applied when neither flag, env, nor YAML sets a value.
const (
	// DefaultHost is the loopback address the mock server binds to.
	DefaultHost = "127.0.0.1"
	// DefaultPort is the port front-end dev builds point at.
	DefaultPort = 8001
	// DefaultLogLevel is the logrus level name.
	DefaultLogLevel = "info"
	// DefaultLogFormat selects the logrus text formatter.
	DefaultLogFormat = "text"
)

// Server holds mock server settings.
type Server struct {
	Host string    `yaml:"host"`
	Port int       `yaml:"port"`
	Log  LogConfig `yaml:"log"`
}

// LogConfig controls logrus level and formatter.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Addr returns the host:port listen address.
func (s *Server) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// ServerFlags are the command-line overrides for Server.
type ServerFlags struct {
	ConfigPath string
	Host       string
	Port       int
	LogLevel   string
	LogFormat  string
}

// BindServerFlags registers the server flags on fs.
func BindServerFlags(fs *pflag.FlagSet) *ServerFlags {
	f := &ServerFlags{}
	fs.StringVar(&f.ConfigPath, "config", "", "Optional YAML config file (env MOCK_GPT_CONFIG)")
	fs.StringVar(&f.Host, "host", "", "Listen host (env MOCK_GPT_HOST, default "+DefaultHost+")")
	fs.IntVar(&f.Port, "port", 0, fmt.Sprintf("Listen port (env MOCK_GPT_PORT, default %d)", DefaultPort))
	fs.StringVar(&f.LogLevel, "log-level", "", "Log level: debug, info, warn, error (env LOG_LEVEL)")
	fs.StringVar(&f.LogFormat, "log-format", "", "Log format: text or json (env LOG_FORMAT)")
	return f
}

// LoadServer resolves settings with precedence flag > env > YAML file > default.
func LoadServer(flags *ServerFlags) (*Server, error) {
	if flags == nil {
		flags = &ServerFlags{}
	}
	cfg := &Server{}

	path := strings.TrimSpace(flags.ConfigPath)
	if path == "" {
		path = strings.TrimSpace(os.Getenv("MOCK_GPT_CONFIG"))
	}
	if path != "" {
		if err := loadYAML(path, cfg); err != nil {
			return nil, err
		}
	}

	if v := strings.TrimSpace(os.Getenv("MOCK_GPT_HOST")); v != "" {
		cfg.Host = v
	}
	if v := strings.TrimSpace(os.Getenv("MOCK_GPT_PORT")); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("parse MOCK_GPT_PORT %q: %w", v, err)
		}
		cfg.Port = port
	}
	if v := strings.TrimSpace(os.Getenv("LOG_LEVEL")); v != "" {
		cfg.Log.Level = v
	}
	if v := strings.TrimSpace(os.Getenv("LOG_FORMAT")); v != "" {
		cfg.Log.Format = v
	}

	if v := strings.TrimSpace(flags.Host); v != "" {
		cfg.Host = v
	}
	if flags.Port != 0 {
		cfg.Port = flags.Port
	}
	if v := strings.TrimSpace(flags.LogLevel); v != "" {
		cfg.Log.Level = v
	}
	if v := strings.TrimSpace(flags.LogFormat); v != "" {
		cfg.Log.Format = v
	}

	setDefaults(cfg)
	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func loadYAML(path string, cfg *Server) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func setDefaults(cfg *Server) {
	if strings.TrimSpace(cfg.Host) == "" {
		cfg.Host = DefaultHost
	}
	if cfg.Port == 0 {
		cfg.Port = DefaultPort
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}
}

func validate(cfg *Server) error {
	if cfg.Port < 1 || cfg.Port > 65535 {
		return fmt.Errorf("port %d out of range", cfg.Port)
	}
	switch strings.ToLower(cfg.Log.Format) {
	case "text", "json":
	default:
		return errors.New("log format must be text or json")
	}
	return nil
}
