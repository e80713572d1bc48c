package project

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// ErrNotFound is returned when none of the searched directories holds a config file.
var ErrNotFound = errors.New("configuration file not found")

// ConfigDirs are searched in order, relative to the project path.
var ConfigDirs = []string{
	filepath.Join("app", "config"),
	"config",
	".",
}

type Application struct {
	ModelsDir string `json:"modelsDir,omitempty" yaml:"modelsDir,omitempty" mapstructure:"modelsDir"`
}

type Database struct {
	Adapter  string `json:"adapter,omitempty" yaml:"adapter,omitempty" mapstructure:"adapter"`
	Host     string `json:"host,omitempty" yaml:"host,omitempty" mapstructure:"host"`
	Port     int    `json:"port,omitempty" yaml:"port,omitempty" mapstructure:"port"`
	Username string `json:"username,omitempty" yaml:"username,omitempty" mapstructure:"username"`
	Password string `json:"password,omitempty" yaml:"password,omitempty" mapstructure:"password"`
	DBName   string `json:"dbname,omitempty" yaml:"dbname,omitempty" mapstructure:"dbname"`
	Charset  string `json:"charset,omitempty" yaml:"charset,omitempty" mapstructure:"charset"`
}

// Config is the part of a project configuration the generator reads.
// Database is nil when the file has no database section.
type Config struct {
	Application Application `json:"application" yaml:"application" mapstructure:"application"`
	Database    *Database   `json:"database,omitempty" yaml:"database,omitempty" mapstructure:"database"`

	File string `json:"-" yaml:"-" mapstructure:"-"`
}

// Load locates config.{yaml,yml,json,toml,ini} under path and decodes it.
// ${VAR} references are expanded from <path>/.env first, then the process
// environment.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	for _, dir := range ConfigDirs {
		v.AddConfigPath(filepath.Join(path, dir))
	}

	if err := v.ReadInConfig(); err != nil {
		var nf viper.ConfigFileNotFoundError
		if errors.As(err, &nf) {
			return nil, fmt.Errorf("%w in %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := &Config{File: v.ConfigFileUsed()}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config %s: %w", cfg.File, err)
	}

	env, err := readDotEnv(filepath.Join(path, ".env"))
	if err != nil {
		return nil, err
	}
	expand := func(s string) string {
		return os.Expand(s, func(key string) string {
			if val, ok := env[key]; ok {
				return val
			}
			return os.Getenv(key)
		})
	}

	cfg.Application.ModelsDir = expand(cfg.Application.ModelsDir)
	if db := cfg.Database; db != nil {
		db.Adapter = expand(db.Adapter)
		db.Host = expand(db.Host)
		db.Username = expand(db.Username)
		db.Password = expand(db.Password)
		db.DBName = expand(db.DBName)
		db.Charset = expand(db.Charset)
	}

	slog.With("config", cfg.File).Debug("loaded project configuration")
	return cfg, nil
}

func readDotEnv(file string) (map[string]string, error) {
	env, err := godotenv.Read(file)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", file, err)
	}
	return env, nil
}
