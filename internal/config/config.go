// Package config loads Beams instance and auth-server settings with viper.
//
// Values come from (highest priority first) bound CLI flags, BEAMS_* environment
// variables and a YAML config file, either ./beams.yaml or
// $HOME/.beams/config.yaml:
//
//	instance_id: 8f9a6e22-2483-49aa-8552-125f1a4c5781
//	secret_key: ...
//	auth:
//	  port: 8080
//	  session_secret: ...
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jmerrifield20/beams/pkg/beams"
	"github.com/spf13/viper"
)

// Keys understood by Load and LoadServer.
const (
	KeyInstanceID = "instance_id"
	KeySecretKey  = "secret_key"
	KeyEndpoint   = "endpoint"

	KeyAuthPort          = "auth.port"
	KeyAuthPath          = "auth.path"
	KeyAuthSessionSecret = "auth.session_secret"
	KeyAuthCORSOrigins   = "auth.cors_origins"
)

// ServerConfig configures the auth endpoint server.
type ServerConfig struct {
	Port          int
	Path          string
	SessionSecret string
	CORSOrigins   []string
}

// New returns a viper instance with defaults and env binding set. cfgFile,
// when non-empty, replaces the ./beams.yaml and ~/.beams/config.yaml lookup.
func New(cfgFile string) *viper.Viper {
	v := viper.New()
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("beams")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	v.SetEnvPrefix("BEAMS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault(KeyAuthPort, 8080)
	v.SetDefault(KeyAuthPath, "/pusher/beams-auth")
	v.SetDefault(KeyAuthSessionSecret, "")
	v.SetDefault(KeyAuthCORSOrigins, []string{"*"})
	return v
}

// Read loads the config file, if any. Without an explicit file, ./beams.yaml
// is tried first and then $HOME/.beams/config.yaml. A missing file is not an
// error; found reports whether one was read.
func Read(v *viper.Viper) (found bool, err error) {
	err = v.ReadInConfig()
	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) {
		home := homeConfigFile()
		if home == "" {
			return false, nil
		}
		if _, statErr := os.Stat(home); statErr != nil {
			return false, nil
		}
		v.SetConfigFile(home)
		err = v.ReadInConfig()
	}
	if err != nil {
		return false, fmt.Errorf("read config: %w", err)
	}
	return true, nil
}

func homeConfigFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".beams", "config.yaml")
}

// Load builds a beams.Config. Because config files are untyped, each value
// is checked to be a string; an unset instance_id or secret_key is a
// missing argument. Empty strings are left for beams.New to reject.
func Load(v *viper.Viper) (beams.Config, error) {
	instanceID, err := requiredString(v, KeyInstanceID, "instanceId")
	if err != nil {
		return beams.Config{}, err
	}
	secretKey, err := requiredString(v, KeySecretKey, "secretKey")
	if err != nil {
		return beams.Config{}, err
	}

	cfg := beams.Config{InstanceID: instanceID, SecretKey: secretKey}
	if raw := v.Get(KeyEndpoint); raw != nil {
		endpoint, ok := raw.(string)
		if !ok {
			return beams.Config{}, beams.NewError(beams.ErrInvalidType, "endpoint must be a string")
		}
		cfg.Endpoint = strings.TrimRight(endpoint, "/")
	}
	return cfg, nil
}

// LoadServer builds the auth server settings.
func LoadServer(v *viper.Viper) (ServerConfig, error) {
	cfg := ServerConfig{
		Port:          v.GetInt(KeyAuthPort),
		Path:          v.GetString(KeyAuthPath),
		SessionSecret: v.GetString(KeyAuthSessionSecret),
		CORSOrigins:   stringList(v, KeyAuthCORSOrigins),
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return ServerConfig{}, fmt.Errorf("%s: invalid port %d", KeyAuthPort, cfg.Port)
	}
	if !strings.HasPrefix(cfg.Path, "/") {
		return ServerConfig{}, fmt.Errorf("%s: must start with '/', got %q", KeyAuthPath, cfg.Path)
	}
	if cfg.SessionSecret == "" {
		return ServerConfig{}, fmt.Errorf("%s is required to verify user sessions", KeyAuthSessionSecret)
	}
	return cfg, nil
}

func requiredString(v *viper.Viper, key, name string) (string, error) {
	raw := v.Get(key)
	if raw == nil {
		return "", beams.NewError(beams.ErrMissingArgument, "%q is required in PushNotifications options", name)
	}
	s, ok := raw.(string)
	if !ok {
		return "", beams.NewError(beams.ErrInvalidType, "%q must be a string", name)
	}
	return s, nil
}

// stringList reads a list from a YAML sequence or, for env values, a
// comma-separated string.
func stringList(v *viper.Viper, key string) []string {
	raw, ok := v.Get(key).(string)
	if !ok {
		return v.GetStringSlice(key)
	}
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
