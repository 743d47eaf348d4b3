package config

import (
	"fmt"
	"sort"

	"github.com/spf13/viper"
)

// Settings holds the process-wide backup store configuration. It is loaded
// once at startup and read-only afterwards.
type Settings struct {
	VolumesPath string `mapstructure:"volumes_path"`
	Repository  string `mapstructure:"pbs_repository"`
	Namespace   string `mapstructure:"pbs_namespace"`
	Key         string `mapstructure:"pbs_key"`
}

// ServerProfile describes one managed game server.
type ServerProfile struct {
	ID          string
	Name        string   `mapstructure:"name"`
	Schedule    string   `mapstructure:"schedule"`
	Shutdown    bool     `mapstructure:"shutdown"`
	IgnorePaths []string `mapstructure:"ignore_paths"`
}

// Config is the full parsed configuration file.
type Config struct {
	Settings Settings
	Servers  []ServerProfile
}

// Load reads and validates the YAML configuration at path.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	var settings Settings
	if err := v.UnmarshalKey("settings", &settings); err != nil {
		return nil, fmt.Errorf("config: parse settings: %w", err)
	}
	if settings.VolumesPath == "" {
		return nil, fmt.Errorf("config: settings.volumes_path is required")
	}
	if settings.Repository == "" {
		return nil, fmt.Errorf("config: settings.pbs_repository is required")
	}
	if settings.Namespace == "" {
		return nil, fmt.Errorf("config: settings.pbs_namespace is required")
	}
	if settings.Key == "" {
		return nil, fmt.Errorf("config: settings.pbs_key is required")
	}

	raw := map[string]ServerProfile{}
	if err := v.UnmarshalKey("servers", &raw); err != nil {
		return nil, fmt.Errorf("config: parse servers: %w", err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("config: at least one server must be configured")
	}

	servers := make([]ServerProfile, 0, len(raw))
	for id, profile := range raw {
		profile.ID = id
		if profile.Name == "" {
			return nil, fmt.Errorf("config: server %s missing required 'name' setting", id)
		}
		if profile.Schedule == "" {
			return nil, fmt.Errorf("config: server %s missing required 'schedule' setting", id)
		}
		servers = append(servers, profile)
	}
	// YAML maps carry no order; sort for deterministic scheduling and output.
	sort.Slice(servers, func(i, j int) bool { return servers[i].ID < servers[j].ID })

	return &Config{Settings: settings, Servers: servers}, nil
}

// Profile returns the profile for the given server id.
func (c *Config) Profile(id string) (ServerProfile, bool) {
	for _, p := range c.Servers {
		if p.ID == id {
			return p, true
		}
	}
	return ServerProfile{}, false
}
