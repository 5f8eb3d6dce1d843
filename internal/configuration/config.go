package configuration

import (
	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	"yardwatch/internal/logger"
)

type Config struct {
	ServerAddress string
	DatabaseURI   string
	RedisAddress  string
	LogLevel      logger.Level
	LogToFile     bool
	OwnerSalt     string
	PushContact   string
	SweepSchedule string
	Yards         []Yard
}

// Yard describes one upstream inventory source. Kind selects the client
// used to fetch and parse it.
type Yard struct {
	ID      string `toml:"id"`
	Name    string `toml:"name"`
	Kind    string `toml:"kind"`
	BaseURL string `toml:"base_url"`
}

const (
	YardKindJSON = "json"
	YardKindHTML = "html"
)

type tomlConfig struct {
	ServerAddress string `toml:"server_address"`
	DatabaseURI   string `toml:"database_uri"`
	RedisAddress  string `toml:"redis_address"`
	LogLevel      string `toml:"log_level"`
	LogToFile     bool   `toml:"log_to_file"`
	OwnerSalt     string `toml:"owner_salt"`
	PushContact   string `toml:"push_contact"`
	SweepSchedule string `toml:"sweep_schedule"`
	Yards         []Yard `toml:"yards"`
}

func GetConfig(path string) (*Config, error) {
	var tc tomlConfig
	_, err := toml.DecodeFile(path, &tc)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to decode toml file with path: %s", path)
	}

	if tc.ServerAddress == "" {
		tc.ServerAddress = "localhost:8888"
	}

	if tc.DatabaseURI == "" {
		tc.DatabaseURI = "mongodb://localhost:27017"
	}

	if tc.RedisAddress == "" {
		tc.RedisAddress = "localhost:6379"
	}

	if tc.LogLevel == "" {
		tc.LogLevel = "INFO"
	}
	logLevel, err := logger.ParseLevel(tc.LogLevel)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse log_level: %s", tc.LogLevel)
	}

	if tc.OwnerSalt == "" {
		return nil, errors.New("owner_salt is not set")
	}

	if tc.PushContact == "" {
		return nil, errors.New("push_contact is not set")
	}

	if tc.SweepSchedule == "" {
		tc.SweepSchedule = "09:00"
	}

	if len(tc.Yards) == 0 {
		return nil, errors.New("no yards are configured")
	}
	seen := map[string]bool{}
	for _, y := range tc.Yards {
		if y.ID == "" || y.Name == "" || y.BaseURL == "" {
			return nil, errors.Errorf("yard is missing id, name or base_url: %+v", y)
		}
		if y.Kind != YardKindJSON && y.Kind != YardKindHTML {
			return nil, errors.Errorf("yard %s has unknown kind: %s", y.ID, y.Kind)
		}
		if seen[y.ID] {
			return nil, errors.Errorf("duplicate yard id: %s", y.ID)
		}
		seen[y.ID] = true
	}

	return &Config{
		ServerAddress: tc.ServerAddress,
		DatabaseURI:   tc.DatabaseURI,
		RedisAddress:  tc.RedisAddress,
		LogLevel:      logLevel,
		LogToFile:     tc.LogToFile,
		OwnerSalt:     tc.OwnerSalt,
		PushContact:   tc.PushContact,
		SweepSchedule: tc.SweepSchedule,
		Yards:         tc.Yards,
	}, nil
}
