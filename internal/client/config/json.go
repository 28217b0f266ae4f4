package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/teamhub/internal/flagx"
	"github.com/dmitrijs2005/teamhub/internal/timex"
	"gopkg.in/yaml.v3"
)

// JsonConfig is the on-disk shape of the config file. Durations use
// timex.Duration, so both "30s" and integer nanoseconds are accepted.
type JsonConfig struct {
	APIBaseURL       string         `json:"api_base_url" yaml:"api_base_url"`
	RequestTimeout   timex.Duration `json:"request_timeout" yaml:"request_timeout"`
	SessionLength    timex.Duration `json:"session_length" yaml:"session_length"`
	WarningThreshold timex.Duration `json:"session_warning" yaml:"session_warning"`
	DBPath           string         `json:"db_path" yaml:"db_path"`
	LogLevel         string         `json:"log_level" yaml:"log_level"`
	LogBackend       string         `json:"log_backend" yaml:"log_backend"`
}

// parseJson overlays values from the file named by -c or -config. Files
// ending in .yaml or .yml are decoded as YAML, anything else as JSON.
// Fields absent from the file keep their current value. An unreadable or
// invalid file panics.
func parseJson(cfg *Config) {
	path := flagx.ConfigFileFlag()
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	var jc JsonConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &jc)
	default:
		err = json.Unmarshal(data, &jc)
	}
	if err != nil {
		panic(err)
	}

	setString(&cfg.APIBaseURL, jc.APIBaseURL)
	setString(&cfg.DBPath, jc.DBPath)
	setString(&cfg.LogLevel, jc.LogLevel)
	setString(&cfg.LogBackend, jc.LogBackend)
	if jc.RequestTimeout.Duration > 0 {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.SessionLength.Duration > 0 {
		cfg.SessionLength = jc.SessionLength.Duration
	}
	if jc.WarningThreshold.Duration > 0 {
		cfg.WarningThreshold = jc.WarningThreshold.Duration
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
