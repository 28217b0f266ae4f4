package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/dmitrijs2005/teamhub/internal/flagx"
	"github.com/joho/godotenv"
)

const defaultEnvFile = ".env"

// parseEnv overlays values from the environment. A dotenv file (-e/-env, or
// ./.env when present) is loaded first; variables already set in the process
// environment win over the file. Malformed numbers panic.
//
//	API_BASE_URL             string
//	REQUEST_TIMEOUT_SECONDS  int
//	SESSION_LENGTH_MINUTES   int
//	SESSION_WARNING_SECONDS  int
//	CLIENT_DB_PATH           string
//	LOG_LEVEL                string
//	LOG_BACKEND              string
func parseEnv(cfg *Config) {
	loadEnvFile()

	if v, ok := lookup("API_BASE_URL"); ok {
		cfg.APIBaseURL = v
	}
	if v, ok := lookupInt("REQUEST_TIMEOUT_SECONDS"); ok {
		cfg.RequestTimeout = time.Duration(v) * time.Second
	}
	if v, ok := lookupInt("SESSION_LENGTH_MINUTES"); ok {
		cfg.SessionLength = time.Duration(v) * time.Minute
	}
	if v, ok := lookupInt("SESSION_WARNING_SECONDS"); ok {
		cfg.WarningThreshold = time.Duration(v) * time.Second
	}
	if v, ok := lookup("CLIENT_DB_PATH"); ok {
		cfg.DBPath = v
	}
	if v, ok := lookup("LOG_LEVEL"); ok {
		cfg.LogLevel = v
	}
	if v, ok := lookup("LOG_BACKEND"); ok {
		cfg.LogBackend = v
	}
}

func loadEnvFile() {
	path := flagx.EnvFileFlag()
	explicit := path != ""
	if !explicit {
		path = defaultEnvFile
	}

	if err := godotenv.Load(path); err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return
		}
		panic(err)
	}
}

// lookup treats an empty variable as unset.
func lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	return v, ok && v != ""
}

func lookupInt(key string) (int, bool) {
	v, ok := lookup(key)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		panic(err)
	}
	return n, true
}
