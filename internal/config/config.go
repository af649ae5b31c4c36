// Package config provides functionality for managing configuration options
// for the application using command-line flags and environment variables.
package config

import (
	"encoding/json"
	"flag"
	"log"
	"os"
)

// Options holds the configuration values for the application.
type Options struct {
	// Addr defines the server's listening address (ip:port).
	Addr string

	// APIBaseURL is the base URL of the marketplace backend. When empty
	// the in-memory stub backend is used instead.
	APIBaseURL string

	// StorePath is the file path of the encrypted persisted store blob.
	StorePath string

	// StoreSecret is the symmetric secret the store key is derived from.
	StoreSecret string

	// CookieMaxAge is the shared max-age, in seconds, of every session
	// cookie the front end writes.
	CookieMaxAge int

	// LogLevel is the zap log level ("Debug", "Info", ...).
	LogLevel string

	// Config is the path to the config file.
	Config string
}

// options holds the current configuration values.
var options = &Options{}

// init initializes command-line flags and sets default values.
func init() {
	flag.StringVar(&options.Addr, "a", "localhost:8080", "run on ip:port server")
	flag.StringVar(&options.APIBaseURL, "api", "", "marketplace backend base URL (empty: stub backend)")
	flag.StringVar(&options.StorePath, "store", "session.store", "path to the encrypted session store")
	flag.StringVar(&options.StoreSecret, "secret", "", "secret for session store encryption")
	flag.IntVar(&options.CookieMaxAge, "cookie-max-age", 1800, "session cookie max-age in seconds")
	flag.StringVar(&options.LogLevel, "log-level", "Info", "log level")
	flag.StringVar(&options.Config, "config", "config.json", "path to config file")
	flag.StringVar(&options.Config, "c", "config.json", "path to config file (shorthand)")
}

// Parse parses the command-line flags and environment variables to set
// configuration values. It returns a pointer to the Options struct containing
// the parsed configuration values.
func Parse() *Options {
	flag.Parse()

	// Override flags with environment variables if set
	if configPath := os.Getenv("CONFIG"); configPath != "" {
		options.Config = configPath
	}

	if options.Config != "" {
		if _, err := os.Stat(options.Config); err == nil {
			data, err := os.ReadFile(options.Config)
			if err != nil {
				log.Fatalf("error while reading config file: %v", err)
			}
			if err := json.Unmarshal(data, options); err != nil {
				log.Fatalf("error while parsing config file: %v", err)
			}
		}
	}

	if serverAddress := os.Getenv("SERVER_ADDRESS"); serverAddress != "" {
		options.Addr = serverAddress
	}
	if apiBaseURL := os.Getenv("API_BASE_URL"); apiBaseURL != "" {
		options.APIBaseURL = apiBaseURL
	}
	if storeSecret := os.Getenv("STORE_SECRET"); storeSecret != "" {
		options.StoreSecret = storeSecret
	}

	return options
}
