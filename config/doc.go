// Package config provides configuration loading and validation.
//
// It uses Viper to merge a YAML config file, a .env file, and live
// environment variables, then validates the result.
//
//	var cfg config.Config
//	if err := config.Load(&cfg); err != nil {
//	    ...
//	}
//
// Environment variables override file values using the LOOM_ prefix
// with underscore-separated paths (e.g., LOOM_ENGINE_MAX_WORKERS).
package config
