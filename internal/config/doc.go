// Package config manages user-level settings stored at ~/.dgc/config.yaml.
// Values can be overridden with DGC_* environment variables (a .env file in
// the working directory is honored) and, for some keys, with command flags.
package config
