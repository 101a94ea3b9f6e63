package config

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors for configuration validation
var (
	ErrInvalidFlag  = goerr.New("invalid flag value")
	ErrMissingFlag  = goerr.New("required flag is missing")
	ErrSeedNotFound = goerr.New("seed file not found")
	ErrInvalidSeed  = goerr.New("invalid seed file")
)

// Context keys for error values
const (
	FlagKey      = "flag"
	SeedPathKey  = "seed_path"
	SyncIndexKey = "sync_index"
	ListNameKey  = "list_name"
)
