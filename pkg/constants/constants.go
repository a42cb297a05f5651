// Package constants provides shared constants used throughout the romdb codebase.
// This includes timeouts, file permissions, default source locations and the
// fixed values of the shard database format.
package constants

import "time"

// Timeout constants define various timeout durations used in the application
const (
	// DefaultHTTPTimeout is the standard timeout for catalog downloads
	DefaultHTTPTimeout = 30 * time.Second

	// ShutdownTimeout is how long the CLI waits for cleanup after an error
	ShutdownTimeout = 5 * time.Second

	// ShardCacheTTL is how long a lookup index keeps a decoded shard
	ShardCacheTTL = 5 * time.Minute
)

// File permission constants define standard Unix file permissions
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x)
	DirPermissions = 0755

	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644
)

// Database format constants
const (
	// CRCLength is the number of hexadecimal characters in a checksum
	CRCLength = 8

	// PrefixLength is the number of checksum characters used to pick a shard
	PrefixLength = 2

	// ShardCount is the number of possible shard prefixes (00 through FF)
	ShardCount = 256

	// ShardExtension is the file extension of every shard file
	ShardExtension = ".json"

	// ShardIndent is the indentation used when serializing shard files
	ShardIndent = "    "

	// SentinelCRC marks an unknown or invalid checksum in override files
	SentinelCRC = "XXXXXXXX"

	// UnknownTitle is reported for override entries without a long title
	UnknownTitle = "N/A"
)

// Default locations
const (
	// DefaultOutputDir is where shard files are written, relative to the project root
	DefaultOutputDir = "Source/db"

	// DefaultUserAgent is sent with catalog requests; raw.githubusercontent.com
	// throttles requests without a browser-like agent.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

	// ConfigName is the base name of the optional config file
	ConfigName = ".romdb"

	// EnvPrefix is the prefix of romdb environment variables
	EnvPrefix = "ROMDB"
)

// DefaultCatalogURLs lists the upstream catalogs in processing order.
// Later catalogs overwrite earlier ones on duplicate checksums.
var DefaultCatalogURLs = []string{
	"https://raw.githubusercontent.com/libretro/libretro-database/refs/heads/master/metadat/genre/Nintendo%20-%20Game%20Boy%20Color.dat",
	"https://raw.githubusercontent.com/libretro/libretro-database/refs/heads/master/metadat/genre/Nintendo%20-%20Game%20Boy.dat",
}

// DefaultROMExtensions are the file extensions a library scan treats as ROMs.
var DefaultROMExtensions = []string{".gb", ".gbc"}

// DefaultOverrideFiles lists the curated override files in merge order.
var DefaultOverrideFiles = []string{
	"scripts/homebrew.json",
	"scripts/romhacks.json",
}
