package constants_test

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/crankboy/romdb/pkg/constants"
)

// Example demonstrates creating a shard with the standard permissions.
func Example() {
	dir, err := os.MkdirTemp("", "romdb")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(dir)

	file := filepath.Join(dir, "6b"+constants.ShardExtension)
	if err := os.WriteFile(file, []byte("{}"), constants.FilePermissions); err != nil {
		panic(err)
	}

	fmt.Printf("Created dir with %o permissions\n", constants.DirPermissions)
	fmt.Printf("Created %s with %o permissions\n", filepath.Base(file), constants.FilePermissions)
	// Output:
	// Created dir with 755 permissions
	// Created 6b.json with 644 permissions
}

// Example_shardPrefix shows how a checksum maps to its shard file.
func Example_shardPrefix() {
	crc := "6BF9D4C3"
	prefix := strings.ToLower(crc[:constants.PrefixLength])

	fmt.Println(prefix + constants.ShardExtension)
	fmt.Println(constants.ShardCount)
	// Output:
	// 6b.json
	// 256
}

// Example_timeouts demonstrates timeout constants.
func Example_timeouts() {
	client := &http.Client{
		Timeout: constants.DefaultHTTPTimeout,
	}
	fmt.Printf("HTTP timeout: %v\n", client.Timeout)
	fmt.Printf("Shutdown timeout: %v\n", constants.ShutdownTimeout)

	// Output:
	// HTTP timeout: 30s
	// Shutdown timeout: 5s
}

// Example_sources lists the default inputs in processing order.
func Example_sources() {
	for _, u := range constants.DefaultCatalogURLs {
		fmt.Println(filepath.Base(strings.ReplaceAll(u, "%20", " ")))
	}
	for _, f := range constants.DefaultOverrideFiles {
		fmt.Println(f)
	}
	// Output:
	// Nintendo - Game Boy Color.dat
	// Nintendo - Game Boy.dat
	// scripts/homebrew.json
	// scripts/romhacks.json
}
