// FILE: lakefield/mergeconf/example/main.go
package main

import (
	"log"
	"os"
	"path/filepath"

	"github.com/lakefield/mergeconf"
)

// ServerConfig is the typed view of the merged tree used in Part 3.
type ServerConfig struct {
	Host    string   `toml:"host"`
	Port    int64    `toml:"port"`
	Workers int64    `toml:"workers"`
	Tags    []string `toml:"tags"`
}

func main() {
	workDir, err := os.MkdirTemp("", "mergeconf-example-*")
	if err != nil {
		log.Fatalf("❌ Failed to create work directory: %v", err)
	}
	defer func() {
		log.Println("---")
		log.Println("🧹 Cleaning up...")
		os.RemoveAll(workDir)
		os.Unsetenv("DEMO_SERVER_PORT")
	}()

	baseFile := filepath.Join(workDir, "base.toml")
	cacheFile := filepath.Join(workDir, "config.cache.toml")

	// =========================================================================
	// PART 1: PROVIDERS AND MERGE DIRECTIVES
	// =========================================================================
	log.Println("---")
	log.Println("➡️  PART 1: Merging providers with directives...")

	if err := os.WriteFile(baseFile, []byte(`
cache-enabled = true

[server]
host = "localhost"
port = 8080
workers = 4
debug = true
`), 0644); err != nil {
		log.Fatalf("❌ Failed to write base config: %v", err)
	}

	os.Setenv("DEMO_SERVER_PORT", "9090")
	log.Println("   (Set environment variable DEMO_SERVER_PORT=9090)")

	override := mergeconf.Tree{
		"server": mergeconf.Tree{
			"tags":  []string{"edge", "demo"},
			"debug": mergeconf.Remove,
		},
	}

	cfg, err := mergeconf.NewBuilder().
		WithProviders(
			mergeconf.File(baseFile),
			mergeconf.Env("DEMO_"),
			mergeconf.Static("override", override),
		).
		WithProcessors(func(t mergeconf.Tree) (mergeconf.Tree, error) {
			t["post-processed"] = true
			return t, nil
		}).
		WithCacheFile(cacheFile).
		Build()
	if err != nil {
		log.Fatalf("❌ Build failed: %v", err)
	}

	host, _ := cfg.String("server.host")
	port, _ := cfg.Int64("server.port")
	log.Printf("✅ Merged config: server.host=%s server.port=%d (env beat file)", host, port)
	if _, found := cfg.Get("server.debug"); !found {
		log.Println("✅ server.debug removed by directive")
	}

	// =========================================================================
	// PART 2: CACHE HIT SKIPS PROVIDERS
	// =========================================================================
	log.Println("---")
	log.Println("➡️  PART 2: Rebuilding from the cache...")

	cached, err := mergeconf.Quick(cacheFile,
		mergeconf.ProviderFunc("unreachable", func() (any, error) {
			log.Println("   (provider ran, cache was not used!)")
			return mergeconf.Tree{}, nil
		}),
	)
	if err != nil {
		log.Fatalf("❌ Cached build failed: %v", err)
	}
	log.Printf("✅ FromCache=%v, server.port preserved as %v", cached.FromCache(), must(cached.Int64("server.port")))

	// =========================================================================
	// PART 3: TYPED ACCESS WITH SCAN
	// =========================================================================
	log.Println("---")
	log.Println("➡️  PART 3: Decoding into a struct...")

	var server ServerConfig
	if err := cfg.Scan("server", &server); err != nil {
		log.Fatalf("❌ Scan failed: %v", err)
	}
	log.Printf("✅ ServerConfig: %+v", server)

	log.Println("---")
	log.Println("Final tree as TOML:")
	if err := cfg.Dump(os.Stdout); err != nil {
		log.Fatalf("❌ Dump failed: %v", err)
	}
}

func must[T any](v T, err error) T {
	if err != nil {
		log.Fatalf("❌ %v", err)
	}
	return v
}
