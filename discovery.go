// FILE: lakefield/mergeconf/discovery.go
package mergeconf

import (
	"fmt"
	"os"
	"path/filepath"
)

// DefaultCachePath places a cache file for app under the user cache
// directory ($XDG_CACHE_HOME/<app> on Linux, the platform default
// elsewhere), creating the directory. Pass the result to WithCacheFile.
func DefaultCachePath(app string) (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate user cache directory: %w", err)
	}

	dir := filepath.Join(base, app)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create cache directory '%s': %w", dir, err)
	}

	return filepath.Join(dir, "config.cache.toml"), nil
}
