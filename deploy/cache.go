package deploy

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// The cache file maps node name to the services last seen there. It is
// advisory only: a stale entry is served verbatim when the caller asks for
// cached data, and every write replaces the node's whole entry.

// ServiceRecord is the persisted form of a service. Exactly these seven
// fields survive a cache round trip; unknown fields in the file are ignored.
type ServiceRecord struct {
	Name    string            `json:"name"`
	Image   string            `json:"image"`
	Status  string            `json:"status"`
	ID      string            `json:"id"`
	Ports   map[string]string `json:"ports"`
	Env     map[string]string `json:"env"`
	Volumes []string          `json:"volumes"`
}

type cacheEntry struct {
	Services []ServiceRecord `json:"services"`
}

func readCache(path string) (map[string]cacheEntry, error) {
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return map[string]cacheEntry{}, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "cannot read cache file %s", path)
	}

	cache := map[string]cacheEntry{}
	if err := json.Unmarshal(raw, &cache); err != nil {
		return nil, errors.Wrapf(err, "cannot parse cache file %s", path)
	}
	return cache, nil
}

func hasCacheEntry(path, node string) bool {
	cache, err := readCache(path)
	if err != nil {
		return false
	}
	_, ok := cache[node]
	return ok
}

func loadCachedServices(path, node string) ([]ServiceRecord, error) {
	cache, err := readCache(path)
	if err != nil {
		return nil, err
	}
	return cache[node].Services, nil
}

// saveCachedServices replaces the node's entry. The write goes to a temp
// file first and is moved into place, so a concurrent reader never sees a
// half-written cache.
func saveCachedServices(path, node string, records []ServiceRecord) error {
	cache, err := readCache(path)
	if err != nil {
		return err
	}
	if records == nil {
		records = []ServiceRecord{}
	}
	cache[node] = cacheEntry{Services: records}

	raw, err := json.MarshalIndent(cache, "", "    ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*")
	if err != nil {
		return errors.Wrap(err, "cannot write cache file")
	}
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return errors.Wrap(err, "cannot write cache file")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return errors.Wrap(err, "cannot write cache file")
	}
	return os.Rename(tmp.Name(), path)
}
