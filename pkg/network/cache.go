package network

import (
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"

	"github.com/adrg/xdg"
	log "github.com/sirupsen/logrus"
	"lukechampine.com/blake3"
)

// DefaultCacheDir is where downloaded networks are kept.
func DefaultCacheDir() string {
	return filepath.Join(xdg.CacheHome, "netprune", "networks")
}

type CacheHelper struct {
	CacheDir string
}

func NewCacheHelper() *CacheHelper {
	return &CacheHelper{CacheDir: DefaultCacheDir()}
}

// Key identifies a URL in the cache. The base name is kept so that the
// compression and format of the file can still be told by its extension.
func (r *CacheHelper) Key(rawURL string) string {
	sum := blake3.Sum256([]byte(rawURL))
	return filepath.Join(fmt.Sprintf("%x", sum[:]), path.Base(rawURL))
}

func (r *CacheHelper) Path(rawURL string) string {
	return filepath.Join(r.CacheDir, r.Key(rawURL))
}

func (r *CacheHelper) WriteToCache(rawURL string, body io.Reader) error {
	file := r.Path(rawURL)
	dir := filepath.Dir(file)

	err := os.MkdirAll(dir, 0770)
	if err != nil && !os.IsExist(err) {
		return fmt.Errorf("failed to create cache directory for %s: %v", rawURL, err)
	}
	// write next to the target first so that an aborted download never looks cached
	tmp, err := os.CreateTemp(dir, ".download-*")
	if err != nil {
		return fmt.Errorf("failed to open file in %s: %v", dir, err)
	}
	defer os.Remove(tmp.Name())
	_, err = io.Copy(tmp, body)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("failed to write file %s: %v", file, err)
	}
	return os.Rename(tmp.Name(), file)
}

func (r *CacheHelper) OpenFromCache(rawURL string) (io.ReadCloser, error) {
	file := r.Path(rawURL)
	f, err := os.Open(file)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %v", file, err)
	}
	return f, err
}

func (r *CacheHelper) Cached(rawURL string) bool {
	_, err := os.Stat(r.Path(rawURL))
	return err == nil
}

// Fetch downloads rawURL into the cache unless it is already there.
func (r *CacheHelper) Fetch(getter Getter, rawURL string) error {
	if r.Cached(rawURL) {
		log.Debugf("Using cached %s.", rawURL)
		return nil
	}
	log.Infof("Loading network from %s", rawURL)
	resp, err := getter.Get(rawURL)
	if err != nil {
		return fmt.Errorf("Failed to load network from %s: %v", rawURL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("Failed to download %s: %v ", rawURL, fmt.Errorf("status : %v", resp.StatusCode))
	}
	return r.WriteToCache(rawURL, resp.Body)
}
