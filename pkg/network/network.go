// Package network reads and writes network files.
package network

import (
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/stringchem/netprune/pkg/api"
	"github.com/stringchem/netprune/pkg/compress"
	"sigs.k8s.io/yaml"
)

type Loader struct {
	Getter      Getter
	CacheHelper *CacheHelper
}

func NewLoader() *Loader {
	return &Loader{
		Getter:      NewGetter(),
		CacheHelper: NewCacheHelper(),
	}
}

// Load reads a network from a path, a file:// URL or an http(s):// URL.
// Remote files are downloaded once into the cache. Files ending in .gz, .zst
// or .xz are decompressed, the content may be YAML or JSON.
func (l *Loader) Load(location string) (*api.Network, error) {
	name := location
	var reader io.ReadCloser
	if u, err := url.Parse(location); err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		if err := l.CacheHelper.Fetch(l.Getter, location); err != nil {
			return nil, err
		}
		if reader, err = l.CacheHelper.OpenFromCache(location); err != nil {
			return nil, err
		}
		name = u.Path
	} else {
		if err == nil && u.Scheme == "file" {
			name = u.Path
		}
		f, err := os.Open(name)
		if err != nil {
			return nil, err
		}
		reader = f
	}
	defer reader.Close()

	n, err := Decode(name, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to load network from %s: %w", location, err)
	}
	log.Infof("Loaded network %s with %d reactions.", n.Name, n.ReactionCount())
	return n, nil
}

func Load(location string) (*api.Network, error) {
	return NewLoader().Load(location)
}

// Decode parses a network file. The name decides about decompression.
func Decode(name string, r io.Reader) (*api.Network, error) {
	decompressed, err := compress.Reader(name, r)
	if err != nil {
		return nil, err
	}
	defer decompressed.Close()
	data, err := io.ReadAll(decompressed)
	if err != nil {
		return nil, err
	}
	file := &api.NetworkFile{}
	if err := yaml.Unmarshal(data, file); err != nil {
		return nil, err
	}
	if file.Name == "" {
		file.Name = strings.TrimSuffix(filepath.Base(compress.Trim(name)), filepath.Ext(compress.Trim(name)))
	}
	return api.FromFile(file)
}

// Encode writes the network as YAML, or as JSON if the name says so.
func Encode(name string, w io.Writer, n *api.Network) error {
	var data []byte
	var err error
	if filepath.Ext(compress.Trim(name)) == ".json" {
		data, err = json.MarshalIndent(n.File(), "", "  ")
	} else {
		data, err = yaml.Marshal(n.File())
	}
	if err != nil {
		return err
	}
	compressed, err := compress.Writer(name, w)
	if err != nil {
		return err
	}
	if _, err := compressed.Write(data); err != nil {
		compressed.Close()
		return err
	}
	return compressed.Close()
}

func Save(path string, n *api.Network) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := f.Close(); err == nil {
			err = closeErr
		}
	}()
	return Encode(path, f, n)
}
