package network

import (
	"fmt"
	"net/http"
	"net/url"
	"os"

	"github.com/hashicorp/go-retryablehttp"
	log "github.com/sirupsen/logrus"
)

type Getter interface {
	Get(url string) (resp *http.Response, err error)
}

type getterImpl struct {
	client *retryablehttp.Client
}

// NewGetter returns a Getter which retries failed HTTP requests and reads
// file:// URLs from disk.
func NewGetter() Getter {
	client := retryablehttp.NewClient()
	client.Logger = leveledLogger{}
	return &getterImpl{client: client}
}

func fileGet(filename string) (*http.Response, error) {
	fp, err := os.Open(filename)
	if err != nil {
		return nil, err // skipped wrapping the error since the error already begins with "open: "
	}

	resp := &http.Response{
		Status:     "OK",
		StatusCode: http.StatusOK,
		Body:       fp,
	}
	return resp, nil
}

func (g *getterImpl) Get(rawURL string) (*http.Response, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("Failed to parse URL: %w", err)
	}
	if u.Scheme == "file" {
		return fileGet(u.Path)
	}
	if g.client == nil {
		g.client = retryablehttp.NewClient()
		g.client.Logger = leveledLogger{}
	}
	return g.client.Get(rawURL)
}

// leveledLogger routes the retry messages of the http client to logrus.
type leveledLogger struct{}

func (leveledLogger) Error(msg string, keysAndValues ...interface{}) {
	log.WithFields(fields(keysAndValues)).Error(msg)
}

func (leveledLogger) Info(msg string, keysAndValues ...interface{}) {
	log.WithFields(fields(keysAndValues)).Debug(msg)
}

func (leveledLogger) Debug(msg string, keysAndValues ...interface{}) {
	log.WithFields(fields(keysAndValues)).Debug(msg)
}

func (leveledLogger) Warn(msg string, keysAndValues ...interface{}) {
	log.WithFields(fields(keysAndValues)).Warn(msg)
}

func fields(keysAndValues []interface{}) log.Fields {
	f := log.Fields{}
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		f[fmt.Sprint(keysAndValues[i])] = keysAndValues[i+1]
	}
	return f
}
