package weibo

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"starchart/config"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const userAgent = "Mozilla/5.0 (Linux; Android 10) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Mobile Safari/537.36"

// Fetcher holt Ranglisten über die cardlist-API.
type Fetcher struct {
	Config *config.Config
	Logger *zap.Logger
	client *resty.Client
	params url.Values
}

// NewFetcher erstellt einen neuen Weibo-Fetcher. Die Session wird über alle
// Abrufe eines Prozesses geteilt.
func NewFetcher(cfg *config.Config, logger *zap.Logger) (*Fetcher, error) {
	params, err := url.ParseQuery(cfg.WeiboQueryParams)
	if err != nil {
		return nil, fmt.Errorf("WEIBO_QUERY_PARAMS: %w", err)
	}
	client := resty.New()
	client.SetHeader("User-Agent", userAgent)
	client.SetTimeout(cfg.WeiboTimeout)
	client.SetRetryCount(cfg.WeiboRetries)
	client.AddRetryCondition(func(r *resty.Response, err error) bool {
		return err != nil || r.StatusCode() >= http.StatusInternalServerError
	})
	return &Fetcher{Config: cfg, Logger: logger, client: client, params: params}, nil
}

// Name gibt den Namen des Providers zurück.
func (f *Fetcher) Name() string {
	return "weibo"
}

// Fetch ruft die cardlist eines Containers ab und liefert den JSON-Body.
func (f *Fetcher) Fetch(ctx context.Context, containerID string) ([]byte, error) {
	query := url.Values{}
	for k, vs := range f.params {
		query[k] = append([]string(nil), vs...)
	}
	query.Set("containerid", containerID)

	log := f.Logger.With(zap.String("containerid", containerID))
	log.Info("GET cardlist", zap.String("url", f.Config.WeiboBaseURL+"?"+query.Encode()))

	resp, err := f.client.R().
		SetContext(ctx).
		SetQueryParamsFromValues(query).
		Get(f.Config.WeiboBaseURL)
	if err != nil {
		log.Error("cardlist-Anfrage fehlgeschlagen", zap.Error(err))
		return nil, err
	}
	if resp.StatusCode() != http.StatusOK {
		log.Error("cardlist hat nicht-200-Status zurückgegeben",
			zap.Int("status", resp.StatusCode()),
			zap.ByteString("body", truncate(resp.Body(), 512)))
		return nil, fmt.Errorf("cardlist %s failed: status %d", containerID, resp.StatusCode())
	}
	log.Debug("cardlist erhalten", zap.Int("bytes", len(resp.Body())))
	return resp.Body(), nil
}

func truncate(b []byte, n int) []byte {
	if len(b) > n {
		return b[:n]
	}
	return b
}
