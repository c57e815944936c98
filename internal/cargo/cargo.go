// Package cargo provides a registry client for crates.io.
package cargo

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/git-pkgs/enginecheck/internal/core"
)

const (
	DefaultURL = "https://crates.io"
	ecosystem  = "cargo"
	engine     = "rust"
)

func init() {
	core.Register(ecosystem, DefaultURL, func(baseURL string, client *core.Client) core.Registry {
		return New(baseURL, client)
	})
}

type Registry struct {
	baseURL string
	client  *core.Client
	urls    *URLs
}

func New(baseURL string, client *core.Client) *Registry {
	if baseURL == "" {
		baseURL = DefaultURL
	}
	if client == nil {
		client = core.DefaultClient()
	}
	r := &Registry{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  client,
	}
	r.urls = &URLs{baseURL: r.baseURL}
	return r
}

func (r *Registry) Ecosystem() string {
	return ecosystem
}

func (r *Registry) Engine() string {
	return engine
}

func (r *Registry) URLs() core.URLBuilder {
	return r.urls
}

type crateResponse struct {
	Versions []versionInfo `json:"versions"`
}

type versionInfo struct {
	Num         string `json:"num"`
	Yanked      bool   `json:"yanked"`
	CreatedAt   string `json:"created_at"`
	RustVersion string `json:"rust_version"`
}

// FetchVersions returns every published version of a crate. A version's
// rust_version (its MSRV) becomes the engine constraint ">=<msrv>".
func (r *Registry) FetchVersions(ctx context.Context, name string) ([]core.Version, error) {
	endpoint := fmt.Sprintf("%s/api/v1/crates/%s", r.baseURL, url.PathEscape(name))

	var resp crateResponse
	if err := r.client.GetJSON(ctx, endpoint, &resp); err != nil {
		var httpErr *core.HTTPError
		if errors.As(err, &httpErr) && httpErr.IsNotFound() {
			return nil, &core.NotFoundError{Ecosystem: ecosystem, Name: name}
		}
		return nil, err
	}

	versions := make([]core.Version, 0, len(resp.Versions))
	for _, v := range resp.Versions {
		var publishedAt time.Time
		if v.CreatedAt != "" {
			publishedAt, _ = time.Parse(time.RFC3339, v.CreatedAt)
		}

		var status core.VersionStatus
		if v.Yanked {
			status = core.StatusYanked
		}

		var engines map[string]string
		if msrv := strings.TrimSpace(v.RustVersion); msrv != "" {
			engines = map[string]string{engine: ">=" + msrv}
		}

		versions = append(versions, core.Version{
			Number:      v.Num,
			PublishedAt: publishedAt,
			Status:      status,
			Engines:     engines,
		})
	}

	return versions, nil
}

type URLs struct {
	baseURL string
}

func (u *URLs) Registry(name, version string) string {
	if version != "" {
		return fmt.Sprintf("%s/crates/%s/%s", u.baseURL, name, version)
	}
	return fmt.Sprintf("%s/crates/%s", u.baseURL, name)
}

func (u *URLs) PURL(name, version string) string {
	if version != "" {
		return fmt.Sprintf("pkg:cargo/%s@%s", name, version)
	}
	return fmt.Sprintf("pkg:cargo/%s", name)
}
