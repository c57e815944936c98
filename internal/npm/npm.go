// Package npm provides a registry client for npmjs.com.
package npm

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
	DefaultURL = "https://registry.npmjs.org"
	ecosystem  = "npm"
	engine     = "node"
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
	r.urls = &URLs{}
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

type packageResponse struct {
	ID       string                 `json:"_id"`
	Name     string                 `json:"name"`
	Versions map[string]versionInfo `json:"versions"`
	Time     map[string]string      `json:"time"`
}

type versionInfo struct {
	Version    string `json:"version"`
	Deprecated any    `json:"deprecated"`
	Engines    any    `json:"engines"`
}

// FetchVersions returns every published version with its engines field.
func (r *Registry) FetchVersions(ctx context.Context, name string) ([]core.Version, error) {
	endpoint := fmt.Sprintf("%s/%s", r.baseURL, url.PathEscape(name))

	var resp packageResponse
	if err := r.client.GetJSON(ctx, endpoint, &resp); err != nil {
		var httpErr *core.HTTPError
		if errors.As(err, &httpErr) && httpErr.IsNotFound() {
			return nil, &core.NotFoundError{Ecosystem: ecosystem, Name: name}
		}
		return nil, err
	}

	versions := make([]core.Version, 0, len(resp.Versions))
	for num, v := range resp.Versions {
		var publishedAt time.Time
		if timeStr, ok := resp.Time[num]; ok {
			publishedAt, _ = time.Parse(time.RFC3339, timeStr)
		}

		var status core.VersionStatus
		if isDeprecated(v.Deprecated) {
			status = core.StatusDeprecated
		}

		versions = append(versions, core.Version{
			Number:      num,
			PublishedAt: publishedAt,
			Status:      status,
			Engines:     extractEngines(v.Engines),
		})
	}

	return versions, nil
}

// extractEngines accepts the object form {"node": ">=14"} and the legacy
// array form ["node >= 0.8"].
func extractEngines(v any) map[string]string {
	switch e := v.(type) {
	case map[string]any:
		engines := make(map[string]string, len(e))
		for name, constraint := range e {
			if s, ok := constraint.(string); ok {
				engines[name] = s
			}
		}
		return engines
	case []any:
		engines := make(map[string]string, len(e))
		for _, item := range e {
			s, ok := item.(string)
			if !ok {
				continue
			}
			name, constraint, found := strings.Cut(strings.TrimSpace(s), " ")
			if !found {
				continue
			}
			if _, seen := engines[name]; !seen {
				engines[name] = strings.TrimSpace(constraint)
			}
		}
		return engines
	}
	return nil
}

// isDeprecated reads the deprecated field, which holds a message or, in old
// packuments, a boolean.
func isDeprecated(v any) bool {
	switch d := v.(type) {
	case string:
		return d != ""
	case bool:
		return d
	}
	return false
}

type URLs struct{}

func (u *URLs) Registry(name, version string) string {
	if version != "" {
		return fmt.Sprintf("https://www.npmjs.com/package/%s/v/%s", name, version)
	}
	return fmt.Sprintf("https://www.npmjs.com/package/%s", name)
}

func (u *URLs) PURL(name, version string) string {
	namespace := ""
	pkgName := name
	if strings.HasPrefix(name, "@") && strings.Contains(name, "/") {
		parts := strings.SplitN(name, "/", 2)
		namespace = "%40" + strings.TrimPrefix(parts[0], "@")
		pkgName = parts[1]
	}

	if namespace != "" {
		if version != "" {
			return fmt.Sprintf("pkg:npm/%s/%s@%s", namespace, pkgName, version)
		}
		return fmt.Sprintf("pkg:npm/%s/%s", namespace, pkgName)
	}

	if version != "" {
		return fmt.Sprintf("pkg:npm/%s@%s", pkgName, version)
	}
	return fmt.Sprintf("pkg:npm/%s", pkgName)
}
