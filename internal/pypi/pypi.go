// Package pypi provides a registry client for pypi.org.
package pypi

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
	DefaultURL = "https://pypi.org"
	ecosystem  = "pypi"
	engine     = "python"
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

type packageResponse struct {
	Releases map[string][]releaseFile `json:"releases"`
}

type releaseFile struct {
	UploadTime     string `json:"upload_time"`
	Yanked         bool   `json:"yanked"`
	RequiresPython string `json:"requires_python"`
}

// FetchVersions returns every release of a project. The requires_python of
// a release's first file becomes its "python" engine constraint.
func (r *Registry) FetchVersions(ctx context.Context, name string) ([]core.Version, error) {
	endpoint := fmt.Sprintf("%s/pypi/%s/json", r.baseURL, url.PathEscape(name))

	var resp packageResponse
	if err := r.client.GetJSON(ctx, endpoint, &resp); err != nil {
		var httpErr *core.HTTPError
		if errors.As(err, &httpErr) && httpErr.IsNotFound() {
			return nil, &core.NotFoundError{Ecosystem: ecosystem, Name: name}
		}
		return nil, err
	}

	versions := make([]core.Version, 0, len(resp.Releases))
	for num, files := range resp.Releases {
		if len(files) == 0 {
			versions = append(versions, core.Version{Number: num})
			continue
		}

		file := files[0]
		var publishedAt time.Time
		if file.UploadTime != "" {
			publishedAt, _ = time.Parse("2006-01-02T15:04:05", file.UploadTime)
		}

		var status core.VersionStatus
		if file.Yanked {
			status = core.StatusYanked
		}

		var engines map[string]string
		if constraint := pythonConstraint(file.RequiresPython); constraint != "" {
			engines = map[string]string{engine: constraint}
		}

		versions = append(versions, core.Version{
			Number:      num,
			PublishedAt: publishedAt,
			Status:      status,
			Engines:     engines,
		})
	}

	return versions, nil
}

// pythonConstraint reduces a PEP 440 specifier set such as ">=3.8,<4" to the
// lower bound the engine matcher understands. "~=X" counts as ">=X" and a
// lone "==X" stays an exact match. Upper bounds and exclusions are dropped,
// so a set without a lower bound yields "".
func pythonConstraint(spec string) string {
	var exact string
	clauses := strings.Split(spec, ",")
	for _, clause := range clauses {
		clause = strings.ReplaceAll(strings.TrimSpace(clause), " ", "")
		switch {
		case strings.HasPrefix(clause, ">="):
			return clause
		case strings.HasPrefix(clause, "~="):
			return ">=" + strings.TrimPrefix(clause, "~=")
		case strings.HasPrefix(clause, "==") && !strings.Contains(clause, "*"):
			exact = strings.TrimPrefix(clause, "==")
		}
	}
	if exact != "" && len(clauses) == 1 {
		return exact
	}
	return ""
}

func normalizeName(name string) string {
	name = strings.ToLower(name)
	name = strings.ReplaceAll(name, "_", "-")
	name = strings.ReplaceAll(name, ".", "-")
	return name
}

type URLs struct {
	baseURL string
}

func (u *URLs) Registry(name, version string) string {
	if version != "" {
		return fmt.Sprintf("%s/project/%s/%s/", u.baseURL, name, version)
	}
	return fmt.Sprintf("%s/project/%s/", u.baseURL, name)
}

func (u *URLs) PURL(name, version string) string {
	normalized := normalizeName(name)
	if version != "" {
		return fmt.Sprintf("pkg:pypi/%s@%s", normalized, version)
	}
	return fmt.Sprintf("pkg:pypi/%s", normalized)
}
