// Package rest implements the remote data provider over a PostgREST-style
// HTTP API, as exposed by hosted Postgres backends.
package rest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/kailas-cloud/careerdex/internal/domain"
	"github.com/kailas-cloud/careerdex/internal/domain/catalog"
	"github.com/kailas-cloud/careerdex/internal/metrics"
	"github.com/kailas-cloud/careerdex/internal/version"
)

const (
	backend = "rest"
	// DefaultTimeout bounds every request when Config.Timeout is zero.
	DefaultTimeout = 15 * time.Second
	maxErrorBody   = 512
)

// selects lists the embedded join tables requested per collection.
var selects = map[catalog.CollectionName]string{
	catalog.Colleges:    "*,college_specialties(specialty_id),college_tags(tag_id,weight)",
	catalog.Specialties: "*,specialty_tags(tag_id,weight),college_specialties(college_id),profession_specialties(profession_id)",
	catalog.Tags:        "*",
	catalog.Professions: "*,profession_specialties(specialty_id),profession_tags(tag_id,weight)",
	catalog.Quizzes:     "*,quiz_questions(*,quiz_answers(*,answer_tags(tag_id,weight)))",
	catalog.News:        "*",
}

// orders keeps row order stable between fetches.
var orders = map[catalog.CollectionName]string{
	catalog.News: "published_at.desc.nullslast,id",
}

// Config holds the API settings.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
	// HTTPClient overrides the default client, mainly for tests.
	HTTPClient *http.Client
}

// Provider reads catalog collections over HTTP.
type Provider struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// New creates a REST provider.
func New(cfg Config) (*Provider, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("rest provider: base url is required")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("rest provider: parse base url: %w", err)
	}

	client := cfg.HTTPClient
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		client = &http.Client{Timeout: timeout}
	}

	return &Provider{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		client:  client,
	}, nil
}

// Ping checks that the API answers a minimal query.
func (p *Provider) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { metrics.ObserveRemote(backend, "ping", start, err) }()

	q := url.Values{}
	q.Set("select", "id")
	q.Set("limit", "1")
	if err = p.get(ctx, "tags", q, io.Discard); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrRemoteUnavailable, err)
	}
	return nil
}

// FetchCollection returns the raw rows of name.
func (p *Provider) FetchCollection(ctx context.Context, name catalog.CollectionName) (out []json.RawMessage, err error) {
	start := time.Now()
	defer func() { metrics.ObserveRemote(backend, "fetch_"+string(name), start, err) }()

	sel, ok := selects[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownCollection, name)
	}
	q := url.Values{}
	q.Set("select", sel)
	order := orders[name]
	if order == "" {
		order = "id"
	}
	q.Set("order", order)

	var buf bytes.Buffer
	if err = p.get(ctx, string(name), q, &buf); err != nil {
		return nil, err
	}
	if err = json.Unmarshal(buf.Bytes(), &out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}
	if out == nil {
		out = []json.RawMessage{}
	}
	return out, nil
}

// FetchScoreTable returns every college/specialty score row.
func (p *Provider) FetchScoreTable(ctx context.Context) (out []catalog.ScoreRow, err error) {
	start := time.Now()
	defer func() { metrics.ObserveRemote(backend, "fetch_scores", start, err) }()

	q := url.Values{}
	q.Set("select", "college_id,specialty_id,avg_score_2025")
	q.Set("order", "college_id,specialty_id")

	var buf bytes.Buffer
	if err = p.get(ctx, "college_specialties", q, &buf); err != nil {
		return nil, err
	}

	var rows []struct {
		CollegeID    textID   `json:"college_id"`
		SpecialtyID  textID   `json:"specialty_id"`
		AvgScore2025 *float64 `json:"avg_score_2025"`
	}
	if err = json.Unmarshal(buf.Bytes(), &rows); err != nil {
		return nil, fmt.Errorf("decode scores: %w", err)
	}

	out = make([]catalog.ScoreRow, 0, len(rows))
	for _, r := range rows {
		row := catalog.ScoreRow{CollegeID: string(r.CollegeID), SpecialtyID: string(r.SpecialtyID)}
		if r.AvgScore2025 != nil {
			row.AvgScore2025 = *r.AvgScore2025
		}
		out = append(out, row)
	}
	return out, nil
}

// IncrementVersion calls the increment_version RPC for name.
func (p *Provider) IncrementVersion(ctx context.Context, name catalog.CollectionName) (err error) {
	start := time.Now()
	defer func() { metrics.ObserveRemote(backend, "increment_version", start, err) }()

	body, err := json.Marshal(map[string]string{"collection_name": string(name)})
	if err != nil {
		return fmt.Errorf("encode rpc body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/rest/v1/rpc/increment_version", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build rpc request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if err = p.do(req, io.Discard); err != nil {
		return fmt.Errorf("increment version %s: %w", name, err)
	}
	return nil
}

func (p *Provider) get(ctx context.Context, table string, q url.Values, dst io.Writer) error {
	u := p.baseURL + "/rest/v1/" + url.PathEscape(table) + "?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if err := p.do(req, dst); err != nil {
		return fmt.Errorf("get %s: %w", table, err)
	}
	return nil
}

func (p *Provider) do(req *http.Request, dst io.Writer) error {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())
	if p.apiKey != "" {
		req.Header.Set("apikey", p.apiKey)
		req.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(msg))}
	}
	if _, err := io.Copy(dst, resp.Body); err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	return nil
}

// StatusError is a non-2xx API response.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status %d", e.Code)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.Code, e.Body)
}

// textID decodes a key that may be a JSON number or string.
type textID string

func (t *textID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*t = ""
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = textID(s)
	default:
		*t = textID(data)
	}
	return nil
}
