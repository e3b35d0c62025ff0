// Package pipeline is the HTTP client for the remote matching backend: the
// parse pipeline, the scoring endpoint and the wingman advice endpoint.
package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/room-matcher/backend/internal/models"
)

// ErrNotConfigured is returned when the pipeline base URL is absent from the
// environment. It is checked before any network call.
var ErrNotConfigured = errors.New("pipeline endpoint is not configured")

// Error is a failed pipeline request or an unusable pipeline reply.
type Error struct {
	Status  int
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("pipeline request failed (%d): %s", e.Status, e.Message)
	}
	return e.Message
}

// Submission is one file handed to the parse pipeline. Data is the raw
// content for direct binary submission; PathRef is the durable reference
// used for the JSON fallback.
type Submission struct {
	Name        string
	ContentType string
	Data        []byte
	PathRef     string
}

// Client talks to the remote matching backend.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a pipeline client for the given base URL. An empty base
// URL yields a client whose every call fails with ErrNotConfigured.
func NewClient(baseURL string, client *http.Client) *Client {
	if client == nil {
		client = &http.Client{Timeout: 120 * time.Second}
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  client,
	}
}

// RunPipeline submits a file to the parse pipeline and returns the extracted
// profile. Direct binary submission (multipart) is preferred; when the file
// content is unavailable, or the endpoint answers 405 to multipart, the
// durable path reference is submitted as JSON instead. At most one parse
// submission reaches the backend per call, plus the single method fallback.
func (c *Client) RunPipeline(ctx context.Context, sub Submission) (*models.ParsedProfile, error) {
	if c.baseURL == "" {
		return nil, ErrNotConfigured
	}

	endpoint := c.baseURL + "/api/run-pipeline"

	if len(sub.Data) > 0 {
		profile, err := c.submitMultipart(ctx, endpoint, sub)
		if err == nil {
			return profile, nil
		}
		var perr *Error
		if errors.As(err, &perr) && perr.Status == http.StatusMethodNotAllowed && sub.PathRef != "" {
			return c.submitPathRef(ctx, endpoint, sub.PathRef)
		}
		return nil, err
	}

	if sub.PathRef == "" {
		return nil, &Error{Message: "nothing to submit: no file content and no path reference"}
	}
	return c.submitPathRef(ctx, endpoint, sub.PathRef)
}

func (c *Client) submitMultipart(ctx context.Context, endpoint string, sub Submission) (*models.ParsedProfile, error) {
	body := new(bytes.Buffer)
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", sub.Name)
	if err != nil {
		return nil, fmt.Errorf("building multipart body: %w", err)
	}
	if _, err := part.Write(sub.Data); err != nil {
		return nil, fmt.Errorf("writing multipart body: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("closing multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("building pipeline request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	return c.doParse(req)
}

func (c *Client) submitPathRef(ctx context.Context, endpoint, pathRef string) (*models.ParsedProfile, error) {
	payload, err := json.Marshal(map[string]string{"file_path": pathRef})
	if err != nil {
		return nil, fmt.Errorf("encoding path reference: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("building pipeline request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.doParse(req)
}

func (c *Client) doParse(req *http.Request) (*models.ParsedProfile, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("pipeline request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading pipeline reply: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &Error{Status: resp.StatusCode, Message: strings.TrimSpace(string(body))}
	}

	return ExtractProfile(body)
}

// MatchProfile submits a parsed profile to the scoring endpoint and returns
// the scored result set.
func (c *Client) MatchProfile(ctx context.Context, profile *models.ParsedProfile) (*models.MatchingResults, error) {
	if c.baseURL == "" {
		return nil, ErrNotConfigured
	}

	payload, err := json.Marshal(profile)
	if err != nil {
		return nil, fmt.Errorf("encoding profile: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/match-profile", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("building scoring request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("scoring request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("scoring request failed (%d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	results := models.NewMatchingResults()
	if err := json.NewDecoder(resp.Body).Decode(results); err != nil {
		return nil, fmt.Errorf("decoding scoring reply: %w", err)
	}
	if results.Wingman == nil {
		results.Wingman = make(map[string]string)
	}

	return results, nil
}

// WingmanAdvice fetches advice text for the filtered match list. The request
// goes out as a GET with the matches and profiles JSON-encoded on the query
// string; an endpoint answering 405 gets the same payload as a POST body.
// Advice is keyed by roommate ID.
func (c *Client) WingmanAdvice(ctx context.Context, matches []models.MatchResultItem, profiles []models.ParsedProfile) (map[string]string, error) {
	if c.baseURL == "" {
		return nil, ErrNotConfigured
	}

	matchesJSON, err := json.Marshal(matches)
	if err != nil {
		return nil, fmt.Errorf("encoding matches: %w", err)
	}
	profilesJSON, err := json.Marshal(profiles)
	if err != nil {
		return nil, fmt.Errorf("encoding profiles: %w", err)
	}

	query := url.Values{}
	query.Set("filtered_matches", string(matchesJSON))
	query.Set("profiles", string(profilesJSON))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/wingman?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("building wingman request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("wingman request: %w", err)
	}

	if resp.StatusCode == http.StatusMethodNotAllowed {
		resp.Body.Close()
		payload, err := json.Marshal(map[string]json.RawMessage{
			"filtered_matches": matchesJSON,
			"profiles":         profilesJSON,
		})
		if err != nil {
			return nil, fmt.Errorf("encoding wingman payload: %w", err)
		}

		post, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/wingman", bytes.NewReader(payload))
		if err != nil {
			return nil, fmt.Errorf("building wingman request: %w", err)
		}
		post.Header.Set("Content-Type", "application/json")

		resp, err = c.client.Do(post)
		if err != nil {
			return nil, fmt.Errorf("wingman request: %w", err)
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("wingman request failed (%d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	return decodeAdvice(resp.Body)
}

// decodeAdvice tolerates the advice endpoint's two observed reply shapes:
// {"wingman": {...}} and {"advice": {...}}, with a bare object of
// roommate-id keys as the last resort.
func decodeAdvice(r io.Reader) (map[string]string, error) {
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading wingman reply: %w", err)
	}

	var wrapped struct {
		Wingman map[string]string `json:"wingman"`
		Advice  map[string]string `json:"advice"`
	}
	if err := json.Unmarshal(body, &wrapped); err == nil {
		if len(wrapped.Wingman) > 0 {
			return wrapped.Wingman, nil
		}
		if len(wrapped.Advice) > 0 {
			return wrapped.Advice, nil
		}
	}

	var bare map[string]string
	if err := json.Unmarshal(body, &bare); err == nil && len(bare) > 0 {
		return bare, nil
	}

	return map[string]string{}, nil
}
