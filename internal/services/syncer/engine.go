package syncer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/mlenoir/vidvault/internal/localstore"
	"github.com/mlenoir/vidvault/internal/models"
	"github.com/mlenoir/vidvault/internal/services/progress"
	"github.com/sirupsen/logrus"
)

const syncCodeKey = "videostream_sync_code"

const maxRetries = 3

var (
	// ErrInvalidCode means the candidate code fails format validation;
	// no network call was made
	ErrInvalidCode = errors.New("invalid sync code")
	// ErrCodeNotFound means the code is well-formed but the remote end
	// has no blob for it; the caller should prompt for re-entry
	ErrCodeNotFound = errors.New("sync code not found")
	// ErrNoActiveCode means push/pull was attempted before pairing
	ErrNoActiveCode = errors.New("no active sync code")
)

// syncResponse is the remote endpoint's GET payload
type syncResponse struct {
	Code        string             `json:"code"`
	Progress    models.ProgressMap `json:"progress"`
	LastUpdated int64              `json:"lastUpdated"`
	IsNew       bool               `json:"isNew"`
}

// syncPushRequest is the remote endpoint's POST payload
type syncPushRequest struct {
	Code     string             `json:"code"`
	Progress models.ProgressMap `json:"progress"`
}

// Engine pairs this device with a remote progress blob through a sync
// code and reconciles local and remote progress maps. Network failures
// during push/pull surface as retryable errors without touching local
// state; merging happens only after a successful fetch.
type Engine struct {
	store      *progress.Store
	kv         localstore.Store
	endpoint   string
	httpClient *http.Client
	logger     *logrus.Logger
}

// NewEngine creates a sync engine talking to the given sync endpoint URL
func NewEngine(store *progress.Store, kv localstore.Store, endpoint string, logger *logrus.Logger) *Engine {
	return &Engine{
		store:      store,
		kv:         kv,
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
	}
}

// ActiveCode returns the currently paired sync code, or empty if unpaired
func (e *Engine) ActiveCode() string {
	code, ok, err := e.kv.Get(syncCodeKey)
	if err != nil || !ok {
		return ""
	}
	return code
}

// EnsureCode returns the active code, asking the remote endpoint to mint
// one when unpaired. If the endpoint is unreachable a locally generated
// code is adopted instead, matching the remote generator's alphabet.
func (e *Engine) EnsureCode(ctx context.Context) (string, error) {
	if code := e.ActiveCode(); code != "" {
		return code, nil
	}

	code := GenerateCode()
	resp, err := e.fetch(ctx, "")
	if err != nil {
		e.logger.WithError(err).Warn("Could not fetch sync code from server, using local code")
	} else if resp.Code != "" {
		code = resp.Code
	}

	if err := e.kv.Set(syncCodeKey, code); err != nil {
		return "", fmt.Errorf("failed to persist sync code: %w", err)
	}
	e.logger.WithField("code", code).Info("Sync code initialized")
	return code, nil
}

// AdoptCode pairs this device with an existing code from another device.
// The code must validate and must exist remotely; only then is the remote
// progress merged in and the code persisted. An unknown code leaves both
// local progress and the active code untouched.
func (e *Engine) AdoptCode(ctx context.Context, candidate string) error {
	code := NormalizeCode(candidate)
	if !ValidCode(code) {
		return ErrInvalidCode
	}

	resp, err := e.fetch(ctx, code)
	if err != nil {
		return err
	}

	local := e.store.All()
	if err := e.store.ReplaceAll(Merge(local, resp.Progress)); err != nil {
		return fmt.Errorf("failed to store merged progress: %w", err)
	}
	if err := e.kv.Set(syncCodeKey, code); err != nil {
		return fmt.Errorf("failed to persist sync code: %w", err)
	}

	e.logger.WithFields(logrus.Fields{
		"code":    code,
		"records": len(resp.Progress),
	}).Info("Adopted sync code")
	return nil
}

// Push sends the full local progress map to the remote blob. The server
// merges it key by key, so records another device wrote more recently
// survive.
func (e *Engine) Push(ctx context.Context) error {
	code := e.ActiveCode()
	if code == "" {
		return ErrNoActiveCode
	}

	payload := syncPushRequest{Code: code, Progress: e.store.All()}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal progress: %w", err)
	}

	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint, bytes.NewReader(body))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := e.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		return checkStatus(resp)
	}

	if err := backoff.Retry(operation, e.retryPolicy(ctx)); err != nil {
		return fmt.Errorf("sync push failed: %w", err)
	}

	e.logger.WithFields(logrus.Fields{
		"code":    code,
		"records": len(payload.Progress),
	}).Debug("Pushed progress to server")
	return nil
}

// Pull fetches the remote blob and merges it into local progress, local
// records winning when they are newer
func (e *Engine) Pull(ctx context.Context) error {
	code := e.ActiveCode()
	if code == "" {
		return ErrNoActiveCode
	}

	resp, err := e.fetch(ctx, code)
	if err != nil {
		return err
	}

	local := e.store.All()
	if err := e.store.ReplaceAll(Merge(local, resp.Progress)); err != nil {
		return fmt.Errorf("failed to store merged progress: %w", err)
	}

	e.logger.WithFields(logrus.Fields{
		"code":    code,
		"records": len(resp.Progress),
	}).Debug("Pulled progress from server")
	return nil
}

// fetch GETs the remote blob for a code; an empty code asks the server to
// mint a fresh one
func (e *Engine) fetch(ctx context.Context, code string) (*syncResponse, error) {
	endpoint := e.endpoint
	if code != "" {
		endpoint += "?code=" + url.QueryEscape(code)
	}

	var result syncResponse
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return backoff.Permanent(err)
		}

		resp, err := e.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if err := checkStatus(resp); err != nil {
			return err
		}
		if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
			return fmt.Errorf("failed to decode sync response: %w", err)
		}
		return nil
	}

	if err := backoff.Retry(operation, e.retryPolicy(ctx)); err != nil {
		if errors.Is(err, ErrCodeNotFound) {
			return nil, ErrCodeNotFound
		}
		return nil, fmt.Errorf("sync fetch failed: %w", err)
	}
	if result.Progress == nil {
		result.Progress = models.ProgressMap{}
	}
	return &result, nil
}

func (e *Engine) retryPolicy(ctx context.Context) backoff.BackOff {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 500 * time.Millisecond
	return backoff.WithContext(backoff.WithMaxRetries(policy, maxRetries), ctx)
}

// checkStatus maps HTTP failures: 404 is the distinct not-found signal,
// other 4xx are permanent, 5xx are retryable
func checkStatus(resp *http.Response) error {
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return backoff.Permanent(ErrCodeNotFound)
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		body, _ := io.ReadAll(resp.Body)
		return backoff.Permanent(fmt.Errorf("sync request rejected with status %d: %s", resp.StatusCode, string(body)))
	case resp.StatusCode >= 500:
		return fmt.Errorf("sync server error: status %d", resp.StatusCode)
	}
	return nil
}
