package misskey

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"medbulletin/internal/domain/entity"
	"medbulletin/internal/domain/repository"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

const (
	defaultMaxPermits     = 3
	defaultRefillInterval = 10 * time.Second
	requestTimeout        = 30 * time.Second
)

type Config struct {
	Host           string
	AuthToken      string
	MaxPermits     int
	RefillInterval time.Duration
	LocalOnly      bool
}

type createNoteRequest struct {
	I          string `json:"i"`
	Text       string `json:"text"`
	Visibility string `json:"visibility"`
	LocalOnly  bool   `json:"localOnly"`
}

type noteRepository struct {
	endpoint  string
	authToken string
	localOnly bool
	client    *http.Client
	limiter   *tokenBucket
	logger    log.Logger
}

func NewNoteRepository(cfg Config, logger log.Logger) repository.NoteRepository {
	maxPermits := cfg.MaxPermits
	if maxPermits <= 0 {
		maxPermits = defaultMaxPermits
	}
	refillInterval := cfg.RefillInterval
	if refillInterval <= 0 {
		refillInterval = defaultRefillInterval
	}

	return &noteRepository{
		endpoint:  notesEndpoint(cfg.Host),
		authToken: cfg.AuthToken,
		localOnly: cfg.LocalOnly,
		client:    &http.Client{Timeout: requestTimeout},
		limiter:   newTokenBucket(maxPermits, refillInterval),
		logger:    logger,
	}
}

func notesEndpoint(host string) string {
	host = strings.TrimRight(strings.TrimSpace(host), "/")
	if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		host = "https://" + host
	}
	return host + "/api/notes/create"
}

func (r *noteRepository) Post(ctx context.Context, note *entity.Note) error {
	if err := r.limiter.Take(ctx); err != nil {
		return fmt.Errorf("rate limiter error: %w", err)
	}

	payload, err := json.Marshal(createNoteRequest{
		I:          r.authToken,
		Text:       note.Text,
		Visibility: string(note.Visibility),
		LocalOnly:  r.localOnly,
	})
	if err != nil {
		return fmt.Errorf("failed to serialize note: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request to Misskey API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("misskey API returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	level.Debug(r.logger).Log("msg", "posted note to misskey", "visibility", note.Visibility)
	return nil
}
