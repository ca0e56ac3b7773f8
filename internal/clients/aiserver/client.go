package aiserver

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tiertok/tiertok-backend/internal/apperr"
	"github.com/tiertok/tiertok-backend/internal/logger"
	"github.com/tiertok/tiertok-backend/internal/utils"
)

// CategoryAssignment is one classifier result: a category name and the
// video's membership fraction for it. Fractions across a video's categories
// are independent and do not have to sum to 1.
type CategoryAssignment struct {
	Category   string  `json:"category"`
	Percentage float64 `json:"percentage"`
}

// Client talks to the AI server that classifies videos into categories and
// rates their content quality. Both calls are degrade-and-continue at the
// call sites: a failed call never fails a pipeline stage.
type Client interface {
	CategorizeVideo(ctx context.Context, videoID string) ([]CategoryAssignment, error)
	EvaluateVideo(ctx context.Context, videoID string) (float64, error)
}

type client struct {
	log        *logger.Logger
	baseURL    string
	httpClient *http.Client
}

func NewClient(log *logger.Logger) (Client, error) {
	baseURL := strings.TrimRight(utils.GetEnv("AI_SERVER_BASE_URL", "", log), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("missing AI_SERVER_BASE_URL")
	}
	timeout := utils.GetEnvAsInt("AI_SERVER_TIMEOUT_SECONDS", 30, log)
	return &client{
		log:        log.With("client", "AIServerClient"),
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: time.Duration(timeout) * time.Second},
	}, nil
}

func (c *client) CategorizeVideo(ctx context.Context, videoID string) ([]CategoryAssignment, error) {
	body, err := c.get(ctx, "/admin/categorize-video", videoID)
	if err != nil {
		return nil, err
	}
	var assignments []CategoryAssignment
	if err := json.Unmarshal(body, &assignments); err != nil {
		return nil, apperr.Wrap(apperr.KindExternalService, "categorize-video: malformed response", err)
	}
	out := assignments[:0]
	for _, a := range assignments {
		a.Category = strings.TrimSpace(a.Category)
		if a.Category == "" {
			continue
		}
		if a.Percentage < 0 {
			a.Percentage = 0
		}
		if a.Percentage > 1 {
			a.Percentage = 1
		}
		out = append(out, a)
	}
	return out, nil
}

func (c *client) EvaluateVideo(ctx context.Context, videoID string) (float64, error) {
	body, err := c.get(ctx, "/admin/evaluate-video", videoID)
	if err != nil {
		return 0, err
	}
	var resp struct {
		QualityScore float64 `json:"quality_score"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return 0, apperr.Wrap(apperr.KindExternalService, "evaluate-video: malformed response", err)
	}
	q := resp.QualityScore
	if q < 0 {
		q = 0
	}
	if q > 1 {
		q = 1
	}
	return q, nil
}

func (c *client) get(ctx context.Context, path string, videoID string) ([]byte, error) {
	endpoint := c.baseURL + path + "?video_id=" + url.QueryEscape(videoID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindExternalService, "build request", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindExternalService, "call ai server", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, apperr.Wrap(apperr.KindExternalService, "read ai server response", err)
	}
	if resp.StatusCode != http.StatusOK {
		c.log.Warn("AI server returned non-200", "path", path, "status", resp.StatusCode)
		return nil, apperr.New(apperr.KindExternalService,
			fmt.Sprintf("ai server %s: status %d", path, resp.StatusCode))
	}
	return body, nil
}
