package roboflow

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/priyasp2804/Textile-Defect-Detection/internal/domain/entity"
	"github.com/priyasp2804/Textile-Defect-Detection/internal/domain/inference"
)

const defaultBaseURL = "https://detect.roboflow.com"

// Client calls the Roboflow hosted object-detection API. It implements
// inference.Client. The model itself is an external capability; the client
// only speaks its HTTP interface.
type Client struct {
	BaseURL    string
	APIKey     string
	Project    string
	Version    int
	Confidence int // percent threshold passed to the API
	OutDir     string
	HTTPClient *http.Client
	Logger     *logrus.Logger
}

type Option func(*Client)

// WithBaseURL overrides the API endpoint (used by tests).
func WithBaseURL(u string) Option { return func(c *Client) { c.BaseURL = u } }

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option { return func(c *Client) { c.HTTPClient = h } }

func NewClient(apiKey, project string, version, confidence int, outDir string, timeout time.Duration, logger *logrus.Logger, opts ...Option) *Client {
	c := &Client{
		BaseURL:    defaultBaseURL,
		APIKey:     apiKey,
		Project:    project,
		Version:    version,
		Confidence: confidence,
		OutDir:     outDir,
		HTTPClient: &http.Client{Timeout: timeout},
		Logger:     logger,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type apiPrediction struct {
	Class      string  `json:"class"`
	Confidence float64 `json:"confidence"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
}

type detectResponse struct {
	Predictions []apiPrediction `json:"predictions"`
}

// Predict runs one detection round-trip: a JSON call for the predictions and
// an image call for the annotated picture, which is written under OutDir.
// The caller owns the annotated file.
func (c *Client) Predict(ctx context.Context, imagePath string) (*inference.Result, error) {
	raw, err := os.ReadFile(imagePath)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	encoded := base64.StdEncoding.EncodeToString(raw)

	body, err := c.post(ctx, encoded, url.Values{})
	if err != nil {
		return nil, err
	}
	var parsed detectResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode predictions: %w", err)
	}

	annotated, err := c.fetchAnnotated(ctx, encoded)
	if err != nil {
		return nil, err
	}

	res := &inference.Result{AnnotatedPath: annotated}
	if len(parsed.Predictions) == 0 {
		res.Labels = []string{"defect free"}
		return res, nil
	}
	res.Labels = []string{"defect detected"}
	res.Predictions = make([]entity.Prediction, 0, len(parsed.Predictions))
	for _, p := range parsed.Predictions {
		res.Predictions = append(res.Predictions, entity.Prediction{Label: p.Class, Confidence: p.Confidence})
	}
	return res, nil
}

func (c *Client) fetchAnnotated(ctx context.Context, encoded string) (string, error) {
	extra := url.Values{}
	extra.Set("format", "image")
	extra.Set("labels", "on")
	img, err := c.post(ctx, encoded, extra)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(c.OutDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(c.OutDir, fmt.Sprintf("pred_%s.jpg", strings.ReplaceAll(uuid.NewString(), "-", "")))
	if err := os.WriteFile(path, img, 0o644); err != nil {
		return "", fmt.Errorf("write annotated image: %w", err)
	}
	return path, nil
}

func (c *Client) post(ctx context.Context, encodedImage string, extra url.Values) ([]byte, error) {
	q := url.Values{}
	q.Set("api_key", c.APIKey)
	q.Set("confidence", strconv.Itoa(c.Confidence))
	for k, vs := range extra {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	endpoint := fmt.Sprintf("%s/%s/%d?%s", c.BaseURL, c.Project, c.Version, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(encodedImage))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		if c.Logger != nil {
			c.Logger.WithFields(logrus.Fields{"status": resp.StatusCode, "project": c.Project}).Warn("roboflow request failed")
		}
		return nil, fmt.Errorf("roboflow returned status %d", resp.StatusCode)
	}
	return body, nil
}

var _ inference.Client = (*Client)(nil)
