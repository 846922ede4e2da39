package extract

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

// RemoteOCR sends the file to a hosted recognition API as a last resort.
// It carries its own bounded timeout independent of the caller's deadline
// and performs a single attempt per upload. Any non-2xx response or a
// payload missing the parsed text is a typed failure, never a crash.
type RemoteOCR struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
}

// NewRemoteOCR constructs a remote recognition strategy.
func NewRemoteOCR(endpoint, apiKey string, timeout time.Duration) (*RemoteOCR, error) {
	if strings.TrimSpace(endpoint) == "" {
		return nil, fmt.Errorf("OCR_API_URL is required")
	}
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("OCR_API_KEY is required")
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &RemoteOCR{
		endpoint: endpoint,
		apiKey:   apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

func (*RemoteOCR) Name() string { return "remote-ocr" }

type remoteOCRResponse struct {
	ParsedResults []struct {
		ParsedText string `json:"ParsedText"`
	} `json:"ParsedResults"`
	IsErroredOnProcessing bool `json:"IsErroredOnProcessing"`
}

func (r *RemoteOCR) Extract(ctx context.Context, path, mimeType string) (string, *Failure) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fail(FailureParse, err)
	}

	form := url.Values{}
	form.Set("base64Image", fmt.Sprintf("data:%s;base64,%s", normalizeMime(mimeType), base64.StdEncoding.EncodeToString(data)))
	form.Set("language", "eng")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fail(FailureUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("apikey", r.apiKey)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || strings.Contains(err.Error(), "Client.Timeout") {
			return "", fail(FailureTimeout, err)
		}
		return "", fail(FailureUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fail(FailureUnavailable, fmt.Errorf("ocr service status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fail(FailureUnavailable, err)
	}

	var parsed remoteOCRResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fail(FailureUnavailable, fmt.Errorf("ocr response parse: %w", err))
	}
	if parsed.IsErroredOnProcessing || len(parsed.ParsedResults) == 0 {
		return "", fail(FailureUnavailable, fmt.Errorf("ocr response missing parsed results"))
	}

	var out strings.Builder
	for _, result := range parsed.ParsedResults {
		out.WriteString(result.ParsedText)
	}
	if strings.TrimSpace(out.String()) == "" {
		return "", fail(FailureNoText, nil)
	}
	return out.String(), nil
}
