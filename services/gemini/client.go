package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const (
	// DefaultBaseURL is the Google Generative Language API base URL
	DefaultBaseURL = "https://generativelanguage.googleapis.com"
	// DefaultTimeout is long because generation calls routinely take
	// tens of seconds for large prompts
	DefaultTimeout = 120 * time.Second
)

// Client is a thin adapter around the Gemini generateContent API.
// Every call is a single attempt against one named model with one
// rotated credential; retry and model fallback belong to the caller.
type Client struct {
	baseURL    string
	httpClient *http.Client
	keys       *KeyRotator
}

// Config holds configuration for the Gemini client
type Config struct {
	Keys    []string
	BaseURL string
	Timeout time.Duration
}

// NewClient creates a new Gemini client over the given credential pool
func NewClient(config Config) (*Client, error) {
	rotator, err := NewKeyRotator(config.Keys)
	if err != nil {
		return nil, err
	}
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	if config.Timeout == 0 {
		config.Timeout = DefaultTimeout
	}

	return &Client{
		baseURL: config.BaseURL,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		keys: rotator,
	}, nil
}

// KeyPoolSize returns the number of credentials available for rotation
func (c *Client) KeyPoolSize() int {
	return c.keys.Size()
}

// FileRef identifies a document previously uploaded to the File API
type FileRef struct {
	Name     string `json:"name"`
	URI      string `json:"uri"`
	MimeType string `json:"mimeType"`
}

type filePart struct {
	MimeType string `json:"mime_type"`
	FileURI  string `json:"file_uri"`
}

type contentPart struct {
	Text     string    `json:"text,omitempty"`
	FileData *filePart `json:"file_data,omitempty"`
}

type content struct {
	Parts []contentPart `json:"parts"`
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

type apiErrorBody struct {
	Error struct {
		Code    int    `json:"code"`
		Status  string `json:"status"`
		Message string `json:"message"`
	} `json:"error"`
}

// GenerateText runs a text-only prompt against the named model
func (c *Client) GenerateText(ctx context.Context, model, prompt string) (string, error) {
	req := generateRequest{
		Contents: []content{{Parts: []contentPart{{Text: prompt}}}},
	}
	return c.generate(ctx, model, req)
}

// GenerateWithFile runs a prompt with an attached uploaded document
func (c *Client) GenerateWithFile(ctx context.Context, model, prompt string, file *FileRef) (string, error) {
	req := generateRequest{
		Contents: []content{{Parts: []contentPart{
			{FileData: &filePart{MimeType: file.MimeType, FileURI: file.URI}},
			{Text: prompt},
		}}},
	}
	return c.generate(ctx, model, req)
}

func (c *Client) generate(ctx context.Context, model string, req generateRequest) (string, error) {
	jsonData, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s",
		c.baseURL, url.PathEscape(model), url.QueryEscape(c.keys.Next()))

	httpReq, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	respBody, err := c.do(httpReq)
	if err != nil {
		return "", err
	}

	var result generateResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no candidates returned from model %s", model)
	}

	var text bytes.Buffer
	for _, part := range result.Candidates[0].Content.Parts {
		text.WriteString(part.Text)
	}
	return text.String(), nil
}

// UploadFile pushes raw document bytes to the File API so they can be
// attached to a multimodal prompt. The returned FileRef must be cleaned
// up with DeleteFile once the caller is done with it.
func (c *Client) UploadFile(ctx context.Context, data []byte, mimeType, displayName string) (*FileRef, error) {
	endpoint := fmt.Sprintf("%s/upload/v1beta/files?key=%s", c.baseURL, url.QueryEscape(c.keys.Next()))

	httpReq, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create upload request: %w", err)
	}
	httpReq.Header.Set("Content-Type", mimeType)
	httpReq.Header.Set("X-Goog-Upload-Protocol", "raw")
	httpReq.Header.Set("X-Goog-File-Name", displayName)

	respBody, err := c.do(httpReq)
	if err != nil {
		return nil, err
	}

	var result struct {
		File FileRef `json:"file"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("failed to decode upload response: %w", err)
	}
	if result.File.URI == "" {
		return nil, fmt.Errorf("upload succeeded but no file URI returned")
	}
	if result.File.MimeType == "" {
		result.File.MimeType = mimeType
	}
	return &result.File, nil
}

// DeleteFile removes a previously uploaded file from the File API
func (c *Client) DeleteFile(ctx context.Context, name string) error {
	endpoint := fmt.Sprintf("%s/v1beta/%s?key=%s", c.baseURL, name, url.QueryEscape(c.keys.Next()))

	httpReq, err := http.NewRequestWithContext(ctx, "DELETE", endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create delete request: %w", err)
	}

	_, err = c.do(httpReq)
	return err
}

// do performs the request and classifies non-2xx responses into APIError
func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var body apiErrorBody
		if err := json.Unmarshal(respBody, &body); err == nil && body.Error.Message != "" {
			apiErr.Status = body.Error.Status
			apiErr.Message = body.Error.Message
		} else {
			apiErr.Message = string(respBody)
		}
		return nil, apiErr
	}

	return respBody, nil
}
