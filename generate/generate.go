// Package generate is the boundary to the external generative-image service:
// given a text prompt it obtains N raster images. The editing core never
// imports this package; callers turn the results into image layers themselves.
package generate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

// ImageSource supplies zero or more raster images for a prompt.
type ImageSource interface {
	Generate(ctx context.Context, prompt string, n int) ([][]byte, error)
}

var (
	// ErrTimedOut means the generation task did not finish within the polling
	// budget.
	ErrTimedOut = errors.New("generate: generation timed out")

	// ErrFailed means the service reported the task as failed.
	ErrFailed = errors.New("generate: generation failed")
)

const (
	defaultPollInterval = 2 * time.Second
	maxPollAttempts     = 30
	maxSubmitRetries    = 3
)

// Client talks to an HTTP generation API: one submit call returning a task
// id, then fixed-interval polling until the task settles. Submission retries
// a bounded number of times with doubling backoff when the service rate-
// limits.
type Client struct {
	baseURL      string
	apiKey       string
	httpClient   *http.Client
	pollInterval time.Duration
}

// NewClientFromEnv builds a client from IMAGE_API_BASE_URL and IMAGE_API_KEY.
func NewClientFromEnv() *Client {
	baseURL := os.Getenv("IMAGE_API_BASE_URL")
	apiKey := os.Getenv("IMAGE_API_KEY")
	if apiKey == "" {
		logrus.Warn("IMAGE_API_KEY environment variable not set, image generation will not work")
	}
	return &Client{
		baseURL:      baseURL,
		apiKey:       apiKey,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		pollInterval: defaultPollInterval,
	}
}

type (
	submitRequest struct {
		Prompt string `json:"prompt"`
		Count  int    `json:"count"`
	}
	submitResponse struct {
		TaskID string `json:"taskId"`
	}
	taskResponse struct {
		Status string   `json:"status"` // "pending" | "succeeded" | "failed"
		Images []string `json:"images"`
	}
)

// Generate submits the prompt, polls the task to completion and downloads the
// resulting images.
func (c *Client) Generate(ctx context.Context, prompt string, n int) ([][]byte, error) {
	taskID, err := c.submit(ctx, prompt, n)
	if err != nil {
		return nil, err
	}
	log := logrus.WithFields(logrus.Fields{"task_id": taskID, "prompt_length": len(prompt)})
	log.Info("Generation task submitted")

	urls, err := c.poll(ctx, taskID)
	if err != nil {
		return nil, err
	}

	images := make([][]byte, 0, len(urls))
	for _, u := range urls {
		data, err := c.download(ctx, u)
		if err != nil {
			return nil, err
		}
		images = append(images, data)
	}
	log.WithField("image_count", len(images)).Info("Generation task completed")
	return images, nil
}

func (c *Client) submit(ctx context.Context, prompt string, n int) (string, error) {
	body, err := json.Marshal(submitRequest{Prompt: prompt, Count: n})
	if err != nil {
		return "", fmt.Errorf("generate: marshal request: %w", err)
	}

	backoff := time.Second
	for attempt := 0; ; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/generations", bytes.NewReader(body))
		if err != nil {
			return "", fmt.Errorf("generate: build request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.apiKey)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return "", fmt.Errorf("generate: submit: %w", err)
		}

		if resp.StatusCode == http.StatusTooManyRequests && attempt < maxSubmitRetries {
			resp.Body.Close()
			logrus.WithField("attempt", attempt+1).Warn("Generation API rate limited, backing off")
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return "", ctx.Err()
			}
			backoff *= 2
			continue
		}

		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return "", fmt.Errorf("generate: submit returned status %d", resp.StatusCode)
		}
		var sub submitResponse
		if err := json.NewDecoder(resp.Body).Decode(&sub); err != nil {
			return "", fmt.Errorf("generate: decode submit response: %w", err)
		}
		return sub.TaskID, nil
	}
}

func (c *Client) poll(ctx context.Context, taskID string) ([]string, error) {
	for attempt := 0; attempt < maxPollAttempts; attempt++ {
		select {
		case <-time.After(c.pollInterval):
		case <-ctx.Done():
			return nil, ctx.Err()
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/generations/"+taskID, nil)
		if err != nil {
			return nil, fmt.Errorf("generate: build poll request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+c.apiKey)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("generate: poll: %w", err)
		}
		var task taskResponse
		err = json.NewDecoder(resp.Body).Decode(&task)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("generate: decode poll response: %w", err)
		}

		switch task.Status {
		case "succeeded":
			return task.Images, nil
		case "failed":
			return nil, ErrFailed
		}
	}
	return nil, ErrTimedOut
}

func (c *Client) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("generate: build download request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("generate: download image: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("generate: download returned status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
