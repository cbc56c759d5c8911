package pinata

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"
)

// Client pins blobs and JSON documents to IPFS through the Pinata pinning
// API and returns their content hashes.
type Client struct {
	apiKey    string
	apiSecret string
	baseURL   string
	client    *http.Client
}

type pinResponse struct {
	IpfsHash string `json:"IpfsHash"`
	Error    string `json:"error,omitempty"`
}

func NewClient(apiKey, apiSecret, baseURL string) *Client {
	if baseURL == "" {
		baseURL = "https://api.pinata.cloud"
	}

	return &Client{
		apiKey:    apiKey,
		apiSecret: apiSecret,
		baseURL:   baseURL,
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// PinFile uploads raw bytes under the given pin name and returns the IPFS
// hash.
func (c *Client) PinFile(ctx context.Context, name string, data []byte) (string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormFile("file", name)
	if err != nil {
		return "", err
	}
	if _, err := part.Write(data); err != nil {
		return "", err
	}

	meta, _ := json.Marshal(map[string]string{"name": name})
	if err := w.WriteField("pinataMetadata", string(meta)); err != nil {
		return "", err
	}
	if err := w.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/pinning/pinFileToIPFS", &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	return c.do(req)
}

// PinJSON uploads a JSON document under the given pin name and returns the
// IPFS hash.
func (c *Client) PinJSON(ctx context.Context, name string, doc interface{}) (string, error) {
	body, err := json.Marshal(map[string]interface{}{
		"pinataContent":  doc,
		"pinataMetadata": map[string]string{"name": name},
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/pinning/pinJSONToIPFS", bytes.NewBuffer(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

func (c *Client) do(req *http.Request) (string, error) {
	req.Header.Set("pinata_api_key", c.apiKey)
	req.Header.Set("pinata_secret_api_key", c.apiSecret)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("pinata request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("pinata returned %d: %s", resp.StatusCode, string(body))
	}

	var result pinResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("pinata decode: %w", err)
	}
	if result.IpfsHash == "" {
		return "", fmt.Errorf("pinata returned no hash: %s", string(body))
	}
	return result.IpfsHash, nil
}
