package storage

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"time"
)

//go:generate mockgen -source=client.go -destination=mocks/mock_storage.go -package=storagemocks

// Uploader grava assets resolvidos no storage de objetos durável. Cada
// asset é gravado uma única vez e passa a ser endereçável por uma URL
// estável, imune à expiração das URLs do CDN da plataforma.
type Uploader interface {
	CacheRemote(sourceURL, key string) (string, error)
}

type Client struct {
	BaseURL       string
	PublicBaseURL string
	APIKey        string
	Bucket        string
	HTTPClient    *http.Client
}

type Config struct {
	BaseURL       string
	PublicBaseURL string
	APIKey        string
	Bucket        string
}

func NewClient(cfg Config) *Client {
	return &Client{
		BaseURL:       cfg.BaseURL,
		PublicBaseURL: cfg.PublicBaseURL,
		APIKey:        cfg.APIKey,
		Bucket:        cfg.Bucket,
		HTTPClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// CacheRemote baixa o asset da URL de origem e o grava no storage sob a
// chave informada, devolvendo a URL pública estável
func (c *Client) CacheRemote(sourceURL, key string) (string, error) {
	body, contentType, err := c.download(sourceURL)
	if err != nil {
		return "", err
	}

	if err := c.put(key, contentType, body); err != nil {
		return "", err
	}

	return fmt.Sprintf("%s/%s/%s", c.PublicBaseURL, c.Bucket, key), nil
}

func (c *Client) download(sourceURL string) ([]byte, string, error) {
	resp, err := c.HTTPClient.Get(sourceURL)
	if err != nil {
		return nil, "", fmt.Errorf("erro ao baixar asset: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("erro ao baixar asset. Status: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("erro ao ler asset: %w", err)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	return body, contentType, nil
}

func (c *Client) put(key, contentType string, body []byte) error {
	url := fmt.Sprintf("%s/%s/%s", c.BaseURL, c.Bucket, key)

	req, err := http.NewRequest(http.MethodPut, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	req.Header.Set("Content-Type", contentType)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("erro ao gravar asset no storage: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("erro ao gravar asset no storage. Status: %d, Corpo: %s", resp.StatusCode, respBody)
	}

	return nil
}
