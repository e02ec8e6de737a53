package wormhole

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	logger "github.com/sirupsen/logrus"
)

// VaaFetcher fetches a signed VAA for an emitted message. A (nil, nil)
// return means guardian consensus has not been reached yet; callers skip
// and retry on a later tick.
type VaaFetcher interface {
	GetVaa(ctx context.Context, emitterChain ChainId, emitterAddress string, sequence string) ([]byte, error)
}

// Client fetches VAAs over the guardian REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type signedVaaResponse struct {
	VaaBytes string `json:"vaaBytes"`
}

// GetVaa queries /v1/signed_vaa/{chain}/{emitter}/{sequence}. A 404 means
// the guardians have not signed yet and is not an error.
func (c *Client) GetVaa(ctx context.Context, emitterChain ChainId, emitterAddress string, sequence string) ([]byte, error) {
	url := fmt.Sprintf("%s/v1/signed_vaa/%d/%s/%s", c.baseURL, emitterChain, emitterAddress, sequence)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		logger.WithFields(logger.Fields{
			"emitterChain": emitterChain,
			"sequence":     sequence,
		}).Debug("VAA not yet available")
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("guardian api returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var parsed signedVaaResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("malformed guardian api response: %w", err)
	}

	vaaBytes, err := base64.StdEncoding.DecodeString(parsed.VaaBytes)
	if err != nil {
		return nil, fmt.Errorf("malformed vaaBytes in guardian api response: %w", err)
	}
	return vaaBytes, nil
}
