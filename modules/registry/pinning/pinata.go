package pinning

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/Cleverse/go-utilities/utils"
	"github.com/cockroachdb/errors"
	"github.com/mintmark-network/ip-gateway/modules/registry/config"
	"github.com/mintmark-network/ip-gateway/pkg/httpclient"
)

const (
	defaultBaseURL    = "https://api.pinata.cloud"
	defaultGatewayURL = "https://gateway.pinata.cloud/ipfs"
)

// PinataClient pins files through the Pinata HTTP API.
type PinataClient struct {
	httpClient *httpclient.Client
	gatewayURL string
}

var _ Pinner = (*PinataClient)(nil)

func NewPinataClient(conf config.Pinata) (*PinataClient, error) {
	baseURL := utils.Default(conf.BaseURL, defaultBaseURL)
	httpClient, err := httpclient.New(baseURL, httpclient.Config{
		Headers: map[string]string{
			"pinata_api_key":        conf.APIKey,
			"pinata_secret_api_key": conf.APISecret,
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, "can't create http client")
	}
	return &PinataClient{
		httpClient: httpClient,
		gatewayURL: utils.Default(conf.GatewayURL, defaultGatewayURL),
	}, nil
}

type pinFileResponse struct {
	IpfsHash  string `json:"IpfsHash"`
	PinSize   int64  `json:"PinSize"`
	Timestamp string `json:"Timestamp"`
}

func (p *PinataClient) PinFile(ctx context.Context, path string, displayName string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", errors.Wrapf(err, "can't open file %q", path)
	}
	defer file.Close()

	metadata, err := json.Marshal(map[string]any{
		"name": displayName,
	})
	if err != nil {
		return "", errors.Wrap(err, "can't marshal pin metadata")
	}

	resp, err := p.httpClient.Post(ctx, "/pinning/pinFileToIPFS", httpclient.RequestOptions{
		Multipart: &httpclient.MultipartOptions{
			Fields: url.Values{
				"pinataMetadata": []string{string(metadata)},
			},
			Files: []httpclient.MultipartFile{{
				FieldName: "file",
				FileName:  filepath.Base(path),
				Reader:    file,
			}},
		},
	})
	if err != nil {
		return "", errors.Wrap(err, "can't send pin request")
	}
	if resp.StatusCode() >= 400 {
		return "", errors.Errorf("pinning gateway returned status %d: %s", resp.StatusCode(), string(resp.Body()))
	}

	var result pinFileResponse
	if err := resp.UnmarshalBody(&result); err != nil {
		return "", errors.Wrap(err, "can't unmarshal pin response")
	}
	if result.IpfsHash == "" {
		return "", errors.New("pinning gateway returned an empty content address")
	}
	return result.IpfsHash, nil
}

func (p *PinataClient) GatewayURL(contentAddress string) string {
	return fmt.Sprintf("%s/%s", p.gatewayURL, contentAddress)
}
