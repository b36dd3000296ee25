package platform

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const userAgent = "talentlink-cli"

// ServiceURLs holds the base URL of every backend service the client talks to.
// Defaults mirror the standard local deployment ports.
type ServiceURLs struct {
	Jobs          string `mapstructure:"jobs"`
	Applications  string `mapstructure:"applications"`
	CVs           string `mapstructure:"cvs"`
	Analysis      string `mapstructure:"analysis"`
	Matching      string `mapstructure:"matching"`
	Notifications string `mapstructure:"notifications"`
}

func DefaultServiceURLs() ServiceURLs {
	return ServiceURLs{
		Jobs:          "http://localhost:5002",
		Applications:  "http://localhost:5005",
		CVs:           "http://localhost:5001",
		Analysis:      "http://localhost:5003",
		Matching:      "http://localhost:5004",
		Notifications: "http://localhost:5008",
	}
}

// Client is a thin HTTP client over the six platform services. One instance
// is shared by every command for the lifetime of the session.
type Client struct {
	// ctx used only for http requests right now
	ctx        context.Context
	token      string
	logger     *zap.Logger
	HTTPClient *http.Client
	UserAgent  string
	URLs       ServiceURLs
}

func New(ctx context.Context, logger *zap.Logger, token string) *Client {
	return &Client{
		ctx:   ctx,
		token: token,
		URLs:  DefaultServiceURLs(),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger:    logger,
		UserAgent: userAgent,
	}
}
