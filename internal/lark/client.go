package lark

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	larksdk "github.com/larksuite/oapi-sdk-go/v3"
	larkcore "github.com/larksuite/oapi-sdk-go/v3/core"
	"github.com/rs/zerolog"
)

// DefaultBaseURL is the Larksuite Open API host
var DefaultBaseURL = larksdk.LarkBaseUrl

const (
	defaultRequestTimeout    = 10 * time.Second
	defaultDepartmentTimeout = 5 * time.Second
	defaultDirectoryTimeout  = 20 * time.Second
	defaultPageSize          = 50
)

// Permission scope error codes returned by the contact API
const (
	CodeNoPermission       = 40004
	CodeScopeNotAuthorized = 99991672
	CodeAppNotAuthorized   = 99991679
)

// APIError is returned when the Open API answers with a non-200 status or a
// non-zero result code
type APIError struct {
	Op         string
	StatusCode int
	Code       int
	Msg        string
}

func (e *APIError) Error() string {
	if e.StatusCode != http.StatusOK {
		return fmt.Sprintf("lark %s: unexpected status %d: code %d: %s", e.Op, e.StatusCode, e.Code, e.Msg)
	}
	return fmt.Sprintf("lark %s: code %d: %s", e.Op, e.Code, e.Msg)
}

// IsPermissionError reports whether err is an Open API scope/permission error
func IsPermissionError(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	switch apiErr.Code {
	case CodeNoPermission, CodeScopeNotAuthorized, CodeAppNotAuthorized:
		return true
	}
	return false
}

// Client talks to the Lark Open API through the SDK. The SDK token cache is
// disabled; callers pass the tenant token explicitly on every call.
type Client struct {
	sdk               *larksdk.Client
	baseURL           string
	appID             string
	appSecret         string
	httpClient        *http.Client
	requestTimeout    time.Duration
	departmentTimeout time.Duration
	directoryTimeout  time.Duration
	pageSize          int
	logger            zerolog.Logger
}

// Option configures a Client
type Option func(*Client)

// WithBaseURL overrides the API host
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithHTTPClient replaces the underlying HTTP client. The client is used as
// given and never modified.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithRequestTimeout bounds every single API call
func WithRequestTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.requestTimeout = timeout
		}
	}
}

// WithDepartmentTimeout bounds the department lookup call
func WithDepartmentTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.departmentTimeout = timeout
		}
	}
}

// WithDirectoryTimeout bounds a whole directory fetch, all pages included
func WithDirectoryTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.directoryTimeout = timeout
		}
	}
}

// WithPageSize sets the page size used for directory listing
func WithPageSize(size int) Option {
	return func(c *Client) {
		if size > 0 {
			c.pageSize = size
		}
	}
}

// WithLogger sets the client logger
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a new Open API client for the app credentials
func NewClient(appID, appSecret string, opts ...Option) *Client {
	c := &Client{
		baseURL:           DefaultBaseURL,
		appID:             appID,
		appSecret:         appSecret,
		requestTimeout:    defaultRequestTimeout,
		departmentTimeout: defaultDepartmentTimeout,
		directoryTimeout:  defaultDirectoryTimeout,
		pageSize:          defaultPageSize,
		logger:            zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With().Str("component", "lark_client").Logger()

	sdkOpts := []larksdk.ClientOptionFunc{
		larksdk.WithOpenBaseUrl(c.baseURL),
		larksdk.WithEnableTokenCache(false),
		larksdk.WithLogger(sdkLogger{logger: c.logger}),
		larksdk.WithLogLevel(sdkLogLevel(c.logger.GetLevel())),
	}
	if c.httpClient != nil {
		sdkOpts = append(sdkOpts, larksdk.WithHttpClient(c.httpClient))
	} else {
		sdkOpts = append(sdkOpts, larksdk.WithReqTimeout(c.requestTimeout))
	}
	c.sdk = larksdk.NewClient(appID, appSecret, sdkOpts...)

	return c
}

// checkResponse turns a decoded SDK response into an *APIError when the
// status or the result code reports a failure
func checkResponse(op string, apiResp *larkcore.ApiResp, code int, msg string) error {
	if apiResp == nil {
		return fmt.Errorf("lark %s: empty response", op)
	}
	if apiResp.StatusCode != http.StatusOK || code != 0 {
		return &APIError{Op: op, StatusCode: apiResp.StatusCode, Code: code, Msg: msg}
	}
	return nil
}

func stringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func boolValue(b *bool) bool {
	return b != nil && *b
}
