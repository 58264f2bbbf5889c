// Package ssooidc implements the IdentityProvider interface against the
// AWS IAM Identity Center OIDC endpoints (RFC 8628 device flow).
package ssooidc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/turtacn/kam/internal/domain/models"
	"github.com/turtacn/kam/internal/domain/service"
	"github.com/turtacn/kam/pkg/constants"
	"github.com/turtacn/kam/pkg/errors"
	"github.com/turtacn/kam/pkg/logger"
	"github.com/turtacn/kam/pkg/utils"
)

// Client talks to the regional OIDC endpoints. It performs dynamic client
// registration on every authorization request, matching the behaviour of
// the official device-flow tooling.
type Client struct {
	httpClient *http.Client
	log        logger.Logger
	clock      service.Clock

	// baseURLOverride replaces the regional endpoint, for tests.
	baseURLOverride string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client, e.g. to route through
// a proxy.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithBaseURL pins all requests to the given endpoint instead of the
// regional one.
func WithBaseURL(base string) Option {
	return func(c *Client) { c.baseURLOverride = base }
}

// NewClient returns a Client with the given request timeout.
func NewClient(timeout time.Duration, log logger.Logger, clock service.Clock, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = constants.DefaultRequestTimeout
	}
	c := &Client{
		httpClient: &http.Client{Timeout: timeout},
		log:        log,
		clock:      clock,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewProxiedHTTPClient builds an HTTP client routing through the given
// proxy host and port.
func NewProxiedHTTPClient(timeout time.Duration, host string, port int) *http.Client {
	proxyURL := &url.URL{Scheme: "http", Host: fmt.Sprintf("%s:%d", host, port)}
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy: http.ProxyURL(proxyURL),
		},
	}
}

func (c *Client) baseURL(region string) string {
	if c.baseURLOverride != "" {
		return c.baseURLOverride
	}
	return fmt.Sprintf("https://oidc.%s.amazonaws.com", region)
}

type registerClientRequest struct {
	ClientName string `json:"clientName"`
	ClientType string `json:"clientType"`
}

type registerClientResponse struct {
	ClientID     string `json:"clientId"`
	ClientSecret string `json:"clientSecret"`
}

type startDeviceAuthRequest struct {
	ClientID     string `json:"clientId"`
	ClientSecret string `json:"clientSecret"`
	StartURL     string `json:"startUrl"`
}

type startDeviceAuthResponse struct {
	DeviceCode              string `json:"deviceCode"`
	UserCode                string `json:"userCode"`
	VerificationURI         string `json:"verificationUri"`
	VerificationURIComplete string `json:"verificationUriComplete"`
	Interval                int    `json:"interval"`
	ExpiresIn               int    `json:"expiresIn"`
}

type createTokenRequest struct {
	ClientID     string `json:"clientId"`
	ClientSecret string `json:"clientSecret"`
	DeviceCode   string `json:"deviceCode"`
	GrantType    string `json:"grantType"`
}

type createTokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	IDToken      string `json:"idToken"`
	TokenType    string `json:"tokenType"`
	ExpiresIn    int    `json:"expiresIn"`
}

type oidcErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// RequestDeviceAuthorization registers a fresh public client and starts a
// device authorization for startURL.
func (c *Client) RequestDeviceAuthorization(ctx context.Context, startURL, region string) (*models.DeviceAuthInfo, error) {
	clientName := fmt.Sprintf("%s-%s", constants.ClientNamePrefix, utils.RandomSuffix(8))

	var reg registerClientResponse
	err := c.postJSON(ctx, c.baseURL(region)+"/client/register", registerClientRequest{
		ClientName: clientName,
		ClientType: constants.ClientRegistrationType,
	}, &reg)
	if err != nil {
		return nil, errors.ErrAuthRequest("client registration failed").WithCause(err)
	}

	var auth startDeviceAuthResponse
	err = c.postJSON(ctx, c.baseURL(region)+"/device_authorization", startDeviceAuthRequest{
		ClientID:     reg.ClientID,
		ClientSecret: reg.ClientSecret,
		StartURL:     startURL,
	}, &auth)
	if err != nil {
		return nil, errors.ErrAuthRequest("starting device authorization failed").WithCause(err)
	}

	c.log.Info(ctx, "device authorization created", logger.Fields{
		"user_code": auth.UserCode,
		"region":    region,
	})

	return &models.DeviceAuthInfo{
		DeviceCode:              auth.DeviceCode,
		UserCode:                auth.UserCode,
		VerificationURI:         auth.VerificationURI,
		VerificationURIComplete: auth.VerificationURIComplete,
		ClientID:                reg.ClientID,
		ClientSecret:            reg.ClientSecret,
		Interval:                auth.Interval,
		ExpiresAt:               c.clock.Now().Add(time.Duration(auth.ExpiresIn) * time.Second),
		Region:                  region,
		StartURL:                startURL,
	}, nil
}

// PollToken calls the token endpoint once. Provider verdicts (pending,
// slow_down, expired, denied) are mapped onto the result status; anything
// else is returned as an error.
func (c *Client) PollToken(ctx context.Context, info *models.DeviceAuthInfo) (*models.PollResult, error) {
	body, err := json.Marshal(createTokenRequest{
		ClientID:     info.ClientID,
		ClientSecret: info.ClientSecret,
		DeviceCode:   info.DeviceCode,
		GrantType:    string(constants.GrantTypeDeviceCode),
	})
	if err != nil {
		return nil, errors.ErrServer("encoding token request failed").WithCause(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL(info.Region)+"/token", bytes.NewReader(body))
	if err != nil {
		return nil, errors.ErrServer("building token request failed").WithCause(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.ErrAuthTransport("token request failed").WithCause(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.ErrAuthTransport("reading token response failed").WithCause(err)
	}

	if resp.StatusCode == http.StatusOK {
		var token createTokenResponse
		if err := json.Unmarshal(data, &token); err != nil {
			return nil, errors.ErrAuthTransport("decoding token response failed").WithCause(err)
		}
		return &models.PollResult{
			Status: models.PollStatusSuccess,
			Credentials: &models.Credentials{
				AccessToken:  token.AccessToken,
				RefreshToken: token.RefreshToken,
				IDToken:      token.IDToken,
				TokenType:    token.TokenType,
				ExpiresIn:    token.ExpiresIn,
			},
		}, nil
	}

	var oidcErr oidcErrorResponse
	if err := json.Unmarshal(data, &oidcErr); err != nil {
		return nil, errors.ErrAuthTransport(fmt.Sprintf("token endpoint returned status %d", resp.StatusCode))
	}

	switch constants.OAuthErrorCode(oidcErr.Error) {
	case constants.OAuthErrAuthorizationPending:
		return &models.PollResult{Status: models.PollStatusPending}, nil
	case constants.OAuthErrSlowDown:
		return &models.PollResult{Status: models.PollStatusSlowDown}, nil
	case constants.OAuthErrExpiredToken, constants.OAuthErrInvalidGrant:
		return &models.PollResult{Status: models.PollStatusExpired}, nil
	case constants.OAuthErrAccessDenied:
		return &models.PollResult{Status: models.PollStatusDenied}, nil
	default:
		return nil, errors.ErrAuthTransport(fmt.Sprintf("unexpected token error %q", oidcErr.Error)).
			WithMetadata("error_description", oidcErr.ErrorDescription)
	}
}

func (c *Client) postJSON(ctx context.Context, endpoint string, payload, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		var oidcErr oidcErrorResponse
		if json.Unmarshal(data, &oidcErr) == nil && oidcErr.Error != "" {
			return fmt.Errorf("%s: %s", oidcErr.Error, oidcErr.ErrorDescription)
		}
		return fmt.Errorf("unexpected status %d from %s", resp.StatusCode, endpoint)
	}
	return json.Unmarshal(data, out)
}
