package lark

import (
	"context"
	"encoding/json"
	"fmt"

	larkcore "github.com/larksuite/oapi-sdk-go/v3/core"
)

const tenantAccessTokenPath = "/open-apis/auth/v3/tenant_access_token/internal"

type tenantAccessTokenRequest struct {
	AppID     string `json:"app_id"`
	AppSecret string `json:"app_secret"`
}

type tenantAccessTokenResponse struct {
	larkcore.CodeError
	TenantAccessToken string `json:"tenant_access_token"`
	Expire            int    `json:"expire"`
}

// TenantAccessToken exchanges the app credentials for a tenant access token.
// Tokens are fetched per request and not cached.
func (c *Client) TenantAccessToken(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.requestTimeout)
	defer cancel()

	apiResp, err := c.sdk.Post(ctx, tenantAccessTokenPath, tenantAccessTokenRequest{
		AppID:     c.appID,
		AppSecret: c.appSecret,
	}, larkcore.AccessTokenTypeNone)
	if err != nil {
		return "", fmt.Errorf("lark tenant_access_token: request failed: %w", err)
	}

	var resp tenantAccessTokenResponse
	if err := json.Unmarshal(apiResp.RawBody, &resp); err != nil {
		return "", fmt.Errorf("lark tenant_access_token: failed to decode response: %w", err)
	}
	if err := checkResponse("tenant_access_token", apiResp, resp.Code, resp.Msg); err != nil {
		return "", err
	}
	if resp.TenantAccessToken == "" {
		return "", fmt.Errorf("lark tenant_access_token: empty token in response")
	}
	return resp.TenantAccessToken, nil
}
