package lark

import (
	"context"
	"fmt"

	larkcore "github.com/larksuite/oapi-sdk-go/v3/core"
	larkcontact "github.com/larksuite/oapi-sdk-go/v3/service/contact/v3"

	"github.com/yuya-takeyama/lark-dept-bot/internal/directory"
)

// FetchAllUsers pages through the contact directory and returns every user.
// Any failure discards the pages fetched so far; callers never see a partial
// directory. The whole fetch is bounded by the directory timeout.
func (c *Client) FetchAllUsers(ctx context.Context, token string) (directory.Snapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, c.directoryTimeout)
	defer cancel()

	var (
		users     directory.Snapshot
		pageToken string
		seen      = make(map[string]bool)
	)

	for page := 1; ; page++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("failed to fetch user page %d: %w", page, err)
		}

		data, err := c.listUsers(ctx, token, pageToken)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch user page %d: %w", page, err)
		}

		for _, item := range data.Items {
			if item == nil {
				continue
			}
			users = append(users, toUser(item))
		}

		hasMore, next := boolValue(data.HasMore), stringValue(data.PageToken)
		c.logger.Debug().
			Int("page", page).
			Int("items", len(data.Items)).
			Bool("has_more", hasMore).
			Msg("Fetched user page")

		if !hasMore || next == "" {
			break
		}
		if seen[next] {
			return nil, fmt.Errorf("lark list_users: page token %q repeated on page %d", next, page)
		}
		seen[next] = true
		pageToken = next
	}

	c.logger.Debug().Int("users", len(users)).Msg("Fetched directory")
	return users, nil
}

// listUsers fetches one page
func (c *Client) listUsers(ctx context.Context, token, pageToken string) (*larkcontact.ListUserRespData, error) {
	ctx, cancel := context.WithTimeout(ctx, c.requestTimeout)
	defer cancel()

	builder := larkcontact.NewListUserReqBuilder().
		UserIdType("user_id").
		DepartmentIdType("department_id").
		PageSize(c.pageSize)
	if pageToken != "" {
		builder = builder.PageToken(pageToken)
	}

	resp, err := c.sdk.Contact.User.List(ctx, builder.Build(), larkcore.WithTenantAccessToken(token))
	if err != nil {
		return nil, fmt.Errorf("lark list_users: %w", err)
	}
	if err := checkResponse("list_users", resp.ApiResp, resp.Code, resp.Msg); err != nil {
		return nil, err
	}
	if resp.Data == nil {
		return &larkcontact.ListUserRespData{}, nil
	}
	return resp.Data, nil
}

func toUser(u *larkcontact.User) directory.User {
	id := stringValue(u.UserId)
	if id == "" {
		id = stringValue(u.OpenId)
	}
	return directory.User{
		ID:            id,
		Name:          stringValue(u.Name),
		DepartmentIDs: u.DepartmentIds,
	}
}
