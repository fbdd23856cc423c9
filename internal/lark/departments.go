package lark

import (
	"context"

	larkcore "github.com/larksuite/oapi-sdk-go/v3/core"
	larkcontact "github.com/larksuite/oapi-sdk-go/v3/service/contact/v3"

	"github.com/yuya-takeyama/lark-dept-bot/internal/directory"
)

// DepartmentName looks up a department's display name. It implements
// directory.DepartmentNamer: failures are logged and turned into a
// placeholder embedding the id.
func (c *Client) DepartmentName(ctx context.Context, token, departmentID string) string {
	ctx, cancel := context.WithTimeout(ctx, c.departmentTimeout)
	defer cancel()

	req := larkcontact.NewGetDepartmentReqBuilder().
		DepartmentId(departmentID).
		DepartmentIdType("department_id").
		Build()

	resp, err := c.sdk.Contact.Department.Get(ctx, req, larkcore.WithTenantAccessToken(token))
	if err == nil {
		err = checkResponse("get_department", resp.ApiResp, resp.Code, resp.Msg)
	}
	if err != nil {
		c.logger.Warn().
			Err(err).
			Str("department_id", departmentID).
			Bool("permission_error", IsPermissionError(err)).
			Msg("Failed to fetch department")
		return directory.FailedDepartmentName(departmentID)
	}

	if resp.Data != nil && resp.Data.Department != nil {
		if name := stringValue(resp.Data.Department.Name); name != "" {
			return name
		}
	}
	return directory.UnknownDepartmentName(departmentID)
}

var _ directory.DepartmentNamer = (*Client)(nil)
