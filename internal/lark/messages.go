package lark

import (
	"context"
	"encoding/json"
	"fmt"

	larkcore "github.com/larksuite/oapi-sdk-go/v3/core"
	larkim "github.com/larksuite/oapi-sdk-go/v3/service/im/v1"
)

type textContent struct {
	Text string `json:"text"`
}

// SendText posts a plain text message to a chat
func (c *Client) SendText(ctx context.Context, token, chatID, text string) error {
	ctx, cancel := context.WithTimeout(ctx, c.requestTimeout)
	defer cancel()

	content, err := json.Marshal(textContent{Text: text})
	if err != nil {
		return fmt.Errorf("failed to marshal message content: %w", err)
	}

	req := larkim.NewCreateMessageReqBuilder().
		ReceiveIdType("chat_id").
		Body(larkim.NewCreateMessageReqBodyBuilder().
			ReceiveId(chatID).
			MsgType("text").
			Content(string(content)).
			Build()).
		Build()

	resp, err := c.sdk.Im.Message.Create(ctx, req, larkcore.WithTenantAccessToken(token))
	if err != nil {
		return fmt.Errorf("lark send_message: %w", err)
	}
	if err := checkResponse("send_message", resp.ApiResp, resp.Code, resp.Msg); err != nil {
		return err
	}

	var messageID string
	if resp.Data != nil {
		messageID = stringValue(resp.Data.MessageId)
	}
	c.logger.Debug().Str("chat_id", chatID).Str("message_id", messageID).Msg("Message sent")
	return nil
}
