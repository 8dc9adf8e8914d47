package slack

import (
	"context"
	"fmt"

	"github.com/slack-go/slack"
)

// Client posts plain-text messages to one Slack channel.
type Client struct {
	api       *slack.Client
	channelID string
}

func NewClient(token, channelID string, options ...slack.Option) *Client {
	return &Client{
		api:       slack.New(token, options...),
		channelID: channelID,
	}
}

func (c *Client) Post(ctx context.Context, text string) error {
	_, _, err := c.api.PostMessageContext(ctx, c.channelID, slack.MsgOptionText(text, false))
	if err != nil {
		return fmt.Errorf("failed to post message to Slack: %w", err)
	}
	return nil
}
