package notify

import (
	"github.com/pkg/errors"
	"github.com/slack-go/slack"
)

// Slack posts messages to a channel with a bot token.
type Slack struct {
	client  *slack.Client
	Channel string
}

func NewSlack(token, channel string, options ...slack.Option) *Slack {
	return &Slack{
		client:  slack.New(token, options...),
		Channel: channel,
	}
}

func (s *Slack) Notify(msg string) error {
	_, _, err := s.client.PostMessage(s.Channel, slack.MsgOptionText("```"+msg+"```", false))
	return errors.Wrap(err, "slack")
}
