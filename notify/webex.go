package notify

import (
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/tidwall/sjson"
)

const DefaultWebexURL = "https://api.ciscospark.com/v1/messages/"

// Webex posts markdown messages to a Webex Teams room.
type Webex struct {
	URL        string
	Token      string
	RoomID     string
	HTTPClient *http.Client
}

func (w *Webex) Notify(msg string) error {
	url := w.URL
	if url == "" {
		url = DefaultWebexURL
	}
	client := w.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	body, err := sjson.Set(`{}`, "roomId", w.RoomID)
	if err == nil {
		body, err = sjson.Set(body, "markdown", "```\n"+msg+"\n```")
	}
	if err != nil {
		return err
	}
	req, err := http.NewRequest(http.MethodPost, url, strings.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+w.Token)
	req.Header.Set("Content-Type", "application/json")
	res, err := client.Do(req)
	if err != nil {
		return errors.Wrap(err, "webex")
	}
	defer res.Body.Close()
	io.Copy(io.Discard, res.Body)
	switch res.StatusCode {
	case http.StatusOK:
		return nil
	case http.StatusUnauthorized:
		return errors.New("webex: [401] check the bot token")
	case http.StatusNotFound:
		return errors.New("webex: [404] check that the bot is a member of the room")
	case http.StatusBadRequest:
		return errors.New("webex: [400] check the room id")
	}
	return errors.Errorf("webex: HTTP response: %s", res.Status)
}
