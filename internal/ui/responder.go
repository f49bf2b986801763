package ui

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"cinewatch/internal/support"
)

// Answer is one bot turn.
type Answer struct {
	Lines     []string
	LiveAgent bool
}

// Responder answers chat messages.
type Responder interface {
	Respond(ctx context.Context, text string) (Answer, error)
}

// LocalResponder answers from the built-in bot and help content.
type LocalResponder struct {
	bot  *support.Bot
	conv *support.Conversation
}

func NewLocalResponder(data *support.Data) *LocalResponder {
	return &LocalResponder{bot: support.NewBot(data), conv: support.NewConversation()}
}

func (l *LocalResponder) Respond(_ context.Context, text string) (Answer, error) {
	r := l.bot.Respond(l.conv, text)
	return Answer{Lines: r.Lines(), LiveAgent: r.LiveAgent}, nil
}

// RemoteResponder talks to a running server's chat endpoint. The cookie
// jar keeps one visitor session across messages.
type RemoteResponder struct {
	endpoint string
	http     *http.Client
}

func NewRemoteResponder(baseURL string, timeout time.Duration) (*RemoteResponder, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	return &RemoteResponder{
		endpoint: strings.TrimRight(baseURL, "/") + "/api/v1/chat",
		http:     &http.Client{Jar: jar, Timeout: timeout},
	}, nil
}

func (r *RemoteResponder) Respond(ctx context.Context, text string) (Answer, error) {
	body, err := json.Marshal(map[string]string{"message": text})
	if err != nil {
		return Answer{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(body))
	if err != nil {
		return Answer{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.http.Do(req)
	if err != nil {
		return Answer{}, fmt.Errorf("contacting support: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Answer{}, fmt.Errorf("support chat returned %d", resp.StatusCode)
	}

	var out struct {
		Reply     []string `json:"reply"`
		LiveAgent bool     `json:"live_agent"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Answer{}, fmt.Errorf("decoding reply: %w", err)
	}
	return Answer{Lines: out.Reply, LiveAgent: out.LiveAgent}, nil
}
