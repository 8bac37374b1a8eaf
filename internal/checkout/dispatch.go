package checkout

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"github.com/origen-putumayo/storefront/internal/cart"
)

const defaultDispatchHost = "wa.me"

// ErrMissingRecipient is returned when no seller chat number is configured.
var ErrMissingRecipient = errors.New("dispatch recipient not configured")

// LinkBuilder composes chat deep links carrying a pre-filled message.
type LinkBuilder struct {
	Host      string
	Recipient string
}

// Build returns https://<host>/<recipient>?text=<message> with the message percent-encoded
// the way browsers encode URI components (spaces as %20).
func (b LinkBuilder) Build(message string) (string, error) {
	recipient := strings.TrimSpace(b.Recipient)
	if recipient == "" {
		return "", ErrMissingRecipient
	}
	host := strings.TrimSpace(b.Host)
	if host == "" {
		host = defaultDispatchHost
	}
	encoded := strings.ReplaceAll(url.QueryEscape(message), "+", "%20")
	return "https://" + host + "/" + url.PathEscape(recipient) + "?text=" + encoded, nil
}

// Opener attempts to open a dispatch link and reports whether it succeeded.
type Opener interface {
	Open(ctx context.Context, link string) bool
}

// ReportedOpener replays the outcome the client observed when it opened the link itself.
type ReportedOpener bool

func (o ReportedOpener) Open(context.Context, string) bool { return bool(o) }

// DispatchResult describes one hand-off attempt.
type DispatchResult struct {
	Opened   bool   `json:"opened"`
	URL      string `json:"url,omitempty"`
	Message  string `json:"message"`
	Fallback bool   `json:"fallback"`
}

// ConfirmAndHandOff opens the chat link and clears the cart only when it opened.
// A blocked or impossible hand-off keeps the cart and returns the message for manual copy.
func ConfirmAndHandOff(ctx context.Context, store *cart.Store, links LinkBuilder, message string, opener Opener) DispatchResult {
	link, err := links.Build(message)
	if err != nil {
		return DispatchResult{Message: message, Fallback: true}
	}
	opened := opener != nil && opener.Open(ctx, link)
	if !opened {
		return DispatchResult{URL: link, Message: message, Fallback: true}
	}
	if store != nil {
		store.Clear()
	}
	return DispatchResult{Opened: true, URL: link, Message: message}
}
