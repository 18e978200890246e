package slack

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskregister/pkg/domain/interfaces"
	"github.com/secmon-lab/riskregister/pkg/domain/model"
	"github.com/secmon-lab/riskregister/pkg/domain/types"
	"github.com/slack-go/slack"
)

// maxSectionBytes is the Block Kit limit for a section text
const maxSectionBytes = 3000

// Notifier posts register events to one Slack channel
type Notifier struct {
	svc       Service
	channelID string
	baseURL   string
}

var _ interfaces.Notifier = &Notifier{}

// NotifierOption configures a Notifier
type NotifierOption func(*Notifier)

// WithBaseURL links risk titles to the web UI at url
func WithBaseURL(url string) NotifierOption {
	return func(n *Notifier) {
		n.baseURL = strings.TrimRight(url, "/")
	}
}

// NewNotifier creates a notifier posting to channelID
func NewNotifier(svc Service, channelID string, opts ...NotifierOption) *Notifier {
	n := &Notifier{svc: svc, channelID: channelID}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// ChannelLabel returns "#name" of the target channel, or its ID when the
// name cannot be resolved
func (n *Notifier) ChannelLabel(ctx context.Context) string {
	name, err := n.svc.ChannelName(ctx, n.channelID)
	if err != nil || name == "" {
		return n.channelID
	}
	return "#" + name
}

func (n *Notifier) riskLink(id types.RiskID, title string) string {
	if n.baseURL == "" {
		return "*" + title + "*"
	}
	return fmt.Sprintf("<%s/risks/%s|*%s*>", n.baseURL, id, title)
}

func (n *Notifier) post(ctx context.Context, text string, blocks []slack.Block) error {
	if _, err := n.svc.PostMessage(ctx, n.channelID, blocks, text); err != nil {
		return goerr.Wrap(err, "failed to notify", goerr.V("channel_id", n.channelID))
	}
	return nil
}

func section(markdown string) slack.Block {
	text := slack.NewTextBlockObject(slack.MarkdownType, truncateToMaxBytes(markdown, maxSectionBytes), false, false)
	return slack.NewSectionBlock(text, nil, nil)
}

func (n *Notifier) NotifyStatusChanged(ctx context.Context, risk *model.Risk, from types.RiskStatus) error {
	text := fmt.Sprintf("Risk %q moved from %s to %s", risk.Title, from.Label(), risk.Status.Label())
	blocks := []slack.Block{
		section(fmt.Sprintf(":arrows_counterclockwise: %s moved from *%s* to *%s*",
			n.riskLink(risk.ID, risk.Title), from.Label(), risk.Status.Label())),
		slack.NewContextBlock("",
			slack.NewTextBlockObject(slack.MarkdownType, "Severity: "+string(risk.Severity), false, false)),
	}
	return n.post(ctx, text, blocks)
}

func (n *Notifier) NotifyTransitionFailed(ctx context.Context, id types.RiskID, to types.RiskStatus, cause error) error {
	text := fmt.Sprintf("Failed to move risk %s to %s", id, to.Label())
	msg := ":warning: " + text
	if cause != nil {
		msg += "\n```" + cause.Error() + "```"
	}
	return n.post(ctx, text, []slack.Block{section(msg)})
}

func (n *Notifier) NotifyOverdueReviews(ctx context.Context, items []*model.ReviewItem) error {
	if len(items) == 0 {
		return nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, ":calendar: %d risk review(s) are overdue\n", len(items))
	for _, item := range items {
		fmt.Fprintf(&b, "• %s (%s) due %s\n",
			n.riskLink(item.RiskID, item.Title), item.Severity, item.ReviewDate.Format("2006-01-02"))
	}

	text := fmt.Sprintf("%d risk review(s) are overdue", len(items))
	return n.post(ctx, text, []slack.Block{section(b.String())})
}

// truncateToMaxBytes cuts s to at most maxBytes without splitting a UTF-8 sequence
func truncateToMaxBytes(s string, maxBytes int) string {
	if len(s) <= maxBytes {
		return s
	}
	cut := maxBytes
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
