package slack_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/riskregister/pkg/domain/model"
	"github.com/secmon-lab/riskregister/pkg/domain/types"
	"github.com/secmon-lab/riskregister/pkg/service/slack"
	slackgo "github.com/slack-go/slack"
)

type postedMessage struct {
	channelID string
	blocks    []slackgo.Block
	text      string
}

type mockService struct {
	posted   []postedMessage
	channels map[string]string
	err      error
}

func (m *mockService) ChannelName(ctx context.Context, channelID string) (string, error) {
	name, ok := m.channels[channelID]
	if !ok {
		return "", errors.New("channel_not_found")
	}
	return name, nil
}

func (m *mockService) PostMessage(ctx context.Context, channelID string, blocks []slackgo.Block, text string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.posted = append(m.posted, postedMessage{channelID: channelID, blocks: blocks, text: text})
	return "1700000000.000100", nil
}

func sectionText(t *testing.T, b slackgo.Block) string {
	t.Helper()
	s, ok := b.(*slackgo.SectionBlock)
	if !ok {
		t.Fatalf("expected section block, got %T", b)
	}
	return s.Text.Text
}

func TestNotifierStatusChanged(t *testing.T) {
	svc := &mockService{}
	n := slack.NewNotifier(svc, "C123", slack.WithBaseURL("https://risk.example.com/"))

	risk := &model.Risk{ID: "r1", Title: "Phishing", Status: types.RiskStatusMitigating, Severity: types.SeverityHigh}
	gt.NoError(t, n.NotifyStatusChanged(context.Background(), risk, types.RiskStatusOpen)).Required()

	gt.Array(t, svc.posted).Length(1).Required()
	msg := svc.posted[0]
	gt.Value(t, msg.channelID).Equal("C123")
	gt.String(t, msg.text).Contains("Open")
	gt.String(t, msg.text).Contains("Mitigating")
	gt.String(t, sectionText(t, msg.blocks[0])).Contains("<https://risk.example.com/risks/r1|*Phishing*>")
}

func TestNotifierTransitionFailed(t *testing.T) {
	svc := &mockService{}
	n := slack.NewNotifier(svc, "C123")

	gt.NoError(t, n.NotifyTransitionFailed(context.Background(), "r1", types.RiskStatusResolved, errors.New("db down"))).Required()
	gt.Array(t, svc.posted).Length(1).Required()
	gt.String(t, sectionText(t, svc.posted[0].blocks[0])).Contains("db down")

	svc.err = errors.New("slack unavailable")
	gt.Value(t, n.NotifyTransitionFailed(context.Background(), "r1", types.RiskStatusResolved, nil)).NotNil()
}

func TestNotifierOverdueReviews(t *testing.T) {
	svc := &mockService{}
	n := slack.NewNotifier(svc, "C123")
	ctx := context.Background()

	gt.NoError(t, n.NotifyOverdueReviews(ctx, nil))
	gt.Array(t, svc.posted).Length(0)

	items := []*model.ReviewItem{
		{RiskID: "r1", Title: "Vendor outage", Severity: types.SeverityLow, ReviewDate: time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)},
		{RiskID: "r2", Title: "Data loss", Severity: types.SeverityCritical, ReviewDate: time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC)},
	}
	gt.NoError(t, n.NotifyOverdueReviews(ctx, items)).Required()
	gt.Array(t, svc.posted).Length(1).Required()
	body := sectionText(t, svc.posted[0].blocks[0])
	gt.String(t, body).Contains("2 risk review(s)")
	gt.String(t, body).Contains("2025-01-03")
}

func TestNotifierChannelLabel(t *testing.T) {
	ctx := context.Background()
	svc := &mockService{channels: map[string]string{"C123": "risk-alerts"}}

	gt.Value(t, slack.NewNotifier(svc, "C123").ChannelLabel(ctx)).Equal("#risk-alerts")
	gt.Value(t, slack.NewNotifier(svc, "C999").ChannelLabel(ctx)).Equal("C999")
}

func TestTruncateToMaxBytes(t *testing.T) {
	gt.Value(t, slack.TruncateToMaxBytes("hello", 10)).Equal("hello")
	gt.Value(t, slack.TruncateToMaxBytes("hello", 3)).Equal("hel")

	// "あ" is three bytes; cutting inside it drops the whole rune
	s := slack.TruncateToMaxBytes("aあ", 2)
	gt.Value(t, s).Equal("a")
	gt.Bool(t, strings.HasPrefix("aあ", s)).True()
}
