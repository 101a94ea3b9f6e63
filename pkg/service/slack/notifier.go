package slack

import (
	"context"
	"fmt"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/tributary/pkg/domain/model"
	"github.com/slack-go/slack"
)

// maxListedErrors bounds the field errors listed in one message
const maxListedErrors = 10

// Notifier posts sync failures to a fixed channel
type Notifier struct {
	svc     Service
	channel string
}

// NewNotifier creates a Notifier posting to channelID
func NewNotifier(svc Service, channelID string) *Notifier {
	return &Notifier{svc: svc, channel: channelID}
}

// NotifySyncFailure posts a summary of a failed run
func (n *Notifier) NotifySyncFailure(ctx context.Context, cfg *model.SyncConfig, entry *model.HistoryEntry) error {
	blocks := BuildFailureBlocks(cfg, entry)
	fallback := fmt.Sprintf("Sync failed: %s", cfg.Name)

	if _, err := n.svc.PostMessage(ctx, n.channel, blocks, fallback); err != nil {
		return goerr.Wrap(err, "failed to notify sync failure",
			goerr.V(model.SyncConfigIDKey, cfg.ID), goerr.V("history_id", entry.ID))
	}
	return nil
}

// BuildFailureBlocks constructs Block Kit blocks describing a failed run
func BuildFailureBlocks(cfg *model.SyncConfig, entry *model.HistoryEntry) []slack.Block {
	result := entry.Result

	blocks := []slack.Block{
		slack.NewHeaderBlock(
			slack.NewTextBlockObject(slack.PlainTextType, ":warning: Sync failed: "+cfg.Name, true, false),
		),
		slack.NewSectionBlock(nil, []*slack.TextBlockObject{
			slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("*Processed*\n%d", result.RecordsProcessed), false, false),
			slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("*Succeeded*\n%d", result.RecordsSuccess), false, false),
			slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("*Failed*\n%d", result.RecordsFailed), false, false),
			slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("*Trigger*\n%s", entry.Trigger), false, false),
		}, nil),
	}

	if len(result.Errors) > 0 {
		lines := make([]string, 0, maxListedErrors+1)
		for i, e := range result.Errors {
			if i == maxListedErrors {
				lines = append(lines, fmt.Sprintf("_and %d more_", len(result.Errors)-maxListedErrors))
				break
			}
			lines = append(lines, fmt.Sprintf("• `%s`: %s", e.Field, e.Message))
		}
		blocks = append(blocks, slack.NewSectionBlock(
			slack.NewTextBlockObject(slack.MarkdownType, strings.Join(lines, "\n"), false, false),
			nil, nil,
		))
	}

	blocks = append(blocks, slack.NewContextBlock("",
		slack.NewTextBlockObject(slack.MarkdownType,
			fmt.Sprintf("Config `%s`  |  %s", cfg.ID, entry.Timestamp.UTC().Format("2006-01-02 15:04:05 MST")),
			false, false),
	))

	return blocks
}
