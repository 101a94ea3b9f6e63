package notion

import (
	"context"
	"time"

	"github.com/jomei/notionapi"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/tributary/pkg/domain/model"
)

// multiValueType marks multi-select and people values so the schema mapper
// reads them as collections
const multiValueType = "Collection(Edm.String)"

type client struct {
	api *notionapi.Client
}

// New creates a new Notion service with the provided API token
func New(token string) (Service, error) {
	if token == "" {
		return nil, goerr.New("Notion API token is required")
	}

	return &client{
		api: notionapi.NewClient(
			notionapi.Token(token),
			notionapi.WithRetry(3),
		),
	}, nil
}

func (c *client) GetPageDocument(ctx context.Context, pageID string) (map[string]any, error) {
	page, err := c.api.Page.Get(ctx, notionapi.PageID(pageID))
	if err != nil {
		return nil, goerr.Wrap(model.ErrSourceFetch, "failed to get notion page",
			goerr.V("page_id", pageID), goerr.V("error", err.Error()))
	}

	blocks, err := c.fetchBlocksRecursively(ctx, pageID)
	if err != nil {
		return nil, goerr.Wrap(model.ErrSourceFetch, "failed to fetch notion page blocks",
			goerr.V("page_id", pageID), goerr.V("error", err.Error()))
	}

	doc := FlattenProperties(page.Properties)
	doc[IDKey] = page.ID.String()
	doc[PageURLKey] = page.URL
	doc[LastEditedTimeKey] = time.Time(page.LastEditedTime).UTC().Format(time.RFC3339)
	doc[BodyKey] = blocks.ToHTML()

	return doc, nil
}

// FlattenProperties converts Notion page properties into plain values
func FlattenProperties(props notionapi.Properties) map[string]any {
	doc := make(map[string]any, len(props))

	for name, prop := range props {
		switch p := prop.(type) {
		case *notionapi.TitleProperty:
			doc[name] = plainText(p.Title)
		case *notionapi.RichTextProperty:
			doc[name] = plainText(p.RichText)
		case *notionapi.NumberProperty:
			doc[name] = p.Number
		case *notionapi.CheckboxProperty:
			doc[name] = p.Checkbox
		case *notionapi.SelectProperty:
			doc[name] = p.Select.Name
		case *notionapi.StatusProperty:
			doc[name] = p.Status.Name
		case *notionapi.MultiSelectProperty:
			names := make([]any, 0, len(p.MultiSelect))
			for _, opt := range p.MultiSelect {
				names = append(names, opt.Name)
			}
			doc[name] = collectionEnvelope(names)
		case *notionapi.PeopleProperty:
			people := make([]any, 0, len(p.People))
			for _, u := range p.People {
				people = append(people, u.Name)
			}
			doc[name] = collectionEnvelope(people)
		case *notionapi.DateProperty:
			if p.Date != nil && p.Date.Start != nil {
				doc[name] = time.Time(*p.Date.Start).UTC().Format(time.RFC3339)
			} else {
				doc[name] = nil
			}
		case *notionapi.URLProperty:
			doc[name] = p.URL
		case *notionapi.EmailProperty:
			doc[name] = p.Email
		case *notionapi.PhoneNumberProperty:
			doc[name] = p.PhoneNumber
		case *notionapi.CreatedTimeProperty:
			doc[name] = p.CreatedTime.UTC().Format(time.RFC3339)
		case *notionapi.LastEditedTimeProperty:
			doc[name] = p.LastEditedTime.UTC().Format(time.RFC3339)
		}
	}

	return doc
}

func collectionEnvelope(items []any) map[string]any {
	return map[string]any{
		model.MetadataKey: map[string]any{"type": multiValueType},
		"results":         items,
	}
}

func (c *client) fetchBlocksRecursively(ctx context.Context, blockID string) (Blocks, error) {
	var blocks Blocks
	var cursor notionapi.Cursor

	for {
		resp, err := c.api.Block.GetChildren(ctx, notionapi.BlockID(blockID), &notionapi.Pagination{
			StartCursor: cursor,
			PageSize:    100,
		})
		if err != nil {
			return nil, goerr.Wrap(err, "failed to get block children", goerr.V("blockID", blockID))
		}

		for _, blockObj := range resp.Results {
			block, err := c.convertBlock(ctx, blockObj)
			if err != nil {
				return nil, err
			}
			blocks = append(blocks, block)
		}

		if !resp.HasMore {
			break
		}
		cursor = notionapi.Cursor(resp.NextCursor)
	}

	return blocks, nil
}

func (c *client) convertBlock(ctx context.Context, blockObj notionapi.Block) (Block, error) {
	block := Block{
		ID:   blockObj.GetID().String(),
		Type: string(blockObj.GetType()),
	}

	switch b := blockObj.(type) {
	case *notionapi.ParagraphBlock:
		block.Content = map[string]any{"rich_text": b.Paragraph.RichText}
	case *notionapi.Heading1Block:
		block.Content = map[string]any{"rich_text": b.Heading1.RichText}
	case *notionapi.Heading2Block:
		block.Content = map[string]any{"rich_text": b.Heading2.RichText}
	case *notionapi.Heading3Block:
		block.Content = map[string]any{"rich_text": b.Heading3.RichText}
	case *notionapi.BulletedListItemBlock:
		block.Content = map[string]any{"rich_text": b.BulletedListItem.RichText}
	case *notionapi.NumberedListItemBlock:
		block.Content = map[string]any{"rich_text": b.NumberedListItem.RichText}
	case *notionapi.CodeBlock:
		block.Content = map[string]any{"rich_text": b.Code.RichText, "language": b.Code.Language}
	case *notionapi.QuoteBlock:
		block.Content = map[string]any{"rich_text": b.Quote.RichText}
	case *notionapi.CalloutBlock:
		block.Content = map[string]any{"rich_text": b.Callout.RichText}
	case *notionapi.ToggleBlock:
		block.Content = map[string]any{"rich_text": b.Toggle.RichText}
	case *notionapi.ToDoBlock:
		block.Content = map[string]any{"rich_text": b.ToDo.RichText, "checked": b.ToDo.Checked}
	}

	if blockObj.GetHasChildren() {
		children, err := c.fetchBlocksRecursively(ctx, blockObj.GetID().String())
		if err != nil {
			return block, goerr.Wrap(err, "failed to fetch children blocks",
				goerr.V("blockID", blockObj.GetID()), goerr.V("blockType", blockObj.GetType()))
		}
		block.Children = children
	}

	return block, nil
}
