package notion

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/jomei/notionapi"
)

// Service reads Notion pages as source documents
type Service interface {
	// GetPageDocument returns the page properties flattened into a JSON-like
	// object, with the page body rendered as HTML under BodyKey
	GetPageDocument(ctx context.Context, pageID string) (map[string]any, error)
}

// Keys added to every page document besides its own properties
const (
	IDKey             = "ID"
	BodyKey           = "Body"
	PageURLKey        = "PageURL"
	LastEditedTimeKey = "LastEditedTime"
)

// Block represents a Notion block with recursive children
type Block struct {
	ID       string
	Type     string
	Content  map[string]any
	Children Blocks
}

// Blocks is a slice of Block with helper methods
type Blocks []Block

// ToHTML renders blocks as an HTML fragment
func (b Blocks) ToHTML() string {
	var sb strings.Builder
	b.writeHTML(&sb)
	return sb.String()
}

func listTag(blockType string) string {
	switch blockType {
	case "bulleted_list_item":
		return "ul"
	case "numbered_list_item":
		return "ol"
	default:
		return ""
	}
}

func (b Blocks) writeHTML(sb *strings.Builder) {
	openList := ""

	for _, block := range b {
		if tag := listTag(block.Type); tag != openList {
			if openList != "" {
				fmt.Fprintf(sb, "</%s>", openList)
			}
			if tag != "" {
				fmt.Fprintf(sb, "<%s>", tag)
			}
			openList = tag
		}

		text := richTextHTML(block.Content)

		switch block.Type {
		case "paragraph":
			if text != "" {
				fmt.Fprintf(sb, "<p>%s</p>", text)
			}

		case "heading_1", "heading_2", "heading_3":
			level := block.Type[len(block.Type)-1:]
			fmt.Fprintf(sb, "<h%s>%s</h%s>", level, text, level)

		case "bulleted_list_item", "numbered_list_item":
			sb.WriteString("<li>")
			sb.WriteString(text)
			if len(block.Children) > 0 {
				block.Children.writeHTML(sb)
			}
			sb.WriteString("</li>")
			continue

		case "code":
			language, _ := block.Content["language"].(string)
			if language != "" {
				fmt.Fprintf(sb, `<pre><code class="language-%s">%s</code></pre>`, html.EscapeString(language), text)
			} else {
				fmt.Fprintf(sb, "<pre><code>%s</code></pre>", text)
			}

		case "quote", "callout":
			fmt.Fprintf(sb, "<blockquote>%s</blockquote>", text)

		case "divider":
			sb.WriteString("<hr>")

		case "toggle":
			fmt.Fprintf(sb, "<details><summary>%s</summary>", text)
			if len(block.Children) > 0 {
				block.Children.writeHTML(sb)
			}
			sb.WriteString("</details>")
			continue

		case "to_do":
			mark := "[ ]"
			if checked, _ := block.Content["checked"].(bool); checked {
				mark = "[x]"
			}
			fmt.Fprintf(sb, "<p>%s %s</p>", mark, text)

		default:
			if text != "" {
				fmt.Fprintf(sb, "<p>%s</p>", text)
			}
		}

		if len(block.Children) > 0 {
			block.Children.writeHTML(sb)
		}
	}

	if openList != "" {
		fmt.Fprintf(sb, "</%s>", openList)
	}
}

func richTextHTML(content map[string]any) string {
	if content == nil {
		return ""
	}
	rt, ok := content["rich_text"].([]notionapi.RichText)
	if !ok {
		return ""
	}

	var sb strings.Builder
	for _, text := range rt {
		sb.WriteString(formatRichText(text))
	}
	return sb.String()
}

func formatRichText(rt notionapi.RichText) string {
	text := html.EscapeString(rt.PlainText)

	if rt.Annotations != nil {
		if rt.Annotations.Bold {
			text = "<strong>" + text + "</strong>"
		}
		if rt.Annotations.Italic {
			text = "<em>" + text + "</em>"
		}
		if rt.Annotations.Code {
			text = "<code>" + text + "</code>"
		}
		if rt.Annotations.Strikethrough {
			text = "<s>" + text + "</s>"
		}
	}

	if rt.Href != "" {
		text = fmt.Sprintf(`<a href="%s">%s</a>`, html.EscapeString(rt.Href), text)
	}

	return text
}

func plainText(rt []notionapi.RichText) string {
	var sb strings.Builder
	for _, t := range rt {
		sb.WriteString(t.PlainText)
	}
	return sb.String()
}
