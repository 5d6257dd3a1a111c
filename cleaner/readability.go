package cleaner

import (
	"log/slog"
	nurl "net/url"
	"strings"

	readability "github.com/go-shiori/go-readability"
	"github.com/use-agent/pricelens/extractor"
)

// minContentLength is the minimum TextContent length (in characters) for
// readability output to be used. Product pages are often too fragmented
// for readability, in which case the whole visible body text is used.
const minContentLength = 50

// Excerpt returns the main readable text of rawHTML, cut to roughly
// maxTokens tokens. It never fails: when readability cannot find an
// article the visible body text is used instead.
func Excerpt(rawHTML, sourceURL string, maxTokens int) string {
	if strings.TrimSpace(rawHTML) == "" {
		return ""
	}
	return TruncateTokens(mainText(rawHTML, sourceURL), maxTokens)
}

func mainText(rawHTML, sourceURL string) string {
	parsedURL, err := nurl.Parse(sourceURL)
	if err != nil {
		slog.Debug("readability: invalid source URL, using page text",
			"url", sourceURL, "error", err,
		)
		return extractor.PageText(rawHTML)
	}

	article, err := readability.FromReader(strings.NewReader(rawHTML), parsedURL)
	if err != nil {
		slog.Debug("readability: extraction failed, using page text",
			"url", sourceURL, "error", err,
		)
		return extractor.PageText(rawHTML)
	}

	text := strings.Join(strings.Fields(article.TextContent), " ")
	if len(text) < minContentLength {
		return extractor.PageText(rawHTML)
	}
	if article.Title != "" && !strings.Contains(text, article.Title) {
		text = article.Title + "\n" + text
	}
	return text
}
