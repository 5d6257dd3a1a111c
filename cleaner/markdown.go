package cleaner

import (
	nurl "net/url"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
)

// mdConverter is goroutine-safe and shared by all callers.
var mdConverter = newMarkdownConverter()

// newMarkdownConverter strips script/style/head noise (base plugin),
// renders CommonMark and keeps tables with minimal cell padding.
func newMarkdownConverter() *converter.Converter {
	return converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
			table.NewTablePlugin(
				table.WithCellPaddingBehavior(table.CellPaddingBehaviorMinimal),
			),
		),
	)
}

// ToMarkdown converts HTML to Markdown. Relative links and images are
// resolved against pageURL's scheme and host.
func ToMarkdown(htmlContent, pageURL string) (string, error) {
	u, err := nurl.Parse(pageURL)
	if err != nil || u.Host == "" {
		return mdConverter.ConvertString(htmlContent)
	}
	return mdConverter.ConvertString(htmlContent, converter.WithDomain(u.Scheme+"://"+u.Host))
}
