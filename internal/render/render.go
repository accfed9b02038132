// Package render turns article bibliographies written in markdown into HTML.
package render

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/debemdeboas/composer/internal/cache"
	"github.com/debemdeboas/composer/internal/util"
	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/ast"
	md_html "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/rs/zerolog"
)

const DefaultStyle = "github"

var renderLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	renderLogger = l
}

var formatter = chromahtml.New(chromahtml.WithClasses(false), chromahtml.TabWidth(4))

// HighlightCode returns code as highlighted HTML. On any failure the code is
// returned escaped and unhighlighted.
func HighlightCode(code, language, style string) string {
	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return "<pre>" + escape(code) + "</pre>"
	}

	var buf strings.Builder
	if err := formatter.Format(&buf, styles.Get(style), iterator); err != nil {
		renderLogger.Warn().Err(err).Str("language", language).Msg("Error highlighting code")
		return "<pre>" + escape(code) + "</pre>"
	}
	return buf.String()
}

// RenderMarkdown renders md as HTML. Raw HTML in the source is dropped.
func RenderMarkdown(md []byte, style string) []byte {
	opts := md_html.RendererOptions{
		Flags: md_html.CommonFlags | md_html.SkipHTML | md_html.HrefTargetBlank | md_html.NofollowLinks | md_html.NoreferrerLinks,
		RenderNodeHook: func(w io.Writer, node ast.Node, entering bool) (ast.WalkStatus, bool) {
			if code, ok := node.(*ast.CodeBlock); ok && entering {
				var lang string
				if info := code.Info; info != nil {
					lang = string(info)
				}
				fmt.Fprintf(w, "<div class=\"highlight\">%s</div>", HighlightCode(string(code.Literal), lang, style))
				return ast.GoToNext, true
			}
			return ast.GoToNext, false
		},
	}

	doc := parser.NewWithExtensions(
		parser.CommonExtensions | parser.Autolink | parser.Footnotes | parser.NoEmptyLineBeforeBlock,
	).Parse(markdown.NormalizeNewlines(md))

	return markdown.Render(doc, md_html.NewRenderer(opts))
}

var renderCacheMutex sync.Mutex

// RenderMarkdownCached renders md once per content hash and style.
func RenderMarkdownCached(md []byte, style string) []byte {
	if len(md) == 0 {
		return nil
	}
	contentHash := util.ContentHash(md)

	if cached, found := cache.GetRenderedMarkdown(contentHash, style); found {
		renderLogger.Debug().Str("content_hash", contentHash).Str("style", style).Msg("Cache hit for rendered markdown")
		return cached.HTML
	}

	renderCacheMutex.Lock()
	defer renderCacheMutex.Unlock()

	if cached, found := cache.GetRenderedMarkdown(contentHash, style); found {
		return cached.HTML
	}

	html := RenderMarkdown(md, style)
	cache.SetRenderedMarkdown(contentHash, style, html)
	return html
}

var escaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&#34;", "'", "&#39;")

func escape(s string) string {
	return escaper.Replace(s)
}
