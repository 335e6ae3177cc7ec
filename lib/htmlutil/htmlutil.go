package htmlutil

import (
	"bytes"
	"context"
	"net/url"
	"regexp"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/net/html"
)

var tracer = otel.Tracer("inteligente.lib.htmlutil")

func GetText(node *html.Node) string {
	var buffer bytes.Buffer
	getTextRecursive(node, &buffer)
	return buffer.String()
}

func getTextRecursive(node *html.Node, buffer *bytes.Buffer) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		buffer.WriteString(node.Data)
		return
	}
	child := node.FirstChild
	for child != nil {
		getTextRecursive(child, buffer)
		child = child.NextSibling
	}
}

// Anchor is one link on a listing page, with its href already resolved
// against the page's own URL.
type Anchor struct {
	Text string
	URL  string
}

var innerWhitespace = regexp.MustCompile(`\s\s+`)

func removeNonPrintable(s string) string {
	newStr := strings.Builder{}
	for _, c := range s {
		if unicode.IsPrint(c) {
			newStr.WriteRune(c)
		}
	}
	return newStr.String()
}

// GetAnchors extracts every usable (href, text) pair from a document:
// hrefs are resolved against base, while fragment-only, mailto: and
// javascript: targets are dropped.
func GetAnchors(ctx context.Context, doc *goquery.Document, base *url.URL) []Anchor {
	ctx, span := tracer.Start(ctx, "GetAnchors")
	defer span.End()

	var anchors []Anchor
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href := strings.TrimSpace(sel.AttrOr("href", ""))
		if href == "" || strings.HasPrefix(href, "#") {
			return
		}
		lowered := strings.ToLower(href)
		if strings.HasPrefix(lowered, "mailto:") || strings.HasPrefix(lowered, "javascript:") {
			return
		}

		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		resolved := base.ResolveReference(ref)
		resolved.Fragment = ""

		text := ""
		for _, n := range sel.Nodes {
			text += GetText(n)
		}
		text = removeNonPrintable(text)
		text = strings.Trim(text, " \t\n")
		text = innerWhitespace.ReplaceAllString(text, " ")

		resolvedStr := resolved.String()
		anchors = append(anchors, Anchor{Text: text, URL: resolvedStr})
		span.AddEvent("anchor", trace.WithAttributes(
			attribute.String("text", text),
			attribute.String("url", resolvedStr),
		))
	})

	return anchors
}
