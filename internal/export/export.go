// Package export renders summaries for the share sheet.
package export

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/tkwok/vidsum/core/internal/errors"
	"github.com/tkwok/vidsum/core/internal/models"
)

// md renders the summary body; the remote service produces GitHub-flavored
// markdown (tables in Chapters summaries, strikethrough in corrections).
var md = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
)

// RenderMarkdown returns the summary as a shareable markdown document with
// a small header block above the body.
func RenderMarkdown(s *models.Summary) string {
	var b strings.Builder

	title := s.VideoTitle
	if title == "" {
		title = s.VideoURL
	}

	fmt.Fprintf(&b, "# %s\n\n", title)
	fmt.Fprintf(&b, "- Video: %s\n", s.VideoURL)
	fmt.Fprintf(&b, "- Summary: %s / %s\n", s.SummaryType, s.SummaryLength)
	if !s.CreatedAt.IsZero() {
		fmt.Fprintf(&b, "- Generated: %s\n", s.CreatedAt.UTC().Format(time.RFC1123))
	}
	b.WriteString("\n")
	b.WriteString(s.SummaryText)
	b.WriteString("\n")

	return b.String()
}

// RenderHTML converts the shareable markdown document to HTML.
func RenderHTML(s *models.Summary) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(RenderMarkdown(s)), &buf); err != nil {
		return "", errors.Wrap(errors.ErrExportFailed, "failed to render summary", err)
	}
	return buf.String(), nil
}
