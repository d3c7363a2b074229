package loader

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"golang.org/x/net/html"
)

const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

const maxPageBytes = 5 << 20

// WebLoader fetches a page and converts its HTML to markdown text.
type WebLoader struct {
	UserAgent string
	Client    *http.Client
}

func NewWebLoader(timeout time.Duration) *WebLoader {
	return &WebLoader{
		UserAgent: DefaultUserAgent,
		Client:    &http.Client{Timeout: timeout},
	}
}

func (l *WebLoader) Load(ctx context.Context, pageURL string) (Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return Document{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", l.UserAgent)

	resp, err := l.Client.Do(req)
	if err != nil {
		return Document{}, fmt.Errorf("failed to fetch %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Document{}, fmt.Errorf("fetch %s: unexpected status %d", pageURL, resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return Document{}, fmt.Errorf("failed to read %s: %w", pageURL, err)
	}
	page := string(raw)

	markdown, err := htmltomarkdown.ConvertString(page)
	if err != nil {
		return Document{}, fmt.Errorf("failed to convert %s to markdown: %w", pageURL, err)
	}

	title := pageTitle(page)
	if title == "" {
		title = pageURL
	}

	return Document{
		Source: pageURL,
		Title:  title,
		Text:   markdown,
	}, nil
}

func pageTitle(page string) string {
	doc, err := html.Parse(strings.NewReader(page))
	if err != nil {
		return ""
	}
	var title string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if title != "" {
			return
		}
		if n.Type == html.ElementNode && n.Data == "title" && n.FirstChild != nil {
			title = strings.TrimSpace(n.FirstChild.Data)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return title
}
