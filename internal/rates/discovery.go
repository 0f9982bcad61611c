package rates

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"
)

// PDFDiscoveryTimeout controls how long we wait for the landing page and
// the PDF download.
var PDFDiscoveryTimeout = 30 * time.Second

var (
	pdfAnchorRe = regexp.MustCompile(`(?is)<a[^>]+href="([^"]+\.pdf)"[^>]*>([^<]*)</a>`)
	pdfHrefRe   = regexp.MustCompile(`(?i)href="([^"]+\.pdf)"`)
)

// DiscoverPDFURL fetches the tariff's landing page and picks the link most
// likely to be the residential tariff PDF.
func DiscoverPDFURL(ctx context.Context, client *http.Client, t TariffDescriptor) (string, error) {
	if t.LandingURL == "" {
		return "", fmt.Errorf("tariff %q has no landing URL", t.Key)
	}
	body, err := fetch(ctx, client, t.LandingURL)
	if err != nil {
		return "", fmt.Errorf("fetch landing url: %w", err)
	}
	defer body.Close()

	html, err := io.ReadAll(body)
	if err != nil {
		return "", fmt.Errorf("read landing body: %w", err)
	}
	return discoverPDFURLFromHTML(t.LandingURL, string(html))
}

// DownloadTariffPDF discovers the tariff PDF and stores it at t.PDFPath.
func DownloadTariffPDF(ctx context.Context, client *http.Client, t TariffDescriptor) (string, error) {
	if t.PDFPath == "" {
		return "", fmt.Errorf("tariff %q has no PDF path configured", t.Key)
	}
	if client == nil {
		client = &http.Client{Timeout: PDFDiscoveryTimeout}
	}
	pdfURL, err := DiscoverPDFURL(ctx, client, t)
	if err != nil {
		return "", err
	}
	body, err := fetch(ctx, client, pdfURL)
	if err != nil {
		return "", fmt.Errorf("download pdf: %w", err)
	}
	defer body.Close()

	if err := writeFileAtomically(t.PDFPath, body); err != nil {
		return "", err
	}
	return pdfURL, nil
}

func fetch(ctx context.Context, client *http.Client, u string) (io.ReadCloser, error) {
	if client == nil {
		client = &http.Client{Timeout: PDFDiscoveryTimeout}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		resp.Body.Close()
		return nil, fmt.Errorf("%s returned status %d", u, resp.StatusCode)
	}
	return resp.Body, nil
}

type pdfCandidate struct {
	href  string
	score int
}

func discoverPDFURLFromHTML(baseURL, html string) (string, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}

	var candidates []pdfCandidate
	for _, m := range pdfAnchorRe.FindAllStringSubmatch(html, -1) {
		href := strings.TrimSpace(m[1])
		text := strings.TrimSpace(htmlUnescape(m[2]))
		candidates = append(candidates, pdfCandidate{href: href, score: scorePDFCandidate(href, text)})
	}
	if len(candidates) == 0 {
		for _, m := range pdfHrefRe.FindAllStringSubmatch(html, -1) {
			href := strings.TrimSpace(m[1])
			candidates = append(candidates, pdfCandidate{href: href, score: scorePDFCandidate(href, "")})
		}
	}
	if len(candidates) == 0 {
		return "", errors.New("no PDF links found on page")
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].href < candidates[j].href
	})

	best, err := base.Parse(candidates[0].href)
	if err != nil {
		return "", fmt.Errorf("resolve href %q: %w", candidates[0].href, err)
	}
	return best.String(), nil
}

func scorePDFCandidate(href, text string) int {
	h := strings.ToLower(href)
	x := strings.ToLower(text)

	score := 0
	if strings.Contains(x, "residential") || strings.Contains(x, "lt-a") {
		score += 5
	}
	if strings.Contains(x, "tariff") || strings.Contains(x, "rate") {
		score += 3
	}
	if strings.Contains(h, "tariff") || strings.Contains(h, "residential") {
		score += 3
	}
	if strings.Contains(h, "rate") {
		score += 2
	}
	if strings.Contains(x, "current") || strings.Contains(x, "latest") {
		score++
	}
	return score
}

func htmlUnescape(s string) string {
	return strings.NewReplacer(
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&#39;", "'",
	).Replace(s)
}

func writeFileAtomically(path string, r io.Reader) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".tariff-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
