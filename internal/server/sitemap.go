package server

import (
	"encoding/xml"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const sitemapProtocolMaxURLs = 50000
const DefaultSitemapChunkSize = 10000

type sitemapIndexXML struct {
	XMLName xml.Name        `xml:"sitemapindex"`
	Xmlns   string          `xml:"xmlns,attr"`
	Items   []sitemapRefXML `xml:"sitemap"`
}

type sitemapRefXML struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

type urlSetXML struct {
	XMLName xml.Name     `xml:"urlset"`
	Xmlns   string       `xml:"xmlns,attr"`
	Items   []urlItemXML `xml:"url"`
}

type urlItemXML struct {
	Loc string `xml:"loc"`
}

func (s *Server) sitemapIndex(w http.ResponseWriter, r *http.Request) {
	total, err := s.games.Count(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "sitemap count", "err", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeXML(w, buildSitemapIndexXML(requestBaseURL(r), total, s.chunkSize))
}

func (s *Server) sitemapPage(w http.ResponseWriter, r *http.Request) {
	page, ok := parseSitemapPage(r.PathValue("page"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	total, err := s.games.Count(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "sitemap count", "err", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	// page 1 always exists, the index lists it even for an empty table
	pageCount := max((total+s.chunkSize-1)/s.chunkSize, 1)
	if page > pageCount {
		http.NotFound(w, r)
		return
	}
	ids, err := s.games.IDs(r.Context(), s.chunkSize, (page-1)*s.chunkSize)
	if err != nil {
		slog.ErrorContext(r.Context(), "sitemap page", "page", page, "err", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeXML(w, buildGameURLSetXML(requestBaseURL(r), ids))
}

func writeXML(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	_, _ = w.Write([]byte(xml.Header))
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(v); err != nil {
		slog.Error("xml encode", "err", err)
	}
}

func clampChunkSize(n int) int {
	if n <= 0 {
		return DefaultSitemapChunkSize
	}
	return min(n, sitemapProtocolMaxURLs)
}

func buildSitemapIndexXML(baseURL string, total, chunkSize int) sitemapIndexXML {
	pageCount := max((total+chunkSize-1)/chunkSize, 1)
	now := time.Now().UTC().Format("2006-01-02")
	items := make([]sitemapRefXML, 0, pageCount)
	for i := 1; i <= pageCount; i++ {
		items = append(items, sitemapRefXML{
			Loc:     fmt.Sprintf("%s/sitemaps/games-%d.xml", baseURL, i),
			LastMod: now,
		})
	}
	return sitemapIndexXML{
		Xmlns: "http://www.sitemaps.org/schemas/sitemap/0.9",
		Items: items,
	}
}

func buildGameURLSetXML(baseURL string, ids []int64) urlSetXML {
	items := make([]urlItemXML, 0, len(ids))
	for _, id := range ids {
		items = append(items, urlItemXML{
			Loc: fmt.Sprintf("%s/games/%d", baseURL, id),
		})
	}
	return urlSetXML{
		Xmlns: "http://www.sitemaps.org/schemas/sitemap/0.9",
		Items: items,
	}
}

func requestBaseURL(r *http.Request) string {
	scheme := "http"
	if proto := strings.TrimSpace(r.Header.Get("X-Forwarded-Proto")); proto != "" {
		if i := strings.Index(proto, ","); i >= 0 {
			proto = proto[:i]
		}
		scheme = strings.TrimSpace(proto)
	} else if r.TLS != nil {
		scheme = "https"
	}
	host := r.Host
	if host == "" {
		host = "127.0.0.1:8080"
	}
	return scheme + "://" + host
}

// parseSitemapPage accepts "games-<n>.xml" with n >= 1.
func parseSitemapPage(name string) (int, bool) {
	const prefix = "games-"
	const suffix = ".xml"
	if !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, suffix) {
		return 0, false
	}
	raw := strings.TrimSuffix(strings.TrimPrefix(name, prefix), suffix)
	for _, ch := range raw {
		if ch < '0' || ch > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}
