/* Copyright © 2026 The pugbot Authors. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package gameserver

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/tf2pug/pugbot/internal"
)

// StatusProbe scrapes the hosting panel's per-server status page to tell
// whether anyone is currently playing on a server. The panel renders a row
// per server with a td.players cell formatted "N/24".
type StatusProbe struct {
	httpClient *http.Client
	baseURL    string
}

// NewStatusProbe builds a probe against the panel page at baseURL. The
// provided client is typically the cached one from internal/httpcache so
// repeated ticks don't hammer the panel.
func NewStatusProbe(httpClient *http.Client, baseURL string) *StatusProbe {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &StatusProbe{
		httpClient: httpClient,
		baseURL:    baseURL,
	}
}

// Busy reports whether srv has one or more players on it according to the
// panel.
func (sp *StatusProbe) Busy(ctx context.Context, srv Server) (bool, error) {
	doc, err := sp.fetchDoc(ctx)
	if err != nil {
		return false, err
	}

	hostPort := fmt.Sprintf("%v:%v", srv.Addr, srv.Port)

	var players int
	var found bool
	doc.Find("tr.server").EachWithBreak(func(_ int, row *goquery.Selection) bool {
		if strings.TrimSpace(row.Find("td.address").Text()) != hostPort {
			return true
		}
		found = true
		players = parsePlayerCount(row.Find("td.players").Text())
		return false
	})

	if !found {
		return false, fmt.Errorf("gameserver: %v not present on status page", hostPort)
	}

	return players > 0, nil
}

// parsePlayerCount extracts N from "N/24" style cells; malformed cells
// count as empty.
func parsePlayerCount(cell string) int {
	cell = strings.TrimSpace(cell)
	if idx := strings.Index(cell, "/"); idx != -1 {
		cell = cell[:idx]
	}

	n, err := strconv.Atoi(strings.TrimSpace(cell))
	if err != nil {
		return 0
	}

	return n
}

// fetchDoc gets the status HTML document using the configured User-Agent.
func (sp *StatusProbe) fetchDoc(ctx context.Context) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", sp.baseURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", internal.UserAgent)

	resp, err := sp.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d fetching %s", resp.StatusCode, sp.baseURL)
	}

	return goquery.NewDocumentFromReader(resp.Body)
}
