// Package rna3dhub is a thin client for the RNA 3D Hub non-redundant lists.
package rna3dhub

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/safing/biodb/fetch"
	"github.com/safing/biodb/table"
)

// Defaults.
const (
	DefaultBaseURL    = "http://rna.bgsu.edu/rna3dhub/nrlist/download"
	DefaultRelease    = "current"
	DefaultResolution = 2.5
)

// Columns of the cluster table.
const (
	ColumnClusterID = "cluster-id"
	ColumnPDBIDs    = "pdb-ids"
)

// Client fetches non-redundant lists.
type Client struct {
	Fetcher fetch.Fetcher
	BaseURL string
	Release string
}

// NewClient returns a client for the current release.
func NewClient(fetcher fetch.Fetcher) *Client {
	return &Client{
		Fetcher: fetcher,
		BaseURL: DefaultBaseURL,
		Release: DefaultRelease,
	}
}

// Clusters returns the equivalence classes of the non-redundant list at the
// given resolution threshold in Ångström. The pdb-ids cell holds the space
// separated members of the class.
func (c *Client) Clusters(ctx context.Context, resolution float64) (*table.Table, error) {
	release := c.Release
	if release == "" {
		release = DefaultRelease
	}
	u, err := fetch.JoinURL(c.BaseURL, release, formatResolution(resolution)+"A", "csv")
	if err != nil {
		return nil, err
	}

	data, err := c.Fetcher.Fetch(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("failed to get clusters of release %s: %w", release, err)
	}

	return parseClusters(string(data)), nil
}

func parseClusters(content string) *table.Table {
	t := table.New(ColumnClusterID, ColumnPDBIDs)
	for _, line := range strings.Split(content, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		tokens := strings.Split(line, ",")
		clusterID := strings.ReplaceAll(tokens[0], `"`, "")
		pdbIDs := strings.ReplaceAll(strings.Join(tokens[1:], " "), `"`, "")
		_ = t.Append(clusterID, pdbIDs) // always two columns
	}
	return t
}

// formatResolution formats like "2.5", "4.0" or "20.0".
func formatResolution(resolution float64) string {
	if resolution <= 0 {
		resolution = DefaultResolution
	}
	s := strconv.FormatFloat(resolution, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
