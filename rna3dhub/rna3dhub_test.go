package rna3dhub

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/safing/biodb/fetch"
)

const clustersCSV = `"NR_2.5_00162.1","1FFK|1|0,1JJ2|1|0"
"NR_2.5_56726.1","4V9F|1|0"

`

func TestClusters(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rna3dhub/nrlist/download/3.300/2.5A/csv", r.URL.Path)
		_, _ = io.WriteString(w, clustersCSV)
	}))
	defer srv.Close()

	c := NewClient(fetch.NewHTTPFetcher("rna3dhub", "biodb-test"))
	c.BaseURL = srv.URL + "/rna3dhub/nrlist/download"
	c.Release = "3.300"

	clusters, err := c.Clusters(context.Background(), 2.5)
	require.NoError(t, err)
	assert.Equal(t, []string{ColumnClusterID, ColumnPDBIDs}, clusters.Columns)
	assert.Equal(t, [][]string{
		{"NR_2.5_00162.1", "1FFK|1|0 1JJ2|1|0"},
		{"NR_2.5_56726.1", "4V9F|1|0"},
	}, clusters.Rows)
}

func TestFormatResolution(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "2.5", formatResolution(2.5))
	assert.Equal(t, "4.0", formatResolution(4))
	assert.Equal(t, "20.0", formatResolution(20))
	assert.Equal(t, "2.5", formatResolution(0))
}
