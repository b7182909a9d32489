package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ghodss/yaml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/safing/biodb/rfam"
	"github.com/safing/biodb/stockholm"
	"github.com/safing/biodb/table"
)

type fakeRfam struct {
	records map[string]string
}

func (f *fakeRfam) Record(acc string, kind rfam.Kind) ([]byte, error) {
	if !rfam.ValidAccession(acc) {
		return nil, fmt.Errorf("%w: %q", rfam.ErrInvalidAccession, acc)
	}
	content, ok := f.records[string(kind)+"/"+acc]
	if !ok {
		return nil, fmt.Errorf("%w: %s", rfam.ErrRecordNotFound, acc)
	}
	if kind.IsAlignment() {
		if err := stockholm.Check(acc, "fake/"+acc, []byte(content)); err != nil {
			return nil, err
		}
	}
	return []byte(content), nil
}

func (f *fakeRfam) Accessions(kind rfam.Kind) ([]string, error) {
	var accessions []string
	for key := range f.records {
		if acc, ok := strings.CutPrefix(key, string(kind)+"/"); ok {
			accessions = append(accessions, acc)
		}
	}
	return accessions, nil
}

func (f *fakeRfam) CachedFamiliesDetails(_ context.Context) (*table.Table, error) {
	t := table.New("accession", "id")
	if err := t.Append("RF00001", "5S_rRNA"); err != nil {
		return nil, err
	}
	return t, nil
}

func testServer(t *testing.T) *httptest.Server {
	t.Helper()

	s, err := NewServer("")
	require.NoError(t, err)
	require.NoError(t, s.RegisterRfamEndpoints(&fakeRfam{records: map[string]string{
		"seed/RF00001": "# STOCKHOLM 1.0\n#=GF AC RF00001\nseqA/1-4 AC-U\n//\n",
		"full/RF00002": "# STOCKHOLM 1.0\n#=GF AC RF00002\nseqA/1-4 AC-U\n",
		"cm/RF00001":   "INFERNAL1/a\nNAME 5S_rRNA\nACC RF00001\n//\n",
	}}))

	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return srv
}

func get(t *testing.T, rawURL, accept string) (int, string, string) {
	t.Helper()

	req, err := http.NewRequest(http.MethodGet, rawURL, nil)
	require.NoError(t, err)
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, resp.Header.Get("Content-Type"), string(body)
}

func TestPing(t *testing.T) {
	t.Parallel()

	srv := testServer(t)
	code, contentType, body := get(t, srv.URL+"/api/v1/ping", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "text/plain; charset=utf-8", contentType)
	assert.Equal(t, "Pong.\n", body)
}

func TestListEndpoints(t *testing.T) {
	t.Parallel()

	srv := testServer(t)

	code, contentType, body := get(t, srv.URL+"/api/v1/endpoints", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "application/json", contentType)
	var infos []EndpointInfo
	require.NoError(t, json.Unmarshal([]byte(body), &infos))
	paths := make([]string, 0, len(infos))
	for _, info := range infos {
		paths = append(paths, info.Path)
	}
	assert.Contains(t, paths, "/api/v1/ping")
	assert.Contains(t, paths, "/api/v1/rfam/families")

	code, contentType, body = get(t, srv.URL+"/api/v1/endpoints", "application/yaml")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "application/yaml", contentType)
	infos = nil
	require.NoError(t, yaml.Unmarshal([]byte(body), &infos))
	assert.Len(t, infos, len(paths))
}

func TestRfamRecords(t *testing.T) {
	t.Parallel()

	srv := testServer(t)
	base := srv.URL + "/api/v1/rfam/"

	code, _, body := get(t, base+"seed/RF00001", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "# STOCKHOLM 1.0\n#=GF AC RF00001\nseqA/1-4 AC-U\n//\n", body)

	code, _, body = get(t, base+"cm/RF00001", "")
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, strings.HasPrefix(body, "INFERNAL"))

	code, _, body = get(t, base+"seed/RF00001/fasta", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, ">seqA/1-4\nAC-U\n", body)

	code, _, _ = get(t, base+"seed/RF00404/fasta", "")
	assert.Equal(t, http.StatusNotFound, code)

	code, _, body = get(t, base+"full/RF00002/fasta", "")
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Contains(t, body, "fake/RF00002")

	code, _, _ = get(t, base+"seed/RF00404", "")
	assert.Equal(t, http.StatusNotFound, code)

	code, _, _ = get(t, base+"seed/bogus", "")
	assert.Equal(t, http.StatusBadRequest, code)

	code, _, body = get(t, base+"full/RF00002", "")
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Contains(t, body, "RF00002")

	code, _, _ = get(t, base+"hmm/RF00001", "")
	assert.Equal(t, http.StatusNotFound, code)

	code, _, body = get(t, base+"cm", "")
	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `["RF00001"]`, body)
}

func TestRfamFamilies(t *testing.T) {
	t.Parallel()

	srv := testServer(t)
	code, _, body := get(t, srv.URL+"/api/v1/rfam/families", "application/json")
	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `[{"accession":"RF00001","id":"5S_rRNA"}]`, body)
}

func TestMetricsRoute(t *testing.T) {
	t.Parallel()

	srv := testServer(t)
	code, _, body := get(t, srv.URL+"/metrics", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "biodb_split_records_total")
}

func TestRegisterEndpoint(t *testing.T) {
	t.Parallel()

	s, err := NewServer("")
	require.NoError(t, err)

	err = s.RegisterEndpoint(Endpoint{Path: "ping", DataFunc: ping})
	assert.ErrorIs(t, err, ErrAlreadyRegistered)

	err = s.RegisterEndpoint(Endpoint{Path: "both", DataFunc: ping, StructFunc: s.listEndpoints})
	assert.ErrorIs(t, err, ErrInvalidEndpoint)

	err = s.RegisterEndpoint(Endpoint{Path: " ", DataFunc: ping})
	assert.ErrorIs(t, err, ErrInvalidEndpoint)
}

func TestServeListener(t *testing.T) {
	t.Parallel()

	s, err := NewServer("")
	require.NoError(t, err)
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- s.ServeListener(ctx, listener)
	}()

	assert.Eventually(t, s.Running, time.Second, 10*time.Millisecond)
	code, _, _ := get(t, "http://"+listener.Addr().String()+"/api/v1/ping", "")
	assert.Equal(t, http.StatusOK, code)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
	assert.False(t, s.Running())
}
