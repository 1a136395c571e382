package http

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/klauspost/compress/gzip"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lxr/gitkv/object"
	"github.com/lxr/gitkv/packfile"
	"github.com/lxr/gitkv/pktline"
	"github.com/lxr/gitkv/repository/mem"
)

const (
	idX = "ce013625030ba8dba906f756967f9e9ca394464a"
	idY = "4b825dc642cb6eb9a060e54bf8d69288fbee4904"
)

func newServer(t *testing.T, opts Options) (*Server, *httptest.Server) {
	t.Helper()
	if opts.Store == nil {
		st := mem.New(0)
		ctx := context.Background()
		require.NoError(t, st.Set(ctx, "octo/hello/refs/heads/main", idX))
		require.NoError(t, st.Set(ctx, "octo/hello/refs/heads/dev", idY))
		opts.Store = st
	}
	if opts.Logger == nil {
		opts.Logger = hclog.NewNullLogger()
	}
	s, err := New(opts)
	require.NoError(t, err)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, ts
}

func do(t *testing.T, method, url string, body io.Reader, header ...string) (*http.Response, string) {
	t.Helper()
	req, err := http.NewRequest(method, url, body)
	require.NoError(t, err)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(b)
}

func lsRefs(prefixes ...string) []byte {
	pkts := []pktline.Packet{pktline.Line("command=ls-refs"), pktline.DelimPkt, pktline.Line("peel")}
	for _, p := range prefixes {
		pkts = append(pkts, pktline.Line("ref-prefix "+p))
	}
	return pktline.Encode(append(pkts, pktline.FlushPkt)...)
}

func TestNewRequiresStore(t *testing.T) {
	_, err := New(Options{})
	assert.Error(t, err)
}

func TestAdvertiseUploadPack(t *testing.T) {
	_, ts := newServer(t, Options{})
	resp, body := do(t, "GET", ts.URL+"/octo/hello/info/refs?service=git-upload-pack", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/x-git-upload-pack-advertisement", resp.Header.Get("Content-Type"))
	assert.Equal(t, "no-cache", resp.Header.Get("Cache-Control"))
	assert.Equal(t, "001e# service=git-upload-pack\n0000000eversion 2\n000cls-refs\n000afetch\n0000", body)
}

func TestAdvertiseReceivePack(t *testing.T) {
	_, ts := newServer(t, Options{})
	resp, body := do(t, "GET", ts.URL+"/octo/hello/info/refs?service=git-receive-pack", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/x-git-receive-pack-advertisement", resp.Header.Get("Content-Type"))
	assert.Equal(t, "no-cache", resp.Header.Get("Cache-Control"))
	pkts, err := pktline.Decode([]byte(body))
	require.NoError(t, err)
	assert.Equal(t, []pktline.Packet{
		pktline.Line("# service=git-receive-pack"),
		pktline.FlushPkt,
		pktline.Line(idY + " refs/heads/dev\x00"),
		pktline.Line(idX + " refs/heads/main"),
		pktline.FlushPkt,
	}, pkts)

	resp, body = do(t, "GET", ts.URL+"/octo/empty/info/refs?service=git-receive-pack", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "001f# service=git-receive-pack\n0000"+
		"003e"+strings.Repeat("0", 40)+" capabilities^{}\x00\n0000", body)
}

func TestLegacyProtocol(t *testing.T) {
	_, ts := newServer(t, Options{})
	for _, q := range []string{"", "?service=git-upload-archive"} {
		resp, body := do(t, "GET", ts.URL+"/octo/hello/info/refs"+q, nil)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		assert.Equal(t, "Legacy protocol not allowed", body)
	}
}

func TestLsRefs(t *testing.T) {
	_, ts := newServer(t, Options{})
	resp, body := do(t, "POST", ts.URL+"/octo/hello/git-upload-pack", bytes.NewReader(lsRefs("refs/heads/main")))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/x-git-upload-pack-result", resp.Header.Get("Content-Type"))
	assert.Equal(t, "no-cache", resp.Header.Get("Cache-Control"))
	assert.Equal(t, "003d"+idX+" refs/heads/main\n0000", body)
}

func TestLsRefsGzip(t *testing.T) {
	_, ts := newServer(t, Options{})
	buf := new(bytes.Buffer)
	zw := gzip.NewWriter(buf)
	_, err := zw.Write(lsRefs("refs/heads/"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	resp, body := do(t, "POST", ts.URL+"/octo/hello/git-upload-pack", buf, "Content-Encoding", "gzip")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	pkts, err := pktline.Decode([]byte(body))
	require.NoError(t, err)
	assert.Len(t, pkts, 3)

	resp, _ = do(t, "POST", ts.URL+"/octo/hello/git-upload-pack", strings.NewReader("not gzip"), "Content-Encoding", "gzip")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUnsupportedCommand(t *testing.T) {
	_, ts := newServer(t, Options{})
	fetch := pktline.Encode(pktline.Line("command=fetch"), pktline.DelimPkt, pktline.Line("done"), pktline.FlushPkt)
	resp, body := do(t, "POST", ts.URL+"/octo/hello/git-upload-pack", bytes.NewReader(fetch))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "application/x-git-upload-pack-result", resp.Header.Get("Content-Type"))
	assert.Empty(t, body)
}

func TestServerErrors(t *testing.T) {
	_, ts := newServer(t, Options{})
	unknown := pktline.Encode(pktline.Line("command=ls-refs"), pktline.DelimPkt, pktline.Line("unborn"), pktline.FlushPkt)
	resp, body := do(t, "POST", ts.URL+"/octo/hello/git-upload-pack", bytes.NewReader(unknown))
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Contains(t, body, "unknown argument")

	resp, body = do(t, "POST", ts.URL+"/octo/hello/git-upload-pack", strings.NewReader("0003"))
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Contains(t, body, "reserved")
}

func TestBodyTooLarge(t *testing.T) {
	_, ts := newServer(t, Options{MaxBodyBytes: 16})
	resp, _ := do(t, "POST", ts.URL+"/octo/hello/git-upload-pack", bytes.NewReader(lsRefs("refs/heads/")))
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
}

func TestNotFound(t *testing.T) {
	_, ts := newServer(t, Options{})
	for _, tt := range []struct{ method, path string }{
		{"GET", "/"},
		{"GET", "/octo"},
		{"GET", "/octo/hello"},
		{"GET", "/octo/hello/HEAD"},
		{"GET", "/octo/hello/git-upload-pack"},
		{"POST", "/octo/hello/info/refs"},
		{"GET", "/octo/../info/refs?service=git-upload-pack"},
	} {
		resp, body := do(t, tt.method, ts.URL+tt.path, nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode, "%s %s", tt.method, tt.path)
		assert.Equal(t, "Not Found.", body, "%s %s", tt.method, tt.path)
	}
}

func buildPack(t *testing.T, contents ...string) []byte {
	t.Helper()
	buf := new(bytes.Buffer)
	w, err := packfile.NewWriter(buf, int64(len(contents)))
	require.NoError(t, err)
	for _, c := range contents {
		require.NoError(t, w.Write(object.TypeBlob, []byte(c)))
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestReceivePack(t *testing.T) {
	s, ts := newServer(t, Options{})
	body := pktline.Encode(
		pktline.Line(idX+" "+idY+" refs/heads/main\x00report-status"),
		pktline.FlushPkt,
		pktline.TailOf(buildPack(t, "hello\n", "abc", "abc")),
	)
	resp, out := do(t, "POST", ts.URL+"/octo/hello/git-receive-pack", bytes.NewReader(body))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/x-git-upload-pack-result", resp.Header.Get("Content-Type"))
	assert.Equal(t, "0000", out)
	assert.Equal(t, 2.0, testutil.ToFloat64(s.metrics.objects.WithLabelValues("blob")))

	// nothing was stored
	refs, _ := do(t, "GET", ts.URL+"/octo/hello/info/refs?service=git-receive-pack", nil)
	assert.Equal(t, http.StatusOK, refs.StatusCode)

	bad := buildPack(t, "abc")
	bad[7] = 9
	resp, out = do(t, "POST", ts.URL+"/octo/hello/git-receive-pack",
		bytes.NewReader(pktline.Encode(pktline.FlushPkt, pktline.TailOf(bad))))
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Contains(t, out, "unsupported version")
	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.unpackFailures))
}

func TestRequestMetrics(t *testing.T) {
	s, ts := newServer(t, Options{})
	do(t, "GET", ts.URL+"/octo/hello/info/refs?service=git-upload-pack", nil)
	do(t, "GET", ts.URL+"/nowhere", nil)
	assert.Equal(t, 1.0, testutil.ToFloat64(
		s.metrics.requests.WithLabelValues("/{owner}/{repo}/info/refs", "GET", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(
		s.metrics.requests.WithLabelValues("unmatched", "GET", "404")))

	n, err := testutil.GatherAndCount(s.Registry(), "gitkv_http_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestCORS(t *testing.T) {
	_, ts := newServer(t, Options{CORSOrigins: []string{"https://example.com"}})
	resp, _ := do(t, "OPTIONS", ts.URL+"/octo/hello/git-upload-pack", nil,
		"Origin", "https://example.com",
		"Access-Control-Request-Method", "POST")
	assert.Equal(t, "https://example.com", resp.Header.Get("Access-Control-Allow-Origin"))

	resp, _ = do(t, "GET", ts.URL+"/octo/hello/info/refs?service=git-upload-pack", nil,
		"Origin", "https://evil.example")
	assert.Empty(t, resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestRequestLog(t *testing.T) {
	logs := new(bytes.Buffer)
	_, ts := newServer(t, Options{Logger: hclog.New(&hclog.LoggerOptions{Output: logs})})
	do(t, "GET", ts.URL+"/octo/hello/info/refs?service=git-upload-pack", nil)
	assert.Contains(t, logs.String(), "request: method=GET path=/octo/hello/info/refs status=200")
}

func TestErrorString(t *testing.T) {
	assert.Equal(t, "404 Not Found", (&Error{Status: 404}).Error())
	assert.Equal(t, "403 Legacy protocol not allowed", errLegacyProtocol.Error())
}
