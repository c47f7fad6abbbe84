package main

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync/atomic"
	"testing"
)

// fakeGitHub serves one release per repository and its linux assets.
type fakeGitHub struct {
	*httptest.Server
	tag       string
	content   []byte
	checksum  string
	downloads atomic.Int32
	apiCalls  atomic.Int32
}

func newFakeGitHub(t *testing.T, tag string, content []byte) *fakeGitHub {
	t.Helper()
	sum := sha256.Sum256(content)
	f := &fakeGitHub{tag: tag, content: content, checksum: hex.EncodeToString(sum[:])}

	mux := http.NewServeMux()
	mux.HandleFunc("/repos/carvel-dev/{repo}/releases", func(w http.ResponseWriter, r *http.Request) {
		f.apiCalls.Add(1)
		tool := r.PathValue("repo")
		if tool == "kapp-controller" {
			tool = "kctrl"
		}
		asset := tool + "-linux-amd64"
		release := map[string]any{
			"tag_name": f.tag,
			"name":     f.tag,
			"body":     fmt.Sprintf("## Checksums\n```\n%s  ./%s\n```\n", f.checksum, asset),
			"assets": []map[string]string{{
				"name":                 asset,
				"browser_download_url": f.URL + "/download/" + asset,
			}},
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode([]any{release})
	})
	mux.HandleFunc("/download/{asset}", func(w http.ResponseWriter, r *http.Request) {
		f.downloads.Add(1)
		_, _ = w.Write(f.content)
	})

	f.Server = httptest.NewServer(mux)
	t.Cleanup(f.Close)
	return f
}

// runCLI executes the root command with args and a fixed environment.
func runCLI(t *testing.T, env map[string]string, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	getenv := func(key string) string { return env[key] }

	cmd := newRootCmd(&stdout, &stderr, getenv)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return strings.Split(strings.TrimSpace(string(data)), "\n")
}
