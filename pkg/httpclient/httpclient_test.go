package httpclient_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/JaimeStill/pashuvision/pkg/httpclient"
)

func TestDoJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/echo":
			if r.Header.Get("Authorization") != "Bearer secret" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			var in map[string]string
			json.NewDecoder(r.Body).Decode(&in)
			json.NewEncoder(w).Encode(map[string]string{"got": in["name"], "source": r.Header.Get("X-Source")})
		case "/empty":
			w.WriteHeader(http.StatusNoContent)
		default:
			http.Error(w, "nope", http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c, err := httpclient.New(srv.URL+"/", time.Second)
	if err != nil {
		t.Fatal(err)
	}
	c.Token = "secret"
	ctx := context.Background()

	var out map[string]string
	if err := c.DoJSON(ctx, "POST", "echo", map[string]string{"X-Source": "t1"}, map[string]string{"name": "Gir"}, &out); err != nil {
		t.Fatalf("echo: %v", err)
	}
	if out["got"] != "Gir" || out["source"] != "t1" {
		t.Errorf("echo: got %v", out)
	}

	if err := c.DoJSON(ctx, "GET", "/empty", nil, nil, &out); err != nil {
		t.Errorf("empty body: %v", err)
	}

	err = c.DoJSON(ctx, "GET", "/missing", nil, nil, nil)
	if httpclient.StatusCode(err) != http.StatusNotFound {
		t.Errorf("missing: got %v", err)
	}

	if _, err := c.Get(ctx, srv.URL+"/missing"); httpclient.StatusCode(err) != http.StatusNotFound {
		t.Errorf("get missing: got %v", err)
	}
}

func TestNew(t *testing.T) {
	if _, err := httpclient.New("not a url", 0); err == nil {
		t.Error("expected error for invalid base url")
	}

	c, err := httpclient.New("", 0)
	if err != nil {
		t.Fatal(err)
	}
	if c.HTTP.Timeout != httpclient.DefaultTimeout {
		t.Errorf("timeout: got %v", c.HTTP.Timeout)
	}
	if err := c.DoJSON(context.Background(), "GET", "/relative", nil, nil, nil); err == nil {
		t.Error("expected error for relative path without base url")
	}
}
