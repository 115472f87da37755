// ABOUTME: Tests for the REST transport helpers
// ABOUTME: Auth header, error mapping and multipart encoding
package client

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRequestCarriesAPIKey(t *testing.T) {
	var gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("xi-api-key")
		w.Write([]byte("{}"))
	}))
	defer srv.Close()

	c := New("secret-key", WithBaseURL(srv.URL))
	if _, err := c.get(context.Background(), "/anything"); err != nil {
		t.Fatalf("get: %v", err)
	}
	if gotKey != "secret-key" {
		t.Errorf("xi-api-key = %q, want %q", gotKey, "secret-key")
	}
}

func TestNon2xxBecomesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail":"invalid key"}`))
	}))
	defer srv.Close()

	c := New("bad", WithBaseURL(srv.URL))
	_, err := c.get(context.Background(), "/voices")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("get = %v, want *APIError", err)
	}
	if apiErr.Status != http.StatusUnauthorized {
		t.Errorf("Status = %d, want 401", apiErr.Status)
	}
	if !strings.Contains(apiErr.Body, "invalid key") {
		t.Errorf("Body = %q, want the response text", apiErr.Body)
	}
}

func TestPathGetsLeadingSlash(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte("{}"))
	}))
	defer srv.Close()

	c := New("k", WithBaseURL(srv.URL))
	if _, err := c.get(context.Background(), "voices"); err != nil {
		t.Fatalf("get: %v", err)
	}
	if gotPath != "/voices" {
		t.Errorf("path = %q, want /voices", gotPath)
	}
}

func TestPostMultipartEncodesFields(t *testing.T) {
	var gotName, gotFile string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("ParseMultipartForm: %v", err)
			return
		}
		gotName = r.FormValue("name")
		f, hdr, err := r.FormFile("files")
		if err != nil {
			t.Errorf("FormFile: %v", err)
			return
		}
		defer f.Close()
		data, _ := io.ReadAll(f)
		gotFile = hdr.Filename + ":" + string(data)
	}))
	defer srv.Close()

	c := New("k", WithBaseURL(srv.URL))
	err := c.postMultipart(context.Background(), "/voices/v1/edit",
		map[string]string{"name": "Narrator"},
		map[string][]byte{"sample.wav": []byte("abc")})
	if err != nil {
		t.Fatalf("postMultipart: %v", err)
	}
	if gotName != "Narrator" {
		t.Errorf("name field = %q", gotName)
	}
	if gotFile != "sample.wav:abc" {
		t.Errorf("file part = %q", gotFile)
	}
}

func TestHTTPChunkStreamSlicesBody(t *testing.T) {
	body := io.NopCloser(strings.NewReader("0123456789"))
	s := NewHTTPChunkStream(body, 4)

	var total []byte
	for {
		chunk, err := s.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if len(chunk) > 4 {
			t.Fatalf("chunk of %d bytes exceeds the chunk size", len(chunk))
		}
		total = append(total, chunk...)
	}
	if string(total) != "0123456789" {
		t.Fatalf("reassembled %q", total)
	}
}
