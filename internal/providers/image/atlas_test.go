package image

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestAtlasGenerate(t *testing.T) {
	var gotPayload atlasGeneratePayload
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/model/generateImage" {
			t.Errorf("path = %q", r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotPayload); err != nil {
			t.Fatalf("decode payload: %v", err)
		}
		_, _ = w.Write([]byte(`{"data":{"outputs":["https://cdn.example.com/out.png"]}}`))
	}))
	defer srv.Close()

	a := NewAtlas(AtlasOptions{BaseURL: srv.URL, Model: "test/model"})
	url, err := a.Generate(context.Background(), GenerateRequest{APIKey: "key-1", Prompt: "draw"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if url != "https://cdn.example.com/out.png" {
		t.Errorf("url = %q", url)
	}
	if gotAuth != "Bearer key-1" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotPayload.Model != "test/model" || gotPayload.Prompt != "draw" {
		t.Errorf("payload = %+v", gotPayload)
	}
	if gotPayload.OutputFormat != "png" || gotPayload.Resolution != "1k" || !gotPayload.EnableSyncMode {
		t.Errorf("payload defaults = %+v", gotPayload)
	}
}

func TestAtlasGenerateRequiresKey(t *testing.T) {
	a := NewAtlas(AtlasOptions{})
	if _, err := a.Generate(context.Background(), GenerateRequest{Prompt: "draw"}); err == nil {
		t.Fatal("expected error for missing key")
	}
}

func TestAtlasGenerateErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusPaymentRequired)
	}))
	defer srv.Close()

	a := NewAtlas(AtlasOptions{BaseURL: srv.URL})
	_, err := a.Generate(context.Background(), GenerateRequest{APIKey: "k", Prompt: "p"})
	if err == nil || !strings.Contains(err.Error(), "402") {
		t.Errorf("err = %v, want status 402 mention", err)
	}
}

func TestAtlasGenerateEmptyOutputs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"outputs":[]}}`))
	}))
	defer srv.Close()

	a := NewAtlas(AtlasOptions{BaseURL: srv.URL})
	if _, err := a.Generate(context.Background(), GenerateRequest{APIKey: "k", Prompt: "p"}); err == nil {
		t.Fatal("expected error for empty outputs")
	}
}

func TestAtlasDownload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("png-bytes"))
	}))
	defer srv.Close()

	a := NewAtlas(AtlasOptions{})
	data, err := a.Download(context.Background(), srv.URL+"/img.png")
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	if string(data) != "png-bytes" {
		t.Errorf("data = %q", data)
	}
}
