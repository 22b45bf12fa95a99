package cli

import (
	"bytes"
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/lazypower/memoria/internal/auth"
	"github.com/lazypower/memoria/internal/client"
	"github.com/lazypower/memoria/internal/server"
	"github.com/lazypower/memoria/internal/store"
)

func TestPrintVersion(t *testing.T) {
	var out bytes.Buffer
	if err := printVersion(context.Background(), &out, nil); err != nil {
		t.Fatalf("printVersion: %v", err)
	}
	if !strings.HasPrefix(out.String(), "memoria "+Version) || strings.Contains(out.String(), "server") {
		t.Errorf("local output = %q", out.String())
	}
}

func TestPrintVersionRemote(t *testing.T) {
	db, err := store.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	defer db.Close()

	ts := httptest.NewServer(server.New(db, auth.NewIssuer("test-secret", time.Hour), VersionString()))
	defer ts.Close()

	var out bytes.Buffer
	if err := printVersion(context.Background(), &out, client.New(ts.URL, nil, time.Second)); err != nil {
		t.Fatalf("printVersion: %v", err)
	}
	if !strings.Contains(out.String(), "server "+VersionString()) {
		t.Errorf("output = %q, want server line", out.String())
	}

	down := client.New("http://127.0.0.1:1", nil, 100*time.Millisecond)
	if err := printVersion(context.Background(), &out, down); err == nil {
		t.Error("printVersion against unreachable server = nil error")
	}
}
