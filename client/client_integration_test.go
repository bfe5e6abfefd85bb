// client_integration_test.go
//go:build integration
// +build integration

package client

import (
	"context"
	"net/http"
	"testing"
)

var c = Client{
	Addr:   "http://localhost:3333",
	Client: http.Client{},
}

func TestPing(t *testing.T) {
	if s, err := c.Ping(); err != nil || s != "pong" {
		t.Fail()
	}
}

func TestListArticles(t *testing.T) {
	if _, err := c.ListArticles(context.Background(), 1, ""); err != nil {
		t.Fatal(err)
	}
}
