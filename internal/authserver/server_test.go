package authserver_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/jmerrifield20/beams/internal/authserver"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestServe_stopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- authserver.Serve(ctx, "127.0.0.1:0", http.NotFoundHandler(), zap.NewNop())
	}()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}

func TestServe_listenError(t *testing.T) {
	err := authserver.Serve(context.Background(), "invalid-address", http.NotFoundHandler(), zap.NewNop())
	assert.Error(t, err)
}
