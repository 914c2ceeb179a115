package cmd

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekruzvatanshoev/carval/pkg/carval/config"
	"github.com/nekruzvatanshoev/carval/pkg/carval/logger"
)

func TestRun_ShutsDownOnContextCancel(t *testing.T) {
	srv := &http.Server{Addr: "127.0.0.1:0", Handler: http.NotFoundHandler()}
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- run(ctx, srv, config.ServerConfig{ShutdownTimeout: time.Second}, logger.NewTestLogger(t))
	}()

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("run did not return after cancel")
	}
}

func TestRun_ReportsListenFailure(t *testing.T) {
	srv := &http.Server{Addr: "127.0.0.1:-1", Handler: http.NotFoundHandler()}

	err := run(context.Background(), srv, config.ServerConfig{ShutdownTimeout: time.Second}, logger.NewNoOpLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server failed")
}

func TestServeCmd_Flags(t *testing.T) {
	for flag := range flagKeys {
		assert.NotNil(t, ServeCmd.Flags().Lookup(flag), flag)
	}

	found := false
	for _, c := range RootCmd.Commands() {
		if c == ServeCmd {
			found = true
		}
	}
	assert.True(t, found)
}
