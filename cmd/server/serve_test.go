package main

import (
	"net/http"
	"testing"
	"time"

	"github.com/BerylCAtieno/resume-analyzer-api/internal/config"

	"github.com/stretchr/testify/assert"
)

func TestUploadReadTimeout(t *testing.T) {
	tests := []struct {
		name        string
		maxFileSize int64
		want        time.Duration
	}{
		{name: "no limit configured", maxFileSize: 0, want: 30 * time.Second},
		{name: "negative", maxFileSize: -1, want: 30 * time.Second},
		{name: "1 MiB", maxFileSize: 1 << 20, want: 62 * time.Second},
		{name: "default 10 MiB", maxFileSize: 10 << 20, want: 350 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, uploadReadTimeout(tt.maxFileSize))
		})
	}
}

func TestNewHTTPServer_Timeouts(t *testing.T) {
	cfg := &config.Config{
		Port:            "8080",
		MaxFileSize:     10 << 20,
		AnalysisTimeout: 45 * time.Second,
	}

	srv := newHTTPServer(cfg, http.NotFoundHandler())

	assert.Equal(t, ":8080", srv.Addr)
	assert.Equal(t, 10*time.Second, srv.ReadHeaderTimeout)

	// A 10 MiB upload over a 256 kbit/s link takes about 330s.
	slowUpload := time.Duration(float64(10<<20) / (256_000 / 8) * float64(time.Second))
	assert.Greater(t, srv.ReadTimeout, slowUpload)
	assert.Greater(t, srv.WriteTimeout, srv.ReadTimeout+cfg.AnalysisTimeout)
}
