package tts

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestSynthesizeWritesAudioFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/audio/speech", r.URL.Path)
		w.Write([]byte("RIFF fake audio"))
	}))
	defer srv.Close()

	client := NewClient("test-key", "tts-1-hd", time.Minute, zaptest.NewLogger(t), WithBaseURL(srv.URL))
	outPath := filepath.Join(t.TempDir(), "episode_1.wav")

	completed, err := client.Synthesize(context.Background(), "the script", "alloy", outPath)
	require.NoError(t, err)
	assert.True(t, completed)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Equal(t, "RIFF fake audio", string(data))
}

func TestSynthesizeTimeoutIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	client := NewClient("test-key", "tts-1-hd", 20*time.Millisecond, zaptest.NewLogger(t), WithBaseURL(srv.URL))
	outPath := filepath.Join(t.TempDir(), "episode_1.wav")

	completed, err := client.Synthesize(context.Background(), "the script", "alloy", outPath)
	require.NoError(t, err)
	assert.False(t, completed)
}

func TestSynthesizeServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error": {"message": "invalid voice"}}`)
	}))
	defer srv.Close()

	client := NewClient("test-key", "tts-1-hd", time.Minute, zaptest.NewLogger(t), WithBaseURL(srv.URL))
	outPath := filepath.Join(t.TempDir(), "episode_1.wav")

	completed, err := client.Synthesize(context.Background(), "the script", "no-such-voice", outPath)
	require.Error(t, err)
	assert.False(t, completed)
	assert.NoFileExists(t, outPath)
}
