package sensitivedata

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const writerSecret = "s3cr3t-deploy-token"

func newTestWriter(t *testing.T) (*Writer, *bytes.Buffer) {
	t.Helper()
	provider := NewProvider()
	provider.Track(writerSecret)
	r, err := NewWithProvider(Config{DisableGitleaks: true}, provider)
	require.NoError(t, err)

	var buf bytes.Buffer
	return NewWriter(&buf, r), &buf
}

func TestWriter_RedactsCompleteLines(t *testing.T) {
	w, buf := newTestWriter(t)

	n, err := w.Write([]byte("uploading with " + writerSecret + "\nsecond line\n"))
	require.NoError(t, err)
	assert.Equal(t, len("uploading with "+writerSecret+"\nsecond line\n"), n, "reports input length")

	assert.Equal(t, "uploading with [REDACTED]\nsecond line\n", buf.String())
}

func TestWriter_SecretSplitAcrossWrites(t *testing.T) {
	w, buf := newTestWriter(t)

	_, err := w.Write([]byte("token=s3cr3t-"))
	require.NoError(t, err)
	assert.Empty(t, buf.String(), "partial line is held back")

	_, err = w.Write([]byte("deploy-token\n"))
	require.NoError(t, err)
	assert.Equal(t, "token=[REDACTED]\n", buf.String())
}

func TestWriter_FlushPartialLine(t *testing.T) {
	w, buf := newTestWriter(t)

	_, err := w.Write([]byte("line one\ndone " + writerSecret))
	require.NoError(t, err)
	assert.Equal(t, "line one\n", buf.String())

	require.NoError(t, w.Flush())
	assert.Equal(t, "line one\ndone [REDACTED]", buf.String())

	require.NoError(t, w.Flush(), "flushing twice is a no-op")
	assert.Equal(t, "line one\ndone [REDACTED]", buf.String())
}

func TestWriter_NilRedactorPassesThrough(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, nil)

	_, err := w.Write([]byte("partial " + writerSecret))
	require.NoError(t, err)
	assert.Equal(t, "partial "+writerSecret, buf.String())
}

func TestWriter_Concurrent(t *testing.T) {
	w, buf := newTestWriter(t)
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = w.Write([]byte("publishing with " + writerSecret + "\n"))
		}()
	}
	wg.Wait()
	require.NoError(t, w.Flush())

	out := buf.String()
	assert.NotContains(t, out, writerSecret)
	assert.Equal(t, 50, strings.Count(out, "publishing with [REDACTED]\n"))
}
