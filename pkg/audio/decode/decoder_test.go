// ABOUTME: Tests for the cascading decoder
// ABOUTME: Tests extension dispatch, fallback order and failure classification
package decode

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/Resonate-Protocol/resonate-local/pkg/audio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBackend returns a canned result
type fakeBackend struct {
	name  string
	track *audio.DecodedAudio
	err   error
	calls int
}

func (f *fakeBackend) Name() string { return f.name }

func (f *fakeBackend) Decode(path string) (*audio.DecodedAudio, error) {
	f.calls++
	return f.track, f.err
}

func touch(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte("not really audio"), 0o644))
	return path
}

func testTrack(t *testing.T) *audio.DecodedAudio {
	t.Helper()
	track, err := audio.NewDecodedAudio(make([][2]float32, 10), 44100, audio.Format{Codec: "test"})
	require.NoError(t, err)
	return track
}

func TestCascadeNotFound(t *testing.T) {
	c := NewDefault()
	_, err := c.Decode(filepath.Join(t.TempDir(), "missing.mp3"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestCascadeUnknownExtension(t *testing.T) {
	c := NewDefault()
	_, err := c.Decode(touch(t, "notes.txt"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
}

func TestCascadeDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "album.flac")
	require.NoError(t, os.Mkdir(dir, 0o755))

	_, err := NewDefault().Decode(dir)
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
}

func TestCascadeFallsBack(t *testing.T) {
	path := touch(t, "song.mp3")
	first := &fakeBackend{name: "native", err: newError(ErrCorruptStream, path, "native", errors.New("bad frame"))}
	second := &fakeBackend{name: "fallback", track: testTrack(t)}

	c := NewCascade()
	c.Register(".mp3", first, second)

	track, err := c.Decode(path)
	require.NoError(t, err)
	assert.Equal(t, path, track.Path)
	assert.Equal(t, 1, first.calls)
	assert.Equal(t, 1, second.calls)
}

func TestCascadeStopsAtFirstSuccess(t *testing.T) {
	path := touch(t, "song.MP3")
	first := &fakeBackend{name: "native", track: testTrack(t)}
	second := &fakeBackend{name: "fallback", track: testTrack(t)}

	c := NewCascade()
	c.Register(".mp3", first, second)

	_, err := c.Decode(path)
	require.NoError(t, err)
	assert.Equal(t, 0, second.calls)
}

func TestCascadeLayoutErrorIsFinal(t *testing.T) {
	path := touch(t, "surround.wav")
	first := &fakeBackend{name: "native", err: layoutError(path, "native", 6)}
	second := &fakeBackend{name: "fallback", track: testTrack(t)}

	c := NewCascade()
	c.Register(".wav", first, second)

	_, err := c.Decode(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupportedLayout))
	assert.True(t, errors.Is(err, audio.ErrLayout))
	assert.Equal(t, 0, second.calls)
}

func TestCascadeCombinedKind(t *testing.T) {
	tests := []struct {
		name     string
		errs     []error
		expected error
	}{
		{"all unsupported", []error{ErrUnsupportedFormat, ErrUnsupportedFormat}, ErrUnsupportedFormat},
		{"one corrupt", []error{ErrUnsupportedFormat, ErrCorruptStream}, ErrCorruptStream},
		{"unclassified", []error{errors.New("boom")}, ErrCorruptStream},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := touch(t, "x.flac")
			c := NewCascade()
			for i, kind := range tt.errs {
				c.Register(".flac", &fakeBackend{name: string(rune('a' + i)), err: newError(kind, path, "fake", nil)})
			}

			_, err := c.Decode(path)
			require.Error(t, err)

			var decErr *Error
			require.True(t, errors.As(err, &decErr))
			assert.Equal(t, tt.expected, decErr.Kind)
			assert.Equal(t, "cascade", decErr.Backend)
			assert.Equal(t, path, decErr.Path)
		})
	}
}

func TestErrorMessage(t *testing.T) {
	err := newError(ErrCorruptStream, "/a.mp3", "go-mp3", errors.New("sync lost"))
	assert.Equal(t, "decode /a.mp3 (go-mp3): corrupt stream: sync lost", err.Error())

	bare := newError(ErrNotFound, "/b.mp3", "cascade", nil)
	assert.Equal(t, "decode /b.mp3 (cascade): file not found", bare.Error())
}

func TestDefaultExtensions(t *testing.T) {
	exts := NewDefault().Extensions()
	for _, ext := range []string{".mp3", ".wav", ".flac", ".ogg"} {
		assert.Contains(t, exts, ext)
	}
}

func TestGarbageFilesFail(t *testing.T) {
	for _, name := range []string{"bad.wav", "bad.flac", "bad.ogg"} {
		t.Run(name, func(t *testing.T) {
			_, err := File(touch(t, name))
			require.Error(t, err)

			var decErr *Error
			require.True(t, errors.As(err, &decErr))
			assert.False(t, errors.Is(err, ErrNotFound))
		})
	}
}
