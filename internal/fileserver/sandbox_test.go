package fileserver

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSandbox_ResolvesBase(t *testing.T) {
	dir := t.TempDir()

	sb, err := NewSandbox(dir)
	require.NoError(t, err)

	assert.True(t, filepath.IsAbs(sb.Base()))

	// The base is symlink-resolved so containment checks compare real paths.
	resolved, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	assert.Equal(t, resolved, sb.Base())
}

func TestNewSandbox_MissingDirectory(t *testing.T) {
	_, err := NewSandbox(filepath.Join(t.TempDir(), "does-not-exist"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "resolve base directory")
}

func TestSandbox_Resolve(t *testing.T) {
	sb, err := NewSandbox(t.TempDir())
	require.NoError(t, err)

	base := sb.Base()

	tests := []struct {
		name   string
		path   string
		want   string
		denied bool
	}{
		{
			name: "relative file",
			path: "notes.txt",
			want: filepath.Join(base, "notes.txt"),
		},
		{
			name: "nested relative path",
			path: "a/b/c.txt",
			want: filepath.Join(base, "a", "b", "c.txt"),
		},
		{
			name: "dot is the base itself",
			path: ".",
			want: base,
		},
		{
			name: "dotdot that stays inside",
			path: "subdir/../notes.txt",
			want: filepath.Join(base, "notes.txt"),
		},
		{
			name: "absolute path inside base",
			path: filepath.Join(base, "inside.txt"),
			want: filepath.Join(base, "inside.txt"),
		},
		{
			name:   "parent escape",
			path:   "..",
			denied: true,
		},
		{
			name:   "traversal",
			path:   "../outside.txt",
			denied: true,
		},
		{
			name:   "deep traversal",
			path:   "../../../etc/passwd",
			denied: true,
		},
		{
			name:   "traversal hidden behind a subdirectory",
			path:   "subdir/../../outside.txt",
			denied: true,
		},
		{
			name:   "absolute path outside base",
			path:   "/etc/passwd",
			denied: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := sb.Resolve(tt.path)

			if tt.denied {
				require.ErrorIs(t, err, errAccessDenied)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
