package engine

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtractProfile(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cmdline string
		want    Profile
		ok      bool
	}{
		{"token only", "--profile=1", 1, true},
		{"token mid-line", `C:\VRChat\VRChat.exe --no-vr --profile=12 --fps=90`, 12, true},
		{"token at end", "VRChat.exe --no-vr --profile=3", 3, true},
		{"zero", "--profile=0", 0, true},
		{"absent", "VRChat.exe --no-vr", 0, false},
		{"empty value", "VRChat.exe --profile= --no-vr", 0, false},
		{"non-numeric", "VRChat.exe --profile=abc", 0, false},
		{"negative", "VRChat.exe --profile=-2", 0, false},
		{"empty line", "", 0, false},
		{"first occurrence wins", "--profile=4 --profile=9", 4, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := ExtractProfile(tt.cmdline)
			require.Equal(t, tt.ok, ok)
			if tt.ok {
				require.Equal(t, tt.want, got)
			}
		})
	}
}

func TestProfileArgRoundTrip(t *testing.T) {
	t.Parallel()

	p := Profile(42)
	got, ok := ExtractProfile("launcher.exe --no-vr " + p.Arg())
	require.True(t, ok)
	require.Equal(t, p, got)
}
