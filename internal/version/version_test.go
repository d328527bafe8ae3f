package version

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestShort(t *testing.T) {
	tests := []struct {
		name string
		info Info
		want string
	}{
		{"release with commit", Info{Version: "v1.2.0", GitCommit: "abcdef123456"}, "v1.2.0 (abcdef1)"},
		{"dev with commit", Info{Version: "dev", GitCommit: "abcdef123456"}, "dev-abcdef1"},
		{"unknown commit", Info{Version: "v1.0.0", GitCommit: "unknown"}, "v1.0.0"},
		{"short commit", Info{Version: "dev", GitCommit: "abc"}, "dev"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.info.Short())
		})
	}
}

func TestString(t *testing.T) {
	info := Info{
		Version:   "v1.0.0",
		GitCommit: "abcdef1",
		BuildTime: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		GoVersion: "go1.24.4",
		Platform:  "linux/amd64",
		Dirty:     true,
	}

	assert.Equal(t, "Version: v1.0.0\nCommit: abcdef1 (dirty)\nBuilt: 2024-05-01T12:00:00Z\nGo: go1.24.4\nPlatform: linux/amd64", info.String())
}

func TestIsRelease(t *testing.T) {
	assert.True(t, Info{Version: "v1.0.0"}.IsRelease())
	assert.False(t, Info{Version: "dev"}.IsRelease())
	assert.False(t, Info{Version: "dev-abc1234"}.IsRelease())
}

func TestParseBuildTime(t *testing.T) {
	assert.True(t, parseBuildTime("unknown").IsZero())
	assert.Equal(t, 2024, parseBuildTime("2024-05-01T12:00:00Z").Year())
	assert.Equal(t, 5, int(parseBuildTime("2024-05-01 12:00:00").Month()))
}

func TestGet(t *testing.T) {
	info := Get()
	assert.NotEmpty(t, info.Version)
	assert.NotEmpty(t, info.GoVersion)
	assert.Contains(t, info.Platform, "/")
}
