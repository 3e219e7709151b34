package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetCarriesBuildStamp(t *testing.T) {
	info := Get()
	assert.Equal(t, Version, info.Version)
	assert.Equal(t, Commit, info.Commit)
	assert.NotEmpty(t, info.GoVersion)
	assert.Contains(t, info.Platform, "/")
	assert.Contains(t, info.String(), "survtime")
}
