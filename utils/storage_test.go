package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestVideoKey(t *testing.T) {
	now := time.Unix(1700000000, 0)

	key := VideoKey("My Vacation Video!.mp4", "cust-1", "demo-shop.myshopify.com", now)
	assert.Equal(t, "ugc/demo-shop.myshopify.com/cust-1/1700000000_my-vacation-video.mp4", key)

	// unicode and path fragments get flattened
	key = VideoKey("../Überraschung clip.MOV", "cust-1", "demo-shop.myshopify.com", now)
	assert.Equal(t, "ugc/demo-shop.myshopify.com/cust-1/1700000000_uberraschung-clip.mov", key)
}

func TestValidVideoType(t *testing.T) {
	assert.True(t, ValidVideoType("video/mp4"))
	assert.True(t, ValidVideoType("video/quicktime"))
	assert.False(t, ValidVideoType("image/png"))
	assert.False(t, ValidVideoType(""))
}

func TestValidVideoExtension(t *testing.T) {
	assert.True(t, ValidVideoExtension("clip.mp4"))
	assert.True(t, ValidVideoExtension("CLIP.MOV"))
	assert.True(t, ValidVideoExtension("a.b.webm"))
	assert.False(t, ValidVideoExtension("clip.gif"))
	assert.False(t, ValidVideoExtension("clip"))
}
