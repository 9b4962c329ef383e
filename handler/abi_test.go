package handler

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPackPtrLen_RoundTrips(t *testing.T) {
	word := packPtrLen(0xdeadbeef, 42)
	ptr, length := unpackPtrLen(word)
	assert.Equal(t, uint32(0xdeadbeef), ptr)
	assert.Equal(t, uint32(42), length)
}

func TestPackPtrLen_Zero(t *testing.T) {
	ptr, length := unpackPtrLen(0)
	assert.Zero(t, ptr)
	assert.Zero(t, length)
}
