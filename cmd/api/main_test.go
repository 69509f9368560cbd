package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"shareapi/internal/service"
)

func TestBodyLimitFitsLargestUpload(t *testing.T) {
	assert.Greater(t, bodyLimit, int(service.MaxResourceSize))
	assert.Greater(t, bodyLimit, int(service.MaxImageSize))
}
