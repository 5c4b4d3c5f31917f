package osutils

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestWarnIfNotElevated(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf)

	admin := WarnIfNotElevated(&log)
	assert.Equal(t, IsAdmin(), admin)
	if !admin && HooksNeedElevation {
		assert.Contains(t, buf.String(), "not running as administrator")
	} else {
		assert.Empty(t, buf.String())
	}
}
