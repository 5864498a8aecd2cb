package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRound2(t *testing.T) {
	assert.Equal(t, 6420.5, Round2(6420.504))
	assert.Equal(t, 6420.51, Round2(6420.505))
	assert.Equal(t, 325.0, Round2(325.0))
	assert.Equal(t, -42.86, Round2(-42.855))
	assert.Equal(t, 0.0, Round2(0.004))
}
