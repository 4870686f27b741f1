package jsonfetch

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLinearBackOff(t *testing.T) {
	b := newLinearBackOff(2 * time.Second)

	assert.Equal(t, 2*time.Second, b.NextBackOff())
	assert.Equal(t, 4*time.Second, b.NextBackOff())
	assert.Equal(t, 6*time.Second, b.NextBackOff())

	b.Reset()

	assert.Equal(t, 2*time.Second, b.NextBackOff())
}
