package progress_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mume/mapcore/internal/progress"
)

func TestCounter_Percent(t *testing.T) {
	c := progress.NewCounter(4)
	assert.Equal(t, 0.0, c.Percent())

	c.Step(1)
	assert.Equal(t, 25.0, c.Percent())

	c.Step(3)
	assert.Equal(t, 100.0, c.Percent())
	assert.Equal(t, uint64(4), c.Done())
}

func TestCounter_ZeroTotalIsComplete(t *testing.T) {
	c := progress.NewCounter(0)
	assert.Equal(t, 100.0, c.Percent())
}

func TestCounter_OvershootClamps(t *testing.T) {
	c := progress.NewCounter(2)
	c.Step(5)
	assert.Equal(t, 100.0, c.Percent(), "percent must never exceed 100")
}

func TestCounter_Increase(t *testing.T) {
	c := progress.NewCounter(2)
	c.Step(2)
	c.Increase(2)
	assert.Equal(t, 50.0, c.Percent(), "added work must lower the percentage")
}
