package instance

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTag(t *testing.T) {
	i := Instance{ID: "i-1", Tags: map[string]string{"Environment": "Dev"}}

	v, ok := i.Tag("Environment")
	assert.True(t, ok)
	assert.Equal(t, "Dev", v)

	_, ok = i.Tag("environment")
	assert.False(t, ok)
}

func TestTag_NilTags(t *testing.T) {
	i := Instance{ID: "i-1"}
	_, ok := i.Tag("Environment")
	assert.False(t, ok)
}

func TestIDs(t *testing.T) {
	ids := IDs([]Instance{{ID: "i-2"}, {ID: "i-1"}, {ID: "i-3"}})
	assert.Equal(t, []string{"i-2", "i-1", "i-3"}, ids)
	assert.Empty(t, IDs(nil))
}
