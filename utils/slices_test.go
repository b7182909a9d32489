package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var (
	stringTestSlice  = []string{"RF00001", "RF00002", "RF00003", "RF00005", "RF00010"}
	stringTestSlice2 = []string{"seed", "full"}
)

func TestStringInSlice(t *testing.T) {
	t.Parallel()

	assert.True(t, StringInSlice("RF00001", stringTestSlice), "first element must be found")
	assert.True(t, StringInSlice("RF00005", stringTestSlice), "middle element must be found")
	assert.True(t, StringInSlice("RF00010", stringTestSlice), "last element must be found")
	assert.False(t, StringInSlice("RF00004", stringTestSlice))
	assert.False(t, StringInSlice("cm", stringTestSlice2))
	assert.False(t, StringInSlice("seed", nil))
}

func TestDuplicateStrings(t *testing.T) {
	t.Parallel()

	a := DuplicateStrings(stringTestSlice2)
	assert.Equal(t, stringTestSlice2, a)
	a[0] = "cm"
	assert.Equal(t, "seed", stringTestSlice2[0], "copy must not share memory")
}
