package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func registerTestOptions(t *testing.T, prefix string) {
	t.Helper()

	for _, option := range []*Option{
		{Name: "Monkey", Key: prefix + "/monkey", Description: "monkey", OptType: OptTypeString, DefaultValue: "0"},
		{Name: "Zebra", Key: prefix + "/zebras/zebra", Description: "zebra", OptType: OptTypeStringArray, DefaultValue: []string{"grey"}},
		{Name: "Elephant", Key: prefix + "/elephant", Description: "elephant", OptType: OptTypeInt, DefaultValue: 0},
		{Name: "Hot", Key: prefix + "/hot", Description: "hot", OptType: OptTypeBool, DefaultValue: false},
		{Name: "Cold", Key: prefix + "/cold", Description: "cold", OptType: OptTypeBool, DefaultValue: true},
	} {
		require.NoError(t, Register(option))
	}
}

func TestGet(t *testing.T) { //nolint:paralleltest
	registerTestOptions(t, "get")

	monkey := GetAsString("get/monkey", "none")
	zebra := GetAsStringArray("get/zebras/zebra", []string{})
	elephant := GetAsInt("get/elephant", -1)
	hot := GetAsBool("get/hot", true)
	cold := GetAsBool("get/cold", false)
	unknown := GetAsString("get/unknown", "fallback")

	assert.Equal(t, "0", monkey())
	assert.Equal(t, []string{"grey"}, zebra())
	assert.Equal(t, int64(0), elephant())
	assert.False(t, hot())
	assert.True(t, cold())
	assert.Equal(t, "fallback", unknown())

	values, err := JSONToMap([]byte(`{
		"get": {
			"monkey": "1",
			"zebras": {
				"zebra": ["black", "white"]
			},
			"elephant": 2,
			"hot": true,
			"cold": false
		}
	}`))
	require.NoError(t, err)
	require.NoError(t, replaceConfig(values))

	assert.Equal(t, "1", monkey())
	assert.Equal(t, []string{"black", "white"}, zebra())
	assert.Equal(t, int64(2), elephant())
	assert.True(t, hot())
	assert.False(t, cold())

	require.NoError(t, SetConfigOption("get/monkey", "3"))
	assert.Equal(t, "3", monkey())
	require.NoError(t, SetConfigOption("get/monkey", nil))
	assert.Equal(t, "0", monkey())

	require.NoError(t, SetFromString("get/elephant", "7"))
	assert.Equal(t, int64(7), elephant())
	require.NoError(t, SetFromString("get/zebras/zebra", "a, b,,c"))
	assert.Equal(t, []string{"a", "b", "c"}, zebra())
	require.NoError(t, SetFromString("get/hot", "false"))
	assert.False(t, hot())

	assert.Error(t, SetFromString("get/elephant", "many"))
	assert.Error(t, SetConfigOption("get/elephant", 2.5))
	assert.Error(t, SetConfigOption("get/hot", "yes"))
	assert.ErrorIs(t, SetConfigOption("get/unknown", "x"), ErrUnknownOption)
}

func BenchmarkGetAsStringCached(b *testing.B) {
	monkey := GetAsString("bench/monkey", "no banana")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		monkey()
	}
}
