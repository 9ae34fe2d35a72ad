package darwin

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveKnownFilters(t *testing.T) {
	tests := []struct {
		name string
		code uint64
	}{
		{"connection", 0x636E7370},
		{"dga", 0x64676164},
		{"hostlookup", 0x66726570},
		{"injection", 0x696E6A65},
		{"no", 0x00000000},
		{"reputation", 0x72657075},
		{"session", 0x73657373},
		{"useragent", 0x75736572},
		{"logs", 0x4C4F4753},
		{"anomaly", 0x414D4C59},
		{"tanomaly", 0x544D4C59},
		{"end", 0x454E4453},
		{"sofa", 0x72676476},
	}

	registry := DefaultRegistry()
	for _, test := range tests {
		code, err := registry.Resolve(test.name)
		require.NoError(t, err, test.name)
		assert.Equal(t, test.code, code, test.name)
	}
}

func TestResolveCaseInsensitive(t *testing.T) {
	registry := DefaultRegistry()

	for _, name := range []string{"dga", "DGA", "Dga"} {
		code, err := registry.Resolve(name)
		require.NoError(t, err, name)
		assert.Equal(t, uint64(0x64676164), code, name)
	}
}

func TestResolveDeterministic(t *testing.T) {
	registry := DefaultRegistry()

	first, err := registry.Resolve("reputation")
	require.NoError(t, err)
	for i := 0; i < 100; i++ {
		code, err := registry.Resolve("reputation")
		require.NoError(t, err)
		assert.Equal(t, first, code)
	}
}

func TestResolveUnknownFilter(t *testing.T) {
	_, err := DefaultRegistry().Resolve("quantum")
	assert.ErrorIs(t, err, ErrUnknownFilter)
}

func TestRegistryNames(t *testing.T) {
	names := DefaultRegistry().Names()

	assert.Len(t, names, 13)
	assert.True(t, sort.StringsAreSorted(names))
	assert.Contains(t, names, "dga")
}
