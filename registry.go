package darwin

import (
	"fmt"
	"sort"
	"strings"
)

// Registry maps canonical filter names to the codes the wire protocol
// carries. It is immutable after construction and safe to share between
// clients.
type Registry struct {
	codes map[string]uint64
}

// DefaultRegistry returns the registry of filters shipped with the engine.
func DefaultRegistry() *Registry {
	return &Registry{codes: map[string]uint64{
		"connection": 0x636E7370,
		"dga":        0x64676164,
		"hostlookup": 0x66726570,
		"injection":  0x696E6A65,
		"no":         0x00000000,
		"reputation": 0x72657075,
		"session":    0x73657373,
		"useragent":  0x75736572,
		"logs":       0x4C4F4753,
		"anomaly":    0x414D4C59,
		"tanomaly":   0x544D4C59,
		"end":        0x454E4453,
		"sofa":       0x72676476,
	}}
}

// Resolve returns the filter code for a name, case insensitive.
func (r *Registry) Resolve(name string) (uint64, error) {
	code, ok := r.codes[strings.ToLower(name)]
	if !ok {
		return 0, fmt.Errorf("%w: %q (accepted values are: %s)",
			ErrUnknownFilter, name, strings.Join(r.Names(), ", "))
	}
	return code, nil
}

// Names returns the known filter names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.codes))
	for name := range r.codes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
