package method

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMethod(t *testing.T) {
	for _, m := range List {
		assert.Equal(t, m.String(), Parse(m.String()).String())
	}
}

func TestMethod_Unknown(t *testing.T) {
	assert.Equal(t, Unknown, Parse("NOSUCHMETHOD"))
	assert.Equal(t, "UNKNOWN", Unknown.String())
}

func TestMethod_ParseIsCaseSensitive(t *testing.T) {
	assert.Equal(t, Unknown, Parse("get"))
	assert.Equal(t, GET, Parse("GET"))
}

func BenchmarkMethod(b *testing.B) {
	var parsed Method

	for _, m := range List {
		token := m.String()

		b.Run(token, func(b *testing.B) {
			b.SetBytes(int64(len(token)))

			for i := 0; i < b.N; i++ {
				parsed = Parse(token)
			}
		})
	}

	keepalive(parsed)
}

func keepalive(Method) {}
