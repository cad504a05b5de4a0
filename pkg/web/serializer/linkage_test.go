package serializer

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conduit-lang/resourcegraph/pkg/web/resource"
)

func TestToLinkage(t *testing.T) {
	b := newBlog()
	s := New(DefaultOptions())

	tests := []struct {
		name  string
		value resource.Value
		json  string
	}{
		{"none is null", resource.None(), `null`},
		{"single is an identifier", resource.One(b.ann), `{"type":"users","id":"9"}`},
		{"many keeps order", resource.Many(b.c2, b.c1), `[{"type":"comments","id":101},{"type":"comments","id":100}]`},
		{"empty many is an empty array", resource.Many(), `[]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(s.ToLinkage(tt.value))
			require.NoError(t, err)
			assert.JSONEq(t, tt.json, string(data))
		})
	}

	t.Run("accessors", func(t *testing.T) {
		l := s.ToLinkage(resource.One(b.bob))
		id, ok := l.Identifier()
		require.True(t, ok)
		assert.Equal(t, Identifier{Type: "users", ID: "10"}, id)
		assert.False(t, l.IsNull())

		assert.True(t, s.ToLinkage(resource.None()).IsNull())
		assert.Empty(t, s.ToLinkage(resource.None()).Identifiers())
		assert.Len(t, s.ToLinkage(resource.Many(b.c1, b.c2)).Identifiers(), 2)
	})
}
