package serializer

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestTypeName(t *testing.T) {
	tests := []struct {
		name     string
		declared string
		singular bool
		want     string
	}{
		{"simple plural", "User", false, "users"},
		{"compound plural", "BlogPost", false, "blog-posts"},
		{"compound singular", "BlogPost", true, "blog-post"},
		{"qualified name", "models.Comment", false, "comments"},
		{"namespaced name", `App\Models\Tag`, false, "tags"},
		{"consonant y", "Category", false, "categories"},
		{"irregular", "Person", false, "people"},
		{"empty", "", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TypeName(tt.declared, tt.singular))
		})
	}
}

func TestNormalizeID(t *testing.T) {
	id := uuid.MustParse("7d444840-9dc0-11d1-b245-5ffdce74fad2")

	assert.Equal(t, "9", NormalizeID("9"))
	assert.Equal(t, int64(9), NormalizeID(9))
	assert.Equal(t, int64(9), NormalizeID(int32(9)))
	assert.Equal(t, uint64(9), NormalizeID(uint(9)))
	assert.Equal(t, id.String(), NormalizeID(id))
	assert.Equal(t, "1.5", NormalizeID(1.5))
	assert.Equal(t, "", NormalizeID(nil))
}

func TestIdentify(t *testing.T) {
	b := newBlog()
	s := New(DefaultOptions())

	t.Run("stable across calls", func(t *testing.T) {
		first := s.Identify(b.ann)
		second := s.Identify(b.ann)
		assert.Equal(t, first, second)
		assert.Equal(t, Identifier{Type: "users", ID: "9"}, first)
	})

	t.Run("distinct records give distinct identifiers", func(t *testing.T) {
		assert.NotEqual(t, s.Identify(b.ann), s.Identify(b.bob))
		assert.NotEqual(t, s.Identify(b.ann).Key(), s.Identify(b.hello).Key())
	})

	t.Run("integer ids stay integers", func(t *testing.T) {
		assert.Equal(t, Identifier{Type: "comments", ID: int64(100)}, s.Identify(b.c1))
	})

	t.Run("singular type names", func(t *testing.T) {
		opts := DefaultOptions()
		opts.SingularTypeNames = true
		assert.Equal(t, "user", New(opts).Identify(b.ann).Type)
	})
}
