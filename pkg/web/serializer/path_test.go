package serializer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conduit-lang/resourcegraph/pkg/web/resource"
)

func TestValidPath(t *testing.T) {
	valid := []string{"author", "comments.creator", "a.b.c"}
	invalid := []string{"", ".", "comments.", ".comments", "comments..creator", "com_ments", "comments-creator", "comments.creator1"}

	for _, p := range valid {
		assert.True(t, ValidPath(p), p)
	}
	for _, p := range invalid {
		assert.False(t, ValidPath(p), p)
	}
}

func TestResolvePath(t *testing.T) {
	b := newBlog()
	s := New(DefaultOptions())

	t.Run("single hop to-one", func(t *testing.T) {
		v, err := s.ResolvePath(b.hello, "author")
		require.NoError(t, err)
		assert.Equal(t, resource.KindSingle, v.Kind())
		assert.Same(t, b.ann, v.Record())
	})

	t.Run("single hop to-many keeps order", func(t *testing.T) {
		v, err := s.ResolvePath(b.hello, "comments")
		require.NoError(t, err)
		assert.Equal(t, resource.KindMany, v.Kind())
		assert.Equal(t, records(b.c1, b.c2), v.Records())
	})

	t.Run("dotted path through to-many flattens", func(t *testing.T) {
		v, err := s.ResolvePath(b.hello, "comments.creator")
		require.NoError(t, err)
		assert.Equal(t, resource.KindMany, v.Kind())
		assert.Equal(t, records(b.bob, b.ann), v.Records())
	})

	t.Run("dotted path through empty to-many", func(t *testing.T) {
		v, err := s.ResolvePath(b.second, "comments.creator")
		require.NoError(t, err)
		assert.Equal(t, resource.KindMany, v.Kind())
		assert.Empty(t, v.Records())
	})

	t.Run("user comments creators", func(t *testing.T) {
		v, err := s.ResolvePath(b.ann, "comments.creator")
		require.NoError(t, err)
		assert.Equal(t, records(b.ann), v.Records())

		v, err = s.ResolvePath(b.bob, "comments.creator")
		require.NoError(t, err)
		assert.Equal(t, resource.KindMany, v.Kind())
		assert.Empty(t, v.Records())
	})

	t.Run("none short-circuits remaining segments", func(t *testing.T) {
		orphan := resource.NewModel(b.hello.Schema(), "3", map[string]any{"title": "Orphan"})
		v, err := s.ResolvePath(orphan, "author.posts")
		require.NoError(t, err)
		assert.True(t, v.IsNone())

		v, err = s.ResolvePath(orphan, "author.nothing")
		require.NoError(t, err)
		assert.True(t, v.IsNone())
	})

	t.Run("hidden segment reports the full path", func(t *testing.T) {
		_, err := s.ResolvePath(b.hello, "comments.secret")
		require.ErrorIs(t, err, ErrInvalidRelationPath)

		path, ok := PathOf(err)
		require.True(t, ok)
		assert.Equal(t, "comments.secret", path)
		assert.Contains(t, err.Error(), `"comments.secret"`)
	})

	t.Run("hidden attribute cannot be traversed", func(t *testing.T) {
		_, err := s.ResolvePath(b.ann, "password")
		assert.ErrorIs(t, err, ErrInvalidRelationPath)
	})

	t.Run("undeclared relation", func(t *testing.T) {
		_, err := s.ResolvePath(b.hello, "likes")
		assert.ErrorIs(t, err, ErrInvalidRelationPath)
	})

	t.Run("declared but not includable is the same error", func(t *testing.T) {
		_, err := s.ResolvePath(b.hello, "editor")
		require.ErrorIs(t, err, ErrInvalidRelationPath)
		path, _ := PathOf(err)
		assert.Equal(t, "editor", path)
	})

	t.Run("invalid intermediate segment is not swallowed", func(t *testing.T) {
		_, err := s.ResolvePath(b.hello, "comments.likes.creator")
		require.ErrorIs(t, err, ErrInvalidRelationPath)
		path, _ := PathOf(err)
		assert.Equal(t, "comments.likes.creator", path)
	})

	t.Run("whitelist applies at every hop", func(t *testing.T) {
		v, err := s.ResolvePath(b.c1, "post.author")
		require.NoError(t, err)
		assert.Same(t, b.ann, v.Record())

		_, err = s.ResolvePath(b.c1, "post.editor")
		assert.ErrorIs(t, err, ErrInvalidRelationPath)
	})

	t.Run("malformed path", func(t *testing.T) {
		_, err := s.ResolvePath(b.hello, "comments..creator")
		require.ErrorIs(t, err, ErrInvalidRelationPath)
		path, _ := PathOf(err)
		assert.Equal(t, "comments..creator", path)
	})

	t.Run("cyclic graph", func(t *testing.T) {
		v, err := s.ResolvePath(b.ann, "posts.author.posts")
		require.NoError(t, err)
		assert.Equal(t, 4, v.Len())
	})
}
