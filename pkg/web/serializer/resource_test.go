package serializer

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBaseResourceObject(t *testing.T) {
	b := newBlog()
	s := New(DefaultOptions())

	obj := s.BaseResourceObject(b.ann, nil)
	assert.Equal(t, "users", obj.Type)
	assert.Equal(t, "9", obj.ID)
	assert.NotContains(t, obj.Attributes, "id")
	assert.NotContains(t, obj.Attributes, "password")
	assert.Nil(t, obj.Relationships)

	data, err := json.Marshal(obj)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"users","id":"9","attributes":{"name":"Ann","email":"ann@example.com"}}`, string(data))
}

func TestResourceObject(t *testing.T) {
	b := newBlog()
	s := New(DefaultOptions())

	t.Run("relationships for each name", func(t *testing.T) {
		obj, err := s.ResourceObject(b.hello, nil, []string{"author", "comments"})
		require.NoError(t, err)

		require.Len(t, obj.Relationships, 2)
		author, ok := obj.Relationships["author"].Data.Identifier()
		require.True(t, ok)
		assert.Equal(t, Identifier{Type: "users", ID: "9"}, author)
		assert.Len(t, obj.Relationships["comments"].Data.Identifiers(), 2)
	})

	t.Run("unloaded declared relation renders its empty shape", func(t *testing.T) {
		obj, err := s.ResourceObject(b.hello, nil, []string{"editor"})
		require.NoError(t, err)
		assert.True(t, obj.Relationships["editor"].Data.IsNull())

		obj, err = s.ResourceObject(b.bob, nil, []string{"posts"})
		require.NoError(t, err)
		data, err := json.Marshal(obj.Relationships["posts"])
		require.NoError(t, err)
		assert.JSONEq(t, `{"data":[]}`, string(data))
	})

	t.Run("hidden relation fails", func(t *testing.T) {
		_, err := s.ResourceObject(b.c1, nil, []string{"secret"})
		assert.ErrorIs(t, err, ErrInvalidRelationPath)
	})

	t.Run("undeclared relation fails", func(t *testing.T) {
		_, err := s.ResourceObject(b.c1, nil, []string{"likes"})
		assert.ErrorIs(t, err, ErrInvalidRelationPath)
	})

	t.Run("no names omits relationships", func(t *testing.T) {
		obj, err := s.ResourceObject(b.news, nil, nil)
		require.NoError(t, err)
		data, err := json.Marshal(obj)
		require.NoError(t, err)
		assert.NotContains(t, string(data), "relationships")
	})
}

func TestRelationNames(t *testing.T) {
	b := newBlog()

	names := RelationNames(b.hello, []string{"author", "comments.creator", "editor"})
	assert.Equal(t, []string{"author", "comments", "tags", "editor"}, names)

	assert.Empty(t, RelationNames(b.news, nil))
	assert.Equal(t, []string{"posts"}, RelationNames(b.news, []string{"posts.author", "posts"}))

	assert.Equal(t, []string{"creator", "post"}, RelationNames(b.c1, nil))
	assert.Equal(t, []string{"creator", "post", "secret"}, RelationNames(b.c1, []string{"secret"}))
}
