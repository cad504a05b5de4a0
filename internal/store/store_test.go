package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conduit-lang/resourcegraph/pkg/web/resource"
)

func loadBlog(t *testing.T) *Store {
	t.Helper()
	s, err := Load("testdata/blog.yaml")
	require.NoError(t, err)
	return s
}

func TestLoad(t *testing.T) {
	s := loadBlog(t)

	assert.Equal(t, []string{"Comment", "Post", "Tag", "User"}, s.Types())
	assert.Len(t, s.List("Post"), 3)
	assert.Empty(t, s.List("Unknown"))

	schema, ok := s.Registry().Get("Post")
	require.True(t, ok)
	assert.Equal(t, []string{"author", "comments", "tags"}, schema.Includable)

	user, ok := s.Registry().Get("User")
	require.True(t, ok)
	assert.Nil(t, user.Includable)
	assert.True(t, user.IsHidden("password"))
}

func TestFind(t *testing.T) {
	s := loadBlog(t)

	post, err := s.Find("Post", "1")
	require.NoError(t, err)
	assert.Equal(t, "Hi", post.Attributes()["title"])

	author, ok := post.Relationship("author")
	require.True(t, ok)
	assert.Equal(t, "9", author.Record().PrimaryKey())

	comments, _ := post.Relationship("comments")
	assert.Equal(t, 2, comments.Len())

	editor, _ := post.Relationship("editor")
	assert.True(t, editor.IsNone())

	comment, err := s.Find("Comment", "100")
	require.NoError(t, err)
	assert.Equal(t, 100, comment.PrimaryKey())

	_, err = s.Find("Post", "99")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCycles(t *testing.T) {
	s := loadBlog(t)

	ann, err := s.Find("User", "9")
	require.NoError(t, err)
	posts, _ := ann.Relationship("posts")
	require.Equal(t, resource.KindMany, posts.Kind())

	back, _ := posts.Records()[0].Relationship("author")
	assert.Same(t, ann, back.Record())
}

func TestSlice(t *testing.T) {
	s := loadBlog(t)

	page, total := s.Slice("Post", 1, 1)
	assert.Equal(t, 3, total)
	require.Len(t, page, 1)
	assert.Equal(t, "2", page[0].PrimaryKey())

	page, _ = s.Slice("Post", 2, 10)
	assert.Len(t, page, 1)

	page, total = s.Slice("Post", 10, 5)
	assert.Empty(t, page)
	assert.Equal(t, 3, total)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{
			name: "malformed yaml",
			yaml: "schemas: [",
		},
		{
			name: "unknown relation target",
			yaml: `
schemas:
  - name: Post
    relations:
      author: {type: belongs_to, target: User}
`,
		},
		{
			name: "bad relation type",
			yaml: `
schemas:
  - name: Post
    relations:
      tags: {type: lots, target: Post}
`,
		},
		{
			name: "missing reference",
			yaml: `
schemas:
  - name: Post
    relations:
      parent: {type: belongs_to, target: Post}
records:
  - type: Post
    id: 1
    relations:
      parent: Post/2
`,
		},
		{
			name: "reference without type",
			yaml: `
schemas:
  - name: Post
    relations:
      parent: {type: belongs_to, target: Post}
records:
  - type: Post
    id: 1
    relations:
      parent: "2"
`,
		},
		{
			name: "cardinality mismatch",
			yaml: `
schemas:
  - name: Post
    relations:
      parent: {type: belongs_to, target: Post}
records:
  - type: Post
    id: 1
    relations:
      parent: [Post/1]
`,
		},
		{
			name: "duplicate record",
			yaml: `
schemas:
  - name: Post
records:
  - {type: Post, id: 1}
  - {type: Post, id: 1}
`,
		},
		{
			name: "unknown record type",
			yaml: `
records:
  - {type: Post, id: 1}
`,
		},
		{
			name: "missing id",
			yaml: `
schemas:
  - name: Post
records:
  - {type: Post}
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestParseInvalidReference(t *testing.T) {
	_, err := Parse([]byte(`
schemas:
  - name: Post
    relations:
      parent: {type: belongs_to, target: Post}
records:
  - type: Post
    id: 1
    relations:
      parent: Post/2
`))
	assert.ErrorIs(t, err, ErrInvalidReference)
}

func TestEmptyIncludable(t *testing.T) {
	s, err := Parse([]byte(`
schemas:
  - name: Post
    includable: []
`))
	require.NoError(t, err)

	schema, _ := s.Registry().Get("Post")
	assert.NotNil(t, schema.Includable)
	assert.Empty(t, schema.Includable)
}
