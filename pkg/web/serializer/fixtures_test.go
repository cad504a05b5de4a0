package serializer

import (
	"github.com/conduit-lang/resourcegraph/pkg/web/resource"
)

// blogSchemas returns the schemas of a small blog graph. Posts whitelist their
// includes; users hide their password; comments hide a secret relation.
func blogSchemas() (user, post, comment, tag *resource.Schema) {
	user = resource.NewSchema("User").
		WithHidden("password").
		HasMany("posts", "Post").
		HasMany("comments", "Comment")

	post = resource.NewSchema("Post").
		BelongsTo("author", "User").
		HasMany("comments", "Comment").
		HasMany("tags", "Tag").
		BelongsTo("editor", "User").
		WithIncludable("author", "comments", "tags")

	comment = resource.NewSchema("Comment").
		BelongsTo("creator", "User").
		BelongsTo("post", "Post").
		BelongsTo("secret", "User").
		WithHidden("secret")

	tag = resource.NewSchema("Tag").
		HasMany("posts", "Post")

	return user, post, comment, tag
}

type blog struct {
	ann, bob  *resource.Model
	hello     *resource.Model
	second    *resource.Model
	c1, c2    *resource.Model
	news, dev *resource.Model
}

// newBlog wires: ann wrote hello and second; bob and ann commented on hello;
// both posts share the news tag.
func newBlog() *blog {
	userS, postS, commentS, tagS := blogSchemas()

	b := &blog{
		ann:    resource.NewModel(userS, "9", map[string]any{"name": "Ann", "email": "ann@example.com", "password": "secret"}),
		bob:    resource.NewModel(userS, "10", map[string]any{"name": "Bob", "email": "bob@example.com", "password": "hunter2"}),
		hello:  resource.NewModel(postS, "1", map[string]any{"title": "Hi", "body": "Hello world"}),
		second: resource.NewModel(postS, "2", map[string]any{"title": "Again", "body": "More words"}),
		c1:     resource.NewModel(commentS, 100, map[string]any{"body": "Nice"}),
		c2:     resource.NewModel(commentS, 101, map[string]any{"body": "Thanks"}),
		news:   resource.NewModel(tagS, "news", map[string]any{"label": "News"}),
		dev:    resource.NewModel(tagS, "dev", map[string]any{"label": "Dev"}),
	}

	b.hello.
		MustRelate("author", resource.One(b.ann)).
		MustRelate("comments", resource.Many(b.c1, b.c2)).
		MustRelate("tags", resource.Many(b.news, b.dev))
	b.second.
		MustRelate("author", resource.One(b.ann)).
		MustRelate("tags", resource.Many(b.news))
	b.c1.
		MustRelate("creator", resource.One(b.bob)).
		MustRelate("post", resource.One(b.hello)).
		MustRelate("secret", resource.One(b.bob))
	b.c2.
		MustRelate("creator", resource.One(b.ann)).
		MustRelate("post", resource.One(b.hello))
	b.ann.
		MustRelate("posts", resource.Many(b.hello, b.second)).
		MustRelate("comments", resource.Many(b.c2))

	return b
}

func records(ms ...*resource.Model) []resource.Record {
	out := make([]resource.Record, len(ms))
	for i, m := range ms {
		out[i] = m
	}
	return out
}

func identifiers(objs []ResourceObject) []string {
	out := make([]string, len(objs))
	for i, o := range objs {
		out[i] = o.Identifier().Key()
	}
	return out
}
