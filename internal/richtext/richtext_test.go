package richtext

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlain(t *testing.T) {
	tests := []struct {
		name, in, want string
	}{
		{name: "tags stripped", in: "<p>Hello <strong>world</strong></p>", want: "Hello world"},
		{name: "nbsp collapsed", in: "<p>a&nbsp;&nbsp;b</p>", want: "a b"},
		{name: "entities decoded", in: "Fish &amp; chips", want: "Fish & chips"},
		{name: "blocks separated", in: "<h2>Title</h2><p>Body</p>", want: "Title Body"},
		{name: "line breaks", in: "one<br>two<br/>three", want: "one two three"},
		{name: "script dropped", in: "<p>ok</p><script>alert(1)</script>", want: "ok"},
		{name: "empty", in: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Plain(tt.in))
		})
	}
}

func TestExcerpt(t *testing.T) {
	assert.Equal(t, "short", Excerpt("<p>short</p>", 20))
	assert.Equal(t, "the quick brown…", Excerpt("<p>the quick brown fox jumps</p>", 17))
	assert.Equal(t, "프로젝트…", Excerpt("<p>프로젝트소개입니다</p>", 4))
}

func TestOutline(t *testing.T) {
	doc := `<h1>Ignored</h1>
<h2>Intro</h2><p>text</p>
<h3 id="custom-id">Details <em>here</em></h3>
<h2>Intro</h2>
<h2>   </h2>
<h4>Too deep</h4>`

	got := Outline(doc)

	assert.Equal(t, []Heading{
		{ID: "intro", Text: "Intro", Level: 2},
		{ID: "custom-id", Text: "Details here", Level: 3},
		{ID: "intro-1", Text: "Intro", Level: 2},
	}, got)
}

func TestOutlineEmpty(t *testing.T) {
	assert.Empty(t, Outline("<p>no headings</p>"))
	assert.NotNil(t, Outline(""))
}
