package sitehooks

import "time"

// Post is one markdown file under <source>/_posts.
type Post struct {
	Slug        string
	Title       string
	Date        time.Time
	Source      string // path of the markdown file
	FrontMatter FrontMatter
	Body        []byte // markdown without the front matter block
}

// Link returns the site-relative URL of the post.
func (p Post) Link() string {
	return "/" + PathEscape(p.Slug) + "/"
}

// Image describes one file in the post images directory.
type Image struct {
	Path   string // slash-separated, relative to the images root
	MIME   string
	Size   int64
	Width  int
	Height int
}
