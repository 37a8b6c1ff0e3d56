package sitehooks

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const postsDir = "_posts"

// ErrBadSlug is returned when a post file name yields an empty slug or one
// already taken by another post.
var ErrBadSlug = errors.New("bad post slug")

var dateLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	time.RFC3339,
}

// LoadPosts reads every markdown file under <sourceDir>/_posts, skipping the
// images directory, and returns them newest first. Posts without a layout
// get layout "post".
func LoadPosts(sourceDir string) ([]Post, error) {
	root := filepath.Join(sourceDir, postsDir)
	imagesRoot := ImagesRoot(sourceDir)
	var posts []Post
	seen := make(map[string]string)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root && os.IsNotExist(err) {
				return filepath.SkipDir
			}
			return err
		}
		if d.IsDir() {
			if path == imagesRoot {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.EqualFold(filepath.Ext(path), ".md") {
			return nil
		}
		post, err := loadPost(path)
		if err != nil {
			return err
		}
		if post.Slug == "" {
			return fmt.Errorf("%s: %w: empty", path, ErrBadSlug)
		}
		if other, ok := seen[post.Slug]; ok {
			return fmt.Errorf("%s: %w: %q also used by %s", path, ErrBadSlug, post.Slug, other)
		}
		seen[post.Slug] = path
		posts = append(posts, post)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load posts: %w", err)
	}
	sort.SliceStable(posts, func(i, j int) bool {
		if !posts[i].Date.Equal(posts[j].Date) {
			return posts[i].Date.After(posts[j].Date)
		}
		return posts[i].Slug < posts[j].Slug
	})
	return posts, nil
}

func loadPost(path string) (Post, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Post{}, err
	}
	fm, body, err := ParseFrontMatter(content)
	if err != nil {
		return Post{}, fmt.Errorf("%s: %w", path, err)
	}
	if _, ok := fm["layout"]; !ok {
		fm["layout"] = "post"
	}
	slug := slugFromFile(path)
	title := strings.TrimSpace(fm.String("title"))
	if title == "" {
		title = slug
	}
	return Post{
		Slug:        slug,
		Title:       title,
		Date:        parseDate(fm["date"]),
		Source:      path,
		FrontMatter: fm,
		Body:        body,
	}, nil
}

func parseDate(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		s := strings.TrimSpace(t)
		for _, layout := range dateLayouts {
			if d, err := time.Parse(layout, s); err == nil {
				return d
			}
		}
	}
	return time.Time{}
}
