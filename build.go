package sitehooks

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// Build renders the index and every post into outputDir. In local image
// mode the post images are copied to <outputDir>/images so the output is
// self-contained; in CDN mode they are expected to live on the CDN.
func (a *App) Build(ctx context.Context, outputDir string) error {
	posts, err := LoadPosts(a.Config.SourceDir)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	index, err := a.RenderIndex(ctx, posts)
	if err != nil {
		return fmt.Errorf("render index: %w", err)
	}
	if err := writePage(filepath.Join(outputDir, "index.html"), index); err != nil {
		return err
	}

	for _, p := range posts {
		if err := ctx.Err(); err != nil {
			return err
		}
		page, err := a.RenderPost(ctx, p)
		if err != nil {
			return err
		}
		if err := writePage(filepath.Join(outputDir, p.Slug, "index.html"), page); err != nil {
			return err
		}
	}
	a.Echo.Logger.Infof("built %d posts into %s", len(posts), outputDir)

	if a.Images.CDNEnabled() {
		return nil
	}
	src := ImagesRoot(a.Config.SourceDir)
	if _, err := os.Stat(src); os.IsNotExist(err) {
		return nil
	}
	return copyImages(src, filepath.Join(outputDir, "images"))
}

func writePage(path, page string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(page), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// copyImages copies every regular file under src into dst, keeping the
// layout. It matches what ServeLocal answers in development.
func copyImages(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		if !d.Type().IsRegular() {
			return nil
		}
		return copyFile(path, target)
	})
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copy %s: %w", src, err)
	}
	return out.Close()
}
