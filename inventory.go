package sitehooks

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io/fs"
	"os"
	"path/filepath"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// ImagesRoot returns <sourceDir>/_posts/images.
func ImagesRoot(sourceDir string) string {
	return filepath.Join(sourceDir, filepath.FromSlash(postImagesDir))
}

// ListImages walks dir and describes every image file in it. Files whose
// extension is not an image type are skipped. Formats without a registered
// decoder (svg, ico) or corrupt files report zero dimensions.
func ListImages(dir string) ([]Image, error) {
	var images []Image
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		mt := MIMEType(path)
		if mt == MIMEOctetStream {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		img := Image{
			Path: filepath.ToSlash(rel),
			MIME: mt,
			Size: info.Size(),
		}
		img.Width, img.Height = imageDimensions(path)
		images = append(images, img)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list images: %w", err)
	}
	return images, nil
}

func imageDimensions(path string) (int, int) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0
	}
	defer f.Close()
	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0
	}
	return cfg.Width, cfg.Height
}
