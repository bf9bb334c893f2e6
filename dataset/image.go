package dataset

import (
	"context"
	"fmt"
	"image"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
)

// GetImage decodes an image stored in the datasets bucket and returns it
// with its format name.  With greyscale, the image is converted to *image.Gray.
func (h *Helper) GetImage(ctx context.Context, key string, greyscale bool) (image.Image, string, error) {
	ns := h.cfg.DatasetsBucket
	b, err := h.bucket(ctx, ns)
	if err != nil {
		return nil, "", err
	}

	ctx, cancel := h.withTimeout(ctx)
	defer cancel()

	r, err := b.Get(ctx, key)
	if err != nil {
		return nil, "", annotate(err, "failed to get image")
	}
	defer r.Close()

	img, format, err := image.Decode(r)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, "", annotate(ctxErr, "failed to read image %s", key)
		}
		return nil, "", fmt.Errorf("failed to decode image %s: %w", key, err)
	}

	if greyscale {
		img = toGray(img)
	}
	h.log.Info("decoded image", "bucket", ns, "key", key, "format", format, "bounds", img.Bounds().String())
	return img, format, nil
}

func toGray(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok {
		return g
	}
	g := image.NewGray(img.Bounds())
	draw.Draw(g, g.Bounds(), img, img.Bounds().Min, draw.Src)
	return g
}
