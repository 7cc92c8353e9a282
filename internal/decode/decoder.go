package decode

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"net/http"
	"strings"
	"time"

	"photogrid/internal/cachestore"
	"photogrid/internal/filesystem"
	"photogrid/internal/logging"
	"photogrid/internal/metrics"

	"github.com/disintegration/imaging"

	_ "golang.org/x/image/webp" // register WebP decoder
	_ "image/gif"               // register GIF decoder
	_ "image/png"               // register PNG decoder
)

// maxFetchBytes caps a single content fetch.
const maxFetchBytes = 256 << 20

// Decoder is the default decode Func implementation: consult the
// persistent store, fetch the content URL on a miss, persist the blob
// best-effort, and decode. The store may be nil, in which case every
// request fetches.
type Decoder struct {
	store  *cachestore.Store
	client *http.Client
	// capture grabs a video frame; swapped out in tests.
	capture func(src string) (image.Image, error)
}

// NewDecoder creates a Decoder backed by store.
func NewDecoder(store *cachestore.Store) *Decoder {
	return &Decoder{
		store:   store,
		client:  &http.Client{Timeout: 12 * time.Second},
		capture: CaptureFrame,
	}
}

// Decode satisfies Func.
func (d *Decoder) Decode(req Request) (image.Image, error) {
	if req.Video {
		return d.decodeVideoThumb(req)
	}
	return d.decodeImage(req)
}

func (d *Decoder) decodeImage(req Request) (image.Image, error) {
	ctx := context.Background()

	if d.store != nil {
		if blob, ok, err := d.store.Get(ctx, req.Path); err == nil && ok {
			logging.Debug("decode: store hit for %s", req.Path)
			return DecodeBlob(blob)
		} else if err != nil {
			// Store failures never fail a load.
			logging.Warn("decode: store read for %s: %v", req.Path, err)
		}
	}

	blob, err := d.fetch(req.URL)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", req.Path, err)
	}

	if d.store != nil {
		if err := d.store.Put(ctx, req.Path, blob); err != nil {
			logging.Warn("decode: store write for %s: %v", req.Path, err)
		}
	}

	return DecodeBlob(blob)
}

// decodeVideoThumb resolves a video item to its thumbnail: cached frame
// when present, otherwise a fresh ffmpeg capture persisted for future
// sessions.
func (d *Decoder) decodeVideoThumb(req Request) (image.Image, error) {
	ctx := context.Background()
	key := cachestore.ThumbKey(req.Path)

	if d.store != nil {
		if blob, ok, err := d.store.Get(ctx, key); err == nil && ok {
			logging.Debug("decode: thumb store hit for %s", req.Path)
			return DecodeBlob(blob)
		} else if err != nil {
			logging.Warn("decode: thumb store read for %s: %v", req.Path, err)
		}
	}

	img, err := d.capture(req.URL)
	if err != nil {
		return nil, fmt.Errorf("capture frame %s: %w", req.Path, err)
	}
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil, fmt.Errorf("capture frame %s: zero-dimension frame", req.Path)
	}

	if d.store != nil {
		if blob, err := EncodeThumb(img); err != nil {
			logging.Warn("decode: thumb encode for %s: %v", req.Path, err)
		} else if err := d.store.Put(ctx, key, blob); err != nil {
			logging.Warn("decode: thumb store write for %s: %v", req.Path, err)
		}
	}

	return img, nil
}

// fetch loads the content bytes behind a resolved URL: HTTP(S) GET for
// remote content, a retried local read for plain file paths.
func (d *Decoder) fetch(url string) ([]byte, error) {
	if strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://") {
		resp, err := d.client.Get(url)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
		}
		return io.ReadAll(io.LimitReader(resp.Body, maxFetchBytes))
	}

	path := strings.TrimPrefix(url, "file://")
	return filesystem.ReadFileWithRetry(path, filesystem.DefaultRetryConfig())
}

// DecodeBlob decodes encoded image bytes into a bitmap: libvips fast
// path when initialized, pure-Go imaging fallback otherwise (or when
// vips rejects the format).
func DecodeBlob(blob []byte) (image.Image, error) {
	if IsVipsAvailable() {
		start := time.Now()
		img, err := decodeWithVips(blob)
		if err == nil {
			metrics.DecodeDuration.WithLabelValues("vips").Observe(time.Since(start).Seconds())
			return img, nil
		}
		logging.Debug("vips decode failed, trying imaging: %v", err)
	}

	start := time.Now()
	img, err := imaging.Decode(bytes.NewReader(blob), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	metrics.DecodeDuration.WithLabelValues("imaging").Observe(time.Since(start).Seconds())
	return img, nil
}
