package preprocess

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/jpeg"
	"math"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/medscan/pkg/model"
	"golang.org/x/image/draw"

	_ "image/gif"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

const (
	// maxEdge bounds the longer side of the uploaded photo
	maxEdge = 800

	// jpegQuality trades detail for upload size; identification does not
	// need more
	jpegQuality = 70
)

// EncodedImage is the transport-ready payload produced from an upload. It is
// consumed once by the identification client and never persisted.
type EncodedImage struct {
	MIMEType string
	Data     []byte
}

// DataURI renders the image as a data URI suitable for the proxy's
// imageBase64 field.
func (x *EncodedImage) DataURI() string {
	return "data:" + x.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(x.Data)
}

// Preprocess decodes an uploaded image, scales it down so that neither edge
// exceeds 800 pixels (aspect ratio preserved, never upscaled) and re-encodes
// it as JPEG. The transform is lossy and one-way: only the re-encoded bytes
// survive.
func Preprocess(mimeType string, data []byte) (*EncodedImage, error) {
	if !strings.HasPrefix(mimeType, "image/") {
		return nil, goerr.New("file is not an image",
			goerr.T(model.TagInvalidInput), goerr.V("mime_type", mimeType))
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to decode image",
			goerr.T(model.TagInvalidInput), goerr.V("mime_type", mimeType))
	}

	width, height := targetSize(src.Bounds().Dx(), src.Bounds().Dy())

	scaled := src
	if width != src.Bounds().Dx() || height != src.Bounds().Dy() {
		dst := image.NewRGBA(image.Rect(0, 0, width, height))
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)
		scaled = dst
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, scaled, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, goerr.Wrap(err, "failed to encode image")
	}

	return &EncodedImage{
		MIMEType: "image/jpeg",
		Data:     buf.Bytes(),
	}, nil
}

// targetSize scales (w, h) so the longer edge becomes maxEdge. Dimensions
// already within the bound are left unchanged.
func targetSize(w, h int) (int, int) {
	if w >= h {
		if w > maxEdge {
			return maxEdge, scale(h, w)
		}
	} else if h > maxEdge {
		return scale(w, h), maxEdge
	}
	return w, h
}

func scale(short, long int) int {
	return int(math.Round(float64(short) * maxEdge / float64(long)))
}
