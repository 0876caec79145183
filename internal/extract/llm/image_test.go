package llm

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"

	extract "greenledger/internal/extract/domain"
)

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestPreprocessBoundsLongestSide(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 2400, 1600))
	out, err := Preprocess(encodePNG(t, src))
	if err != nil {
		t.Fatalf("preprocess: %v", err)
	}
	decoded, err := png.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("decode output: %v", err)
	}
	bounds := decoded.Bounds()
	if bounds.Dx() != maxImageSide {
		t.Fatalf("expected width %d, got %d", maxImageSide, bounds.Dx())
	}
	if bounds.Dy() > maxImageSide {
		t.Fatalf("height %d exceeds bound", bounds.Dy())
	}
}

func TestPreprocessClipsExtremes(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 4, 1))
	src.SetGray(0, 0, color.Gray{Y: 10})
	src.SetGray(1, 0, color.Gray{Y: 120})
	src.SetGray(2, 0, color.Gray{Y: 240})
	src.SetGray(3, 0, color.Gray{Y: 250})

	out, err := Preprocess(encodePNG(t, src))
	if err != nil {
		t.Fatalf("preprocess: %v", err)
	}
	decoded, err := png.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("decode output: %v", err)
	}
	gray, ok := decoded.(*image.Gray)
	if !ok {
		t.Fatalf("expected grayscale output, got %T", decoded)
	}
	if got := gray.GrayAt(0, 0).Y; got != 0 {
		t.Fatalf("darkest pixel should clip to 0, got %d", got)
	}
	if got := gray.GrayAt(3, 0).Y; got != 255 {
		t.Fatalf("brightest pixel should clip to 255, got %d", got)
	}
}

func TestPreprocessRejectsNonImage(t *testing.T) {
	if _, err := Preprocess([]byte("not an image")); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestImageExtractorSendsPreprocessedPNG(t *testing.T) {
	var captured extract.RowRequest
	service := &captureRowService{rows: []extract.CandidateRow{{YearMonth: "2025-01"}}, captured: &captured}
	extractor, err := NewImageExtractor(service, zeroDelayPolicy(), "")
	if err != nil {
		t.Fatalf("new extractor: %v", err)
	}

	src := image.NewRGBA(image.Rect(0, 0, 8, 8))
	result, err := extractor.Extract(context.Background(), extract.RawSource{Name: "bill.png", Data: encodePNG(t, src)})
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if len(result.Rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(result.Rows))
	}
	if captured.ImagePNG == nil {
		t.Fatal("expected preprocessed image payload")
	}
	if _, err := png.Decode(bytes.NewReader(captured.ImagePNG)); err != nil {
		t.Fatalf("payload is not valid PNG: %v", err)
	}
}
