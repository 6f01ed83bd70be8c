package services

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"strings"
	"sync"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// ShareCardParams carries everything the share card shows. The answer
// itself never appears, only its length as blanks.
type ShareCardParams struct {
	CreatorName  string
	AnswerLength int
	SolveCount   int
	Drawing      image.Image
}

var (
	fontOnce     sync.Once
	parsedGoFont *opentype.Font
	parsedGoErr  error
)

// RenderShareCardPNG renders the 1200x630 Open Graph card for a puzzle.
func RenderShareCardPNG(params ShareCardParams) ([]byte, error) {
	const width = 1200
	const height = 630
	const padding = 48
	const drawingSize = 420

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.RGBA{0xFA, 0xF9, 0xF7, 0xFF}}, image.Point{}, draw.Src)

	titleFace, err := newFontFace(56)
	if err != nil {
		return nil, err
	}
	defer func() { _ = titleFace.Close() }()

	bodyFace, err := newFontFace(28)
	if err != nil {
		return nil, err
	}
	defer func() { _ = bodyFace.Close() }()

	blanksFace, err := newFontFace(40)
	if err != nil {
		return nil, err
	}
	defer func() { _ = blanksFace.Close() }()

	textLeft := padding
	drawText(img, titleFace, textLeft, 140, "Can you guess", color.RGBA{0x2D, 0x2D, 0x2D, 0xFF})
	drawText(img, titleFace, textLeft, 210, "this drawing?", color.RGBA{0x2D, 0x2D, 0x2D, 0xFF})

	byline := fmt.Sprintf("drawn by %s", params.CreatorName)
	drawText(img, bodyFace, textLeft, 270, byline, color.RGBA{0x6B, 0x6B, 0x6B, 0xFF})

	if params.AnswerLength > 0 {
		blanks := strings.TrimSpace(strings.Repeat("_ ", clampBlanks(params.AnswerLength)))
		drawText(img, blanksFace, textLeft, 370, blanks, color.RGBA{0x0F, 0x6F, 0x62, 0xFF})
	}

	solveLine := pluralizeSolve(params.SolveCount)
	drawText(img, bodyFace, textLeft, 440, solveLine, color.RGBA{0x6B, 0x6B, 0x6B, 0xFF})

	drawText(img, bodyFace, textLeft, height-padding, "drawwat.com", color.RGBA{0x99, 0x99, 0x99, 0xFF})

	if params.Drawing != nil {
		frame := image.Rect(width-padding-drawingSize, (height-drawingSize)/2, width-padding, (height+drawingSize)/2)
		draw.Draw(img, frame, &image.Uniform{C: color.RGBA{0xFF, 0xFF, 0xFF, 0xFF}}, image.Point{}, draw.Src)
		target := fitRect(frame.Inset(12), params.Drawing.Bounds())
		xdraw.ApproxBiLinear.Scale(img, target, params.Drawing, params.Drawing.Bounds(), xdraw.Over, nil)
		drawBorder(img, frame, 3, color.RGBA{0x3A, 0x3A, 0x3A, 0xFF})
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// clampBlanks keeps very long answers from overflowing the card.
func clampBlanks(n int) int {
	const max = 16
	if n > max {
		return max
	}
	return n
}

func pluralizeSolve(n int) string {
	switch n {
	case 0:
		return "No one has solved it yet"
	case 1:
		return "1 player has solved it"
	default:
		return fmt.Sprintf("%d players have solved it", n)
	}
}

// fitRect scales src proportionally to fit inside bounds, centered.
func fitRect(bounds image.Rectangle, src image.Rectangle) image.Rectangle {
	if src.Dx() == 0 || src.Dy() == 0 {
		return bounds
	}
	bw, bh := bounds.Dx(), bounds.Dy()
	sw, sh := src.Dx(), src.Dy()

	w := bw
	h := sh * bw / sw
	if h > bh {
		h = bh
		w = sw * bh / sh
	}
	x := bounds.Min.X + (bw-w)/2
	y := bounds.Min.Y + (bh-h)/2
	return image.Rect(x, y, x+w, y+h)
}

func newFontFace(size float64) (*opentype.Face, error) {
	fontOnce.Do(func() {
		parsedGoFont, parsedGoErr = opentype.Parse(goregular.TTF)
	})
	if parsedGoErr != nil {
		return nil, fmt.Errorf("parse font: %w", parsedGoErr)
	}
	face, err := opentype.NewFace(parsedGoFont, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("load font face: %w", err)
	}
	otFace, ok := face.(*opentype.Face)
	if !ok {
		return nil, fmt.Errorf("load font face: unexpected type")
	}
	return otFace, nil
}

func drawText(img draw.Image, face font.Face, x, y int, text string, clr color.Color) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(clr),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}

func drawBorder(img draw.Image, rect image.Rectangle, width int, clr color.Color) {
	border := image.NewUniform(clr)
	draw.Draw(img, image.Rect(rect.Min.X, rect.Min.Y, rect.Max.X, rect.Min.Y+width), border, image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(rect.Min.X, rect.Max.Y-width, rect.Max.X, rect.Max.Y), border, image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(rect.Min.X, rect.Min.Y, rect.Min.X+width, rect.Max.Y), border, image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(rect.Max.X-width, rect.Min.Y, rect.Max.X, rect.Max.Y), border, image.Point{}, draw.Src)
}
