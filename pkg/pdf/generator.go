package pdf

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// Generator renders certificate content to PDF bytes
type Generator interface {
	Generate(ctx context.Context, content CertificateContent) (*RenderResult, error)
}

// CertificateContent holds the already-localised text and asset paths of one certificate
type CertificateContent struct {
	Orientation Orientation

	// Optional decorative assets; empty or unreadable paths render as blank space
	BadgePath     string
	SignaturePath string

	Title     string
	Certifies string
	Recipient string
	Helper    string
	Item      string
	IssuedOn  string

	SignatureCaption  string
	ValidationCaption string
	QRPayload         string
}

// RenderResult is a rendered document plus the layout decisions taken
type RenderResult struct {
	Data     []byte
	Scale    float64
	Geometry Geometry
	HasBadge bool
	HasSign  bool
	// MissingGlyphs is set when text needed a Unicode font but only the core font was available
	MissingGlyphs bool
}

// Color represents an RGB color
type Color struct {
	R int `json:"r"`
	G int `json:"g"`
	B int `json:"b"`
}

// Options configures certificate rendering
type Options struct {
	FontPath    string  `json:"font_path"` // optional TTF; core Helvetica otherwise
	FontFamily  string  `json:"font_family"`
	BorderColor Color   `json:"border_color"`
	BorderWidth float64 `json:"border_width"` // points
	Title       TextStyle
	Subtitle    TextStyle
	Body        TextStyle
	Signature   TextStyle

	BadgeSize       float64 // mm, square
	BadgeGap        float64
	MissingBadgeGap float64
	SectionGap      float64
	SignatureWidth  float64
	SignatureHeight float64
	QRSize          float64
}

var (
	darkBlue = Color{R: 0, G: 0, B: 139}
	black    = Color{R: 0, G: 0, B: 0}
)

// DefaultOptions returns the standard certificate look
func DefaultOptions() Options {
	return Options{
		FontFamily:  "Helvetica",
		BorderColor: darkBlue,
		BorderWidth: 3,
		Title:       TextStyle{FontSize: 28, Leading: 32, SpaceAfter: 5, Bold: true, Color: darkBlue},
		Subtitle:    TextStyle{FontSize: 18, Leading: 22, SpaceAfter: 4, Color: black},
		Body:        TextStyle{FontSize: 14, Leading: 18, SpaceAfter: 3, Color: black},
		Signature:   TextStyle{FontSize: 12, Leading: 14, Color: black},

		BadgeSize:       30,
		BadgeGap:        5,
		MissingBadgeGap: 10,
		SectionGap:      5,
		SignatureWidth:  131,
		SignatureHeight: 11.4,
		QRSize:          20,
	}
}

type certificateGenerator struct {
	options Options
}

// NewGenerator creates a gofpdf-backed certificate generator
func NewGenerator(options Options) Generator {
	return &certificateGenerator{options: options}
}

// Generate lays out and renders one certificate. Each call owns its own document.
func (g *certificateGenerator) Generate(ctx context.Context, content CertificateContent) (*RenderResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	geo := NewGeometry(content.Orientation)
	r := g.newRenderer(geo)

	r.pdf.AddPage()

	badge := r.registerImage(content.BadgePath)
	signature := r.registerImage(content.SignaturePath)

	qr, err := qrImage(content.QRPayload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode QR code: %w", err)
	}
	r.pdf.RegisterImageOptionsReader(qrImageName, gofpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(qr))
	if !r.pdf.Ok() {
		return nil, fmt.Errorf("failed to register QR image: %w", r.pdf.Error())
	}

	elements := g.contentElements(r, content, badge)
	scale := FitScale(blocksOf(elements), geo.Content.H, ScaleCandidates(MaxScale, MinScale, ScaleStep))

	r.drawContent(elements, scale)
	r.drawFooter(content, signature)

	var buf bytes.Buffer
	if err := r.pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to write PDF: %w", err)
	}

	return &RenderResult{
		Data:          buf.Bytes(),
		Scale:         scale,
		Geometry:      geo,
		HasBadge:      badge != "",
		HasSign:       signature != "",
		MissingGlyphs: !r.utf8 && needsUnicodeFont(content),
	}, nil
}

const qrImageName = "validation-qr"

// element is a content-region block plus what it takes to draw it
type element struct {
	block Block
	text  string
	style TextStyle
	image string
}

func blocksOf(elements []element) []Block {
	blocks := make([]Block, len(elements))
	for i, e := range elements {
		blocks[i] = e.block
	}
	return blocks
}

func (g *certificateGenerator) contentElements(r *renderer, content CertificateContent, badge string) []element {
	o := g.options
	width := r.geo.Content.W
	paragraph := func(text string, style TextStyle) element {
		text = strings.TrimSpace(text)
		return element{
			block: TextBlock{Text: text, Style: style, Width: width, Lines: r.countLines},
			text:  text,
			style: style,
		}
	}

	var elements []element
	if badge != "" {
		elements = append(elements, element{block: ImageBlock{Size: o.BadgeSize, Gap: o.BadgeGap}, image: badge})
	} else {
		elements = append(elements, element{block: Spacer{Size: o.MissingBadgeGap}})
	}

	elements = append(elements,
		paragraph(content.Title, o.Title),
		element{block: Spacer{Size: o.SectionGap}},
		paragraph(content.Certifies, o.Subtitle),
		paragraph(content.Recipient, o.Title),
		paragraph(content.Helper, o.Body),
		paragraph(content.Item, o.Subtitle),
		element{block: Spacer{Size: o.SectionGap}},
		paragraph(content.IssuedOn, o.Body),
	)
	return elements
}

// renderer wraps one gofpdf document and its font setup
type renderer struct {
	pdf     *gofpdf.Fpdf
	geo     Geometry
	options Options
	family  string
	utf8    bool
	tr      func(string) string
}

func (g *certificateGenerator) newRenderer(geo Geometry) *renderer {
	orientation := "L"
	if geo.Orientation == OrientationPortrait {
		orientation = "P"
	}

	fontDir := ""
	if g.options.FontPath != "" {
		fontDir = filepath.Dir(g.options.FontPath)
	}

	pdf := gofpdf.New(orientation, "mm", "A4", fontDir)
	pdf.SetMargins(geo.Margin, geo.Margin, geo.Margin)
	pdf.SetAutoPageBreak(false, geo.Margin)

	r := &renderer{pdf: pdf, geo: geo, options: g.options}
	r.setupFont()

	pdf.SetHeaderFunc(r.drawBorder)
	return r
}

const customFontFamily = "certificate"

// setupFont registers the custom TTF when available and falls back to a core font
func (r *renderer) setupFont() {
	r.family = r.options.FontFamily
	if r.family == "" {
		r.family = "Helvetica"
	}
	r.tr = r.pdf.UnicodeTranslatorFromDescriptor("")

	path := r.options.FontPath
	if path == "" {
		return
	}
	if _, err := os.Stat(path); err != nil {
		return
	}

	file := filepath.Base(path)
	r.pdf.AddUTF8Font(customFontFamily, "", file)
	r.pdf.AddUTF8Font(customFontFamily, "B", file)
	if !r.pdf.Ok() {
		r.pdf.ClearError()
		return
	}

	r.family = customFontFamily
	r.utf8 = true
	r.tr = func(s string) string { return s }
}

func (r *renderer) setFont(bold bool, size float64) {
	style := ""
	if bold {
		style = "B"
	}
	r.pdf.SetFont(r.family, style, size)
}

func (r *renderer) setColor(c Color) {
	r.pdf.SetTextColor(c.R, c.G, c.B)
}

// countLines measures wrapping with the same font metrics used for drawing
func (r *renderer) countLines(text string, bold bool, fontSize, width float64) int {
	r.setFont(bold, fontSize)
	return len(r.split(text, width))
}

func (r *renderer) split(text string, width float64) []string {
	if r.utf8 {
		return r.pdf.SplitText(text, width)
	}
	raw := r.pdf.SplitLines([]byte(r.tr(text)), width)
	lines := make([]string, len(raw))
	for i, l := range raw {
		lines[i] = string(l)
	}
	return lines
}

// needsUnicodeFont reports whether any text falls outside what the cp1252 core fonts can show
func needsUnicodeFont(content CertificateContent) bool {
	texts := []string{
		content.Title, content.Certifies, content.Recipient, content.Helper, content.Item,
		content.IssuedOn, content.SignatureCaption, content.ValidationCaption,
	}
	for _, text := range texts {
		for _, c := range text {
			if c > 0xff && !strings.ContainsRune(cp1252Extras, c) {
				return true
			}
		}
	}
	return false
}

// cp1252Extras are the characters cp1252 maps into 0x80-0x9f
const cp1252Extras = "€‚ƒ„…†‡ˆ‰Š‹ŒŽ‘’“”•–—˜™š›œžŸ"

// registerImage validates and registers an image; any failure yields "" and leaves the document usable
func (r *renderer) registerImage(path string) string {
	if path == "" {
		return ""
	}

	f, err := os.Open(path)
	if err != nil {
		return ""
	}
	_, format, err := image.DecodeConfig(f)
	f.Close()
	if err != nil {
		return ""
	}

	r.pdf.RegisterImageOptions(path, gofpdf.ImageOptions{ImageType: format})
	if !r.pdf.Ok() {
		r.pdf.ClearError()
		return ""
	}
	return path
}

func (r *renderer) drawBorder() {
	b := r.geo.Border
	c := r.options.BorderColor
	r.pdf.SetDrawColor(c.R, c.G, c.B)
	r.pdf.SetLineWidth(r.pdf.PointConvert(r.options.BorderWidth))
	r.pdf.Rect(b.X, b.Y, b.W, b.H, "D")
	r.pdf.SetDrawColor(0, 0, 0)
	r.pdf.SetLineWidth(r.pdf.PointConvert(1))
}

func (r *renderer) drawContent(elements []element, scale float64) {
	area := r.geo.Content
	r.pdf.SetY(area.Y)

	for _, e := range elements {
		switch b := e.block.(type) {
		case ImageBlock:
			size := b.Size * ImageScale(scale)
			x := area.X + (area.W-size)/2
			r.pdf.ImageOptions(e.image, x, r.pdf.GetY(), size, size, false, gofpdf.ImageOptions{}, 0, "")
			r.pdf.SetY(r.pdf.GetY() + b.Height(scale))
		case TextBlock:
			fontSize, lineHeight, spaceAfter := e.style.Scaled(scale)
			r.setFont(e.style.Bold, fontSize)
			r.setColor(e.style.Color)
			// draw exactly the lines that were measured
			lines := r.split(e.text, area.W)
			if len(lines) == 0 {
				lines = []string{""}
			}
			for _, line := range lines {
				r.pdf.SetX(area.X)
				r.pdf.CellFormat(area.W, lineHeight, line, "", 1, "C", false, 0, "")
			}
			r.pdf.SetY(r.pdf.GetY() + spaceAfter)
		default:
			r.pdf.SetY(r.pdf.GetY() + e.block.Height(scale))
		}
	}
}

// drawFooter renders the fixed-height footer at full scale
func (r *renderer) drawFooter(content CertificateContent, signature string) {
	o := r.options
	area := r.geo.Footer
	y := area.Y

	if signature != "" {
		r.pdf.ImageOptions(signature, area.X, y, o.SignatureWidth, o.SignatureHeight, false, gofpdf.ImageOptions{}, 0, "")
	}
	y += o.SignatureHeight

	_, captionLine, _ := o.Signature.Scaled(1)
	r.setFont(o.Signature.Bold, o.Signature.FontSize)
	r.setColor(o.Signature.Color)
	r.pdf.SetXY(area.X, y)
	r.pdf.MultiCell(area.W, captionLine, r.tr(content.SignatureCaption+" "+signatureRule), "", "L", false)

	// validation caption and QR share one bottom-aligned row
	textWidth := area.W - o.QRSize
	_, lineHeight, _ := o.Body.Scaled(1)
	lines := r.countLines(content.ValidationCaption, o.Body.Bold, o.Body.FontSize, textWidth)
	if lines < 1 {
		lines = 1
	}
	bottom := area.Bottom()

	r.setFont(o.Body.Bold, o.Body.FontSize)
	r.setColor(o.Body.Color)
	r.pdf.SetXY(area.X, bottom-float64(lines)*lineHeight)
	r.pdf.MultiCell(textWidth, lineHeight, r.tr(content.ValidationCaption), "", "L", false)

	r.pdf.ImageOptions(qrImageName, area.X+textWidth, bottom-o.QRSize, o.QRSize, o.QRSize, false, gofpdf.ImageOptions{ImageType: "PNG"}, 0, "")
}

const signatureRule = "_________________________"
