package pdf

import (
	"math"
	"strings"
)

// Orientation selects the page dimensions of a certificate
type Orientation string

const (
	OrientationPortrait  Orientation = "portrait"
	OrientationLandscape Orientation = "landscape"
)

// ParseOrientation maps user input to an Orientation, defaulting to landscape
func ParseOrientation(value string) Orientation {
	if strings.EqualFold(strings.TrimSpace(value), string(OrientationPortrait)) {
		return OrientationPortrait
	}
	return OrientationLandscape
}

// Page constants in millimetres (A4)
const (
	pageShortSide = 210.0
	pageLongSide  = 297.0

	PageMargin   = 20.0
	FooterHeight = 70.0
	BorderInset  = 15.0
)

// Scale search bounds
const (
	MaxScale  = 1.0
	MinScale  = 0.5
	ScaleStep = 0.05

	// BadgeShrinkThreshold is the trial scale below which the badge image shrinks too
	BadgeShrinkThreshold = 0.8
)

const pointsPerMM = 72.0 / 25.4

// Rect is an axis-aligned region on the page, origin top-left
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Bottom returns the Y coordinate of the lower edge
func (r Rect) Bottom() float64 {
	return r.Y + r.H
}

// Geometry describes the page and its two layout regions
type Geometry struct {
	Orientation Orientation `json:"orientation"`
	PageWidth   float64     `json:"page_width"`
	PageHeight  float64     `json:"page_height"`
	Margin      float64     `json:"margin"`
	Content     Rect        `json:"content"`
	Footer      Rect        `json:"footer"`
	Border      Rect        `json:"border"`
}

// NewGeometry computes page size, content/footer regions and the border for an orientation.
// The footer sits flush with the bottom margin; the content region fills the rest.
func NewGeometry(orientation Orientation) Geometry {
	width, height := pageShortSide, pageLongSide
	if orientation != OrientationPortrait {
		orientation = OrientationLandscape
		width, height = pageLongSide, pageShortSide
	}

	innerWidth := width - 2*PageMargin
	footerTop := height - PageMargin - FooterHeight

	return Geometry{
		Orientation: orientation,
		PageWidth:   width,
		PageHeight:  height,
		Margin:      PageMargin,
		Content: Rect{
			X: PageMargin,
			Y: PageMargin,
			W: innerWidth,
			H: footerTop - PageMargin,
		},
		Footer: Rect{
			X: PageMargin,
			Y: footerTop,
			W: innerWidth,
			H: FooterHeight,
		},
		Border: Rect{
			X: BorderInset,
			Y: BorderInset,
			W: width - 2*BorderInset,
			H: height - 2*BorderInset,
		},
	}
}

// Block is a content-region element whose height depends on the trial scale
type Block interface {
	Height(scale float64) float64
}

// ScaleCandidates returns trial scales from max down to min in step decrements
func ScaleCandidates(max, min, step float64) []float64 {
	if step <= 0 || max < min {
		return []float64{max}
	}

	n := int(math.Round((max - min) / step))
	candidates := make([]float64, 0, n+1)
	for i := 0; i <= n; i++ {
		candidates = append(candidates, roundScale(max-float64(i)*step))
	}
	return candidates
}

// FitScale returns the first candidate at which the blocks fit into available height.
// When none fits the smallest candidate is returned; overflow is tolerated.
func FitScale(blocks []Block, available float64, candidates []float64) float64 {
	if len(candidates) == 0 {
		return MaxScale
	}

	floor := candidates[0]
	for _, scale := range candidates {
		if scale < floor {
			floor = scale
		}
		if TotalHeight(blocks, scale) <= available+1e-9 {
			return scale
		}
	}
	return floor
}

// TotalHeight sums the measured heights of blocks at a scale
func TotalHeight(blocks []Block, scale float64) float64 {
	total := 0.0
	for _, b := range blocks {
		total += b.Height(scale)
	}
	return total
}

// ImageScale applies the badge asymmetry: images keep full size until text scale drops below the threshold
func ImageScale(scale float64) float64 {
	if scale < BadgeShrinkThreshold {
		return scale
	}
	return 1
}

// PointsToMM converts a typographic size to millimetres
func PointsToMM(points float64) float64 {
	return points / pointsPerMM
}

func roundScale(v float64) float64 {
	return math.Round(v*1000) / 1000
}

// Spacer is blank vertical space that shrinks with the text
type Spacer struct {
	Size float64
}

func (s Spacer) Height(scale float64) float64 {
	return s.Size * scale
}

// ImageBlock is an image plus its trailing gap; it only shrinks below BadgeShrinkThreshold
type ImageBlock struct {
	Size float64
	Gap  float64
}

func (b ImageBlock) Height(scale float64) float64 {
	return (b.Size + b.Gap) * ImageScale(scale)
}

// TextStyle describes a paragraph style at scale 1.0
type TextStyle struct {
	FontSize   float64 // points
	Leading    float64 // points
	SpaceAfter float64 // millimetres
	Bold       bool
	Color      Color
}

// Scaled returns font size, line height (mm) and trailing space (mm) at a scale
func (s TextStyle) Scaled(scale float64) (fontSize, lineHeight, spaceAfter float64) {
	return s.FontSize * scale, PointsToMM(s.Leading * scale), s.SpaceAfter * scale
}

// LineCounter reports how many lines text wraps into at a font size and width
type LineCounter func(text string, bold bool, fontSize, width float64) int

// TextBlock is a wrapped paragraph measured through a LineCounter
type TextBlock struct {
	Text  string
	Style TextStyle
	Width float64
	Lines LineCounter
}

func (b TextBlock) Height(scale float64) float64 {
	fontSize, lineHeight, spaceAfter := b.Style.Scaled(scale)
	lines := 1
	if b.Lines != nil {
		lines = b.Lines(b.Text, b.Style.Bold, fontSize, b.Width)
	}
	if lines < 1 {
		lines = 1
	}
	return float64(lines)*lineHeight + spaceAfter
}
