package deck

// EMUPerInch is the OOXML English Metric Unit scale.
const EMUPerInch = 914400

const pictureDPI = 150

type Rect struct {
	X int64
	Y int64
	W int64
	H int64
}

func Inches(v float64) int64 {
	return int64(v*EMUPerInch + 0.5)
}

// Pixels converts an EMU length to pixels at the picture resolution.
func Pixels(emu int64) int {
	return int((emu*pictureDPI + EMUPerInch/2) / EMUPerInch)
}

type TextStyle struct {
	SizePt       float64
	Bold         bool
	Color        string
	SpaceAfterPt float64
}

type Layout struct {
	Title      Rect
	Body       Rect
	TitleStyle TextStyle
	BodyStyle  TextStyle
}

type Theme struct {
	Width        int64
	Height       int64
	Font         string
	Title        Layout
	Content      Layout
	Conclusion   Layout
	Picture      Rect
	Caption      Rect
	CaptionStyle TextStyle
}

const (
	accentColor = "0066CC"
	bodyColor   = "444444"
)

// DefaultTheme is a 16:9 deck with the heading accent and body colors used on
// every slide.
func DefaultTheme() Theme {
	return Theme{
		Width:  12192000,
		Height: 6858000,
		Font:   "Calibri",
		Title: Layout{
			Title:      Rect{X: Inches(1), Y: Inches(2.33), W: Inches(11.33), H: Inches(1.6)},
			Body:       Rect{X: Inches(2), Y: Inches(4.25), W: Inches(9.33), H: Inches(1.9)},
			TitleStyle: TextStyle{SizePt: 44, Bold: true, Color: accentColor},
			BodyStyle:  TextStyle{SizePt: 18, Color: bodyColor},
		},
		Content: Layout{
			Title:      Rect{X: Inches(0.67), Y: Inches(0.3), W: Inches(12), H: Inches(1.25)},
			Body:       Rect{X: Inches(0.67), Y: Inches(1.75), W: Inches(6.1), H: Inches(4.95)},
			TitleStyle: TextStyle{SizePt: 32, Bold: true, Color: accentColor},
			BodyStyle:  TextStyle{SizePt: 18, Color: bodyColor, SpaceAfterPt: 12},
		},
		Conclusion: Layout{
			Title:      Rect{X: Inches(0.67), Y: Inches(0.3), W: Inches(12), H: Inches(1.25)},
			Body:       Rect{X: Inches(0.67), Y: Inches(1.75), W: Inches(12), H: Inches(4.95)},
			TitleStyle: TextStyle{SizePt: 36, Bold: true, Color: accentColor},
			BodyStyle:  TextStyle{SizePt: 20, Color: bodyColor, SpaceAfterPt: 12},
		},
		Picture:      Rect{X: Inches(7), Y: Inches(2), W: Inches(5), H: Inches(3.75)},
		Caption:      Rect{X: Inches(7), Y: Inches(5.8), W: Inches(5), H: Inches(0.4)},
		CaptionStyle: TextStyle{SizePt: 10, Color: bodyColor},
	}
}

func (t Theme) Layout(kind Kind) Layout {
	switch kind {
	case KindTitle:
		return t.Title
	case KindConclusion:
		return t.Conclusion
	default:
		return t.Content
	}
}

func (t Theme) FullBleed() Rect {
	return Rect{W: t.Width, H: t.Height}
}
