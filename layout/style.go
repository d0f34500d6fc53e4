package layout

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ByLCY/vitae/binding"
	"github.com/ByLCY/vitae/dsl"
)

// Style collects every constant the engine lays out with. Lengths are mm,
// font sizes are pt.
type Style struct {
	PageWidth  float64
	PageHeight float64
	TopMargin  float64
	// PageBottom is the cursor position past which the next line starts a new page.
	PageBottom float64
	// LineFactor converts a font size in pt into the cursor advance in mm.
	LineFactor float64

	Accent     Color
	Text       Color
	BannerText Color

	Banner BannerStyle

	BodyX        float64
	BulletX      float64
	SummaryWidth float64
	BulletWidth  float64

	NameSize    float64
	ContactSize float64
	BodySize    float64
	HeadingSize float64
	LabelSize   float64
	SmallSize   float64

	Meta MetaTemplate
	// FileName is a binding template for the exported file name.
	FileName string
}

// BannerStyle describes the colored band drawn before each section.
type BannerStyle struct {
	X         float64
	Width     float64
	Height    float64
	Offset    float64 // band top relative to the cursor
	GapBefore float64
	GapAfter  float64
	TitleX    float64
	TitleSize float64
}

// MetaTemplate holds binding templates for the PDF document info.
type MetaTemplate struct {
	Title    string
	Author   string
	Subject  string
	Creator  string
	Keywords []string
}

// DefaultStyle returns the A4 layout the CV exporter has always produced.
func DefaultStyle() Style {
	return Style{
		PageWidth:  210,
		PageHeight: 297,
		TopMargin:  20,
		PageBottom: 270,
		LineFactor: 0.5,

		Accent:     Color{R: 59, G: 130, B: 246},
		Text:       Color{R: 0, G: 0, B: 0},
		BannerText: Color{R: 255, G: 255, B: 255},

		Banner: BannerStyle{
			X:         10,
			Width:     190,
			Height:    8,
			Offset:    -4,
			GapBefore: 5,
			GapAfter:  3,
			TitleX:    12,
			TitleSize: 12,
		},

		BodyX:        12,
		BulletX:      15,
		SummaryWidth: 180,
		BulletWidth:  175,

		NameSize:    24,
		ContactSize: 10,
		BodySize:    10,
		HeadingSize: 11,
		LabelSize:   10,
		SmallSize:   9,

		Meta: MetaTemplate{
			Title:   "${personal_info.name} - CV",
			Author:  "${personal_info.name}",
			Subject: "Curriculum Vitae",
			Creator: "vitae",
		},
		FileName: "CV.pdf",
	}
}

// Resolve interpolates the templates against data.
func (m MetaTemplate) Resolve(data any) DocumentMeta {
	meta := DocumentMeta{
		Title:   binding.Interpolate(m.Title, data),
		Author:  binding.Interpolate(m.Author, data),
		Subject: binding.Interpolate(m.Subject, data),
		Creator: binding.Interpolate(m.Creator, data),
	}
	for _, kw := range m.Keywords {
		if v := strings.TrimSpace(binding.Interpolate(kw, data)); v != "" {
			meta.Keywords = append(meta.Keywords, v)
		}
	}
	return meta
}

// StyleFromTheme 将主题 DSL 中的设置覆盖到 DefaultStyle 上。
// 未知的段落或键会返回带位置信息的错误。
func StyleFromTheme(theme *dsl.Theme) (Style, error) {
	style := DefaultStyle()
	if theme == nil {
		return style, nil
	}
	for _, section := range theme.Sections {
		apply, ok := themeSections[section.Name]
		if !ok {
			return Style{}, fmt.Errorf("%s: 未知的主题段落 %q", section.Pos, section.Name)
		}
		for _, setting := range section.Settings {
			if err := apply(&style, setting.Key, setting.Value); err != nil {
				return Style{}, fmt.Errorf("%s: %s.%s: %w", setting.Pos, section.Name, setting.Key, err)
			}
		}
	}
	if err := style.Validate(); err != nil {
		return Style{}, err
	}
	return style, nil
}

// Validate rejects styles that cannot make progress down a page.
func (s Style) Validate() error {
	switch {
	case s.PageWidth <= 0 || s.PageHeight <= 0:
		return fmt.Errorf("layout: 页面尺寸无效 %gx%g", s.PageWidth, s.PageHeight)
	case s.LineFactor <= 0:
		return fmt.Errorf("layout: line-factor 必须为正数，实际 %g", s.LineFactor)
	case s.PageBottom <= s.TopMargin:
		return fmt.Errorf("layout: bottom (%g) 必须大于 top (%g)", s.PageBottom, s.TopMargin)
	}
	return nil
}

type settingFunc func(style *Style, key string, value *dsl.Value) error

var themeSections = map[string]settingFunc{
	"page":   applyPage,
	"colors": applyColors,
	"text":   applyText,
	"wrap":   applyWrap,
	"banner": applyBanner,
	"meta":   applyMeta,
	"output": applyOutput,
}

func applyPage(style *Style, key string, value *dsl.Value) error {
	targets := map[string]*float64{
		"width":    &style.PageWidth,
		"height":   &style.PageHeight,
		"top":      &style.TopMargin,
		"bottom":   &style.PageBottom,
		"body-x":   &style.BodyX,
		"bullet-x": &style.BulletX,
	}
	if key == "size" {
		size, ok := pagePresets[strings.ToUpper(value.Text())]
		if !ok {
			return fmt.Errorf("暂不支持的纸张尺寸：%s", value.Text())
		}
		style.PageWidth, style.PageHeight = size[0], size[1]
		return nil
	}
	return setLength(targets, key, value)
}

var pagePresets = map[string][2]float64{
	"A4":     {210, 297},
	"A5":     {148, 210},
	"LETTER": {215.9, 279.4},
}

func applyColors(style *Style, key string, value *dsl.Value) error {
	targets := map[string]*Color{
		"accent":      &style.Accent,
		"text":        &style.Text,
		"banner-text": &style.BannerText,
	}
	target, ok := targets[key]
	if !ok {
		return fmt.Errorf("未知的键")
	}
	if value.Color == nil {
		return fmt.Errorf("需要 #RGB 或 #RRGGBB 颜色，实际 %q", value.Text())
	}
	c, err := parseColor(*value.Color)
	if err != nil {
		return err
	}
	*target = c
	return nil
}

func applyText(style *Style, key string, value *dsl.Value) error {
	if key == "line-factor" {
		f, err := strconv.ParseFloat(strings.TrimSuffix(value.Text(), "x"), 64)
		if err != nil {
			return fmt.Errorf("无法解析倍数 %q", value.Text())
		}
		style.LineFactor = f
		return nil
	}
	targets := map[string]*float64{
		"name":    &style.NameSize,
		"contact": &style.ContactSize,
		"body":    &style.BodySize,
		"heading": &style.HeadingSize,
		"label":   &style.LabelSize,
		"small":   &style.SmallSize,
	}
	target, ok := targets[key]
	if !ok {
		return fmt.Errorf("未知的键")
	}
	size, err := parseFontSize(value)
	if err != nil {
		return err
	}
	*target = size
	return nil
}

func applyWrap(style *Style, key string, value *dsl.Value) error {
	return setLength(map[string]*float64{
		"summary": &style.SummaryWidth,
		"bullet":  &style.BulletWidth,
	}, key, value)
}

func applyBanner(style *Style, key string, value *dsl.Value) error {
	if key == "title-size" {
		size, err := parseFontSize(value)
		if err != nil {
			return err
		}
		style.Banner.TitleSize = size
		return nil
	}
	return setLength(map[string]*float64{
		"x":          &style.Banner.X,
		"width":      &style.Banner.Width,
		"height":     &style.Banner.Height,
		"offset":     &style.Banner.Offset,
		"gap-before": &style.Banner.GapBefore,
		"gap-after":  &style.Banner.GapAfter,
		"title-x":    &style.Banner.TitleX,
	}, key, value)
}

func applyMeta(style *Style, key string, value *dsl.Value) error {
	switch key {
	case "title":
		style.Meta.Title = value.Text()
	case "author":
		style.Meta.Author = value.Text()
	case "subject":
		style.Meta.Subject = value.Text()
	case "creator":
		style.Meta.Creator = value.Text()
	case "keywords":
		style.Meta.Keywords = strings.Split(value.Text(), ",")
	default:
		return fmt.Errorf("未知的键")
	}
	return nil
}

func applyOutput(style *Style, key string, value *dsl.Value) error {
	if key != "filename" {
		return fmt.Errorf("未知的键")
	}
	style.FileName = value.Text()
	return nil
}

func setLength(targets map[string]*float64, key string, value *dsl.Value) error {
	target, ok := targets[key]
	if !ok {
		return fmt.Errorf("未知的键")
	}
	if value.Number == nil {
		return fmt.Errorf("需要长度值，实际 %q", value.Text())
	}
	l, err := ParseLength(*value.Number)
	if err != nil {
		return err
	}
	*target = l.ToMM()
	return nil
}

// parseFontSize 解析字号；未带单位时按 pt 处理。
func parseFontSize(value *dsl.Value) (float64, error) {
	if value.Number == nil {
		return 0, fmt.Errorf("需要字号，实际 %q", value.Text())
	}
	l, err := ParseLength(*value.Number)
	if err != nil {
		return 0, err
	}
	if l.Unit == UnitNone {
		l.Unit = UnitPT
	}
	size := l.ToPT()
	if size <= 0 {
		return 0, fmt.Errorf("字号必须为正数，实际 %q", *value.Number)
	}
	return size, nil
}

func parseColor(value string) (Color, error) {
	hex := strings.TrimPrefix(value, "#")
	if len(hex) == 3 {
		hex = strings.Repeat(hex[0:1], 2) + strings.Repeat(hex[1:2], 2) + strings.Repeat(hex[2:3], 2)
	}
	if len(hex) != 6 && len(hex) != 8 {
		return Color{}, fmt.Errorf("颜色值 %s 无法解析", value)
	}
	var rgb [3]int
	for i := range rgb {
		v, err := strconv.ParseUint(hex[2*i:2*i+2], 16, 8)
		if err != nil {
			return Color{}, fmt.Errorf("颜色值 %s 无法解析", value)
		}
		rgb[i] = int(v)
	}
	return Color{R: rgb[0], G: rgb[1], B: rgb[2]}, nil
}
