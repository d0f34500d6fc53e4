package canvasrenderer

import (
	"bytes"
	"fmt"
	"image/color"
	"os"
	"strings"
	"sync"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"

	"github.com/ByLCY/vitae/fonts"
	"github.com/ByLCY/vitae/layout"
	"github.com/ByLCY/vitae/renderer"
)

// Renderer draws layout results via github.com/tdewolff/canvas.
type Renderer struct {
	regular Resource
	bold    Resource

	fontMu sync.Mutex
	family *canvas.FontFamily
}

var (
	_ renderer.Renderer = (*Renderer)(nil)
	_ layout.Typesetter = (*Renderer)(nil)
)

// Options configures the canvas renderer. Empty resources fall back to the
// embedded Latin Modern Sans faces.
type Options struct {
	Regular Resource
	Bold    Resource
}

// Resource can be provided either by Bytes or by Path.
type Resource struct {
	Bytes []byte
	Path  string
}

// NewRenderer creates a renderer using the embedded fonts.
func NewRenderer() *Renderer { return NewRendererWithOptions(Options{}) }

// NewRendererWithOptions creates a renderer with injected font resources.
func NewRendererWithOptions(opts Options) *Renderer {
	return &Renderer{regular: opts.Regular, bold: opts.Bold}
}

// TextWidth implements layout.Typesetter; canvas measures in mm.
func (r *Renderer) TextWidth(content string, font layout.Font) (float64, error) {
	if content == "" {
		return 0, nil
	}
	face, err := r.fontFace(font, layout.Color{})
	if err != nil {
		return 0, err
	}
	return face.TextWidth(content), nil
}

// Render renders the result into a PDF byte slice.
func (r *Renderer) Render(result *layout.Result) ([]byte, error) {
	if err := renderer.CheckResult(result); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	writer := pdf.New(&buf, result.Pages[0].Width, result.Pages[0].Height, nil)
	applyMeta(writer, result.Meta)

	// 文字颜色是跨页延续的绘制状态。
	textColor := layout.Color{}
	for i, page := range result.Pages {
		if i > 0 {
			writer.NewPage(page.Width, page.Height)
		}
		c := canvas.New(page.Width, page.Height)
		ctx := canvas.NewContext(c)
		ctx.SetCoordSystem(canvas.CartesianIV) // 使坐标与布局保持左上角为原点

		var err error
		if textColor, err = r.drawPage(ctx, page, textColor); err != nil {
			return nil, err
		}
		c.RenderTo(writer)
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("写入 PDF 失败: %w", err)
	}
	return buf.Bytes(), nil
}

func applyMeta(writer *pdf.PDF, meta layout.DocumentMeta) {
	keywords := strings.Join(meta.Keywords, ", ")
	writer.SetInfo(meta.Title, meta.Subject, keywords, meta.Author, meta.Creator)
}

func (r *Renderer) drawPage(ctx *canvas.Context, page layout.Page, textColor layout.Color) (layout.Color, error) {
	for _, op := range page.Ops {
		switch op.Kind {
		case layout.OpTextColor:
			if op.Color != nil {
				textColor = *op.Color
			}
		case layout.OpFillRect:
			if op.Rect != nil {
				drawRect(ctx, *op.Rect)
			}
		case layout.OpText:
			if op.Text == nil || op.Text.Content == "" {
				continue
			}
			if err := r.drawText(ctx, *op.Text, textColor); err != nil {
				return textColor, err
			}
		}
	}
	return textColor, nil
}

// drawText 以 (X, Y) 为基线锚点绘制单行文本。
func (r *Renderer) drawText(ctx *canvas.Context, t layout.TextOp, col layout.Color) error {
	face, err := r.fontFace(t.Font(), col)
	if err != nil {
		return err
	}
	align := canvas.Left
	if t.Align == layout.AlignCenter {
		align = canvas.Center
	}
	ctx.DrawText(t.X, t.Y, canvas.NewTextLine(face, t.Content, align))
	return nil
}

// drawRect 绘制无描边的填充矩形。
func drawRect(ctx *canvas.Context, rc layout.RectOp) {
	ctx.SetFillColor(colorFromLayout(rc.Fill))
	ctx.SetStrokeColor(color.RGBA{0, 0, 0, 0})
	ctx.SetStrokeWidth(0)
	ctx.DrawPath(rc.X, rc.Y, canvas.Rectangle(rc.Width, rc.Height))
}

func (r *Renderer) fontFace(font layout.Font, col layout.Color) (*canvas.FontFace, error) {
	family, err := r.ensureFontFamily()
	if err != nil {
		return nil, err
	}
	style := canvas.FontRegular
	if font.Bold() {
		style = canvas.FontBold
	}
	return family.Face(font.Size, colorFromLayout(col), style, canvas.FontNormal), nil
}

func (r *Renderer) ensureFontFamily() (*canvas.FontFamily, error) {
	r.fontMu.Lock()
	defer r.fontMu.Unlock()
	if r.family != nil {
		return r.family, nil
	}

	family := canvas.NewFontFamily("vitae-sans")
	faces := []struct {
		res     Resource
		builtin string
		style   canvas.FontStyle
	}{
		{r.regular, fonts.SansRegular, canvas.FontRegular},
		{r.bold, fonts.SansBold, canvas.FontBold},
	}
	for _, f := range faces {
		data, err := loadFontBytes(f.res, f.builtin)
		if err != nil {
			return nil, err
		}
		if err := family.LoadFont(data, 0, f.style); err != nil {
			return nil, fmt.Errorf("加载字体 %s 失败: %w", f.builtin, err)
		}
	}
	r.family = family
	return family, nil
}

func loadFontBytes(res Resource, builtin string) ([]byte, error) {
	if len(res.Bytes) > 0 {
		return res.Bytes, nil
	}
	if res.Path != "" {
		data, err := os.ReadFile(res.Path)
		if err != nil {
			return nil, fmt.Errorf("读取字体 %s 失败: %w", res.Path, err)
		}
		return data, nil
	}
	return fonts.Load(builtin)
}

func colorFromLayout(c layout.Color) color.Color {
	return canvas.RGBA(float64(c.R)/255.0, float64(c.G)/255.0, float64(c.B)/255.0, 1.0)
}
