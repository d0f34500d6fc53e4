// Package fpdfrenderer encodes layout results with the PDF core fonts
// (Helvetica and Helvetica-Bold) via codeberg.org/go-pdf/fpdf.
//
// Core fonts only cover cp1252. Runes outside it are written as "." and are
// reported by Unsupported; the canvas backend embeds a full font instead.
package fpdfrenderer

import (
	"bytes"
	"fmt"
	"strings"
	"sync"
	"time"

	"codeberg.org/go-pdf/fpdf"
	"golang.org/x/text/encoding/charmap"

	"github.com/ByLCY/vitae/layout"
	"github.com/ByLCY/vitae/renderer"
)

const family = "Helvetica"

// Renderer draws layout results with fpdf and measures text with the same
// core font metrics.
type Renderer struct {
	opts Options

	mu       sync.Mutex
	measurer *fpdf.Fpdf
	tr       func(string) string
}

var (
	_ renderer.Renderer = (*Renderer)(nil)
	_ layout.Typesetter = (*Renderer)(nil)
	_ renderer.Coverage = (*Renderer)(nil)
)

// Options configures the fpdf renderer.
type Options struct {
	// Compress enables stream compression.
	Compress bool
	// CreationDate is stamped into the document info; the zero value uses
	// the Unix epoch so identical layouts encode identically.
	CreationDate time.Time
}

// NewRenderer creates a renderer with compression enabled.
func NewRenderer() *Renderer { return NewRendererWithOptions(Options{Compress: true}) }

// NewRendererWithOptions creates a renderer with explicit options.
func NewRendererWithOptions(opts Options) *Renderer {
	m := fpdf.New("P", "mm", "A4", "")
	return &Renderer{
		opts:     opts,
		measurer: m,
		tr:       m.UnicodeTranslatorFromDescriptor(""),
	}
}

// TextWidth implements layout.Typesetter. Text is translated to cp1252 first,
// the encoding core fonts are written in.
func (r *Renderer) TextWidth(content string, font layout.Font) (float64, error) {
	if content == "" {
		return 0, nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.measurer.SetFont(family, fontStyle(font), font.Size)
	w := r.measurer.GetStringWidth(r.tr(content))
	if err := r.measurer.Error(); err != nil {
		return 0, fmt.Errorf("fpdf: 测量文本失败: %w", err)
	}
	return w, nil
}

// Render renders the result into a PDF byte slice.
func (r *Renderer) Render(result *layout.Result) ([]byte, error) {
	if err := renderer.CheckResult(result); err != nil {
		return nil, err
	}
	first := result.Pages[0]
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: first.Width, Ht: first.Height},
	})
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCompression(r.opts.Compress)
	pdf.SetCreationDate(r.creationDate())
	applyMeta(pdf, result.Meta)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	for _, page := range result.Pages {
		pdf.AddPageFormat("P", fpdf.SizeType{Wd: page.Width, Ht: page.Height})
		for _, op := range page.Ops {
			drawOp(pdf, tr, op)
		}
		if err := pdf.Error(); err != nil {
			return nil, fmt.Errorf("fpdf: 绘制页面失败: %w", err)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("fpdf: 写入 PDF 失败: %w", err)
	}
	return buf.Bytes(), nil
}

// Unsupported implements renderer.Coverage: runes cp1252 cannot encode.
func (r *Renderer) Unsupported(result *layout.Result) []rune {
	if result == nil {
		return nil
	}
	var out []rune
	seen := map[rune]bool{}
	for _, page := range result.Pages {
		for _, t := range page.Texts() {
			for _, c := range t.Content {
				if seen[c] {
					continue
				}
				seen[c] = true
				if _, ok := charmap.Windows1252.EncodeRune(c); !ok {
					out = append(out, c)
				}
			}
		}
	}
	return out
}

func (r *Renderer) creationDate() time.Time {
	if r.opts.CreationDate.IsZero() {
		return time.Unix(0, 0).UTC()
	}
	return r.opts.CreationDate
}

func drawOp(pdf *fpdf.Fpdf, tr func(string) string, op layout.Op) {
	switch op.Kind {
	case layout.OpTextColor:
		if op.Color != nil {
			pdf.SetTextColor(op.Color.R, op.Color.G, op.Color.B)
		}
	case layout.OpFillRect:
		if rc := op.Rect; rc != nil {
			pdf.SetFillColor(rc.Fill.R, rc.Fill.G, rc.Fill.B)
			pdf.Rect(rc.X, rc.Y, rc.Width, rc.Height, "F")
		}
	case layout.OpText:
		if t := op.Text; t != nil && t.Content != "" {
			pdf.SetFont(family, fontStyle(t.Font()), t.FontSize)
			txt := tr(t.Content)
			x := t.X
			if t.Align == layout.AlignCenter {
				x -= pdf.GetStringWidth(txt) / 2
			}
			pdf.Text(x, t.Y, txt)
		}
	}
}

func applyMeta(pdf *fpdf.Fpdf, meta layout.DocumentMeta) {
	pdf.SetTitle(meta.Title, true)
	pdf.SetAuthor(meta.Author, true)
	pdf.SetSubject(meta.Subject, true)
	pdf.SetCreator(meta.Creator, true)
	if len(meta.Keywords) > 0 {
		pdf.SetKeywords(strings.Join(meta.Keywords, ", "), true)
	}
}

func fontStyle(font layout.Font) string {
	if font.Bold() {
		return "B"
	}
	return ""
}
