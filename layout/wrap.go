package layout

import (
	"fmt"
	"strings"
)

// WrapText 使用贪心算法将 content 拆成宽度不超过 width 的行。
//
// 空白处优先断行，行间的分隔空白被丢弃；显式换行符总是开启新行（空段落产生空行）；
// 单个词超过宽度时按字符拆分。宽度由 ts 以 font 测量，单位为 mm。
func WrapText(ts Typesetter, content string, width float64, font Font) ([]TextLine, error) {
	if ts == nil {
		return nil, ErrNoTypesetter
	}
	w := &wrapper{ts: ts, font: font, limit: width}
	content = strings.ReplaceAll(content, "\r", "")
	for _, para := range strings.Split(content, "\n") {
		if err := w.paragraph(para); err != nil {
			return nil, err
		}
	}
	return w.lines, nil
}

type wrapper struct {
	ts    Typesetter
	font  Font
	limit float64

	lines   []TextLine
	current string
	width   float64
}

func (w *wrapper) measure(s string) (float64, error) {
	v, err := w.ts.TextWidth(s, w.font)
	if err != nil {
		return 0, fmt.Errorf("layout: 测量文本宽度失败: %w", err)
	}
	return v, nil
}

func (w *wrapper) fits(width float64) bool {
	return w.limit <= 0 || width <= w.limit
}

func (w *wrapper) emit() {
	w.lines = append(w.lines, TextLine{Content: w.current, Width: w.width})
	w.current = ""
	w.width = 0
}

func (w *wrapper) paragraph(para string) error {
	words := strings.Fields(para)
	if len(words) == 0 {
		w.emit()
		return nil
	}
	for _, word := range words {
		candidate := word
		if w.current != "" {
			candidate = w.current + " " + word
		}
		cw, err := w.measure(candidate)
		if err != nil {
			return err
		}
		if w.fits(cw) {
			w.current, w.width = candidate, cw
			continue
		}
		if w.current != "" {
			w.emit()
		}
		ww, err := w.measure(word)
		if err != nil {
			return err
		}
		if w.fits(ww) {
			w.current, w.width = word, ww
			continue
		}
		if err := w.splitWord(word); err != nil {
			return err
		}
	}
	w.emit()
	return nil
}

// splitWord 在词内按字符拆分，最后一段留在当前行中继续累积。
func (w *wrapper) splitWord(word string) error {
	runes := []rune(word)
	start := 0
	for start < len(runes) {
		end := start + 1
		chunkWidth, err := w.measure(string(runes[start:end]))
		if err != nil {
			return err
		}
		for end < len(runes) {
			next, err := w.measure(string(runes[start : end+1]))
			if err != nil {
				return err
			}
			if !w.fits(next) {
				break
			}
			chunkWidth = next
			end++
		}
		w.current, w.width = string(runes[start:end]), chunkWidth
		if end < len(runes) {
			w.emit()
		}
		start = end
	}
	return nil
}
