package renderer

import (
	"errors"
	"fmt"

	"github.com/ByLCY/vitae/layout"
)

// ErrEmptyResult is returned when there is nothing to render.
var ErrEmptyResult = errors.New("renderer: 缺少可渲染的页面")

// Renderer 将布局结果输出为最终文件，例如 PDF。
// Render 返回生成的二进制数据以及可能的错误。
type Renderer interface {
	Render(result *layout.Result) ([]byte, error)
}

// Backend measures text for layout and encodes the laid out pages with the
// same font metrics.
type Backend interface {
	Renderer
	layout.Typesetter
}

// Coverage is implemented by backends whose fonts cannot draw every rune.
// Unsupported lists, once each and in order of appearance, the runes of a
// result that would be substituted on output.
type Coverage interface {
	Unsupported(result *layout.Result) []rune
}

// CheckResult reports ErrEmptyResult for a nil result or one without pages.
func CheckResult(result *layout.Result) error {
	if result == nil || len(result.Pages) == 0 {
		return ErrEmptyResult
	}
	for i, page := range result.Pages {
		if page.Width <= 0 || page.Height <= 0 {
			return fmt.Errorf("renderer: 第 %d 页尺寸无效 %gx%g", i+1, page.Width, page.Height)
		}
	}
	return nil
}
