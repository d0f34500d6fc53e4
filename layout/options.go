package layout

import "errors"

// ErrNoTypesetter is returned by Build when BuildOptions carries no Typesetter.
var ErrNoTypesetter = errors.New("layout: 缺少排版后端 Typesetter")

// BuildOptions 配置布局阶段所需的依赖。Style 为空时使用 DefaultStyle。
type BuildOptions struct {
	Typesetter Typesetter
	Style      *Style
}

// Typesetter 负责测量文本宽度；返回值单位为毫米（mm）。
type Typesetter interface {
	TextWidth(content string, font Font) (float64, error)
}
