package fonts

import (
	"fmt"
	"strings"

	"github.com/go-fonts/latin-modern/lmsans10bold"
	"github.com/go-fonts/latin-modern/lmsans10regular"
)

// 内置字体：Latin Modern Sans（常规/粗体），供 canvas 渲染器测量与嵌入。
const (
	SansRegular = "sans-regular"
	SansBold    = "sans-bold"
)

var builtin = map[string][]byte{
	SansRegular: lmsans10regular.TTF,
	SansBold:    lmsans10bold.TTF,
}

// Load 返回内置字体的字节数据，name 可写为 "embed:sans-bold" 或直接 "sans-bold"。
func Load(name string) ([]byte, error) {
	key := strings.TrimPrefix(strings.TrimSpace(name), "embed:")
	data, ok := builtin[key]
	if !ok || len(data) == 0 {
		return nil, fmt.Errorf("读取内置字体 %s 失败: 未知字体", name)
	}
	return data, nil
}
