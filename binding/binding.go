package binding

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

var exprPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// DefaultFileName is used when a file name template resolves to nothing usable.
const DefaultFileName = "CV.pdf"

// Interpolate 将文本中的 ${path.to.value} 替换为 data 中的值。
// 支持 ${path|fallback}：路径不存在或值为空白时使用 fallback。
// 没有 fallback 且路径不存在时保留原占位符。
func Interpolate(text string, data any) string {
	if !strings.Contains(text, "${") {
		return text
	}
	return exprPattern.ReplaceAllStringFunc(text, func(match string) string {
		groups := exprPattern.FindStringSubmatch(match)
		if len(groups) < 2 {
			return match
		}
		path, fallback, hasFallback := strings.Cut(groups[1], "|")
		path = strings.TrimSpace(path)
		if path != "" {
			if val, ok := resolvePath(data, path); ok && val != nil {
				if s := strings.TrimSpace(fmt.Sprint(val)); s != "" {
					return s
				}
			}
		}
		if hasFallback {
			return strings.TrimSpace(fallback)
		}
		return match
	})
}

var unsafeFileChars = regexp.MustCompile(`[^\p{L}\p{N}._ -]+`)

// FileName 解析文件名模板并清理成可安全写入磁盘/响应头的 .pdf 文件名。
func FileName(tmpl string, data any) string {
	name := Interpolate(tmpl, data)
	if exprPattern.MatchString(name) {
		name = exprPattern.ReplaceAllString(name, "")
	}
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = unsafeFileChars.ReplaceAllString(name, "")
	name = strings.Join(strings.Fields(name), "_")
	name = strings.Trim(name, "._-")
	if name == "" || strings.EqualFold(name, "pdf") {
		return DefaultFileName
	}
	if !strings.EqualFold(filepath.Ext(name), ".pdf") {
		name += ".pdf"
	}
	return name
}

func resolvePath(data any, path string) (any, bool) {
	if data == nil {
		return nil, false
	}
	current := data
	for _, segment := range strings.Split(path, ".") {
		name, indexes := parseSegment(segment)
		if name != "" {
			var ok bool
			current, ok = descendMap(current, name)
			if !ok {
				return nil, false
			}
		}
		for _, idxStr := range indexes {
			idx, err := strconv.Atoi(idxStr)
			if err != nil {
				return nil, false
			}
			var ok bool
			current, ok = descendArray(current, idx)
			if !ok {
				return nil, false
			}
		}
	}
	return current, true
}

func parseSegment(segment string) (string, []string) {
	name := segment
	var indexes []string
	if i := strings.Index(segment, "["); i != -1 {
		name = segment[:i]
		rest := segment[i:]
		for len(rest) > 0 && rest[0] == '[' {
			end := strings.IndexByte(rest, ']')
			if end == -1 {
				break
			}
			indexes = append(indexes, rest[1:end])
			rest = rest[end+1:]
		}
	}
	return name, indexes
}

func descendMap(current any, key string) (any, bool) {
	switch c := current.(type) {
	case map[string]any:
		val, ok := c[key]
		return val, ok
	case map[string]string:
		val, ok := c[key]
		return val, ok
	default:
		return nil, false
	}
}

func descendArray(current any, idx int) (any, bool) {
	switch c := current.(type) {
	case []any:
		if idx < 0 || idx >= len(c) {
			return nil, false
		}
		return c[idx], true
	case []string:
		if idx < 0 || idx >= len(c) {
			return nil, false
		}
		return c[idx], true
	default:
		return nil, false
	}
}
