package layout

// 该文件定义布局结果：按页有序的绘制指令，供渲染器与调试 JSON 共用。
// 坐标单位为毫米（mm），字号单位为点（pt）。

// Result 保存布局后的页面与文档元信息。
type Result struct {
	Pages []Page       `json:"pages"`
	Meta  DocumentMeta `json:"meta"`
}

// Sections returns the banner titles in the order they were emitted.
func (r *Result) Sections() []string {
	if r == nil {
		return nil
	}
	var out []string
	for _, page := range r.Pages {
		for _, op := range page.Ops {
			if op.Kind == OpText && op.Text.Role == RoleBanner {
				out = append(out, op.Text.Content)
			}
		}
	}
	return out
}

// Page 记录页面尺寸与按顺序执行的绘制指令。
type Page struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Ops    []Op    `json:"ops"`
}

// Texts returns the text instructions of the page in drawing order.
func (p Page) Texts() []TextOp {
	var out []TextOp
	for _, op := range p.Ops {
		if op.Kind == OpText {
			out = append(out, *op.Text)
		}
	}
	return out
}

// OpKind 区分绘制指令类型。
type OpKind string

const (
	OpText      OpKind = "text"
	OpFillRect  OpKind = "fill-rect"
	OpTextColor OpKind = "text-color"
)

// Op 是一条绘制指令；根据 Kind 只有对应字段非空。
type Op struct {
	Kind  OpKind  `json:"kind"`
	Text  *TextOp `json:"text,omitempty"`
	Rect  *RectOp `json:"rect,omitempty"`
	Color *Color  `json:"color,omitempty"`
}

// TextOp 在 (X, Y) 处绘制单行文本，Y 为基线位置。
type TextOp struct {
	Content  string  `json:"content"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	FontSize float64 `json:"fontSize"`
	Weight   Weight  `json:"weight"`
	Align    Align   `json:"align,omitempty"`
	Width    float64 `json:"width"` // 排版后端测得的宽度（mm）
	Role     Role    `json:"role,omitempty"`
}

// Font returns the font the text is drawn with.
func (t TextOp) Font() Font { return Font{Size: t.FontSize, Weight: t.Weight} }

// RectOp 表示一个填充矩形（不描边）。
type RectOp struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Fill   Color   `json:"fill"`
}

// Color 采用 0-255 的 RGB 数值。
type Color struct {
	R int `json:"r"`
	G int `json:"g"`
	B int `json:"b"`
}

// Weight is the font weight of a text line.
type Weight string

const (
	WeightNormal Weight = "normal"
	WeightBold   Weight = "bold"
)

// Align is the horizontal anchor of a text line relative to its X.
type Align string

const (
	AlignLeft   Align = "left"
	AlignCenter Align = "center"
)

// Role tags what a text line belongs to.
type Role string

const (
	RoleName    Role = "name"
	RoleContact Role = "contact"
	RoleBanner  Role = "banner"
	RoleBody    Role = "body"
)

// Font 描述测量与绘制所需的字体参数。
type Font struct {
	Size   float64 `json:"size"` // pt
	Weight Weight  `json:"weight"`
}

// Bold reports whether the font uses the bold weight.
func (f Font) Bold() bool { return f.Weight == WeightBold }

// TextLine 表示折行后的一行文本及其宽度（mm）。
type TextLine struct {
	Content string  `json:"content"`
	Width   float64 `json:"width"`
}

// DocumentMeta 保存 PDF 元信息。
type DocumentMeta struct {
	Title    string   `json:"title"`
	Author   string   `json:"author"`
	Subject  string   `json:"subject"`
	Creator  string   `json:"creator"`
	Keywords []string `json:"keywords"`
}
