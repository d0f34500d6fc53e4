package layout

import (
	"fmt"
	"strings"

	"github.com/ByLCY/vitae/resume"
)

// 各段落的标题，按输出顺序排列。
const (
	SectionSummary        = "PROFESSIONAL SUMMARY"
	SectionExperience     = "PROFESSIONAL EXPERIENCE"
	SectionSkills         = "SKILLS"
	SectionEducation      = "EDUCATION"
	SectionCertifications = "CERTIFICATIONS"
	SectionAchievements   = "ACHIEVEMENTS"
)

// Bullet prefixes wrapped list items.
const Bullet = "• "

const (
	nameGap      = 10.0 // 姓名之后
	contactGap   = 5.0  // 联系方式行之后
	headerGap    = 10.0 // 主页链接行之后
	entryMetaGap = 2.0  // 经历的 "地点 | 时间" 行之后
	entryGap     = 3.0  // 每条经历/教育之后
	listGap      = 2.0  // 技能组与证书列表之后
)

// Build 根据简历数据生成分页的绘制指令。
//
// 每次调用拥有独立的游标，可并发调用。除缺少排版后端、姓名为空或测量失败外不会出错。
func Build(doc resume.Document, opts BuildOptions) (*Result, error) {
	if opts.Typesetter == nil {
		return nil, ErrNoTypesetter
	}
	if strings.TrimSpace(doc.PersonalInfo.Name) == "" {
		return nil, resume.ErrMissingName
	}
	style := DefaultStyle()
	if opts.Style != nil {
		style = *opts.Style
	}
	if err := style.Validate(); err != nil {
		return nil, err
	}

	e := newEngine(style, opts.Typesetter)
	steps := []func(resume.Document) error{
		e.header,
		e.summary,
		e.experience,
		e.skills,
		e.education,
		e.certifications,
		e.achievements,
	}
	for _, step := range steps {
		if err := step(doc); err != nil {
			return nil, err
		}
	}
	return &Result{
		Pages: e.collector.pages(),
		Meta:  style.Meta.Resolve(doc.Data()),
	}, nil
}

type pageAccumulator struct {
	ops []Op
}

func (p *pageAccumulator) add(op Op) {
	p.ops = append(p.ops, op)
}

type pageCollector struct {
	width  float64
	height float64
	accs   []*pageAccumulator
}

func newPageCollector(width, height float64) *pageCollector {
	return &pageCollector{width: width, height: height}
}

func (pc *pageCollector) newPage() *pageAccumulator {
	acc := &pageAccumulator{}
	pc.accs = append(pc.accs, acc)
	return acc
}

func (pc *pageCollector) pages() []Page {
	out := make([]Page, len(pc.accs))
	for i, acc := range pc.accs {
		out[i] = Page{Width: pc.width, Height: pc.height, Ops: acc.ops}
	}
	return out
}

// cursor 记录当前页与基线纵坐标（mm），只在一次 Build 内有效。
type cursor struct {
	y    float64
	page *pageAccumulator
}

type engine struct {
	style     Style
	ts        Typesetter
	collector *pageCollector
	cur       cursor
}

func newEngine(style Style, ts Typesetter) *engine {
	collector := newPageCollector(style.PageWidth, style.PageHeight)
	return &engine{
		style:     style,
		ts:        ts,
		collector: collector,
		cur:       cursor{y: style.TopMargin, page: collector.newPage()},
	}
}

func (e *engine) pageBreak() {
	e.cur.page = e.collector.newPage()
	e.cur.y = e.style.TopMargin
}

func (e *engine) advance(dy float64) { e.cur.y += dy }

func (e *engine) setTextColor(c Color) {
	e.cur.page.add(Op{Kind: OpTextColor, Color: &c})
}

func (e *engine) place(content string, x float64, font Font, align Align, role Role) error {
	width, err := e.ts.TextWidth(content, font)
	if err != nil {
		return fmt.Errorf("layout: 测量 %q 失败: %w", content, err)
	}
	e.cur.page.add(Op{Kind: OpText, Text: &TextOp{
		Content:  content,
		X:        x,
		Y:        e.cur.y,
		FontSize: font.Size,
		Weight:   font.Weight,
		Align:    align,
		Width:    width,
		Role:     role,
	}})
	return nil
}

// line 是唯一会触发分页的绘制步骤：游标越过 PageBottom 时先换页，绘制后按字号前进。
func (e *engine) line(content string, x float64, font Font, role Role) error {
	if e.cur.y > e.style.PageBottom {
		e.pageBreak()
	}
	if err := e.place(content, x, font, AlignLeft, role); err != nil {
		return err
	}
	e.advance(font.Size * e.style.LineFactor)
	return nil
}

func (e *engine) wrapped(content string, x, width float64, font Font) error {
	lines, err := WrapText(e.ts, content, width, font)
	if err != nil {
		return err
	}
	for _, ln := range lines {
		if err := e.line(ln.Content, x, font, RoleBody); err != nil {
			return err
		}
	}
	return nil
}

// banner 绘制段落色带。色带本身不做分页检查，标题行走 line 的分页逻辑。
func (e *engine) banner(title string) error {
	b := e.style.Banner
	e.advance(b.GapBefore)
	e.cur.page.add(Op{Kind: OpFillRect, Rect: &RectOp{
		X:      b.X,
		Y:      e.cur.y + b.Offset,
		Width:  b.Width,
		Height: b.Height,
		Fill:   e.style.Accent,
	}})
	e.setTextColor(e.style.BannerText)
	if err := e.line(title, b.TitleX, bold(b.TitleSize), RoleBanner); err != nil {
		return err
	}
	e.setTextColor(e.style.Text)
	e.advance(b.GapAfter)
	return nil
}

func (e *engine) header(doc resume.Document) error {
	info := doc.PersonalInfo
	center := e.style.PageWidth / 2

	e.setTextColor(e.style.Accent)
	if err := e.place(info.Name, center, bold(e.style.NameSize), AlignCenter, RoleName); err != nil {
		return err
	}
	e.advance(nameGap)

	e.setTextColor(e.style.Text)
	contact := joinNonEmpty(" | ", info.Email, info.Phone, info.Location)
	if contact != "" {
		if err := e.place(contact, center, normal(e.style.ContactSize), AlignCenter, RoleContact); err != nil {
			return err
		}
	}
	e.advance(contactGap)
	if info.ProfileURL != "" {
		if err := e.place(info.ProfileURL, center, normal(e.style.ContactSize), AlignCenter, RoleContact); err != nil {
			return err
		}
	}
	e.advance(headerGap)
	return nil
}

func (e *engine) summary(doc resume.Document) error {
	if doc.PersonalInfo.Summary == "" {
		return nil
	}
	if err := e.banner(SectionSummary); err != nil {
		return err
	}
	return e.wrapped(doc.PersonalInfo.Summary, e.style.BodyX, e.style.SummaryWidth, normal(e.style.BodySize))
}

func (e *engine) experience(doc resume.Document) error {
	if len(doc.Experience) == 0 {
		return nil
	}
	if err := e.banner(SectionExperience); err != nil {
		return err
	}
	for _, exp := range doc.Experience {
		if err := e.line(exp.Title+" at "+exp.Organization, e.style.BodyX, bold(e.style.HeadingSize), RoleBody); err != nil {
			return err
		}
		if err := e.line(exp.Location+" | "+exp.Duration, e.style.BodyX, normal(e.style.SmallSize), RoleBody); err != nil {
			return err
		}
		e.advance(entryMetaGap)
		for _, resp := range exp.Responsibilities {
			if err := e.wrapped(Bullet+resp, e.style.BulletX, e.style.BulletWidth, normal(e.style.SmallSize)); err != nil {
				return err
			}
		}
		e.advance(entryGap)
	}
	return nil
}

// skills 的列表行不折行，与证书一致。
func (e *engine) skills(doc resume.Document) error {
	if doc.Skills.Empty() {
		return nil
	}
	if err := e.banner(SectionSkills); err != nil {
		return err
	}
	groups := []struct {
		label string
		items []string
	}{
		{"Technical Skills:", doc.Skills.Technical},
		{"Tools & Technologies:", doc.Skills.Tools},
		{"Soft Skills:", doc.Skills.Soft},
	}
	for _, g := range groups {
		if len(g.items) == 0 {
			continue
		}
		if err := e.line(g.label, e.style.BodyX, bold(e.style.LabelSize), RoleBody); err != nil {
			return err
		}
		if err := e.line(strings.Join(g.items, ", "), e.style.BodyX, normal(e.style.SmallSize), RoleBody); err != nil {
			return err
		}
		e.advance(listGap)
	}
	return nil
}

func (e *engine) education(doc resume.Document) error {
	if len(doc.Education) == 0 {
		return nil
	}
	if err := e.banner(SectionEducation); err != nil {
		return err
	}
	for _, edu := range doc.Education {
		if err := e.line(edu.Degree, e.style.BodyX, bold(e.style.HeadingSize), RoleBody); err != nil {
			return err
		}
		if err := e.line(edu.Institution+" | "+edu.Duration, e.style.BodyX, normal(e.style.SmallSize), RoleBody); err != nil {
			return err
		}
		if edu.Details != "" {
			if err := e.line(edu.Details, e.style.BodyX, normal(e.style.SmallSize), RoleBody); err != nil {
				return err
			}
		}
		e.advance(entryGap)
	}
	return nil
}

func (e *engine) certifications(doc resume.Document) error {
	if len(doc.Certifications) == 0 {
		return nil
	}
	if err := e.banner(SectionCertifications); err != nil {
		return err
	}
	for _, cert := range doc.Certifications {
		if err := e.line(Bullet+cert, e.style.BodyX, normal(e.style.SmallSize), RoleBody); err != nil {
			return err
		}
	}
	e.advance(listGap)
	return nil
}

func (e *engine) achievements(doc resume.Document) error {
	if len(doc.Achievements) == 0 {
		return nil
	}
	if err := e.banner(SectionAchievements); err != nil {
		return err
	}
	for _, ach := range doc.Achievements {
		if err := e.wrapped(Bullet+ach, e.style.BodyX, e.style.BulletWidth, normal(e.style.SmallSize)); err != nil {
			return err
		}
	}
	return nil
}

func bold(size float64) Font   { return Font{Size: size, Weight: WeightBold} }
func normal(size float64) Font { return Font{Size: size, Weight: WeightNormal} }

func joinNonEmpty(sep string, parts ...string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}
