package layout

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ByLCY/vitae/resume"
)

// stubTypesetter 按字符数估算宽度，避免在布局测试中引入渲染器。
type stubTypesetter struct {
	perRune float64 // mm per rune per pt
	err     error
}

func (s stubTypesetter) TextWidth(content string, font Font) (float64, error) {
	if s.err != nil {
		return 0, s.err
	}
	w := float64(utf8.RuneCountInString(content)) * font.Size * s.perRune
	if font.Bold() {
		w *= 1.1
	}
	return w, nil
}

var ts = stubTypesetter{perRune: 0.2}

func build(t *testing.T, doc resume.Document) *Result {
	t.Helper()
	res, err := Build(doc, BuildOptions{Typesetter: ts})
	require.NoError(t, err)
	return res
}

func fullDocument() resume.Document {
	return resume.Document{
		PersonalInfo: resume.PersonalInfo{
			Name:       "Ada Lovelace",
			Email:      "ada@example.com",
			Phone:      "+44 20 0000",
			Location:   "London",
			ProfileURL: "linkedin.com/in/ada",
			Summary:    "Mathematician and writer, known for notes on the Analytical Engine.",
		},
		Experience: []resume.Experience{{
			Title:            "Analyst",
			Organization:     "Analytical Engine Co",
			Location:         "London",
			Duration:         "1842 - 1843",
			Responsibilities: []string{"Translated Menabrea's article", "Wrote the first published algorithm"},
		}},
		Skills: resume.Skills{
			Technical: []string{"Mathematics", "Algorithms"},
			Soft:      []string{"Writing"},
			Tools:     []string{"Difference Engine"},
		},
		Education: []resume.Education{{
			Degree:      "Private tutoring",
			Institution: "Augustus De Morgan",
			Duration:    "1840 - 1842",
			Details:     "Calculus and logic",
		}},
		Certifications: []string{"Royal Society guest"},
		Achievements:   []string{"First computer program"},
	}
}

func bodyTexts(res *Result) []TextOp {
	var out []TextOp
	for _, page := range res.Pages {
		for _, t := range page.Texts() {
			if t.Role == RoleBody {
				out = append(out, t)
			}
		}
	}
	return out
}

func TestSectionsAppearInFixedOrder(t *testing.T) {
	res := build(t, fullDocument())
	assert.Equal(t, []string{
		SectionSummary,
		SectionExperience,
		SectionSkills,
		SectionEducation,
		SectionCertifications,
		SectionAchievements,
	}, res.Sections())
}

func TestEmptySectionsEmitNothing(t *testing.T) {
	doc := fullDocument()
	doc.PersonalInfo.Summary = ""
	doc.Experience = nil
	doc.Skills = resume.Skills{}
	doc.Certifications = []string{}

	res := build(t, doc)
	assert.Equal(t, []string{SectionEducation, SectionAchievements}, res.Sections())
	for _, page := range res.Pages {
		for _, txt := range page.Texts() {
			assert.NotEqual(t, SectionCertifications, txt.Content)
			assert.NotEqual(t, "Technical Skills:", txt.Content)
		}
	}

	rects := 0
	for _, op := range res.Pages[0].Ops {
		if op.Kind == OpFillRect {
			rects++
		}
	}
	assert.Equal(t, 2, rects, "one band per emitted section")
}

func TestSmallDocumentIsOnePage(t *testing.T) {
	res := build(t, resume.Document{PersonalInfo: resume.PersonalInfo{
		Name:    "Ada Lovelace",
		Summary: "First line of summary.\nSecond line of summary.",
	}})
	require.Len(t, res.Pages, 1)
	assert.Equal(t, 210.0, res.Pages[0].Width)
	assert.Equal(t, 297.0, res.Pages[0].Height)
	assert.Len(t, bodyTexts(res), 2)
}

func TestHeaderLayout(t *testing.T) {
	doc := resume.Document{PersonalInfo: resume.PersonalInfo{
		Name:     "Ada Lovelace",
		Email:    "ada@example.com",
		Location: "London",
	}}
	res := build(t, doc)
	ops := res.Pages[0].Ops

	require.GreaterOrEqual(t, len(ops), 4)
	require.Equal(t, OpTextColor, ops[0].Kind)
	assert.Equal(t, DefaultStyle().Accent, *ops[0].Color)

	name := ops[1].Text
	require.NotNil(t, name)
	assert.Equal(t, "Ada Lovelace", name.Content)
	assert.Equal(t, AlignCenter, name.Align)
	assert.Equal(t, 105.0, name.X)
	assert.Equal(t, 20.0, name.Y)
	assert.Equal(t, WeightBold, name.Weight)
	assert.Equal(t, 24.0, name.FontSize)

	require.Equal(t, OpTextColor, ops[2].Kind)
	assert.Equal(t, Color{}, *ops[2].Color)

	contact := ops[3].Text
	require.NotNil(t, contact)
	assert.Equal(t, "ada@example.com | London", contact.Content)
	assert.Equal(t, 30.0, contact.Y)

	// 没有主页链接时不绘制第二行联系方式。
	assert.Len(t, ops, 4)
}

func TestWrappedBulletLineCount(t *testing.T) {
	long := strings.TrimSpace(strings.Repeat("delivered measurable outcomes ", 30))
	doc := resume.Document{
		PersonalInfo: resume.PersonalInfo{Name: "Ada"},
		Experience: []resume.Experience{{
			Title: "Engineer", Organization: "Co", Responsibilities: []string{long},
		}},
	}
	res := build(t, doc)

	style := DefaultStyle()
	font := Font{Size: style.SmallSize, Weight: WeightNormal}
	want, err := WrapText(ts, Bullet+long, style.BulletWidth, font)
	require.NoError(t, err)
	require.Greater(t, len(want), 1)

	var bullets []TextOp
	for _, txt := range bodyTexts(res) {
		if txt.X == style.BulletX {
			bullets = append(bullets, txt)
		}
	}
	require.Len(t, bullets, len(want))
	for i, b := range bullets {
		assert.Equal(t, want[i].Content, b.Content)
		assert.LessOrEqual(t, b.Width, style.BulletWidth)
	}
	assert.True(t, strings.HasPrefix(bullets[0].Content, Bullet))
}

func TestSkillsAndCertificationsAreNotWrapped(t *testing.T) {
	many := make([]string, 80)
	for i := range many {
		many[i] = fmt.Sprintf("skill-%02d", i)
	}
	longCert := strings.Repeat("certified ", 40)
	doc := resume.Document{
		PersonalInfo:   resume.PersonalInfo{Name: "Ada"},
		Skills:         resume.Skills{Tools: many},
		Certifications: []string{longCert},
	}
	res := build(t, doc)
	style := DefaultStyle()

	texts := bodyTexts(res)
	require.Len(t, texts, 3) // label, joined list, certification
	assert.Equal(t, "Tools & Technologies:", texts[0].Content)
	assert.Equal(t, strings.Join(many, ", "), texts[1].Content)
	assert.Greater(t, texts[1].Width, style.BulletWidth, "skills line stays on one line even when too wide")
	assert.Equal(t, Bullet+strings.TrimSpace(longCert), strings.TrimSpace(texts[2].Content))
	assert.Greater(t, texts[2].Width, style.BulletWidth)
}

func TestSkillGroupOrder(t *testing.T) {
	res := build(t, fullDocument())
	var labels []string
	for _, txt := range bodyTexts(res) {
		if strings.HasSuffix(txt.Content, ":") && txt.Weight == WeightBold {
			labels = append(labels, txt.Content)
		}
	}
	assert.Equal(t, []string{"Technical Skills:", "Tools & Technologies:", "Soft Skills:"}, labels)
}

func TestPageBreakResetsCursor(t *testing.T) {
	const n = 60
	resp := make([]string, n)
	for i := range resp {
		resp[i] = fmt.Sprintf("responsibility %02d", i)
	}
	doc := resume.Document{
		PersonalInfo: resume.PersonalInfo{Name: "Ada"},
		Experience:   []resume.Experience{{Title: "Engineer", Organization: "Co", Responsibilities: resp}},
	}
	res := build(t, doc)
	style := DefaultStyle()

	require.Len(t, res.Pages, 2)

	var drawn []string
	for _, page := range res.Pages {
		for _, txt := range page.Texts() {
			if txt.Role == RoleBody {
				assert.LessOrEqual(t, txt.Y, style.PageBottom)
			}
			if strings.HasPrefix(txt.Content, Bullet) {
				drawn = append(drawn, strings.TrimPrefix(txt.Content, Bullet))
			}
		}
	}
	assert.Equal(t, resp, drawn, "every bullet drawn exactly once, in order")

	second := res.Pages[1].Texts()
	require.NotEmpty(t, second)
	assert.Equal(t, style.TopMargin, second[0].Y)
	assert.True(t, strings.HasPrefix(second[0].Content, Bullet))
	for i := 1; i < len(second); i++ {
		assert.InDelta(t, second[i-1].Y+style.SmallSize*style.LineFactor, second[i].Y, 1e-9)
	}
}

func TestBannerBandIsNotBreakChecked(t *testing.T) {
	certs := make([]string, 46)
	for i := range certs {
		certs[i] = fmt.Sprintf("cert %d", i)
	}
	doc := resume.Document{
		PersonalInfo:   resume.PersonalInfo{Name: "Ada"},
		Certifications: certs,
		Achievements:   []string{"shipped"},
	}
	res := build(t, doc)
	require.Len(t, res.Pages, 2)

	first := res.Pages[0].Ops
	last := first[len(first)-1]
	band := first[len(first)-2]
	require.Equal(t, OpFillRect, band.Kind, "achievements band stays at the bottom of page 1")
	assert.Equal(t, OpTextColor, last.Kind)
	assert.Greater(t, band.Rect.Y+band.Rect.Height, DefaultStyle().PageBottom)

	texts := res.Pages[1].Texts()
	require.NotEmpty(t, texts)
	assert.Equal(t, SectionAchievements, texts[0].Content)
	assert.Equal(t, DefaultStyle().TopMargin, texts[0].Y)
}

func TestPageCountMonotonic(t *testing.T) {
	prev := 0
	for n := 0; n <= 300; n += 25 {
		items := make([]string, n)
		for i := range items {
			items[i] = strings.Repeat("achievement text ", 1+i%7)
		}
		doc := resume.Document{PersonalInfo: resume.PersonalInfo{Name: "Ada"}, Achievements: items}
		res := build(t, doc)
		assert.GreaterOrEqual(t, len(res.Pages), prev, "n=%d", n)
		prev = len(res.Pages)
	}
	assert.Greater(t, prev, 1)
}

func TestBuildIsIdempotent(t *testing.T) {
	doc := fullDocument()
	a := build(t, doc)
	b := build(t, doc)
	assert.Equal(t, a, b)
}

func TestBuildConcurrentCallsOwnTheirCursor(t *testing.T) {
	doc := fullDocument()
	want := build(t, doc)

	var wg sync.WaitGroup
	results := make([]*Result, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := Build(doc, BuildOptions{Typesetter: ts})
			if err == nil {
				results[i] = res
			}
		}(i)
	}
	wg.Wait()
	for _, res := range results {
		assert.Equal(t, want, res)
	}
}

func TestBuildErrors(t *testing.T) {
	_, err := Build(fullDocument(), BuildOptions{})
	assert.ErrorIs(t, err, ErrNoTypesetter)

	_, err = Build(resume.Document{}, BuildOptions{Typesetter: ts})
	assert.ErrorIs(t, err, resume.ErrMissingName)

	boom := errors.New("boom")
	_, err = Build(fullDocument(), BuildOptions{Typesetter: stubTypesetter{err: boom}})
	assert.ErrorIs(t, err, boom)

	bad := DefaultStyle()
	bad.LineFactor = 0
	_, err = Build(fullDocument(), BuildOptions{Typesetter: ts, Style: &bad})
	assert.Error(t, err)
}

func TestMetaIsInterpolated(t *testing.T) {
	res := build(t, fullDocument())
	assert.Equal(t, "Ada Lovelace - CV", res.Meta.Title)
	assert.Equal(t, "Ada Lovelace", res.Meta.Author)
	assert.Equal(t, "vitae", res.Meta.Creator)
}
