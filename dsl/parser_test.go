package dsl_test

import (
	"strings"
	"testing"

	"github.com/ByLCY/vitae/dsl"
)

const sampleTheme = `
// 默认 A4 主题
theme classic {
  page { size: A4; top: 20mm
    bottom: 270mm }

  colors {
    accent: #3B82F6   # 蓝色
    banner-text: #fff
  }

  text { line-factor: 0.5 name: 24pt }
  banner { offset: -4mm }

  meta {
    title: "${personal_info.name} - CV"
  }
}
`

func TestParseTheme(t *testing.T) {
	theme, err := dsl.ParseString(sampleTheme)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if theme.Name != "classic" {
		t.Fatalf("expected theme name classic, got %s", theme.Name)
	}
	if len(theme.Sections) != 5 {
		t.Fatalf("expected 5 sections, got %d", len(theme.Sections))
	}

	page := theme.Section("page")
	if page == nil || len(page.Settings) != 3 {
		t.Fatalf("page section malformed: %+v", page)
	}
	if got := page.Lookup("size").Text(); got != "A4" {
		t.Fatalf("expected size A4, got %q", got)
	}
	if v := page.Lookup("bottom"); v == nil || v.Number == nil || *v.Number != "270mm" {
		t.Fatalf("expected bottom 270mm, got %+v", v)
	}

	colors := theme.Section("colors")
	if v := colors.Lookup("accent"); v == nil || v.Color == nil || *v.Color != "#3B82F6" {
		t.Fatalf("expected accent color, got %+v", v)
	}
	if got := colors.Lookup("banner-text").Text(); got != "#fff" {
		t.Fatalf("expected short color, got %q", got)
	}

	if got := theme.Section("text").Lookup("line-factor").Text(); got != "0.5" {
		t.Fatalf("expected line-factor 0.5, got %q", got)
	}
	if got := theme.Section("banner").Lookup("offset").Text(); got != "-4mm" {
		t.Fatalf("expected negative offset, got %q", got)
	}
	if got := theme.Section("meta").Lookup("title").Text(); got != "${personal_info.name} - CV" {
		t.Fatalf("expected unquoted title, got %q", got)
	}
	if theme.Section("missing") != nil {
		t.Fatalf("unexpected section")
	}
}

func TestParseThemeReportsPosition(t *testing.T) {
	_, err := dsl.Parse("broken.theme", strings.NewReader("theme x {\n  page { top 20mm }\n}"))
	if err == nil {
		t.Fatalf("expected parse error")
	}
	if !strings.Contains(err.Error(), "broken.theme:2") {
		t.Fatalf("expected position in error, got %v", err)
	}
}
