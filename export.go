package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ByLCY/vitae/binding"
	"github.com/ByLCY/vitae/layout"
	"github.com/ByLCY/vitae/renderer"
	"github.com/ByLCY/vitae/renderer/backend"
	"github.com/ByLCY/vitae/resume"
)

var exportCmd = &cobra.Command{
	Use:   "export [files...]",
	Short: "Render résumé JSON or YAML files into PDF",
	Long: `Decode each résumé file (JSON, or YAML by extension), lay it out and write a PDF.

With a single input, --out may name the PDF file directly; otherwise it is a
directory and the file name comes from the theme (output.filename, default CV.pdf).
With several inputs each PDF is named after its input file.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExport,
}

var (
	exportOut         string
	exportRenderer    string
	exportTheme       string
	exportDebug       bool
	exportConcurrency int
)

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "输出目录，或单个输入时的 PDF 文件路径（默认取配置 output_dir）")
	exportCmd.Flags().StringVarP(&exportRenderer, "renderer", "r", "", "渲染后端 (fpdf|canvas)")
	exportCmd.Flags().StringVarP(&exportTheme, "theme", "t", "", "主题文件路径")
	exportCmd.Flags().BoolVar(&exportDebug, "debug", false, "同时输出布局调试 JSON")
	exportCmd.Flags().IntVarP(&exportConcurrency, "concurrency", "j", 0, "并发导出的文件数")

	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg := appConfig
	if cmd.Flags().Changed("renderer") {
		cfg.Renderer = exportRenderer
	}
	if cmd.Flags().Changed("theme") {
		cfg.Theme = exportTheme
	}
	if cmd.Flags().Changed("out") {
		cfg.OutputDir = exportOut
	}
	if cmd.Flags().Changed("concurrency") {
		cfg.Concurrency = exportConcurrency
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	style, err := loadStyle(cfg.Theme)
	if err != nil {
		return err
	}
	b, err := backend.New(cfg.Renderer)
	if err != nil {
		return err
	}
	exp := &exporter{
		backend: b,
		style:   style,
		debug:   exportDebug,
		logger:  logger,
		out:     cmd.OutOrStdout(),
	}
	return exp.exportAll(cmd.Context(), planJobs(args, cfg.OutputDir), cfg.Concurrency)
}

// exportJob 描述一个输入文件及其输出位置：output 为具体 PDF 路径，
// 为空时在 dir 下按主题的文件名模板命名。
type exportJob struct {
	input  string
	output string
	dir    string
}

func planJobs(inputs []string, out string) []exportJob {
	if out == "" {
		out = "."
	}
	if len(inputs) == 1 {
		if strings.EqualFold(filepath.Ext(out), ".pdf") {
			return []exportJob{{input: inputs[0], output: out}}
		}
		return []exportJob{{input: inputs[0], dir: out}}
	}
	jobs := make([]exportJob, len(inputs))
	for i, in := range inputs {
		stem := strings.TrimSuffix(filepath.Base(in), filepath.Ext(in))
		jobs[i] = exportJob{input: in, output: filepath.Join(out, binding.FileName(stem, nil))}
	}
	return jobs
}

type exporter struct {
	backend renderer.Backend
	style   layout.Style
	debug   bool
	logger  *slog.Logger
	out     io.Writer
}

// exportAll 并发导出，每个文件拥有独立的布局游标；第一个错误会取消其余任务。
func (e *exporter) exportAll(ctx context.Context, jobs []exportJob, limit int) error {
	if ctx == nil {
		ctx = context.Background()
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for _, job := range jobs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			path, err := e.export(job)
			if err != nil {
				return fmt.Errorf("%s: %w", job.input, err)
			}
			fmt.Fprintf(e.out, "已生成 PDF：%s\n", path)
			return nil
		})
	}
	return g.Wait()
}

// export 串联解码、布局与渲染，返回写出的 PDF 路径。
func (e *exporter) export(job exportJob) (string, error) {
	doc, err := resume.DecodeFile(job.input)
	if err != nil {
		return "", err
	}

	result, err := layout.Build(doc, layout.BuildOptions{Typesetter: e.backend, Style: &e.style})
	if err != nil {
		return "", fmt.Errorf("布局计算失败: %w", err)
	}
	warnUnsupported(e.logger, e.backend, result, "input", job.input)

	outputPath := job.output
	if outputPath == "" {
		outputPath = filepath.Join(job.dir, binding.FileName(e.style.FileName, doc.Data()))
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return "", fmt.Errorf("创建输出目录失败: %w", err)
	}

	if e.debug {
		debugPath := strings.TrimSuffix(outputPath, filepath.Ext(outputPath)) + ".layout.json"
		if err := layout.WriteDebugJSON(result, debugPath); err != nil {
			return "", fmt.Errorf("输出调试 JSON 失败: %w", err)
		}
	}

	pdfBytes, err := e.backend.Render(result)
	if err != nil {
		return "", fmt.Errorf("渲染 PDF 失败: %w", err)
	}
	if err := os.WriteFile(outputPath, pdfBytes, 0o644); err != nil {
		return "", fmt.Errorf("写入 PDF 文件失败: %w", err)
	}
	e.logger.Debug("exported",
		"input", job.input,
		"output", outputPath,
		"pages", len(result.Pages),
		"sections", result.Sections(),
	)
	return outputPath, nil
}

// warnUnsupported 在后端字体无法显示部分字符时记录警告。
func warnUnsupported(logger *slog.Logger, b renderer.Backend, result *layout.Result, attrs ...any) []rune {
	cov, ok := b.(renderer.Coverage)
	if !ok {
		return nil
	}
	missing := cov.Unsupported(result)
	if len(missing) > 0 {
		logger.Warn("当前渲染后端无法显示部分字符，输出中将以 . 代替；可改用 --renderer canvas",
			append(attrs, "runes", string(missing))...)
	}
	return missing
}
