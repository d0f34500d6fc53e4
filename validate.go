package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ByLCY/vitae/resume"
)

var validateCmd = &cobra.Command{
	Use:   "validate [files...]",
	Short: "Check résumé JSON files without rendering",
	Long:  "Decodes each file against the résumé JSON Schema and reports every field error. --print-schema writes the schema instead.",
	RunE:  runValidate,
}

var validatePrintSchema bool

func init() {
	validateCmd.Flags().BoolVar(&validatePrintSchema, "print-schema", false, "输出内置的 JSON Schema")

	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	if validatePrintSchema {
		_, err := out.Write(resume.Schema())
		return err
	}
	if len(args) == 0 {
		return errors.New("至少需要一个输入文件")
	}
	failed := 0
	for _, path := range args {
		if err := validateFile(path); err != nil {
			failed++
			reportInvalid(out, path, err)
			continue
		}
		fmt.Fprintf(out, "ok   %s\n", path)
	}
	if failed > 0 {
		return fmt.Errorf("%d 个文件校验失败", failed)
	}
	return nil
}

func validateFile(path string) error {
	_, err := resume.DecodeFile(path)
	return err
}

func reportInvalid(w io.Writer, path string, err error) {
	var schemaErr *resume.SchemaError
	if !errors.As(err, &schemaErr) {
		fmt.Fprintf(w, "FAIL %s: %v\n", path, err)
		return
	}
	fmt.Fprintf(w, "FAIL %s\n", path)
	for _, fe := range schemaErr.Errors {
		fmt.Fprintf(w, "     %s: %s\n", fe.Field, fe.Message)
	}
}
