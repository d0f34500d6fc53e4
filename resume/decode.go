package resume

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

//go:embed schema.json
var schemaJSON []byte

// ErrMissingName is returned when a document has no person name to put in
// the header.
var ErrMissingName = errors.New("resume: personal_info.name is required")

// FieldError is a single schema violation.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// SchemaError lists every violation found in a malformed document.
type SchemaError struct {
	Errors []FieldError
}

func (e *SchemaError) Error() string {
	var sb strings.Builder
	sb.WriteString("resume: document does not match schema:")
	for i, fe := range e.Errors {
		fmt.Fprintf(&sb, "\n  %d. %s: %s", i+1, fe.Field, fe.Message)
	}
	return sb.String()
}

var (
	schema   = gojsonschema.NewBytesLoader(schemaJSON)
	validate = newValidator()
)

// newValidator reports fields by their JSON names so struct-level errors
// read like schema errors.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(err)
	}
	return v
}

// Schema returns the JSON Schema documents are checked against.
func Schema() []byte {
	out := make([]byte, len(schemaJSON))
	copy(out, schemaJSON)
	return out
}

// Decode reads a JSON document, checks it against the schema, then
// normalizes and validates it.
func Decode(r io.Reader) (Document, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return Document{}, fmt.Errorf("resume: read input: %w", err)
	}
	return DecodeBytes(raw)
}

// DecodeBytes is Decode over an in-memory payload.
func DecodeBytes(raw []byte) (Document, error) {
	if err := CheckSchema(raw); err != nil {
		return Document{}, err
	}
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return Document{}, fmt.Errorf("resume: parse JSON: %w", err)
	}
	doc = doc.Normalize()
	if err := doc.Validate(); err != nil {
		return Document{}, err
	}
	return doc, nil
}

// DecodeYAML reads the same document written as YAML. It is converted to
// JSON first so the schema check sees identical input.
func DecodeYAML(r io.Reader) (Document, error) {
	var v any
	if err := yaml.NewDecoder(r).Decode(&v); err != nil {
		return Document{}, fmt.Errorf("resume: parse YAML: %w", err)
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return Document{}, fmt.Errorf("resume: convert YAML: %w", err)
	}
	return DecodeBytes(raw)
}

// DecodeFile picks JSON or YAML by the file extension (.yaml/.yml).
func DecodeFile(path string) (Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return Document{}, fmt.Errorf("resume: %w", err)
	}
	defer f.Close()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return DecodeYAML(f)
	default:
		return Decode(f)
	}
}

// CheckSchema validates raw JSON against the embedded schema.
func CheckSchema(raw []byte) error {
	result, err := gojsonschema.Validate(schema, gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return fmt.Errorf("resume: schema check failed: %w", err)
	}
	if result.Valid() {
		return nil
	}
	schemaErr := &SchemaError{Errors: make([]FieldError, 0, len(result.Errors()))}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		schemaErr.Errors = append(schemaErr.Errors, FieldError{
			Field:   field,
			Message: desc.Description(),
		})
	}
	return schemaErr
}

// Validate applies the struct tags. A blank name maps to ErrMissingName;
// every other violation is reported as a *SchemaError.
func (d Document) Validate() error {
	err := validate.Struct(d)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("resume: validate: %w", err)
	}
	schemaErr := &SchemaError{Errors: make([]FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		field := fe.Namespace()
		// 去掉顶层类型名 Document.
		if _, rest, ok := strings.Cut(field, "."); ok {
			field = rest
		}
		if field == "personal_info.name" {
			return ErrMissingName
		}
		schemaErr.Errors = append(schemaErr.Errors, FieldError{
			Field:   field,
			Message: ruleMessage(fe.Tag()),
		})
	}
	return schemaErr
}

func ruleMessage(tag string) string {
	switch tag {
	case "email":
		return "must be a valid email address"
	case "notblank", "required":
		return "is required"
	default:
		return fmt.Sprintf("fails the %q rule", tag)
	}
}
