package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/erraggy/oasresolve/filesystem"
	"github.com/erraggy/oasresolve/oaserrors"
	"github.com/erraggy/oasresolve/resolver"
	"github.com/go-playground/validator/v10"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// contentSourceName names inline content; with base_path it is joined to
// that directory so relative references resolve from there.
const contentSourceName = "content"

var validate = newValidate()

func newValidate() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

type resolveInput struct {
	File          string `json:"file,omitempty"            jsonschema:"Path to a Swagger/OAS 2.0 document on disk" validate:"required_without_all=URL Content,excluded_with=URL Content"`
	URL           string `json:"url,omitempty"             jsonschema:"URL to fetch the root document from (requires OASRESOLVE_ALLOW_HTTP)" validate:"omitempty,excluded_with=Content,url"`
	Content       string `json:"content,omitempty"         jsonschema:"Inline document content (JSON or YAML)"`
	BasePath      string `json:"base_path,omitempty"       jsonschema:"Directory that relative references in content resolve from" validate:"excluded_without=Content"`
	Format        string `json:"format,omitempty"          jsonschema:"Output format: json or yaml (default: same as the input)" validate:"omitempty,oneof=json yaml"`
	NameOnlyVisit *bool  `json:"name_only_visit,omitempty" jsonschema:"Track visited entities by name only, ignoring category"`
}

type resolveOutput struct {
	Document        string `json:"document"`
	Format          string `json:"format"`
	DocumentsLoaded int    `json:"documents_loaded"`
	RefsRewritten   int    `json:"refs_rewritten"`
	EntitiesInlined int    `json:"entities_inlined"`
	SubtypesInlined int    `json:"subtypes_inlined"`
}

func handleResolve(_ context.Context, _ *mcp.CallToolRequest, input resolveInput) (*mcp.CallToolResult, resolveOutput, error) {
	if err := validateResolveInput(input); err != nil {
		return errResult(err), resolveOutput{}, nil
	}

	format, err := resolver.ParseSourceFormat(input.Format)
	if err != nil {
		return errResult(err), resolveOutput{}, nil
	}

	r := resolver.New()
	r.FileSystem = newFileSystem()
	r.MaxCachedDocuments = cfg.MaxCachedDocuments
	r.MaxFileSize = cfg.MaxFileSize
	r.NameOnlyVisitKeys = cfg.NameOnlyVisit
	if input.NameOnlyVisit != nil {
		r.NameOnlyVisitKeys = *input.NameOnlyVisit
	}
	r.OutputFormat = format

	var res *resolver.Result
	switch {
	case input.Content != "":
		var source string
		r.FileSystem, source = contentFileSystem(input.BasePath)
		res, err = r.ResolveBytes(source, []byte(input.Content))
	case input.URL != "":
		if !cfg.AllowHTTP {
			return errResult(errors.New("url input is disabled; set OASRESOLVE_ALLOW_HTTP=true to enable it")), resolveOutput{}, nil
		}
		res, err = r.ResolveFile(input.URL)
	default:
		res, err = r.ResolveFile(input.File)
	}
	if err != nil {
		return errResult(err), resolveOutput{}, nil
	}

	return nil, resolveOutput{
		Document:        string(res.Data),
		Format:          string(res.OutputFormat),
		DocumentsLoaded: res.Stats.DocumentsLoaded,
		RefsRewritten:   res.Stats.RefsRewritten,
		EntitiesInlined: res.Stats.EntitiesInlined,
		SubtypesInlined: res.Stats.SubtypesInlined,
	}, nil
}

// contentFileSystem returns the file system and source name for inline
// content. Without a base path the content is resolved in an empty
// in-memory file system, so any external reference fails as missing.
func contentFileSystem(basePath string) (filesystem.FileSystem, string) {
	if basePath == "" {
		return filesystem.NewMemory(nil), "/" + contentSourceName
	}
	return newFileSystem(), filepath.Join(basePath, contentSourceName)
}

func validateResolveInput(input resolveInput) error {
	if err := validate.Struct(input); err != nil {
		var valErrs validator.ValidationErrors
		if errors.As(err, &valErrs) {
			messages := make([]string, 0, len(valErrs))
			for _, ve := range valErrs {
				messages = append(messages, ve.Field()+": "+formatValidationError(ve))
			}
			return &oaserrors.ConfigError{Option: "input", Message: strings.Join(messages, "; ")}
		}
		return err
	}
	if size := int64(len(input.Content)); size > cfg.MaxInlineSize {
		return &oaserrors.ResourceLimitError{
			ResourceType: "inline_content",
			Limit:        cfg.MaxInlineSize,
			Actual:       size,
		}
	}
	return nil
}

// formatValidationError converts a validator.FieldError to a human-readable message.
func formatValidationError(ve validator.FieldError) string {
	switch ve.Tag() {
	case "required_without_all":
		return "exactly one of file, url or content is required"
	case "excluded_with":
		return "only one of file, url or content may be set"
	case "excluded_without":
		return "only valid together with content"
	case "url":
		return "must be a valid URL"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", ve.Param())
	default:
		if ve.Param() != "" {
			return fmt.Sprintf("failed %s=%s validation", ve.Tag(), ve.Param())
		}
		return fmt.Sprintf("failed %s validation", ve.Tag())
	}
}
