package codevf

import (
	"encoding/base64"
	"fmt"
	"mime"
	"path/filepath"
	"slices"
	"strings"
	"unicode"
)

// Attachment limits.
const (
	// MaxTextBytes is the size limit for code and text attachments, measured on raw UTF-8 content.
	MaxTextBytes = 1_048_576
	// MaxBinaryBytes is the size limit for image and PDF attachments, measured on base64 content.
	MaxBinaryBytes = 10_485_760
	// MaxAttachments is the maximum number of attachments per task.
	MaxAttachments = 5
)

// AttachmentCategory is the content class an attachment is validated against.
type AttachmentCategory string

const (
	CategoryImage AttachmentCategory = "image"
	CategoryPDF   AttachmentCategory = "pdf"
	CategoryCode  AttachmentCategory = "code"
	CategoryText  AttachmentCategory = "text"
)

// MaxBytes returns the size limit of the category.
func (c AttachmentCategory) MaxBytes() int {
	if r, ok := ruleFor(c); ok {
		return r.maxBytes
	}
	return 0
}

// RequiresBase64 reports whether content of the category must be base64 encoded.
func (c AttachmentCategory) RequiresBase64() bool {
	if r, ok := ruleFor(c); ok {
		return r.base64
	}
	return false
}

// AttachmentInput is the caller's description of a file to attach. Content
// holds raw text for code/text files and base64 for images and PDFs; Base64 is
// accepted as an alias and used when Content is empty.
type AttachmentInput struct {
	FileName string
	MimeType string
	Content  string
	Base64   string
}

// Attachment is a validated attachment in wire form.
type Attachment struct {
	FileName string `json:"fileName"`
	MimeType string `json:"mimeType"`
	Content  string `json:"content"`
}

// categoryRule pairs a category with the predicate that selects it.
type categoryRule struct {
	category   AttachmentCategory
	extensions []string
	mimeTypes  []string
	maxBytes   int
	base64     bool
}

// matches reports whether the file extension or the declared mime type
// belongs to the rule.
func (r categoryRule) matches(fileName, mimeType string) bool {
	lower := strings.ToLower(fileName)
	for _, ext := range r.extensions {
		if strings.HasSuffix(lower, "."+ext) {
			return true
		}
	}
	return slices.Contains(r.mimeTypes, mimeType)
}

// categoryRules is evaluated in order; the first match wins.
var categoryRules = []categoryRule{
	{
		category:   CategoryImage,
		extensions: []string{"png", "jpg", "jpeg", "gif", "webp"},
		mimeTypes:  []string{"image/png", "image/jpeg", "image/gif", "image/webp"},
		maxBytes:   MaxBinaryBytes,
		base64:     true,
	},
	{
		category:   CategoryPDF,
		extensions: []string{"pdf"},
		mimeTypes:  []string{"application/pdf"},
		maxBytes:   MaxBinaryBytes,
		base64:     true,
	},
	{
		category:   CategoryCode,
		extensions: []string{"py", "js", "ts", "java", "cpp", "c", "cs", "go", "rs", "kt", "swift", "php", "rb", "jsx", "tsx"},
		mimeTypes: []string{
			"text/x-python",
			"application/javascript",
			"text/typescript",
			"text/x-java-source",
			"text/plain",
			"application/x-c++src",
			"text/x-csrc",
			"text/x-csharp",
			"text/x-go",
			"text/x-rustsrc",
			"text/x-kotlin",
			"text/x-php",
			"text/x-ruby",
		},
		maxBytes: MaxTextBytes,
	},
	{
		category:   CategoryText,
		extensions: []string{"txt", "json", "xml", "csv", "log"},
		mimeTypes:  []string{"text/plain", "application/json", "text/xml", "application/xml", "text/csv"},
		maxBytes:   MaxTextBytes,
	},
}

func ruleFor(c AttachmentCategory) (categoryRule, bool) {
	for _, r := range categoryRules {
		if r.category == c {
			return r, true
		}
	}
	return categoryRule{}, false
}

// ClassifyAttachment selects the category of a file. When no rule matches,
// .pdf falls back to PDF and .txt/.log to text; anything else is unsupported.
func ClassifyAttachment(fileName, mimeType string) (AttachmentCategory, error) {
	r, err := selectRule(fileName, mimeType)
	if err != nil {
		return "", err
	}
	return r.category, nil
}

func selectRule(fileName, mimeType string) (categoryRule, error) {
	for _, r := range categoryRules {
		if r.matches(fileName, mimeType) {
			return r, nil
		}
	}

	lower := strings.ToLower(fileName)
	switch {
	case strings.HasSuffix(lower, ".pdf"):
		return mustRule(CategoryPDF), nil
	case strings.HasSuffix(lower, ".txt"), strings.HasSuffix(lower, ".log"):
		return mustRule(CategoryText), nil
	}

	return categoryRule{}, newLocalError(KindAttachmentTooLarge,
		fmt.Sprintf("unsupported attachment type: '%s' (%s)", fileName, mimeType),
		map[string]any{"fileName": fileName})
}

func mustRule(c AttachmentCategory) categoryRule {
	r, ok := ruleFor(c)
	if !ok {
		panic("codevf: missing attachment rule for " + string(c))
	}
	return r
}

// ValidateAttachment checks an attachment and returns its wire form and
// category. Checks run in order: non-empty names, category selection, size,
// then base64 decodability for binary categories. Every failure is a
// KindAttachmentTooLarge error.
func ValidateAttachment(in AttachmentInput) (Attachment, AttachmentCategory, error) {
	content := in.Content
	if content == "" {
		content = in.Base64
	}

	if in.FileName == "" {
		return Attachment{}, "", newLocalError(KindAttachmentTooLarge, "fileName cannot be empty", nil)
	}
	if in.MimeType == "" {
		return Attachment{}, "", newLocalError(KindAttachmentTooLarge, "mimeType cannot be empty",
			map[string]any{"fileName": in.FileName})
	}

	rule, err := selectRule(in.FileName, in.MimeType)
	if err != nil {
		return Attachment{}, "", err
	}

	errCtx := map[string]any{"fileName": in.FileName, "limitBytes": rule.maxBytes}

	measured := content
	if rule.base64 {
		measured = stripWhitespace(content)
	}
	if len(measured) > rule.maxBytes {
		return Attachment{}, "", newLocalError(KindAttachmentTooLarge,
			fmt.Sprintf("%s exceeds the %d byte limit for %s files", in.FileName, rule.maxBytes, rule.category),
			errCtx)
	}

	if rule.base64 {
		if _, err := base64.StdEncoding.DecodeString(measured); err != nil {
			return Attachment{}, "", newLocalError(KindAttachmentTooLarge,
				fmt.Sprintf("%s must be valid base64 when uploading %s files", in.FileName, rule.category),
				errCtx)
		}
	}

	return Attachment{
		FileName: in.FileName,
		MimeType: in.MimeType,
		Content:  content,
	}, rule.category, nil
}

// NormalizeAttachments validates every attachment and returns them in wire
// form. It does not enforce MaxAttachments; CreateTask does that first.
func NormalizeAttachments(inputs []AttachmentInput) ([]Attachment, error) {
	if len(inputs) == 0 {
		return nil, nil
	}
	out := make([]Attachment, 0, len(inputs))
	for _, in := range inputs {
		a, _, err := ValidateAttachment(in)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

// AttachmentFromFile builds an AttachmentInput from raw file bytes. When
// mimeType is empty it is derived from the file extension. Content is base64
// encoded when the file classifies as an image or PDF.
func AttachmentFromFile(fileName string, data []byte, mimeType string) (AttachmentInput, error) {
	if mimeType == "" {
		mimeType = mimeTypeByExtension(fileName)
	}

	category, err := ClassifyAttachment(fileName, mimeType)
	if err != nil {
		return AttachmentInput{}, err
	}

	in := AttachmentInput{FileName: filepath.Base(fileName), MimeType: mimeType}
	if category.RequiresBase64() {
		in.Content = base64.StdEncoding.EncodeToString(data)
	} else {
		in.Content = string(data)
	}
	return in, nil
}

func mimeTypeByExtension(fileName string) string {
	t := mime.TypeByExtension(filepath.Ext(fileName))
	if t == "" {
		return "application/octet-stream"
	}
	if mediaType, _, err := mime.ParseMediaType(t); err == nil {
		return mediaType
	}
	return t
}

func stripWhitespace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}
