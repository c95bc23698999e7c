// Package upload checks inbound files against the upload policy before
// anything is written to disk.
package upload

import (
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/iudanet/medrecords/internal/apperr"
)

const (
	// DefaultMaxSize is 10 MiB.
	DefaultMaxSize int64 = 10 * 1024 * 1024
	// DefaultSniffLen is how many leading bytes feed content detection.
	DefaultSniffLen = 2048

	bytesPerMB = 1024 * 1024
)

var (
	ErrUnsupportedExtension   = apperr.New(apperr.Validation, "unsupported file extension")
	ErrPayloadTooLarge        = apperr.New(apperr.TooLarge, "file too large")
	ErrUnsupportedContentType = apperr.New(apperr.Validation, "unsupported file content")
)

// DefaultExtensions are the accepted extensions, lowercase with the dot.
func DefaultExtensions() []string {
	return []string{".jpg", ".jpeg", ".png", ".gif", ".dcm"}
}

// DefaultMIMETypes are the accepted sniffed content types.
func DefaultMIMETypes() []string {
	return []string{"image/jpeg", "image/png", "image/gif", "application/dicom"}
}

// Policy is immutable after construction.
type Policy struct {
	AllowedExtensions []string
	AllowedMIMETypes  []string
	MaxSize           int64
	SniffLen          int
}

// DefaultPolicy returns the reference policy.
func DefaultPolicy() Policy {
	return Policy{
		AllowedExtensions: DefaultExtensions(),
		AllowedMIMETypes:  DefaultMIMETypes(),
		MaxSize:           DefaultMaxSize,
		SniffLen:          DefaultSniffLen,
	}
}

// File is an upload that passed every check.
type File struct {
	OriginalName string
	StoredName   string
	Extension    string
	MIMEType     string
	Content      []byte
	Size         int64
}

// Validator applies a Policy.
type Validator struct {
	policy Policy
}

// NewValidator normalizes p and fills zero fields with defaults.
func NewValidator(p Policy) *Validator {
	def := DefaultPolicy()
	if len(p.AllowedExtensions) == 0 {
		p.AllowedExtensions = def.AllowedExtensions
	}
	if len(p.AllowedMIMETypes) == 0 {
		p.AllowedMIMETypes = def.AllowedMIMETypes
	}
	if p.MaxSize <= 0 {
		p.MaxSize = def.MaxSize
	}
	if p.SniffLen <= 0 {
		p.SniffLen = def.SniffLen
	}

	exts := make([]string, 0, len(p.AllowedExtensions))
	for _, e := range p.AllowedExtensions {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		exts = append(exts, e)
	}
	p.AllowedExtensions = exts

	types := make([]string, 0, len(p.AllowedMIMETypes))
	for _, m := range p.AllowedMIMETypes {
		if m = strings.ToLower(strings.TrimSpace(m)); m != "" {
			types = append(types, m)
		}
	}
	p.AllowedMIMETypes = types

	return &Validator{policy: p}
}

// Policy returns the effective policy.
func (v *Validator) Policy() Policy {
	return v.policy
}

// Validate runs extension, size and content checks in that order and assigns
// a generated stored name. r is not read when the extension is rejected.
func (v *Validator) Validate(filename string, r io.Reader) (*File, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" || !slices.Contains(v.policy.AllowedExtensions, ext) {
		return nil, &apperr.Error{
			Kind: apperr.Validation,
			Message: fmt.Sprintf("file extension %q is not allowed; allowed extensions: %s",
				ext, strings.Join(v.policy.AllowedExtensions, ", ")),
			Err: ErrUnsupportedExtension,
		}
	}

	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}

	size := int64(len(content))
	if size > v.policy.MaxSize {
		return nil, &apperr.Error{
			Kind: apperr.TooLarge,
			Message: fmt.Sprintf("file size %.2f MB exceeds the maximum allowed size of %.2f MB",
				float64(size)/bytesPerMB, float64(v.policy.MaxSize)/bytesPerMB),
			Err: ErrPayloadTooLarge,
		}
	}

	head := content[:min(len(content), v.policy.SniffLen)]
	detected := mimetype.Detect(head)
	mimeType, ok := v.allowedType(detected)
	if !ok {
		return nil, &apperr.Error{
			Kind: apperr.Validation,
			Message: fmt.Sprintf("file content type %q is not allowed; allowed types: %s",
				detected.String(), strings.Join(v.policy.AllowedMIMETypes, ", ")),
			Err: ErrUnsupportedContentType,
		}
	}

	return &File{
		OriginalName: filename,
		StoredName:   uuid.New().String() + ext,
		Extension:    ext,
		MIMEType:     mimeType,
		Content:      content,
		Size:         size,
	}, nil
}

// allowedType walks the detected type and its parents so aliases match.
func (v *Validator) allowedType(m *mimetype.MIME) (string, bool) {
	for ; m != nil; m = m.Parent() {
		for _, allowed := range v.policy.AllowedMIMETypes {
			if m.Is(allowed) {
				return allowed, true
			}
		}
	}
	return "", false
}
