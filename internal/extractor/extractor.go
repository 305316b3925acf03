// Package extractor converts selected elements of an XML document into
// generic JSON tree values, one element subtree at a time.
//
// The extractor wraps a forward-only token cursor over the XML input and
// is driven by the consumer: each call to Next advances the cursor until
// one full qualifying subtree has been assembled, then returns it. At most
// one subtree is held in memory at a time, so peak memory is bounded by
// the largest selected element, not the whole document.
package extractor

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	stderrors "errors"

	"github.com/mwhite/xml2jsonl/internal/errors"
	"github.com/mwhite/xml2jsonl/internal/models"
	"golang.org/x/net/html/charset"
)

// Options controls which elements the extractor emits.
type Options struct {
	// IncludeAllChildren makes every direct child of the document root a
	// unit, regardless of tag name.
	IncludeAllChildren bool
	// IncludeRoot additionally emits the root element itself as the first
	// unit, converted shallowly (tag and attributes only, no children).
	IncludeRoot bool
	// SelectedTags lists tag local names that qualify an element at any
	// depth for emission; consulted when IncludeAllChildren is false.
	SelectedTags []string
}

// DefaultOptions returns the default selection policy: every direct child
// of the root is emitted, the root itself is not.
func DefaultOptions() Options {
	return Options{IncludeAllChildren: true}
}

// Extractor produces element records from an XML stream. It owns its
// token cursor exclusively and is not safe for concurrent use; a single
// consumer drives it by calling Next until io.EOF.
type Extractor struct {
	dec     *xml.Decoder
	opts    Options
	tags    map[string]struct{}
	started bool
	done    bool
}

// New creates an Extractor reading the XML document from r. Encodings
// other than UTF-8 are handled when the document declares them.
func New(r io.Reader, opts Options) *Extractor {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = charset.NewReaderLabel
	tags := make(map[string]struct{}, len(opts.SelectedTags))
	for _, tag := range opts.SelectedTags {
		tags[tag] = struct{}{}
	}
	return &Extractor{dec: dec, opts: opts, tags: tags}
}

// Next returns the next qualifying element as a record, or io.EOF once
// the document is exhausted. A document with no elements at all yields
// io.EOF on the first call. Any XML parse failure is fatal: it aborts the
// sequence and no recovery is attempted.
func (e *Extractor) Next() (models.Object, error) {
	if e.done {
		return nil, io.EOF
	}
	if !e.started {
		root, err := e.scan()
		if err != nil {
			return nil, err
		}
		e.started = true
		if e.opts.IncludeRoot {
			// Shallow conversion: the root's children stay pending on the
			// cursor for subsequent calls.
			return shallow(root), nil
		}
	}
	for {
		start, err := e.scan()
		if err != nil {
			return nil, err
		}
		if e.qualifies(start.Name.Local) {
			return e.deep(start)
		}
	}
}

// qualifies reports whether an element with the given tag local name is
// selected for emission.
func (e *Extractor) qualifies(tag string) bool {
	if e.opts.IncludeAllChildren {
		return true
	}
	_, ok := e.tags[tag]
	return ok
}

// scan advances the cursor to the next start-element, skipping everything
// else. It returns io.EOF at end of document.
func (e *Extractor) scan() (xml.StartElement, error) {
	for {
		tok, err := e.dec.Token()
		if err != nil {
			if stderrors.Is(err, io.EOF) {
				e.done = true
				return xml.StartElement{}, io.EOF
			}
			return xml.StartElement{}, parseError(err)
		}
		if start, ok := tok.(xml.StartElement); ok {
			return start, nil
		}
	}
}

// deep converts the element opened by start, and all of its descendants,
// into one record. The cursor is left just past the matching end-element.
func (e *Extractor) deep(start xml.StartElement) (models.Object, error) {
	rec := shallow(start)
	children := models.Array{}
	var text strings.Builder
	for {
		tok, err := e.dec.Token()
		if err != nil {
			if stderrors.Is(err, io.EOF) {
				return nil, errors.NewParseError(
					fmt.Sprintf("document ended inside element <%s>", start.Name.Local),
					errors.ErrMalformedDocument,
				)
			}
			return nil, parseError(err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			child, err := e.deep(t)
			if err != nil {
				return nil, err
			}
			children = append(children, child)
		case xml.CharData:
			// All text fragments of the element are concatenated, even
			// when interleaved with child elements; trimming happens once
			// at close.
			text.Write(t)
		case xml.EndElement:
			// The decoder guarantees the end tag matches start.
			rec[models.KeyChildren] = children
			if trimmed := strings.TrimSpace(text.String()); trimmed != "" {
				rec[models.KeyText] = trimmed
			}
			return rec, nil
		default:
			// Comments, directives and processing instructions are no-ops.
		}
	}
}

// shallow converts only the element's own tag and attributes, without
// touching its content. Namespaces are not resolved; prefixes are simply
// dropped in favor of local names.
func shallow(start xml.StartElement) models.Object {
	rec := models.NewRecord(start.Name.Local)
	if len(start.Attr) > 0 {
		attrs := make(models.Object, len(start.Attr))
		for _, attr := range start.Attr {
			attrs[attr.Name.Local] = attr.Value
		}
		rec[models.KeyAttrs] = attrs
	}
	return rec
}

// parseError wraps a token-cursor failure as a fatal parse error.
func parseError(err error) error {
	var syntaxErr *xml.SyntaxError
	if stderrors.As(err, &syntaxErr) {
		return errors.NewParseError(
			fmt.Sprintf("XML syntax error on line %d: %s", syntaxErr.Line, syntaxErr.Msg),
			errors.ErrMalformedDocument,
		)
	}
	return errors.NewParseError("failed to read XML token", err)
}
