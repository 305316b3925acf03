// Package simplifier restructures raw element records into an ergonomic
// JSON shape: child elements become named properties, repeated tags fold
// into arrays, text-only children collapse to plain strings, and
// attributes merge into the same property namespace.
package simplifier

import (
	"fmt"

	"github.com/mwhite/xml2jsonl/internal/errors"
	"github.com/mwhite/xml2jsonl/internal/models"
)

// Simplify rewrites one extractor-built record in place and returns it.
// The caller must own the record outright: the transform is destructive
// and the input shape is not preserved. Passing a record that was not
// produced by the extractor is a contract violation.
func Simplify(rec models.Object) (models.Object, error) {
	if err := simplifyNode(rec); err != nil {
		return nil, err
	}
	delete(rec, models.KeyTag)
	return rec, nil
}

// simplifyNode applies the transform bottom-up. The record's own tag key
// is left in place; the parent (or Simplify, at the top) removes it.
func simplifyNode(rec models.Object) error {
	// Fold children into properties named after their tags. A missing
	// children key is legal only for the shallow root record.
	if v, present := rec[models.KeyChildren]; present {
		children, ok := v.(models.Array)
		if !ok {
			return errors.NewTransformError(
				fmt.Sprintf("children key holds %T, not an array", v),
				errors.ErrMalformedTree,
			)
		}
		for _, cv := range children {
			child, ok := cv.(models.Object)
			if !ok {
				return errors.NewTransformError(
					fmt.Sprintf("child record is %T, not an object", cv),
					errors.ErrMalformedTree,
				)
			}
			if err := simplifyNode(child); err != nil {
				return err
			}
			name := child.Tag()
			delete(child, models.KeyTag)
			merge(rec, name, collapseText(child))
		}
		delete(rec, models.KeyChildren)
	}

	// Attributes merge last, into the same namespace as folded children,
	// so a child and an attribute sharing a name collide into one
	// multi-valued property with the child value first.
	if v, present := rec[models.KeyAttrs]; present {
		attrs, ok := v.(models.Object)
		if !ok {
			return errors.NewTransformError(
				fmt.Sprintf("attributes key holds %T, not an object", v),
				errors.ErrMalformedTree,
			)
		}
		for name, value := range attrs {
			merge(rec, name, value)
		}
		delete(rec, models.KeyAttrs)
	}
	return nil
}

// collapseText reduces a simplified child that carries nothing but text
// to the plain string itself.
func collapseText(child models.Object) models.Value {
	if len(child) == 1 {
		if text, ok := child[models.KeyText]; ok {
			return text
		}
	}
	return child
}

// merge sets a property, coercing repeated names into an array: an
// existing single value is wrapped into a one-element array first, then
// the new value is appended.
func merge(rec models.Object, name string, value models.Value) {
	existing, present := rec[name]
	if !present {
		rec[name] = value
		return
	}
	if arr, ok := existing.(models.Array); ok {
		rec[name] = append(arr, value)
		return
	}
	rec[name] = models.Array{existing, value}
}
