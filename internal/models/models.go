package models

// Value is a generic type to represent any JSON value this tool produces.
// This can be a string, an Object, or an Array; the converter never emits
// numbers, booleans, or nulls.
type Value interface{}

// Object represents a JSON object, which is a map of strings to Values.
type Object map[string]Value

// Array represents a JSON array, which is a slice of Values.
type Array []Value

// Reserved keys used by the extractor for raw element records. The leading
// colon keeps them outside the namespace of legal XML local names, so they
// cannot collide with real tag or attribute names.
const (
	// KeyTag holds the element's tag local name; present on every record.
	KeyTag = ":t"
	// KeyAttrs holds the attribute name/value map; present only when the
	// element has at least one attribute.
	KeyAttrs = ":a"
	// KeyChildren holds the ordered child records; always present on a
	// deep-converted record (possibly empty), absent on the shallow root
	// record.
	KeyChildren = ":c"
	// KeyText holds the element's trimmed text content; present only when
	// non-empty after trimming.
	KeyText = ":x"
)

// NewRecord creates an element record carrying just its tag name.
func NewRecord(tag string) Object {
	return Object{KeyTag: tag}
}

// Tag returns the record's tag name, or "" if the record has none.
func (o Object) Tag() string {
	tag, _ := o[KeyTag].(string)
	return tag
}

// Children returns the record's child slice and whether the children key
// is present and holds an Array.
func (o Object) Children() (Array, bool) {
	v, present := o[KeyChildren]
	if !present {
		return nil, false
	}
	children, ok := v.(Array)
	return children, ok
}
