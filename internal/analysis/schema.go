package analysis

type FieldType string

const (
	TypeString     FieldType = "string"
	TypeEnum       FieldType = "enum"
	TypeStringList FieldType = "string_list"
)

// Field declares one key of the expected model output. Allowed is only used by enums.
type Field struct {
	Name     string
	Type     FieldType
	Required bool
	Allowed  []string
}

// Schema is the ordered set of fields a response is validated against.
type Schema []Field

func (s Schema) Field(name string) (Field, bool) {
	for _, f := range s {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Record holds the validated fields that were present in a response. Values
// are string for string and enum fields and []string for string lists.
type Record map[string]any

func (r Record) String(name string) string {
	s, _ := r[name].(string)
	return s
}

func (r Record) Strings(name string) []string {
	l, _ := r[name].([]string)
	return l
}
