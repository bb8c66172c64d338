package prompt

import (
	"math"
	"reflect"
)

// Kind selects the answer strategy for a question type.
type Kind int

const (
	// KindOther covers input, password, number and any unknown type.
	KindOther Kind = iota
	// KindList accepts any present answer, including nil.
	KindList
	// KindConfirm distinguishes an explicit false from an absent answer.
	KindConfirm
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindList:
		return "list"
	case KindConfirm:
		return "confirm"
	default:
		return "other"
	}
}

var kindsByType = map[string]Kind{
	"list":    KindList,
	"confirm": KindConfirm,
}

// KindOf returns the strategy kind for a question type.
func KindOf(questionType string) Kind {
	if k, ok := kindsByType[questionType]; ok {
		return k
	}
	return KindOther
}

// isSetFunc reports whether a provided answer is final.
// present is false when the answer map has no entry for the question.
type isSetFunc func(answer any, present bool) bool

var strategies = map[Kind]isSetFunc{
	KindList: func(_ any, present bool) bool {
		return present
	},
	KindConfirm: func(answer any, _ bool) bool {
		return Truthy(answer) || answer == false
	},
	KindOther: func(answer any, _ bool) bool {
		return Truthy(answer)
	},
}

// IsSet reports whether answer counts as set for a question of kind k.
func (k Kind) IsSet(answer any, present bool) bool {
	return strategies[k](answer, present)
}

// Truthy reports whether v is truthy: nil, false, zero numbers, NaN and the
// empty string are falsy; everything else is truthy.
func Truthy(v any) bool {
	if v == nil {
		return false
	}
	switch x := v.(type) {
	case bool:
		return x
	case string:
		return x != ""
	case float64:
		return x != 0 && !math.IsNaN(x)
	case float32:
		return x != 0 && !math.IsNaN(float64(x))
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() != 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return rv.Uint() != 0
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		return f != 0 && !math.IsNaN(f)
	case reflect.String:
		return rv.Len() != 0
	case reflect.Bool:
		return rv.Bool()
	case reflect.Pointer, reflect.Interface:
		return !rv.IsNil()
	}
	return true
}
