package config

import "fmt"

type valueCache struct {
	stringVal      string
	stringArrayVal []string
	intVal         int64
	boolVal        bool
}

func (vc *valueCache) getData(opt *Option) interface{} {
	switch opt.OptType {
	case OptTypeBool:
		return vc.boolVal
	case OptTypeInt:
		return vc.intVal
	case OptTypeString:
		return vc.stringVal
	case OptTypeStringArray:
		return vc.stringArrayVal
	default:
		return nil
	}
}

// validateValue checks value against the type and validation regex of
// option and returns it in its cached form.
func validateValue(option *Option, value interface{}) (*valueCache, error) {
	wrongType := func() error {
		return newInvalidValueError(option.Key, fmt.Sprintf("%T", value), "expected type "+option.TypeName())
	}
	matches := func(s string) bool {
		return option.compiledRegex == nil || option.compiledRegex.MatchString(s)
	}

	switch option.OptType {
	case OptTypeString:
		s, ok := value.(string)
		if !ok {
			return nil, wrongType()
		}
		if !matches(s) {
			return nil, newInvalidValueError(option.Key, s, "validation regex failed")
		}
		return &valueCache{stringVal: s}, nil

	case OptTypeStringArray:
		list, ok, err := toStringArray(value)
		switch {
		case err != nil:
			return nil, newInvalidValueError(option.Key, value, err.Error())
		case !ok:
			return nil, wrongType()
		}
		for pos, entry := range list {
			if !matches(entry) {
				return nil, newInvalidValueError(option.Key, fmt.Sprintf("element %s at index %d", entry, pos), "validation regex failed")
			}
		}
		return &valueCache{stringArrayVal: list}, nil

	case OptTypeInt:
		n, ok := toInt64(value)
		if !ok {
			if f, isFloat := value.(float64); isFloat {
				return nil, newInvalidValueError(option.Key, f, "not a whole number")
			}
			return nil, wrongType()
		}
		if !matches(fmt.Sprintf("%d", n)) {
			return nil, newInvalidValueError(option.Key, n, "validation regex failed")
		}
		return &valueCache{intVal: n}, nil

	case OptTypeBool:
		b, ok := value.(bool)
		if !ok {
			return nil, wrongType()
		}
		return &valueCache{boolVal: b}, nil

	default:
		return nil, ErrUnsupportedType
	}
}

// toStringArray accepts []string and the []interface{} that JSON decoding
// yields.
func toStringArray(value interface{}) (list []string, ok bool, err error) {
	switch v := value.(type) {
	case []string:
		return v, true, nil
	case []interface{}:
		list = make([]string, len(v))
		for pos, entry := range v {
			s, isString := entry.(string)
			if !isString {
				return nil, true, fmt.Errorf("element %+v at index %d is not a string", entry, pos)
			}
			list[pos] = s
		}
		return list, true, nil
	default:
		return nil, false, nil
	}
}
