package query

import (
	"reflect"
	"time"

	"github.com/go-viper/mapstructure/v2"
)

// MapRecord is a record held as a field to value map, decoded through json tags.
type MapRecord map[string]any

func (m MapRecord) Decode(dst any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           dst,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			bytesToString,
			mapstructure.StringToTimeHookFunc(time.RFC3339Nano),
		),
	})
	if err != nil {
		return err
	}
	return dec.Decode(map[string]any(m))
}

// bytesToString turns driver []byte values into strings before weak decoding.
func bytesToString(from reflect.Type, to reflect.Type, data any) (any, error) {
	b, ok := data.([]byte)
	if !ok {
		return data, nil
	}
	if to.Kind() == reflect.Slice && to.Elem().Kind() == reflect.Uint8 {
		return data, nil
	}
	return string(b), nil
}
