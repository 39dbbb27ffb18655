package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"

	"github.com/fxamacker/cbor/v2"
)

var (
	cborEnc cbor.EncMode
	cborDec cbor.DecMode
)

func init() {
	var err error
	encOptions := cbor.CoreDetEncOptions()
	encOptions.TextMarshaler = cbor.TextMarshalerTextString
	if cborEnc, err = encOptions.EncMode(); err != nil {
		panic("graphwire: CBOR encoder initialization failed: " + err.Error())
	}
	if cborDec, err = (cbor.DecOptions{}).DecMode(); err != nil {
		panic("graphwire: CBOR decoder initialization failed: " + err.Error())
	}
}

// parseInput decodes JSON or CBOR into plain Go values.
func parseInput(format string, data []byte) (any, error) {
	var value any
	switch format {
	case "json":
		decoder := json.NewDecoder(bytes.NewReader(data))
		decoder.UseNumber()
		if err := decoder.Decode(&value); err != nil {
			return nil, fmt.Errorf("decode JSON: %w", err)
		}
		return convertNumbers(value), nil
	case "cbor":
		if err := cborDec.Unmarshal(data, &value); err != nil {
			return nil, fmt.Errorf("decode CBOR: %w", err)
		}
		return value, nil
	default:
		return nil, fmt.Errorf("unknown input format %q", format)
	}
}

// formatOutput renders a decoded graph as JSON or CBOR.
func formatOutput(format string, value any) ([]byte, error) {
	switch format {
	case "json":
		plain, err := jsonValue(value, map[uintptr]bool{})
		if err != nil {
			return nil, err
		}
		out, err := json.MarshalIndent(plain, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encode JSON: %w", err)
		}
		return append(out, '\n'), nil
	case "cbor":
		out, err := cborEnc.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("encode CBOR: %w", err)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unknown output format %q", format)
	}
}

// convertNumbers turns json.Number into int64 or float64.
func convertNumbers(v any) any {
	switch value := v.(type) {
	case json.Number:
		if integer, err := value.Int64(); err == nil {
			return integer
		}
		if float, err := value.Float64(); err == nil {
			return float
		}
		return value.String()
	case map[string]any:
		for key, element := range value {
			value[key] = convertNumbers(element)
		}
		return value
	case []any:
		for index, element := range value {
			value[index] = convertNumbers(element)
		}
		return value
	default:
		return v
	}
}

// jsonValue rewrites maps with non-string keys and errors into forms
// encoding/json accepts. Shared values are copied; cycles are an error.
func jsonValue(v any, active map[uintptr]bool) (any, error) {
	switch value := v.(type) {
	case map[any]any:
		return enter(value, active, func() (any, error) {
			out := make(map[string]any, len(value))
			keys := make([]string, 0, len(value))
			byKey := make(map[string]any, len(value))
			for k, e := range value {
				s := fmt.Sprint(k)
				keys = append(keys, s)
				byKey[s] = e
			}
			sort.Strings(keys)
			for _, k := range keys {
				e, err := jsonValue(byKey[k], active)
				if err != nil {
					return nil, err
				}
				out[k] = e
			}
			return out, nil
		})
	case map[string]any:
		return enter(value, active, func() (any, error) {
			out := make(map[string]any, len(value))
			for k, e := range value {
				j, err := jsonValue(e, active)
				if err != nil {
					return nil, err
				}
				out[k] = j
			}
			return out, nil
		})
	case []any:
		return enter(value, active, func() (any, error) {
			out := make([]any, len(value))
			for i, e := range value {
				j, err := jsonValue(e, active)
				if err != nil {
					return nil, err
				}
				out[i] = j
			}
			return out, nil
		})
	case error:
		return value.Error(), nil
	default:
		return v, nil
	}
}

func enter(container any, active map[uintptr]bool, walk func() (any, error)) (any, error) {
	rv := reflect.ValueOf(container)
	if rv.Len() == 0 {
		return walk()
	}
	p := rv.Pointer()
	if active[p] {
		return nil, fmt.Errorf("encode JSON: graph has a cycle through %T", container)
	}
	active[p] = true
	defer delete(active, p)
	return walk()
}
