package graphwire

import (
	"reflect"
	"strings"
	"unicode"
	"unicode/utf8"
)

// structPlan is the cached field layout of a struct type.
type structPlan struct {
	fields []fieldInfo
	byName map[string]int
	byFold map[string]int
}

type fieldInfo struct {
	idx  int
	name string
}

// lookup returns the struct field index for a descriptor entry.
func (p *structPlan) lookup(f ClassField) (int, bool) {
	if f.Index >= 0 {
		if f.Index < len(p.fields) {
			return p.fields[f.Index].idx, true
		}
		return 0, false
	}
	if i, ok := p.byName[f.Name]; ok {
		return p.fields[i].idx, true
	}
	if i, ok := p.byFold[strings.ToLower(f.Name)]; ok {
		return p.fields[i].idx, true
	}
	return 0, false
}

func (r *Registry) plan(t reflect.Type) *structPlan {
	r.mu.RLock()
	if p, ok := r.plans[t]; ok {
		r.mu.RUnlock()
		return p
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()

	// Double-check
	if p, ok := r.plans[t]; ok {
		return p
	}
	p := buildPlan(t)
	r.plans[t] = p
	return p
}

func buildPlan(t reflect.Type) *structPlan {
	p := &structPlan{
		byName: make(map[string]int),
		byFold: make(map[string]int),
	}
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue // skip unexported
		}
		name := sf.Tag.Get("graphwire")
		if name == "-" {
			continue
		}
		if j := strings.IndexByte(name, ','); j >= 0 {
			name = name[:j]
		}
		if name == "" {
			name = lowerFirst(sf.Name)
		}
		if _, dup := p.byName[name]; dup {
			continue
		}
		p.byName[name] = len(p.fields)
		if _, dup := p.byFold[strings.ToLower(name)]; !dup {
			p.byFold[strings.ToLower(name)] = len(p.fields)
		}
		p.fields = append(p.fields, fieldInfo{idx: i, name: name})
	}
	return p
}

func lowerFirst(s string) string {
	r, n := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError || unicode.IsLower(r) {
		return s
	}
	return string(unicode.ToLower(r)) + s[n:]
}
