// Package jsonpatch computes RFC 6902 patches between decoded JSON documents.
package jsonpatch

import (
	"bytes"
	"sort"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
)

const (
	OpAdd     = "add"
	OpRemove  = "remove"
	OpReplace = "replace"
)

// Operation is one patch step. Value is written for add and replace, even
// when it is null.
type Operation struct {
	Op    string `json:"op"`
	Path  string `json:"path"`
	Value any    `json:"value"`
}

func (o Operation) MarshalJSON() ([]byte, error) {
	if o.Op == OpRemove {
		return json.Marshal(struct {
			Op   string `json:"op"`
			Path string `json:"path"`
		}{o.Op, o.Path})
	}
	type plain Operation
	return json.Marshal(plain(o))
}

// Decode parses a document into the generic form Diff works on. Numbers stay
// json.Number so large rupiah amounts compare exactly.
func Decode(doc []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(doc))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

// DiffDocuments marshals a and b and returns the forward and reverse patches
// between them.
func DiffDocuments(a, b any) (fwd, bwd []Operation, err error) {
	av, err := roundTrip(a)
	if err != nil {
		return nil, nil, err
	}
	bv, err := roundTrip(b)
	if err != nil {
		return nil, nil, err
	}
	fwd, bwd = DiffBoth(av, bv, "")
	return fwd, bwd, nil
}

func roundTrip(v any) (any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return Decode(raw)
}

// Diff computes the patch that transforms a into b. Path is "" for the root.
// Object keys are visited in sorted order so the output is stable.
func Diff(a, b any, path string) []Operation {
	fwd, _ := DiffBoth(a, b, path)
	return fwd
}

// DiffBoth computes the forward (a to b) and reverse (b to a) patches in one
// traversal.
func DiffBoth(a, b any, path string) (fwd, bwd []Operation) {
	if a == nil && b == nil {
		return nil, nil
	}
	if a == nil || b == nil {
		return []Operation{replaceOp(path, b)}, []Operation{replaceOp(path, a)}
	}

	aMap, aIsMap := a.(map[string]any)
	bMap, bIsMap := b.(map[string]any)
	if aIsMap && bIsMap {
		return diffObjects(aMap, bMap, path)
	}

	aArr, aIsArr := a.([]any)
	bArr, bIsArr := b.([]any)
	if aIsArr && bIsArr {
		return diffArrays(aArr, bArr, path)
	}

	if aIsMap || bIsMap || aIsArr || bIsArr || a != b {
		return []Operation{replaceOp(path, b)}, []Operation{replaceOp(path, a)}
	}
	return nil, nil
}

func diffObjects(a, b map[string]any, path string) (fwd, bwd []Operation) {
	for _, k := range sortedKeys(a) {
		if _, ok := b[k]; !ok {
			childPath := path + "/" + escapeKey(k)
			fwd = append(fwd, removeOp(childPath))
			bwd = append(bwd, addOp(childPath, a[k]))
		}
	}

	for _, k := range sortedKeys(b) {
		childPath := path + "/" + escapeKey(k)
		av, inA := a[k]
		if !inA {
			fwd = append(fwd, addOp(childPath, b[k]))
			bwd = append(bwd, removeOp(childPath))
			continue
		}
		subFwd, subBwd := DiffBoth(av, b[k], childPath)
		fwd = append(fwd, subFwd...)
		bwd = append(bwd, subBwd...)
	}
	return fwd, bwd
}

func diffArrays(a, b []any, path string) (fwd, bwd []Operation) {
	common := min(len(a), len(b))

	for i := 0; i < common; i++ {
		subFwd, subBwd := DiffBoth(a[i], b[i], indexPath(path, i))
		fwd = append(fwd, subFwd...)
		bwd = append(bwd, subBwd...)
	}

	// removals run from the tail so earlier indices stay valid
	for i := len(a) - 1; i >= common; i-- {
		fwd = append(fwd, removeOp(indexPath(path, i)))
	}
	for i := common; i < len(a); i++ {
		bwd = append(bwd, addOp(indexPath(path, i), a[i]))
	}

	for i := common; i < len(b); i++ {
		fwd = append(fwd, addOp(indexPath(path, i), b[i]))
	}
	for i := len(b) - 1; i >= common; i-- {
		bwd = append(bwd, removeOp(indexPath(path, i)))
	}
	return fwd, bwd
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func indexPath(path string, i int) string {
	return path + "/" + strconv.Itoa(i)
}

func replaceOp(path string, value any) Operation {
	return Operation{Op: OpReplace, Path: path, Value: value}
}

func addOp(path string, value any) Operation {
	return Operation{Op: OpAdd, Path: path, Value: value}
}

func removeOp(path string) Operation {
	return Operation{Op: OpRemove, Path: path}
}

// escapeKey escapes a JSON Pointer token per RFC 6901.
func escapeKey(s string) string {
	s = strings.ReplaceAll(s, "~", "~0")
	s = strings.ReplaceAll(s, "/", "~1")
	return s
}
