package main

import (
	"bytes"
	"fmt"
	"go/format"
	"strings"
	"text/template"
	"unicode"

	"github.com/tamirms/phfmap"
)

var goSourceTmpl = template.Must(template.New("gosource").Funcs(template.FuncMap{
	"quote":  func(b []byte) string { return fmt.Sprintf("%q", b) },
	"ints":   joinInts,
	"export": exportName,
}).Parse(`// Code generated by phfgen. DO NOT EDIT.
// phfgen stamp: {{.Stamp}}

package {{.Package}}

import "github.com/tamirms/phfmap"

// {{.Name}}Signature holds the byte positions found for {{.Name}}Entries.
// Passing it to phfmap.WithSignature skips the signature search.
var {{.Name}}Signature = []int{ {{ints .Signature}} }

// {{.Name}}Entries lists the {{len .Entries}} keys of the {{.Name}} table.
var {{.Name}}Entries = []phfmap.Entry[uint64]{
{{- range .Entries}}
	{Key: []byte({{quote .Key}}), Value: {{.Value}}},
{{- end}}
}

// New{{export .Name}}Table builds the {{.Name}} table.
//
// Stats at generation time: max hash {{.MaxHash}}, {{.Attempts}} weight search attempts.
func New{{export .Name}}Table() (*phfmap.Table[uint64], error) {
	return phfmap.New({{.Name}}Entries, phfmap.WithSignature({{.Name}}Signature))
}
`))

type goSourceData struct {
	Package   string
	Name      string
	Stamp     phfmap.Digest
	Signature []int
	Entries   []phfmap.Entry[uint64]
	MaxHash   int
	Attempts  int
}

// renderGoSource returns gofmt-ed Go source that rebuilds table.
func renderGoSource(spec *TableSpec, stamp phfmap.Digest, table *phfmap.Table[uint64]) ([]byte, error) {
	data := goSourceData{
		Package:   spec.Go.Package,
		Name:      spec.Name,
		Stamp:     stamp,
		Signature: table.Signature(),
		MaxHash:   table.MaxHash(),
		Attempts:  table.Stats().Attempts,
	}
	for k, v := range table.All() {
		data.Entries = append(data.Entries, phfmap.Entry[uint64]{Key: k, Value: v})
	}

	var buf bytes.Buffer
	if err := goSourceTmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render %s: %w", spec.Name, err)
	}
	src, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("format %s: %w", spec.Name, err)
	}
	return src, nil
}

// stampLine is the header line that records the stamp in Go output.
func stampLine(stamp phfmap.Digest) string {
	return "// phfgen stamp: " + stamp.String() + "\n"
}

func joinInts(xs []int) string {
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = fmt.Sprint(x)
	}
	return strings.Join(parts, ", ")
}

func exportName(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
