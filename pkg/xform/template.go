// Package xform renders submissions as XForm instance documents.
package xform

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aanoble/openhexa-pipelines-iaso/pkg/dataset"
	"github.com/aanoble/openhexa-pipelines-iaso/pkg/form"
	"github.com/valyala/fasttemplate"
)

const (
	NamespaceJR  = "http://openrosa.org/javarosa"
	NamespaceORX = "http://openrosa.org/xforms"

	// UUIDTag is the placeholder replaced by the instance UUID.
	UUIDTag = "uuid"
)

// ErrNoQuestions is returned when a template is requested for a schema
// without questions.
var ErrNoQuestions = errors.New("schema has no questions")

// Template is a compiled instance document of one form version.
type Template struct {
	FormID  string
	Version string
	// Group is the name of the wrapping group element, if any.
	Group string
	// Fields are the placeholders in document order.
	Fields []string

	tpl *fasttemplate.Template
}

// BuildTemplate creates the template of a form version. Fields are the
// dataset columns that are question names, in column order. When the form
// has a group, the first one wraps all fields.
func BuildTemplate(
	questions []form.Question,
	columns []string,
	formID, version string,
) (*Template, error) {
	if len(questions) == 0 {
		return nil, ErrNoQuestions
	}

	res := &Template{FormID: formID, Version: version}
	names := make(map[string]struct{}, len(questions))
	for _, q := range questions {
		if q.IsBeginGroup() {
			if res.Group == "" {
				res.Group = q.Name
			}
			continue
		}
		if strings.HasPrefix(q.Type, "end") {
			continue
		}
		names[q.Name] = struct{}{}
	}
	for _, col := range columns {
		if _, ok := names[col]; ok && col != UUIDTag {
			res.Fields = append(res.Fields, col)
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b,
		"<data xmlns:jr=%q xmlns:orx=%q id=\"%s\" version=\"%s\">\n",
		NamespaceJR, NamespaceORX, escape(formID), escape(version),
	)
	indent := "  "
	if res.Group != "" {
		fmt.Fprintf(&b, "  <%s>\n", res.Group)
		indent = "    "
	}
	for _, f := range res.Fields {
		fmt.Fprintf(&b, "%s<%s>{{%s}}</%s>\n", indent, f, f, f)
	}
	if res.Group != "" {
		fmt.Fprintf(&b, "  </%s>\n", res.Group)
	}
	b.WriteString("  <meta>\n")
	b.WriteString("    <instanceID>uuid:{{uuid}}</instanceID>\n")
	b.WriteString("  </meta>\n")
	b.WriteString("</data>\n")

	tpl, err := fasttemplate.NewTemplate(b.String(), "{{", "}}")
	if err != nil {
		return nil, fmt.Errorf("cannot compile template: %w", err)
	}
	res.tpl = tpl
	return res, nil
}

// Render substitutes the values of a record and the instance UUID. Nil
// and absent values render as empty elements, values are XML-escaped.
func (t *Template) Render(rec dataset.Record, uuid string) (string, error) {
	var b strings.Builder
	_, err := t.tpl.ExecuteFunc(&b, func(w io.Writer, tag string) (int, error) {
		if tag == UUIDTag {
			return w.Write([]byte(escape(uuid)))
		}
		return w.Write([]byte(escape(dataset.Format(rec[tag]))))
	})
	if err != nil {
		return "", fmt.Errorf("cannot render template: %w", err)
	}
	return b.String(), nil
}

func escape(s string) string {
	var b strings.Builder
	// strings.Builder never fails
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}
