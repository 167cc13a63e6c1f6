package sitemap

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"

	"github.com/lysyi3m/sitemap-xml/app/database"
)

// ExcludeQuery is a compiled exclusion query. Only queries anchored to the item
// itself ("self::...") are supported.
type ExcludeQuery struct {
	source string
	expr   *xpath.Expr
}

// CompileExcludeQuery returns nil without error when the query is empty or not
// anchored to self.
func CompileExcludeQuery(query string) (*ExcludeQuery, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	if !strings.HasPrefix(query, "self::") {
		slog.Debug("Ignoring exclusion query not anchored to self", "query", query)
		return nil, nil
	}

	expr, err := xpath.Compile(query)
	if err != nil {
		return nil, fmt.Errorf("failed to compile exclusion query %q: %w", query, err)
	}

	return &ExcludeQuery{source: query, expr: expr}, nil
}

func (q *ExcludeQuery) String() string {
	return q.source
}

// Match evaluates the query with the item as context node.
func (q *ExcludeQuery) Match(item *database.Item) (bool, error) {
	doc, err := xmlquery.Parse(bytes.NewReader(itemDocument(item)))
	if err != nil {
		return false, fmt.Errorf("failed to build item document: %w", err)
	}

	node := doc.SelectElement("item")
	if node == nil {
		return false, fmt.Errorf("item document has no root element")
	}

	return xmlquery.QuerySelector(node, q.expr) != nil, nil
}

func itemDocument(item *database.Item) []byte {
	var buf bytes.Buffer

	buf.WriteString("<item")
	writeAttr(&buf, "id", item.ID)
	writeAttr(&buf, "name", item.Name)
	writeAttr(&buf, "key", strings.ToLower(item.Name))
	writeAttr(&buf, "templateid", item.TemplateID)
	writeAttr(&buf, "templatename", item.TemplateName)
	writeAttr(&buf, "path", item.Path)
	buf.WriteString(">")

	names := make([]string, 0, len(item.Fields))
	for name := range item.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		buf.WriteString("<field")
		writeAttr(&buf, "name", name)
		buf.WriteString(">")
		xml.EscapeText(&buf, []byte(item.Fields[name]))
		buf.WriteString("</field>")
	}

	buf.WriteString("</item>")
	return buf.Bytes()
}

func writeAttr(buf *bytes.Buffer, name, value string) {
	buf.WriteString(" ")
	buf.WriteString(name)
	buf.WriteString(`="`)
	xml.EscapeText(buf, []byte(value))
	buf.WriteString(`"`)
}
