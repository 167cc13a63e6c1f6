package sitemap

import (
	"bytes"
	"encoding/xml"
	"html"
)

const (
	DefaultXmlnsTpl = "http://www.sitemaps.org/schemas/sitemap/0.9"
	DefaultXmlnsImg = "http://www.google.com/schemas/sitemap-image/1.1"

	LastModFormat = "2006-01-02T15:04:05-07:00"

	indentStep = 5
)

type Generator struct {
	xmlnsTpl string
	xmlnsImg string
}

func NewGenerator(xmlnsTpl, xmlnsImg string) *Generator {
	if xmlnsTpl == "" {
		xmlnsTpl = DefaultXmlnsTpl
	}
	if xmlnsImg == "" {
		xmlnsImg = DefaultXmlnsImg
	}
	return &Generator{xmlnsTpl: xmlnsTpl, xmlnsImg: xmlnsImg}
}

// Standard renders one url element per entry, without dropping any.
func (g *Generator) Standard(entries []SitemapEntry) ([]byte, error) {
	var buf bytes.Buffer

	g.writeHeader(&buf)
	buf.WriteString(`<urlset xmlns="`)
	xml.EscapeText(&buf, []byte(g.xmlnsTpl))
	buf.WriteString("\">\n")

	for _, entry := range entries {
		g.writeIndent(&buf, indentStep)
		buf.WriteString("<url>\n")
		g.writeElement(&buf, "loc", html.EscapeString(entry.URL), 2*indentStep)
		g.writeElement(&buf, "lastmod", html.EscapeString(entry.LastModified.Format(LastModFormat)), 2*indentStep)
		g.writeIndent(&buf, indentStep)
		buf.WriteString("</url>\n")
	}

	buf.WriteString("</urlset>")
	return buf.Bytes(), nil
}

// Images renders the image variant. Entries without images are left out.
func (g *Generator) Images(entries []ImageSitemapEntry) ([]byte, error) {
	var buf bytes.Buffer

	g.writeHeader(&buf)
	buf.WriteString(`<urlset xmlns="`)
	xml.EscapeText(&buf, []byte(g.xmlnsTpl))
	buf.WriteString(`" xmlns:image="`)
	xml.EscapeText(&buf, []byte(g.xmlnsImg))
	buf.WriteString("\">\n")

	for _, entry := range entries {
		if len(entry.Images) == 0 {
			continue
		}

		g.writeIndent(&buf, indentStep)
		buf.WriteString("<url>\n")
		g.writeElement(&buf, "loc", entry.URL, 2*indentStep)
		for _, image := range entry.Images {
			g.writeIndent(&buf, 2*indentStep)
			buf.WriteString("<image:image>\n")
			g.writeElement(&buf, "image:loc", image.URL, 3*indentStep)
			g.writeIndent(&buf, 2*indentStep)
			buf.WriteString("</image:image>\n")
		}
		g.writeIndent(&buf, indentStep)
		buf.WriteString("</url>\n")
	}

	buf.WriteString("</urlset>")
	return buf.Bytes(), nil
}

func (g *Generator) writeHeader(buf *bytes.Buffer) {
	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	buf.WriteString("\n")
}

func (g *Generator) writeElement(buf *bytes.Buffer, tag, content string, indent int) {
	if content == "" {
		return
	}

	g.writeIndent(buf, indent)
	buf.WriteString("<")
	buf.WriteString(tag)
	buf.WriteString(">")
	xml.EscapeText(buf, []byte(content))
	buf.WriteString("</")
	buf.WriteString(tag)
	buf.WriteString(">\n")
}

func (g *Generator) writeIndent(buf *bytes.Buffer, indent int) {
	for i := 0; i < indent; i++ {
		buf.WriteByte(' ')
	}
}
