// Package format prettifies dashboard responses for human inspection.
package format

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime"
	"strings"

	"github.com/beevik/etree"
	"github.com/gabriel-vasile/mimetype"
	"github.com/yosssi/gohtml"
)

// Body prettifies body according to its declared content type. When the content type is
// missing or unknown the format is sniffed with Prettify. Bodies that cannot be
// prettified are returned unchanged.
func Body(contentType string, body []byte) []byte {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = ""
	}

	var pretty []byte
	switch mediaType {
	case "application/json":
		pretty, err = indentJSON(body)
	case "image/svg+xml", "application/xml", "text/xml":
		pretty, err = indentXML(body)
	case "text/html":
		pretty = formatHTML(body)
	default:
		pretty, err = Prettify(body)
	}
	if err != nil || len(pretty) == 0 {
		return body
	}
	return pretty
}

// Prettify will attempt to prettify the body or return an empty byte slice if it fails.
// JSON, XML (including SVG) and HTML are recognised, in that order.
func Prettify(bodyBytes []byte) ([]byte, error) {
	if len(bodyBytes) == 0 {
		return []byte{}, nil
	}

	trimmedBody := bytes.TrimSpace(bodyBytes)

	if json.Valid(trimmedBody) {
		return indentJSON(trimmedBody)
	}

	if pretty, err := indentXML(trimmedBody); err == nil {
		return pretty, nil
	}

	// Check HTML (mimetype OR prefix)
	contentType := mimetype.Detect(trimmedBody).String()
	if strings.Contains(contentType, "text/html") ||
		(bytes.HasPrefix(trimmedBody, []byte("<")) && !bytes.HasPrefix(trimmedBody, []byte("<?xml"))) {
		return formatHTML(trimmedBody), nil
	}

	return []byte{}, nil
}

func indentJSON(body []byte) ([]byte, error) {
	var out bytes.Buffer
	if err := json.Indent(&out, bytes.TrimSpace(body), "", "  "); err != nil {
		return nil, fmt.Errorf("indenting JSON : %w", err)
	}
	return out.Bytes(), nil
}

func indentXML(body []byte) ([]byte, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(bytes.TrimSpace(body)); err != nil {
		return nil, fmt.Errorf("reading XML : %w", err)
	}
	if doc.Root() == nil {
		return nil, fmt.Errorf("reading XML : no root element")
	}
	doc.Indent(1)
	var output bytes.Buffer
	if _, err := doc.WriteTo(&output); err != nil {
		return nil, fmt.Errorf("writing indented XML : %w", err)
	}
	return output.Bytes(), nil
}

// formatHTML returns the gohtml rendering of body, or nothing when gohtml changed nothing.
func formatHTML(body []byte) []byte {
	trimmed := bytes.TrimSpace(body)
	output := gohtml.FormatBytes(trimmed)
	if bytes.Equal(output, trimmed) || len(output) == 0 {
		return []byte{}
	}
	return output
}
