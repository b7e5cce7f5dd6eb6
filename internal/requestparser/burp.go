package requestparser

import (
	"encoding/base64"
	"encoding/xml"
	"fmt"
	"strings"
)

// burpItems mirrors the Burp Suite XML export layout:
// <items><item><request base64="true|false">...</request></item></items>.
type burpItems struct {
	XMLName xml.Name   `xml:"items"`
	Items   []burpItem `xml:"item"`
}

type burpItem struct {
	Request burpRequest `xml:"request"`
}

type burpRequest struct {
	Base64 string `xml:"base64,attr"`
	Value  string `xml:",chardata"`
}

// IsBurpExport sniffs whether the data looks like a Burp items export.
func IsBurpExport(data []byte) bool {
	head := strings.TrimSpace(string(data))
	if idx := strings.Index(head, "<items"); idx >= 0 && idx < 200 {
		return true
	}
	return false
}

// ParseBurpXML extracts every request from a Burp items export.
func ParseBurpXML(data []byte) ([]*RawRequest, error) {
	var items burpItems
	if err := xml.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("failed to parse Burp XML export: %w", err)
	}

	requests := make([]*RawRequest, 0, len(items.Items))
	for i, item := range items.Items {
		text := item.Request.Value
		if strings.EqualFold(item.Request.Base64, "true") {
			decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(text))
			if err != nil {
				return nil, fmt.Errorf("failed to decode request %d of Burp export: %w", i, err)
			}
			text = string(decoded)
		}
		raw, err := ParseRaw(text)
		if err != nil {
			return nil, fmt.Errorf("failed to parse request %d of Burp export: %w", i, err)
		}
		requests = append(requests, raw)
	}
	return requests, nil
}
