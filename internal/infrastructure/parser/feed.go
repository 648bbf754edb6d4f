package parser

import (
	"bytes"
	"fmt"

	"github.com/mmcdole/gofeed"
)

const feedSniffBytes = 1024

// looksLikeFeed sniffs the head of a document for RSS, Atom or RDF roots.
func looksLikeFeed(document []byte) bool {
	head := document
	if len(head) > feedSniffBytes {
		head = head[:feedSniffBytes]
	}
	head = bytes.ToLower(head)
	return bytes.Contains(head, []byte("<rss")) ||
		bytes.Contains(head, []byte("<feed")) ||
		bytes.Contains(head, []byte("<rdf:rdf"))
}

// feedLinks returns item links in feed order.
func feedLinks(document []byte) ([]string, error) {
	feed, err := gofeed.NewParser().Parse(bytes.NewReader(document))
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	links := make([]string, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item.Link != "" {
			links = append(links, item.Link)
			continue
		}
		links = append(links, item.Links...)
	}
	return links, nil
}
