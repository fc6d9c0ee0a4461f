// Package rml reads Report Markup Language (RML) documents into a layout
// model.
//
// RML is an XML vocabulary describing page templates, frames, paragraph and
// table styles, page graphics and a story of flowables. This package does not
// render anything: it decodes the XML, resolves styles against their parents
// and converts attribute values (lengths, colors, alignments) into typed
// values. The pdf subpackage lays the resulting Document out and writes PDF.
//
// Example:
//
//	doc, err := rml.Parse(strings.NewReader(`<document>
//	  <story><para>Hello</para></story>
//	</document>`))
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(len(doc.Story))
//
// Only the commonly used subset of RML is understood. Unknown elements are
// recorded in Document.Skipped and otherwise ignored.
package rml
