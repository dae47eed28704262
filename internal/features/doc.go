// Package features parses, models, and writes feature tracking documents.
//
// A feature tracking document (features.xml) groups features into
// categories and carries aggregate counters on its root element:
//
//	<?xml version="1.0" encoding="UTF-8"?>
//	<features project="jwt-auth" total="2" completed="1">
//	  <category name="Core Setup">
//	    <feature id="FEAT-001" status="complete" priority="high">
//	      <description>Initial project setup</description>
//	      <steps>
//	        <step>Create project structure</step>
//	      </steps>
//	      <notes>Scaffolded with the default layout</notes>
//	    </feature>
//	    <feature id="FEAT-002" status="blocked" priority="medium">
//	      <description>Token refresh</description>
//	      <steps>
//	        <step>Add refresh endpoint</step>
//	      </steps>
//	      <notes>Blocked: waiting on the session store</notes>
//	    </feature>
//	  </category>
//	</features>
//
// # Tree
//
// Parsing produces two views of the same input:
//
//   - A generic node tree (Element, CharData, Comment, ProcInst, Directive)
//     that keeps attribute order, raw names and comments so the document can
//     be written back without losing anything but insignificant whitespace.
//   - A typed view (Document, Category, Feature) built once after parsing,
//     which the validator walks instead of probing attribute strings.
//
// # Status Values
//
//   - "pending": not yet started
//   - "in-progress": currently being worked on
//   - "complete": finished and tested
//   - "blocked": cannot proceed (see notes)
//
// # Priority Values
//
//   - "high", "medium", "low"
//
// # File Format
//
// When writing documents, the package uses:
//   - An XML declaration with UTF-8 encoding
//   - 2-space indentation per nesting level
//   - Leaf element text written as-is
//   - Trailing newline
package features
