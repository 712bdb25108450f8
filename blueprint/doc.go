// Package blueprint loads parameterized source templates into an immutable Catalog and
// renders them against a Context.
//
// Marker syntax:
//
//	{{name}}              value inserted verbatim
//	{{{name}}}            value rendered as a template against the same context first
//	{{a.b.c}}             dotted path into Object values
//	{{name?}}             optional; renders empty when unbound
//	{{#name}}..{{/name}}  body rendered once per list item, {{.}} is the item
//	{{>name}}             fragment: renders other blueprints in place
//	{{! text }}           comment
//
// A fragment is spliced without the final newline of its text.
//
// Import lines recognized by an ImportRule are pulled out of every fragment, merged with
// the top-level ones, deduplicated by key and written back as one sorted block.
package blueprint
