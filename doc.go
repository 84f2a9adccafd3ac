// Package oasresolve turns a Swagger/OpenAPI 2.0 document that references
// entities in other files into a single self-contained document.
//
// # Overview
//
// API descriptions are often split across files: a root document declares
// paths and a handful of definitions, and refers to shared models, parameters
// and responses with external references such as
//
//	"$ref": "../common/types.json#/definitions/Error"
//
// oasresolve follows those references across file boundaries, copies every
// transitively required entity into the root document, and rewrites every
// external reference to its local form ("#/definitions/Error"). Subtypes that
// declare themselves through allOf on an entity being inlined are pulled in
// as well, even when nothing in the root references them directly.
//
// The library consists of these packages:
//
//   - resolver: the resolution engine, reference scanner and pointer model
//   - filesystem: the file-system collaborator used to load external documents
//   - oaserrors: structured error types usable with errors.Is and errors.As
//
// # Quick Start
//
//	import "github.com/erraggy/oasresolve/resolver"
//
//	r := resolver.New()
//	out, err := r.Resolve("specs/root.json", rootText)
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(out)
//
// Using functional options:
//
//	result, err := resolver.ResolveWithOptions(
//		resolver.WithFilePath("specs/root.yaml"),
//		resolver.WithLogger(resolver.NewSlogAdapter(slog.Default())),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Printf("inlined %d entities\n", result.Stats.EntitiesInlined)
//
// # Command-Line Interface
//
// The oasresolve command wraps the library:
//
//	oasresolve resolve -o bundled.json specs/root.json
//	oasresolve resolve --out-dir dist 'specs/**/root.json'
//	oasresolve watch -o bundled.json specs/root.json
//	oasresolve mcp
package oasresolve
