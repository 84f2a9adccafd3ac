/*
Package resolver turns a Swagger 2.0 document that references entities in
other documents into a single self-contained document.

# Overview

A reference such as "common.json#/definitions/Error" names an entity by
category ("definitions", "parameters", "responses" or "securityDefinitions")
and name. Resolving the root document:

  - rewrites every cross-file $ref to its local form ("#/definitions/Error")
    at the place it was written
  - copies each referenced entity into the root under the same category and
    name, after first completing that entity's own references
  - copies every entity that extends an inlined entity through allOf, even
    when nothing references the subtype directly

References under example subtrees (example, examples, x-ms-examples) are
never followed. Only the category and name of a reference decide what is
inlined; deeper fragment segments are left as written.

# Usage

	r := resolver.New()
	out, err := r.Resolve("api/swagger.json", text)

Or with functional options:

	result, err := resolver.ResolveWithOptions(
		resolver.WithFilePath("api/swagger.yaml"),
		resolver.WithOutputFormat(resolver.SourceFormatJSON),
	)
	fmt.Println(result.Stats.EntitiesInlined)

Documents are loaded through a filesystem.FileSystem. The default reads local
files and, when enabled, http and https URLs; filesystem.Memory serves
documents from memory.

# Cycles

Each entity is completed at most once per run. A reference cycle ends at the
first entity seen twice. By default entities are tracked by (category, name);
NameOnlyVisitKeys tracks them by name alone, so two entities sharing a name in
different categories only have the first one inlined.

# Errors

Any failure aborts the run and no document is returned. Errors wrap the
oaserrors types: a malformed $ref is a *oaserrors.ReferenceError matching
oaserrors.ErrMalformedReference, an unreadable file a *oaserrors.FileError,
and invalid document text a *oaserrors.ParseError.
*/
package resolver
