// Package pathutil provides reference and location path helpers shared by
// the resolver and its front ends.
//
// [PathBuilder] renders the location of a node inside a document as a JSON
// path using push/pop semantics, so recursive scans only materialize a string
// when one is needed:
//
//	path := pathutil.Get()
//	defer pathutil.Put(path)
//
//	path.Push("definitions")
//	path.Push("Pet")
//	path.Push("allOf")
//	path.PushIndex(0)
//	path.String() // "$.definitions.Pet.allOf[0]"
//
// The reference helpers build and split local OAS 2.0 entity pointers:
//
//	pathutil.EntityRef("definitions", "Error")   // "#/definitions/Error"
//	pathutil.SplitSegments("#/definitions/Error") // ["definitions" "Error"]
//
// [SanitizeOutputPath] and [OutputPathFor] prepare output file paths for the
// command-line front end and reject symlinks.
package pathutil
