// Package state persists pipeline state documents.
//
// A pipeline state is an object of the form
//
//	{"sources": {"<source>": {"resources": {"<resource>": {...}}, ...}}, ...}
//
// and may hold extended values (decimals, temporals, bytes) anywhere, so it
// is always written in typed mode.
//
// Serialize and Deserialize convert a state to and from typed JSON.
// Compress and Decompress wrap that in a compressed, base64 encoded string
// that can travel inside another JSON document. DropResources resets
// resource states and deletes arbitrary state paths. Store keeps numbered
// versions of each pipeline's state on a blobstore.Store.
package state
