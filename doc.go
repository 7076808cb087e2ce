/*

Pairtree is a filesystem object store that locates objects by mapping
identifier strings to directory paths a few characters at a time.  An
object directory holds all of the files that make up the object, so a
system that knows nothing about the objects can still deliver any
object's files by identifier, and can walk the tree to enumerate every
identifier it contains.

See http://www.cdlib.org/inside/diglib/pairtree/pairtreespec.html
version 0.1.

Vocabulary:

- id: caller-supplied identifier, any UTF-8 string
- encoded id: id after hex-escaping and single-character substitution;
	safe to use as a path component
- shorty: fixed-length slice of an encoded id, used as one directory
	level; the last shorty of an id may be shorter
- shorty length: number of characters per shorty; recorded in the
	store config at creation
- root: the store directory holding pairtree_version0_1,
	pairtree_prefix, pairtree_config.json and the shorty tree
- object: directory reached by following an id's shorties from root
- part: named byte stream stored as a file in an object directory,
	optionally below a relative subpath
- uri base: prefix joined with an id to form an object's URI

*/

package pairtree
