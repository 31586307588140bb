// Package mediawiki implements the ports.SectionEditor interface against
// a MediaWiki action API endpoint.
//
// The client speaks the classic form-encoded action API (action=query,
// action=edit, action=parse, action=compare) with formatversion=2. Writes
// carry the optimistic-concurrency token pair (starttimestamp and
// basetimestamp) so the server can detect edit conflicts on its side.
package mediawiki
