// Package projections provides deterministic coordinate reference system
// data, search helpers, and a small net/http handler that returns JSON
// options for SRID select inputs.
//
// The default handler responds to GET and HEAD requests and supports query and
// limit parameters to filter results. The backing data is loaded from the
// embedded EPSG directory under data/epsg_directory.txt.
package projections
