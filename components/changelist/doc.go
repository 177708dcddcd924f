// Package changelist serves the admin list view for one resource: a paginated,
// filterable table of rows with every row's geometries aggregated onto a single
// read-only map above the table.
//
// The handler answers GET and HEAD. Query parameters follow the admin
// convention: p selects the page, q searches, o orders, and field__op pairs
// filter rows. A request whose lookups the store rejects is answered with a
// redirect back to the bare path carrying the e error flag; a request that
// still fails with the flag present renders the database-error page instead of
// redirecting again, so broken setups surface rather than loop.
//
// Rows keep their geometries on the shared map: each configured geometry field
// is read (through an accessor hook when values are derived rather than
// stored), reprojected into the display SRID, and combined into one collection
// per row whose popup links back to the row's edit page. The same aggregation
// is exported as a FeatureCollection when the request asks for format=geojson.
package changelist
