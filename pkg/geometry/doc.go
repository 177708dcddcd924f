// Package geometry defines the spatial value type shared across the module: an
// orb geometry paired with the spatial reference identifier (SRID) it is
// expressed in. Codecs translate values to and from WKT, EWKT, and GeoJSON so
// form submissions, SQL columns, and rendered map payloads all round-trip
// through the same representation. Projections convert values between
// reference systems; only registered SRIDs are accepted, and conversion always
// routes through WGS84 longitude/latitude so any two registered systems can be
// paired. Collection building groups reprojected values into a single
// geometry-collection value, which is what the changelist map aggregates per
// record.
package geometry
