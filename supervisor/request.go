// Package supervisor owns the bounded admin mailbox and the registry of
// running indexer tasks: spec.md §4.7's "admin messages (AssetReload,
// IndexStop, IndexRevert) are delivered via a bounded mailbox".
package supervisor

// IndexerID addresses one running indexer task.
type IndexerID struct {
	Namespace  string
	Identifier string
}

// AssetReloadRequest asks the addressed indexer to swap in a freshly
// compiled schema/handler pair, keeping its current cursor. Grounded on
// original_source/packages/fuel-indexer-lib/src/utils.rs::AssetReloadRequest.
type AssetReloadRequest struct {
	Namespace  string
	Identifier string
}

// IndexStopRequest asks the addressed indexer to set its kill flag and
// stop after its in-flight batch completes. Grounded on
// original_source/.../utils.rs::IndexStopRequest.
type IndexStopRequest struct {
	Namespace  string
	Identifier string
}

// IndexRevertRequest asks the addressed indexer to roll back to a named
// prior asset blob and re-seed its cursor from it. Grounded on
// original_source/.../utils.rs::IndexRevertRequest.
type IndexRevertRequest struct {
	Namespace             string
	Identifier            string
	PenultimateAssetID    int64
	PenultimateAssetBytes []byte
}

// ServiceRequest is the three-variant admin message enum delivered
// through the supervisor's mailbox. Exactly one field is set, matching
// the tagged union of original_source/.../utils.rs::ServiceRequest.
//
// CorrelationID identifies one admin message through its log lines;
// Dispatch fills it in with uuid.NewString if the caller left it blank,
// the same generate-on-default-if-unset pattern velox/contrib/mixin's
// ID mixin uses uuid.New for.
type ServiceRequest struct {
	CorrelationID string
	AssetReload   *AssetReloadRequest
	IndexStop     *IndexStopRequest
	IndexRevert   *IndexRevertRequest
}
