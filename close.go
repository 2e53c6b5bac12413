package docarray

// Close persists the offset2id table and releases the backend.
//
// For remote backends this drops one reference of the shared collection
// handle; a non-persistent collection is deleted with its last reference.
func (da *DocumentArray) Close() error {
	if da == nil {
		return nil
	}
	return translateError(da.backend.Close())
}
