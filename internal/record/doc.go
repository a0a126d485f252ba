// Package record implements the Record Store (C4): the system of
// record for a Record's lifecycle state, wrapped-key envelopes, and
// content binding. Writers are serialized per record; readers observe
// an atomic snapshot copy.
package record
