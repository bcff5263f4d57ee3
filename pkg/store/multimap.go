package store

import "bytes"

// Multimap tables store many secondary keys per primary key as
// zero-value rows: tag + primaryKey + 0x00 + secondaryKey -> {}.
// Scanning by primary-key prefix yields all of its secondary keys in
// sorted order, which is exactly what doc_ops and snapshot_index need
// (GlobalSeq ordering falls out of the byte-sorted secondary key when
// the caller encodes it big-endian).

const multimapSeparator = 0x00

func multimapKey(primary, secondary []byte) []byte {
	out := make([]byte, 0, len(primary)+1+len(secondary))
	out = append(out, primary...)
	out = append(out, multimapSeparator)
	out = append(out, secondary...)
	return out
}

// MultimapInsert adds (primary -> secondary) to the multimap table.
func (t *Txn) MultimapInsert(tag byte, primary, secondary []byte) error {
	if !t.writable {
		return ErrReadOnly
	}
	return t.Put(tag, multimapKey(primary, secondary), []byte{})
}

// MultimapDelete removes one (primary -> secondary) association.
func (t *Txn) MultimapDelete(tag byte, primary, secondary []byte) error {
	if !t.writable {
		return ErrReadOnly
	}
	return t.Delete(tag, multimapKey(primary, secondary))
}

// MultimapGet returns every secondary key associated with primary, in
// ascending byte order.
func (t *Txn) MultimapGet(tag byte, primary []byte) ([][]byte, error) {
	var out [][]byte
	prefix := append(append([]byte{}, primary...), multimapSeparator)
	err := t.ScanPrefix(tag, prefix, func(key, _ []byte) error {
		secondary := bytes.TrimPrefix(key, prefix)
		cp := make([]byte, len(secondary))
		copy(cp, secondary)
		out = append(out, cp)
		return nil
	})
	return out, err
}

// MultimapDeleteAll removes every (primary -> *) association.
func (t *Txn) MultimapDeleteAll(tag byte, primary []byte) error {
	if !t.writable {
		return ErrReadOnly
	}
	secondaries, err := t.MultimapGet(tag, primary)
	if err != nil {
		return err
	}
	for _, s := range secondaries {
		if err := t.MultimapDelete(tag, primary, s); err != nil {
			return err
		}
	}
	return nil
}
