// Package kind classifies nostr event kind numbers into the behavioral
// classes the storage engine and validator need: regular, replaceable,
// ephemeral, parameterized-replaceable (addressable), and the special
// deletion kind.
package kind

// K is a nostr event kind number.
type K uint16

const (
	Metadata K = 0
	Text     K = 1
	Contacts K = 3
	Deletion K = 5
)

// IsReplaceable reports whether only the latest event per (pubkey, kind)
// should be retained: kind 0, kind 3, or 10000 <= kind < 20000.
func (k K) IsReplaceable() bool {
	if k == Metadata || k == Contacts {
		return true
	}
	return k >= 10000 && k < 20000
}

// IsEphemeral reports whether the event must never be persisted:
// 20000 <= kind < 30000.
func (k K) IsEphemeral() bool {
	return k >= 20000 && k < 30000
}

// IsParameterizedReplaceable reports whether only the latest event per
// (pubkey, kind, d-tag) should be retained: 30000 <= kind < 40000.
func (k K) IsParameterizedReplaceable() bool {
	return k >= 30000 && k < 40000
}

// IsDeletion reports whether the kind is the deletion-request kind (5).
func (k K) IsDeletion() bool {
	return k == Deletion
}

// IsRegular reports whether the kind falls outside every special class
// above, meaning every event of this kind is stored independently.
func (k K) IsRegular() bool {
	return !k.IsReplaceable() && !k.IsEphemeral() && !k.IsParameterizedReplaceable() && !k.IsDeletion()
}
